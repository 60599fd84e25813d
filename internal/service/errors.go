package service

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. The API layer maps each one to its own
// status code and error code.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidToken        = errors.New("invalid token")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrEmptyWorkout        = errors.New("workout has no exercises")
	ErrInvalidGoal         = errors.New("goal must be cutting or bulking")
	ErrNotFound            = errors.New("not found")
	ErrValidationFailed    = errors.New("validation failed")
	ErrForbidden           = errors.New("forbidden")
	ErrRateLimited         = errors.New("too many requests")

	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate session token")
)

// Not-found errors for each entity. All of them match ErrNotFound.
var (
	ErrExerciseNotFound = fmt.Errorf("exercise %w", ErrNotFound)
	ErrPostNotFound     = fmt.Errorf("post %w", ErrNotFound)
	ErrWorkoutNotFound  = fmt.Errorf("workout %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrGifNotFound      = fmt.Errorf("gif %w", ErrNotFound)
)

// validationError wraps ErrValidationFailed with a field-specific message.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

// upstreamError marks err as a transient failure of the named collaborator.
func upstreamError(upstream string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, upstream, err)
}
