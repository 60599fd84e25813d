package api

import (
	"alcyxob/fitness-social/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Error codes returned in the "code" field of every error body.
const (
	CodeUnauthorized        = "unauthorized"
	CodeInvalidToken        = "invalid_token"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeEmptyWorkout        = "empty_workout"
	CodeInvalidGoal         = "invalid_goal"
	CodeNotFound            = "not_found"
	CodeValidationFailed    = "validation_failed"
	CodeForbidden           = "forbidden"
	CodeConflict            = "conflict"
	CodeRateLimited         = "rate_limited"
	CodeInternal            = "internal"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

// Order matters: the first match wins.
var errorMappings = []errorMapping{
	{service.ErrInvalidToken, http.StatusUnauthorized, CodeInvalidToken},
	{service.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{service.ErrAuthenticationFailed, http.StatusUnauthorized, CodeUnauthorized},
	{service.ErrUpstreamUnavailable, http.StatusServiceUnavailable, CodeUpstreamUnavailable},
	{service.ErrEmptyWorkout, http.StatusUnprocessableEntity, CodeEmptyWorkout},
	{service.ErrInvalidGoal, http.StatusBadRequest, CodeInvalidGoal},
	{service.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{service.ErrValidationFailed, http.StatusBadRequest, CodeValidationFailed},
	{service.ErrForbidden, http.StatusForbidden, CodeForbidden},
	{service.ErrUserAlreadyExists, http.StatusConflict, CodeConflict},
	{service.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited},
}

// statusForError returns the HTTP status and error code for a service error.
func statusForError(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

// abortWithError writes an error body and aborts the request.
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: code})
}

// abortWithServiceError maps err to its status and code. Internal errors are
// logged and their details are not sent to the client.
func abortWithServiceError(c *gin.Context, err error) {
	status, code := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error("request failed")
		message = "An unexpected error occurred"
	} else if status == http.StatusServiceUnavailable {
		log.WithField("path", c.FullPath()).WithError(err).Warn("upstream unavailable")
	}
	abortWithError(c, status, code, message)
}

// abortWithValidationError reports a request body or parameter that failed binding.
func abortWithValidationError(c *gin.Context, message string) {
	abortWithError(c, http.StatusBadRequest, CodeValidationFailed, "Validation error: "+message)
}
