package memory

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"errors"
	"sync"
)

// SessionRepository keeps sessions in process memory. Sessions are lost on
// restart, so it only suits local development and tests.
type SessionRepository struct {
	mu        sync.RWMutex
	sessions  map[string]domain.Session
	byRefresh map[string]string
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions:  map[string]domain.Session{},
		byRefresh: map[string]string{},
	}
}

func (r *SessionRepository) Save(_ context.Context, session *domain.Session) error {
	if session.ID == "" || session.RefreshToken == "" {
		return errors.New("session id and refresh token are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	r.byRefresh[session.RefreshToken] = session.ID
	return nil
}

func (r *SessionRepository) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *SessionRepository) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	r.mu.RLock()
	sessionID, ok := r.byRefresh[refreshToken]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.Get(ctx, sessionID)
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, sessionID)
	delete(r.byRefresh, s.RefreshToken)
	return nil
}
