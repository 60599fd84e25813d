package redis

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const (
	sessionKeyPrefix = "fitness-session||"
	refreshKeyPrefix = "fitness-refresh||"
)

// SessionRepository keeps sessions in Redis. A session record lives until its
// refresh token expires; the refresh key points back at the session id.
type SessionRepository struct {
	client *goredis.Client
	// injectable clock, for tests
	now func() time.Time
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(client *goredis.Client) *SessionRepository {
	return &SessionRepository{
		client: client,
		now:    time.Now,
	}
}

func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session.ID == "" || session.RefreshToken == "" {
		return errors.New("session id and refresh token are required")
	}

	now := r.now()
	ttl := session.RefreshExpiresAt.Sub(now)
	if session.ExpiresAt.After(session.RefreshExpiresAt) {
		ttl = session.ExpiresAt.Sub(now)
	}
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+session.ID, string(data), ttl).Err(); err != nil {
		return err
	}

	refreshTTL := session.RefreshExpiresAt.Sub(now)
	if refreshTTL <= 0 {
		return nil
	}
	return r.client.Set(ctx, refreshKeyPrefix+session.RefreshToken, session.ID, refreshTTL).Err()
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	session := &domain.Session{}
	if err := json.Unmarshal([]byte(data), session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	return session, nil
}

func (r *SessionRepository) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	sessionID, err := r.client.Get(ctx, refreshKeyPrefix+refreshToken).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return r.Get(ctx, sessionID)
}

// Delete removes the session and its refresh token. Of two concurrent
// deletes of one session only the one that removed the session key succeeds;
// the other gets repository.ErrNotFound.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	session, err := r.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	removed, err := r.client.Del(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return repository.ErrNotFound
	}
	return r.client.Del(ctx, refreshKeyPrefix+session.RefreshToken).Err()
}
