// Package memory holds in-process repository implementations used by the
// "memory" database driver and by tests.
package memory

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]domain.User
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[primitive.ObjectID]domain.User{}}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.Username == "" {
		return primitive.NilObjectID, errors.New("user email and username are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *UserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *UserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(&u) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) UpdateProfile(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.PictureURL = user.PictureURL
	stored.GoogleID = user.GoogleID
	stored.LastLoginAt = user.LastLoginAt
	stored.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = stored
	return nil
}
