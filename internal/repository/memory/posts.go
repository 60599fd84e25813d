package memory

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/repository"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostRepository struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]*storedPost
	seq   int64
}

// storedPost keeps the like set as a map; seq orders posts created within
// the same clock tick.
type storedPost struct {
	post    domain.Post
	likedBy map[primitive.ObjectID]time.Time
	seq     int64
}

var _ repository.PostRepository = (*PostRepository)(nil)

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: map[primitive.ObjectID]*storedPost{}}
}

func (r *PostRepository) Create(_ context.Context, post *domain.Post) (primitive.ObjectID, error) {
	if post.AuthorID == primitive.NilObjectID || post.Title == "" {
		return primitive.NilObjectID, errors.New("post requires authorId and title")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now().UTC()
	post.LikedBy = []primitive.ObjectID{}

	r.seq++
	stored := &storedPost{post: *post, likedBy: map[primitive.ObjectID]time.Time{}, seq: r.seq}
	stored.post.Workout.Exercises = copyExercises(post.Workout.Exercises)
	r.posts[post.ID] = stored
	return post.ID, nil
}

func (r *PostRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := stored.snapshot()
	return &p, nil
}

func (r *PostRepository) List(_ context.Context, limit int64) ([]domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := make([]*storedPost, 0, len(r.posts))
	for _, sp := range r.posts {
		stored = append(stored, sp)
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq > stored[j].seq })
	if limit > 0 && int64(len(stored)) > limit {
		stored = stored[:limit]
	}

	out := make([]domain.Post, len(stored))
	for i, sp := range stored {
		out[i] = sp.snapshot()
	}
	return out, nil
}

func (r *PostRepository) AddLike(_ context.Context, postID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[postID]
	if !ok {
		return repository.ErrNotFound
	}
	if _, liked := stored.likedBy[userID]; !liked {
		stored.likedBy[userID] = time.Now()
	}
	return nil
}

func (r *PostRepository) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[postID]
	if !ok {
		return repository.ErrNotFound
	}
	delete(stored.likedBy, userID)
	return nil
}

func (r *PostRepository) Delete(_ context.Context, id, authorID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[id]
	if !ok || stored.post.AuthorID != authorID {
		return repository.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

// snapshot copies the post with its like set in like order.
func (sp *storedPost) snapshot() domain.Post {
	p := sp.post
	p.Workout.Exercises = copyExercises(sp.post.Workout.Exercises)
	p.LikedBy = make([]primitive.ObjectID, 0, len(sp.likedBy))
	for id := range sp.likedBy {
		p.LikedBy = append(p.LikedBy, id)
	}
	sort.Slice(p.LikedBy, func(i, j int) bool {
		return sp.likedBy[p.LikedBy[i]].Before(sp.likedBy[p.LikedBy[j]])
	})
	return p
}
