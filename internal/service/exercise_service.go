package service

import (
	"alcyxob/fitness-social/internal/domain"
	"alcyxob/fitness-social/internal/metrics"
	"alcyxob/fitness-social/internal/repository"
	"alcyxob/fitness-social/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	catalogCacheSize = 8 * 1024 * 1024
	listCachePrefix  = "exercises|"
	seqCachePrefix   = "seq|"
	listFillTimeout  = 30 * time.Second
)

type ExerciseService interface {
	// ListExercises returns the catalog. An empty catalog is not an error.
	ListExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error)
	GetExercise(ctx context.Context, id string) (*domain.Exercise, error)
	// GetSequentialID returns the stable sequential id of the exercise,
	// assigning the next one on first use.
	GetSequentialID(ctx context.Context, exerciseID string) (int, error)
	// SequentialIDs resolves several exercises at once, in the order given.
	SequentialIDs(ctx context.Context, exerciseIDs []string) (map[string]int, error)
	ResolveSequentialID(ctx context.Context, sequentialID int) (*domain.ExerciseIndex, error)
	// GifURL returns a temporary download URL of the GIF stored for sequentialID.
	GifURL(ctx context.Context, sequentialID int) (string, error)
	GifURLForExercise(ctx context.Context, exerciseID string) (string, error)
	CreateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error)
	// ImportExercises upserts the exercises and pre-assigns their sequential ids.
	ImportExercises(ctx context.Context, exercises []domain.Exercise) (map[string]int, error)
}

type ExerciseServiceConfig struct {
	CacheTTL  time.Duration
	GifPrefix string
	GifURLTTL time.Duration
	Retry     RetryPolicy
	Metrics   *metrics.Manager
}

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	indexRepo    repository.ExerciseIndexRepository
	fileStorage  storage.FileStorage
	cfg          ExerciseServiceConfig

	cache      *freecache.Cache
	listGroup  singleflight.Group
	allocMutex sync.Mutex
}

// NewExerciseService creates a new instance of exerciseService.
// fileStorage may be nil, in which case GIF URLs are unavailable.
func NewExerciseService(
	exerciseRepo repository.ExerciseRepository,
	indexRepo repository.ExerciseIndexRepository,
	fileStorage storage.FileStorage,
	cfg ExerciseServiceConfig,
) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		indexRepo:    indexRepo,
		fileStorage:  fileStorage,
		cfg:          cfg,
		cache:        freecache.NewCache(catalogCacheSize),
	}
}

func (s *exerciseService) ListExercises(ctx context.Context, filter domain.ExerciseFilter) ([]domain.Exercise, error) {
	cacheKey := listCacheKey(filter)
	if cached, err := s.cache.Get([]byte(cacheKey)); err == nil {
		var exercises []domain.Exercise
		if err := json.Unmarshal(cached, &exercises); err == nil {
			return exercises, nil
		}
		log.Errorf("failed to unmarshal cached exercises for %s: %s", cacheKey, err)
	}

	v, err, _ := s.listGroup.Do(cacheKey, func() (interface{}, error) {
		// The fill outlives the caller that started it; others wait on it.
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listFillTimeout)
		defer cancel()
		exercises, err := withRetry(fillCtx, s.cfg.Retry, s.cfg.Metrics, "catalog", func() ([]domain.Exercise, error) {
			exercises, err := s.exerciseRepo.List(fillCtx, filter)
			if err != nil {
				return nil, upstreamError("exercise store", err)
			}
			return exercises, nil
		})
		if err != nil {
			return nil, err
		}
		s.cacheList(cacheKey, exercises)
		return exercises, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Exercise), nil
}

func (s *exerciseService) cacheList(cacheKey string, exercises []domain.Exercise) {
	if s.cfg.CacheTTL <= 0 {
		return
	}
	listBytes, err := json.Marshal(exercises)
	if err != nil {
		log.Errorf("failed to marshal exercises for cache: %s", err)
		return
	}
	if err := s.cache.Set([]byte(cacheKey), listBytes, int(s.cfg.CacheTTL.Seconds())); err != nil {
		log.Errorf("failed to cache exercises for %s: %s", cacheKey, err)
	}
}

func (s *exerciseService) GetExercise(ctx context.Context, id string) (*domain.Exercise, error) {
	if strings.TrimSpace(id) == "" {
		return nil, validationError("exercise id is required")
	}
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, upstreamError("exercise store", err)
	}
	return exercise, nil
}

func (s *exerciseService) GetSequentialID(ctx context.Context, exerciseID string) (int, error) {
	if seq, ok := s.cachedSequentialID(exerciseID); ok {
		return seq, nil
	}

	entry, err := s.indexRepo.GetByOriginalID(ctx, exerciseID)
	if err == nil {
		s.cacheSequentialID(entry)
		return entry.SequentialID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, upstreamError("exercise index", err)
	}

	// Only catalog exercises get a number.
	if _, err := s.GetExercise(ctx, exerciseID); err != nil {
		return 0, err
	}
	return s.allocate(ctx, exerciseID)
}

// allocate hands out the next sequential id. One allocation runs at a time,
// and a started allocation finishes even if the caller goes away.
func (s *exerciseService) allocate(ctx context.Context, exerciseID string) (int, error) {
	s.allocMutex.Lock()
	defer s.allocMutex.Unlock()

	ctx = context.WithoutCancel(ctx)

	// Another caller may have won the lock with the same id.
	if entry, err := s.indexRepo.GetByOriginalID(ctx, exerciseID); err == nil {
		s.cacheSequentialID(entry)
		return entry.SequentialID, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return 0, upstreamError("exercise index", err)
	}

	entry, err := s.indexRepo.Allocate(ctx, exerciseID)
	if err != nil {
		return 0, upstreamError("exercise index", err)
	}
	s.cfg.Metrics.SequentialIDAllocated()
	log.Infof("assigned sequential id %d to exercise %s", entry.SequentialID, exerciseID)
	s.cacheSequentialID(entry)
	return entry.SequentialID, nil
}

func (s *exerciseService) cachedSequentialID(exerciseID string) (int, bool) {
	cached, err := s.cache.Get([]byte(seqCachePrefix + exerciseID))
	if err != nil {
		return 0, false
	}
	seq, err := strconv.Atoi(string(cached))
	if err != nil {
		return 0, false
	}
	return seq, true
}

// Mappings never change, so they are cached without expiry.
func (s *exerciseService) cacheSequentialID(entry *domain.ExerciseIndex) {
	if err := s.cache.Set([]byte(seqCachePrefix+entry.OriginalID), []byte(strconv.Itoa(entry.SequentialID)), 0); err != nil {
		log.Errorf("failed to cache sequential id of %s: %s", entry.OriginalID, err)
	}
}

func (s *exerciseService) SequentialIDs(ctx context.Context, exerciseIDs []string) (map[string]int, error) {
	ids := make(map[string]int, len(exerciseIDs))
	for _, id := range exerciseIDs {
		if _, done := ids[id]; done {
			continue
		}
		seq, err := s.GetSequentialID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("exercise %s: %w", id, err)
		}
		ids[id] = seq
	}
	return ids, nil
}

func (s *exerciseService) ResolveSequentialID(ctx context.Context, sequentialID int) (*domain.ExerciseIndex, error) {
	if sequentialID < domain.FirstSequentialID {
		return nil, ErrGifNotFound
	}
	entry, err := s.indexRepo.GetBySequentialID(ctx, sequentialID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGifNotFound
		}
		return nil, upstreamError("exercise index", err)
	}
	return entry, nil
}

func (s *exerciseService) GifURL(ctx context.Context, sequentialID int) (string, error) {
	if _, err := s.ResolveSequentialID(ctx, sequentialID); err != nil {
		return "", err
	}
	if s.fileStorage == nil {
		return "", upstreamError("gif storage", errors.New("not configured"))
	}
	key := storage.GifKey(s.cfg.GifPrefix, sequentialID)
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, key, s.cfg.GifURLTTL)
	if err != nil {
		return "", upstreamError("gif storage", err)
	}
	return url, nil
}

func (s *exerciseService) GifURLForExercise(ctx context.Context, exerciseID string) (string, error) {
	seq, err := s.GetSequentialID(ctx, exerciseID)
	if err != nil {
		return "", err
	}
	return s.GifURL(ctx, seq)
}

func (s *exerciseService) CreateExercise(ctx context.Context, exercise *domain.Exercise) (*domain.Exercise, error) {
	if err := validateExercise(exercise); err != nil {
		return nil, err
	}
	if err := s.exerciseRepo.Create(context.WithoutCancel(ctx), exercise); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: exercise %s already exists", ErrValidationFailed, exercise.ID)
		}
		return nil, upstreamError("exercise store", err)
	}
	s.invalidateLists()
	return exercise, nil
}

func (s *exerciseService) ImportExercises(ctx context.Context, exercises []domain.Exercise) (map[string]int, error) {
	for i := range exercises {
		if err := validateExercise(&exercises[i]); err != nil {
			return nil, fmt.Errorf("exercise #%d: %w", i, err)
		}
	}

	ctx = context.WithoutCancel(ctx)
	for i := range exercises {
		if err := s.exerciseRepo.Upsert(ctx, &exercises[i]); err != nil {
			return nil, upstreamError("exercise store", err)
		}
	}
	s.invalidateLists()

	ids := make([]string, 0, len(exercises))
	for _, ex := range exercises {
		ids = append(ids, ex.ID)
	}
	return s.SequentialIDs(ctx, ids)
}

// invalidateLists drops every cached listing. Cached sequential ids go too and
// are reloaded from the index on next use.
func (s *exerciseService) invalidateLists() {
	s.cache.Clear()
}

func validateExercise(exercise *domain.Exercise) error {
	if exercise == nil {
		return validationError("exercise is required")
	}
	exercise.ID = strings.TrimSpace(exercise.ID)
	exercise.Name = strings.TrimSpace(exercise.Name)
	if exercise.ID == "" {
		return validationError("exercise id is required")
	}
	if exercise.Name == "" {
		return validationError("exercise name is required")
	}
	return nil
}

func listCacheKey(filter domain.ExerciseFilter) string {
	return listCachePrefix + filter.BodyPart + "|" + filter.Target + "|" + filter.Equipment
}
