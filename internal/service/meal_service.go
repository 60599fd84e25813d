package service

import (
	"alcyxob/fitness-social/internal/dining"
	"alcyxob/fitness-social/internal/metrics"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	GoalCutting = "cutting"
	GoalBulking = "bulking"

	mealCacheSize = 1024 * 1024
	// shared by every caller waiting on the same goal
	mealFillTimeout = time.Minute
)

type MenuSource interface {
	FetchMenus(ctx context.Context) (dining.Menus, error)
}

type MealRecommender interface {
	Recommend(ctx context.Context, goal string, menus dining.Menus) (string, error)
}

type MealRecommendation struct {
	Goal            string    `json:"goal"`
	Recommendations string    `json:"recommendations"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

type MealService interface {
	// GetRecommendations returns free-form meal advice for "cutting" or "bulking".
	GetRecommendations(ctx context.Context, goal string) (*MealRecommendation, error)
}

type MealServiceConfig struct {
	CacheTTL time.Duration
	Retry    RetryPolicy
	Metrics  *metrics.Manager
}

type mealService struct {
	menus       MenuSource
	recommender MealRecommender
	cfg         MealServiceConfig
	cache       *freecache.Cache
	group       singleflight.Group
}

func NewMealService(menus MenuSource, recommender MealRecommender, cfg MealServiceConfig) MealService {
	return &mealService{
		menus:       menus,
		recommender: recommender,
		cfg:         cfg,
		cache:       freecache.NewCache(mealCacheSize),
	}
}

func ParseGoal(goal string) (string, error) {
	switch g := strings.ToLower(strings.TrimSpace(goal)); g {
	case GoalCutting, GoalBulking:
		return g, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidGoal, goal)
	}
}

func (s *mealService) GetRecommendations(ctx context.Context, goal string) (*MealRecommendation, error) {
	goal, err := ParseGoal(goal)
	if err != nil {
		return nil, err
	}

	cacheKey := []byte("meals|" + goal)
	if cached, err := s.cache.Get(cacheKey); err == nil {
		var rec MealRecommendation
		if err := json.Unmarshal(cached, &rec); err == nil {
			return &rec, nil
		}
	}

	v, err, _ := s.group.Do(goal, func() (interface{}, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mealFillTimeout)
		defer cancel()
		rec, err := s.generate(fillCtx, goal)
		if err != nil {
			return nil, err
		}
		if s.cfg.CacheTTL > 0 {
			if recBytes, err := json.Marshal(rec); err == nil {
				if err := s.cache.Set(cacheKey, recBytes, int(s.cfg.CacheTTL.Seconds())); err != nil {
					log.Errorf("failed to cache meal recommendations for %s: %s", goal, err)
				}
			}
		}
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*MealRecommendation), nil
}

func (s *mealService) generate(ctx context.Context, goal string) (*MealRecommendation, error) {
	if s.menus == nil || s.recommender == nil {
		return nil, upstreamError("meal recommender", errors.New("not configured"))
	}

	menus, err := withRetry(ctx, s.cfg.Retry, s.cfg.Metrics, "dining", func() (dining.Menus, error) {
		menus, err := s.menus.FetchMenus(ctx)
		if err != nil {
			return nil, diningError("dining menus", err)
		}
		return menus, nil
	})
	if err != nil {
		return nil, err
	}

	text, err := withRetry(ctx, s.cfg.Retry, s.cfg.Metrics, "genai", func() (string, error) {
		text, err := s.recommender.Recommend(ctx, goal, menus)
		if err != nil {
			return "", diningError("meal recommender", err)
		}
		return text, nil
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("generated meal recommendations for %s from %d eateries", goal, len(menus))
	return &MealRecommendation{
		Goal:            goal,
		Recommendations: text,
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

// diningError marks outages as retryable; anything else is surfaced as is.
func diningError(upstream string, err error) error {
	if errors.Is(err, dining.ErrUnavailable) {
		return upstreamError(upstream, err)
	}
	return err
}
