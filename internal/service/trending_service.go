package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"listky/internal/cache"
	"listky/internal/model"
	"listky/internal/repository"
)

const (
	maxTrendingLimit  = 50
	maxTrendingWindow = 30 // days
)

// TrendingService ranks public, opted-in lists by recent unique views.
type TrendingService interface {
	// TopPublicLists returns up to limit lists ordered by unique view count
	// within the trailing windowDays, ties broken by list creation recency.
	// Private lists and lists of owners who disabled trending never appear.
	TopPublicLists(ctx context.Context, limit, windowDays int) ([]repository.TrendingEntry, error)
}

type trendingService struct {
	viewRepo      repository.ViewRepository
	cache         *cache.Client
	defaultLimit  int
	defaultWindow int
	cacheTTL      time.Duration
}

// NewTrendingService creates a new trending service.
func NewTrendingService(viewRepo repository.ViewRepository, cacheClient *cache.Client, defaultLimit, defaultWindow int, cacheTTL time.Duration) TrendingService {
	return &trendingService{
		viewRepo:      viewRepo,
		cache:         cacheClient,
		defaultLimit:  defaultLimit,
		defaultWindow: defaultWindow,
		cacheTTL:      cacheTTL,
	}
}

func (s *trendingService) cacheKey(limit, windowDays int) string {
	return fmt.Sprintf("trending:%d:%d", limit, windowDays)
}

// TopPublicLists serves the ranking cache-aside: the result is derived data
// and always safe to recompute.
func (s *trendingService) TopPublicLists(ctx context.Context, limit, windowDays int) ([]repository.TrendingEntry, error) {
	if limit <= 0 || limit > maxTrendingLimit {
		limit = s.defaultLimit
	}
	if windowDays <= 0 || windowDays > maxTrendingWindow {
		windowDays = s.defaultWindow
	}

	key := s.cacheKey(limit, windowDays)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached []repository.TrendingEntry
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	sinceDay := model.DayBucket(time.Now().AddDate(0, 0, -windowDays))
	entries, err := s.viewRepo.Trending(ctx, sinceDay, limit)
	if err != nil {
		return nil, fmt.Errorf("compute trending: %w", err)
	}

	if payload, err := json.Marshal(entries); err == nil {
		_ = s.cache.Set(ctx, key, payload, s.cacheTTL)
	}
	return entries, nil
}
