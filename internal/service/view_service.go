package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"listky/internal/model"
	"listky/internal/privacy"
	"listky/internal/repository"
)

// ViewService records deduplicated, privacy-preserving list views.
type ViewService interface {
	// RecordView counts at most one view per (list, hashed visitor IP, UTC day).
	// Returns true if this call created a new unique view. The raw IP is
	// hashed immediately and never stored.
	RecordView(ctx context.Context, listID uuid.UUID, viewerIP string, asOf time.Time) (bool, error)
	// RecentViewCount returns unique views of one list within the trailing
	// windowDays, asOf included.
	RecentViewCount(ctx context.Context, listID uuid.UUID, asOf time.Time, windowDays int) (int64, error)
}

type viewService struct {
	viewRepo repository.ViewRepository
	hasher   *privacy.IPHasher
}

// NewViewService creates a new view service.
func NewViewService(viewRepo repository.ViewRepository, hasher *privacy.IPHasher) ViewService {
	return &viewService{
		viewRepo: viewRepo,
		hasher:   hasher,
	}
}

// RecordView attempts an atomic unique-key insert; a duplicate means the view
// was already counted today and is not an error.
func (s *viewService) RecordView(ctx context.Context, listID uuid.UUID, viewerIP string, asOf time.Time) (bool, error) {
	event := &model.ViewEvent{
		ListID:       listID,
		ViewerIPHash: s.hasher.HashIP(viewerIP),
		Day:          model.DayBucket(asOf),
	}
	if err := s.viewRepo.Insert(ctx, event); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("record view: %w", err)
	}
	return true, nil
}

// RecentViewCount counts unique views within the trailing window.
func (s *viewService) RecentViewCount(ctx context.Context, listID uuid.UUID, asOf time.Time, windowDays int) (int64, error) {
	sinceDay := model.DayBucket(asOf.AddDate(0, 0, -windowDays))
	return s.viewRepo.CountForList(ctx, listID, sinceDay)
}
