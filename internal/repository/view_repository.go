package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"listky/internal/model"
)

// TrendingEntry is a derived ranking row: a public, opted-in list and its
// unique view count within the query window. Never stored independently.
type TrendingEntry struct {
	ListID          uuid.UUID `json:"list_id"`
	OwnerUsername   string    `json:"owner_username"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	UniqueViewCount int64     `json:"unique_view_count"`
}

// ViewRepository defines view-event persistence operations.
type ViewRepository interface {
	// Insert attempts to record a view event. The composite primary key
	// (list_id, viewer_ip_hash, day) makes insertion the dedup check: a
	// duplicate yields gorm.ErrDuplicatedKey, never a read-then-write race.
	Insert(ctx context.Context, event *model.ViewEvent) error
	CountForList(ctx context.Context, listID uuid.UUID, sinceDay string) (int64, error)
	Trending(ctx context.Context, sinceDay string, limit int) ([]TrendingEntry, error)
}

type viewRepository struct {
	db *gorm.DB
}

// NewViewRepository creates a new view repository.
func NewViewRepository(db *gorm.DB) ViewRepository {
	return &viewRepository{db: db}
}

// Insert records a view event.
func (r *viewRepository) Insert(ctx context.Context, event *model.ViewEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// CountForList counts unique view events for one list since sinceDay (inclusive).
func (r *viewRepository) CountForList(ctx context.Context, listID uuid.UUID, sinceDay string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ViewEvent{}).
		Where("list_id = ? AND day >= ?", listID, sinceDay).
		Count(&count).Error
	return count, err
}

// Trending ranks public lists of opted-in owners by unique view events since
// sinceDay. Every view event is unique per (list, visitor, day) by primary
// key, so COUNT(*) counts unique views. Ties break by list creation recency.
func (r *viewRepository) Trending(ctx context.Context, sinceDay string, limit int) ([]TrendingEntry, error) {
	var entries []TrendingEntry
	err := r.db.WithContext(ctx).Raw(`
		SELECT l.id AS list_id, l.owner_username, l.slug, l.title,
		       COUNT(*) AS unique_view_count
		FROM view_events v
		JOIN lists l ON l.id = v.list_id
		JOIN accounts a ON a.username = l.owner_username
		WHERE l.visibility = ?
		  AND l.deleted_at IS NULL
		  AND a.trending_opt_in = true
		  AND v.day >= ?
		GROUP BY l.id, l.owner_username, l.slug, l.title, l.created_at
		ORDER BY unique_view_count DESC, l.created_at DESC
		LIMIT ?`,
		string(model.VisibilityPublic), sinceDay, limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
