package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"listky/internal/model"
)

// ListRepository defines list persistence operations.
type ListRepository interface {
	// Create inserts a new list. The unique (owner_username, slug) index makes
	// slug claims atomic; duplicates yield gorm.ErrDuplicatedKey.
	Create(ctx context.Context, list *model.List) error
	Update(ctx context.Context, list *model.List) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByOwnerAndSlug(ctx context.Context, owner, slug string) (*model.List, error)
	ListByOwner(ctx context.Context, owner string) ([]model.List, error)
	ListPublicByOwner(ctx context.Context, owner string) ([]model.List, error)
}

type listRepository struct {
	db *gorm.DB
}

// NewListRepository creates a new list repository.
func NewListRepository(db *gorm.DB) ListRepository {
	return &listRepository{db: db}
}

// Create creates a new list record.
func (r *listRepository) Create(ctx context.Context, list *model.List) error {
	return r.db.WithContext(ctx).Create(list).Error
}

// Update updates an existing list record.
func (r *listRepository) Update(ctx context.Context, list *model.List) error {
	return r.db.WithContext(ctx).Save(list).Error
}

// Delete soft-deletes a list.
func (r *listRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.List{}, "id = ?", id).Error
}

// FindByOwnerAndSlug finds a list by its stable (owner, slug) identifier.
func (r *listRepository) FindByOwnerAndSlug(ctx context.Context, owner, slug string) (*model.List, error) {
	var list model.List
	if err := r.db.WithContext(ctx).
		Where("owner_username = ? AND slug = ?", owner, slug).
		First(&list).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

// ListByOwner lists all lists belonging to an owner, newest first.
func (r *listRepository) ListByOwner(ctx context.Context, owner string) ([]model.List, error) {
	var lists []model.List
	if err := r.db.WithContext(ctx).
		Where("owner_username = ?", owner).
		Order("created_at DESC").
		Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}

// ListPublicByOwner lists an owner's public lists, newest first. Backs the
// public profile page, so private lists must never leak through it.
func (r *listRepository) ListPublicByOwner(ctx context.Context, owner string) ([]model.List, error) {
	var lists []model.List
	if err := r.db.WithContext(ctx).
		Where("owner_username = ? AND visibility = ?", owner, string(model.VisibilityPublic)).
		Order("created_at DESC").
		Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}
