package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"listky/internal/auth"
	apperrors "listky/internal/errors"
	"listky/internal/model"
	"listky/internal/repository"
)

// ListService handles list CRUD.
type ListService interface {
	Create(ctx context.Context, owner, slug, title, content string, visibility model.Visibility) (*model.List, error)
	// Resolve fetches a list for a viewer. Private lists are visible only to
	// their owner; for anyone else they do not exist.
	Resolve(ctx context.Context, owner, slug, viewer string) (*model.List, error)
	Update(ctx context.Context, owner, slug, title, content string, visibility model.Visibility) (*model.List, error)
	Delete(ctx context.Context, owner, slug string) error
	ListByOwner(ctx context.Context, owner string) ([]model.List, error)
	// PublicByOwner returns the public lists of an existing account, for the
	// profile page at /{username}.
	PublicByOwner(ctx context.Context, owner string) ([]model.List, error)
}

type listService struct {
	listRepo    repository.ListRepository
	accountRepo repository.AccountRepository
}

// NewListService creates a new list service.
func NewListService(listRepo repository.ListRepository, accountRepo repository.AccountRepository) ListService {
	return &listService{listRepo: listRepo, accountRepo: accountRepo}
}

// Create creates a list. Slug uniqueness per owner is enforced by the unique
// index, not by a prior lookup.
func (s *listService) Create(ctx context.Context, owner, slug, title, content string, visibility model.Visibility) (*model.List, error) {
	if !auth.ValidSlug(slug) {
		return nil, apperrors.ErrInvalidSlugFormat
	}
	if visibility != model.VisibilityPublic && visibility != model.VisibilityPrivate {
		visibility = model.VisibilityPrivate
	}

	list := &model.List{
		OwnerUsername: owner,
		Slug:          slug,
		Title:         title,
		Content:       content,
		Visibility:    visibility,
	}
	if err := s.listRepo.Create(ctx, list); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrSlugConflict
		}
		return nil, fmt.Errorf("create list: %w", err)
	}
	return list, nil
}

// Resolve fetches a list, hiding private lists from non-owners.
func (s *listService) Resolve(ctx context.Context, owner, slug, viewer string) (*model.List, error) {
	list, err := s.listRepo.FindByOwnerAndSlug(ctx, owner, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrListNotFound
		}
		return nil, fmt.Errorf("find list: %w", err)
	}
	if !list.Public() && viewer != list.OwnerUsername {
		// Existence of a private list is not disclosed.
		return nil, apperrors.ErrListNotFound
	}
	return list, nil
}

// Update modifies a list's title, content and visibility. The slug is part of
// the list's stable URL and does not change.
func (s *listService) Update(ctx context.Context, owner, slug, title, content string, visibility model.Visibility) (*model.List, error) {
	list, err := s.ownedList(ctx, owner, slug)
	if err != nil {
		return nil, err
	}

	list.Title = title
	list.Content = content
	if visibility == model.VisibilityPublic || visibility == model.VisibilityPrivate {
		list.Visibility = visibility
	}
	if err := s.listRepo.Update(ctx, list); err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	return list, nil
}

// Delete removes a list.
func (s *listService) Delete(ctx context.Context, owner, slug string) error {
	list, err := s.ownedList(ctx, owner, slug)
	if err != nil {
		return err
	}
	if err := s.listRepo.Delete(ctx, list.ID); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// ListByOwner returns all of an owner's lists, private ones included.
func (s *listService) ListByOwner(ctx context.Context, owner string) ([]model.List, error) {
	return s.listRepo.ListByOwner(ctx, owner)
}

// PublicByOwner returns an account's public lists. The account lookup keeps
// profiles of unclaimed usernames 404 instead of an empty page.
func (s *listService) PublicByOwner(ctx context.Context, owner string) ([]model.List, error) {
	if _, err := s.accountRepo.FindByUsername(ctx, owner); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return s.listRepo.ListPublicByOwner(ctx, owner)
}

func (s *listService) ownedList(ctx context.Context, owner, slug string) (*model.List, error) {
	list, err := s.listRepo.FindByOwnerAndSlug(ctx, owner, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrListNotFound
		}
		return nil, fmt.Errorf("find list: %w", err)
	}
	if list.OwnerUsername != owner {
		return nil, apperrors.ErrNotListOwner
	}
	return list, nil
}
