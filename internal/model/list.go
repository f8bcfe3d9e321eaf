package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visibility controls who may read a list.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// List represents a user-owned list reachable at /{owner}/{slug}.
// (OwnerUsername, Slug) is unique; the pair is the stable public identifier.
type List struct {
	ID            uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerUsername string         `json:"owner_username" gorm:"size:20;not null;uniqueIndex:idx_owner_slug"`
	Slug          string         `json:"slug" gorm:"size:50;not null;uniqueIndex:idx_owner_slug"`
	Title         string         `json:"title" gorm:"size:255;not null"`
	Content       string         `json:"content" gorm:"type:text;not null"`
	Visibility    Visibility     `json:"visibility" gorm:"type:varchar(10);not null;default:'private';index"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Owner Account `json:"-" gorm:"foreignKey:OwnerUsername;references:Username"`
}

// BeforeCreate sets UUID before creating the record.
func (l *List) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Public reports whether the list is readable by anyone.
func (l *List) Public() bool {
	return l.Visibility == VisibilityPublic
}
