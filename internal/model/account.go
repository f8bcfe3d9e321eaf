package model

import "time"

// Account represents a claimed username and its PIN credential bookkeeping.
// Usernames are case-sensitive (binary collation), immutable once claimed,
// and never recycled. There is no PIN recovery path: losing the PIN loses
// the account, by design.
type Account struct {
	Username       string     `json:"username" gorm:"primaryKey;size:20"`
	PinHash        string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FailedAttempts int        `json:"-" gorm:"not null;default:0"`
	LockoutUntil   *time.Time `json:"-"`
	LastIPHash     string     `json:"-" gorm:"size:64"` // salted SHA-256 hex, never the raw IP
	TrendingOptIn  bool       `json:"trending_opt_in" gorm:"default:true"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Lists []List `json:"lists,omitempty" gorm:"foreignKey:OwnerUsername;references:Username"`
}

// LockedOut reports whether the account is under an active lockout at now.
func (a *Account) LockedOut(now time.Time) bool {
	return a.LockoutUntil != nil && a.LockoutUntil.After(now)
}
