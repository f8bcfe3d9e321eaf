package model

import (
	"time"

	"github.com/google/uuid"
)

// DayFormat is the date-bucket layout for view deduplication (UTC).
const DayFormat = "2006-01-02"

// ViewEvent records one unique view of a list per visitor per calendar day.
// The composite primary key (ListID, ViewerIPHash, Day) is the deduplication
// key: a duplicate insert means the view was already counted today. Rows are
// insert-only and carry only the salted IP hash, never the raw address.
type ViewEvent struct {
	ListID       uuid.UUID `json:"list_id" gorm:"type:char(36);primaryKey"`
	ViewerIPHash string    `json:"-" gorm:"size:64;primaryKey"`
	Day          string    `json:"day" gorm:"size:10;primaryKey"`
	CreatedAt    time.Time `json:"created_at"`
}

// DayBucket formats a timestamp into the UTC date bucket used as dedup key.
func DayBucket(t time.Time) string {
	return t.UTC().Format(DayFormat)
}
