package entities

import (
	"time"

	"github.com/google/uuid"
)

// DailyFeed is the single subtopic assigned to a user for one calendar date.
// At most one exists per (user, date); the subtopic reference is immutable
// once created.
type DailyFeed struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	SubtopicID  uuid.UUID
	FeedDate    time.Time // UTC midnight of the calendar date
	IsCompleted bool
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// FeedDateUTC truncates t to the UTC calendar date daily feeds are keyed by.
func FeedDateUTC(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
