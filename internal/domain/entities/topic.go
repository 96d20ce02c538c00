package entities

import (
	"time"

	"github.com/google/uuid"
)

// Topic is a top-level learning domain users can subscribe to.
type Topic struct {
	ID              uuid.UUID
	Name            string
	Description     string
	Category        string
	ImportanceLevel string
	IconEmoji       *string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Subtopic is a single unit of study within a topic. OrderIndex defines the
// linear progression inside the topic; Prerequisites reference other subtopics
// that must be mastered before this one is introduced.
type Subtopic struct {
	ID                   uuid.UUID
	TopicID              uuid.UUID
	Name                 string
	Description          string
	OrderIndex           int
	EstimatedTimeMinutes int
	Prerequisites        []uuid.UUID
	DifficultyLevel      int
	IsActive             bool
	CreatedAt            time.Time
}
