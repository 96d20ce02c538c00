package entities

import (
	"time"

	"github.com/google/uuid"
)

// UserTopic is a user's subscription to a topic. PriorityOrder controls which
// topic the progression selector continues with first; lower comes first.
type UserTopic struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	TopicID       uuid.UUID
	PriorityOrder int
	IsActive      bool
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// NewUserTopic creates an active subscription with the given priority.
func NewUserTopic(userID, topicID uuid.UUID, priorityOrder int) *UserTopic {
	return &UserTopic{
		ID:            uuid.New(),
		UserID:        userID,
		TopicID:       topicID,
		PriorityOrder: priorityOrder,
		IsActive:      true,
		StartedAt:     time.Now().UTC(),
	}
}
