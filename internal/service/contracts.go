package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/thestackdev/loop/internal/domain/entities"
)

// Repository contracts consumed by the services. The postgres implementations
// live in internal/infra/postgres/repository.

type TopicRepository interface {
	Create(ctx context.Context, topic *entities.Topic) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Topic, error)
	List(ctx context.Context, category string, activeOnly bool) ([]*entities.Topic, error)
	Update(ctx context.Context, topic *entities.Topic) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SubtopicRepository interface {
	Create(ctx context.Context, subtopic *entities.Subtopic) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Subtopic, error)
	GetByTopic(ctx context.Context, topicID uuid.UUID, activeOnly bool) ([]*entities.Subtopic, error)
	Update(ctx context.Context, subtopic *entities.Subtopic) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserTopicRepository interface {
	Create(ctx context.Context, ut *entities.UserTopic) error
	Get(ctx context.Context, userID, topicID uuid.UUID) (*entities.UserTopic, error)
	GetByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entities.UserTopic, error)
	Update(ctx context.Context, ut *entities.UserTopic) error
	ActiveUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

type ProgressRepository interface {
	Upsert(ctx context.Context, p *entities.UserSubtopicProgress) error
	Get(ctx context.Context, userID, subtopicID uuid.UUID) (*entities.UserSubtopicProgress, error)
	GetByTopic(ctx context.Context, userID, topicID uuid.UUID) ([]*entities.UserSubtopicProgress, error)
	GetDueReviews(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.UserSubtopicProgress, error)
	CountDue(ctx context.Context, userID uuid.UUID) (int, error)
}

type FeedRepository interface {
	Create(ctx context.Context, feed *entities.DailyFeed) error
	GetForDate(ctx context.Context, userID uuid.UUID, date time.Time) (*entities.DailyFeed, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.DailyFeed, error)
	History(ctx context.Context, userID uuid.UUID, days int) ([]*entities.DailyFeed, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time) (*entities.DailyFeed, error)
	Streak(ctx context.Context, userID uuid.UUID) (int, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *entities.LearningSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.LearningSession, error)
	Update(ctx context.Context, s *entities.LearningSession) error
	GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LearningSession, error)
}

type ContentRepository interface {
	Create(ctx context.Context, c *entities.GeneratedContent) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.GeneratedContent, error)
	GetBySubtopic(ctx context.Context, subtopicID uuid.UUID, contentType entities.ContentType) ([]*entities.GeneratedContent, error)
}
