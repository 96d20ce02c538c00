package httpapi

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/service"
)

// Response shapes for the JSON API. Entities stay transport-agnostic; the
// converters below decide what leaves the service boundary.

type topicResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	ImportanceLevel string    `json:"importance_level"`
	IconEmoji       *string   `json:"icon_emoji,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toTopicResponse(t *entities.Topic) topicResponse {
	return topicResponse{
		ID:              t.ID,
		Name:            t.Name,
		Description:     t.Description,
		Category:        t.Category,
		ImportanceLevel: t.ImportanceLevel,
		IconEmoji:       t.IconEmoji,
		IsActive:        t.IsActive,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func toTopicResponses(topics []*entities.Topic) []topicResponse {
	out := make([]topicResponse, 0, len(topics))
	for _, t := range topics {
		out = append(out, toTopicResponse(t))
	}
	return out
}

type subtopicResponse struct {
	ID                   uuid.UUID   `json:"id"`
	TopicID              uuid.UUID   `json:"topic_id"`
	Name                 string      `json:"name"`
	Description          string      `json:"description"`
	OrderIndex           int         `json:"order_index"`
	EstimatedTimeMinutes int         `json:"estimated_time_minutes"`
	Prerequisites        []uuid.UUID `json:"prerequisites"`
	DifficultyLevel      int         `json:"difficulty_level"`
	IsActive             bool        `json:"is_active"`
}

func toSubtopicResponse(s *entities.Subtopic) subtopicResponse {
	return subtopicResponse{
		ID:                   s.ID,
		TopicID:              s.TopicID,
		Name:                 s.Name,
		Description:          s.Description,
		OrderIndex:           s.OrderIndex,
		EstimatedTimeMinutes: s.EstimatedTimeMinutes,
		Prerequisites:        s.Prerequisites,
		DifficultyLevel:      s.DifficultyLevel,
		IsActive:             s.IsActive,
	}
}

func toSubtopicResponses(subtopics []*entities.Subtopic) []subtopicResponse {
	out := make([]subtopicResponse, 0, len(subtopics))
	for _, s := range subtopics {
		out = append(out, toSubtopicResponse(s))
	}
	return out
}

type subscriptionResponse struct {
	ID            uuid.UUID  `json:"id"`
	TopicID       uuid.UUID  `json:"topic_id"`
	PriorityOrder int        `json:"priority_order"`
	IsActive      bool       `json:"is_active"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func toSubscriptionResponse(ut *entities.UserTopic) subscriptionResponse {
	return subscriptionResponse{
		ID:            ut.ID,
		TopicID:       ut.TopicID,
		PriorityOrder: ut.PriorityOrder,
		IsActive:      ut.IsActive,
		StartedAt:     ut.StartedAt,
		CompletedAt:   ut.CompletedAt,
	}
}

type progressResponse struct {
	SubtopicID           uuid.UUID  `json:"subtopic_id"`
	MasteryLevel         string     `json:"mastery_level"`
	MasteryScore         float64    `json:"mastery_score"`
	ArticleRead          bool       `json:"article_read"`
	FlashcardSuccessRate float64    `json:"flashcard_success_rate"`
	QuizBestScore        float64    `json:"quiz_best_score"`
	QuizAttempts         int        `json:"quiz_attempts"`
	TotalTimeMinutes     int        `json:"total_time_minutes"`
	IntervalDays         int        `json:"interval_days"`
	EaseFactor           float64    `json:"ease_factor"`
	ConsecutiveCorrect   int        `json:"consecutive_correct"`
	LastReviewedAt       *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt         *time.Time `json:"next_review_at,omitempty"`
	StartedAt            time.Time  `json:"started_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

func toProgressResponse(p *entities.UserSubtopicProgress) progressResponse {
	return progressResponse{
		SubtopicID:           p.SubtopicID,
		MasteryLevel:         string(p.MasteryLevel),
		MasteryScore:         p.MasteryScore,
		ArticleRead:          p.ArticleRead,
		FlashcardSuccessRate: p.FlashcardSuccessRate,
		QuizBestScore:        p.QuizBestScore,
		QuizAttempts:         p.QuizAttempts,
		TotalTimeMinutes:     p.TotalTimeMinutes,
		IntervalDays:         p.IntervalDays,
		EaseFactor:           p.EaseFactor,
		ConsecutiveCorrect:   p.ConsecutiveCorrect,
		LastReviewedAt:       p.LastReviewedAt,
		NextReviewAt:         p.NextReviewAt,
		StartedAt:            p.StartedAt,
		CompletedAt:          p.CompletedAt,
	}
}

func toProgressResponses(list []*entities.UserSubtopicProgress) []progressResponse {
	out := make([]progressResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProgressResponse(p))
	}
	return out
}

type summaryResponse struct {
	TotalSubtopics     int               `json:"total_subtopics"`
	StartedSubtopics   int               `json:"started_subtopics"`
	MasteredSubtopics  int               `json:"mastered_subtopics"`
	CompletedSubtopics int               `json:"completed_subtopics"`
	DueReviews         int               `json:"due_reviews"`
	ProgressPercent    float64           `json:"progress_percent"`
	CurrentSubtopic    *subtopicResponse `json:"current_subtopic,omitempty"`
}

func toSummaryResponse(s *service.TopicSummary) summaryResponse {
	resp := summaryResponse{
		TotalSubtopics:     s.TotalSubtopics,
		StartedSubtopics:   s.StartedSubtopics,
		MasteredSubtopics:  s.MasteredSubtopics,
		CompletedSubtopics: s.CompletedSubtopics,
		DueReviews:         s.DueReviews,
		ProgressPercent:    s.ProgressPercent,
	}
	if s.CurrentSubtopic != nil {
		st := toSubtopicResponse(s.CurrentSubtopic)
		resp.CurrentSubtopic = &st
	}
	return resp
}

type sessionResponse struct {
	ID              uuid.UUID                   `json:"id"`
	SubtopicID      uuid.UUID                   `json:"subtopic_id"`
	SessionType     string                      `json:"session_type"`
	StartedAt       time.Time                   `json:"started_at"`
	CompletedAt     *time.Time                  `json:"completed_at,omitempty"`
	DurationMinutes *int                        `json:"duration_minutes,omitempty"`
	Performance     entities.SessionPerformance `json:"performance"`
}

func toSessionResponse(s *entities.LearningSession) sessionResponse {
	return sessionResponse{
		ID:              s.ID,
		SubtopicID:      s.SubtopicID,
		SessionType:     string(s.SessionType),
		StartedAt:       s.StartedAt,
		CompletedAt:     s.CompletedAt,
		DurationMinutes: s.DurationMinutes,
		Performance:     s.Performance,
	}
}

func toSessionResponses(list []*entities.LearningSession) []sessionResponse {
	out := make([]sessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSessionResponse(s))
	}
	return out
}

type feedResponse struct {
	ID          uuid.UUID  `json:"id"`
	SubtopicID  uuid.UUID  `json:"subtopic_id"`
	FeedDate    string     `json:"feed_date"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func toFeedResponse(f *entities.DailyFeed) feedResponse {
	return feedResponse{
		ID:          f.ID,
		SubtopicID:  f.SubtopicID,
		FeedDate:    f.FeedDate.Format("2006-01-02"),
		IsCompleted: f.IsCompleted,
		CompletedAt: f.CompletedAt,
	}
}

func toFeedResponses(list []*entities.DailyFeed) []feedResponse {
	out := make([]feedResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toFeedResponse(f))
	}
	return out
}

type contentResponse struct {
	ID              uuid.UUID       `json:"id"`
	SubtopicID      uuid.UUID       `json:"subtopic_id"`
	ContentType     string          `json:"content_type"`
	Payload         json.RawMessage `json:"payload"`
	DifficultyLevel int             `json:"difficulty_level"`
	Version         int             `json:"version"`
	AIModel         string          `json:"ai_model"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toContentResponse(c *entities.GeneratedContent) contentResponse {
	return contentResponse{
		ID:              c.ID,
		SubtopicID:      c.SubtopicID,
		ContentType:     string(c.ContentType),
		Payload:         c.Payload,
		DifficultyLevel: c.DifficultyLevel,
		Version:         c.Version,
		AIModel:         c.AIModel,
		CreatedAt:       c.CreatedAt,
	}
}

func toContentResponses(list []*entities.GeneratedContent) []contentResponse {
	out := make([]contentResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toContentResponse(c))
	}
	return out
}
