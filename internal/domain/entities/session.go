package entities

import (
	"time"

	"github.com/google/uuid"
)

// SessionType distinguishes what kind of study a learning session was.
type SessionType string

const (
	SessionReading           SessionType = "reading"
	SessionFlashcardPractice SessionType = "flashcard_practice"
	SessionQuizAttempt       SessionType = "quiz_attempt"
	SessionReview            SessionType = "review"
)

// Valid reports whether t is one of the known session types.
func (t SessionType) Valid() bool {
	switch t {
	case SessionReading, SessionFlashcardPractice, SessionQuizAttempt, SessionReview:
		return true
	}
	return false
}

// LearningSession records a single study session against a subtopic.
type LearningSession struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	SubtopicID      uuid.UUID
	SessionType     SessionType
	StartedAt       time.Time
	CompletedAt     *time.Time
	DurationMinutes *int
	Performance     SessionPerformance
}

// NewLearningSession starts a session of the given type.
func NewLearningSession(userID, subtopicID uuid.UUID, sessionType SessionType) *LearningSession {
	return &LearningSession{
		ID:          uuid.New(),
		UserID:      userID,
		SubtopicID:  subtopicID,
		SessionType: sessionType,
		StartedAt:   time.Now().UTC(),
	}
}

// SessionPerformance holds the per-component results of a study session.
// Components a session did not include stay at their zero values.
type SessionPerformance struct {
	ArticleCompleted     bool    `json:"article_completed"`
	FlashcardSuccessRate float64 `json:"flashcard_success_rate"`
	QuizScore            float64 `json:"quiz_score"`
}

// Weights of the session components in the aggregate score.
const (
	readingWeight   = 0.3
	flashcardWeight = 0.4
	quizWeight      = 0.3
)

// Score aggregates the components into one performance score.
//
// Missing components contribute zero and the sum is not re-normalized, so a
// session that skipped a component is capped below 1.0 by construction. The
// weighting is compatibility-critical; do not change it.
func (p SessionPerformance) Score() float64 {
	var score float64
	if p.ArticleCompleted {
		score += readingWeight
	}
	score += p.FlashcardSuccessRate * flashcardWeight
	score += p.QuizScore * quizWeight
	return score
}

// Valid reports whether every component rate is inside [0,1].
func (p SessionPerformance) Valid() bool {
	if p.FlashcardSuccessRate < 0 || p.FlashcardSuccessRate > 1 {
		return false
	}
	return p.QuizScore >= 0 && p.QuizScore <= 1
}
