package entities

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// MasteryLevel classifies a user's command of a subtopic.
type MasteryLevel string

const (
	MasteryNotStarted  MasteryLevel = "not_started"
	MasteryInProgress  MasteryLevel = "in_progress"
	MasteryNeedsReview MasteryLevel = "needs_review"
	MasteryMastered    MasteryLevel = "mastered"
	MasteryExpert      MasteryLevel = "expert"
)

// IsMastered reports whether the level satisfies prerequisite gating.
func (m MasteryLevel) IsMastered() bool {
	return m == MasteryMastered || m == MasteryExpert
}

// Reviewable reports whether a record at this level participates in the
// due-review queue.
func (m MasteryLevel) Reviewable() bool {
	return m == MasteryInProgress || m == MasteryNeedsReview
}

// Default values for a freshly created progress record.
const (
	DefaultIntervalDays = 1
	DefaultEaseFactor   = 2.5
	MinEaseFactor       = 1.3
)

// UserSubtopicProgress stores the learning progress of a user for a single
// subtopic. One record per (user, subtopic); mutated only by review updates.
type UserSubtopicProgress struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	SubtopicID uuid.UUID

	MasteryLevel MasteryLevel
	MasteryScore float64

	// Session component tracking.
	ArticleRead          bool
	FlashcardSuccessRate float64
	QuizBestScore        float64
	QuizAttempts         int
	TotalTimeMinutes     int

	// Spaced repetition fields.
	IntervalDays       int     // current interval to next review, >= 1
	EaseFactor         float64 // SM-2 ease factor, >= 1.3
	ConsecutiveCorrect int     // passing reviews in a row

	LastReviewedAt *time.Time
	NextReviewAt   *time.Time
	StartedAt      time.Time
	CompletedAt    *time.Time
}

// NewUserSubtopicProgress creates a progress record in the not-started state
// with default spaced repetition parameters.
func NewUserSubtopicProgress(userID, subtopicID uuid.UUID) *UserSubtopicProgress {
	return &UserSubtopicProgress{
		ID:           uuid.New(),
		UserID:       userID,
		SubtopicID:   subtopicID,
		MasteryLevel: MasteryNotStarted,
		IntervalDays: DefaultIntervalDays,
		EaseFactor:   DefaultEaseFactor,
		StartedAt:    time.Now().UTC(),
	}
}

// ReviewUpdate is the result of one scheduling step: the values the caller
// persists onto the progress record.
type ReviewUpdate struct {
	NextReviewAt       time.Time
	IntervalDays       int
	EaseFactor         float64
	ConsecutiveCorrect int
	MasteryLevel       MasteryLevel
}

// ComputeNextReview applies the SM-2 derived policy to the current progress
// state and a session performance score in [0,1].
//
// The score maps to an integer grade 0-5 by truncation, so anything below
// 0.6 fails. A grade of 3 or better counts as a pass: the streak grows and the interval follows the 1, 6, round(i*ease)
// ladder. A fail resets the streak and interval. The ease factor moves by the
// standard SM-2 formula in both branches and never drops below 1.3.
//
// The mastery level is derived from the raw score alone, so a previously
// mastered subtopic that scores badly is reclassified as needing review.
func ComputeNextReview(p *UserSubtopicProgress, score float64, now time.Time) ReviewUpdate {
	grade := int(score * 5)
	if grade < 0 {
		grade = 0
	}
	if grade > 5 {
		grade = 5
	}

	var interval, streak int
	if grade >= 3 {
		switch p.ConsecutiveCorrect {
		case 0:
			interval = 1
		case 1:
			interval = 6
		default:
			interval = int(math.Round(float64(p.IntervalDays) * p.EaseFactor))
		}
		streak = p.ConsecutiveCorrect + 1
	} else {
		interval = 1
		streak = 0
	}

	q := float64(5 - grade)
	ease := p.EaseFactor + 0.1 - q*(0.08+q*0.02)
	if ease < MinEaseFactor {
		ease = MinEaseFactor
	}

	return ReviewUpdate{
		NextReviewAt:       now.Add(time.Duration(interval) * 24 * time.Hour),
		IntervalDays:       interval,
		EaseFactor:         ease,
		ConsecutiveCorrect: streak,
		MasteryLevel:       MasteryFromScore(score),
	}
}

// MasteryFromScore classifies a performance score. The classification tracks
// the most recent session only; it can move backward.
func MasteryFromScore(score float64) MasteryLevel {
	switch {
	case score >= 0.95:
		return MasteryExpert
	case score >= 0.85:
		return MasteryMastered
	case score >= 0.70:
		return MasteryInProgress
	default:
		return MasteryNeedsReview
	}
}

// ApplyReview writes a scheduling result back onto the record.
func (p *UserSubtopicProgress) ApplyReview(u ReviewUpdate, score float64, now time.Time) {
	p.IntervalDays = u.IntervalDays
	p.EaseFactor = u.EaseFactor
	p.ConsecutiveCorrect = u.ConsecutiveCorrect
	p.MasteryLevel = u.MasteryLevel
	p.MasteryScore = score
	next := u.NextReviewAt
	p.NextReviewAt = &next
	reviewed := now
	p.LastReviewedAt = &reviewed
}
