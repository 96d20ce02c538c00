package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/infra/postgres/repository"
)

// ErrInvalidScore reports a session performance component outside [0,1].
// Scores are validated before any scheduling computation runs.
var ErrInvalidScore = errors.New("performance score out of range")

// ProgressService owns the review side of the engine: it turns a completed
// session's performance into a new review schedule and mastery classification
// on the (user, subtopic) progress record.
type ProgressService struct {
	progressRepo ProgressRepository
	subtopicRepo SubtopicRepository

	now func() time.Time
}

func NewProgressService(progressRepo ProgressRepository, subtopicRepo SubtopicRepository) *ProgressService {
	return &ProgressService{
		progressRepo: progressRepo,
		subtopicRepo: subtopicRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RecordPerformance aggregates the session components into a single score,
// runs the spaced repetition policy and persists the updated record. The
// progress record is created lazily if the session was the user's first
// exposure to the subtopic.
func (s *ProgressService) RecordPerformance(
	ctx context.Context,
	userID, subtopicID uuid.UUID,
	perf entities.SessionPerformance,
	durationMinutes int,
) (*entities.UserSubtopicProgress, error) {
	if !perf.Valid() {
		return nil, ErrInvalidScore
	}

	progress, err := s.progressRepo.Get(ctx, userID, subtopicID)
	if err != nil {
		if !errors.Is(err, repository.ErrProgressNotFound) {
			return nil, err
		}
		progress = entities.NewUserSubtopicProgress(userID, subtopicID)
	}

	score := perf.Score()
	now := s.now()

	update := entities.ComputeNextReview(progress, score, now)
	progress.ApplyReview(update, score, now)

	if perf.ArticleCompleted {
		progress.ArticleRead = true
	}
	progress.FlashcardSuccessRate = perf.FlashcardSuccessRate
	if perf.QuizScore > progress.QuizBestScore {
		progress.QuizBestScore = perf.QuizScore
	}
	if perf.QuizScore > 0 {
		progress.QuizAttempts++
	}
	if durationMinutes > 0 {
		progress.TotalTimeMinutes += durationMinutes
	}

	// First time a subtopic is mastered it counts as completed. The mark is
	// permanent; a later slip into review does not un-complete it.
	if progress.MasteryLevel.IsMastered() && progress.CompletedAt == nil {
		completed := now
		progress.CompletedAt = &completed
	}

	if err := s.progressRepo.Upsert(ctx, progress); err != nil {
		return nil, err
	}

	return progress, nil
}

// GetOrCreate returns the progress record for (user, subtopic), creating a
// not-started one on first access. The subtopic must exist.
func (s *ProgressService) GetOrCreate(ctx context.Context, userID, subtopicID uuid.UUID) (*entities.UserSubtopicProgress, error) {
	progress, err := s.progressRepo.Get(ctx, userID, subtopicID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, repository.ErrProgressNotFound) {
		return nil, err
	}

	if _, err := s.subtopicRepo.GetByID(ctx, subtopicID); err != nil {
		return nil, err
	}

	progress = entities.NewUserSubtopicProgress(userID, subtopicID)
	if err := s.progressRepo.Upsert(ctx, progress); err != nil {
		return nil, err
	}

	return progress, nil
}

// GetByTopic returns the user's progress for every started subtopic of a
// topic, in progression order.
func (s *ProgressService) GetByTopic(ctx context.Context, userID, topicID uuid.UUID) ([]*entities.UserSubtopicProgress, error) {
	return s.progressRepo.GetByTopic(ctx, userID, topicID)
}

// DueReviews returns the user's most overdue reviewable records.
func (s *ProgressService) DueReviews(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.UserSubtopicProgress, error) {
	return s.progressRepo.GetDueReviews(ctx, userID, limit)
}

// TopicSummary aggregates a user's standing within one topic.
type TopicSummary struct {
	TotalSubtopics     int
	StartedSubtopics   int
	MasteredSubtopics  int
	CompletedSubtopics int
	DueReviews         int
	ProgressPercent    float64
	CurrentSubtopic    *entities.Subtopic
}

// Summary computes the per-topic progress overview shown on the dashboard.
func (s *ProgressService) Summary(ctx context.Context, userID, topicID uuid.UUID) (*TopicSummary, error) {
	subtopics, err := s.subtopicRepo.GetByTopic(ctx, topicID, true)
	if err != nil {
		return nil, err
	}

	progressList, err := s.progressRepo.GetByTopic(ctx, userID, topicID)
	if err != nil {
		return nil, err
	}

	due, err := s.progressRepo.CountDue(ctx, userID)
	if err != nil {
		return nil, err
	}

	progressMap := make(map[uuid.UUID]*entities.UserSubtopicProgress, len(progressList))
	mastered, completed := 0, 0
	for _, p := range progressList {
		progressMap[p.SubtopicID] = p
		if p.MasteryLevel.IsMastered() {
			mastered++
		}
		if p.CompletedAt != nil {
			completed++
		}
	}

	summary := &TopicSummary{
		TotalSubtopics:     len(subtopics),
		StartedSubtopics:   len(progressList),
		MasteredSubtopics:  mastered,
		CompletedSubtopics: completed,
		DueReviews:         due,
	}
	if len(subtopics) > 0 {
		summary.ProgressPercent = float64(mastered) / float64(len(subtopics)) * 100
	}

	for _, subtopic := range subtopics {
		p, ok := progressMap[subtopic.ID]
		if !ok || !p.MasteryLevel.IsMastered() {
			summary.CurrentSubtopic = subtopic
			break
		}
	}

	return summary, nil
}
