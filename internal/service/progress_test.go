package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/infra/postgres/repository"
)

func newProgressFixture(t *testing.T) (*ProgressService, *fakeProgressRepo, *fakeSubtopicRepo, time.Time) {
	t.Helper()

	subtopics := newFakeSubtopicRepo()
	progress := newFakeProgressRepo(subtopics)
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	progress.now = func() time.Time { return now }

	svc := NewProgressService(progress, subtopics)
	svc.now = func() time.Time { return now }
	return svc, progress, subtopics, now
}

func TestProgressService_RecordPerformance(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects out of range scores", func(t *testing.T) {
		svc, _, _, _ := newProgressFixture(t)

		_, err := svc.RecordPerformance(ctx, uuid.New(), uuid.New(), entities.SessionPerformance{QuizScore: 1.5}, 0)
		assert.ErrorIs(t, err, ErrInvalidScore)

		_, err = svc.RecordPerformance(ctx, uuid.New(), uuid.New(), entities.SessionPerformance{FlashcardSuccessRate: -0.2}, 0)
		assert.ErrorIs(t, err, ErrInvalidScore)
	})

	t.Run("creates record on first exposure", func(t *testing.T) {
		svc, _, _, now := newProgressFixture(t)
		userID, subtopicID := uuid.New(), uuid.New()

		p, err := svc.RecordPerformance(ctx, userID, subtopicID, entities.SessionPerformance{
			ArticleCompleted:     true,
			FlashcardSuccessRate: 1,
			QuizScore:            1,
		}, 15)
		require.NoError(t, err)

		assert.Equal(t, entities.MasteryExpert, p.MasteryLevel)
		assert.Equal(t, 1.0, p.MasteryScore)
		assert.Equal(t, 1, p.IntervalDays)
		assert.Equal(t, 1, p.ConsecutiveCorrect)
		require.NotNil(t, p.NextReviewAt)
		assert.Equal(t, now.Add(24*time.Hour), *p.NextReviewAt)
		assert.Equal(t, 15, p.TotalTimeMinutes)
		require.NotNil(t, p.CompletedAt)
		assert.Equal(t, now, *p.CompletedAt)

		// A later slip into review must not clear the completion mark.
		p, err = svc.RecordPerformance(ctx, userID, subtopicID, entities.SessionPerformance{QuizScore: 0.3}, 5)
		require.NoError(t, err)
		assert.Equal(t, entities.MasteryNeedsReview, p.MasteryLevel)
		require.NotNil(t, p.CompletedAt)
		assert.Equal(t, now, *p.CompletedAt)
	})

	t.Run("tracks session components", func(t *testing.T) {
		svc, _, _, _ := newProgressFixture(t)
		userID, subtopicID := uuid.New(), uuid.New()

		// Quiz only, mediocre.
		p, err := svc.RecordPerformance(ctx, userID, subtopicID, entities.SessionPerformance{QuizScore: 0.6}, 5)
		require.NoError(t, err)
		assert.False(t, p.ArticleRead)
		assert.Equal(t, 0.6, p.QuizBestScore)
		assert.Equal(t, 1, p.QuizAttempts)

		// Reading plus a worse quiz: best score must not regress, the
		// article flag sticks.
		p, err = svc.RecordPerformance(ctx, userID, subtopicID, entities.SessionPerformance{
			ArticleCompleted: true,
			QuizScore:        0.4,
		}, 10)
		require.NoError(t, err)
		assert.True(t, p.ArticleRead)
		assert.Equal(t, 0.6, p.QuizBestScore)
		assert.Equal(t, 2, p.QuizAttempts)
		assert.Equal(t, 15, p.TotalTimeMinutes)

		// Flashcards only: no quiz attempt counted.
		p, err = svc.RecordPerformance(ctx, userID, subtopicID, entities.SessionPerformance{FlashcardSuccessRate: 0.8}, 0)
		require.NoError(t, err)
		assert.True(t, p.ArticleRead)
		assert.Equal(t, 0.8, p.FlashcardSuccessRate)
		assert.Equal(t, 2, p.QuizAttempts)
	})

	t.Run("persists the update", func(t *testing.T) {
		svc, progress, _, _ := newProgressFixture(t)
		userID, subtopicID := uuid.New(), uuid.New()

		_, err := svc.RecordPerformance(ctx, userID, subtopicID, entities.SessionPerformance{
			ArticleCompleted:     true,
			FlashcardSuccessRate: 0.9,
			QuizScore:            0.9,
		}, 0)
		require.NoError(t, err)

		stored, err := progress.Get(ctx, userID, subtopicID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.ConsecutiveCorrect)
		assert.Equal(t, 0.9, stored.QuizBestScore)
	})
}

func TestProgressService_GetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown subtopic fails", func(t *testing.T) {
		svc, _, _, _ := newProgressFixture(t)
		_, err := svc.GetOrCreate(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, repository.ErrSubtopicNotFound)
	})

	t.Run("creates then returns the same record", func(t *testing.T) {
		svc, _, subtopics, _ := newProgressFixture(t)
		userID := uuid.New()
		s := &entities.Subtopic{ID: uuid.New(), TopicID: uuid.New(), OrderIndex: 1, IsActive: true}
		subtopics.subtopics[s.ID] = s

		first, err := svc.GetOrCreate(ctx, userID, s.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.MasteryNotStarted, first.MasteryLevel)

		second, err := svc.GetOrCreate(ctx, userID, s.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})
}

func TestProgressService_Summary(t *testing.T) {
	ctx := context.Background()
	svc, progress, subtopics, _ := newProgressFixture(t)

	userID := uuid.New()
	topicID := uuid.New()
	var ids []uuid.UUID
	for i := 1; i <= 4; i++ {
		s := &entities.Subtopic{ID: uuid.New(), TopicID: topicID, OrderIndex: i, IsActive: true}
		subtopics.subtopics[s.ID] = s
		ids = append(ids, s.ID)
	}

	// Two mastered, one in progress, one untouched.
	for i, level := range []entities.MasteryLevel{entities.MasteryMastered, entities.MasteryExpert, entities.MasteryInProgress} {
		p := entities.NewUserSubtopicProgress(userID, ids[i])
		p.MasteryLevel = level
		require.NoError(t, progress.Upsert(ctx, p))
	}

	summary, err := svc.Summary(ctx, userID, topicID)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalSubtopics)
	assert.Equal(t, 3, summary.StartedSubtopics)
	assert.Equal(t, 2, summary.MasteredSubtopics)
	assert.InDelta(t, 50.0, summary.ProgressPercent, 1e-9)
	require.NotNil(t, summary.CurrentSubtopic)
	assert.Equal(t, ids[2], summary.CurrentSubtopic.ID, "first non-mastered subtopic is current")
}
