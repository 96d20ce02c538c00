package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/infra/postgres"
)

var ErrProgressNotFound = errors.New("progress not found")

// ProgressRepository provides access to per-subtopic progress records.
type ProgressRepository struct {
	db postgres.DBTX
}

func NewProgressRepository(db postgres.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

const progressColumns = `id, user_id, subtopic_id, mastery_level, mastery_score,
	article_read, flashcard_success_rate, quiz_best_score, quiz_attempts, total_time_minutes,
	interval_days, ease_factor, consecutive_correct,
	last_reviewed_at, next_review_at, started_at, completed_at`

func scanProgress(row pgx.Row) (*entities.UserSubtopicProgress, error) {
	var p entities.UserSubtopicProgress
	var mastery string
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.SubtopicID,
		&mastery,
		&p.MasteryScore,
		&p.ArticleRead,
		&p.FlashcardSuccessRate,
		&p.QuizBestScore,
		&p.QuizAttempts,
		&p.TotalTimeMinutes,
		&p.IntervalDays,
		&p.EaseFactor,
		&p.ConsecutiveCorrect,
		&p.LastReviewedAt,
		&p.NextReviewAt,
		&p.StartedAt,
		&p.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	p.MasteryLevel = entities.MasteryLevel(mastery)
	return &p, nil
}

// Upsert creates or updates a progress record keyed by (user, subtopic).
func (r *ProgressRepository) Upsert(ctx context.Context, p *entities.UserSubtopicProgress) error {
	query := `
		INSERT INTO user_subtopic_progress (
			id, user_id, subtopic_id, mastery_level, mastery_score,
			article_read, flashcard_success_rate, quiz_best_score, quiz_attempts, total_time_minutes,
			interval_days, ease_factor, consecutive_correct,
			last_reviewed_at, next_review_at, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (user_id, subtopic_id) DO UPDATE SET
			mastery_level = EXCLUDED.mastery_level,
			mastery_score = EXCLUDED.mastery_score,
			article_read = EXCLUDED.article_read,
			flashcard_success_rate = EXCLUDED.flashcard_success_rate,
			quiz_best_score = EXCLUDED.quiz_best_score,
			quiz_attempts = EXCLUDED.quiz_attempts,
			total_time_minutes = EXCLUDED.total_time_minutes,
			interval_days = EXCLUDED.interval_days,
			ease_factor = EXCLUDED.ease_factor,
			consecutive_correct = EXCLUDED.consecutive_correct,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			next_review_at = EXCLUDED.next_review_at,
			completed_at = EXCLUDED.completed_at
	`

	_, err := r.db.Exec(
		ctx,
		query,
		p.ID,
		p.UserID,
		p.SubtopicID,
		string(p.MasteryLevel),
		p.MasteryScore,
		p.ArticleRead,
		p.FlashcardSuccessRate,
		p.QuizBestScore,
		p.QuizAttempts,
		p.TotalTimeMinutes,
		p.IntervalDays,
		p.EaseFactor,
		p.ConsecutiveCorrect,
		p.LastReviewedAt,
		p.NextReviewAt,
		p.StartedAt,
		p.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}

	return nil
}

// Get retrieves a single progress record by (user, subtopic).
func (r *ProgressRepository) Get(ctx context.Context, userID, subtopicID uuid.UUID) (*entities.UserSubtopicProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_subtopic_progress WHERE user_id = $1 AND subtopic_id = $2`

	p, err := scanProgress(r.db.QueryRow(ctx, query, userID, subtopicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}

	return p, nil
}

// GetByTopic retrieves all progress records a user has for subtopics of one
// topic, ordered by the subtopic progression index.
func (r *ProgressRepository) GetByTopic(ctx context.Context, userID, topicID uuid.UUID) ([]*entities.UserSubtopicProgress, error) {
	query := `
		SELECT ` + prefixedProgressColumns + `
		FROM user_subtopic_progress p
		JOIN subtopics s ON s.id = p.subtopic_id
		WHERE p.user_id = $1 AND s.topic_id = $2
		ORDER BY s.order_index
	`

	rows, err := r.db.Query(ctx, query, userID, topicID)
	if err != nil {
		return nil, fmt.Errorf("get progress by topic: %w", err)
	}
	defer rows.Close()

	return collectProgress(rows)
}

// GetDueReviews retrieves the most overdue reviewable progress records whose
// next review timestamp has passed. Filtering happens server-side: only
// records in the in-progress or needs-review states qualify.
func (r *ProgressRepository) GetDueReviews(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.UserSubtopicProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM user_subtopic_progress
		WHERE user_id = $1
		  AND next_review_at IS NOT NULL
		  AND next_review_at <= NOW()
		  AND mastery_level IN ('in_progress', 'needs_review')
		ORDER BY next_review_at, subtopic_id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get due reviews: %w", err)
	}
	defer rows.Close()

	return collectProgress(rows)
}

// CountDue returns how many reviews are currently due for the user.
func (r *ProgressRepository) CountDue(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM user_subtopic_progress
		WHERE user_id = $1
		  AND next_review_at IS NOT NULL
		  AND next_review_at <= NOW()
		  AND mastery_level IN ('in_progress', 'needs_review')
	`

	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count due reviews: %w", err)
	}

	return count, nil
}

// prefixedProgressColumns qualifies progressColumns with the p alias for
// queries that join other tables.
const prefixedProgressColumns = `p.id, p.user_id, p.subtopic_id, p.mastery_level, p.mastery_score,
	p.article_read, p.flashcard_success_rate, p.quiz_best_score, p.quiz_attempts, p.total_time_minutes,
	p.interval_days, p.ease_factor, p.consecutive_correct,
	p.last_reviewed_at, p.next_review_at, p.started_at, p.completed_at`

func collectProgress(rows pgx.Rows) ([]*entities.UserSubtopicProgress, error) {
	var records []*entities.UserSubtopicProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		records = append(records, p)
	}
	return records, rows.Err()
}
