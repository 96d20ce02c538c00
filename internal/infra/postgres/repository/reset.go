package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/thestackdev/loop/internal/infra/postgres"
)

// ResetRepository removes a user's learning data. Used only inside a
// transaction; the operations are not meaningful in isolation.
type ResetRepository struct {
	db postgres.DBTX
}

func NewResetRepository(db postgres.DBTX) *ResetRepository {
	return &ResetRepository{db: db}
}

func (r *ResetRepository) ClearProgress(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_subtopic_progress WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	return nil
}

func (r *ResetRepository) ClearFeeds(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM daily_feeds WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear feeds: %w", err)
	}
	return nil
}

func (r *ResetRepository) ClearSessions(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM learning_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	return nil
}

func (r *ResetRepository) DeactivateSubscriptions(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `UPDATE user_topics SET is_active = FALSE WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("deactivate subscriptions: %w", err)
	}
	return nil
}
