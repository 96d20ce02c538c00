package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/thestackdev/loop/internal/infra/postgres/repository"
)

// Transactor runs a function inside a single database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// ResetService wipes a user's learning data: progress records, sessions,
// feed history and subscriptions go together or not at all.
type ResetService struct {
	tr Transactor
}

func NewResetService(tr Transactor) *ResetService {
	return &ResetService{tr: tr}
}

func (s *ResetService) ResetUser(ctx context.Context, userID uuid.UUID) error {
	return s.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		resetRepo := repository.NewResetRepository(tx)

		if err := resetRepo.ClearProgress(ctx, userID); err != nil {
			return err
		}
		if err := resetRepo.ClearFeeds(ctx, userID); err != nil {
			return err
		}
		if err := resetRepo.ClearSessions(ctx, userID); err != nil {
			return err
		}
		return resetRepo.DeactivateSubscriptions(ctx, userID)
	})
}
