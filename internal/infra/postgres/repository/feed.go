package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/infra/postgres"
)

var (
	ErrFeedNotFound = errors.New("daily feed not found")
	// ErrFeedExists signals the (user, date) uniqueness constraint fired:
	// another call created today's entry first. Callers re-fetch instead of
	// treating this as a failure.
	ErrFeedExists = errors.New("daily feed already exists for date")
)

// FeedRepository provides access to daily feed entries.
type FeedRepository struct {
	db postgres.DBTX
}

func NewFeedRepository(db postgres.DBTX) *FeedRepository {
	return &FeedRepository{db: db}
}

const feedColumns = `id, user_id, subtopic_id, feed_date, is_completed, completed_at, created_at`

func scanFeed(row pgx.Row) (*entities.DailyFeed, error) {
	var f entities.DailyFeed
	err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.SubtopicID,
		&f.FeedDate,
		&f.IsCompleted,
		&f.CompletedAt,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a feed entry for the given UTC calendar date.
func (r *FeedRepository) Create(ctx context.Context, feed *entities.DailyFeed) error {
	query := `
		INSERT INTO daily_feeds (id, user_id, subtopic_id, feed_date, is_completed, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		feed.ID,
		feed.UserID,
		feed.SubtopicID,
		feed.FeedDate,
		feed.IsCompleted,
		feed.CompletedAt,
		feed.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "uq_user_feed_date") {
			return ErrFeedExists
		}
		return fmt.Errorf("create feed: %w", err)
	}

	return nil
}

// GetForDate retrieves the user's feed entry for one UTC calendar date.
func (r *FeedRepository) GetForDate(ctx context.Context, userID uuid.UUID, date time.Time) (*entities.DailyFeed, error) {
	query := `SELECT ` + feedColumns + ` FROM daily_feeds WHERE user_id = $1 AND feed_date = $2`

	feed, err := scanFeed(r.db.QueryRow(ctx, query, userID, entities.FeedDateUTC(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFeedNotFound
		}
		return nil, fmt.Errorf("get feed for date: %w", err)
	}

	return feed, nil
}

// GetByID retrieves a feed entry by its id.
func (r *FeedRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.DailyFeed, error) {
	query := `SELECT ` + feedColumns + ` FROM daily_feeds WHERE id = $1`

	feed, err := scanFeed(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFeedNotFound
		}
		return nil, fmt.Errorf("get feed: %w", err)
	}

	return feed, nil
}

// History retrieves the user's feed entries for the last N days, newest
// first.
func (r *FeedRepository) History(ctx context.Context, userID uuid.UUID, days int) ([]*entities.DailyFeed, error) {
	query := `
		SELECT ` + feedColumns + `
		FROM daily_feeds
		WHERE user_id = $1 AND feed_date >= NOW() - make_interval(days => $2)
		ORDER BY feed_date DESC
	`

	rows, err := r.db.Query(ctx, query, userID, days)
	if err != nil {
		return nil, fmt.Errorf("feed history: %w", err)
	}
	defer rows.Close()

	var feeds []*entities.DailyFeed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		feeds = append(feeds, feed)
	}

	return feeds, rows.Err()
}

// MarkCompleted sets the completion flag and timestamp on a feed entry. It is
// a no-op for entries already completed.
func (r *FeedRepository) MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time) (*entities.DailyFeed, error) {
	query := `
		UPDATE daily_feeds
		SET is_completed = TRUE,
		    completed_at = COALESCE(completed_at, $2)
		WHERE id = $1
		RETURNING ` + feedColumns

	feed, err := scanFeed(r.db.QueryRow(ctx, query, id, completedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFeedNotFound
		}
		return nil, fmt.Errorf("mark feed completed: %w", err)
	}

	return feed, nil
}

// Streak computes the user's run of consecutive completed feed days ending at
// the most recent entry.
func (r *FeedRepository) Streak(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		WITH ordered AS (
			SELECT feed_date::date AS day,
			       is_completed,
			       ROW_NUMBER() OVER (ORDER BY feed_date DESC) AS rn
			FROM daily_feeds
			WHERE user_id = $1 AND feed_date <= NOW()
		)
		SELECT COUNT(*)
		FROM ordered o
		WHERE o.is_completed
		  AND NOT EXISTS (
			SELECT 1 FROM ordered b
			WHERE b.rn <= o.rn AND NOT b.is_completed
		  )
	`

	var streak int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&streak); err != nil {
		return 0, fmt.Errorf("feed streak: %w", err)
	}

	return streak, nil
}
