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

var (
	ErrSubscriptionNotFound = errors.New("topic subscription not found")
	ErrAlreadySubscribed    = errors.New("user already subscribed to topic")
)

// UserTopicRepository provides access to topic subscriptions.
type UserTopicRepository struct {
	db postgres.DBTX
}

func NewUserTopicRepository(db postgres.DBTX) *UserTopicRepository {
	return &UserTopicRepository{db: db}
}

const userTopicColumns = `id, user_id, topic_id, priority_order, is_active, started_at, completed_at`

func scanUserTopic(row pgx.Row) (*entities.UserTopic, error) {
	var ut entities.UserTopic
	err := row.Scan(
		&ut.ID,
		&ut.UserID,
		&ut.TopicID,
		&ut.PriorityOrder,
		&ut.IsActive,
		&ut.StartedAt,
		&ut.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ut, nil
}

// Create inserts a subscription. The (user_id, topic_id) pair is unique.
func (r *UserTopicRepository) Create(ctx context.Context, ut *entities.UserTopic) error {
	query := `
		INSERT INTO user_topics (id, user_id, topic_id, priority_order, is_active, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query, ut.ID, ut.UserID, ut.TopicID, ut.PriorityOrder, ut.IsActive, ut.StartedAt, ut.CompletedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, "uq_user_topic") {
			return ErrAlreadySubscribed
		}
		return fmt.Errorf("create user topic: %w", err)
	}

	return nil
}

// Get retrieves one subscription by its (user, topic) pair.
func (r *UserTopicRepository) Get(ctx context.Context, userID, topicID uuid.UUID) (*entities.UserTopic, error) {
	query := `SELECT ` + userTopicColumns + ` FROM user_topics WHERE user_id = $1 AND topic_id = $2`

	ut, err := scanUserTopic(r.db.QueryRow(ctx, query, userID, topicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("get user topic: %w", err)
	}

	return ut, nil
}

// GetByUser retrieves a user's subscriptions in priority order. With
// activeOnly set, paused subscriptions are filtered out.
func (r *UserTopicRepository) GetByUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entities.UserTopic, error) {
	query := `
		SELECT ` + userTopicColumns + `
		FROM user_topics
		WHERE user_id = $1 AND (NOT $2 OR is_active)
		ORDER BY priority_order
	`

	rows, err := r.db.Query(ctx, query, userID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("get user topics: %w", err)
	}
	defer rows.Close()

	var subs []*entities.UserTopic
	for rows.Next() {
		ut, err := scanUserTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user topic: %w", err)
		}
		subs = append(subs, ut)
	}

	return subs, rows.Err()
}

// Update overwrites the mutable subscription fields.
func (r *UserTopicRepository) Update(ctx context.Context, ut *entities.UserTopic) error {
	query := `
		UPDATE user_topics
		SET priority_order = $3, is_active = $4, completed_at = $5
		WHERE user_id = $1 AND topic_id = $2
	`

	tag, err := r.db.Exec(ctx, query, ut.UserID, ut.TopicID, ut.PriorityOrder, ut.IsActive, ut.CompletedAt)
	if err != nil {
		return fmt.Errorf("update user topic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

// ActiveUserIDs returns the distinct users with at least one active
// subscription, for the daily feed batch job.
func (r *UserTopicRepository) ActiveUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT user_id FROM user_topics WHERE is_active ORDER BY user_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("active user ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
