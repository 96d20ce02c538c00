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
	ErrTopicNotFound = errors.New("topic not found")
	ErrTopicExists   = errors.New("topic already exists")
)

// TopicRepository provides access to topics in the database.
type TopicRepository struct {
	db postgres.DBTX
}

func NewTopicRepository(db postgres.DBTX) *TopicRepository {
	return &TopicRepository{db: db}
}

const topicColumns = `id, name, description, category, importance_level, icon_emoji, is_active, created_at, updated_at`

func scanTopic(row pgx.Row) (*entities.Topic, error) {
	var t entities.Topic
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Category,
		&t.ImportanceLevel,
		&t.IconEmoji,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new topic.
func (r *TopicRepository) Create(ctx context.Context, topic *entities.Topic) error {
	query := `
		INSERT INTO topics (id, name, description, category, importance_level, icon_emoji, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		topic.ID,
		topic.Name,
		topic.Description,
		topic.Category,
		topic.ImportanceLevel,
		topic.IconEmoji,
		topic.IsActive,
		topic.CreatedAt,
		topic.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return ErrTopicExists
		}
		return fmt.Errorf("create topic: %w", err)
	}

	return nil
}

// GetByID retrieves a single topic.
func (r *TopicRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Topic, error) {
	query := `SELECT ` + topicColumns + ` FROM topics WHERE id = $1`

	topic, err := scanTopic(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("get topic: %w", err)
	}

	return topic, nil
}

// List retrieves topics, optionally filtered by category and active flag.
func (r *TopicRepository) List(ctx context.Context, category string, activeOnly bool) ([]*entities.Topic, error) {
	query := `SELECT ` + topicColumns + ` FROM topics WHERE ($1 = '' OR category = $1) AND (NOT $2 OR is_active) ORDER BY name`

	rows, err := r.db.Query(ctx, query, category, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []*entities.Topic
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, topic)
	}

	return topics, rows.Err()
}

// Update overwrites the mutable topic fields.
func (r *TopicRepository) Update(ctx context.Context, topic *entities.Topic) error {
	query := `
		UPDATE topics
		SET name = $2, description = $3, category = $4, importance_level = $5,
		    icon_emoji = $6, is_active = $7, updated_at = $8
		WHERE id = $1
	`

	tag, err := r.db.Exec(
		ctx,
		query,
		topic.ID,
		topic.Name,
		topic.Description,
		topic.Category,
		topic.ImportanceLevel,
		topic.IconEmoji,
		topic.IsActive,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update topic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTopicNotFound
	}

	return nil
}

// Delete removes a topic and, through cascading constraints, its subtopics.
func (r *TopicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM topics WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTopicNotFound
	}
	return nil
}
