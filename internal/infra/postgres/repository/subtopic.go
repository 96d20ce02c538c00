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
	ErrSubtopicNotFound   = errors.New("subtopic not found")
	ErrSubtopicOrderTaken = errors.New("subtopic order index already taken")
)

// SubtopicRepository provides access to subtopics in the database.
type SubtopicRepository struct {
	db postgres.DBTX
}

func NewSubtopicRepository(db postgres.DBTX) *SubtopicRepository {
	return &SubtopicRepository{db: db}
}

const subtopicColumns = `id, topic_id, name, description, order_index, estimated_time_minutes, prerequisites, difficulty_level, is_active, created_at`

func scanSubtopic(row pgx.Row) (*entities.Subtopic, error) {
	var s entities.Subtopic
	err := row.Scan(
		&s.ID,
		&s.TopicID,
		&s.Name,
		&s.Description,
		&s.OrderIndex,
		&s.EstimatedTimeMinutes,
		&s.Prerequisites,
		&s.DifficultyLevel,
		&s.IsActive,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new subtopic. The (topic_id, order_index) pair is unique.
func (r *SubtopicRepository) Create(ctx context.Context, subtopic *entities.Subtopic) error {
	query := `
		INSERT INTO subtopics (id, topic_id, name, description, order_index, estimated_time_minutes,
		                       prerequisites, difficulty_level, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		subtopic.ID,
		subtopic.TopicID,
		subtopic.Name,
		subtopic.Description,
		subtopic.OrderIndex,
		subtopic.EstimatedTimeMinutes,
		subtopic.Prerequisites,
		subtopic.DifficultyLevel,
		subtopic.IsActive,
		subtopic.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "uq_topic_subtopic_order") {
			return ErrSubtopicOrderTaken
		}
		return fmt.Errorf("create subtopic: %w", err)
	}

	return nil
}

// GetByID retrieves a single subtopic.
func (r *SubtopicRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Subtopic, error) {
	query := `SELECT ` + subtopicColumns + ` FROM subtopics WHERE id = $1`

	subtopic, err := scanSubtopic(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubtopicNotFound
		}
		return nil, fmt.Errorf("get subtopic: %w", err)
	}

	return subtopic, nil
}

// GetByTopic retrieves subtopics of a topic ordered by their progression
// index. With activeOnly set, inactive subtopics are filtered out.
func (r *SubtopicRepository) GetByTopic(ctx context.Context, topicID uuid.UUID, activeOnly bool) ([]*entities.Subtopic, error) {
	query := `
		SELECT ` + subtopicColumns + `
		FROM subtopics
		WHERE topic_id = $1 AND (NOT $2 OR is_active)
		ORDER BY order_index
	`

	rows, err := r.db.Query(ctx, query, topicID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("get subtopics by topic: %w", err)
	}
	defer rows.Close()

	var subtopics []*entities.Subtopic
	for rows.Next() {
		subtopic, err := scanSubtopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subtopic: %w", err)
		}
		subtopics = append(subtopics, subtopic)
	}

	return subtopics, rows.Err()
}

// Update overwrites the mutable subtopic fields.
func (r *SubtopicRepository) Update(ctx context.Context, subtopic *entities.Subtopic) error {
	query := `
		UPDATE subtopics
		SET name = $2, description = $3, order_index = $4, estimated_time_minutes = $5,
		    prerequisites = $6, difficulty_level = $7, is_active = $8
		WHERE id = $1
	`

	tag, err := r.db.Exec(
		ctx,
		query,
		subtopic.ID,
		subtopic.Name,
		subtopic.Description,
		subtopic.OrderIndex,
		subtopic.EstimatedTimeMinutes,
		subtopic.Prerequisites,
		subtopic.DifficultyLevel,
		subtopic.IsActive,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "uq_topic_subtopic_order") {
			return ErrSubtopicOrderTaken
		}
		return fmt.Errorf("update subtopic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubtopicNotFound
	}

	return nil
}

// Delete removes a subtopic.
func (r *SubtopicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subtopics WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subtopic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubtopicNotFound
	}
	return nil
}
