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

var ErrContentNotFound = errors.New("generated content not found")

// ContentRepository provides access to generated learning content.
type ContentRepository struct {
	db postgres.DBTX
}

func NewContentRepository(db postgres.DBTX) *ContentRepository {
	return &ContentRepository{db: db}
}

const contentColumns = `id, subtopic_id, content_type, payload, difficulty_level, version, ai_model, is_active, created_at`

func scanContent(row pgx.Row) (*entities.GeneratedContent, error) {
	var c entities.GeneratedContent
	var contentType string
	err := row.Scan(
		&c.ID,
		&c.SubtopicID,
		&contentType,
		&c.Payload,
		&c.DifficultyLevel,
		&c.Version,
		&c.AIModel,
		&c.IsActive,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ContentType = entities.ContentType(contentType)
	return &c, nil
}

// Create inserts a generated content record.
func (r *ContentRepository) Create(ctx context.Context, c *entities.GeneratedContent) error {
	query := `
		INSERT INTO generated_content (id, subtopic_id, content_type, payload, difficulty_level, version, ai_model, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		c.ID,
		c.SubtopicID,
		string(c.ContentType),
		c.Payload,
		c.DifficultyLevel,
		c.Version,
		c.AIModel,
		c.IsActive,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create content: %w", err)
	}

	return nil
}

// GetByID retrieves one generated content record.
func (r *ContentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.GeneratedContent, error) {
	query := `SELECT ` + contentColumns + ` FROM generated_content WHERE id = $1`

	c, err := scanContent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("get content: %w", err)
	}

	return c, nil
}

// GetBySubtopic retrieves active content for a subtopic, newest first.
// An empty contentType matches every type.
func (r *ContentRepository) GetBySubtopic(ctx context.Context, subtopicID uuid.UUID, contentType entities.ContentType) ([]*entities.GeneratedContent, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM generated_content
		WHERE subtopic_id = $1
		  AND ($2 = '' OR content_type = $2)
		  AND is_active
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, subtopicID, string(contentType))
	if err != nil {
		return nil, fmt.Errorf("get content by subtopic: %w", err)
	}
	defer rows.Close()

	var contents []*entities.GeneratedContent
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		contents = append(contents, c)
	}

	return contents, rows.Err()
}
