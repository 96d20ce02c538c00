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

var ErrSessionNotFound = errors.New("learning session not found")

// SessionRepository provides access to learning sessions.
type SessionRepository struct {
	db postgres.DBTX
}

func NewSessionRepository(db postgres.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, user_id, subtopic_id, session_type, started_at, completed_at, duration_minutes,
	article_completed, flashcard_success_rate, quiz_score`

func scanSession(row pgx.Row) (*entities.LearningSession, error) {
	var s entities.LearningSession
	var sessionType string
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.SubtopicID,
		&sessionType,
		&s.StartedAt,
		&s.CompletedAt,
		&s.DurationMinutes,
		&s.Performance.ArticleCompleted,
		&s.Performance.FlashcardSuccessRate,
		&s.Performance.QuizScore,
	)
	if err != nil {
		return nil, err
	}
	s.SessionType = entities.SessionType(sessionType)
	return &s, nil
}

// Create inserts a new learning session.
func (r *SessionRepository) Create(ctx context.Context, s *entities.LearningSession) error {
	query := `
		INSERT INTO learning_sessions (id, user_id, subtopic_id, session_type, started_at, completed_at,
		                               duration_minutes, article_completed, flashcard_success_rate, quiz_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		s.ID,
		s.UserID,
		s.SubtopicID,
		string(s.SessionType),
		s.StartedAt,
		s.CompletedAt,
		s.DurationMinutes,
		s.Performance.ArticleCompleted,
		s.Performance.FlashcardSuccessRate,
		s.Performance.QuizScore,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetByID retrieves a session.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.LearningSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM learning_sessions WHERE id = $1`

	s, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return s, nil
}

// Update overwrites the completion fields of a session.
func (r *SessionRepository) Update(ctx context.Context, s *entities.LearningSession) error {
	query := `
		UPDATE learning_sessions
		SET completed_at = $2, duration_minutes = $3,
		    article_completed = $4, flashcard_success_rate = $5, quiz_score = $6
		WHERE id = $1
	`

	tag, err := r.db.Exec(
		ctx,
		query,
		s.ID,
		s.CompletedAt,
		s.DurationMinutes,
		s.Performance.ArticleCompleted,
		s.Performance.FlashcardSuccessRate,
		s.Performance.QuizScore,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// GetByUser retrieves a user's most recent sessions.
func (r *SessionRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LearningSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM learning_sessions
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get sessions by user: %w", err)
	}
	defer rows.Close()

	var sessions []*entities.LearningSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}
