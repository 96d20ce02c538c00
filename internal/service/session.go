package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/infra/postgres/repository"
)

var (
	// ErrInvalidSessionType reports an unknown session type on start.
	ErrInvalidSessionType = errors.New("invalid session type")
	// ErrSessionCompleted reports completion of an already finished session.
	ErrSessionCompleted = errors.New("session already completed")
)

// SessionService manages the lifecycle of learning sessions and forwards
// completed performance to the progress engine.
type SessionService struct {
	sessionRepo  SessionRepository
	subtopicRepo SubtopicRepository
	progress     *ProgressService

	now func() time.Time
}

func NewSessionService(sessionRepo SessionRepository, subtopicRepo SubtopicRepository, progress *ProgressService) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		subtopicRepo: subtopicRepo,
		progress:     progress,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Start opens a session of the given type against an existing subtopic.
func (s *SessionService) Start(ctx context.Context, userID, subtopicID uuid.UUID, sessionType entities.SessionType) (*entities.LearningSession, error) {
	if !sessionType.Valid() {
		return nil, ErrInvalidSessionType
	}

	if _, err := s.subtopicRepo.GetByID(ctx, subtopicID); err != nil {
		return nil, fmt.Errorf("get subtopic: %w", err)
	}

	session := entities.NewLearningSession(userID, subtopicID, sessionType)
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return session, nil
}

// Complete closes a session with its performance results and runs the review
// scheduler on the affected progress record. Only the session owner may
// complete it; a foreign session id is reported as not found.
func (s *SessionService) Complete(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	perf entities.SessionPerformance,
) (*entities.LearningSession, *entities.UserSubtopicProgress, error) {
	if !perf.Valid() {
		return nil, nil, ErrInvalidScore
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.UserID != userID {
		return nil, nil, repository.ErrSessionNotFound
	}
	if session.CompletedAt != nil {
		return nil, nil, ErrSessionCompleted
	}

	now := s.now()
	duration := int(now.Sub(session.StartedAt).Minutes())
	if duration < 0 {
		duration = 0
	}

	session.CompletedAt = &now
	session.DurationMinutes = &duration
	session.Performance = perf

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("update session: %w", err)
	}

	progress, err := s.progress.RecordPerformance(ctx, userID, session.SubtopicID, perf, duration)
	if err != nil {
		return nil, nil, fmt.Errorf("record performance: %w", err)
	}

	return session, progress, nil
}

// GetByUser returns the user's most recent sessions, newest first.
func (s *SessionService) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LearningSession, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.sessionRepo.GetByUser(ctx, userID, limit)
}
