package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
)

// SessionRepository defines session repository operations
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus, endTime time.Time) error
	List(ctx context.Context, filter *domain.SessionFilter, limit, offset int) (*domain.SessionList, error)
}

// ExperimentRepository defines experiment repository operations
type ExperimentRepository interface {
	Create(ctx context.Context, experiment *domain.Experiment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Experiment, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, filter *domain.ExperimentFilter, limit, offset int) (*domain.ExperimentList, error)
}

// SessionService handles session lifecycle operations
type SessionService struct {
	sessionRepo    SessionRepository
	experimentRepo ExperimentRepository
	now            func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(sessionRepo SessionRepository, experimentRepo ExperimentRepository) *SessionService {
	return &SessionService{
		sessionRepo:    sessionRepo,
		experimentRepo: experimentRepo,
		now:            time.Now,
	}
}

// Create starts a new active session against an experiment
func (s *SessionService) Create(ctx context.Context, input *domain.SessionInput) (*domain.Session, error) {
	experiment, err := s.experimentRepo.GetByID(ctx, input.ExperimentID)
	if err != nil {
		return nil, err
	}
	if !experiment.IsActive {
		return nil, apperrors.InvalidState("experiment is not active")
	}

	session := &domain.Session{
		ID:            uuid.New(),
		ExperimentID:  experiment.ID,
		ParticipantID: input.ParticipantID,
		OperatorID:    input.OperatorID,
		StartTime:     s.now().UTC(),
		Status:        domain.SessionStatusActive,
		Metadata:      input.Metadata,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// Get retrieves a session by ID
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.sessionRepo.GetByID(ctx, id)
}

// Complete finalizes an active session as completed
func (s *SessionService) Complete(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.finalize(ctx, id, domain.SessionStatusCompleted)
}

// Abandon finalizes an active session as abandoned
func (s *SessionService) Abandon(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.finalize(ctx, id, domain.SessionStatusAbandoned)
}

func (s *SessionService) finalize(ctx context.Context, id uuid.UUID, status domain.SessionStatus) (*domain.Session, error) {
	if err := s.sessionRepo.UpdateStatus(ctx, id, status, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.sessionRepo.GetByID(ctx, id)
}

// List retrieves sessions with filtering and pagination
func (s *SessionService) List(ctx context.Context, filter *domain.SessionFilter, limit, offset int) (*domain.SessionList, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.sessionRepo.List(ctx, filter, limit, offset)
}
