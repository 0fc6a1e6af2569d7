package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
)

func activeExperiment() *domain.Experiment {
	return &domain.Experiment{
		ID:               uuid.New(),
		Name:             "baseline",
		ScenarioSequence: []uuid.UUID{uuid.New(), uuid.New()},
		CreatedBy:        uuid.New(),
		CreatedAt:        time.Now().UTC(),
		IsActive:         true,
	}
}

func TestSessionService_Create(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	experimentRepo := new(MockExperimentRepository)
	svc := NewSessionService(sessionRepo, experimentRepo)

	experiment := activeExperiment()
	experimentRepo.On("GetByID", mock.Anything, experiment.ID).Return(experiment, nil)
	sessionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)

	session, err := svc.Create(context.Background(), &domain.SessionInput{
		ExperimentID:  experiment.ID,
		ParticipantID: "P-001",
		OperatorID:    "OP-001",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusActive, session.Status)
	assert.Equal(t, experiment.ID, session.ExperimentID)
	assert.Nil(t, session.EndTime)
	assert.False(t, session.StartTime.IsZero())
	sessionRepo.AssertExpectations(t)
}

func TestSessionService_CreateInactiveExperiment(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	experimentRepo := new(MockExperimentRepository)
	svc := NewSessionService(sessionRepo, experimentRepo)

	experiment := activeExperiment()
	experiment.IsActive = false
	experimentRepo.On("GetByID", mock.Anything, experiment.ID).Return(experiment, nil)

	_, err := svc.Create(context.Background(), &domain.SessionInput{
		ExperimentID:  experiment.ID,
		ParticipantID: "P-001",
		OperatorID:    "OP-001",
	})

	assert.True(t, apperrors.IsInvalidState(err))
	sessionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSessionService_CompleteSetsEndTime(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	experimentRepo := new(MockExperimentRepository)
	svc := NewSessionService(sessionRepo, experimentRepo)

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	sessionID := uuid.New()
	endTime := fixed
	completed := &domain.Session{
		ID:      sessionID,
		Status:  domain.SessionStatusCompleted,
		EndTime: &endTime,
	}

	sessionRepo.On("UpdateStatus", mock.Anything, sessionID, domain.SessionStatusCompleted, fixed).Return(nil)
	sessionRepo.On("GetByID", mock.Anything, sessionID).Return(completed, nil)

	session, err := svc.Complete(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, session.Status)
	require.NotNil(t, session.EndTime)
	sessionRepo.AssertExpectations(t)
}

func TestSessionService_CompleteNotActive(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	experimentRepo := new(MockExperimentRepository)
	svc := NewSessionService(sessionRepo, experimentRepo)

	sessionID := uuid.New()
	sessionRepo.On("UpdateStatus", mock.Anything, sessionID, domain.SessionStatusCompleted, mock.AnythingOfType("time.Time")).
		Return(apperrors.InvalidState("session is completed, not active"))

	_, err := svc.Complete(context.Background(), sessionID)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestSessionService_AbandonNotFound(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	experimentRepo := new(MockExperimentRepository)
	svc := NewSessionService(sessionRepo, experimentRepo)

	sessionID := uuid.New()
	sessionRepo.On("UpdateStatus", mock.Anything, sessionID, domain.SessionStatusAbandoned, mock.AnythingOfType("time.Time")).
		Return(apperrors.NotFound("session"))

	_, err := svc.Abandon(context.Background(), sessionID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSessionService_ListClampsPagination(t *testing.T) {
	sessionRepo := new(MockSessionRepository)
	experimentRepo := new(MockExperimentRepository)
	svc := NewSessionService(sessionRepo, experimentRepo)

	filter := &domain.SessionFilter{}
	sessionRepo.On("List", mock.Anything, filter, 50, 0).Return(&domain.SessionList{}, nil)

	_, err := svc.List(context.Background(), filter, 0, -5)
	require.NoError(t, err)
	sessionRepo.AssertExpectations(t)
}
