package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
)

// ResponseRepository defines scenario response repository operations
type ResponseRepository interface {
	Create(ctx context.Context, response *domain.ScenarioResponse) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ScenarioResponse, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.ScenarioResponse, error)
	SetAnswer(ctx context.Context, id uuid.UUID, input *domain.SubmitInput, respondedAt time.Time, responseTimeMs int) error
}

// ScenarioRepository defines scenario repository operations
type ScenarioRepository interface {
	Create(ctx context.Context, scenario *domain.Scenario) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Scenario, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Scenario, error)
	List(ctx context.Context, filter *domain.ScenarioFilter, limit, offset int) (*domain.ScenarioList, error)
	Update(ctx context.Context, id uuid.UUID, input *domain.ScenarioUpdateInput) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// ResponseService handles recording and submitting scenario responses
type ResponseService struct {
	responseRepo   ResponseRepository
	sessionRepo    SessionRepository
	experimentRepo ExperimentRepository
	scenarioRepo   ScenarioRepository
	now            func() time.Time
}

// NewResponseService creates a new response service
func NewResponseService(
	responseRepo ResponseRepository,
	sessionRepo SessionRepository,
	experimentRepo ExperimentRepository,
	scenarioRepo ScenarioRepository,
) *ResponseService {
	return &ResponseService{
		responseRepo:   responseRepo,
		sessionRepo:    sessionRepo,
		experimentRepo: experimentRepo,
		scenarioRepo:   scenarioRepo,
		now:            time.Now,
	}
}

// Record registers that a scenario was presented to the participant at
// a given step. The session must be active and the step must agree
// with the experiment's scenario sequence.
func (s *ResponseService) Record(ctx context.Context, input *domain.RecordInput) (*domain.ScenarioResponse, error) {
	session, err := s.sessionRepo.GetByID(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionStatusActive {
		return nil, apperrors.InvalidState(fmt.Sprintf("session is %s, not active", session.Status))
	}

	experiment, err := s.experimentRepo.GetByID(ctx, session.ExperimentID)
	if err != nil {
		return nil, err
	}
	expected, ok := experiment.StepScenario(input.StepNumber)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("step %d is outside the experiment sequence", input.StepNumber))
	}
	if expected != input.ScenarioID {
		return nil, apperrors.InvalidInput(fmt.Sprintf("scenario does not match experiment sequence at step %d", input.StepNumber))
	}

	presentedAt := input.PresentedAt
	if presentedAt.IsZero() {
		presentedAt = s.now().UTC()
	}

	response := &domain.ScenarioResponse{
		ID:          uuid.New(),
		SessionID:   input.SessionID,
		ScenarioID:  input.ScenarioID,
		StepNumber:  input.StepNumber,
		PresentedAt: presentedAt,
	}

	if err := s.responseRepo.Create(ctx, response); err != nil {
		return nil, err
	}

	return response, nil
}

// Submit writes the participant's answer onto a previously recorded
// response. The answer fields are write-once; the response time is the
// wall-clock delta from presentation, clamped at zero.
func (s *ResponseService) Submit(ctx context.Context, responseID uuid.UUID, input *domain.SubmitInput) (*domain.ScenarioResponse, error) {
	response, err := s.responseRepo.GetByID(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if response.Answered() {
		return nil, apperrors.InvalidState("response already submitted")
	}

	session, err := s.sessionRepo.GetByID(ctx, response.SessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionStatusActive {
		return nil, apperrors.InvalidState(fmt.Sprintf("session is %s, not active", session.Status))
	}

	if input.SelectedOption != nil {
		scenario, err := s.scenarioRepo.GetByID(ctx, response.ScenarioID)
		if err != nil {
			return nil, err
		}
		if !scenario.HasOption(*input.SelectedOption) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("option %q is not part of the scenario", *input.SelectedOption))
		}
	}

	respondedAt := s.now().UTC()
	responseTimeMs := int(respondedAt.Sub(response.PresentedAt).Round(time.Millisecond) / time.Millisecond)
	if responseTimeMs < 0 {
		responseTimeMs = 0
	}

	if err := s.responseRepo.SetAnswer(ctx, responseID, input, respondedAt, responseTimeMs); err != nil {
		return nil, err
	}

	return s.responseRepo.GetByID(ctx, responseID)
}

// Get retrieves a response by ID
func (s *ResponseService) Get(ctx context.Context, id uuid.UUID) (*domain.ScenarioResponse, error) {
	return s.responseRepo.GetByID(ctx, id)
}

// ListBySession retrieves a session's responses in step order
func (s *ResponseService) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.ScenarioResponse, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.responseRepo.ListBySession(ctx, sessionID)
}
