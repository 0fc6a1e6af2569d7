package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
)

// memStore is an in-memory implementation of the capture repositories,
// used to drive the full record/submit/export path without a database.
type memStore struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*domain.Session
	responses map[uuid.UUID]*domain.ScenarioResponse
	scenarios map[uuid.UUID]*domain.Scenario
	exps      map[uuid.UUID]*domain.Experiment
}

func newMemStore() *memStore {
	return &memStore{
		sessions:  make(map[uuid.UUID]*domain.Session),
		responses: make(map[uuid.UUID]*domain.ScenarioResponse),
		scenarios: make(map[uuid.UUID]*domain.Scenario),
		exps:      make(map[uuid.UUID]*domain.Experiment),
	}
}

func (s *memStore) Create(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("session")
	}
	copied := *session
	return &copied, nil
}

func (s *memStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus, endTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return apperrors.NotFound("session")
	}
	if session.Status != domain.SessionStatusActive {
		return apperrors.InvalidState("session is not active")
	}
	session.Status = status
	session.EndTime = &endTime
	return nil
}

func (s *memStore) List(ctx context.Context, filter *domain.SessionFilter, limit, offset int) (*domain.SessionList, error) {
	return &domain.SessionList{}, nil
}

type memResponseStore struct{ store *memStore }

func (r *memResponseStore) Create(ctx context.Context, response *domain.ScenarioResponse) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.responses {
		if existing.SessionID == response.SessionID && existing.StepNumber == response.StepNumber {
			return apperrors.Conflict("step already recorded for session")
		}
	}
	copied := *response
	r.store.responses[response.ID] = &copied
	return nil
}

func (r *memResponseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ScenarioResponse, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	response, ok := r.store.responses[id]
	if !ok {
		return nil, apperrors.NotFound("response")
	}
	copied := *response
	return &copied, nil
}

func (r *memResponseStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.ScenarioResponse, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var responses []domain.ScenarioResponse
	for _, response := range r.store.responses {
		if response.SessionID == sessionID {
			responses = append(responses, *response)
		}
	}
	sort.Slice(responses, func(i, j int) bool { return responses[i].StepNumber < responses[j].StepNumber })
	return responses, nil
}

func (r *memResponseStore) SetAnswer(ctx context.Context, id uuid.UUID, input *domain.SubmitInput, respondedAt time.Time, responseTimeMs int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	response, ok := r.store.responses[id]
	if !ok {
		return apperrors.NotFound("response")
	}
	if response.RespondedAt != nil {
		return apperrors.InvalidState("response already submitted")
	}
	response.RespondedAt = &respondedAt
	response.SelectedOption = input.SelectedOption
	response.CustomResponse = input.CustomResponse
	response.ConfidenceRating = input.ConfidenceRating
	response.RiskRating = input.RiskRating
	response.ResponseTimeMs = &responseTimeMs
	response.ThinkAloudTranscript = input.Transcript
	return nil
}

type memScenarioStore struct{ store *memStore }

func (s *memScenarioStore) Create(ctx context.Context, scenario *domain.Scenario) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	copied := *scenario
	s.store.scenarios[scenario.ID] = &copied
	return nil
}

func (s *memScenarioStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Scenario, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	scenario, ok := s.store.scenarios[id]
	if !ok || !scenario.IsActive {
		return nil, apperrors.NotFound("scenario")
	}
	copied := *scenario
	return &copied, nil
}

func (s *memScenarioStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Scenario, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	out := make(map[uuid.UUID]*domain.Scenario, len(ids))
	for _, id := range ids {
		if scenario, ok := s.store.scenarios[id]; ok {
			copied := *scenario
			out[id] = &copied
		}
	}
	return out, nil
}

func (s *memScenarioStore) List(ctx context.Context, filter *domain.ScenarioFilter, limit, offset int) (*domain.ScenarioList, error) {
	return &domain.ScenarioList{}, nil
}

func (s *memScenarioStore) Update(ctx context.Context, id uuid.UUID, input *domain.ScenarioUpdateInput) error {
	return nil
}

func (s *memScenarioStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	scenario, ok := s.store.scenarios[id]
	if !ok {
		return apperrors.NotFound("scenario")
	}
	scenario.IsActive = false
	return nil
}

type memExperimentStore struct{ store *memStore }

func (e *memExperimentStore) Create(ctx context.Context, experiment *domain.Experiment) error {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	copied := *experiment
	e.store.exps[experiment.ID] = &copied
	return nil
}

func (e *memExperimentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Experiment, error) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	experiment, ok := e.store.exps[id]
	if !ok {
		return nil, apperrors.NotFound("experiment")
	}
	copied := *experiment
	return &copied, nil
}

func (e *memExperimentStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return nil
}

func (e *memExperimentStore) List(ctx context.Context, filter *domain.ExperimentFilter, limit, offset int) (*domain.ExperimentList, error) {
	return &domain.ExperimentList{}, nil
}

// TestCaptureToExportPipeline drives a two-step session end to end:
// record both steps, submit the second before the first, export while
// one answer is still pending, then finish and export again.
func TestCaptureToExportPipeline(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	sessionRepo := store
	responseRepo := &memResponseStore{store: store}
	scenarioRepo := &memScenarioStore{store: store}
	experimentRepo := &memExperimentStore{store: store}

	sessions := NewSessionService(sessionRepo, experimentRepo)
	responses := NewResponseService(responseRepo, sessionRepo, experimentRepo, scenarioRepo)
	exporter := NewExportService(sessionRepo, responseRepo, scenarioRepo)

	// Fixed clocks keep the exported bytes reproducible.
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := base
	sessions.now = func() time.Time { return clock }
	responses.now = func() time.Time { return clock }
	exporter.now = func() time.Time { return base.Add(time.Hour) }

	scenarioA := testScenario(uuid.New())
	scenarioB := testScenario(uuid.New())
	scenarioB.Title = "Phishing triage"
	require.NoError(t, scenarioRepo.Create(ctx, scenarioA))
	require.NoError(t, scenarioRepo.Create(ctx, scenarioB))

	experiment := &domain.Experiment{
		ID:               uuid.New(),
		Name:             "two-step",
		ScenarioSequence: []uuid.UUID{scenarioA.ID, scenarioB.ID},
		IsActive:         true,
	}
	require.NoError(t, experimentRepo.Create(ctx, experiment))

	session, err := sessions.Create(ctx, &domain.SessionInput{
		ExperimentID:  experiment.ID,
		ParticipantID: "P-100",
		OperatorID:    "OP-001",
	})
	require.NoError(t, err)

	first, err := responses.Record(ctx, &domain.RecordInput{
		SessionID:   session.ID,
		ScenarioID:  scenarioA.ID,
		StepNumber:  0,
		PresentedAt: base,
	})
	require.NoError(t, err)

	second, err := responses.Record(ctx, &domain.RecordInput{
		SessionID:   session.ID,
		ScenarioID:  scenarioB.ID,
		StepNumber:  1,
		PresentedAt: base.Add(time.Minute),
	})
	require.NoError(t, err)

	// Answer step 1 before step 0.
	clock = base.Add(2 * time.Minute)
	selected := "monitor"
	transcript := strings.Repeat("thinking out loud about the phishing email, ", 10)
	_, err = responses.Submit(ctx, second.ID, &domain.SubmitInput{
		SelectedOption: &selected,
		Transcript:     &transcript,
	})
	require.NoError(t, err)

	// Export with step 0 still unanswered: both steps present, in
	// order, with the export time standing in for the missing answer.
	data, err := exporter.ExportJSONL(ctx, session.ID)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 2)

	var record0, record1 map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record0))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &record1))
	assert.Equal(t, float64(0), record0["step"])
	assert.Equal(t, float64(1), record1["step"])
	assert.Equal(t, "", record0["act_t"])
	assert.Equal(t, "monitor", record1["act_t"])
	assert.Equal(t, "2025-06-01T10:00:00.000000Z", record0["timestamp"])

	// Finish step 0, complete the session, export again.
	clock = base.Add(3 * time.Minute)
	isolate := "isolate"
	_, err = responses.Submit(ctx, first.ID, &domain.SubmitInput{SelectedOption: &isolate})
	require.NoError(t, err)

	completed, err := sessions.Complete(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, completed.Status)
	require.NotNil(t, completed.EndTime)

	// Capture is closed now.
	_, err = responses.Submit(ctx, first.ID, &domain.SubmitInput{SelectedOption: &isolate})
	assert.True(t, apperrors.IsInvalidState(err))

	final, err := exporter.ExportJSONL(ctx, session.ID)
	require.NoError(t, err)
	again, err := exporter.ExportJSONL(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, final, again)

	finalLines := strings.Split(string(final), "\n")
	require.Len(t, finalLines, 2)
	require.NoError(t, json.Unmarshal([]byte(finalLines[0]), &record0))
	assert.Equal(t, "isolate", record0["act_t"])
	assert.Equal(t, "2025-06-01T09:03:00.000000Z", record0["timestamp"])
}
