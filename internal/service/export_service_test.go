package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
)

func newExportFixture() (*MockSessionRepository, *MockResponseRepository, *MockScenarioRepository, *ExportService) {
	sessionRepo := new(MockSessionRepository)
	responseRepo := new(MockResponseRepository)
	scenarioRepo := new(MockScenarioRepository)
	svc := NewExportService(sessionRepo, responseRepo, scenarioRepo)
	return sessionRepo, responseRepo, scenarioRepo, svc
}

func exportSession() *domain.Session {
	return &domain.Session{
		ID:            uuid.New(),
		ExperimentID:  uuid.New(),
		ParticipantID: "P-001",
		OperatorID:    "OP-007",
		StartTime:     time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Status:        domain.SessionStatusCompleted,
	}
}

func answered(sessionID, scenarioID uuid.UUID, step int, option string, transcript string) domain.ScenarioResponse {
	respondedAt := time.Date(2025, 6, 1, 9, 5, 0, 123456000, time.UTC).Add(time.Duration(step) * time.Minute)
	confidence := 4
	risk := 2
	return domain.ScenarioResponse{
		ID:                   uuid.New(),
		SessionID:            sessionID,
		ScenarioID:           scenarioID,
		StepNumber:           step,
		PresentedAt:          respondedAt.Add(-30 * time.Second),
		RespondedAt:          &respondedAt,
		SelectedOption:       &option,
		ConfidenceRating:     &confidence,
		RiskRating:           &risk,
		ThinkAloudTranscript: &transcript,
	}
}

func TestExportService_Export(t *testing.T) {
	sessionRepo, responseRepo, scenarioRepo, svc := newExportFixture()

	session := exportSession()
	scenarioID := uuid.New()
	scenario := testScenario(scenarioID)
	response := answered(session.ID, scenarioID, 0, "isolate", "I think the host should be isolated first")

	sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
	responseRepo.On("ListBySession", mock.Anything, session.ID).Return([]domain.ScenarioResponse{response}, nil)
	scenarioRepo.On("GetByIDs", mock.Anything, []uuid.UUID{scenarioID}).
		Return(map[uuid.UUID]*domain.Scenario{scenarioID: scenario}, nil)

	records, err := svc.Export(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, domain.TraceDatasetVersion, record.DatasetVersion)
	assert.Equal(t, session.ID.String(), record.SessionID)
	assert.Equal(t, "OP-007", record.OperatorID)
	assert.Equal(t, "isolate", record.Action)
	assert.Equal(t, 0.0, record.EnvReward)
	assert.Equal(t, 4, *record.HumanReward)
	assert.Equal(t, 4, *record.KDMConfidence)
	assert.Equal(t, 2, *record.KDMRiskRating)
	assert.Equal(t, "2025-06-01T09:05:00.123456Z", record.Timestamp)
	assert.Equal(t, scenario.Title, record.Observation.ScenarioTitle)
	assert.Equal(t, response.ID.String(), record.Provenance.ResponseID)

	// Enrichment placeholders are always emitted empty.
	assert.Nil(t, record.CTAPhase)
	assert.Nil(t, record.KDMHeuristic)
	assert.Equal(t, []string{}, record.KDMCues)
}

func TestExportService_ExportSessionNotFound(t *testing.T) {
	sessionRepo, _, _, svc := newExportFixture()

	sessionID := uuid.New()
	sessionRepo.On("GetByID", mock.Anything, sessionID).Return(nil, apperrors.NotFound("session"))

	_, err := svc.Export(context.Background(), sessionID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestExportService_ExportEmptySession(t *testing.T) {
	sessionRepo, responseRepo, scenarioRepo, svc := newExportFixture()

	session := exportSession()
	sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
	responseRepo.On("ListBySession", mock.Anything, session.ID).Return([]domain.ScenarioResponse{}, nil)
	scenarioRepo.On("GetByIDs", mock.Anything, []uuid.UUID{}).Return(map[uuid.UUID]*domain.Scenario{}, nil)

	records, err := svc.Export(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Empty(t, records)

	data, err := svc.Serialize(records)
	require.NoError(t, err)
	assert.Equal(t, "", string(data))
}

func TestExportService_UnansweredResponseGetsExportTimestamp(t *testing.T) {
	sessionRepo, responseRepo, scenarioRepo, svc := newExportFixture()

	exportedAt := time.Date(2025, 7, 1, 15, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return exportedAt }

	session := exportSession()
	scenarioID := uuid.New()
	response := domain.ScenarioResponse{
		ID:          uuid.New(),
		SessionID:   session.ID,
		ScenarioID:  scenarioID,
		StepNumber:  0,
		PresentedAt: time.Date(2025, 6, 1, 9, 4, 30, 0, time.UTC),
	}

	sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
	responseRepo.On("ListBySession", mock.Anything, session.ID).Return([]domain.ScenarioResponse{response}, nil)
	scenarioRepo.On("GetByIDs", mock.Anything, []uuid.UUID{scenarioID}).
		Return(map[uuid.UUID]*domain.Scenario{scenarioID: testScenario(scenarioID)}, nil)

	records, err := svc.Export(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-07-01T15:30:00.000000Z", records[0].Timestamp)
	assert.Equal(t, "", records[0].Action)
	assert.Equal(t, "", records[0].Rationale)
	assert.Nil(t, records[0].HumanReward)
}

func TestExportService_SerializeDeterministic(t *testing.T) {
	sessionRepo, responseRepo, scenarioRepo, svc := newExportFixture()

	session := exportSession()
	scenarioID := uuid.New()
	responses := []domain.ScenarioResponse{
		answered(session.ID, scenarioID, 0, "isolate", "first things first"),
		answered(session.ID, scenarioID, 1, "monitor", "now I want to watch what it does"),
	}

	sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
	responseRepo.On("ListBySession", mock.Anything, session.ID).Return(responses, nil)
	scenarioRepo.On("GetByIDs", mock.Anything, []uuid.UUID{scenarioID}).
		Return(map[uuid.UUID]*domain.Scenario{scenarioID: testScenario(scenarioID)}, nil)

	first, err := svc.ExportJSONL(context.Background(), session.ID)
	require.NoError(t, err)
	second, err := svc.ExportJSONL(context.Background(), session.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	lines := strings.Split(string(first), "\n")
	require.Len(t, lines, 2)
	assert.False(t, strings.HasSuffix(string(first), "\n"))

	// Each line must be a standalone JSON object in step order.
	for i, line := range lines {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		assert.Equal(t, float64(i), record["step"])
		assert.Equal(t, "1.0.0", record["dataset_version"])
	}
}

func TestExtractRationale(t *testing.T) {
	short := "I would isolate the host immediately"
	assert.Equal(t, short, extractRationale(short))

	long := strings.Repeat("a", 300)
	got := extractRationale(long)
	assert.Len(t, got, 280)
	assert.Equal(t, strings.Repeat("a", 277)+"...", got)

	// Exactly at the limit passes through untouched.
	exact := strings.Repeat("b", 280)
	assert.Equal(t, exact, extractRationale(exact))

	// Multibyte transcripts are cut on rune boundaries.
	wide := strings.Repeat("э", 300)
	gotWide := extractRationale(wide)
	assert.Equal(t, 280, len([]rune(gotWide)))
	assert.True(t, strings.HasSuffix(gotWide, "..."))
}
