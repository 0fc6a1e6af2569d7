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
	"github.com/decisiontrace/decisiontrace/internal/llm"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
)

const longTranscript = "I am looking at the alert details and the login came from a country " +
	"we have no staff in, so my first instinct is to isolate the machine before anything else."

func newAnalysisFixture(client llm.Client) (*MockAnalysisRepository, *MockResponseRepository, *MockScenarioRepository, *AnalysisService) {
	analysisRepo := new(MockAnalysisRepository)
	responseRepo := new(MockResponseRepository)
	scenarioRepo := new(MockScenarioRepository)
	svc := NewAnalysisService(analysisRepo, responseRepo, scenarioRepo, client, 5*time.Second)
	return analysisRepo, responseRepo, scenarioRepo, svc
}

func TestAnalysisService_AnalyzeShortTranscriptSkipsClient(t *testing.T) {
	client := llm.NewMockClient()
	_, _, _, svc := newAnalysisFixture(client)

	result := svc.Analyze(context.Background(), "too short", domain.AnalysisContext{})

	assert.True(t, result.Empty())
	assert.Equal(t, []domain.Theme{}, result.Themes)
	assert.Equal(t, domain.Sentiment{}, result.Sentiment)
	assert.Equal(t, 0, client.CompletionCount())

	// Whitespace padding does not rescue a short transcript.
	result = svc.Analyze(context.Background(), "   short   "+strings.Repeat(" ", 100), domain.AnalysisContext{})
	assert.True(t, result.Empty())
	assert.Equal(t, 0, client.CompletionCount())
}

func TestAnalysisService_AnalyzeSuccess(t *testing.T) {
	client := llm.NewMockClient(llm.MockCompletion{
		Content: json.RawMessage(`{
			"themes": [{"theme": "Containment first", "evidence": "isolate the machine before anything else"}],
			"codes": ["containment"],
			"key_concepts": ["impossible travel"],
			"cognitive_strategies": ["recognition-primed decision"],
			"uncertainty_expressions": [],
			"risk_factors": ["lateral movement"]
		}`),
	})
	_, _, _, svc := newAnalysisFixture(client)

	result := svc.Analyze(context.Background(), longTranscript, domain.AnalysisContext{
		ScenarioTitle:  "Suspicious login alert",
		SelectedOption: "isolate",
	})

	require.Len(t, result.Themes, 1)
	assert.Equal(t, "Containment first", result.Themes[0].Theme)
	assert.Equal(t, []string{"containment"}, result.Codes)
	assert.Equal(t, []string{}, result.UncertaintyExpressions)
	assert.Equal(t, domain.Sentiment{Score: 0.5, Magnitude: 1.0}, result.Sentiment)
	assert.Equal(t, 1, client.CompletionCount())

	// The scenario context flows into the prompt.
	prompt := client.CompletionCalls[0].Prompt
	assert.Contains(t, prompt, "Suspicious login alert")
	assert.Contains(t, prompt, "isolate")
}

func TestAnalysisService_AnalyzeNormalizesMissingFields(t *testing.T) {
	client := llm.NewMockClient(llm.MockCompletion{
		Content: json.RawMessage(`{"themes": [{"theme": "A", "evidence": "B"}]}`),
	})
	_, _, _, svc := newAnalysisFixture(client)

	result := svc.Analyze(context.Background(), longTranscript, domain.AnalysisContext{})

	assert.NotNil(t, result.Codes)
	assert.NotNil(t, result.KeyConcepts)
	assert.NotNil(t, result.CognitiveStrategies)
	assert.NotNil(t, result.UncertaintyExpressions)
	assert.NotNil(t, result.RiskFactors)
}

func TestAnalysisService_AnalyzeCapsTranscript(t *testing.T) {
	client := llm.NewMockClient(llm.MockCompletion{Content: json.RawMessage(`{}`)})
	_, _, _, svc := newAnalysisFixture(client)

	transcript := strings.Repeat("x", 5000)
	svc.Analyze(context.Background(), transcript, domain.AnalysisContext{})

	require.Equal(t, 1, client.CompletionCount())
	prompt := client.CompletionCalls[0].Prompt
	assert.Contains(t, prompt, strings.Repeat("x", 3000))
	assert.NotContains(t, prompt, strings.Repeat("x", 3001))
}

func TestAnalysisService_AnalyzeDegradesOnClientError(t *testing.T) {
	client := llm.NewMockClient(llm.MockCompletion{Err: &llm.ErrUnavailable{}})
	_, _, _, svc := newAnalysisFixture(client)

	result := svc.Analyze(context.Background(), longTranscript, domain.AnalysisContext{})

	require.Len(t, result.Themes, 1)
	assert.Equal(t, "Error in analysis", result.Themes[0].Theme)
	assert.NotEmpty(t, result.Themes[0].Evidence)
	assert.Equal(t, []string{}, result.Codes)
	assert.Equal(t, domain.Sentiment{}, result.Sentiment)
}

func TestAnalysisService_AnalyzeDegradesOnMalformedJSON(t *testing.T) {
	client := llm.NewMockClient(llm.MockCompletion{Content: json.RawMessage(`not json at all`)})
	_, _, _, svc := newAnalysisFixture(client)

	result := svc.Analyze(context.Background(), longTranscript, domain.AnalysisContext{})

	require.Len(t, result.Themes, 1)
	assert.Equal(t, "Error in analysis", result.Themes[0].Theme)
}

func TestAnalysisService_Persist(t *testing.T) {
	client := llm.NewMockClient()
	analysisRepo, responseRepo, _, svc := newAnalysisFixture(client)

	responseID := uuid.New()
	responseRepo.On("GetByID", mock.Anything, responseID).
		Return(&domain.ScenarioResponse{ID: responseID}, nil)
	analysisRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ThematicAnalysis")).Return(nil)

	result := &domain.AnalysisResult{
		Themes:                 []domain.Theme{{Theme: "A", Evidence: "B"}},
		Codes:                  []string{"c1"},
		KeyConcepts:            []string{},
		CognitiveStrategies:    []string{},
		UncertaintyExpressions: []string{},
		RiskFactors:            []string{},
		Sentiment:              domain.Sentiment{Score: 0.5, Magnitude: 1.0},
	}

	analysis, err := svc.Persist(context.Background(), responseID, result, "analyst@test.local")
	require.NoError(t, err)
	assert.Equal(t, responseID, analysis.ResponseID)
	assert.Equal(t, "analyst@test.local", analysis.AnalyzedBy)
	assert.NotEqual(t, uuid.Nil, analysis.ID)
	analysisRepo.AssertExpectations(t)
}

func TestAnalysisService_PersistResponseNotFound(t *testing.T) {
	client := llm.NewMockClient()
	analysisRepo, responseRepo, _, svc := newAnalysisFixture(client)

	responseID := uuid.New()
	responseRepo.On("GetByID", mock.Anything, responseID).Return(nil, apperrors.NotFound("response"))

	_, err := svc.Persist(context.Background(), responseID, emptyResult(), "analyst@test.local")
	assert.True(t, apperrors.IsNotFound(err))
	analysisRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAnalysisService_AnalyzeResponse(t *testing.T) {
	client := llm.NewMockClient(llm.MockCompletion{
		Content: json.RawMessage(`{"themes": [{"theme": "Containment first", "evidence": "isolate"}]}`),
	})
	analysisRepo, responseRepo, scenarioRepo, svc := newAnalysisFixture(client)

	scenarioID := uuid.New()
	responseID := uuid.New()
	transcript := longTranscript
	selected := "isolate"
	response := &domain.ScenarioResponse{
		ID:                   responseID,
		ScenarioID:           scenarioID,
		SelectedOption:       &selected,
		ThinkAloudTranscript: &transcript,
	}

	responseRepo.On("GetByID", mock.Anything, responseID).Return(response, nil)
	scenarioRepo.On("GetByID", mock.Anything, scenarioID).Return(testScenario(scenarioID), nil)
	analysisRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ThematicAnalysis")).Return(nil)

	analysis, err := svc.AnalyzeResponse(context.Background(), responseID, "worker")
	require.NoError(t, err)
	require.Len(t, analysis.Themes, 1)
	assert.Equal(t, "Containment first", analysis.Themes[0].Theme)
	assert.Equal(t, 1, client.CompletionCount())
}

func TestAnalysisService_TranscribeSoftFails(t *testing.T) {
	client := llm.NewMockClient()
	client.AddTranscription(llm.MockTranscription{Err: &llm.ErrUnavailable{}})
	_, _, _, svc := newAnalysisFixture(client)

	text := svc.Transcribe(context.Background(), llm.TranscriptionRequest{
		Filename: "thinkaloud.webm",
		Reader:   strings.NewReader("not really audio"),
	})
	assert.Equal(t, "", text)

	client.AddTranscription(llm.MockTranscription{Text: "I would isolate the host"})
	text = svc.Transcribe(context.Background(), llm.TranscriptionRequest{
		Filename: "thinkaloud.webm",
		Reader:   strings.NewReader("not really audio"),
	})
	assert.Equal(t, "I would isolate the host", text)
}
