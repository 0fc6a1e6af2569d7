package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/decisiontrace/decisiontrace/internal/domain"
	"github.com/decisiontrace/decisiontrace/internal/llm"
	apperrors "github.com/decisiontrace/decisiontrace/internal/pkg/errors"
	"github.com/decisiontrace/decisiontrace/internal/pkg/logger"
)

// minTranscriptLen is the minimum trimmed transcript length worth
// analyzing. Shorter transcripts produce a genuinely empty result
// without contacting the analysis collaborator.
const minTranscriptLen = 50

// maxTranscriptLen caps how much transcript is sent for analysis.
const maxTranscriptLen = 3000

// AnalysisRepository defines thematic analysis repository operations
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *domain.ThematicAnalysis) error
	LatestByResponse(ctx context.Context, responseID uuid.UUID) (*domain.ThematicAnalysis, error)
	ListByResponse(ctx context.Context, responseID uuid.UUID) ([]domain.ThematicAnalysis, error)
}

// AnalysisService performs thematic enrichment of think-aloud
// transcripts. Analysis never blocks or fails the capture path: any
// collaborator failure degrades into a marker result instead of an
// error.
type AnalysisService struct {
	analysisRepo AnalysisRepository
	responseRepo ResponseRepository
	scenarioRepo ScenarioRepository
	client       llm.Client
	timeout      time.Duration
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	analysisRepo AnalysisRepository,
	responseRepo ResponseRepository,
	scenarioRepo ScenarioRepository,
	client llm.Client,
	timeout time.Duration,
) *AnalysisService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AnalysisService{
		analysisRepo: analysisRepo,
		responseRepo: responseRepo,
		scenarioRepo: scenarioRepo,
		client:       client,
		timeout:      timeout,
	}
}

// rawAnalysis mirrors the collaborator's JSON response. Missing fields
// stay nil and are normalized to empty lists.
type rawAnalysis struct {
	Themes                 []domain.Theme `json:"themes"`
	Codes                  []string       `json:"codes"`
	KeyConcepts            []string       `json:"key_concepts"`
	CognitiveStrategies    []string       `json:"cognitive_strategies"`
	UncertaintyExpressions []string       `json:"uncertainty_expressions"`
	RiskFactors            []string       `json:"risk_factors"`
}

// Analyze runs thematic analysis over a transcript. Transcripts below
// the minimum length short-circuit to an empty result with no external
// call. Any failure along the external path returns a degraded result
// carrying a single error theme, never an error.
func (s *AnalysisService) Analyze(ctx context.Context, transcript string, actx domain.AnalysisContext) *domain.AnalysisResult {
	if len(strings.TrimSpace(transcript)) < minTranscriptLen {
		return emptyResult()
	}

	if s.client == nil {
		return degradedResult("analysis client not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.CompleteJSON(ctx, llm.CompletionRequest{
		System:      "You are an expert in thematic analysis of decision-making under uncertainty. Always respond with valid JSON.",
		Prompt:      buildAnalysisPrompt(transcript, actx),
		Temperature: 0.3,
	})
	if err != nil {
		logger.Warn("thematic analysis call failed", zap.Error(err))
		return degradedResult(err.Error())
	}

	var parsed rawAnalysis
	if err := json.Unmarshal(raw, &parsed); err != nil {
		logger.Warn("thematic analysis returned malformed JSON", zap.Error(err))
		return degradedResult(fmt.Sprintf("invalid analysis response: %v", err))
	}

	return &domain.AnalysisResult{
		Themes:                 nonNilThemes(parsed.Themes),
		Codes:                  nonNilStrings(parsed.Codes),
		KeyConcepts:            nonNilStrings(parsed.KeyConcepts),
		CognitiveStrategies:    nonNilStrings(parsed.CognitiveStrategies),
		UncertaintyExpressions: nonNilStrings(parsed.UncertaintyExpressions),
		RiskFactors:            nonNilStrings(parsed.RiskFactors),
		Sentiment:              domain.Sentiment{Score: 0.5, Magnitude: 1.0},
	}
}

func buildAnalysisPrompt(transcript string, actx domain.AnalysisContext) string {
	title := actx.ScenarioTitle
	if title == "" {
		title = "Unknown"
	}
	selected := actx.SelectedOption
	if selected == "" {
		selected = "Unknown"
	}

	runes := []rune(transcript)
	if len(runes) > maxTranscriptLen {
		transcript = string(runes[:maxTranscriptLen])
	}

	return fmt.Sprintf(`Perform a thematic analysis on this decision-making transcript.

Context:
Scenario: %s
Decision Made: %s

Transcript: %s

Identify and return in JSON format:
1. themes: Main themes as an array of objects with 'theme' and 'evidence' (quote from transcript)
2. codes: Specific codes identified (array of strings)
3. key_concepts: Important domain-specific concepts mentioned (array of strings)
4. cognitive_strategies: Decision-making strategies used
5. uncertainty_expressions: Phrases indicating uncertainty or doubt
6. risk_factors: Risk-related considerations mentioned`, title, selected, transcript)
}

func emptyResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Themes:                 []domain.Theme{},
		Codes:                  []string{},
		KeyConcepts:            []string{},
		CognitiveStrategies:    []string{},
		UncertaintyExpressions: []string{},
		RiskFactors:            []string{},
	}
}

func degradedResult(cause string) *domain.AnalysisResult {
	result := emptyResult()
	result.Themes = []domain.Theme{{Theme: "Error in analysis", Evidence: cause}}
	return result
}

func nonNilThemes(themes []domain.Theme) []domain.Theme {
	if themes == nil {
		return []domain.Theme{}
	}
	return themes
}

func nonNilStrings(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// AnalyzeResponse loads a response's transcript and context, runs the
// analysis and persists the result as a new row.
func (s *AnalysisService) AnalyzeResponse(ctx context.Context, responseID uuid.UUID, analyzedBy string) (*domain.ThematicAnalysis, error) {
	response, err := s.responseRepo.GetByID(ctx, responseID)
	if err != nil {
		return nil, err
	}

	transcript := ""
	if response.ThinkAloudTranscript != nil {
		transcript = *response.ThinkAloudTranscript
	}

	actx := domain.AnalysisContext{}
	if scenario, err := s.scenarioRepo.GetByID(ctx, response.ScenarioID); err == nil {
		actx.ScenarioTitle = scenario.Title
	}
	if response.SelectedOption != nil {
		actx.SelectedOption = *response.SelectedOption
	}

	result := s.Analyze(ctx, transcript, actx)
	return s.Persist(ctx, responseID, result, analyzedBy)
}

// Persist saves an analysis result against a response. The response
// must exist; repeated persists append rows, never overwrite.
func (s *AnalysisService) Persist(ctx context.Context, responseID uuid.UUID, result *domain.AnalysisResult, analyzedBy string) (*domain.ThematicAnalysis, error) {
	if _, err := s.responseRepo.GetByID(ctx, responseID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("response")
		}
		return nil, err
	}

	analysis := &domain.ThematicAnalysis{
		ID:                     uuid.New(),
		ResponseID:             responseID,
		Themes:                 result.Themes,
		Codes:                  result.Codes,
		KeyConcepts:            result.KeyConcepts,
		CognitiveStrategies:    result.CognitiveStrategies,
		UncertaintyExpressions: result.UncertaintyExpressions,
		RiskFactors:            result.RiskFactors,
		Sentiment:              result.Sentiment,
		AnalyzedBy:             analyzedBy,
		CreatedAt:              time.Now().UTC(),
	}

	if err := s.analysisRepo.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	return analysis, nil
}

// Latest returns the most recent analysis for a response.
func (s *AnalysisService) Latest(ctx context.Context, responseID uuid.UUID) (*domain.ThematicAnalysis, error) {
	return s.analysisRepo.LatestByResponse(ctx, responseID)
}

// Transcribe converts a think-aloud audio recording to text. Like
// analysis, transcription soft-fails: any error yields an empty
// transcript.
func (s *AnalysisService) Transcribe(ctx context.Context, req llm.TranscriptionRequest) string {
	if s.client == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.client.Transcribe(ctx, req)
	if err != nil {
		logger.Warn("transcription failed", zap.Error(err))
		return ""
	}
	return text
}
