package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/decisiontrace/decisiontrace/internal/domain"
)

// traceTimestampFormat is the fixed-width UTC layout used for the
// timestamp field. Width never varies, so identical inputs always
// serialize to identical bytes.
const traceTimestampFormat = "2006-01-02T15:04:05.000000Z"

// rationaleMaxLen is the rationale_t character budget. Longer
// transcripts are cut to rationaleCutLen runes plus an ellipsis.
const (
	rationaleMaxLen = 280
	rationaleCutLen = 277
)

// ExportService builds deterministic KDMA trace exports from captured
// session data.
type ExportService struct {
	sessionRepo  SessionRepository
	responseRepo ResponseRepository
	scenarioRepo ScenarioRepository
	now          func() time.Time
}

// NewExportService creates a new export service
func NewExportService(
	sessionRepo SessionRepository,
	responseRepo ResponseRepository,
	scenarioRepo ScenarioRepository,
) *ExportService {
	return &ExportService{
		sessionRepo:  sessionRepo,
		responseRepo: responseRepo,
		scenarioRepo: scenarioRepo,
		now:          time.Now,
	}
}

// Export builds the ordered trace records for a session. Records come
// out in step order regardless of capture order. Responses that were
// never submitted get the export time as their timestamp.
func (s *ExportService) Export(ctx context.Context, sessionID uuid.UUID) ([]domain.TraceRecord, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responseRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	scenarioIDs := make([]uuid.UUID, 0, len(responses))
	seen := make(map[uuid.UUID]struct{}, len(responses))
	for _, response := range responses {
		if _, ok := seen[response.ScenarioID]; ok {
			continue
		}
		seen[response.ScenarioID] = struct{}{}
		scenarioIDs = append(scenarioIDs, response.ScenarioID)
	}

	scenarios, err := s.scenarioRepo.GetByIDs(ctx, scenarioIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios: %w", err)
	}

	records := make([]domain.TraceRecord, 0, len(responses))
	for _, response := range responses {
		scenario, ok := scenarios[response.ScenarioID]
		if !ok {
			return nil, fmt.Errorf("scenario %s referenced by response %s not found", response.ScenarioID, response.ID)
		}
		records = append(records, s.buildRecord(session, &response, scenario))
	}

	return records, nil
}

func (s *ExportService) buildRecord(session *domain.Session, response *domain.ScenarioResponse, scenario *domain.Scenario) domain.TraceRecord {
	timestamp := s.now().UTC()
	if response.RespondedAt != nil {
		timestamp = response.RespondedAt.UTC()
	}

	action := ""
	if response.SelectedOption != nil && *response.SelectedOption != "" {
		action = *response.SelectedOption
	} else if response.CustomResponse != nil {
		action = *response.CustomResponse
	}

	rationale := ""
	if response.ThinkAloudTranscript != nil {
		rationale = extractRationale(*response.ThinkAloudTranscript)
	}

	options := scenario.Options
	if options == nil {
		options = []domain.ScenarioOption{}
	}

	return domain.TraceRecord{
		DatasetVersion: domain.TraceDatasetVersion,
		SessionID:      session.ID.String(),
		ScenarioID:     response.ScenarioID.String(),
		ResponseID:     response.ID.String(),
		OperatorID:     session.OperatorID,
		Timestamp:      timestamp.Format(traceTimestampFormat),
		Step:           response.StepNumber,
		Observation: domain.TraceObservation{
			ScenarioTitle:    scenario.Title,
			ScenarioContext:  scenario.Context,
			DecisionPoint:    scenario.DecisionPoint,
			AvailableOptions: options,
		},
		Action:        action,
		EnvReward:     0.0,
		HumanReward:   response.ConfidenceRating,
		Rationale:     rationale,
		CTAPhase:      nil,
		KDMCues:       []string{},
		KDMHeuristic:  nil,
		KDMRiskRating: response.RiskRating,
		KDMConfidence: response.ConfidenceRating,
		Provenance: domain.TraceProvenance{
			SessionID:  session.ID.String(),
			ResponseID: response.ID.String(),
		},
	}
}

// Serialize renders trace records as JSON Lines: one compact JSON
// object per record, newline-separated, with no trailing newline.
// Serializing the same records always yields identical bytes.
func (s *ExportService) Serialize(records []domain.TraceRecord) ([]byte, error) {
	lines := make([]string, 0, len(records))
	for i := range records {
		line, err := json.Marshal(&records[i])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal trace record: %w", err)
		}
		lines = append(lines, string(line))
	}
	return []byte(strings.Join(lines, "\n")), nil
}

// ExportJSONL exports a session and serializes it in one call.
func (s *ExportService) ExportJSONL(ctx context.Context, sessionID uuid.UUID) ([]byte, error) {
	records, err := s.Export(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Serialize(records)
}

// extractRationale condenses a think-aloud transcript into the
// rationale_t field. Truncation counts runes, not bytes, so multibyte
// transcripts never get cut mid-character.
func extractRationale(transcript string) string {
	runes := []rune(transcript)
	if len(runes) <= rationaleMaxLen {
		return transcript
	}
	return string(runes[:rationaleCutLen]) + "..."
}
