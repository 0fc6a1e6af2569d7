package domain

import (
	"time"

	"github.com/google/uuid"
)

// Theme is a single identified theme with a supporting quote from the
// transcript. A degraded (soft-failed) analysis carries exactly one
// theme whose evidence records the failure cause.
type Theme struct {
	Theme    string `json:"theme"`
	Evidence string `json:"evidence"`
}

// Sentiment is a score/magnitude pair for the analyzed transcript.
type Sentiment struct {
	Score     float64 `json:"score"`
	Magnitude float64 `json:"magnitude"`
}

// AnalysisResult is the normalized output of one thematic analysis run.
// All list fields are non-nil after normalization; missing sub-fields in
// the collaborator's response default to empty lists.
type AnalysisResult struct {
	Themes                 []Theme   `json:"themes"`
	Codes                  []string  `json:"codes"`
	KeyConcepts            []string  `json:"key_concepts"`
	CognitiveStrategies    []string  `json:"cognitive_strategies"`
	UncertaintyExpressions []string  `json:"uncertainty_expressions"`
	RiskFactors            []string  `json:"risk_factors"`
	Sentiment              Sentiment `json:"sentiment"`
}

// Empty reports whether the result carries no analysis content, i.e. a
// genuinely empty analysis as opposed to a degraded one (which carries
// an error theme).
func (r *AnalysisResult) Empty() bool {
	return len(r.Themes) == 0 && len(r.Codes) == 0 && len(r.KeyConcepts) == 0
}

// ThematicAnalysis is a persisted analysis row, weakly associated with
// exactly one scenario response. Repeated enrichment of the same response
// produces multiple rows; readers select the latest by CreatedAt.
type ThematicAnalysis struct {
	ID                     uuid.UUID `json:"id"`
	ResponseID             uuid.UUID `json:"responseId"`
	Themes                 []Theme   `json:"themes"`
	Codes                  []string  `json:"codes"`
	KeyConcepts            []string  `json:"keyConcepts"`
	CognitiveStrategies    []string  `json:"cognitiveStrategies"`
	UncertaintyExpressions []string  `json:"uncertaintyExpressions"`
	RiskFactors            []string  `json:"riskFactors"`
	Sentiment              Sentiment `json:"sentiment"`
	AnalyzedBy             string    `json:"analyzedBy"`
	CreatedAt              time.Time `json:"createdAt"`
}

// AnalysisContext carries the minimal scenario/decision context sent
// alongside a transcript to the analysis collaborator.
type AnalysisContext struct {
	ScenarioTitle  string
	SelectedOption string
}
