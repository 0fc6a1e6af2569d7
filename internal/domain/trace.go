package domain

// TraceDatasetVersion identifies the KDMA trace schema emitted by the
// exporter. Bump only with a coordinated downstream migration.
const TraceDatasetVersion = "1.0.0"

// TraceObservation is the obs_t block of a trace record: what the
// participant saw at the decision point.
type TraceObservation struct {
	ScenarioTitle    string           `json:"scenario_title"`
	ScenarioContext  string           `json:"scenario_context"`
	DecisionPoint    string           `json:"decision_point"`
	AvailableOptions []ScenarioOption `json:"available_options"`
}

// TraceProvenance ties a record back to its source rows.
type TraceProvenance struct {
	SessionID  string `json:"session_id"`
	ResponseID string `json:"response_id"`
}

// TraceRecord is one line of the KDMA JSON-Lines export. Field order is
// the wire order; downstream tooling diffs trace files byte-for-byte.
// The cta_phase, kdm_cues and kdm_heuristic fields are placeholders
// reserved for the enrichment join and are always emitted null/empty.
type TraceRecord struct {
	DatasetVersion string           `json:"dataset_version"`
	SessionID      string           `json:"session_id"`
	ScenarioID     string           `json:"scenario_id"`
	ResponseID     string           `json:"response_id"`
	OperatorID     string           `json:"operator_id"`
	Timestamp      string           `json:"timestamp"`
	Step           int              `json:"step"`
	Observation    TraceObservation `json:"obs_t"`
	Action         string           `json:"act_t"`
	EnvReward      float64          `json:"r_env_t"`
	HumanReward    *int             `json:"r_human_t"`
	Rationale      string           `json:"rationale_t"`
	CTAPhase       *string          `json:"cta_phase"`
	KDMCues        []string         `json:"kdm_cues"`
	KDMHeuristic   *string          `json:"kdm_heuristic"`
	KDMRiskRating  *int             `json:"kdm_risk_rating"`
	KDMConfidence  *int             `json:"kdm_confidence"`
	Provenance     TraceProvenance  `json:"provenance"`
}
