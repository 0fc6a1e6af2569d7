package domain

import (
	"time"

	"github.com/google/uuid"
)

// Experiment is a named, ordered sequence of scenarios administered
// together. The sequence is fixed at creation; sessions reference the
// experiment and their responses must follow its ordering.
type Experiment struct {
	ID               uuid.UUID      `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	ScenarioSequence []uuid.UUID    `json:"scenarioSequence"`
	Config           map[string]any `json:"config,omitempty"`
	CreatedBy        uuid.UUID      `json:"createdBy"`
	CreatedAt        time.Time      `json:"createdAt"`
	IsActive         bool           `json:"isActive"`
}

// StepScenario returns the scenario id expected at the given step, or
// false when the step is outside the sequence.
func (e *Experiment) StepScenario(step int) (uuid.UUID, bool) {
	if step < 0 || step >= len(e.ScenarioSequence) {
		return uuid.Nil, false
	}
	return e.ScenarioSequence[step], true
}

// ExperimentInput represents input for creating an experiment
type ExperimentInput struct {
	Name             string         `json:"name" validate:"required,min=1,max=255"`
	Description      string         `json:"description,omitempty"`
	ScenarioSequence []uuid.UUID    `json:"scenarioSequence" validate:"required,min=1"`
	Config           map[string]any `json:"config,omitempty"`
	CreatedBy        uuid.UUID      `json:"createdBy"`
}

// ExperimentFilter represents filter options for querying experiments
type ExperimentFilter struct {
	IsActive *bool
	Search   string
}

// ExperimentList represents a paginated list of experiments
type ExperimentList struct {
	Experiments []Experiment `json:"experiments"`
	TotalCount  int64        `json:"totalCount"`
}
