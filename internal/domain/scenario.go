package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScenarioOption is one selectable choice within a scenario's fixed
// option set.
type ScenarioOption struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Scenario is a static, reusable decision-point description presented
// to participants. Deactivated scenarios are soft-deleted, never removed.
type Scenario struct {
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Category      string           `json:"category,omitempty"`
	Description   string           `json:"description"`
	Context       string           `json:"context"`
	DecisionPoint string           `json:"decisionPoint"`
	Options       []ScenarioOption `json:"options"`
	Metadata      map[string]any   `json:"metadata,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	IsActive      bool             `json:"isActive"`
}

// HasOption reports whether id is one of the scenario's option ids.
func (s *Scenario) HasOption(id string) bool {
	for _, opt := range s.Options {
		if opt.ID == id {
			return true
		}
	}
	return false
}

// ScenarioInput represents input for creating a scenario
type ScenarioInput struct {
	Title         string           `json:"title" validate:"required,min=1,max=255"`
	Category      string           `json:"category,omitempty" validate:"max=100"`
	Description   string           `json:"description" validate:"required"`
	Context       string           `json:"context" validate:"required"`
	DecisionPoint string           `json:"decisionPoint" validate:"required"`
	Options       []ScenarioOption `json:"options" validate:"required,min=2,dive"`
	Metadata      map[string]any   `json:"metadata,omitempty"`
}

// ScenarioUpdateInput represents input for updating a scenario
type ScenarioUpdateInput struct {
	Title         *string          `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Category      *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Description   *string          `json:"description,omitempty"`
	Context       *string          `json:"context,omitempty"`
	DecisionPoint *string          `json:"decisionPoint,omitempty"`
	Options       []ScenarioOption `json:"options,omitempty"`
	Metadata      map[string]any   `json:"metadata,omitempty"`
}

// ScenarioFilter represents filter options for querying scenarios
type ScenarioFilter struct {
	Category *string
}

// ScenarioList represents a paginated list of scenarios
type ScenarioList struct {
	Scenarios  []Scenario `json:"scenarios"`
	TotalCount int64      `json:"totalCount"`
}
