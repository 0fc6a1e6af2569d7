package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScenarioResponse records one participant decision within a session.
// StepNumber is unique per session and must agree with the owning
// experiment's scenario sequence. The answer fields are write-once:
// once RespondedAt is set the response is immutable.
type ScenarioResponse struct {
	ID                   uuid.UUID  `json:"id"`
	SessionID            uuid.UUID  `json:"sessionId"`
	ScenarioID           uuid.UUID  `json:"scenarioId"`
	StepNumber           int        `json:"stepNumber"`
	PresentedAt          time.Time  `json:"presentedAt"`
	RespondedAt          *time.Time `json:"respondedAt,omitempty"`
	SelectedOption       *string    `json:"selectedOption,omitempty"`
	CustomResponse       *string    `json:"customResponse,omitempty"`
	ConfidenceRating     *int       `json:"confidenceRating,omitempty"`
	RiskRating           *int       `json:"riskRating,omitempty"`
	ResponseTimeMs       *int       `json:"responseTimeMs,omitempty"`
	ThinkAloudTranscript *string    `json:"thinkAloudTranscript,omitempty"`
}

// Answered reports whether the response has been submitted.
func (r *ScenarioResponse) Answered() bool {
	return r.RespondedAt != nil
}

// RecordInput represents input for recording a presented scenario
type RecordInput struct {
	SessionID   uuid.UUID `json:"sessionId" validate:"required"`
	ScenarioID  uuid.UUID `json:"scenarioId" validate:"required"`
	StepNumber  int       `json:"stepNumber" validate:"min=0"`
	PresentedAt time.Time `json:"presentedAt"`
}

// SubmitInput represents input for submitting a response's answer fields
type SubmitInput struct {
	SelectedOption   *string `json:"selectedOption,omitempty"`
	CustomResponse   *string `json:"customResponse,omitempty"`
	ConfidenceRating *int    `json:"confidenceRating,omitempty"`
	RiskRating       *int    `json:"riskRating,omitempty"`
	Transcript       *string `json:"transcript,omitempty"`
}
