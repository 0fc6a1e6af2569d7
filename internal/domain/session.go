package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of a session
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAbandoned SessionStatus = "abandoned"
)

// IsValid checks whether the status is a known lifecycle state
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusActive, SessionStatusCompleted, SessionStatusAbandoned:
		return true
	}
	return false
}

// Session is one participant's single run through an experiment.
// Invariant: EndTime is set if and only if Status != active.
type Session struct {
	ID            uuid.UUID      `json:"id"`
	ExperimentID  uuid.UUID      `json:"experimentId"`
	ParticipantID string         `json:"participantId"`
	OperatorID    string         `json:"operatorId"`
	StartTime     time.Time      `json:"startTime"`
	EndTime       *time.Time     `json:"endTime,omitempty"`
	Status        SessionStatus  `json:"status"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// SessionInput represents input for creating a session
type SessionInput struct {
	ExperimentID  uuid.UUID      `json:"experimentId" validate:"required"`
	ParticipantID string         `json:"participantId" validate:"required,min=1,max=50"`
	OperatorID    string         `json:"operatorId" validate:"required,min=1,max=50"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// SessionFilter represents filter options for querying sessions
type SessionFilter struct {
	ExperimentID  *uuid.UUID
	ParticipantID *string
	Status        *SessionStatus
}

// SessionList represents a paginated list of sessions
type SessionList struct {
	Sessions   []Session `json:"sessions"`
	TotalCount int64     `json:"totalCount"`
}
