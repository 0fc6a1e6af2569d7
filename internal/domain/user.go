package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UserRole determines what a user may administer
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleOperator UserRole = "user"
)

// Preferences is the typed user preference set. Unknown keys received
// from older or newer clients are preserved in Extra and round-tripped
// unchanged rather than dropped.
type Preferences struct {
	Theme               string `json:"theme,omitempty"`
	DefaultExportFormat string `json:"defaultExportFormat,omitempty"`
	EmailNotifications  bool   `json:"emailNotifications,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type preferencesAlias Preferences

var knownPreferenceKeys = map[string]struct{}{
	"theme":               {},
	"defaultExportFormat": {},
	"emailNotifications":  {},
}

// MarshalJSON emits the typed fields plus any preserved unknown keys.
func (p Preferences) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(preferencesAlias(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range p.Extra {
		if _, known := knownPreferenceKeys[k]; !known {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON parses the typed fields and preserves unknown keys.
func (p *Preferences) UnmarshalJSON(data []byte) error {
	var alias preferencesAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range knownPreferenceKeys {
		delete(raw, k)
	}

	*p = Preferences(alias)
	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}

// User is an operator or administrator account. Credential handling
// lives with the authentication collaborator, not here.
type User struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"fullName,omitempty"`
	Role        UserRole    `json:"role"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
	LastLogin   *time.Time  `json:"lastLogin,omitempty"`
	Preferences Preferences `json:"preferences"`
}
