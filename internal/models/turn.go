package models

import (
	"fmt"
	"time"
)

// Role identifies who produced a turn.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleModel
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleModel:
		return "model"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case RoleUser, RoleModel:
		return []byte(r.String()), nil
	default:
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
}

func (r *Role) UnmarshalText(b []byte) error {
	switch string(b) {
	case "user":
		*r = RoleUser
	case "model":
		*r = RoleModel
	default:
		return fmt.Errorf("invalid role %q", string(b))
	}
	return nil
}

// Turn is a single entry of a transcript. Turns are values and are never
// modified after creation.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	// Synthetic marks turns the model never produced in-session, such as the
	// greeting shown when a conversation opens.
	Synthetic bool `json:"synthetic,omitempty"`
}

// NewTurn stamps a turn with the current time.
func NewTurn(role Role, text string) Turn {
	return Turn{Role: role, Text: text, CreatedAt: time.Now().UTC()}
}

// SessionContext scopes the assistant to the model being viewed.
type SessionContext struct {
	TopicLabel string `json:"topic_label"`
}
