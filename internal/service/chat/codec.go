package chat

import (
	"strings"

	"modelchat/internal/models"
)

// RemoteRole is the role tag understood by the remote chat model.
type RemoteRole string

const (
	RemoteRoleUser  RemoteRole = "user"
	RemoteRoleModel RemoteRole = "model"
)

// Part is one text fragment of a remote turn.
type Part struct {
	Text string `json:"text"`
}

// RemoteTurn is a history entry in the shape the remote chat API expects.
type RemoteTurn struct {
	Role  RemoteRole `json:"role"`
	Parts []Part     `json:"parts"`
}

// Text joins the parts of the turn.
func (t RemoteTurn) Text() string {
	if len(t.Parts) == 1 {
		return t.Parts[0].Text
	}
	var b strings.Builder
	for _, p := range t.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// EncodeHistory maps local turns to remote history, keeping their order and
// dropping synthetic turns.
func EncodeHistory(turns []models.Turn) []RemoteTurn {
	history := make([]RemoteTurn, 0, len(turns))
	for _, turn := range turns {
		if turn.Synthetic {
			continue
		}
		role, ok := remoteRole(turn.Role)
		if !ok {
			continue
		}
		history = append(history, RemoteTurn{
			Role:  role,
			Parts: []Part{{Text: turn.Text}},
		})
	}
	return history
}

func remoteRole(role models.Role) (RemoteRole, bool) {
	switch role {
	case models.RoleUser:
		return RemoteRoleUser, true
	case models.RoleModel:
		return RemoteRoleModel, true
	default:
		return "", false
	}
}
