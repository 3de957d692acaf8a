// Package authz maps session identities to roles. Every role-sensitive
// operation checks through a Gate, so the approver is configured in one place.
package authz

import (
	"strings"

	"dashboard/internal/apperror"
)

// Role is derived from the identity and never stored.
type Role string

const (
	RoleApprover  Role = "approver"
	RoleRequester Role = "requester"
)

// Identity is the authenticated caller of a core operation.
type Identity struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Gate holds the single configured approver username.
type Gate struct {
	approver string
}

func NewGate(approverUsername string) Gate {
	return Gate{approver: strings.TrimSpace(approverUsername)}
}

// Approver returns the configured approver username.
func (g Gate) Approver() string {
	return g.approver
}

func (g Gate) RoleOf(id Identity) Role {
	if g.approver != "" && id.Username == g.approver {
		return RoleApprover
	}
	return RoleRequester
}

func (g Gate) IsApprover(id Identity) bool {
	return g.RoleOf(id) == RoleApprover
}

// RequireApprover fails with an authorization error unless id is the approver.
func (g Gate) RequireApprover(id Identity, action string) error {
	if !g.IsApprover(id) {
		return apperror.Authorization("only the approver may %s", action)
	}
	return nil
}
