package authz

import (
	"errors"
	"testing"

	"dashboard/internal/apperror"

	"github.com/stretchr/testify/assert"
)

func TestRoleOf(t *testing.T) {
	gate := NewGate("kush")

	cases := []struct {
		name     string
		identity Identity
		want     Role
	}{
		{name: "approver", identity: Identity{Username: "kush", DisplayName: "Kush Jani"}, want: RoleApprover},
		{name: "requester", identity: Identity{Username: "dhruv", DisplayName: "Dhruv Barad"}, want: RoleRequester},
		{name: "display name does not grant role", identity: Identity{Username: "jaydev", DisplayName: "kush"}, want: RoleRequester},
		{name: "empty identity", identity: Identity{}, want: RoleRequester},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, gate.RoleOf(tc.identity))
		})
	}
}

func TestUnconfiguredGateHasNoApprover(t *testing.T) {
	gate := NewGate("  ")

	assert.Equal(t, RoleRequester, gate.RoleOf(Identity{}))
	assert.False(t, gate.IsApprover(Identity{Username: ""}))
}

func TestRequireApprover(t *testing.T) {
	gate := NewGate("kush")

	assert.NoError(t, gate.RequireApprover(Identity{Username: "kush"}, "decide"))

	err := gate.RequireApprover(Identity{Username: "jaydev"}, "decide")
	assert.True(t, errors.Is(err, apperror.ErrAuthorization))
	assert.Contains(t, err.Error(), "decide")
}
