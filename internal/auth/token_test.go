package auth

import (
	"errors"
	"testing"
	"time"

	"dashboard/internal/apperror"
	"dashboard/internal/authz"
	"dashboard/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	clk := clock.Fake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	issuer := NewTokenIssuer("test-secret", time.Hour, clk)
	want := authz.Identity{Username: "dhruv", DisplayName: "Dhruv Barad"}

	token, expiresAt, err := issuer.Issue(want)
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(time.Hour), expiresAt)

	got, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseExpired(t *testing.T) {
	clk := clock.Fake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	issuer := NewTokenIssuer("test-secret", time.Minute, clk)

	token, _, err := issuer.Issue(authz.Identity{Username: "kush"})
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	_, err = issuer.Parse(token)
	assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))
	assert.Contains(t, err.Error(), "expired")
}

func TestParseWrongSecret(t *testing.T) {
	clk := clock.Fake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	token, _, err := NewTokenIssuer("one", time.Hour, clk).Issue(authz.Identity{Username: "kush"})
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour, clk).Parse(token)
	assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))
}

func TestParseGarbage(t *testing.T) {
	issuer := NewTokenIssuer("s", time.Hour, clock.Real())

	_, err := issuer.Parse("not-a-jwt")
	assert.True(t, errors.Is(err, apperror.ErrUnauthenticated))
}
