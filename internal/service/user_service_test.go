package service

import (
	"context"
	"sync"
	"testing"

	"dashboard/internal/apperror"
	"dashboard/internal/authz"
	"dashboard/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.users.Login(ctx, LoginUserRequest{Username: "kush", Password: "jani"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, authz.RoleApprover, res.User.Role)
	assert.Equal(t, "Kush Jani", res.User.DisplayName)
	assert.EqualValues(t, 86400, res.RefreshExpiresIn)

	id, err := f.tokens.Parse(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, kush, id)

	res, err = f.users.Login(ctx, LoginUserRequest{Username: "dhruv", Password: "barad"})
	require.NoError(t, err)
	assert.Equal(t, authz.RoleRequester, res.User.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Login(ctx, LoginUserRequest{Username: "kush", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = f.users.Login(ctx, LoginUserRequest{Username: "ghost", Password: "jani"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := f.users.Login(ctx, LoginUserRequest{Username: "dhruv", Password: "barad"})
	require.NoError(t, err)

	refreshed, err := f.users.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, "dhruv", refreshed.User.Username)

	_, err = f.users.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	require.NoError(t, f.users.Logout(ctx, refreshed.RefreshToken))
	_, err = f.users.Refresh(ctx, refreshed.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = f.users.Refresh(ctx, "")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestConcurrentRefreshHasOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := f.users.Login(ctx, LoginUserRequest{Username: "dhruv", Password: "barad"})
	require.NoError(t, err)

	const workers = 6
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.users.Refresh(ctx, login.RefreshToken)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	}
	assert.Equal(t, 1, wins)
}

func TestMeAndListUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	me, err := f.users.Me(ctx, jaydev)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleRequester, me.Role)

	_, err = f.users.Me(ctx, authz.Identity{Username: "ghost"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	users, err := f.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 5)
}

func TestSeedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.Seed(ctx, config.DefaultSeed()))
	require.NoError(t, f.users.Seed(ctx, []config.SeedUser{
		{Username: "kush", Password: "changed", DisplayName: "Someone Else"},
		{Username: "meera", Password: "shah", DisplayName: "Meera Shah"},
	}))

	users, err := f.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 6)

	// Existing rows are left untouched.
	_, err = f.users.Login(ctx, LoginUserRequest{Username: "kush", Password: "jani"})
	require.NoError(t, err)
}
