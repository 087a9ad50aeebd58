package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

func newTestAuthService() (*AuthService, *memUserRepo) {
	users := &memUserRepo{users: map[string]*domain.User{}}
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:         "test-secret",
		SessionTTLMinutes: 60,
		BcryptCost:        4, // minimum cost keeps tests fast
	}, users)
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	user, token, _, err := svc.Register(ctx, "Ada", "ada@x.com", "s3cret!pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEmpty(t, token)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.SubjectID)
	assert.Equal(t, domain.RoleUser, claims.Role)

	loggedIn, token, _, err := svc.Login(ctx, "ada@x.com", "s3cret!pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Ada", "ada@x.com", "s3cret!pass")
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, "Other", "ada@x.com", "different")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Ada", "ada@x.com", "s3cret!pass")
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "ada@x.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	_, _, _, err = svc.Login(ctx, "nobody@x.com", "s3cret!pass")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestLoginTokenCarriesStoredRole(t *testing.T) {
	svc, users := newTestAuthService()
	ctx := context.Background()

	user, _, _, err := svc.Register(ctx, "Sam", "sam@x.com", "s3cret!pass")
	require.NoError(t, err)

	// promote the account; the next login must reflect it
	users.users[user.ID].Role = domain.RoleSupport

	_, token, _, err := svc.Login(ctx, "sam@x.com", "s3cret!pass")
	require.NoError(t, err)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupport, claims.Role)
}
