package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "slotswapper/internal/errors"
	"slotswapper/internal/repository/memory"
)

func newAuthFixture() (*memory.Store, *AuthService) {
	store := memory.NewStore()
	return store, NewAuthService(store, "test-secret")
}

func TestSignupAndLogin(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()

	token, user, err := svc.Signup(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	// The signup token resolves back to the new user.
	sub, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sub)

	loginToken, loginUser, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
	assert.Equal(t, user.ID, loginUser.ID)
}

func TestSignup_Validation(t *testing.T) {
	_, svc := newAuthFixture()

	_, _, err := svc.Signup(context.Background(), "", "alice@example.com", "s3cret")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidRequest, apperrors.KindOf(err))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, "Imposter", "alice@example.com", "other")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidRequest, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "already in use")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "Alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	// Unknown email gets the same answer as a wrong password.
	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cret")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
}

func TestVerifyToken_Garbage(t *testing.T) {
	_, svc := newAuthFixture()

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.VerifyToken(token)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	_, svc := newAuthFixture()
	other := NewAuthService(memory.NewStore(), "different-secret")

	token, err := other.SignToken("some-user")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
}
