package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ridewake/ridewake/internal/auth"
)

func newTestService() *auth.Service {
	return auth.NewService(auth.ServiceConfig{
		JWTService: auth.NewJWTService(auth.JWTConfig{
			SigningKey: "test-secret-key-for-testing-only",
			Issuer:     "https://api.ridewake.app",
			Audience:   "ridewake-api",
		}),
		UserRepo:    auth.NewInMemoryUserRepository(),
		RefreshRepo: auth.NewInMemoryRefreshTokenRepository(),
		BcryptCost:  bcrypt.MinCost,
	})
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, &auth.RegisterRequest{
		Email:    "Rider@Example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)
	assert.NotEmpty(t, reg.RecoveryCode)
	assert.Equal(t, "rider@example.com", reg.User.Email)

	login, err := svc.Login(ctx, &auth.LoginRequest{
		Email:    "rider@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
	// Recovery code is only disclosed at registration.
	assert.Empty(t, login.RecoveryCode)

	userID, err := svc.ValidateAccessToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, userID)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &auth.RegisterRequest{
		Email:    "rider@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &auth.RegisterRequest{
		Email:    "rider@example.com",
		Password: "another-password",
	})
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestService_Register_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  auth.RegisterRequest
	}{
		{"missing email", auth.RegisterRequest{Password: "hunter2hunter2"}},
		{"bad email", auth.RegisterRequest{Email: "not-an-email", Password: "hunter2hunter2"}},
		{"short password", auth.RegisterRequest{Email: "rider@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, &tt.req)
			assert.Error(t, err)
		})
	}
}

func TestService_Login_WrongPassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &auth.RegisterRequest{
		Email:    "rider@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &auth.LoginRequest{
		Email:    "rider@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestService_Login_UnknownUser(t *testing.T) {
	svc := newTestService()

	_, err := svc.Login(context.Background(), &auth.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestService_RefreshRotation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, &auth.RegisterRequest{
		Email:    "rider@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshAccessToken(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, reg.RefreshToken, refreshed.RefreshToken)

	// The old refresh token was rotated out and must be rejected.
	_, err = svc.RefreshAccessToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	// The new one still works.
	_, err = svc.RefreshAccessToken(ctx, refreshed.RefreshToken)
	require.NoError(t, err)
}

func TestService_RefreshAccessToken_Revoked(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, &auth.RegisterRequest{
		Email:    "rider@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeRefreshToken(ctx, reg.RefreshToken))

	_, err = svc.RefreshAccessToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestService_RecoverAccount(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, &auth.RegisterRequest{
		Email:    "rider@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	recovered, err := svc.RecoverAccount(ctx, &auth.RecoverRequest{
		Email:        "rider@example.com",
		RecoveryCode: reg.RecoveryCode,
		NewPassword:  "new-password-123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, recovered.AccessToken)

	// Old password no longer works, new one does.
	_, err = svc.Login(ctx, &auth.LoginRequest{
		Email:    "rider@example.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &auth.LoginRequest{
		Email:    "rider@example.com",
		Password: "new-password-123",
	})
	require.NoError(t, err)

	// Recovery revokes all sessions issued before it.
	_, err = svc.RefreshAccessToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestService_RecoverAccount_WrongCode(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &auth.RegisterRequest{
		Email:    "rider@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = svc.RecoverAccount(ctx, &auth.RecoverRequest{
		Email:        "rider@example.com",
		RecoveryCode: "rw-not-the-right-code",
		NewPassword:  "new-password-123",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidRecoveryCode)

	// Unknown emails get the same error as a wrong code.
	_, err = svc.RecoverAccount(ctx, &auth.RecoverRequest{
		Email:        "nobody@example.com",
		RecoveryCode: "rw-anything",
		NewPassword:  "new-password-123",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidRecoveryCode)
}

func TestService_RevokeAllTokens(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, &auth.RegisterRequest{
		Email:    "rider@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	login, err := svc.Login(ctx, &auth.LoginRequest{
		Email:    "rider@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAllTokens(ctx, reg.User.ID))

	_, err = svc.RefreshAccessToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	_, err = svc.RefreshAccessToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}
