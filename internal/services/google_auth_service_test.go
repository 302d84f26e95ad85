package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"

	"stockroom/internal/models"
)

func stubValidator(claims map[string]interface{}, err error) tokenValidator {
	return func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		if err != nil {
			return nil, err
		}
		return &idtoken.Payload{Claims: claims}, nil
	}
}

func TestGoogleSignInProvisionsUser(t *testing.T) {
	users := newFakeUserRepo()
	auth := NewAuthService(users, "secret", 15*time.Minute, 24*time.Hour)
	svc := NewGoogleAuthService(users, auth, "client-id", "staff")
	svc.validate = stubValidator(map[string]interface{}{
		"email":          "Owner@Example.com",
		"email_verified": true,
	}, nil)

	user, tokens, err := svc.SignIn(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", user.Email)
	assert.Equal(t, "owner", user.Username)
	assert.Equal(t, "staff", user.Role)
	assert.NotEmpty(t, tokens.AccessToken)

	// second sign-in reuses the account
	again, _, err := svc.SignIn(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestGoogleSignInRejectsUnverifiedEmail(t *testing.T) {
	users := newFakeUserRepo()
	auth := NewAuthService(users, "secret", 15*time.Minute, 24*time.Hour)
	svc := NewGoogleAuthService(users, auth, "client-id", "staff")
	svc.validate = stubValidator(map[string]interface{}{
		"email":          "owner@example.com",
		"email_verified": false,
	}, nil)

	_, _, err := svc.SignIn(context.Background(), "raw-token")
	assert.ErrorIs(t, err, ErrGoogleToken)
}

func TestGoogleSignInRejectsInvalidToken(t *testing.T) {
	users := newFakeUserRepo()
	auth := NewAuthService(users, "secret", 15*time.Minute, 24*time.Hour)
	svc := NewGoogleAuthService(users, auth, "client-id", "staff")
	svc.validate = stubValidator(nil, assert.AnError)

	_, _, err := svc.SignIn(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrGoogleToken)

	n, _ := users.GetCount()
	assert.Equal(t, 0, n)
}

func TestAuthServiceRefreshRotation(t *testing.T) {
	users := newFakeUserRepo()
	auth := NewAuthService(users, "secret", 15*time.Minute, 24*time.Hour)
	u := &models.User{ID: "u1", Email: "a@example.com", Role: "staff"}
	require.NoError(t, users.Create(u))

	pair, err := auth.IssueTokens(u)
	require.NoError(t, err)

	_, next, err := auth.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// the old token is dead after rotation
	_, _, err = auth.Refresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}
