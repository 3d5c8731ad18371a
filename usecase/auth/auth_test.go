package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/repository"
	"github.com/daykeep/backend/repository/memory"
)

const (
	testSecret = "test-secret"
	testIssuer = "daykeep-test"
)

func newAuth() (*UseCase, repository.UserRepository, repository.SessionRepository) {
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	sessions := memory.NewSessionRepository(store)
	return New(users, sessions, testSecret, testIssuer, time.Hour, nil), users, sessions
}

func parseToken(t *testing.T, signed string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	return parsed.Claims.(jwt.MapClaims)
}

func TestLoginRegistersOnFirstEmail(t *testing.T) {
	uc, users, _ := newAuth()
	ctx := context.Background()

	token, err := uc.Login(ctx, LoginInput{UserID: 42, Email: "a@example.com", DisplayName: "A"})
	require.NoError(t, err)
	require.NotNil(t, token.Session)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, int64(42), token.Session.UserID)

	user, err := users.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)
	assert.True(t, user.IsActive())

	claims := parseToken(t, token.Token)
	assert.EqualValues(t, 42, claims["user_id"])
	assert.Equal(t, token.Session.ID, claims["session_id"])
	assert.Equal(t, testIssuer, claims["iss"])

	// Known account logs in without resupplying the email.
	again, err := uc.Login(ctx, LoginInput{UserID: 42})
	require.NoError(t, err)
	assert.NotEqual(t, token.Session.ID, again.Session.ID, "each login is its own session")
}

func TestLoginRejections(t *testing.T) {
	uc, users, _ := newAuth()
	ctx := context.Background()

	_, err := uc.Login(ctx, LoginInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = uc.Login(ctx, LoginInput{UserID: 7})
	assert.ErrorIs(t, err, domain.ErrUserNotFound, "unknown id without email stays unknown")

	require.NoError(t, users.Upsert(ctx, &domain.User{ID: 8, Status: "disabled"}))
	_, err = uc.Login(ctx, LoginInput{UserID: 8})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func TestSessionLifecycle(t *testing.T) {
	uc, _, _ := newAuth()
	ctx := context.Background()

	token, err := uc.Login(ctx, LoginInput{UserID: 1, Email: "a@example.com"})
	require.NoError(t, err)

	session, err := uc.GetSession(ctx, token.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), session.UserID)

	require.NoError(t, uc.RevokeSession(ctx, token.Session.ID))
	_, err = uc.GetSession(ctx, token.Session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestGetSessionExpired(t *testing.T) {
	uc, _, sessions := newAuth()
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, &domain.Session{
		ID:        "stale",
		UserID:    1,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := uc.GetSession(ctx, "stale")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRefreshSession(t *testing.T) {
	uc, _, _ := newAuth()
	ctx := context.Background()

	token, err := uc.Login(ctx, LoginInput{UserID: 1, Email: "a@example.com", TTL: time.Minute})
	require.NoError(t, err)
	firstExpiry := token.Session.ExpiresAt

	refreshed, err := uc.RefreshSession(ctx, token.Session.ID, 2*time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Token)
	assert.Equal(t, token.Session.ID, refreshed.Session.ID)
	assert.True(t, refreshed.Session.ExpiresAt.After(firstExpiry))

	claims := parseToken(t, refreshed.Token)
	assert.Equal(t, token.Session.ID, claims["session_id"])

	_, err = uc.RefreshSession(ctx, "missing", time.Hour)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
