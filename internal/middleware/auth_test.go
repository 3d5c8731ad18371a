package middleware

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/pkg/httpcontext"
)

const middlewareSecret = "middleware-test-secret"

type sessionStore struct {
	sessions map[string]*domain.Session
}

func (s *sessionStore) GetSession(_ context.Context, id string) (*domain.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func signToken(t *testing.T, secret string, userID int64, sessionID string, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID,
		"session_id": sessionID,
		"iss":        "daykeep",
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func liveSessions(userID int64, sessionID string) *sessionStore {
	return &sessionStore{sessions: map[string]*domain.Session{
		sessionID: {
			ID:        sessionID,
			UserID:    userID,
			ExpiresAt: time.Now().Add(time.Hour),
			CreatedAt: time.Now(),
		},
	}}
}

func TestJWTAuthPassesValidToken(t *testing.T) {
	token := signToken(t, middlewareSecret, 42, "sess-1", time.Hour)
	mw := JWTAuth(middlewareSecret, liveSessions(42, "sess-1"), nil)

	var forwardedUserID string
	handler := mw(func(ctx *fasthttp.RequestCtx) {
		forwardedUserID = string(ctx.Request.Header.Peek(httpcontext.HeaderUserID))
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+token)
	handler(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, strconv.FormatInt(42, 10), forwardedUserID)
}

func TestJWTAuthAcceptsQueryToken(t *testing.T) {
	token := signToken(t, middlewareSecret, 7, "sess-q", time.Hour)
	mw := JWTAuth(middlewareSecret, liveSessions(7, "sess-q"), nil)

	called := false
	handler := mw(func(ctx *fasthttp.RequestCtx) { called = true })

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/api/v1/events?token=" + token)
	handler(ctx)

	assert.True(t, called)
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	mw := JWTAuth(middlewareSecret, liveSessions(1, "sess"), nil)

	called := false
	handler := mw(func(ctx *fasthttp.RequestCtx) { called = true })

	ctx := &fasthttp.RequestCtx{}
	handler(ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuthRejectsBadSignature(t *testing.T) {
	token := signToken(t, "some-other-secret", 42, "sess-1", time.Hour)
	mw := JWTAuth(middlewareSecret, liveSessions(42, "sess-1"), nil)

	called := false
	handler := mw(func(ctx *fasthttp.RequestCtx) { called = true })

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+token)
	handler(ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	token := signToken(t, middlewareSecret, 42, "sess-1", -time.Minute)
	mw := JWTAuth(middlewareSecret, liveSessions(42, "sess-1"), nil)

	called := false
	handler := mw(func(ctx *fasthttp.RequestCtx) { called = true })

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+token)
	handler(ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuthRejectsRevokedSession(t *testing.T) {
	token := signToken(t, middlewareSecret, 42, "sess-gone", time.Hour)
	mw := JWTAuth(middlewareSecret, &sessionStore{sessions: map[string]*domain.Session{}}, nil)

	called := false
	handler := mw(func(ctx *fasthttp.RequestCtx) { called = true })

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+token)
	handler(ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuthRejectsSessionUserMismatch(t *testing.T) {
	token := signToken(t, middlewareSecret, 42, "sess-1", time.Hour)
	mw := JWTAuth(middlewareSecret, liveSessions(99, "sess-1"), nil)

	called := false
	handler := mw(func(ctx *fasthttp.RequestCtx) { called = true })

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.Set("Authorization", "Bearer "+token)
	handler(ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}
