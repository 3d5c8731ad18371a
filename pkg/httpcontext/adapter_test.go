package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/daykeep/backend/pkg/logger"
)

func TestAttachCopiesRequestMetadata(t *testing.T) {
	adapter := NewAdapter(time.Second)

	reqCtx := &fasthttp.RequestCtx{}
	reqCtx.Request.Header.Set("User-Agent", "daykeep-test/1.0")
	reqCtx.Request.Header.Set(HeaderUserID, "42")
	reqCtx.Request.Header.Set("X-Request-ID", "req-123")

	ctx, cancel := adapter.Attach(reqCtx)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 200*time.Millisecond)

	userID, ok := UserID(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(42), userID)

	assert.Equal(t, "daykeep-test/1.0", ctx.Value(KeyUserAgent))
	assert.Equal(t, "req-123", logger.RequestIDFrom(ctx))
	assert.Equal(t, "req-123", string(reqCtx.Response.Header.Peek("X-Request-ID")))
}

func TestAttachGeneratesRequestID(t *testing.T) {
	adapter := NewAdapter(time.Second)

	reqCtx := &fasthttp.RequestCtx{}
	ctx, cancel := adapter.Attach(reqCtx)
	defer cancel()

	reqID := logger.RequestIDFrom(ctx)
	assert.NotEmpty(t, reqID)
	assert.Equal(t, reqID, string(reqCtx.Response.Header.Peek("X-Request-ID")))

	_, ok := UserID(ctx)
	assert.False(t, ok, "unauthenticated request carries no user id")
}

func TestAttachStreamHasNoDeadline(t *testing.T) {
	adapter := NewAdapter(time.Second)

	reqCtx := &fasthttp.RequestCtx{}
	reqCtx.Request.Header.Set(HeaderUserID, "7")

	ctx, cancel := adapter.AttachStream(reqCtx)

	_, ok := ctx.Deadline()
	assert.False(t, ok)

	userID, ok := UserID(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(7), userID)

	cancel()
	select {
	case <-ctx.Done():
	default:
		t.Fatal("cancel should close the stream context")
	}
}

func TestUserIDFromRequest(t *testing.T) {
	assert.Zero(t, UserIDFromRequest(nil))

	reqCtx := &fasthttp.RequestCtx{}
	assert.Zero(t, UserIDFromRequest(reqCtx))

	reqCtx.Request.Header.Set(HeaderUserID, "not-a-number")
	assert.Zero(t, UserIDFromRequest(reqCtx))

	reqCtx.Request.Header.Set(HeaderUserID, "314")
	assert.Equal(t, int64(314), UserIDFromRequest(reqCtx))
}
