package httpcontext

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/daykeep/backend/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyUserID     Key = "user_id"
)

// HeaderUserID is set by the auth middleware once a token checks out.
const HeaderUserID = "X-User-ID"

// Adapter converts fasthttp.RequestCtx into a stdlib context with a
// deadline and request metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with the adapter's timeout and copies request
// metadata into it, including the authenticated user id when present.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := getRequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if userID := UserIDFromRequest(ctx); userID != 0 {
		stdCtx = context.WithValue(stdCtx, KeyUserID, userID)
	}

	return stdCtx, cancel
}

// AttachStream behaves like Attach but without a deadline, for handlers
// that hold their connection open.
func (a *Adapter) AttachStream(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithCancel(context.Background())

	reqID := getRequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set("X-Request-ID", reqID)

	if userID := UserIDFromRequest(ctx); userID != 0 {
		stdCtx = context.WithValue(stdCtx, KeyUserID, userID)
	}

	return stdCtx, cancel
}

// UserIDFromRequest parses the user id header the auth middleware sets.
// Returns 0 when the request is unauthenticated.
func UserIDFromRequest(ctx *fasthttp.RequestCtx) int64 {
	if ctx == nil {
		return 0
	}
	raw := string(ctx.Request.Header.Peek(HeaderUserID))
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// UserID returns the authenticated user id carried by the context.
func UserID(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(KeyUserID).(int64)
	return id, ok && id != 0
}

func getRequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if header := string(ctx.Request.Header.Peek("X-Request-ID")); strings.TrimSpace(header) != "" {
		return header
	}
	return uuid.NewString()
}
