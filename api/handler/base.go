package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/daykeep/backend/api/transport"
	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/pkg/httpcontext"
)

var validate = validator.New()

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

// decode unmarshals the body into dst and runs struct validation.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) error {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		return domain.ErrInvalidPayload
	}
	if err := validate.Struct(dst); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
	}
	return nil
}

// authedUser returns the authenticated user id, answering 401 itself
// when the middleware did not establish one.
func (h baseHandler) authedUser(ctx *fasthttp.RequestCtx) (int64, bool) {
	id := httpcontext.UserIDFromRequest(ctx)
	if id == 0 {
		h.respondError(ctx, domain.ErrUnauthorized)
		return 0, false
	}
	return id, true
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)

	payload := interface{}(err.Error())
	if details := domain.DetailsOf(err); details != nil {
		payload = map[string]interface{}{
			"message": err.Error(),
			"details": details,
		}
	}

	envelope := transport.NewError(code, payload, nil)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.Int("status", status),
			zap.String("path", string(ctx.Path())),
			zap.String("response", envelope.String()),
		)
	}
	h.respondJSON(ctx, status, envelope)
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeDuplicate):
		return http.StatusConflict, string(domain.ErrCodeDuplicate)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

// pathID parses a positive integer path parameter.
func pathID(ctx *fasthttp.RequestCtx, name string) (int64, error) {
	raw, _ := ctx.UserValue(name).(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewError(domain.ErrCodeInvalid, "invalid "+name)
	}
	return id, nil
}

// parseDate parses a strict YYYY-MM-DD value.
func parseDate(value string) (domain.Date, error) {
	date, err := domain.ParseDate(value)
	if err != nil {
		return domain.Date{}, domain.NewError(domain.ErrCodeInvalid, "date must be YYYY-MM-DD")
	}
	return date, nil
}
