package handler

import (
	"bufio"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/daykeep/backend/internal/events"
	"github.com/daykeep/backend/pkg/httpcontext"
	appLogger "github.com/daykeep/backend/pkg/logger"
)

type EventsHandler struct {
	baseHandler
	hub *events.Hub
}

func NewEventsHandler(hub *events.Hub, adapter *httpcontext.Adapter, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		hub:         hub,
	}
}

// @Summary Subscribe to the user's change stream
// @Tags events
// @Produce text/event-stream
// @Router /api/v1/events [get]
func (h *EventsHandler) Stream(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}

	// No deadline: the stream lives until the client goes away. Dead
	// connections surface as flush errors on the next keepalive.
	stdCtx, cancel := h.adapter.AttachStream(ctx)

	sub := h.hub.Subscribe(userID)
	logger := appLogger.WithRequestID(stdCtx, h.logger).With(zap.Int64("user_id", userID))
	logger.Debug("event stream opened")

	ctx.Response.Header.SetContentType("text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")
	ctx.Response.Header.Set("X-Accel-Buffering", "no")

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer h.hub.Unsubscribe(sub)
		defer logger.Debug("event stream closed")

		for {
			event, err := sub.Next(stdCtx)
			if err != nil {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				logger.Error("event marshal failed", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
}
