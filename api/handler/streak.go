package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/daykeep/backend/api/transport"
	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/pkg/httpcontext"
	streakUC "github.com/daykeep/backend/usecase/streak"
)

type StreakHandler struct {
	baseHandler
	uc *streakUC.UseCase
}

func NewStreakHandler(uc *streakUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *StreakHandler {
	return &StreakHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// todayArg reads the optional today query parameter clients use to
// anchor run lengths to their own timezone.
func todayArg(ctx *fasthttp.RequestCtx) (domain.Date, error) {
	raw := string(ctx.QueryArgs().Peek("today"))
	if raw == "" {
		return domain.Date{}, nil
	}
	return parseDate(raw)
}

// @Summary List streaks with current run lengths
// @Tags streaks
// @Router /api/v1/streaks [get]
func (h *StreakHandler) List(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}
	today, err := todayArg(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	streaks, err := h.uc.ListStreaks(stdCtx, userID, today)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, streaks)
}

// @Summary Get one streak with its current run length
// @Tags streaks
// @Router /api/v1/streaks/{id} [get]
func (h *StreakHandler) Get(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	today, err := todayArg(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	streak, err := h.uc.GetStreak(stdCtx, userID, id, today)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, streak)
}

// @Summary Create a streak
// @Tags streaks
// @Router /api/v1/streaks [post]
func (h *StreakHandler) Create(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}

	var req transport.StreakCreateRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	streak, err := h.uc.CreateStreak(stdCtx, userID, req.Name, req.Notify)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, streak)
}

// @Summary Rename a streak or change its notify flag
// @Tags streaks
// @Router /api/v1/streaks/{id} [patch]
func (h *StreakHandler) Update(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var req transport.StreakUpdateRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	streak, err := h.uc.UpdateStreak(stdCtx, userID, id, streakUC.UpdateStreakInput{
		Name:   req.Name,
		Notify: req.Notify,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, streak)
}

// @Summary Delete a streak with its logs
// @Tags streaks
// @Router /api/v1/streaks/{id} [delete]
func (h *StreakHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteStreak(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int64{"id": id})
}

// @Summary Toggle a streak's state for one day
// @Tags streaks
// @Router /api/v1/streaks/{id}/toggle [post]
func (h *StreakHandler) Toggle(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var req transport.StreakToggleRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	log, err := h.uc.Toggle(stdCtx, userID, id, date, req.Note)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, log)
}

// @Summary List a streak's logs in a date range
// @Tags streaks
// @Router /api/v1/streaks/{id}/logs [get]
func (h *StreakHandler) ListLogs(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	from, err := parseDate(string(ctx.QueryArgs().Peek("from")))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	to, err := parseDate(string(ctx.QueryArgs().Peek("to")))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	logs, err := h.uc.ListLogs(stdCtx, userID, id, from, to)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if logs == nil {
		logs = []domain.StreakLog{}
	}
	h.respondSuccess(ctx, http.StatusOK, logs)
}
