package handler

import (
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/daykeep/backend/api/transport"
	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/internal/ordering"
	"github.com/daykeep/backend/pkg/httpcontext"
	"github.com/daykeep/backend/repository"
	tasklogUC "github.com/daykeep/backend/usecase/tasklog"
)

type LogHandler struct {
	baseHandler
	uc *tasklogUC.UseCase
}

func NewLogHandler(uc *tasklogUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *LogHandler {
	return &LogHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List a group's logs in a date range
// @Tags logs
// @Router /api/v1/groups/{id}/logs [get]
func (h *LogHandler) ListByGroup(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}
	groupID, err := pathID(ctx, "id")
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.listRange(ctx, userID, groupID)
}

// @Summary List logs across groups in a date range
// @Tags logs
// @Router /api/v1/logs [get]
func (h *LogHandler) List(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}

	var groupID int64
	if raw := string(ctx.QueryArgs().Peek("group_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.respondError(ctx, domain.NewError(domain.ErrCodeInvalid, "invalid group_id"))
			return
		}
		groupID = id
	}
	h.listRange(ctx, userID, groupID)
}

func (h *LogHandler) listRange(ctx *fasthttp.RequestCtx, userID, groupID int64) {
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

	logs, err := h.uc.ListLogs(stdCtx, repository.LogFilter{
		UserID:  userID,
		GroupID: groupID,
		From:    from,
		To:      to,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if logs == nil {
		logs = []domain.TaskLog{}
	}
	h.respondSuccess(ctx, http.StatusOK, logs)
}

// @Summary Write one (task, date) log cell
// @Tags logs
// @Router /api/v1/logs [put]
func (h *LogHandler) Set(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}

	var req transport.WriteLogRequest
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

	result, err := h.uc.SetLog(stdCtx, userID, tasklogUC.SetLogInput{
		Task: tasklogUC.TaskSelector{
			ID:        req.Task.ID,
			GroupID:   req.Task.GroupID,
			Name:      req.Task.Name,
			ExtraInfo: req.Task.ExtraInfo,
		},
		LogID:     req.LogID,
		Date:      date,
		Done:      req.Done,
		ExtraInfo: req.ExtraInfo,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	status := http.StatusOK
	if result.TaskCreated {
		status = http.StatusCreated
	}
	h.respondSuccess(ctx, status, result)
}

// @Summary Move a log between dates, columns or positions
// @Tags logs
// @Router /api/v1/logs/{id}/move [post]
func (h *LogHandler) Move(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var req transport.MoveLogRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}
	fromDate, err := parseDate(req.FromDate)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	toDate, err := parseDate(req.ToDate)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	log, err := h.uc.MoveLog(stdCtx, userID, tasklogUC.MoveLogInput{
		LogID:       id,
		FromDate:    fromDate,
		ToDate:      toDate,
		ToDone:      req.ToDone,
		TargetLogID: req.TargetLogID,
		Position:    ordering.Position(req.Position),
		ExtraInfo:   req.ExtraInfo,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, log)
}

// @Summary Delete a log
// @Tags logs
// @Router /api/v1/logs/{id} [delete]
func (h *LogHandler) Delete(ctx *fasthttp.RequestCtx) {
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

	result, err := h.uc.DeleteLog(stdCtx, userID, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}
