package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/daykeep/backend/api/transport"
	"github.com/daykeep/backend/internal/ordering"
	"github.com/daykeep/backend/pkg/httpcontext"
	groupUC "github.com/daykeep/backend/usecase/group"
)

type GroupHandler struct {
	baseHandler
	uc *groupUC.UseCase
}

func NewGroupHandler(uc *groupUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *GroupHandler {
	return &GroupHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List groups with their pin groups and pins
// @Tags groups
// @Router /api/v1/groups [get]
func (h *GroupHandler) List(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tree, err := h.uc.ListGroups(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tree)
}

// @Summary Create a group
// @Tags groups
// @Router /api/v1/groups [post]
func (h *GroupHandler) Create(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}

	var req transport.GroupCreateRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	group, err := h.uc.CreateGroup(stdCtx, userID, req.Name, req.ViewMode)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, group)
}

// @Summary Rename a group or switch its view mode
// @Tags groups
// @Router /api/v1/groups/{id} [patch]
func (h *GroupHandler) Update(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var req transport.GroupUpdateRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	group, err := h.uc.UpdateGroup(stdCtx, userID, id, groupUC.UpdateGroupInput{
		Name:     req.Name,
		ViewMode: req.ViewMode,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, group)
}

// @Summary Delete a group and everything under it
// @Tags groups
// @Router /api/v1/groups/{id} [delete]
func (h *GroupHandler) Delete(ctx *fasthttp.RequestCtx) {
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

	if err := h.uc.DeleteGroup(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int64{"id": id})
}

// @Summary Reorder groups
// @Tags groups
// @Router /api/v1/groups/reorder [post]
func (h *GroupHandler) Reorder(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}

	var req transport.GroupReorderRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.ReorderGroups(stdCtx, userID, req.IDs); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string][]int64{"ids": req.IDs})
}

// @Summary Create a pin group inside a group
// @Tags pins
// @Router /api/v1/groups/{id}/pin-groups [post]
func (h *GroupHandler) CreatePinGroup(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}
	groupID, err := pathID(ctx, "id")
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var req transport.PinGroupCreateRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	pg, err := h.uc.CreatePinGroup(stdCtx, userID, groupID, req.Name)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, pg)
}

// @Summary Rename a pin group
// @Tags pins
// @Router /api/v1/pin-groups/{id} [patch]
func (h *GroupHandler) UpdatePinGroup(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var req transport.PinGroupUpdateRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	pg, err := h.uc.RenamePinGroup(stdCtx, userID, id, req.Name)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, pg)
}

// @Summary Delete a pin group with its pins
// @Tags pins
// @Router /api/v1/pin-groups/{id} [delete]
func (h *GroupHandler) DeletePinGroup(ctx *fasthttp.RequestCtx) {
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

	if err := h.uc.DeletePinGroup(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int64{"id": id})
}

// @Summary Pin a task into a pin group
// @Tags pins
// @Router /api/v1/pin-groups/{id}/pins [post]
func (h *GroupHandler) AddPin(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}
	pinGroupID, err := pathID(ctx, "id")
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var req transport.PinCreateRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	pin, err := h.uc.AddPin(stdCtx, userID, pinGroupID, req.TaskID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, pin)
}

// @Summary Unpin a task
// @Tags pins
// @Router /api/v1/pins/{id} [delete]
func (h *GroupHandler) RemovePin(ctx *fasthttp.RequestCtx) {
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

	if err := h.uc.RemovePin(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int64{"id": id})
}

// @Summary Reposition a pin inside its pin group
// @Tags pins
// @Router /api/v1/pins/{id}/move [post]
func (h *GroupHandler) MovePin(ctx *fasthttp.RequestCtx) {
	userID, ok := h.authedUser(ctx)
	if !ok {
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	var req transport.PinMoveRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	pin, err := h.uc.MovePin(stdCtx, userID, id, req.TargetPinID, ordering.Position(req.Position))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, pin)
}
