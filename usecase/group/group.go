// Package group manages task containers: groups, their pin groups and
// the pins inside them. Pin placement reuses the same relative-position
// helper task logs use.
package group

import (
	"context"

	"go.uber.org/zap"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/internal/ordering"
	"github.com/daykeep/backend/repository"
	"github.com/daykeep/backend/usecase"
)

type UseCase struct {
	groups repository.GroupRepository
	tasks  repository.TaskRepository
	logs   repository.TaskLogRepository
	mirror usecase.StreakMirror
	events usecase.EventPublisher
	locks  usecase.UserLocker
	logger *zap.Logger
}

func New(groups repository.GroupRepository, tasks repository.TaskRepository, logs repository.TaskLogRepository, mirror usecase.StreakMirror, events usecase.EventPublisher, locks usecase.UserLocker, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		groups: groups,
		tasks:  tasks,
		logs:   logs,
		mirror: mirror,
		events: events,
		locks:  locks,
		logger: logger,
	}
}

// PinGroupTree is a pin group with its pins in display order.
type PinGroupTree struct {
	domain.PinGroup
	Pins []domain.GroupPin `json:"pins"`
}

// GroupTree is a group with its pin groups in display order.
type GroupTree struct {
	domain.Group
	PinGroups []PinGroupTree `json:"pin_groups"`
}

// ListGroups returns the user's full container tree.
func (uc *UseCase) ListGroups(ctx context.Context, userID int64) ([]GroupTree, error) {
	groups, err := uc.groups.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	tree := make([]GroupTree, 0, len(groups))
	for _, group := range groups {
		node := GroupTree{Group: group, PinGroups: []PinGroupTree{}}

		pinGroups, err := uc.groups.ListPinGroups(ctx, userID, group.ID)
		if err != nil {
			return nil, err
		}
		for _, pg := range pinGroups {
			pins, err := uc.groups.ListPins(ctx, userID, pg.ID)
			if err != nil {
				return nil, err
			}
			if pins == nil {
				pins = []domain.GroupPin{}
			}
			node.PinGroups = append(node.PinGroups, PinGroupTree{PinGroup: pg, Pins: pins})
		}
		tree = append(tree, node)
	}
	return tree, nil
}

func (uc *UseCase) GetGroup(ctx context.Context, userID, id int64) (*domain.Group, error) {
	return uc.groups.GetByID(ctx, userID, id)
}

func (uc *UseCase) CreateGroup(ctx context.Context, userID int64, name, viewMode string) (*domain.Group, error) {
	if name == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "group name is required")
	}
	if viewMode == "" {
		viewMode = domain.ViewTable
	}
	if !domain.ValidViewMode(viewMode) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unknown view mode")
	}

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	group, err := uc.groups.Create(ctx, &domain.Group{
		UserID:   userID,
		Name:     name,
		ViewMode: viewMode,
	})
	if err != nil {
		return nil, err
	}

	uc.events.Publish(userID, domain.Event{Type: domain.EventGroupCreated, GroupID: group.ID})
	return group, nil
}

// UpdateGroupInput is a partial update; nil fields stay untouched.
type UpdateGroupInput struct {
	Name     *string
	ViewMode *string
}

func (uc *UseCase) UpdateGroup(ctx context.Context, userID, id int64, input UpdateGroupInput) (*domain.Group, error) {
	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	group, err := uc.groups.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, domain.NewError(domain.ErrCodeInvalid, "group name is required")
		}
		group.Name = *input.Name
	}
	if input.ViewMode != nil {
		if !domain.ValidViewMode(*input.ViewMode) {
			return nil, domain.NewError(domain.ErrCodeInvalid, "unknown view mode")
		}
		group.ViewMode = *input.ViewMode
	}

	if err := uc.groups.Update(ctx, group); err != nil {
		return nil, err
	}

	uc.events.Publish(userID, domain.Event{Type: domain.EventGroupUpdated, GroupID: group.ID})
	return group, nil
}

// DeleteGroup removes a group with everything under it. Streak days
// kept done only by this group's tasks are re-mirrored afterward.
func (uc *UseCase) DeleteGroup(ctx context.Context, userID, id int64) error {
	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	if _, err := uc.groups.GetByID(ctx, userID, id); err != nil {
		return err
	}

	tasks, err := uc.tasks.ListByGroup(ctx, userID, id)
	if err != nil {
		return err
	}

	type dayRef struct {
		streakID int64
		date     domain.Date
	}
	seen := make(map[dayRef]struct{})
	var refs []dayRef
	for _, task := range tasks {
		if !task.Linked() {
			continue
		}
		logs, err := uc.logs.ListForTask(ctx, task.ID)
		if err != nil {
			return err
		}
		for _, log := range logs {
			if !log.Done {
				continue
			}
			ref := dayRef{streakID: *task.StreakID, date: log.Date}
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}

	if err := uc.groups.Delete(ctx, userID, id); err != nil {
		return err
	}

	for _, ref := range refs {
		if err := uc.mirror.SyncDone(ctx, userID, ref.streakID, ref.date, false); err != nil {
			return err
		}
	}

	uc.events.Publish(userID, domain.Event{Type: domain.EventGroupDeleted, GroupID: id})
	return nil
}

// ReorderGroups rewrites the display order. The id list must name every
// group the user owns exactly once.
func (uc *UseCase) ReorderGroups(ctx context.Context, userID int64, orderedIDs []int64) error {
	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	groups, err := uc.groups.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	owned := make(map[int64]struct{}, len(groups))
	for _, group := range groups {
		owned[group.ID] = struct{}{}
	}
	if len(orderedIDs) != len(owned) {
		return domain.NewError(domain.ErrCodeInvalid, "order must list every group exactly once")
	}
	for _, id := range orderedIDs {
		if _, ok := owned[id]; !ok {
			return domain.NewError(domain.ErrCodeInvalid, "order must list every group exactly once")
		}
		delete(owned, id)
	}

	if err := uc.groups.Reorder(ctx, userID, orderedIDs); err != nil {
		return err
	}

	uc.events.Publish(userID, domain.Event{Type: domain.EventGroupReordered})
	return nil
}

func (uc *UseCase) CreatePinGroup(ctx context.Context, userID, groupID int64, name string) (*domain.PinGroup, error) {
	if name == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "pin group name is required")
	}

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	if _, err := uc.groups.GetByID(ctx, userID, groupID); err != nil {
		return nil, err
	}

	pg, err := uc.groups.CreatePinGroup(ctx, &domain.PinGroup{
		UserID:  userID,
		GroupID: groupID,
		Name:    name,
	})
	if err != nil {
		return nil, err
	}

	uc.events.Publish(userID, domain.Event{
		Type:       domain.EventPinGroupCreated,
		GroupID:    groupID,
		PinGroupID: pg.ID,
	})
	return pg, nil
}

func (uc *UseCase) RenamePinGroup(ctx context.Context, userID, id int64, name string) (*domain.PinGroup, error) {
	if name == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "pin group name is required")
	}

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	pg, err := uc.groups.GetPinGroup(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	pg.Name = name
	if err := uc.groups.UpdatePinGroup(ctx, pg); err != nil {
		return nil, err
	}

	uc.events.Publish(userID, domain.Event{
		Type:       domain.EventPinGroupUpdated,
		GroupID:    pg.GroupID,
		PinGroupID: pg.ID,
	})
	return pg, nil
}

func (uc *UseCase) DeletePinGroup(ctx context.Context, userID, id int64) error {
	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	pg, err := uc.groups.GetPinGroup(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := uc.groups.DeletePinGroup(ctx, userID, id); err != nil {
		return err
	}

	uc.events.Publish(userID, domain.Event{
		Type:       domain.EventPinGroupDeleted,
		GroupID:    pg.GroupID,
		PinGroupID: id,
	})
	return nil
}

// AddPin pins a task at the end of a pin group. The task must live in
// the same group the pin group subdivides.
func (uc *UseCase) AddPin(ctx context.Context, userID, pinGroupID, taskID int64) (*domain.GroupPin, error) {
	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	pg, err := uc.groups.GetPinGroup(ctx, userID, pinGroupID)
	if err != nil {
		return nil, err
	}
	task, err := uc.tasks.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.GroupID != pg.GroupID {
		return nil, domain.NewError(domain.ErrCodeInvalid, "task belongs to a different group")
	}

	order, err := uc.groups.NextPinSortOrder(ctx, pinGroupID)
	if err != nil {
		return nil, err
	}
	pin, err := uc.groups.CreatePin(ctx, &domain.GroupPin{
		UserID:     userID,
		PinGroupID: pinGroupID,
		TaskID:     taskID,
		SortOrder:  order,
	})
	if err != nil {
		return nil, err
	}

	uc.events.Publish(userID, domain.Event{
		Type:       domain.EventPinAdded,
		GroupID:    pg.GroupID,
		PinGroupID: pinGroupID,
		PinID:      pin.ID,
		TaskID:     taskID,
	})
	return pin, nil
}

func (uc *UseCase) RemovePin(ctx context.Context, userID, pinID int64) error {
	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	pin, err := uc.groups.GetPin(ctx, userID, pinID)
	if err != nil {
		return err
	}
	if err := uc.groups.DeletePin(ctx, userID, pinID); err != nil {
		return err
	}

	event := domain.Event{
		Type:       domain.EventPinRemoved,
		PinGroupID: pin.PinGroupID,
		PinID:      pinID,
		TaskID:     pin.TaskID,
	}
	if pg, err := uc.groups.GetPinGroup(ctx, userID, pin.PinGroupID); err == nil {
		event.GroupID = pg.GroupID
	}
	uc.events.Publish(userID, event)
	return nil
}

// MovePin repositions a pin relative to another pin of the same pin
// group, then repacks the group dense.
func (uc *UseCase) MovePin(ctx context.Context, userID, pinID int64, targetPinID *int64, pos ordering.Position) (*domain.GroupPin, error) {
	if pos == "" {
		pos = ordering.After
	}
	if !ordering.ValidPosition(pos) {
		return nil, domain.NewError(domain.ErrCodeInvalid, "position must be before or after")
	}

	uc.locks.Lock(userID)
	defer uc.locks.Unlock(userID)

	pin, err := uc.groups.GetPin(ctx, userID, pinID)
	if err != nil {
		return nil, err
	}

	ids, err := uc.groups.PinIDs(ctx, pin.PinGroupID)
	if err != nil {
		return nil, err
	}
	ordered := ordering.PlaceRelative(ids, pinID, targetPinID, pos)
	if err := uc.groups.RepackPins(ctx, pin.PinGroupID, ordered); err != nil {
		return nil, err
	}

	pin, err = uc.groups.GetPin(ctx, userID, pinID)
	if err != nil {
		return nil, err
	}

	event := domain.Event{
		Type:       domain.EventPinMoved,
		PinGroupID: pin.PinGroupID,
		PinID:      pinID,
		TaskID:     pin.TaskID,
	}
	if pg, err := uc.groups.GetPinGroup(ctx, userID, pin.PinGroupID); err == nil {
		event.GroupID = pg.GroupID
	}
	uc.events.Publish(userID, event)
	return pin, nil
}
