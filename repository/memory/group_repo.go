package memory

import (
	"context"
	"sort"
	"time"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/repository"
)

type groupRepository struct {
	s *Store
}

// NewGroupRepository returns a map-backed GroupRepository over the store.
func NewGroupRepository(s *Store) repository.GroupRepository {
	return &groupRepository{s: s}
}

func (r *groupRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	group, ok := r.s.groups[id]
	if !ok || group.UserID != userID {
		return nil, domain.ErrGroupNotFound
	}
	out := group
	return &out, nil
}

func (r *groupRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Group, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var groups []domain.Group
	for _, group := range r.s.groups {
		if group.UserID == userID {
			groups = append(groups, group)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].SortOrder != groups[j].SortOrder {
			return groups[i].SortOrder < groups[j].SortOrder
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	if group == nil {
		return nil, domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	max := 0
	for _, existing := range r.s.groups {
		if existing.UserID == group.UserID {
			if existing.Name == group.Name {
				return nil, domain.NewError(domain.ErrCodeDuplicate, "group with this name already exists")
			}
			if existing.SortOrder > max {
				max = existing.SortOrder
			}
		}
	}

	group.ID = r.s.id()
	group.SortOrder = max + 1
	group.CreatedAt = time.Now()
	group.UpdatedAt = group.CreatedAt
	r.s.groups[group.ID] = *group
	return group, nil
}

func (r *groupRepository) Update(ctx context.Context, group *domain.Group) error {
	if group == nil {
		return domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.groups[group.ID]
	if !ok || current.UserID != group.UserID {
		return domain.ErrGroupNotFound
	}
	for _, existing := range r.s.groups {
		if existing.ID != group.ID && existing.UserID == group.UserID && existing.Name == group.Name {
			return domain.NewError(domain.ErrCodeDuplicate, "group with this name already exists")
		}
	}

	group.SortOrder = current.SortOrder
	group.CreatedAt = current.CreatedAt
	group.UpdatedAt = time.Now()
	r.s.groups[group.ID] = *group
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, userID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	group, ok := r.s.groups[id]
	if !ok || group.UserID != userID {
		return domain.ErrGroupNotFound
	}
	delete(r.s.groups, id)

	// Cascade the way the schema does: tasks, their logs, pin groups, pins.
	for taskID, task := range r.s.tasks {
		if task.GroupID != id {
			continue
		}
		delete(r.s.tasks, taskID)
		for logID, log := range r.s.taskLogs {
			if log.TaskID == taskID {
				delete(r.s.taskLogs, logID)
			}
		}
		for pinID, pin := range r.s.pins {
			if pin.TaskID == taskID {
				delete(r.s.pins, pinID)
			}
		}
	}
	for pgID, pg := range r.s.pinGroups {
		if pg.GroupID != id {
			continue
		}
		delete(r.s.pinGroups, pgID)
		for pinID, pin := range r.s.pins {
			if pin.PinGroupID == pgID {
				delete(r.s.pins, pinID)
			}
		}
	}
	return nil
}

func (r *groupRepository) Reorder(ctx context.Context, userID int64, orderedIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, id := range orderedIDs {
		group, ok := r.s.groups[id]
		if !ok || group.UserID != userID {
			continue
		}
		group.SortOrder = i + 1
		group.UpdatedAt = time.Now()
		r.s.groups[id] = group
	}
	return nil
}

func (r *groupRepository) GetPinGroup(ctx context.Context, userID, id int64) (*domain.PinGroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	pg, ok := r.s.pinGroups[id]
	if !ok || pg.UserID != userID {
		return nil, domain.ErrPinGroupNotFound
	}
	out := pg
	return &out, nil
}

func (r *groupRepository) ListPinGroups(ctx context.Context, userID, groupID int64) ([]domain.PinGroup, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var pinGroups []domain.PinGroup
	for _, pg := range r.s.pinGroups {
		if pg.UserID != userID {
			continue
		}
		if groupID != 0 && pg.GroupID != groupID {
			continue
		}
		pinGroups = append(pinGroups, pg)
	}
	sort.Slice(pinGroups, func(i, j int) bool {
		if pinGroups[i].SortOrder != pinGroups[j].SortOrder {
			return pinGroups[i].SortOrder < pinGroups[j].SortOrder
		}
		return pinGroups[i].ID < pinGroups[j].ID
	})
	return pinGroups, nil
}

func (r *groupRepository) CreatePinGroup(ctx context.Context, pg *domain.PinGroup) (*domain.PinGroup, error) {
	if pg == nil {
		return nil, domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	max := 0
	for _, existing := range r.s.pinGroups {
		if existing.GroupID == pg.GroupID {
			if existing.Name == pg.Name {
				return nil, domain.NewError(domain.ErrCodeDuplicate, "pin group with this name already exists")
			}
			if existing.SortOrder > max {
				max = existing.SortOrder
			}
		}
	}

	pg.ID = r.s.id()
	pg.SortOrder = max + 1
	pg.CreatedAt = time.Now()
	r.s.pinGroups[pg.ID] = *pg
	return pg, nil
}

func (r *groupRepository) UpdatePinGroup(ctx context.Context, pg *domain.PinGroup) error {
	if pg == nil {
		return domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.pinGroups[pg.ID]
	if !ok || current.UserID != pg.UserID {
		return domain.ErrPinGroupNotFound
	}
	for _, existing := range r.s.pinGroups {
		if existing.ID != pg.ID && existing.GroupID == current.GroupID && existing.Name == pg.Name {
			return domain.NewError(domain.ErrCodeDuplicate, "pin group with this name already exists")
		}
	}

	current.Name = pg.Name
	r.s.pinGroups[pg.ID] = current
	*pg = current
	return nil
}

func (r *groupRepository) DeletePinGroup(ctx context.Context, userID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	pg, ok := r.s.pinGroups[id]
	if !ok || pg.UserID != userID {
		return domain.ErrPinGroupNotFound
	}
	delete(r.s.pinGroups, id)

	for pinID, pin := range r.s.pins {
		if pin.PinGroupID == id {
			delete(r.s.pins, pinID)
		}
	}
	return nil
}

func (r *groupRepository) GetPin(ctx context.Context, userID, id int64) (*domain.GroupPin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	pin, ok := r.s.pins[id]
	if !ok || pin.UserID != userID {
		return nil, domain.ErrPinNotFound
	}
	out := pin
	return &out, nil
}

func (r *groupRepository) ListPins(ctx context.Context, userID, pinGroupID int64) ([]domain.GroupPin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var pins []domain.GroupPin
	for _, pin := range r.s.pins {
		if pin.UserID == userID && pin.PinGroupID == pinGroupID {
			pins = append(pins, pin)
		}
	}
	sort.Slice(pins, func(i, j int) bool {
		if pins[i].SortOrder != pins[j].SortOrder {
			return pins[i].SortOrder < pins[j].SortOrder
		}
		return pins[i].ID < pins[j].ID
	})
	return pins, nil
}

func (r *groupRepository) PinIDs(ctx context.Context, pinGroupID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type member struct {
		id    int64
		order int
	}
	var members []member
	for _, pin := range r.s.pins {
		if pin.PinGroupID == pinGroupID {
			members = append(members, member{id: pin.ID, order: pin.SortOrder})
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].order != members[j].order {
			return members[i].order < members[j].order
		}
		return members[i].id < members[j].id
	})

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.id)
	}
	return ids, nil
}

func (r *groupRepository) NextPinSortOrder(ctx context.Context, pinGroupID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	max := 0
	for _, pin := range r.s.pins {
		if pin.PinGroupID == pinGroupID && pin.SortOrder > max {
			max = pin.SortOrder
		}
	}
	return max + 1, nil
}

func (r *groupRepository) RepackPins(ctx context.Context, pinGroupID int64, orderedIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, id := range orderedIDs {
		pin, ok := r.s.pins[id]
		if !ok || pin.PinGroupID != pinGroupID {
			continue
		}
		pin.SortOrder = i + 1
		r.s.pins[id] = pin
	}
	return nil
}

func (r *groupRepository) CreatePin(ctx context.Context, pin *domain.GroupPin) (*domain.GroupPin, error) {
	if pin == nil {
		return nil, domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.pins {
		if existing.PinGroupID == pin.PinGroupID && existing.TaskID == pin.TaskID {
			return nil, domain.NewError(domain.ErrCodeDuplicate, "task is already pinned in this pin group")
		}
	}

	pin.ID = r.s.id()
	pin.CreatedAt = time.Now()
	r.s.pins[pin.ID] = *pin
	return pin, nil
}

func (r *groupRepository) DeletePin(ctx context.Context, userID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	pin, ok := r.s.pins[id]
	if !ok || pin.UserID != userID {
		return domain.ErrPinNotFound
	}
	delete(r.s.pins, id)
	return nil
}

func (r *groupRepository) DeletePinsForTask(ctx context.Context, taskID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for pinID, pin := range r.s.pins {
		if pin.TaskID == taskID {
			delete(r.s.pins, pinID)
		}
	}
	return nil
}
