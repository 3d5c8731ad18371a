package group

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/internal/ordering"
	"github.com/daykeep/backend/pkg/keymutex"
	"github.com/daykeep/backend/repository"
	"github.com/daykeep/backend/repository/memory"
	"github.com/daykeep/backend/usecase/streak"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *eventRecorder) Publish(userID int64, event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

type fixture struct {
	groups  repository.GroupRepository
	tasks   repository.TaskRepository
	logs    repository.TaskLogRepository
	streaks repository.StreakRepository
	uc      *UseCase
}

func newFixture() *fixture {
	store := memory.NewStore()
	f := &fixture{
		groups:  memory.NewGroupRepository(store),
		tasks:   memory.NewTaskRepository(store),
		logs:    memory.NewTaskLogRepository(store),
		streaks: memory.NewStreakRepository(store),
	}
	events := &eventRecorder{}
	locks := keymutex.New()
	mirror := streak.New(f.streaks, f.logs, events, locks, nil)
	f.uc = New(f.groups, f.tasks, f.logs, mirror, events, locks, nil)
	return f
}

func (f *fixture) seedTask(t *testing.T, userID, groupID int64, name string, streakID *int64) *domain.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), &domain.Task{
		UserID:   userID,
		GroupID:  groupID,
		Name:     name,
		StreakID: streakID,
	})
	require.NoError(t, err)
	return task
}

func TestCreateGroup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	group, err := f.uc.CreateGroup(ctx, 1, "work", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ViewTable, group.ViewMode, "empty view mode defaults to table")
	assert.Equal(t, 1, group.SortOrder)

	second, err := f.uc.CreateGroup(ctx, 1, "home", domain.ViewKanban)
	require.NoError(t, err)
	assert.Equal(t, 2, second.SortOrder)

	_, err = f.uc.CreateGroup(ctx, 1, "", "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.CreateGroup(ctx, 1, "x", "gantt")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.CreateGroup(ctx, 1, "work", "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeDuplicate))
}

func TestUpdateGroupPartial(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group, err := f.uc.CreateGroup(ctx, 1, "work", domain.ViewKanban)
	require.NoError(t, err)

	name := "projects"
	updated, err := f.uc.UpdateGroup(ctx, 1, group.ID, UpdateGroupInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "projects", updated.Name)
	assert.Equal(t, domain.ViewKanban, updated.ViewMode)

	mode := domain.ViewCalendar
	updated, err = f.uc.UpdateGroup(ctx, 1, group.ID, UpdateGroupInput{ViewMode: &mode})
	require.NoError(t, err)
	assert.Equal(t, domain.ViewCalendar, updated.ViewMode)

	fetched, err := f.uc.GetGroup(ctx, 1, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "projects", fetched.Name)
	assert.Equal(t, domain.ViewCalendar, fetched.ViewMode)

	bad := "gantt"
	_, err = f.uc.UpdateGroup(ctx, 1, group.ID, UpdateGroupInput{ViewMode: &bad})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.UpdateGroup(ctx, 2, group.ID, UpdateGroupInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestReorderGroups(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var ids []int64
	for _, name := range []string{"a", "b", "c"} {
		group, err := f.uc.CreateGroup(ctx, 1, name, "")
		require.NoError(t, err)
		ids = append(ids, group.ID)
	}

	require.NoError(t, f.uc.ReorderGroups(ctx, 1, []int64{ids[2], ids[0], ids[1]}))

	groups, err := f.groups.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "c", groups[0].Name)
	assert.Equal(t, "a", groups[1].Name)
	assert.Equal(t, "b", groups[2].Name)

	err = f.uc.ReorderGroups(ctx, 1, []int64{ids[0], ids[1]})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "every group must be listed")

	err = f.uc.ReorderGroups(ctx, 1, []int64{ids[0], ids[1], 999})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	err = f.uc.ReorderGroups(ctx, 1, []int64{ids[0], ids[0], ids[1]})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "no id twice")
}

func TestPinLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group, err := f.uc.CreateGroup(ctx, 1, "work", "")
	require.NoError(t, err)
	other, err := f.uc.CreateGroup(ctx, 1, "home", "")
	require.NoError(t, err)

	pg, err := f.uc.CreatePinGroup(ctx, 1, group.ID, "focus")
	require.NoError(t, err)

	var pins []*domain.GroupPin
	var tasks []*domain.Task
	for _, name := range []string{"a", "b", "c"} {
		task := f.seedTask(t, 1, group.ID, name, nil)
		pin, err := f.uc.AddPin(ctx, 1, pg.ID, task.ID)
		require.NoError(t, err)
		assert.Equal(t, len(pins)+1, pin.SortOrder)
		pins = append(pins, pin)
		tasks = append(tasks, task)
	}

	// A task from another group cannot be pinned here.
	foreign := f.seedTask(t, 1, other.ID, "laundry", nil)
	_, err = f.uc.AddPin(ctx, 1, pg.ID, foreign.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.AddPin(ctx, 1, pg.ID, tasks[0].ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeDuplicate))

	moved, err := f.uc.MovePin(ctx, 1, pins[2].ID, &pins[0].ID, ordering.Before)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.SortOrder)

	listed, err := f.groups.ListPins(ctx, 1, pg.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, []int64{pins[2].ID, pins[0].ID, pins[1].ID}, []int64{listed[0].ID, listed[1].ID, listed[2].ID})

	require.NoError(t, f.uc.RemovePin(ctx, 1, pins[1].ID))
	listed, err = f.groups.ListPins(ctx, 1, pg.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestPinGroupOps(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group, err := f.uc.CreateGroup(ctx, 1, "work", "")
	require.NoError(t, err)

	_, err = f.uc.CreatePinGroup(ctx, 1, group.ID, "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	pg, err := f.uc.CreatePinGroup(ctx, 1, group.ID, "focus")
	require.NoError(t, err)

	renamed, err := f.uc.RenamePinGroup(ctx, 1, pg.ID, "deep work")
	require.NoError(t, err)
	assert.Equal(t, "deep work", renamed.Name)

	_, err = f.uc.RenamePinGroup(ctx, 2, pg.ID, "theirs")
	assert.ErrorIs(t, err, domain.ErrPinGroupNotFound)

	require.NoError(t, f.uc.DeletePinGroup(ctx, 1, pg.ID))
	_, err = f.groups.GetPinGroup(ctx, 1, pg.ID)
	assert.ErrorIs(t, err, domain.ErrPinGroupNotFound)
}

func TestDeleteGroupReleasesStreakDays(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	day := domain.Date{Year: 2026, Month: time.June, Day: 5}

	group, err := f.uc.CreateGroup(ctx, 1, "health", "")
	require.NoError(t, err)
	s, err := f.streaks.Create(ctx, &domain.Streak{UserID: 1, Name: "exercise"})
	require.NoError(t, err)
	task := f.seedTask(t, 1, group.ID, "run", &s.ID)
	_, err = f.logs.Create(ctx, &domain.TaskLog{UserID: 1, TaskID: task.ID, Date: day, Done: true, SortOrder: 1})
	require.NoError(t, err)
	_, err = f.streaks.CreateLog(ctx, &domain.StreakLog{UserID: 1, StreakID: s.ID, Date: day, Done: true})
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteGroup(ctx, 1, group.ID))

	_, err = f.tasks.GetByID(ctx, 1, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	log, err := f.streaks.GetLogByDate(ctx, s.ID, day)
	require.NoError(t, err)
	assert.False(t, log.Done, "the day was only kept done by the deleted group's task")
}

func TestListGroupsTree(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tree, err := f.uc.ListGroups(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)

	group, err := f.uc.CreateGroup(ctx, 1, "work", "")
	require.NoError(t, err)
	pg, err := f.uc.CreatePinGroup(ctx, 1, group.ID, "focus")
	require.NoError(t, err)
	task := f.seedTask(t, 1, group.ID, "a", nil)
	_, err = f.uc.AddPin(ctx, 1, pg.ID, task.ID)
	require.NoError(t, err)
	_, err = f.uc.CreatePinGroup(ctx, 1, group.ID, "later")
	require.NoError(t, err)

	tree, err = f.uc.ListGroups(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].PinGroups, 2)
	assert.Equal(t, "focus", tree[0].PinGroups[0].Name)
	assert.Len(t, tree[0].PinGroups[0].Pins, 1)
	assert.NotNil(t, tree[0].PinGroups[1].Pins, "empty pin list is an empty slice")
	assert.Empty(t, tree[0].PinGroups[1].Pins)
}
