package tasklog

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

func (r *eventRecorder) byType(eventType string) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	tasks   repository.TaskRepository
	logs    repository.TaskLogRepository
	groups  repository.GroupRepository
	streaks repository.StreakRepository
	events  *eventRecorder
	uc      *UseCase
}

func newFixture() *fixture {
	store := memory.NewStore()
	f := &fixture{
		tasks:   memory.NewTaskRepository(store),
		logs:    memory.NewTaskLogRepository(store),
		groups:  memory.NewGroupRepository(store),
		streaks: memory.NewStreakRepository(store),
		events:  &eventRecorder{},
	}
	locks := keymutex.New()
	mirror := streak.New(f.streaks, f.logs, f.events, locks, nil)
	f.uc = New(f.tasks, f.logs, f.groups, mirror, f.events, locks, nil)
	return f
}

func (f *fixture) seedGroup(t *testing.T, userID int64, name string) *domain.Group {
	t.Helper()
	group, err := f.groups.Create(context.Background(), &domain.Group{
		UserID:   userID,
		Name:     name,
		ViewMode: domain.ViewTable,
	})
	require.NoError(t, err)
	return group
}

func (f *fixture) seedStreak(t *testing.T, userID int64, name string) *domain.Streak {
	t.Helper()
	s, err := f.streaks.Create(context.Background(), &domain.Streak{UserID: userID, Name: name})
	require.NoError(t, err)
	return s
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

// setLog writes a cell through the use case and returns the row.
func (f *fixture) setLog(t *testing.T, userID, taskID int64, date domain.Date, done bool) *domain.TaskLog {
	t.Helper()
	res, err := f.uc.SetLog(context.Background(), userID, SetLogInput{
		Task: TaskSelector{ID: &taskID},
		Date: date,
		Done: done,
	})
	require.NoError(t, err)
	return res.Log
}

func (f *fixture) partition(t *testing.T, userID int64, date domain.Date, done bool) []int64 {
	t.Helper()
	ids, err := f.logs.PartitionIDs(context.Background(), userID, date, done)
	require.NoError(t, err)
	return ids
}

func (f *fixture) sortOrder(t *testing.T, userID, logID int64) int {
	t.Helper()
	log, err := f.logs.GetByID(context.Background(), userID, logID)
	require.NoError(t, err)
	return log.SortOrder
}

func (f *fixture) streakDay(t *testing.T, streakID int64, date domain.Date) *domain.StreakLog {
	t.Helper()
	log, err := f.streaks.GetLogByDate(context.Background(), streakID, date)
	require.NoError(t, err)
	return log
}

func april(d int) domain.Date {
	return domain.Date{Year: 2026, Month: time.April, Day: d}
}

func text(s string) *string {
	return &s
}

func TestSetLogCreatesTaskOnFirstWrite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "work")

	res, err := f.uc.SetLog(ctx, 1, SetLogInput{
		Task: TaskSelector{GroupID: group.ID, Name: "write report"},
		Date: april(1),
	})
	require.NoError(t, err)
	assert.True(t, res.TaskCreated)
	assert.Equal(t, "write report", res.Task.Name)
	assert.Equal(t, 1, res.Log.SortOrder)
	assert.False(t, res.Log.Done)

	// The same name on another date reuses the task.
	res2, err := f.uc.SetLog(ctx, 1, SetLogInput{
		Task: TaskSelector{GroupID: group.ID, Name: "write report"},
		Date: april(2),
	})
	require.NoError(t, err)
	assert.False(t, res2.TaskCreated)
	assert.Equal(t, res.Task.ID, res2.Task.ID)

	events := f.events.byType(domain.EventTaskLogUpdated)
	require.Len(t, events, 2)
	assert.NotNil(t, events[0].Task, "creation rides along on the first event")
	assert.Nil(t, events[1].Task)
}

func TestSetLogAppendsToPartition(t *testing.T) {
	f := newFixture()
	group := f.seedGroup(t, 1, "work")

	var ids []int64
	for _, name := range []string{"one", "two", "three"} {
		task := f.seedTask(t, 1, group.ID, name, nil)
		log := f.setLog(t, 1, task.ID, april(1), false)
		assert.Equal(t, len(ids)+1, log.SortOrder)
		ids = append(ids, log.ID)
	}

	assert.Equal(t, ids, f.partition(t, 1, april(1), false))
}

func TestSetLogSameStateKeepsPlace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "work")

	first := f.seedTask(t, 1, group.ID, "first", nil)
	second := f.seedTask(t, 1, group.ID, "second", nil)
	a := f.setLog(t, 1, first.ID, april(1), false)
	b := f.setLog(t, 1, second.ID, april(1), false)

	res, err := f.uc.SetLog(ctx, 1, SetLogInput{
		Task:      TaskSelector{ID: &first.ID},
		Date:      april(1),
		ExtraInfo: text("half done"),
	})
	require.NoError(t, err)
	assert.Equal(t, a.ID, res.Log.ID)
	assert.Equal(t, 1, res.Log.SortOrder, "unchanged state keeps its slot")
	assert.Equal(t, "half done", res.Log.ExtraInfo)

	// A nil ExtraInfo leaves the text as it was.
	res, err = f.uc.SetLog(ctx, 1, SetLogInput{
		Task: TaskSelector{ID: &first.ID},
		Date: april(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "half done", res.Log.ExtraInfo)

	assert.Equal(t, []int64{a.ID, b.ID}, f.partition(t, 1, april(1), false))
}

func TestSetLogStateChangeAppendsToDestination(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "work")

	first := f.seedTask(t, 1, group.ID, "first", nil)
	second := f.seedTask(t, 1, group.ID, "second", nil)
	third := f.seedTask(t, 1, group.ID, "third", nil)
	a := f.setLog(t, 1, first.ID, april(1), false)
	b := f.setLog(t, 1, second.ID, april(1), false)
	c := f.setLog(t, 1, third.ID, april(1), true)

	res, err := f.uc.SetLog(ctx, 1, SetLogInput{
		Task: TaskSelector{ID: &first.ID},
		Date: april(1),
		Done: true,
	})
	require.NoError(t, err)
	assert.True(t, res.Log.Done)
	assert.Equal(t, 2, res.Log.SortOrder, "lands after the done column's last row")

	// The vacated column is left as-is; the survivor keeps its old slot.
	assert.Equal(t, []int64{b.ID}, f.partition(t, 1, april(1), false))
	assert.Equal(t, 2, f.sortOrder(t, 1, b.ID))
	assert.Equal(t, []int64{c.ID, a.ID}, f.partition(t, 1, april(1), true))
}

func TestSetLogByExplicitLogID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "work")

	first := f.seedTask(t, 1, group.ID, "first", nil)
	second := f.seedTask(t, 1, group.ID, "second", nil)
	a := f.setLog(t, 1, first.ID, april(1), false)

	res, err := f.uc.SetLog(ctx, 1, SetLogInput{
		Task:  TaskSelector{ID: &first.ID},
		LogID: &a.ID,
		Date:  april(1),
		Done:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, a.ID, res.Log.ID)
	assert.True(t, res.Log.Done)

	// The id must sit on the requested date.
	_, err = f.uc.SetLog(ctx, 1, SetLogInput{
		Task:  TaskSelector{ID: &first.ID},
		LogID: &a.ID,
		Date:  april(2),
	})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	// And belong to the selected task.
	_, err = f.uc.SetLog(ctx, 1, SetLogInput{
		Task:  TaskSelector{ID: &second.ID},
		LogID: &a.ID,
		Date:  april(1),
	})
	assert.ErrorIs(t, err, domain.ErrTaskLogNotFound)
}

func TestSetLogValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "work")

	_, err := f.uc.SetLog(ctx, 1, SetLogInput{Task: TaskSelector{GroupID: group.ID, Name: "x"}})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "date required")

	_, err = f.uc.SetLog(ctx, 1, SetLogInput{Task: TaskSelector{GroupID: group.ID}, Date: april(1)})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "name required without id")

	_, err = f.uc.SetLog(ctx, 1, SetLogInput{Task: TaskSelector{GroupID: 999, Name: "x"}, Date: april(1)})
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)

	other := f.seedGroup(t, 2, "theirs")
	_, err = f.uc.SetLog(ctx, 1, SetLogInput{Task: TaskSelector{GroupID: other.ID, Name: "x"}, Date: april(1)})
	assert.ErrorIs(t, err, domain.ErrGroupNotFound, "foreign group reads as missing")
}

func TestSetLogMirrorsLinkedStreak(t *testing.T) {
	f := newFixture()
	group := f.seedGroup(t, 1, "health")
	s := f.seedStreak(t, 1, "exercise")
	task := f.seedTask(t, 1, group.ID, "morning run", &s.ID)

	f.setLog(t, 1, task.ID, april(5), true)
	assert.True(t, f.streakDay(t, s.ID, april(5)).Done)
	require.Len(t, f.events.byType(domain.EventStreakLogUpdated), 1)

	// Repeating the same state changes nothing and stays silent.
	f.setLog(t, 1, task.ID, april(5), true)
	assert.Len(t, f.events.byType(domain.EventStreakLogUpdated), 1)

	f.setLog(t, 1, task.ID, april(5), false)
	assert.False(t, f.streakDay(t, s.ID, april(5)).Done)
	assert.Len(t, f.events.byType(domain.EventStreakLogUpdated), 2)
}

func TestSetLogDayKeptDoneByOtherTask(t *testing.T) {
	f := newFixture()
	group := f.seedGroup(t, 1, "health")
	s := f.seedStreak(t, 1, "exercise")
	run := f.seedTask(t, 1, group.ID, "run", &s.ID)
	swim := f.seedTask(t, 1, group.ID, "swim", &s.ID)

	f.setLog(t, 1, run.ID, april(5), true)
	f.setLog(t, 1, swim.ID, april(5), true)

	// One task backing out does not release the day.
	f.setLog(t, 1, run.ID, april(5), false)
	assert.True(t, f.streakDay(t, s.ID, april(5)).Done)

	// The last one does.
	f.setLog(t, 1, swim.ID, april(5), false)
	assert.False(t, f.streakDay(t, s.ID, april(5)).Done)
}

func TestMoveLogWithinPartition(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "work")

	var logs []*domain.TaskLog
	for _, name := range []string{"a", "b", "c"} {
		task := f.seedTask(t, 1, group.ID, name, nil)
		logs = append(logs, f.setLog(t, 1, task.ID, april(1), false))
	}
	a, b, c := logs[0], logs[1], logs[2]

	moved, err := f.uc.MoveLog(ctx, 1, MoveLogInput{
		LogID:       c.ID,
		FromDate:    april(1),
		ToDate:      april(1),
		TargetLogID: &a.ID,
		Position:    ordering.Before,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, moved.SortOrder)

	assert.Equal(t, []int64{c.ID, a.ID, b.ID}, f.partition(t, 1, april(1), false))
	assert.Equal(t, 2, f.sortOrder(t, 1, a.ID))
	assert.Equal(t, 3, f.sortOrder(t, 1, b.ID))
}

func TestMoveLogAcrossPartitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "work")

	var logs []*domain.TaskLog
	for _, name := range []string{"a", "b", "c"} {
		task := f.seedTask(t, 1, group.ID, name, nil)
		logs = append(logs, f.setLog(t, 1, task.ID, april(1), false))
	}
	a, b, c := logs[0], logs[1], logs[2]
	other := f.seedTask(t, 1, group.ID, "x", nil)
	x := f.setLog(t, 1, other.ID, april(2), true)

	moved, err := f.uc.MoveLog(ctx, 1, MoveLogInput{
		LogID:    b.ID,
		FromDate: april(1),
		ToDate:   april(2),
		ToDone:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, april(2), moved.Date)
	assert.True(t, moved.Done)
	assert.Equal(t, 2, moved.SortOrder, "appends with no target")

	// The vacated partition closes its gap.
	assert.Equal(t, []int64{a.ID, c.ID}, f.partition(t, 1, april(1), false))
	assert.Equal(t, 1, f.sortOrder(t, 1, a.ID))
	assert.Equal(t, 2, f.sortOrder(t, 1, c.ID))

	assert.Equal(t, []int64{x.ID, b.ID}, f.partition(t, 1, april(2), true))

	moves := f.events.byType(domain.EventTaskLogMoved)
	require.Len(t, moves, 1)
	assert.Equal(t, april(1).String(), moves[0].FromDate)
	assert.Equal(t, april(2).String(), moves[0].Date)
}

func TestMoveLogMirrorsBothEnds(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "health")
	s := f.seedStreak(t, 1, "exercise")
	task := f.seedTask(t, 1, group.ID, "run", &s.ID)
	log := f.setLog(t, 1, task.ID, april(5), true)

	require.True(t, f.streakDay(t, s.ID, april(5)).Done)

	_, err := f.uc.MoveLog(ctx, 1, MoveLogInput{
		LogID:    log.ID,
		FromDate: april(5),
		ToDate:   april(6),
		ToDone:   true,
	})
	require.NoError(t, err)

	assert.False(t, f.streakDay(t, s.ID, april(5)).Done, "source day released")
	assert.True(t, f.streakDay(t, s.ID, april(6)).Done, "destination day marked")
}

func TestMoveLogValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "work")
	task := f.seedTask(t, 1, group.ID, "a", nil)
	log := f.setLog(t, 1, task.ID, april(1), false)

	_, err := f.uc.MoveLog(ctx, 1, MoveLogInput{LogID: log.ID, ToDate: april(2)})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "both dates required")

	_, err = f.uc.MoveLog(ctx, 1, MoveLogInput{
		LogID: log.ID, FromDate: april(1), ToDate: april(2), Position: "sideways",
	})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.MoveLog(ctx, 1, MoveLogInput{
		LogID: log.ID, FromDate: april(3), ToDate: april(2),
	})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "stale source date")

	_, err = f.uc.MoveLog(ctx, 1, MoveLogInput{
		LogID: 999, FromDate: april(1), ToDate: april(2),
	})
	assert.ErrorIs(t, err, domain.ErrTaskLogNotFound)
}

func TestDeleteLogCollectsOrphanedTask(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "work")
	task := f.seedTask(t, 1, group.ID, "one-off", nil)
	log := f.setLog(t, 1, task.ID, april(1), false)

	pg, err := f.groups.CreatePinGroup(ctx, &domain.PinGroup{UserID: 1, GroupID: group.ID, Name: "today"})
	require.NoError(t, err)
	pin, err := f.groups.CreatePin(ctx, &domain.GroupPin{UserID: 1, PinGroupID: pg.ID, TaskID: task.ID, SortOrder: 1})
	require.NoError(t, err)

	res, err := f.uc.DeleteLog(ctx, 1, log.ID)
	require.NoError(t, err)
	assert.True(t, res.TaskGone)

	_, err = f.tasks.GetByID(ctx, 1, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = f.groups.GetPin(ctx, 1, pin.ID)
	assert.ErrorIs(t, err, domain.ErrPinNotFound)

	deletes := f.events.byType(domain.EventTaskLogDeleted)
	require.Len(t, deletes, 1)
	assert.True(t, deletes[0].TaskGone)
}

func TestDeleteLogKeepsTaskWithOtherLogs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "work")
	task := f.seedTask(t, 1, group.ID, "recurring", nil)
	first := f.setLog(t, 1, task.ID, april(1), false)
	f.setLog(t, 1, task.ID, april(2), false)

	res, err := f.uc.DeleteLog(ctx, 1, first.ID)
	require.NoError(t, err)
	assert.False(t, res.TaskGone)

	_, err = f.tasks.GetByID(ctx, 1, task.ID)
	require.NoError(t, err)
}

func TestDeleteLogLeavesPartitionGap(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "work")

	var logs []*domain.TaskLog
	for _, name := range []string{"a", "b", "c"} {
		task := f.seedTask(t, 1, group.ID, name, nil)
		logs = append(logs, f.setLog(t, 1, task.ID, april(1), false))
		f.setLog(t, 1, task.ID, april(2), false)
	}
	a, b, c := logs[0], logs[1], logs[2]

	_, err := f.uc.DeleteLog(ctx, 1, b.ID)
	require.NoError(t, err)

	assert.Equal(t, []int64{a.ID, c.ID}, f.partition(t, 1, april(1), false))
	assert.Equal(t, 3, f.sortOrder(t, 1, c.ID), "survivors keep their slots")
}

func TestDeleteLogReleasesStreakDay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "health")
	s := f.seedStreak(t, 1, "exercise")
	task := f.seedTask(t, 1, group.ID, "run", &s.ID)
	log := f.setLog(t, 1, task.ID, april(5), true)
	f.setLog(t, 1, task.ID, april(6), false)

	_, err := f.uc.DeleteLog(ctx, 1, log.ID)
	require.NoError(t, err)

	assert.False(t, f.streakDay(t, s.ID, april(5)).Done)
}

func TestListLogs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	work := f.seedGroup(t, 1, "work")
	home := f.seedGroup(t, 1, "home")

	workTask := f.seedTask(t, 1, work.ID, "report", nil)
	homeTask := f.seedTask(t, 1, home.ID, "laundry", nil)
	f.setLog(t, 1, workTask.ID, april(1), false)
	f.setLog(t, 1, homeTask.ID, april(2), true)

	logs, err := f.uc.ListLogs(ctx, repository.LogFilter{UserID: 1, From: april(1), To: april(7)})
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	logs, err = f.uc.ListLogs(ctx, repository.LogFilter{UserID: 1, GroupID: home.ID, From: april(1), To: april(7)})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, homeTask.ID, logs[0].TaskID)

	_, err = f.uc.ListLogs(ctx, repository.LogFilter{UserID: 1, From: april(7), To: april(1)})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.ListLogs(ctx, repository.LogFilter{UserID: 1})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestGetLogChecksOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	group := f.seedGroup(t, 1, "work")
	task := f.seedTask(t, 1, group.ID, "a", nil)
	log := f.setLog(t, 1, task.ID, april(1), false)

	got, err := f.uc.GetLog(ctx, 1, log.ID)
	require.NoError(t, err)
	assert.Equal(t, log.ID, got.ID)

	_, err = f.uc.GetLog(ctx, 2, log.ID)
	assert.ErrorIs(t, err, domain.ErrTaskLogNotFound)
}
