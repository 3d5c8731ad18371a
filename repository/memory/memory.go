// Package memory holds map-backed implementations of the repository
// interfaces. They keep the same ownership and uniqueness rules as the
// Postgres versions and back the use case tests.
package memory

import (
	"sync"

	"github.com/daykeep/backend/domain"
)

// Store is the shared state behind the in-memory repositories. One Store
// plays the role of one database; repositories created from it see the
// same rows.
type Store struct {
	mu     sync.Mutex
	nextID int64

	users      map[int64]domain.User
	groups     map[int64]domain.Group
	pinGroups  map[int64]domain.PinGroup
	pins       map[int64]domain.GroupPin
	tasks      map[int64]domain.Task
	taskLogs   map[int64]domain.TaskLog
	streaks    map[int64]domain.Streak
	streakLogs map[int64]domain.StreakLog
	sessions   map[string]domain.Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:      make(map[int64]domain.User),
		groups:     make(map[int64]domain.Group),
		pinGroups:  make(map[int64]domain.PinGroup),
		pins:       make(map[int64]domain.GroupPin),
		tasks:      make(map[int64]domain.Task),
		taskLogs:   make(map[int64]domain.TaskLog),
		streaks:    make(map[int64]domain.Streak),
		streakLogs: make(map[int64]domain.StreakLog),
		sessions:   make(map[string]domain.Session),
	}
}

// id hands out the next row id. Callers must hold s.mu.
func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func cloneTask(t domain.Task) *domain.Task {
	out := t
	if t.StreakID != nil {
		v := *t.StreakID
		out.StreakID = &v
	}
	return &out
}
