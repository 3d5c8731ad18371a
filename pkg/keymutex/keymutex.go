// Package keymutex provides mutual exclusion per int64 key. It backs the
// per-user serialization of mutations: two requests for the same user
// run one at a time, requests for different users run in parallel.
package keymutex

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyMutex is a set of lazily created mutexes keyed by int64. Entries
// are removed once the last holder or waiter releases, so the map stays
// proportional to in-flight keys.
type KeyMutex struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

func New() *KeyMutex {
	return &KeyMutex{entries: make(map[int64]*entry)}
}

// Lock blocks until the key's mutex is held by the caller.
func (m *KeyMutex) Lock(key int64) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the key's mutex. Unlocking a key that is not held
// panics, matching sync.Mutex.
func (m *KeyMutex) Unlock(key int64) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		m.mu.Unlock()
		panic("keymutex: unlock of unheld key")
	}
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
	m.mu.Unlock()

	e.mu.Unlock()
}
