package keymutex

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameKey(t *testing.T) {
	m := New()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			m.Lock(1)
			counter++
			m.Unlock(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)

	m.mu.Lock()
	assert.Empty(t, m.entries, "entries should be released once idle")
	m.mu.Unlock()
}

func TestDifferentKeysRunInParallel(t *testing.T) {
	m := New()
	m.Lock(1)
	defer m.Unlock(1)

	acquired := make(chan struct{})
	go func() {
		m.Lock(2)
		close(acquired)
		m.Unlock(2)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestLockBlocksUntilReleased(t *testing.T) {
	m := New()
	m.Lock(1)

	acquired := make(chan struct{})
	go func() {
		m.Lock(1)
		close(acquired)
		m.Unlock(1)
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(50 * time.Millisecond):
	}

	m.Unlock(1)
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock was never handed over")
	}
}

func TestUnlockUnheldKeyPanics(t *testing.T) {
	assert.Panics(t, func() {
		New().Unlock(42)
	})
}
