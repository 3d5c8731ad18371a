// Package events fans change notifications out to a user's live
// subscribers. Delivery is fire and forget: publishing never blocks a
// mutation, and a subscriber that stops draining its queue is dropped.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/internal/metrics"
)

// ErrClosed is returned by Next once the subscriber has been dropped,
// either by Unsubscribe, queue overflow or hub shutdown.
var ErrClosed = errors.New("subscriber closed")

type Config struct {
	// QueueSize bounds each subscriber's pending event queue.
	QueueSize int
	// KeepaliveInterval is how often idle subscribers receive a
	// keepalive event so stale connections surface.
	KeepaliveInterval time.Duration
}

// Subscriber is one live connection's view of the stream. Events arrive
// in publish order; Next blocks until one is available.
type Subscriber struct {
	userID int64
	queue  chan domain.Event
}

func (s *Subscriber) UserID() int64 {
	return s.userID
}

// Next returns the subscriber's next event. It blocks until an event
// arrives, the context ends, or the subscriber is closed.
func (s *Subscriber) Next(ctx context.Context) (domain.Event, error) {
	select {
	case <-ctx.Done():
		return domain.Event{}, ctx.Err()
	case event, ok := <-s.queue:
		if !ok {
			return domain.Event{}, ErrClosed
		}
		return event, nil
	}
}

// Hub keys subscribers by user id. Events published for one user are
// invisible to every other user's subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[int64]map[*Subscriber]struct{}

	queueSize int
	keepalive time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
	logger *zap.Logger
}

func NewHub(cfg Config, logger *zap.Logger) *Hub {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.KeepaliveInterval <= 0 {
		cfg.KeepaliveInterval = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:      make(map[int64]map[*Subscriber]struct{}),
		queueSize: cfg.QueueSize,
		keepalive: cfg.KeepaliveInterval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		logger:    logger,
	}
}

// Start launches the keepalive loop.
func (h *Hub) Start() {
	go h.loop()
}

// Stop ends the keepalive loop and closes every subscriber.
func (h *Hub) Stop() {
	close(h.stopCh)
	<-h.doneCh

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subs {
		for sub := range set {
			close(sub.queue)
			metrics.EventSubscribers.Dec()
		}
	}
	h.subs = make(map[int64]map[*Subscriber]struct{})
}

// Subscribe registers a new subscriber for the user's events.
func (h *Hub) Subscribe(userID int64) *Subscriber {
	sub := &Subscriber{
		userID: userID,
		queue:  make(chan domain.Event, h.queueSize),
	}

	h.mu.Lock()
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.subs[userID] = set
	}
	set[sub] = struct{}{}
	total := h.total()
	h.mu.Unlock()

	metrics.EventSubscribers.Inc()
	h.logger.Debug("event subscriber added",
		zap.Int64("user_id", userID),
		zap.Int("total_subscribers", total),
	)
	return sub
}

// Unsubscribe drops the subscriber and closes its queue. Calling it for
// an already dropped subscriber is a no-op.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	set, ok := h.subs[sub.userID]
	if ok {
		if _, member := set[sub]; member {
			delete(set, sub)
			close(sub.queue)
			metrics.EventSubscribers.Dec()
		}
		if len(set) == 0 {
			delete(h.subs, sub.userID)
		}
	}
	h.mu.Unlock()
}

// Publish stamps the event and queues it for each of the user's
// subscribers. With no subscribers the event is discarded. A subscriber
// whose queue is full is closed and removed rather than blocking the
// caller.
func (h *Hub) Publish(userID int64, event domain.Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	metrics.EventsPublished.WithLabelValues(event.Type).Inc()

	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[userID]
	if !ok {
		return
	}

	// Collect overflowed subscribers first; the set cannot change while
	// iterating.
	var toRemove []*Subscriber
	for sub := range set {
		select {
		case sub.queue <- event:
		default:
			toRemove = append(toRemove, sub)
		}
	}

	for _, sub := range toRemove {
		delete(set, sub)
		close(sub.queue)
		metrics.EventsDropped.Inc()
		metrics.EventSubscribers.Dec()
		h.logger.Warn("event subscriber dropped, queue full",
			zap.Int64("user_id", sub.userID),
			zap.String("event_type", event.Type),
		)
	}
	if len(set) == 0 {
		delete(h.subs, userID)
	}
}

func (h *Hub) loop() {
	defer close(h.doneCh)

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.broadcastKeepalive()
		case <-h.stopCh:
			return
		}
	}
}

// broadcastKeepalive queues a keepalive for every subscriber of every
// user. Writing it out is what lets the transport notice a dead peer.
func (h *Hub) broadcastKeepalive() {
	event := domain.Event{
		ID:        uuid.NewString(),
		Type:      domain.EventKeepalive,
		CreatedAt: time.Now(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, set := range h.subs {
		var toRemove []*Subscriber
		for sub := range set {
			select {
			case sub.queue <- event:
			default:
				toRemove = append(toRemove, sub)
			}
		}
		for _, sub := range toRemove {
			delete(set, sub)
			close(sub.queue)
			metrics.EventsDropped.Inc()
			metrics.EventSubscribers.Dec()
		}
		if len(set) == 0 {
			delete(h.subs, userID)
		}
	}
}

// total reports the subscriber count. Callers must hold h.mu.
func (h *Hub) total() int {
	n := 0
	for _, set := range h.subs {
		n += len(set)
	}
	return n
}
