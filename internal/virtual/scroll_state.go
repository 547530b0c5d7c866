package virtual

import (
	"context"
	"sync"
	"time"

	"github.com/zjrosen/vlist/internal/log"
	"github.com/zjrosen/vlist/internal/pubsub"
)

// DefaultScrollingDelay is the quiet period after the last scroll notification
// before IsScrolling drops back to false.
const DefaultScrollingDelay = 150 * time.Millisecond

// ScrollEvent is published when scrolling starts and when it settles.
type ScrollEvent struct {
	Offset    float64
	Scrolling bool
}

// ScrollState tracks the raw scroll offset and a trailing-debounced
// "is scrolling" flag. Hosts use the flag to render cheap placeholders while
// the list is in motion; it never affects range computation.
type ScrollState struct {
	clock  Clock
	delay  time.Duration
	broker *pubsub.Broker[ScrollEvent]

	mu        sync.Mutex
	offset    float64
	scrolling bool
	timer     Timer
	gen       uint64 // bumped on every reschedule and Stop; stale callbacks compare against it
}

// scrollEventBuffer is the per-subscriber backlog of start/settle events.
// Only the latest state matters, so a short buffer is enough.
const scrollEventBuffer = 8

// NewScrollState creates a ScrollState. A zero delay uses DefaultScrollingDelay
// and a nil clock uses RealClock.
func NewScrollState(delay time.Duration, clock Clock) *ScrollState {
	if delay <= 0 {
		delay = DefaultScrollingDelay
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &ScrollState{
		clock:  clock,
		delay:  delay,
		broker: pubsub.NewBrokerWithBuffer[ScrollEvent](scrollEventBuffer),
	}
}

// Notify records a scroll to offset. Negative offsets are clamped to zero.
// The scrolling flag is raised immediately and the settle timer restarted.
func (s *ScrollState) Notify(offset float64) {
	if !validHeight(offset) {
		offset = 0
	}

	s.mu.Lock()
	s.offset = offset
	started := !s.scrolling
	s.scrolling = true

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.delay, func() { s.settle(gen) })
	s.mu.Unlock()

	if started {
		s.broker.Publish(pubsub.ScrollStarted, ScrollEvent{Offset: offset, Scrolling: true})
	}
}

// settle clears the scrolling flag if no notification arrived since the
// timer for gen was armed.
func (s *ScrollState) settle(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.scrolling {
		s.mu.Unlock()
		return
	}
	s.scrolling = false
	s.timer = nil
	offset := s.offset
	s.mu.Unlock()

	log.Debug(log.CatVirtual, "scroll settled", "offset", offset)
	s.broker.Publish(pubsub.ScrollSettled, ScrollEvent{Offset: offset, Scrolling: false})
}

// Offset returns the last notified offset.
func (s *ScrollState) Offset() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// IsScrolling reports whether a notification arrived within the delay window.
func (s *ScrollState) IsScrolling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrolling
}

// Delay returns the debounce window.
func (s *ScrollState) Delay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delay
}

// SetDelay changes the debounce window for subsequent notifications.
func (s *ScrollState) SetDelay(d time.Duration) {
	if d <= 0 {
		d = DefaultScrollingDelay
	}
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// Subscribe returns a channel of scroll start/settle events, closed when ctx
// is cancelled or the state is closed.
func (s *ScrollState) Subscribe(ctx context.Context) <-chan pubsub.Event[ScrollEvent] {
	return s.broker.Subscribe(ctx)
}

// Stop cancels a pending settle timer and clears the scrolling flag. No
// settle event fires after Stop returns. Safe to call multiple times.
func (s *ScrollState) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.scrolling = false
}

// Close stops the timer and closes every subscription.
func (s *ScrollState) Close() {
	s.Stop()
	s.broker.Close()
}
