// Package pubsub fans typed events out to any number of subscribers and
// bridges them into the Bubble Tea update loop.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened.
type EventType string

const (
	// LogEvent carries a formatted log line.
	LogEvent EventType = "log"
	// ViewportEvent carries a scroll or resize from a viewport source.
	ViewportEvent EventType = "viewport"
	// ScrollStarted is published when a quiet scroll state starts moving.
	ScrollStarted EventType = "scroll_started"
	// ScrollSettled is published when scrolling has been quiet for the delay.
	ScrollSettled EventType = "scroll_settled"
)

// Event is one published payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out event channels that close when ctx is done.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}
