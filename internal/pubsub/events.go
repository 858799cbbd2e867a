// Package pubsub fans asynchronous results out to the editor loop.
//
// Widget renders finish after the decoration pass that requested them, and log
// lines are written from whatever goroutine produced them. Both are published
// on a Broker and picked up by a Listener, which turns them into tea messages.
package pubsub

import (
	"context"
	"time"
)

// EventType tags what happened.
type EventType string

const (
	RenderedEvent EventType = "rendered"
	FailedEvent   EventType = "failed"
	LoggedEvent   EventType = "logged"
)

// Event is one published payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber is the read side of a Broker.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher is the write side of a Broker.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
