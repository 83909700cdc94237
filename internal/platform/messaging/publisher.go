// Package messaging defines the events the service emits and how they are published.
package messaging

import (
	"context"
)

// Event is a message with a routing subject and a serialized body.
type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

// Publisher delivers events to a broker. Publish returns once the broker accepted the event.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}
