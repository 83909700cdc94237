package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/catalog/internal/platform/messaging"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const contentTypeJSON = "application/json"

// Publisher writes events to JetStream. The stream must already cover the event subjects.
type Publisher struct {
	js jetstream.JetStream
}

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// Publish sends the event payload to the event subject and waits for the stream acknowledgement.
func (p *Publisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	msg := &nats.Msg{
		Subject: event.Subject(),
		Data:    data,
		Header:  nats.Header{"Content-Type": []string{contentTypeJSON}},
	}
	if _, err := p.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", event.Subject(), err)
	}
	return nil
}
