// Package events describes the product change notifications published to NATS.
package events

import (
	"encoding/json"
	"time"
)

const (
	// StreamName is the JetStream stream holding product events.
	StreamName = "PRODUCTS"
	// StreamSubjects matches every product event subject.
	StreamSubjects = "products.>"
)

// Action is the kind of change a ProductChangedEvent reports.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ProductChangedEvent is published after a product was written.
// Name, Price and Availability are empty for deletions.
type ProductChangedEvent struct {
	Carrier      map[string]string `json:"carrier,omitempty"`
	Action       Action            `json:"action"`
	ProductID    int64             `json:"product_id"`
	Name         string            `json:"name,omitempty"`
	Price        json.Number       `json:"price,omitempty"`
	Availability *bool             `json:"availability,omitempty"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

func (e ProductChangedEvent) Subject() string {
	return "products." + string(e.Action)
}

func (e ProductChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
