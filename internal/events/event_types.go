package events

import (
	"time"

	"github.com/google/uuid"
)

// Topic names a stream of change events.
type Topic string

const (
	TopicGallery Topic = "gallery"
)

// Kind enumerates change kinds.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Event is a change notification for one item of a collection. Delivery is at-least-once:
// a redelivered event carries the same ID.
type Event struct {
	ID        string    `json:"id"`
	Topic     Topic     `json:"topic"`
	Kind      Kind      `json:"kind"`
	ItemID    string    `json:"itemId"`
	Item      any       `json:"item,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps a fresh event.
func NewEvent(topic Topic, kind Kind, itemID string, item any) Event {
	return Event{
		ID:        uuid.NewString(),
		Topic:     topic,
		Kind:      kind,
		ItemID:    itemID,
		Item:      item,
		Timestamp: time.Now().UTC(),
	}
}
