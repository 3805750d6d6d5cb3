package es

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the stored form of an event.
type Envelope struct {
	// ID is the unique identifier of this envelope.
	ID string `json:"id"`
	// Type is the registered event type name used to decode Data.
	Type string `json:"type"`
	// EntityID identifies the aggregate the event belongs to.
	EntityID uuid.UUID `json:"entity_id"`
	// Version is the aggregate version the event was produced at.
	Version Version `json:"version"`
	// OccurredAt is when the event was persisted.
	OccurredAt time.Time `json:"occurred_at"`
	// Data is the JSON encoded event.
	Data json.RawMessage `json:"data"`
}

func (e Envelope) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("envelope id is empty")
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("envelope occurred at is zero")
	}
	if e.EntityID == uuid.Nil {
		return fmt.Errorf("envelope entity id is empty")
	}
	if e.Type == "" {
		return fmt.Errorf("envelope type is empty")
	}
	return nil
}
