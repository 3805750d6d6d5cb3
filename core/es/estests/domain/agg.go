// Package domain holds a small counter aggregate used to exercise the event
// sourcing core in tests.
package domain

import (
	"github.com/google/uuid"

	"github.com/codewandler/folio-go/core/es"
	"github.com/codewandler/folio-go/core/es/assert"
)

const (
	CounterType = "counter"
	MaxCount    = 24
)

type (
	Counter struct {
		es.TrackedEntity

		count  int
		resets int
		label  string
	}

	Incremented struct {
		es.BaseEvent
		By int `json:"by"`
	}

	Reset struct{ es.BaseEvent }

	Labeled struct {
		es.BaseEvent
		Label string `json:"label"`
	}
)

func (Incremented) EventType() string { return "counter.incremented" }
func (Reset) EventType() string       { return "counter.reset" }
func (Labeled) EventType() string     { return "counter.labeled" }

func RegisterEvents(r es.Registrar) {
	es.RegisterEvent[Incremented](r)
	es.RegisterEvent[Reset](r)
	es.RegisterEvent[Labeled](r)
}

func NewCounter(id uuid.UUID) *Counter {
	return &Counter{TrackedEntity: es.NewTrackedEntity(id)}
}

func Factory() *es.Factory[*Counter] { return es.NewFactory(NewCounter) }

func (c *Counter) GetType() string { return CounterType }

func (c *Counter) Apply(event es.Event) error {
	switch e := event.(type) {
	case Incremented:
		c.count += e.By
	case Reset:
		c.count = 0
		c.resets++
	case Labeled:
		c.label = e.Label
	default:
		return es.UnsupportedEvent(c, event)
	}
	return nil
}

func (c *Counter) StoredProperties() map[string]string {
	if c.label == "" {
		return nil
	}
	return map[string]string{"label": c.label}
}

// === Commands ===

func (c *Counter) Inc() error { return c.IncBy(1) }

func (c *Counter) IncBy(n int) error {
	return c.Checked(
		assert.All(
			assert.Truef(n > 0, "increment %d must be positive", n),
			assert.Truef(c.count+n <= MaxCount, "counter cannot exceed %d", MaxCount),
		),
		es.ApplyAndPublishD(c, Incremented{BaseEvent: es.NewBaseEvent(c), By: n}),
	)
}

func (c *Counter) Reset() error {
	return es.ApplyAndPublish(c, Reset{BaseEvent: es.NewBaseEvent(c)})
}

func (c *Counter) Label(label string) error {
	return c.Checked(
		assert.Truef(label != "", "label must not be empty"),
		es.ApplyAndPublishD(c, Labeled{BaseEvent: es.NewBaseEvent(c), Label: label}),
	)
}

// === Read ===

func (c *Counter) Count() int       { return c.count }
func (c *Counter) Resets() int      { return c.resets }
func (c *Counter) GetLabel() string { return c.label }
