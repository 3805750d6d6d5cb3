package es

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/codewandler/folio-go/internal/reflector"
)

type eventDecoder func(data json.RawMessage) (Event, error)

// EventRegistry maps event type names to decoders so persisted envelopes can
// be turned back into events. It is built explicitly at startup and handed
// to every repository that needs it.
type EventRegistry struct {
	mu       sync.RWMutex
	decoders map[string]eventDecoder
}

func NewEventRegistry() *EventRegistry {
	return &EventRegistry{decoders: map[string]eventDecoder{}}
}

// Registrar is implemented by [EventRegistry]. Domain packages expose a
// RegisterEvents(es.Registrar) function built on [RegisterEvent].
type Registrar interface {
	register(eventType string, decode eventDecoder)
}

func (r *EventRegistry) register(eventType string, decode eventDecoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[eventType] = decode
}

// RegisterEvent registers the value type T under its event type name.
func RegisterEvent[T Event](r Registrar) {
	var sample T
	r.register(EventTypeOf(sample), func(data json.RawMessage) (Event, error) {
		var ev T
		if len(data) > 0 {
			if err := json.Unmarshal(data, &ev); err != nil {
				return nil, err
			}
		}
		return ev, nil
	})
}

// Types returns the registered event type names, sorted.
func (r *EventRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.decoders))
	for k := range r.decoders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsRegistered reports whether events of the given type name can be decoded.
func (r *EventRegistry) IsRegistered(eventType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.decoders[eventType]
	return ok
}

// Encode wraps ev into an envelope. Only registered events can be encoded,
// anything else could never be replayed.
func (r *EventRegistry) Encode(ev Event, id string, occurredAt time.Time) (Envelope, error) {
	eventType := EventTypeOf(ev)
	if !r.IsRegistered(eventType) {
		return Envelope{}, fmt.Errorf("%w: %s", ErrUnknownEventType, eventType)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s: %w", eventType, err)
	}
	env := Envelope{
		ID:         id,
		Type:       eventType,
		EntityID:   ev.GetEntityID(),
		Version:    ev.GetVersion(),
		OccurredAt: occurredAt,
		Data:       data,
	}
	return env, env.Validate()
}

// Decode turns a persisted envelope back into its event value.
func (r *EventRegistry) Decode(env Envelope) (Event, error) {
	r.mu.RLock()
	decode, ok := r.decoders[env.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, env.Type)
	}
	ev, err := decode(env.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", env.Type, err)
	}
	return ev, nil
}

var _ Registrar = (*EventRegistry)(nil)

// EventTypeOf returns the persisted type name of ev. Events may choose a
// stable name by implementing EventType() string, the fully qualified Go
// type name is used otherwise.
func EventTypeOf(ev any) string {
	if t, ok := ev.(interface{ EventType() string }); ok {
		return t.EventType()
	}
	return reflector.TypeInfoOf(ev).Name
}
