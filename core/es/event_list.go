package es

// EventList buffers events that were applied to an aggregate but not yet
// persisted. It is owned by exactly one aggregate and is not safe for
// concurrent use.
type EventList struct {
	events []Event
}

// Add appends ev to the tail.
func (l *EventList) Add(ev Event) { l.events = append(l.events, ev) }

// EventsAvailable reports whether the list holds any events.
func (l *EventList) EventsAvailable() bool { return len(l.events) > 0 }

// Len returns the number of buffered events.
func (l *EventList) Len() int { return len(l.events) }

// Fetch returns all buffered events in the order they were added and empties
// the list.
func (l *EventList) Fetch() []Event {
	out := l.events
	l.events = nil
	if out == nil {
		return []Event{}
	}
	return out
}
