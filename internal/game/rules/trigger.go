package rules

import (
	"sync"

	"github.com/google/uuid"
)

// Moment is the point in an event window at which a trigger fires.
type Moment int

const (
	// MomentInterrupt fires before the event applies and may cancel it.
	MomentInterrupt Moment = iota
	// MomentReaction fires after the event has applied.
	MomentReaction
)

// String returns the string representation of the moment.
func (m Moment) String() string {
	switch m {
	case MomentInterrupt:
		return "INTERRUPT"
	case MomentReaction:
		return "REACTION"
	default:
		return "UNKNOWN"
	}
}

// Trigger binds a payload (usually a triggered ability) to one or more event
// names at a given moment.
type Trigger[T any] struct {
	ID      string
	Moment  Moment
	Events  []EventName
	Payload T
	Once    bool
}

// Matches reports whether the trigger listens for name at moment.
func (t Trigger[T]) Matches(moment Moment, name EventName) bool {
	if t.Moment != moment {
		return false
	}
	for _, n := range t.Events {
		if n == name {
			return true
		}
	}
	return false
}

// TriggerRegistry stores triggers in registration order.
type TriggerRegistry[T any] struct {
	mu       sync.Mutex
	triggers []Trigger[T]
}

// NewTriggerRegistry creates an empty registry.
func NewTriggerRegistry[T any]() *TriggerRegistry[T] {
	return &TriggerRegistry[T]{}
}

// Register adds a trigger and returns its ID.
func (r *TriggerRegistry[T]) Register(trigger Trigger[T]) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if trigger.ID == "" {
		trigger.ID = uuid.NewString()
	}
	r.triggers = append(r.triggers, trigger)
	return trigger.ID
}

// Unregister removes a trigger by ID.
func (r *TriggerRegistry[T]) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.triggers {
		if t.ID == id {
			r.triggers = append(r.triggers[:i], r.triggers[i+1:]...)
			return
		}
	}
}

// Matching returns the triggers listening for any of names at moment, in
// registration order. Triggers flagged Once are removed from the registry.
func (r *TriggerRegistry[T]) Matching(moment Moment, names ...EventName) []Trigger[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		matched []Trigger[T]
		kept    = r.triggers[:0]
	)
	for _, t := range r.triggers {
		hit := false
		for _, name := range names {
			if t.Matches(moment, name) {
				hit = true
				break
			}
		}
		if hit {
			matched = append(matched, t)
			if t.Once {
				continue
			}
		}
		kept = append(kept, t)
	}
	r.triggers = kept
	return matched
}

// Len returns the number of registered triggers.
func (r *TriggerRegistry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.triggers)
}
