package game

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// Overrides are the call-site properties passed alongside an action
// invocation. They take precedence over everything else the action resolves.
type Overrides struct {
	Target   Value
	Optional *bool
}

// Action is the contract every game action implements. Implementations are
// stateless: everything per-invocation flows through the context, the
// overrides and the events they build.
type Action interface {
	Name() string
	EventName() rules.EventName
	// CanAffect must not mutate state.
	CanAffect(target Value, ctx *AbilityContext, o Overrides) bool
	HasLegalTarget(ctx *AbilityContext, o Overrides) bool
	// AddEventsToArray appends the pending mutations to events. It may
	// prompt, in which case events are appended once the prompt resolves.
	AddEventsToArray(events *[]*Event, ctx *AbilityContext, o Overrides)
	// EventHandler applies one event. It runs at most once per event.
	EventHandler(event *Event)
	CheckEventCondition(event *Event) bool
}

// EventParams is the typed payload of an event.
type EventParams struct {
	Context      *AbilityContext
	Card         *Card
	Cards        []*Card
	Ring         *Ring
	Rings        []*Ring
	Player       *Player
	Conflict     *Conflict
	Duel         *Duel
	Amount       int
	Fate         int
	Honor        int
	Element      Element
	Origin       EffectTarget
	Recipient    EffectTarget
	PhysicalRing *Ring
	Optional     bool
	Location     Location
	Effects      []EffectFactory
}

// Event is a pending (then applied or cancelled) mutation. Events are plain
// records: application is dispatched to Action.EventHandler by the event
// window. Events with a nil Action are notifications.
type Event struct {
	EventParams

	ID        string
	Name      rules.EventName
	Action    Action
	Overrides Overrides
	Order     int

	cancelled bool
	resolved  bool
	window    *EventWindow
}

// NewEvent creates a notification event (no action).
func NewEvent(name rules.EventName, params EventParams) *Event {
	return &Event{
		EventParams: params,
		ID:          uuid.NewString(),
		Name:        name,
	}
}

// NewActionEvent creates an event whose application is handled by action.
func NewActionEvent(action Action, params EventParams, o Overrides) *Event {
	e := NewEvent(action.EventName(), params)
	e.Action = action
	e.Overrides = o
	return e
}

// Cancel marks the event cancelled; it will not be applied.
func (e *Event) Cancel() {
	e.cancelled = true
}

// IsCancelled reports whether the event was cancelled.
func (e *Event) IsCancelled() bool { return e.cancelled }

// IsResolved reports whether the event has been applied.
func (e *Event) IsResolved() bool { return e.resolved }

// CheckCondition re-validates the event immediately before application.
func (e *Event) CheckCondition() bool {
	if e.cancelled {
		return false
	}
	if e.Action != nil {
		return e.Action.CheckEventCondition(e)
	}
	return true
}

// Window returns the event window the event was opened in.
func (e *Event) Window() *EventWindow { return e.window }

// apply runs the action handler and marks the event resolved.
func (e *Event) apply() {
	if e.cancelled || e.resolved {
		return
	}
	if e.Action != nil {
		e.Action.EventHandler(e)
		if e.Context != nil {
			e.Context.ResolutionChain.Add(e.Action)
		}
	}
	if !e.cancelled {
		e.resolved = true
	}
}

// Record flattens the event into its serialisable form.
func (e *Event) Record() rules.Record {
	r := rules.NewRecord(e.Name, e.ID, "", "")
	if e.Action != nil {
		r.Action = e.Action.Name()
	}
	if ctx := e.Context; ctx != nil {
		r.ContextID = ctx.ID
		if ctx.Source != nil {
			r.SourceID = ctx.Source.SourceID()
		}
		if ctx.Player != nil {
			r.PlayerID = ctx.Player.ID
		}
	}
	if e.Player != nil {
		r.Metadata["player"] = e.Player.ID
	}
	if e.Card != nil {
		r.TargetIDs = append(r.TargetIDs, e.Card.ID)
		if e.Card.controller != nil {
			r.Metadata["controller"] = e.Card.controller.ID
		}
	}
	for _, c := range e.Cards {
		if c != e.Card {
			r.TargetIDs = append(r.TargetIDs, c.ID)
		}
	}
	if e.Ring != nil {
		r.TargetIDs = append(r.TargetIDs, e.Ring.EntityID())
		r.Element = string(e.Ring.Element)
	}
	for _, ring := range e.Rings {
		if ring != e.Ring {
			r.TargetIDs = append(r.TargetIDs, ring.EntityID())
		}
	}
	if e.Element != "" {
		r.Element = string(e.Element)
	}
	r.Amount = e.Amount
	if e.Fate != 0 {
		r.Amount = e.Fate
		r.Metadata["fate"] = strconv.Itoa(e.Fate)
	}
	if e.Origin != nil {
		r.Metadata["origin"] = e.Origin.EntityID()
	}
	if e.Recipient != nil {
		r.Metadata["recipient"] = e.Recipient.EntityID()
	}
	if e.Duel != nil {
		r.Metadata["duel"] = e.Duel.ID
	}
	if e.Conflict != nil {
		r.Metadata["conflict"] = e.Conflict.EntityID()
	}
	r.Cancelled = e.cancelled
	return r
}
