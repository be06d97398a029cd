package rules

import (
	"sync"
	"time"
)

// EventName identifies the kind of a game event.
type EventName string

const (
	// Rings
	EventClaimRing             EventName = "onClaimRing"
	EventReturnRing            EventName = "onReturnRing"
	EventPlaceFateOnRing       EventName = "onPlaceFateOnRing"
	EventResolveRingElement    EventName = "onResolveRingElement"
	EventSwitchConflictElement EventName = "onSwitchConflictElement"
	EventSwitchConflictType    EventName = "onSwitchConflictType"

	// Fate and honor
	EventMoveFate          EventName = "onMoveFate"
	EventSpendFate         EventName = "onSpendFate"
	EventModifyFate        EventName = "onModifyFate"
	EventModifyHonor       EventName = "onModifyHonor"
	EventTransferHonor     EventName = "onTransferHonor"
	EventAddFateToCard     EventName = "onPlaceFate"
	EventRemoveFate        EventName = "onRemoveFate"
	EventClaimFavor        EventName = "onClaimImperialFavor"
	EventLoseFavor         EventName = "onLoseImperialFavor"
	EventCardDrawn         EventName = "onCardsDrawn"
	EventHonorBidsRevealed EventName = "onHonorDialsRevealed"

	// Cards
	EventCardBowed          EventName = "onCardBowed"
	EventCardReadied        EventName = "onCardReadied"
	EventCardHonored        EventName = "onCardHonored"
	EventCardDishonored     EventName = "onCardDishonored"
	EventCardTainted        EventName = "onCardTainted"
	EventCardLeavesPlay     EventName = "onCardLeavesPlay"
	EventCardDiscarded      EventName = "onCardsDiscarded"
	EventCardReturnedToHand EventName = "onCardReturnedToHand"
	EventSendHome           EventName = "onSendHome"
	EventMoveToConflict     EventName = "onMoveToConflict"
	EventBreakProvince      EventName = "onBreakProvince"
	EventCardPlayed         EventName = "onCardPlayed"

	// Duels
	EventDuelInitiated  EventName = "onDuelInitiated"
	EventDuelResolution EventName = "onDuelResolution"
	EventDuelFinished   EventName = "onDuelFinished"

	// Conflicts
	EventConflictDeclared EventName = "onConflictDeclared"
	EventConflictPass     EventName = "onConflictPass"
	EventConflictDecided  EventName = "afterConflict"
	EventConflictFinished EventName = "onConflictFinished"

	// Abilities and lasting effects
	EventInitiateAbilityEffects EventName = "onInitiateAbilityEffects"
	EventAbilityResolved        EventName = "onAbilityResolved"
	EventEffectApplied          EventName = "onEffectApplied"

	// Game structure
	EventPhaseStarted EventName = "onPhaseStarted"
	EventPhaseEnded   EventName = "onPhaseEnded"
	EventRoundEnded   EventName = "onRoundEnded"
	EventUnnamed      EventName = "unnamedEvent"
)

// Record is the serialisable form of an applied (or cancelled) game event.
// It only carries identifiers so it can be journaled and replayed.
type Record struct {
	Sequence  int
	Name      EventName
	ID        string
	Action    string
	ContextID string
	SourceID  string
	PlayerID  string
	TargetIDs []string
	Element   string
	Amount    int
	Cancelled bool
	Timestamp time.Time
	Metadata  map[string]string
}

// Listener defines a callback that reacts to incoming records.
type Listener func(Record)

// TypedListener defines a callback that reacts to a specific event name.
type TypedListener struct {
	Handle    int
	EventName EventName
	Callback  func(Record)
}

// EventBus provides a synchronous publish/subscribe implementation with name filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	order          []int
	typedListeners map[EventName][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventName][]TypedListener),
	}
}

// Subscribe registers a listener for all records and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	bus.order = append(bus.order, handle)
	return handle
}

// SubscribeTyped registers a listener for a specific event name.
func (bus *EventBus) SubscribeTyped(name EventName, callback func(Record)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[name] = append(bus.typedListeners[name], TypedListener{
		Handle:    handle,
		EventName: name,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if _, ok := bus.listeners[handle]; ok {
		delete(bus.listeners, handle)
		for i, h := range bus.order {
			if h == handle {
				bus.order = append(bus.order[:i], bus.order[i+1:]...)
				break
			}
		}
	}
	for name, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[name] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the record to all registered listeners synchronously, in
// subscription order.
func (bus *EventBus) Publish(record Record) {
	bus.mu.RLock()
	all := make([]Listener, 0, len(bus.order))
	for _, h := range bus.order {
		all = append(all, bus.listeners[h])
	}
	typed := append([]TypedListener(nil), bus.typedListeners[record.Name]...)
	bus.mu.RUnlock()

	for _, listener := range all {
		listener(record)
	}
	for _, listener := range typed {
		listener.Callback(record)
	}
}

// NewRecord creates a record with common fields populated.
func NewRecord(name EventName, id, sourceID, playerID string) Record {
	return Record{
		Name:      name,
		ID:        id,
		SourceID:  sourceID,
		PlayerID:  playerID,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}
