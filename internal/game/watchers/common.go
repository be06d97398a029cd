package watchers

import (
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// RingsClaimedWatcher tracks which rings each player claimed this round.
type RingsClaimedWatcher struct {
	*rules.BaseWatcher
	claimed map[string][]string // playerID -> ring elements
}

// NewRingsClaimedWatcher creates a new rings claimed watcher.
func NewRingsClaimedWatcher() *RingsClaimedWatcher {
	return &RingsClaimedWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame, "RingsClaimedWatcher"),
		claimed:     make(map[string][]string),
	}
}

// Watch implements the Watcher interface.
func (w *RingsClaimedWatcher) Watch(record rules.Record) {
	if record.Name != rules.EventClaimRing || record.Cancelled || record.PlayerID == "" {
		return
	}
	w.claimed[record.PlayerID] = append(w.claimed[record.PlayerID], record.Element)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *RingsClaimedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.claimed = make(map[string][]string)
}

// GetClaimed returns the ring elements claimed by a player.
func (w *RingsClaimedWatcher) GetClaimed(playerID string) []string {
	return w.claimed[playerID]
}

// FateMovedWatcher totals the fate each player received from moves this round.
type FateMovedWatcher struct {
	*rules.BaseWatcher
	received map[string]int
}

// NewFateMovedWatcher creates a new fate moved watcher.
func NewFateMovedWatcher() *FateMovedWatcher {
	return &FateMovedWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame, "FateMovedWatcher"),
		received:    make(map[string]int),
	}
}

// Watch implements the Watcher interface.
func (w *FateMovedWatcher) Watch(record rules.Record) {
	if record.Name != rules.EventMoveFate || record.Cancelled {
		return
	}
	recipient := record.Metadata["recipient"]
	if recipient == "" {
		recipient = record.PlayerID
	}
	if recipient == "" || record.Amount <= 0 {
		return
	}
	w.received[recipient] += record.Amount
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *FateMovedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.received = make(map[string]int)
}

// GetReceived returns how much fate id received this round.
func (w *FateMovedWatcher) GetReceived(id string) int {
	return w.received[id]
}

// DuelsWatcher counts duels initiated this round and who initiated them.
type DuelsWatcher struct {
	*rules.BaseWatcher
	initiated map[string]int
	total     int
}

// NewDuelsWatcher creates a new duel watcher.
func NewDuelsWatcher() *DuelsWatcher {
	return &DuelsWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.WatcherScopeGame, "DuelsWatcher"),
		initiated:   make(map[string]int),
	}
}

// Watch implements the Watcher interface.
func (w *DuelsWatcher) Watch(record rules.Record) {
	if record.Name != rules.EventDuelInitiated || record.Cancelled {
		return
	}
	w.total++
	if record.PlayerID != "" {
		w.initiated[record.PlayerID]++
	}
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *DuelsWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.initiated = make(map[string]int)
	w.total = 0
}

// GetCount returns duels initiated by a player this round.
func (w *DuelsWatcher) GetCount(playerID string) int {
	return w.initiated[playerID]
}

// Total returns all duels initiated this round.
func (w *DuelsWatcher) Total() int {
	return w.total
}

// CardsLeftPlayWatcher tracks cards that left play, by the player who
// controlled them.
type CardsLeftPlayWatcher struct {
	*rules.BaseWatcher
	byController map[string][]string
}

// NewCardsLeftPlayWatcher creates a new watcher.
func NewCardsLeftPlayWatcher() *CardsLeftPlayWatcher {
	return &CardsLeftPlayWatcher{
		BaseWatcher:  rules.NewBaseWatcher(rules.WatcherScopeGame, "CardsLeftPlayWatcher"),
		byController: make(map[string][]string),
	}
}

// Watch implements the Watcher interface.
func (w *CardsLeftPlayWatcher) Watch(record rules.Record) {
	if record.Name != rules.EventCardLeavesPlay || record.Cancelled {
		return
	}
	controller := record.Metadata["controller"]
	if controller == "" {
		controller = record.PlayerID
	}
	w.byController[controller] = append(w.byController[controller], record.TargetIDs...)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsLeftPlayWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.byController = make(map[string][]string)
}

// GetCards returns the cards controlled by controllerID that left play.
func (w *CardsLeftPlayWatcher) GetCards(controllerID string) []string {
	return w.byController[controllerID]
}

// Defaults returns the watchers every game registers.
func Defaults() []rules.Watcher {
	return []rules.Watcher{
		NewRingsClaimedWatcher(),
		NewFateMovedWatcher(),
		NewDuelsWatcher(),
		NewCardsLeftPlayWatcher(),
	}
}
