package game

import "strings"

// Ring is one of the five elemental rings.
type Ring struct {
	Element         Element
	ConflictType    ConflictType
	Fate            int
	ClaimedBy       string // name of the claiming player
	Contested       bool
	RemovedFromGame bool

	game *Game
}

func newRing(game *Game, element Element) *Ring {
	return &Ring{
		Element:      element,
		ConflictType: ConflictMilitary,
		game:         game,
	}
}

func (r *Ring) EntityID() string   { return "ring-" + string(r.Element) }
func (r *Ring) SourceID() string   { return r.EntityID() }
func (r *Ring) SourceName() string { return r.Name() }

// Name returns the display name, e.g. "Air Ring".
func (r *Ring) Name() string {
	e := string(r.Element)
	if e == "" {
		return "Ring"
	}
	return strings.ToUpper(e[:1]) + e[1:] + " Ring"
}

// FlipConflictType swaps the ring between military and political.
func (r *Ring) FlipConflictType() {
	r.ConflictType = r.ConflictType.Other()
}

// ClaimRing marks the ring as claimed by player.
func (r *Ring) ClaimRing(player *Player) {
	if player == nil {
		return
	}
	r.ClaimedBy = player.Name
	r.Contested = false
}

// ResetRing returns the ring to the unclaimed pool.
func (r *Ring) ResetRing() {
	r.ClaimedBy = ""
	r.Contested = false
}

// RemoveFate clears the fate on the ring.
func (r *Ring) RemoveFate() {
	r.Fate = 0
}

// ModifyFate adds amount to the ring's fate, never below 0.
func (r *Ring) ModifyFate(amount int) {
	r.Fate += amount
	if r.Fate < 0 {
		r.Fate = 0
	}
}

// IsClaimed reports whether any player holds the ring.
func (r *Ring) IsClaimed() bool {
	return r.ClaimedBy != ""
}

// IsUnclaimed reports whether the ring is neither claimed nor contested.
func (r *Ring) IsUnclaimed() bool {
	return !r.IsClaimed() && !r.Contested
}

// IsConsideredClaimed reports whether player counts as having claimed the
// ring.
func (r *Ring) IsConsideredClaimed(player *Player) bool {
	if player == nil {
		return r.IsClaimed()
	}
	if r.ClaimedBy == player.Name {
		return true
	}
	for _, v := range r.game.effects.Get(r, EffectConsideredAsClaimed) {
		if p, ok := v.(*Player); ok && (p == nil || p == player) {
			return true
		}
	}
	return false
}

// GetElements returns the ring's element plus any added by effects.
func (r *Ring) GetElements() []Element {
	elements := []Element{r.Element}
	for _, v := range r.game.effects.Get(r, EffectAddElement) {
		e, ok := v.(Element)
		if !ok {
			continue
		}
		seen := false
		for _, have := range elements {
			if have == e {
				seen = true
				break
			}
		}
		if !seen {
			elements = append(elements, e)
		}
	}
	return elements
}

// HasElement reports whether the ring counts as having element.
func (r *Ring) HasElement(element Element) bool {
	for _, e := range r.GetElements() {
		if e == element {
			return true
		}
	}
	return false
}

func (r *Ring) String() string { return r.Name() }
