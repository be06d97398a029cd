package game

import (
	"github.com/google/uuid"

	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// EffectName identifies the kind of modifier an effect applies.
type EffectName string

const (
	EffectModifyMilitarySkill             EffectName = "modifyMilitarySkill"
	EffectModifyPoliticalSkill            EffectName = "modifyPoliticalSkill"
	EffectModifyBothSkills                EffectName = "modifyBothSkills"
	EffectSetMilitarySkill                EffectName = "setMilitarySkill"
	EffectSetPoliticalSkill               EffectName = "setPoliticalSkill"
	EffectModifyGlory                     EffectName = "modifyGlory"
	EffectModifyProvinceStrength          EffectName = "modifyProvinceStrength"
	EffectSetProvinceStrength             EffectName = "setProvinceStrength"
	EffectRestriction                     EffectName = "abilityRestrictions"
	EffectCanContributeWhileBowed         EffectName = "canContributeWhileBowed"
	EffectContributeToConflict            EffectName = "contributeToConflict"
	EffectParticipatesFromHome            EffectName = "participatesFromHome"
	EffectCannotParticipateAsAttacker     EffectName = "cannotParticipateAsAttacker"
	EffectCannotParticipateAsDefender     EffectName = "cannotParticipateAsDefender"
	EffectAddElement                      EffectName = "addElement"
	EffectConsideredAsClaimed             EffectName = "consideredAsClaimed"
	EffectWinDuel                         EffectName = "winDuel"
	EffectCannotBidInDuels                EffectName = "cannotBidInDuels"
	EffectCannotResolveRings              EffectName = "cannotResolveRings"
	EffectChangePlayerSkillModifier       EffectName = "changePlayerSkillModifier"
	EffectSetConflictTotalSkill           EffectName = "setConflictTotalSkill"
	EffectChangeConflictSkillFunction     EffectName = "skillFunction"
	EffectAdditionalCardPlayed            EffectName = "additionalCardPlayed"
	EffectAdditionalCharactersInConflict  EffectName = "additionalCharactersInConflict"
	EffectIncreaseCost                    EffectName = "increaseCost"
	EffectReduceCost                      EffectName = "costReducer"
	EffectEventsCannotBeCancelled         EffectName = "eventsCannotBeCancelled"
	EffectCannotContribute                EffectName = "cannotContribute"
	EffectModifyConflictElementsToResolve EffectName = "modifyConflictElementsToResolve"
	EffectRestrictNumberOfDefenders       EffectName = "restrictNumberOfDefenders"
	EffectForceConflictUnopposed          EffectName = "forceConflictUnopposed"
	EffectAdditionalAttackedProvince      EffectName = "additionalAttackedProvince"
)

// SkillFunction computes what a card contributes to a conflict.
type SkillFunction func(card *Card, conflict *Conflict) int

// CardPredicate tests a single card.
type CardPredicate func(card *Card) bool

// Restriction forbids an action type, optionally only when Condition holds
// for the acting context.
type Restriction struct {
	Type      string
	Condition func(ctx *AbilityContext) bool
}

// Forbids reports whether the restriction blocks actionType in ctx.
func (r Restriction) Forbids(actionType string, ctx *AbilityContext) bool {
	if r.Type != actionType {
		return false
	}
	return r.Condition == nil || r.Condition(ctx)
}

// EffectFactory is a declarative modifier: a name plus either a fixed value
// or a value computed for each target when queried.
type EffectFactory struct {
	Name    EffectName
	Value   any
	Dynamic func(target EffectTarget, ctx *AbilityContext) any
}

// EffectProperties describes one effect registration.
type EffectProperties struct {
	Effect    EffectFactory
	Source    EffectSource
	Context   *AbilityContext
	Targets   []EffectTarget
	Match     func(target EffectTarget) bool
	Condition func() bool
	Duration  Duration
	Until     map[rules.EventName]func(*Event) bool
}

// Effect is a registered, live modifier.
type Effect struct {
	EffectProperties
	ID string

	order   int
	applied map[string]bool
	expired bool
}

// AppliesTo reports whether the effect currently affects target.
func (e *Effect) AppliesTo(target EffectTarget) bool {
	return target != nil && e.applied[target.EntityID()]
}

func (e *Effect) value(target EffectTarget) any {
	if e.Effect.Dynamic != nil {
		return e.Effect.Dynamic(target, e.Context)
	}
	return e.Effect.Value
}

// EffectEngine holds every live effect of a game and answers queries about
// them. Which targets an effect applies to is only recomputed by
// CheckEffects.
type EffectEngine struct {
	game    *Game
	effects []*Effect
	order   int
}

func newEffectEngine(game *Game) *EffectEngine {
	return &EffectEngine{game: game}
}

// Add registers an effect and applies it immediately.
func (ee *EffectEngine) Add(props EffectProperties) *Effect {
	if props.Duration == "" {
		props.Duration = DurationPersistent
	}
	ee.order++
	effect := &Effect{
		EffectProperties: props,
		ID:               uuid.NewString(),
		order:            ee.order,
		applied:          make(map[string]bool),
	}
	ee.effects = append(ee.effects, effect)
	ee.refresh(effect)
	return effect
}

// Remove unregisters an effect by ID.
func (ee *EffectEngine) Remove(id string) {
	for i, e := range ee.effects {
		if e.ID == id {
			ee.effects = append(ee.effects[:i], ee.effects[i+1:]...)
			return
		}
	}
}

// RemoveFromSource drops every effect originating from source.
func (ee *EffectEngine) RemoveFromSource(source EffectSource) {
	if source == nil {
		return
	}
	ee.filter(func(e *Effect) bool {
		return e.Source == nil || e.Source.SourceID() != source.SourceID()
	})
}

// Len returns the number of registered effects.
func (ee *EffectEngine) Len() int {
	return len(ee.effects)
}

// CheckEffects recomputes which targets every effect applies to until the
// result is stable. It returns whether anything changed, or'd with
// prevStateChanged.
func (ee *EffectEngine) CheckEffects(prevStateChanged bool) bool {
	changed := false
	for loop := 0; loop < 10; loop++ {
		loopChanged := false
		for _, e := range append([]*Effect(nil), ee.effects...) {
			if ee.refresh(e) {
				loopChanged = true
			}
		}
		ee.filter(func(e *Effect) bool { return !e.expired })
		if !loopChanged {
			break
		}
		changed = true
	}
	return prevStateChanged || changed
}

func (ee *EffectEngine) refresh(e *Effect) bool {
	wanted := make(map[string]bool)
	active := !e.expired
	if active && e.Duration == DurationPersistent {
		if card, ok := e.Source.(*Card); ok && !card.IsInPlay() {
			e.expired = true
			active = false
		}
	}
	if active && e.Condition != nil && !e.Condition() {
		active = false
	}
	if active {
		for _, t := range e.Targets {
			if card, ok := t.(*Card); ok && e.Duration != DurationPersistent && !card.IsInPlay() {
				continue
			}
			wanted[t.EntityID()] = true
		}
		if e.Match != nil {
			for _, t := range ee.candidates() {
				if e.Match(t) {
					wanted[t.EntityID()] = true
				}
			}
		}
	}
	changed := len(wanted) != len(e.applied)
	if !changed {
		for id := range wanted {
			if !e.applied[id] {
				changed = true
				break
			}
		}
	}
	e.applied = wanted
	return changed
}

func (ee *EffectEngine) candidates() []EffectTarget {
	var out []EffectTarget
	for _, p := range ee.game.players {
		out = append(out, p)
		for _, c := range p.AllCards() {
			out = append(out, c)
		}
		for _, c := range p.Provinces() {
			out = append(out, c)
		}
	}
	for _, e := range Elements {
		if r := ee.game.rings[e]; r != nil {
			out = append(out, r)
		}
	}
	if c := ee.game.currentConflict; c != nil {
		out = append(out, c)
	}
	return out
}

func (ee *EffectEngine) filter(keep func(*Effect) bool) {
	kept := ee.effects[:0]
	for _, e := range ee.effects {
		if keep(e) {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(ee.effects); i++ {
		ee.effects[i] = nil
	}
	ee.effects = kept
}

// Get returns the values of the named effects applying to target, oldest
// first.
func (ee *EffectEngine) Get(target EffectTarget, name EffectName) []any {
	var out []any
	for _, e := range ee.effects {
		if e.Effect.Name == name && e.AppliesTo(target) {
			out = append(out, e.value(target))
		}
	}
	return out
}

// Any reports whether a named effect applies to target.
func (ee *EffectEngine) Any(target EffectTarget, name EffectName) bool {
	for _, e := range ee.effects {
		if e.Effect.Name == name && e.AppliesTo(target) {
			return true
		}
	}
	return false
}

// MostRecent returns the value of the newest named effect on target.
func (ee *EffectEngine) MostRecent(target EffectTarget, name EffectName) (any, bool) {
	var (
		best  *Effect
		value any
	)
	for _, e := range ee.effects {
		if e.Effect.Name == name && e.AppliesTo(target) && (best == nil || e.order > best.order) {
			best = e
		}
	}
	if best == nil {
		return nil, false
	}
	value = best.value(target)
	return value, true
}

// SumInt adds up the integer values of the named effects on target.
func (ee *EffectEngine) SumInt(target EffectTarget, name EffectName) int {
	total := 0
	for _, v := range ee.Get(target, name) {
		if n, ok := v.(int); ok {
			total += n
		}
	}
	return total
}

func (ee *EffectEngine) checkRestrictions(target EffectTarget, actionType string, ctx *AbilityContext) bool {
	for _, v := range ee.Get(target, EffectRestriction) {
		if r, ok := v.(Restriction); ok && r.Forbids(actionType, ctx) {
			return false
		}
	}
	return true
}

// onEvent expires custom-duration effects whose until predicate matches the
// applied event.
func (ee *EffectEngine) onEvent(event *Event) {
	ee.filter(func(e *Effect) bool {
		if e.Duration != DurationCustom || e.Until == nil {
			return true
		}
		pred, ok := e.Until[event.Name]
		if !ok {
			return true
		}
		return pred != nil && !pred(event)
	})
}

// EndConflict expires effects lasting until the end of the conflict.
func (ee *EffectEngine) EndConflict() {
	ee.expire(DurationUntilEndOfConflict)
}

// EndPhase expires effects lasting until the end of the phase.
func (ee *EffectEngine) EndPhase() {
	ee.expire(DurationUntilEndOfPhase)
}

// EndRound expires effects lasting until the end of the round.
func (ee *EffectEngine) EndRound() {
	ee.expire(DurationUntilEndOfPhase, DurationUntilEndOfRound)
}

func (ee *EffectEngine) expire(durations ...Duration) {
	ee.filter(func(e *Effect) bool {
		for _, d := range durations {
			if e.Duration == d {
				return false
			}
		}
		return true
	})
}
