package actions

import (
	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// CardProperties are the properties every card action takes.
type CardProperties struct {
	// Target defaults to the context's chosen card target, then to the
	// source card.
	Target   game.Value
	Optional bool
}

func (p CardProperties) cardBase() CardProperties { return p }

func (p CardProperties) withCardBase(b CardProperties) CardProperties { return b }

type cardProps[P any] interface {
	cardBase() CardProperties
	withCardBase(CardProperties) P
}

func applyOverrides(target *game.Value, optional *bool, o game.Overrides) {
	if !o.Target.IsEmpty() {
		*target = o.Target
	}
	if o.Optional != nil {
		*optional = *o.Optional
	}
}

func defaultCardTarget(ctx *game.AbilityContext) game.Value {
	switch ctx.Target.Kind() {
	case game.ValueCard, game.ValueCards:
		if !ctx.Target.IsEmpty() {
			return ctx.Target
		}
	}
	return game.CardValue(ctx.SourceCard())
}

// CardAction is a game action applied to one or more cards. Each affected
// card gets its own event.
type CardAction[P cardProps[P]] struct {
	name        string
	eventName   rules.EventName
	effect      string
	targetTypes []game.CardType
	props       Properties[P]
	defaults    func(P) P
	allow       func(card *game.Card, ctx *game.AbilityContext, p P) bool
	fill        func(event *game.Event, card *game.Card, p P)
	apply       func(event *game.Event, p P)
}

func (a *CardAction[P]) Name() string               { return a.name }
func (a *CardAction[P]) EventName() rules.EventName { return a.eventName }

// GetProperties merges defaults, the action's properties and the call-site
// overrides, in increasing precedence.
func (a *CardAction[P]) GetProperties(ctx *game.AbilityContext, o game.Overrides) P {
	p := a.props.Evaluate(ctx)
	if a.defaults != nil {
		p = a.defaults(p)
	}
	b := p.cardBase()
	if b.Target.IsEmpty() {
		b.Target = defaultCardTarget(ctx)
	}
	applyOverrides(&b.Target, &b.Optional, o)
	return p.withCardBase(b)
}

// Effect returns the match log fragment describing the action.
func (a *CardAction[P]) Effect(ctx *game.AbilityContext) (string, []any) {
	return a.effect, []any{a.GetProperties(ctx, game.Overrides{}).cardBase().Target}
}

func (a *CardAction[P]) canAffectCard(card *game.Card, ctx *game.AbilityContext, p P) bool {
	if card == nil {
		return false
	}
	if len(a.targetTypes) > 0 && !cardTypeIn(card.Type(), a.targetTypes) {
		return false
	}
	if !card.AllowGameAction(a.name, ctx) {
		return false
	}
	return a.allow == nil || a.allow(card, ctx, p)
}

func (a *CardAction[P]) CanAffect(target game.Value, ctx *game.AbilityContext, o game.Overrides) bool {
	cards := target.Cards()
	if len(cards) == 0 {
		return false
	}
	p := a.GetProperties(ctx, o)
	for _, card := range cards {
		if !a.canAffectCard(card, ctx, p) {
			return false
		}
	}
	return true
}

func (a *CardAction[P]) HasLegalTarget(ctx *game.AbilityContext, o game.Overrides) bool {
	p := a.GetProperties(ctx, o)
	for _, card := range p.cardBase().Target.Cards() {
		if a.canAffectCard(card, ctx, p) {
			return true
		}
	}
	return false
}

func (a *CardAction[P]) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	p := a.GetProperties(ctx, o)
	for _, card := range p.cardBase().Target.Cards() {
		if !a.canAffectCard(card, ctx, p) {
			continue
		}
		e := game.NewActionEvent(a, game.EventParams{Context: ctx, Card: card}, o)
		if a.fill != nil {
			a.fill(e, card, p)
		}
		*events = append(*events, e)
	}
}

func (a *CardAction[P]) EventHandler(event *game.Event) {
	a.apply(event, a.GetProperties(event.Context, event.Overrides))
}

func (a *CardAction[P]) CheckEventCondition(event *game.Event) bool {
	return a.canAffectCard(event.Card, event.Context, a.GetProperties(event.Context, event.Overrides))
}

func cardTypeIn(t game.CardType, set []game.CardType) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}

var (
	inPlayTypes    = []game.CardType{game.CardTypeCharacter, game.CardTypeAttachment}
	characterTypes = []game.CardType{game.CardTypeCharacter}
	provinceTypes  = []game.CardType{game.CardTypeProvince}
)

func inPlay(card *game.Card) bool { return card.Location == game.LocationPlayArea }

// Bow bows characters and attachments in play.
func Bow(props Properties[CardProperties]) *CardAction[CardProperties] {
	return &CardAction[CardProperties]{
		name:        "bow",
		eventName:   rules.EventCardBowed,
		effect:      "bow {0}",
		targetTypes: inPlayTypes,
		props:       props,
		allow: func(card *game.Card, _ *game.AbilityContext, _ CardProperties) bool {
			return inPlay(card) && !card.Bowed
		},
		apply: func(e *game.Event, _ CardProperties) { e.Card.Bowed = true },
	}
}

// Ready readies bowed characters and attachments.
func Ready(props Properties[CardProperties]) *CardAction[CardProperties] {
	return &CardAction[CardProperties]{
		name:        "ready",
		eventName:   rules.EventCardReadied,
		effect:      "ready {0}",
		targetTypes: inPlayTypes,
		props:       props,
		allow: func(card *game.Card, _ *game.AbilityContext, _ CardProperties) bool {
			return inPlay(card) && card.Bowed
		},
		apply: func(e *game.Event, _ CardProperties) { e.Card.Bowed = false },
	}
}

// Honor honors a character, or removes its dishonored status.
func Honor(props Properties[CardProperties]) *CardAction[CardProperties] {
	return &CardAction[CardProperties]{
		name:        "honor",
		eventName:   rules.EventCardHonored,
		effect:      "honor {0}",
		targetTypes: characterTypes,
		props:       props,
		allow: func(card *game.Card, ctx *game.AbilityContext, _ CardProperties) bool {
			if !inPlay(card) || card.Honored {
				return false
			}
			return card.Dishonored || card.CheckRestrictions(game.RestrictionReceiveHonorToken, ctx)
		},
		apply: func(e *game.Event, _ CardProperties) {
			if e.Card.Dishonored {
				e.Card.Dishonored = false
				return
			}
			e.Card.Honored = true
		},
	}
}

// Dishonor dishonors a character, or removes its honored status.
func Dishonor(props Properties[CardProperties]) *CardAction[CardProperties] {
	return &CardAction[CardProperties]{
		name:        "dishonor",
		eventName:   rules.EventCardDishonored,
		effect:      "dishonor {0}",
		targetTypes: characterTypes,
		props:       props,
		allow: func(card *game.Card, ctx *game.AbilityContext, _ CardProperties) bool {
			if !inPlay(card) || card.Dishonored {
				return false
			}
			return card.Honored || card.CheckRestrictions(game.RestrictionReceiveDishonorToken, ctx)
		},
		apply: func(e *game.Event, _ CardProperties) {
			if e.Card.Honored {
				e.Card.Honored = false
				return
			}
			e.Card.Dishonored = true
		},
	}
}

// Taint taints a character or a province.
func Taint(props Properties[CardProperties]) *CardAction[CardProperties] {
	return &CardAction[CardProperties]{
		name:        "taint",
		eventName:   rules.EventCardTainted,
		effect:      "taint {0}",
		targetTypes: []game.CardType{game.CardTypeCharacter, game.CardTypeProvince},
		props:       props,
		allow: func(card *game.Card, _ *game.AbilityContext, _ CardProperties) bool {
			return card.IsInPlay() && !card.Tainted
		},
		apply: func(e *game.Event, _ CardProperties) { e.Card.Tainted = true },
	}
}

func discardPile(card *game.Card) game.Location {
	if card.Definition.Side == "dynasty" {
		return game.LocationDynastyDiscard
	}
	return game.LocationConflictDiscard
}

func leavePlay(e *game.Event, destination game.Location) {
	card := e.Card
	g := card.Game()
	g.Effects().RemoveFromSource(card)
	card.Owner().MoveCard(card, destination)
}

// DiscardFromPlay discards characters and attachments from play.
func DiscardFromPlay(props Properties[CardProperties]) *CardAction[CardProperties] {
	return &CardAction[CardProperties]{
		name:        "discardFromPlay",
		eventName:   rules.EventCardLeavesPlay,
		effect:      "discard {0}",
		targetTypes: inPlayTypes,
		props:       props,
		allow: func(card *game.Card, _ *game.AbilityContext, _ CardProperties) bool {
			return inPlay(card)
		},
		fill: func(e *game.Event, card *game.Card, _ CardProperties) {
			e.Location = discardPile(card)
		},
		apply: func(e *game.Event, _ CardProperties) { leavePlay(e, e.Location) },
	}
}

// Sacrifice discards a card its controller controls from play.
func Sacrifice(props Properties[CardProperties]) *CardAction[CardProperties] {
	return &CardAction[CardProperties]{
		name:        "sacrifice",
		eventName:   rules.EventCardLeavesPlay,
		effect:      "sacrifice {0}",
		targetTypes: inPlayTypes,
		props:       props,
		allow: func(card *game.Card, ctx *game.AbilityContext, _ CardProperties) bool {
			return inPlay(card) && card.Controller() == ctx.Player
		},
		fill: func(e *game.Event, card *game.Card, _ CardProperties) {
			e.Location = discardPile(card)
		},
		apply: func(e *game.Event, _ CardProperties) { leavePlay(e, e.Location) },
	}
}

// ReturnToHand returns a conflict-side card in play to its owner's hand.
func ReturnToHand(props Properties[CardProperties]) *CardAction[CardProperties] {
	return &CardAction[CardProperties]{
		name:        "returnToHand",
		eventName:   rules.EventCardReturnedToHand,
		effect:      "return {0} to hand",
		targetTypes: inPlayTypes,
		props:       props,
		allow: func(card *game.Card, _ *game.AbilityContext, _ CardProperties) bool {
			return inPlay(card) && card.Definition.Side != "dynasty"
		},
		apply: func(e *game.Event, _ CardProperties) { leavePlay(e, game.LocationHand) },
	}
}

// DiscardCard discards cards that are not in play, such as cards in hand.
func DiscardCard(props Properties[CardProperties]) *CardAction[CardProperties] {
	return &CardAction[CardProperties]{
		name:      "discardCard",
		eventName: rules.EventCardDiscarded,
		effect:    "discard {0}",
		props:     props,
		allow: func(card *game.Card, _ *game.AbilityContext, _ CardProperties) bool {
			switch card.Location {
			case game.LocationPlayArea, game.LocationConflictDiscard, game.LocationDynastyDiscard, game.LocationRemovedFromGame:
				return false
			}
			return card.Type() != game.CardTypeProvince && card.Type() != game.CardTypeStronghold
		},
		apply: func(e *game.Event, _ CardProperties) {
			e.Card.Owner().MoveCard(e.Card, discardPile(e.Card))
		},
	}
}

// SendHome removes a participating character from the conflict.
func SendHome(props Properties[CardProperties]) *CardAction[CardProperties] {
	return &CardAction[CardProperties]{
		name:        "sendHome",
		eventName:   rules.EventSendHome,
		effect:      "send {0} home",
		targetTypes: characterTypes,
		props:       props,
		allow: func(card *game.Card, ctx *game.AbilityContext, _ CardProperties) bool {
			conflict := ctx.Conflict()
			return conflict != nil && (conflict.IsAttacking(card) || conflict.IsDefending(card)) &&
				card.CheckRestrictions(game.RestrictionSendHome, ctx)
		},
		apply: func(e *game.Event, _ CardProperties) {
			if conflict := e.Card.Game().CurrentConflict(); conflict != nil {
				conflict.RemoveFromConflict(e.Card)
			}
		},
	}
}

// MoveToConflict moves a character at home into the conflict on its
// controller's side.
func MoveToConflict(props Properties[CardProperties]) *CardAction[CardProperties] {
	return &CardAction[CardProperties]{
		name:        "moveToConflict",
		eventName:   rules.EventMoveToConflict,
		effect:      "move {0} into the conflict",
		targetTypes: characterTypes,
		props:       props,
		allow: func(card *game.Card, ctx *game.AbilityContext, _ CardProperties) bool {
			conflict := ctx.Conflict()
			if conflict == nil || !card.IsAtHome() || conflict.IsAttacking(card) || conflict.IsDefending(card) {
				return false
			}
			if !card.CheckRestrictions(game.RestrictionMoveToConflict, ctx) {
				return false
			}
			switch card.Controller() {
			case conflict.AttackingPlayer:
				return card.CanParticipateAsAttacker(conflict.ConflictType())
			case conflict.DefendingPlayer:
				return card.CanParticipateAsDefender(conflict.ConflictType())
			}
			return false
		},
		apply: func(e *game.Event, _ CardProperties) {
			conflict := e.Card.Game().CurrentConflict()
			if conflict == nil {
				return
			}
			if e.Card.Controller() == conflict.AttackingPlayer {
				conflict.AddAttacker(e.Card)
			} else {
				conflict.AddDefender(e.Card)
			}
		},
	}
}

// Break breaks a province.
func Break(props Properties[CardProperties]) *CardAction[CardProperties] {
	return &CardAction[CardProperties]{
		name:        "break",
		eventName:   rules.EventBreakProvince,
		effect:      "break {0}",
		targetTypes: provinceTypes,
		props:       props,
		allow: func(card *game.Card, _ *game.AbilityContext, _ CardProperties) bool {
			return card.Location.IsProvince() && !card.IsBroken
		},
		fill: func(e *game.Event, card *game.Card, _ CardProperties) {
			e.Conflict = card.Game().CurrentConflict()
		},
		apply: func(e *game.Event, _ CardProperties) {
			e.Card.IsBroken = true
			e.Card.Game().AddMessage("{0} has been broken", e.Card)
		},
	}
}

// FateProperties move fate onto or off a card.
type FateProperties struct {
	CardProperties
	// Amount defaults to 1.
	Amount int
	// Origin pays the fate placed (a player or a ring); nil creates it.
	Origin game.EffectTarget
	// Recipient receives the fate removed; nil returns it to the supply.
	Recipient game.EffectTarget
}

func (p FateProperties) withCardBase(b CardProperties) FateProperties {
	p.CardProperties = b
	return p
}

func fateDefaults(p FateProperties) FateProperties {
	if p.Amount == 0 {
		p.Amount = 1
	}
	return p
}

func availableFate(target game.EffectTarget) (int, bool) {
	switch t := target.(type) {
	case *game.Player:
		return t.Fate, true
	case *game.Ring:
		return t.Fate, true
	case *game.Card:
		return t.Fate, true
	}
	return 0, false
}

func moveFate(target game.EffectTarget, amount int) {
	switch t := target.(type) {
	case *game.Player:
		t.ModifyFate(amount)
	case *game.Ring:
		t.ModifyFate(amount)
	case *game.Card:
		t.Fate = max(t.Fate+amount, 0)
	}
}

// PlaceFate places fate on characters in play.
func PlaceFate(props Properties[FateProperties]) *CardAction[FateProperties] {
	return &CardAction[FateProperties]{
		name:        "placeFate",
		eventName:   rules.EventMoveFate,
		effect:      "place fate on {0}",
		targetTypes: characterTypes,
		props:       props,
		defaults:    fateDefaults,
		allow: func(card *game.Card, ctx *game.AbilityContext, p FateProperties) bool {
			if !inPlay(card) || p.Amount <= 0 {
				return false
			}
			if p.Origin != nil {
				fate, ok := availableFate(p.Origin)
				if !ok || fate == 0 {
					return false
				}
			}
			return true
		},
		fill: func(e *game.Event, card *game.Card, p FateProperties) {
			e.Fate = p.Amount
			if p.Origin != nil {
				fate, _ := availableFate(p.Origin)
				e.Fate = min(p.Amount, fate)
			}
			e.Origin = p.Origin
			e.Recipient = card
		},
		apply: func(e *game.Event, _ FateProperties) {
			if e.Origin != nil {
				moveFate(e.Origin, -e.Fate)
			}
			e.Card.Fate += e.Fate
		},
	}
}

// RemoveFate removes fate from characters.
func RemoveFate(props Properties[FateProperties]) *CardAction[FateProperties] {
	return &CardAction[FateProperties]{
		name:        "removeFate",
		eventName:   rules.EventMoveFate,
		effect:      "remove fate from {0}",
		targetTypes: characterTypes,
		props:       props,
		defaults:    fateDefaults,
		allow: func(card *game.Card, _ *game.AbilityContext, p FateProperties) bool {
			return inPlay(card) && card.Fate > 0 && p.Amount > 0
		},
		fill: func(e *game.Event, card *game.Card, p FateProperties) {
			e.Fate = min(p.Amount, card.Fate)
			e.Origin = card
			e.Recipient = p.Recipient
		},
		apply: func(e *game.Event, _ FateProperties) {
			fate := min(e.Fate, e.Card.Fate)
			e.Fate = fate
			e.Card.Fate -= fate
			if e.Recipient != nil {
				moveFate(e.Recipient, fate)
			}
		},
	}
}
