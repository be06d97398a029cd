package actions

import (
	"math/rand/v2"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// PlayerProperties are the properties every player action takes.
type PlayerProperties struct {
	// Target defaults to the acting player, or to the opponent for actions
	// that take from them.
	Target   game.Value
	Optional bool
}

func (p PlayerProperties) playerBase() PlayerProperties { return p }

func (p PlayerProperties) withPlayerBase(b PlayerProperties) PlayerProperties { return b }

type playerProps[P any] interface {
	playerBase() PlayerProperties
	withPlayerBase(PlayerProperties) P
}

// PlayerAction is a game action applied to a player.
type PlayerAction[P playerProps[P]] struct {
	name       string
	eventName  rules.EventName
	effect     string
	props      Properties[P]
	defaults   func(P) P
	toOpponent bool
	allow      func(player *game.Player, ctx *game.AbilityContext, p P) bool
	fill       func(event *game.Event, player *game.Player, p P)
	apply      func(event *game.Event, p P)
}

func (a *PlayerAction[P]) Name() string               { return a.name }
func (a *PlayerAction[P]) EventName() rules.EventName { return a.eventName }

func (a *PlayerAction[P]) GetProperties(ctx *game.AbilityContext, o game.Overrides) P {
	p := a.props.Evaluate(ctx)
	if a.defaults != nil {
		p = a.defaults(p)
	}
	b := p.playerBase()
	if b.Target.IsEmpty() {
		target := ctx.Player
		if a.toOpponent && target != nil {
			target = target.Opponent()
		}
		if target != nil {
			b.Target = game.PlayerValue(target)
		}
	}
	applyOverrides(&b.Target, &b.Optional, o)
	return p.withPlayerBase(b)
}

// Effect returns the match log fragment describing the action.
func (a *PlayerAction[P]) Effect(ctx *game.AbilityContext) (string, []any) {
	return a.effect, []any{a.GetProperties(ctx, game.Overrides{}).playerBase().Target}
}

func (a *PlayerAction[P]) canAffectPlayer(player *game.Player, ctx *game.AbilityContext, p P) bool {
	if player == nil || player.IsDummy() {
		return false
	}
	if !player.AllowGameAction(a.name, ctx) {
		return false
	}
	return a.allow == nil || a.allow(player, ctx, p)
}

func (a *PlayerAction[P]) CanAffect(target game.Value, ctx *game.AbilityContext, o game.Overrides) bool {
	return a.canAffectPlayer(target.Player(), ctx, a.GetProperties(ctx, o))
}

func (a *PlayerAction[P]) HasLegalTarget(ctx *game.AbilityContext, o game.Overrides) bool {
	p := a.GetProperties(ctx, o)
	return a.canAffectPlayer(p.playerBase().Target.Player(), ctx, p)
}

func (a *PlayerAction[P]) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	p := a.GetProperties(ctx, o)
	player := p.playerBase().Target.Player()
	if !a.canAffectPlayer(player, ctx, p) {
		return
	}
	e := game.NewActionEvent(a, game.EventParams{Context: ctx, Player: player}, o)
	if a.fill != nil {
		a.fill(e, player, p)
	}
	*events = append(*events, e)
}

func (a *PlayerAction[P]) EventHandler(event *game.Event) {
	a.apply(event, a.GetProperties(event.Context, event.Overrides))
}

func (a *PlayerAction[P]) CheckEventCondition(event *game.Event) bool {
	return a.canAffectPlayer(event.Player, event.Context, a.GetProperties(event.Context, event.Overrides))
}

// AmountProperties are player properties with an amount.
type AmountProperties struct {
	PlayerProperties
	// Amount defaults to 1.
	Amount int
}

func (p AmountProperties) withPlayerBase(b PlayerProperties) AmountProperties {
	p.PlayerProperties = b
	return p
}

func amountDefaults(p AmountProperties) AmountProperties {
	if p.Amount == 0 {
		p.Amount = 1
	}
	return p
}

func positive(_ *game.Player, _ *game.AbilityContext, p AmountProperties) bool {
	return p.Amount > 0
}

// GainFate gives fate from the supply.
func GainFate(props Properties[AmountProperties]) *PlayerAction[AmountProperties] {
	return &PlayerAction[AmountProperties]{
		name:      "gainFate",
		eventName: rules.EventModifyFate,
		effect:    "gain fate",
		props:     props,
		defaults:  amountDefaults,
		allow:     positive,
		fill: func(e *game.Event, _ *game.Player, p AmountProperties) {
			e.Amount = p.Amount
		},
		apply: func(e *game.Event, _ AmountProperties) { e.Player.ModifyFate(e.Amount) },
	}
}

// LoseFate returns fate to the supply.
func LoseFate(props Properties[AmountProperties]) *PlayerAction[AmountProperties] {
	return &PlayerAction[AmountProperties]{
		name:      "loseFate",
		eventName: rules.EventModifyFate,
		effect:    "make {0} lose fate",
		props:     props,
		defaults:  amountDefaults,
		allow: func(player *game.Player, ctx *game.AbilityContext, p AmountProperties) bool {
			return p.Amount > 0 && player.Fate > 0
		},
		fill: func(e *game.Event, player *game.Player, p AmountProperties) {
			e.Amount = -min(p.Amount, player.Fate)
		},
		apply: func(e *game.Event, _ AmountProperties) { e.Player.ModifyFate(e.Amount) },
	}
}

// GainHonor gives honor from the general supply.
func GainHonor(props Properties[AmountProperties]) *PlayerAction[AmountProperties] {
	return &PlayerAction[AmountProperties]{
		name:      "gainHonor",
		eventName: rules.EventModifyHonor,
		effect:    "gain honor",
		props:     props,
		defaults:  amountDefaults,
		allow: func(player *game.Player, ctx *game.AbilityContext, p AmountProperties) bool {
			return p.Amount > 0 && player.CheckRestrictions(game.RestrictionGainHonor, ctx)
		},
		fill: func(e *game.Event, _ *game.Player, p AmountProperties) {
			e.Amount = p.Amount
		},
		apply: func(e *game.Event, _ AmountProperties) { e.Player.ModifyHonor(e.Amount) },
	}
}

// LoseHonor returns honor to the general supply.
func LoseHonor(props Properties[AmountProperties]) *PlayerAction[AmountProperties] {
	return &PlayerAction[AmountProperties]{
		name:      "loseHonor",
		eventName: rules.EventModifyHonor,
		effect:    "make {0} lose honor",
		props:     props,
		defaults:  amountDefaults,
		allow: func(player *game.Player, ctx *game.AbilityContext, p AmountProperties) bool {
			return p.Amount > 0 && player.CheckRestrictions(game.RestrictionLoseHonor, ctx)
		},
		fill: func(e *game.Event, _ *game.Player, p AmountProperties) {
			e.Amount = -p.Amount
		},
		apply: func(e *game.Event, _ AmountProperties) {
			e.Player.ModifyHonor(e.Amount)
			e.Player.Game().CheckGameState(true)
		},
	}
}

// TakeFate moves fate from the target (the opponent by default) to the
// acting player.
func TakeFate(props Properties[AmountProperties]) *PlayerAction[AmountProperties] {
	return &PlayerAction[AmountProperties]{
		name:       "takeFate",
		eventName:  rules.EventMoveFate,
		effect:     "take fate from {0}",
		props:      props,
		defaults:   amountDefaults,
		toOpponent: true,
		allow: func(player *game.Player, ctx *game.AbilityContext, p AmountProperties) bool {
			return p.Amount > 0 && player.Fate > 0 && player != ctx.Player
		},
		fill: func(e *game.Event, player *game.Player, p AmountProperties) {
			e.Fate = min(p.Amount, player.Fate)
			e.Origin = player
			if e.Context.Player != nil {
				e.Recipient = e.Context.Player
			}
		},
		apply: func(e *game.Event, _ AmountProperties) {
			fate := min(e.Fate, e.Player.Fate)
			e.Player.ModifyFate(-fate)
			if e.Context.Player != nil {
				e.Context.Player.ModifyFate(fate)
			}
		},
	}
}

// TakeHonor transfers honor from the target (the opponent by default) to
// the acting player.
func TakeHonor(props Properties[AmountProperties]) *PlayerAction[AmountProperties] {
	return &PlayerAction[AmountProperties]{
		name:       "takeHonor",
		eventName:  rules.EventTransferHonor,
		effect:     "take honor from {0}",
		props:      props,
		defaults:   amountDefaults,
		toOpponent: true,
		allow: func(player *game.Player, ctx *game.AbilityContext, p AmountProperties) bool {
			return p.Amount > 0 && player != ctx.Player &&
				player.CheckRestrictions(game.RestrictionTakeHonor, ctx) &&
				player.CheckRestrictions(game.RestrictionLoseHonor, ctx)
		},
		fill: func(e *game.Event, player *game.Player, p AmountProperties) {
			e.Amount = p.Amount
			e.Origin = player
			if e.Context.Player != nil {
				e.Recipient = e.Context.Player
			}
		},
		apply: func(e *game.Event, _ AmountProperties) {
			transferHonor(e.Player, e.Context.Player, e.Amount)
		},
	}
}

func transferHonor(from, to *game.Player, amount int) {
	amount = min(amount, from.Honor)
	from.ModifyHonor(-amount)
	if to != nil {
		to.ModifyHonor(amount)
	}
	from.Game().CheckGameState(true)
}

// Draw draws conflict cards.
func Draw(props Properties[AmountProperties]) *PlayerAction[AmountProperties] {
	return &PlayerAction[AmountProperties]{
		name:      "draw",
		eventName: rules.EventCardDrawn,
		effect:    "draw cards",
		props:     props,
		defaults:  amountDefaults,
		allow:     positive,
		fill: func(e *game.Event, _ *game.Player, p AmountProperties) {
			e.Amount = p.Amount
		},
		apply: func(e *game.Event, _ AmountProperties) {
			e.Cards = e.Player.DrawCards(e.Amount)
		},
	}
}

// FavorProperties name the side of the imperial favor claimed.
type FavorProperties struct {
	PlayerProperties
	// Side defaults to both sides.
	Side game.Favor
}

func (p FavorProperties) withPlayerBase(b PlayerProperties) FavorProperties {
	p.PlayerProperties = b
	return p
}

// ClaimImperialFavor gives the imperial favor to the target, taking it from
// the opponent if needed.
func ClaimImperialFavor(props Properties[FavorProperties]) *PlayerAction[FavorProperties] {
	return &PlayerAction[FavorProperties]{
		name:      "claimImperialFavor",
		eventName: rules.EventClaimFavor,
		effect:    "claim the imperial favor",
		props:     props,
		defaults: func(p FavorProperties) FavorProperties {
			if p.Side == "" {
				p.Side = game.FavorBoth
			}
			return p
		},
		allow: func(player *game.Player, _ *game.AbilityContext, p FavorProperties) bool {
			return player.ImperialFavor != p.Side
		},
		apply: func(e *game.Event, p FavorProperties) {
			if opponent := e.Player.Opponent(); opponent != nil && opponent.ImperialFavor != game.FavorNone {
				opponent.LoseImperialFavor()
			}
			e.Player.ClaimImperialFavor(p.Side)
		},
	}
}

// LoseImperialFavor removes the imperial favor from the target.
func LoseImperialFavor(props Properties[PlayerProperties]) *PlayerAction[PlayerProperties] {
	return &PlayerAction[PlayerProperties]{
		name:      "loseImperialFavor",
		eventName: rules.EventLoseFavor,
		effect:    "make {0} lose the imperial favor",
		props:     props,
		allow: func(player *game.Player, _ *game.AbilityContext, _ PlayerProperties) bool {
			return player.ImperialFavor != game.FavorNone
		},
		apply: func(e *game.Event, _ PlayerProperties) { e.Player.LoseImperialFavor() },
	}
}

// DiscardAtRandom discards cards at random from the target's hand (the
// opponent by default).
func DiscardAtRandom(props Properties[AmountProperties]) *PlayerAction[AmountProperties] {
	return &PlayerAction[AmountProperties]{
		name:       "discardAtRandom",
		eventName:  rules.EventCardDiscarded,
		effect:     "make {0} discard cards at random",
		props:      props,
		defaults:   amountDefaults,
		toOpponent: true,
		allow: func(player *game.Player, _ *game.AbilityContext, p AmountProperties) bool {
			return p.Amount > 0 && len(player.CardsIn(game.LocationHand)) > 0
		},
		fill: func(e *game.Event, player *game.Player, p AmountProperties) {
			hand := player.CardsIn(game.LocationHand)
			rand.Shuffle(len(hand), func(i, j int) { hand[i], hand[j] = hand[j], hand[i] })
			e.Cards = hand[:min(p.Amount, len(hand))]
			e.Amount = len(e.Cards)
		},
		apply: func(e *game.Event, _ AmountProperties) {
			for _, card := range e.Cards {
				if card.Location != game.LocationHand {
					continue
				}
				e.Player.MoveCard(card, discardPile(card))
			}
			e.Player.Game().AddMessage("{0} discards {1} at random", e.Player, e.Cards)
		},
	}
}
