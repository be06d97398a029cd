package actions

import (
	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// LastingEffect describes effects registered by the lasting effect actions.
type LastingEffect struct {
	Effects []game.EffectFactory
	// Duration defaults to the end of the conflict.
	Duration  game.Duration
	Condition func() bool
	// Until expires custom duration effects on matching events.
	Until map[rules.EventName]func(*game.Event) bool
}

func (l LastingEffect) withDefaults() LastingEffect {
	if l.Duration == "" {
		l.Duration = game.DurationUntilEndOfConflict
	}
	return l
}

func (l LastingEffect) register(ctx *game.AbilityContext, target game.EffectTarget) {
	for _, factory := range l.Effects {
		ctx.Game.Effects().Add(game.EffectProperties{
			Effect:    factory,
			Source:    ctx.Source,
			Context:   ctx,
			Targets:   []game.EffectTarget{target},
			Condition: l.Condition,
			Duration:  l.Duration,
			Until:     l.Until,
		})
	}
}

// LastingCardProperties configure CardLastingEffect.
type LastingCardProperties struct {
	CardProperties
	LastingEffect
}

func (p LastingCardProperties) withCardBase(b CardProperties) LastingCardProperties {
	p.CardProperties = b
	return p
}

// CardLastingEffect applies effects to cards in play.
func CardLastingEffect(props Properties[LastingCardProperties]) *CardAction[LastingCardProperties] {
	return &CardAction[LastingCardProperties]{
		name:      "applyLastingEffect",
		eventName: rules.EventEffectApplied,
		effect:    "apply a lasting effect to {0}",
		props:     props,
		defaults: func(p LastingCardProperties) LastingCardProperties {
			p.LastingEffect = p.LastingEffect.withDefaults()
			return p
		},
		allow: func(card *game.Card, _ *game.AbilityContext, p LastingCardProperties) bool {
			return card.IsInPlay() && len(p.Effects) > 0
		},
		fill: func(e *game.Event, _ *game.Card, p LastingCardProperties) {
			e.Effects = p.Effects
		},
		apply: func(e *game.Event, p LastingCardProperties) {
			p.LastingEffect.register(e.Context, e.Card)
		},
	}
}

// LastingPlayerProperties configure PlayerLastingEffect.
type LastingPlayerProperties struct {
	PlayerProperties
	LastingEffect
}

func (p LastingPlayerProperties) withPlayerBase(b PlayerProperties) LastingPlayerProperties {
	p.PlayerProperties = b
	return p
}

// PlayerLastingEffect applies effects to a player.
func PlayerLastingEffect(props Properties[LastingPlayerProperties]) *PlayerAction[LastingPlayerProperties] {
	return &PlayerAction[LastingPlayerProperties]{
		name:      "applyLastingEffect",
		eventName: rules.EventEffectApplied,
		effect:    "apply a lasting effect to {0}",
		props:     props,
		defaults: func(p LastingPlayerProperties) LastingPlayerProperties {
			p.LastingEffect = p.LastingEffect.withDefaults()
			return p
		},
		allow: func(_ *game.Player, _ *game.AbilityContext, p LastingPlayerProperties) bool {
			return len(p.Effects) > 0
		},
		fill: func(e *game.Event, _ *game.Player, p LastingPlayerProperties) {
			e.Effects = p.Effects
		},
		apply: func(e *game.Event, p LastingPlayerProperties) {
			p.LastingEffect.register(e.Context, e.Player)
		},
	}
}

// LastingRingProperties configure RingLastingEffect.
type LastingRingProperties struct {
	RingProperties
	LastingEffect
}

func (p LastingRingProperties) withRingBase(b RingProperties) LastingRingProperties {
	p.RingProperties = b
	return p
}

// RingLastingEffect applies effects to rings.
func RingLastingEffect(props Properties[LastingRingProperties]) *RingAction[LastingRingProperties] {
	return &RingAction[LastingRingProperties]{
		name:      "applyLastingEffect",
		eventName: rules.EventEffectApplied,
		effect:    "apply a lasting effect to {0}",
		props:     props,
		defaults: func(p LastingRingProperties) LastingRingProperties {
			p.LastingEffect = p.LastingEffect.withDefaults()
			return p
		},
		allow: func(ring *game.Ring, _ *game.AbilityContext, p LastingRingProperties) bool {
			return !ring.RemovedFromGame && len(p.Effects) > 0
		},
		fill: func(e *game.Event, _ *game.Ring, p LastingRingProperties) {
			e.Effects = p.Effects
		},
		apply: func(e *game.Event, p LastingRingProperties) {
			p.LastingEffect.register(e.Context, e.Ring)
		},
	}
}

// ConflictLastingEffectAction applies effects to the current conflict.
type ConflictLastingEffectAction struct {
	props Properties[LastingEffect]
}

// ConflictLastingEffect builds a ConflictLastingEffectAction.
func ConflictLastingEffect(props Properties[LastingEffect]) *ConflictLastingEffectAction {
	return &ConflictLastingEffectAction{props: props}
}

func (a *ConflictLastingEffectAction) Name() string               { return "applyLastingEffect" }
func (a *ConflictLastingEffectAction) EventName() rules.EventName { return rules.EventEffectApplied }

func (a *ConflictLastingEffectAction) GetProperties(ctx *game.AbilityContext, _ game.Overrides) LastingEffect {
	return a.props.Evaluate(ctx).withDefaults()
}

func (a *ConflictLastingEffectAction) CanAffect(_ game.Value, ctx *game.AbilityContext, o game.Overrides) bool {
	return a.HasLegalTarget(ctx, o)
}

func (a *ConflictLastingEffectAction) HasLegalTarget(ctx *game.AbilityContext, o game.Overrides) bool {
	return ctx.Conflict() != nil && len(a.GetProperties(ctx, o).Effects) > 0
}

func (a *ConflictLastingEffectAction) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	if !a.HasLegalTarget(ctx, o) {
		return
	}
	*events = append(*events, game.NewActionEvent(a, game.EventParams{
		Context:  ctx,
		Conflict: ctx.Conflict(),
		Effects:  a.GetProperties(ctx, o).Effects,
	}, o))
}

func (a *ConflictLastingEffectAction) EventHandler(event *game.Event) {
	a.GetProperties(event.Context, event.Overrides).register(event.Context, event.Conflict)
}

func (a *ConflictLastingEffectAction) CheckEventCondition(event *game.Event) bool {
	return event.Conflict != nil && event.Conflict == event.Context.Conflict()
}
