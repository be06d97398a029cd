package effects

import (
	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// Builder provides a fluent API for registering effects on behalf of an
// ability. Effects last while their source stays in play unless a shorter
// duration is chosen.
type Builder struct {
	ctx   *game.AbilityContext
	props game.EffectProperties
}

// For starts an effect sourced from ctx's source.
func For(ctx *game.AbilityContext) *Builder {
	return &Builder{
		ctx: ctx,
		props: game.EffectProperties{
			Source:   ctx.Source,
			Context:  ctx,
			Duration: game.DurationPersistent,
		},
	}
}

// Targeting sets the fixed targets.
func (b *Builder) Targeting(targets ...game.EffectTarget) *Builder {
	b.props.Targets = targets
	return b
}

// Matching applies the effect to every card, player, ring or conflict the
// predicate accepts, re-evaluated whenever effects are checked.
func (b *Builder) Matching(match func(target game.EffectTarget) bool) *Builder {
	b.props.Match = match
	return b
}

// While suspends the effect whenever condition is false.
func (b *Builder) While(condition func() bool) *Builder {
	b.props.Condition = condition
	return b
}

func (b *Builder) UntilEndOfConflict() *Builder {
	b.props.Duration = game.DurationUntilEndOfConflict
	return b
}

func (b *Builder) UntilEndOfPhase() *Builder {
	b.props.Duration = game.DurationUntilEndOfPhase
	return b
}

func (b *Builder) UntilEndOfRound() *Builder {
	b.props.Duration = game.DurationUntilEndOfRound
	return b
}

// Until lasts until an event matching one of the predicates resolves.
func (b *Builder) Until(until map[rules.EventName]func(*game.Event) bool) *Builder {
	b.props.Duration = game.DurationCustom
	b.props.Until = until
	return b
}

// Apply registers one effect per factory and returns them.
func (b *Builder) Apply(factories ...game.EffectFactory) []*game.Effect {
	out := make([]*game.Effect, 0, len(factories))
	for _, f := range factories {
		props := b.props
		props.Effect = f
		out = append(out, b.ctx.Game.Effects().Add(props))
	}
	return out
}
