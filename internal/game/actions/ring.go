package actions

import (
	"sort"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// RingProperties are the properties every ring action takes.
type RingProperties struct {
	// Target defaults to the context's ring, then to a chosen ring target,
	// then to the contested ring.
	Target   game.Value
	Optional bool
}

func (p RingProperties) ringBase() RingProperties { return p }

func (p RingProperties) withRingBase(b RingProperties) RingProperties { return b }

type ringProps[P any] interface {
	ringBase() RingProperties
	withRingBase(RingProperties) P
}

func defaultRingTarget(ctx *game.AbilityContext) game.Value {
	if ctx.Ring != nil {
		return game.RingValue(ctx.Ring)
	}
	switch ctx.Target.Kind() {
	case game.ValueRing, game.ValueRings:
		if !ctx.Target.IsEmpty() {
			return ctx.Target
		}
	}
	if ring := ctx.SourceRing(); ring != nil {
		return game.RingValue(ring)
	}
	if conflict := ctx.Conflict(); conflict != nil && conflict.Ring != nil {
		return game.RingValue(conflict.Ring)
	}
	return game.Value{}
}

// RingAction is a game action applied to one or more rings.
type RingAction[P ringProps[P]] struct {
	name      string
	eventName rules.EventName
	effect    string
	props     Properties[P]
	defaults  func(P) P
	allow     func(ring *game.Ring, ctx *game.AbilityContext, p P) bool
	fill      func(event *game.Event, ring *game.Ring, p P)
	apply     func(event *game.Event, p P)
	// handle replaces event creation entirely, for actions whose event does
	// not map one to one onto a ring.
	handle func(events *[]*game.Event, rings []*game.Ring, ctx *game.AbilityContext, o game.Overrides, p P)
}

func (a *RingAction[P]) Name() string               { return a.name }
func (a *RingAction[P]) EventName() rules.EventName { return a.eventName }

func (a *RingAction[P]) GetProperties(ctx *game.AbilityContext, o game.Overrides) P {
	p := a.props.Evaluate(ctx)
	if a.defaults != nil {
		p = a.defaults(p)
	}
	b := p.ringBase()
	if b.Target.IsEmpty() {
		b.Target = defaultRingTarget(ctx)
	}
	applyOverrides(&b.Target, &b.Optional, o)
	return p.withRingBase(b)
}

// Effect returns the match log fragment describing the action.
func (a *RingAction[P]) Effect(ctx *game.AbilityContext) (string, []any) {
	return a.effect, []any{a.GetProperties(ctx, game.Overrides{}).ringBase().Target}
}

func (a *RingAction[P]) canAffectRing(ring *game.Ring, ctx *game.AbilityContext, p P) bool {
	if ring == nil {
		return false
	}
	return a.allow == nil || a.allow(ring, ctx, p)
}

func (a *RingAction[P]) CanAffect(target game.Value, ctx *game.AbilityContext, o game.Overrides) bool {
	rings := target.Rings()
	if len(rings) == 0 {
		return false
	}
	p := a.GetProperties(ctx, o)
	for _, ring := range rings {
		if !a.canAffectRing(ring, ctx, p) {
			return false
		}
	}
	return true
}

func (a *RingAction[P]) legalRings(ctx *game.AbilityContext, p P) []*game.Ring {
	var rings []*game.Ring
	for _, ring := range p.ringBase().Target.Rings() {
		if a.canAffectRing(ring, ctx, p) {
			rings = append(rings, ring)
		}
	}
	return rings
}

func (a *RingAction[P]) HasLegalTarget(ctx *game.AbilityContext, o game.Overrides) bool {
	return len(a.legalRings(ctx, a.GetProperties(ctx, o))) > 0
}

func (a *RingAction[P]) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	p := a.GetProperties(ctx, o)
	rings := a.legalRings(ctx, p)
	if len(rings) == 0 {
		return
	}
	if a.handle != nil {
		a.handle(events, rings, ctx, o, p)
		return
	}
	for _, ring := range rings {
		e := game.NewActionEvent(a, game.EventParams{Context: ctx, Ring: ring}, o)
		if a.fill != nil {
			a.fill(e, ring, p)
		}
		*events = append(*events, e)
	}
}

func (a *RingAction[P]) EventHandler(event *game.Event) {
	a.apply(event, a.GetProperties(event.Context, event.Overrides))
}

func (a *RingAction[P]) CheckEventCondition(event *game.Event) bool {
	if event.Ring == nil {
		return true
	}
	return a.canAffectRing(event.Ring, event.Context, a.GetProperties(event.Context, event.Overrides))
}

// ClaimRingProperties configure ClaimRing.
type ClaimRingProperties struct {
	RingProperties
	// SkipFate leaves the fate on the ring.
	SkipFate bool
	// Type is the conflict type the claimed ring is left on; military by
	// default.
	Type game.ConflictType
}

func (p ClaimRingProperties) withRingBase(b RingProperties) ClaimRingProperties {
	p.RingProperties = b
	return p
}

// ClaimRing gives the ring to the acting player, taking its fate.
func ClaimRing(props Properties[ClaimRingProperties]) *RingAction[ClaimRingProperties] {
	return &RingAction[ClaimRingProperties]{
		name:      "claimRing",
		eventName: rules.EventClaimRing,
		effect:    "claim {0}",
		props:     props,
		defaults: func(p ClaimRingProperties) ClaimRingProperties {
			if p.Type == "" {
				p.Type = game.ConflictMilitary
			}
			return p
		},
		allow: func(ring *game.Ring, ctx *game.AbilityContext, _ ClaimRingProperties) bool {
			if ctx.Player == nil || !ctx.Player.CheckRestrictions(game.RestrictionClaimRings, ctx) {
				return false
			}
			return !ring.RemovedFromGame && ring.ClaimedBy != ctx.Player.Name
		},
		apply: func(e *game.Event, p ClaimRingProperties) {
			ring, ctx := e.Ring, e.Context
			g := ctx.Game
			ring.Contested = false
			ring.ConflictType = p.Type
			if !p.SkipFate && ring.Fate > 0 && ctx.Player.CheckRestrictions(game.RestrictionTakeFateFromRings, ctx) {
				fate := ring.Fate
				g.AddMessage("{0} takes {1} fate from {2}", ctx.Player, fate, ring)
				ctx.Player.ModifyFate(fate)
				ring.RemoveFate()
				g.RaiseEvent(rules.EventMoveFate, game.EventParams{
					Context:   ctx,
					Fate:      fate,
					Origin:    ring,
					Recipient: ctx.Player,
				})
			}
			e.Player = ctx.Player
			e.Conflict = ctx.Conflict()
			ring.ClaimRing(ctx.Player)
		},
	}
}

// ResolveElementProperties configure ResolveElement.
type ResolveElementProperties struct {
	RingProperties
	// PhysicalRing is the ring whose elements are being resolved, when it
	// differs from the target rings (one target per element).
	PhysicalRing *game.Ring
	// Player resolves the effects; the acting player by default.
	Player *game.Player
}

func (p ResolveElementProperties) withRingBase(b RingProperties) ResolveElementProperties {
	p.RingProperties = b
	return p
}

func (p ResolveElementProperties) resolver(ctx *game.AbilityContext) *game.Player {
	if p.Player != nil {
		return p.Player
	}
	return ctx.Player
}

// ResolveElement resolves ring effects. Several rings resolve in one
// simultaneous window ordered by the resolving player.
func ResolveElement(props Properties[ResolveElementProperties]) *RingAction[ResolveElementProperties] {
	a := &RingAction[ResolveElementProperties]{
		name:      "resolveElement",
		eventName: rules.EventResolveRingElement,
		effect:    "resolve {0}",
		props:     props,
		allow: func(ring *game.Ring, _ *game.AbilityContext, _ ResolveElementProperties) bool {
			return !ring.RemovedFromGame
		},
	}
	a.apply = func(e *game.Event, p ResolveElementProperties) {
		ctx := e.Context
		// The restriction applies to whoever triggered the resolution, even
		// when another player resolves the effect.
		if ctx.Player != nil && ctx.Player.AnyEffect(game.EffectCannotResolveRings) {
			ctx.Game.AddMessage("{0}'s ring effect is cancelled.", ctx.Player)
			e.Cancel()
			return
		}
		player := e.Player
		if player == nil {
			player = p.resolver(ctx)
		}
		if player == nil {
			return
		}
		ctx.Game.ResolveAbility(RingEffectContext(player, e.Element, e.Optional))
	}
	a.handle = func(events *[]*game.Event, rings []*game.Ring, ctx *game.AbilityContext, o game.Overrides, p ResolveElementProperties) {
		player := p.resolver(ctx)
		optional := p.Optional
		if len(rings) > 1 {
			sortByPriority(rings, ctx.Player.FirstPlayer)
			optional = false
		}
		ringEvents := make([]*game.Event, 0, len(rings))
		for _, ring := range rings {
			physical := p.PhysicalRing
			if physical == nil {
				physical = ring
			}
			ringEvents = append(ringEvents, game.NewActionEvent(a, game.EventParams{
				Context:      ctx,
				Ring:         ring,
				PhysicalRing: physical,
				Element:      ring.Element,
				Player:       player,
				Optional:     optional,
			}, o))
		}
		if len(ringEvents) == 1 {
			*events = append(*events, ringEvents[0])
			return
		}
		*events = append(*events, game.NewActionEvent(&eventHandlerAction{
			name:  a.name,
			event: rules.EventUnnamed,
			fn: func(*game.Event) {
				choices := make([]game.SimultaneousChoice, 0, len(ringEvents))
				for _, re := range ringEvents {
					choices = append(choices, game.SimultaneousChoice{
						Title: re.Ring.Name() + " Effect",
						Handler: func() {
							ctx.Game.OpenThenEventWindow(re)
						},
					})
				}
				ctx.Game.OpenSimultaneousEffectWindow(player, choices)
			},
		}, game.EventParams{Context: ctx}, o))
	}
	return a
}

// sortByPriority orders rings by ring effect priority: ascending for the
// first player, descending otherwise.
func sortByPriority(rings []*game.Ring, firstPlayer bool) {
	sort.SliceStable(rings, func(i, j int) bool {
		pi, pj := RingPriority(rings[i].Element), RingPriority(rings[j].Element)
		if firstPlayer {
			return pi < pj
		}
		return pi > pj
	})
}

// PlaceFateOnRingProperties configure PlaceFateOnRing.
type PlaceFateOnRingProperties struct {
	RingProperties
	// Amount defaults to 1.
	Amount int
	// Origin pays the fate; nil creates it.
	Origin game.EffectTarget
}

func (p PlaceFateOnRingProperties) withRingBase(b RingProperties) PlaceFateOnRingProperties {
	p.RingProperties = b
	return p
}

// PlaceFateOnRing places fate on unclaimed rings.
func PlaceFateOnRing(props Properties[PlaceFateOnRingProperties]) *RingAction[PlaceFateOnRingProperties] {
	a := &RingAction[PlaceFateOnRingProperties]{
		name:      "placeFateOnRing",
		eventName: rules.EventMoveFate,
		effect:    "place fate on {0}",
		props:     props,
		defaults: func(p PlaceFateOnRingProperties) PlaceFateOnRingProperties {
			if p.Amount == 0 {
				p.Amount = 1
			}
			return p
		},
		allow: func(ring *game.Ring, _ *game.AbilityContext, p PlaceFateOnRingProperties) bool {
			if ring.RemovedFromGame || ring.IsClaimed() || p.Amount <= 0 {
				return false
			}
			if p.Origin != nil {
				fate, ok := availableFate(p.Origin)
				return ok && fate > 0
			}
			return true
		},
		fill: func(e *game.Event, ring *game.Ring, p PlaceFateOnRingProperties) {
			e.Fate = p.Amount
			if p.Origin != nil {
				fate, _ := availableFate(p.Origin)
				e.Fate = min(p.Amount, fate)
			} else {
				e.Name = rules.EventPlaceFateOnRing
			}
			e.Origin = p.Origin
			e.Recipient = ring
		},
		apply: func(e *game.Event, _ PlaceFateOnRingProperties) {
			if e.Origin != nil {
				moveFate(e.Origin, -e.Fate)
			}
			e.Ring.ModifyFate(e.Fate)
		},
	}
	return a
}

// TakeFateFromRingProperties configure TakeFateFromRing.
type TakeFateFromRingProperties struct {
	RingProperties
	// Amount defaults to 1.
	Amount int
	// Recipient receives the fate; the acting player by default.
	Recipient game.EffectTarget
	// RemoveOnly returns the fate to the supply instead.
	RemoveOnly bool
}

func (p TakeFateFromRingProperties) withRingBase(b RingProperties) TakeFateFromRingProperties {
	p.RingProperties = b
	return p
}

// TakeFateFromRing moves fate off rings.
func TakeFateFromRing(props Properties[TakeFateFromRingProperties]) *RingAction[TakeFateFromRingProperties] {
	return &RingAction[TakeFateFromRingProperties]{
		name:      "takeFateFromRing",
		eventName: rules.EventMoveFate,
		effect:    "take fate from {0}",
		props:     props,
		defaults: func(p TakeFateFromRingProperties) TakeFateFromRingProperties {
			if p.Amount == 0 {
				p.Amount = 1
			}
			return p
		},
		allow: func(ring *game.Ring, ctx *game.AbilityContext, p TakeFateFromRingProperties) bool {
			if ring.Fate == 0 || p.Amount <= 0 {
				return false
			}
			return p.RemoveOnly || ctx.Player == nil || ctx.Player.CheckRestrictions(game.RestrictionTakeFateFromRings, ctx)
		},
		fill: func(e *game.Event, ring *game.Ring, p TakeFateFromRingProperties) {
			e.Fate = min(p.Amount, ring.Fate)
			e.Origin = ring
			switch {
			case p.RemoveOnly:
			case p.Recipient != nil:
				e.Recipient = p.Recipient
			case e.Context.Player != nil:
				e.Recipient = e.Context.Player
			}
		},
		apply: func(e *game.Event, _ TakeFateFromRingProperties) {
			fate := min(e.Fate, e.Ring.Fate)
			e.Fate = fate
			e.Ring.ModifyFate(-fate)
			if e.Recipient != nil {
				moveFate(e.Recipient, fate)
			}
		},
	}
}

// ReturnRing returns claimed rings to the unclaimed pool.
func ReturnRing(props Properties[RingProperties]) *RingAction[RingProperties] {
	return &RingAction[RingProperties]{
		name:      "returnRing",
		eventName: rules.EventReturnRing,
		effect:    "return {0}",
		props:     props,
		allow: func(ring *game.Ring, _ *game.AbilityContext, _ RingProperties) bool {
			return !ring.RemovedFromGame && !ring.IsUnclaimed()
		},
		apply: func(e *game.Event, _ RingProperties) { e.Ring.ResetRing() },
	}
}

// SwitchConflictElement moves the current conflict to the target ring.
func SwitchConflictElement(props Properties[RingProperties]) *RingAction[RingProperties] {
	return &RingAction[RingProperties]{
		name:      "switchConflictElement",
		eventName: rules.EventSwitchConflictElement,
		effect:    "switch the conflict's element to {0}",
		props:     props,
		allow: func(ring *game.Ring, ctx *game.AbilityContext, _ RingProperties) bool {
			conflict := ctx.Conflict()
			return conflict != nil && !ring.RemovedFromGame && ring.IsUnclaimed() && ring != conflict.Ring
		},
		fill: func(e *game.Event, _ *game.Ring, _ RingProperties) {
			e.Conflict = e.Context.Conflict()
		},
		apply: func(e *game.Event, _ RingProperties) {
			if conflict := e.Context.Game.CurrentConflict(); conflict != nil {
				conflict.SwitchElement(e.Ring.Element)
			}
		},
	}
}

// SwitchConflictType flips the type of the current conflict. Participants
// that can no longer take part are sent home.
func SwitchConflictType(props Properties[RingProperties]) *RingAction[RingProperties] {
	return &RingAction[RingProperties]{
		name:      "switchConflictType",
		eventName: rules.EventSwitchConflictType,
		effect:    "switch the conflict type",
		props:     props,
		allow: func(ring *game.Ring, ctx *game.AbilityContext, _ RingProperties) bool {
			conflict := ctx.Conflict()
			return conflict != nil && conflict.Ring == ring
		},
		fill: func(e *game.Event, _ *game.Ring, _ RingProperties) {
			e.Conflict = e.Context.Conflict()
		},
		apply: func(e *game.Event, _ RingProperties) {
			conflict := e.Context.Game.CurrentConflict()
			if conflict == nil {
				return
			}
			conflict.SwitchType()
			e.Context.Game.AddMessage("The conflict is now {0}", conflict.ConflictType())
			conflict.CheckForIllegalParticipants()
		},
	}
}
