package game

import (
	"sort"

	"github.com/jigoku/jigoku-server-go/internal/game/rules"
	"github.com/jigoku/jigoku-server-go/internal/game/targeting"
)

// Cost gates whether an ability can be initiated. CanPay must not mutate
// state.
type Cost interface {
	CanPay(ctx *AbilityContext) bool
}

// CostResult collects the outcome of resolving an ability's costs.
type CostResult struct {
	Cancelled bool
	CanCancel bool
}

// CostResolver is implemented by costs that need a choice before payment.
// Resolve is the only cost phase allowed to prompt.
type CostResolver interface {
	Resolve(ctx *AbilityContext, result *CostResult)
}

// CostPayer is implemented by costs paid by direct mutation.
type CostPayer interface {
	Pay(ctx *AbilityContext)
}

// EventCost is implemented by costs paid through events, so payment can be
// interrupted like any other event.
type EventCost interface {
	PayEvents(ctx *AbilityContext) []*Event
}

// PromptingCost is implemented by costs whose resolution prompts.
type PromptingCost interface {
	PromptsPlayer() bool
}

// TargetKind selects what a target definition chooses.
type TargetKind string

const (
	TargetCard   TargetKind = "card"
	TargetRing   TargetKind = "ring"
	TargetSelect TargetKind = "select"
)

// SelectChoice is one option of a select target.
type SelectChoice struct {
	Name        string
	Condition   func(ctx *AbilityContext) bool
	GameActions []Action
}

// TargetDefinition describes one named target of an ability.
type TargetDefinition struct {
	Name              string
	Kind              TargetKind
	Mode              targeting.Mode
	NumCards          int
	Optional          bool
	ActivePromptTitle string
	// Player chooses the target; empty means the acting player.
	Player        Players
	CardTypes     []CardType
	Locations     []Location
	Controller    Players
	CardCondition func(card *Card, ctx *AbilityContext) bool
	RingCondition func(ring *Ring, ctx *AbilityContext) bool
	Choices       []SelectChoice
	// GameActions, when set, restrict legal targets to those at least one
	// of the actions can affect.
	GameActions []Action
}

func (t TargetDefinition) name() string {
	if t.Name != "" {
		return t.Name
	}
	return "target"
}

func (t TargetDefinition) chooser(ctx *AbilityContext) *Player {
	if t.Player == PlayersOpponent && ctx.Player.Opponent() != nil {
		return ctx.Player.Opponent()
	}
	return ctx.Player
}

func (t TargetDefinition) selectCardProperties(ctx *AbilityContext) SelectCardProperties {
	chooser := t.chooser(ctx)
	controller := t.Controller
	if chooser != ctx.Player {
		// Controller is relative to the acting player.
		switch controller {
		case PlayersSelf:
			controller = PlayersOpponent
		case PlayersOpponent:
			controller = PlayersSelf
		}
	}
	return SelectCardProperties{
		ActivePromptTitle: t.ActivePromptTitle,
		Context:           ctx,
		Mode:              t.Mode,
		NumCards:          t.NumCards,
		Optional:          t.Optional,
		CardTypes:         t.CardTypes,
		Locations:         t.Locations,
		Controller:        controller,
		CardCondition: func(card *Card, c *AbilityContext) bool {
			if t.CardCondition != nil && !t.CardCondition(card, c) {
				return false
			}
			return t.canAffectAny(CardValue(card), c)
		},
	}
}

func (t TargetDefinition) canAffectAny(target Value, ctx *AbilityContext) bool {
	if len(t.GameActions) == 0 {
		return true
	}
	for _, a := range t.GameActions {
		if a.CanAffect(target, ctx, Overrides{}) {
			return true
		}
	}
	return false
}

// HasLegalTarget reports whether the target could be chosen at all.
func (t TargetDefinition) HasLegalTarget(ctx *AbilityContext) bool {
	if t.Optional {
		return true
	}
	g := ctx.Game
	switch t.Kind {
	case TargetRing:
		for _, e := range Elements {
			ring := g.rings[e]
			if ring == nil || ring.RemovedFromGame {
				continue
			}
			if t.RingCondition != nil && !t.RingCondition(ring, ctx) {
				continue
			}
			if t.canAffectAny(RingValue(ring), ctx) {
				return true
			}
		}
		return false
	case TargetSelect:
		for _, c := range t.Choices {
			if c.Condition == nil || c.Condition(ctx) {
				return true
			}
		}
		return false
	default:
		props := t.selectCardProperties(ctx)
		return len(g.selectableCards(t.chooser(ctx), props, ctx)) > 0
	}
}

// Ability is an optionally costed, optionally targeted effect definition.
type Ability struct {
	Title       string
	Costs       []Cost
	Targets     []TargetDefinition
	GameActions []Action
	Handler     func(ctx *AbilityContext)
	// Then resolves as a sub-ability once this ability's events resolved
	// without being cancelled.
	Then      *Ability
	Condition func(ctx *AbilityContext) bool
	// DefaultPriority orders simultaneous ring effects.
	DefaultPriority int
}

// CanPayCosts reports whether every cost can be paid.
func (a *Ability) CanPayCosts(ctx *AbilityContext) bool {
	for _, c := range a.Costs {
		if !c.CanPay(ctx) {
			return false
		}
	}
	return true
}

// HasLegalTargets reports whether every target definition has a legal target.
func (a *Ability) HasLegalTargets(ctx *AbilityContext) bool {
	for _, t := range a.Targets {
		if !t.HasLegalTarget(ctx) {
			return false
		}
	}
	return true
}

// MeetsRequirements returns "" when the ability can be initiated, otherwise
// the name of the failed requirement.
func (a *Ability) MeetsRequirements(ctx *AbilityContext) string {
	if a.Condition != nil && !a.Condition(ctx) {
		return "condition"
	}
	if !a.CanPayCosts(ctx) {
		return "cost"
	}
	if !a.HasLegalTargets(ctx) {
		return "target"
	}
	if len(a.Targets) == 0 && len(a.GameActions) > 0 && a.Handler == nil {
		for _, action := range a.GameActions {
			if action.HasLegalTarget(ctx, Overrides{}) {
				return ""
			}
		}
		return "target"
	}
	return ""
}

// TriggeredAbility is an ability on a card that fires as an interrupt or a
// reaction to matching events.
type TriggeredAbility struct {
	*Ability

	Card   *Card
	Moment rules.Moment
	// When maps event names to the predicate deciding whether the ability
	// may fire for that event.
	When     map[rules.EventName]func(event *Event, ctx *AbilityContext) bool
	Optional bool

	registration string
}

func (t *TriggeredAbility) createContext(event *Event) *AbilityContext {
	var (
		source EffectSource
		player *Player
		g      *Game
	)
	if t.Card != nil {
		source, player, g = t.Card, t.Card.Controller(), t.Card.game
	} else if event.Context != nil {
		g = event.Context.Game
	}
	ctx := NewAbilityContext(ContextProperties{
		Game:    g,
		Source:  source,
		Player:  player,
		Ability: t.Ability,
		Stage:   StagePreTarget,
	})
	ctx.TriggeringEvent = event
	return ctx
}

func (t *TriggeredAbility) canTrigger(event *Event, ctx *AbilityContext) bool {
	if t.Card != nil && !t.Card.IsInPlay() {
		return false
	}
	if ctx.Player == nil {
		return false
	}
	when := t.When[event.Name]
	if when == nil || !when(event, ctx) {
		return false
	}
	if !ctx.Player.CheckRestrictions(RestrictionTriggerAbilities, ctx) {
		return false
	}
	if t.Card != nil && !t.Card.CheckRestrictions(RestrictionTriggerAbilities, ctx) {
		return false
	}
	return t.MeetsRequirements(ctx) == ""
}

// RegisterTrigger makes a triggered ability listen for its events. It
// returns the registration ID.
func (g *Game) RegisterTrigger(t *TriggeredAbility) string {
	names := make([]rules.EventName, 0, len(t.When))
	for name := range t.When {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	t.registration = g.triggers.Register(rules.Trigger[*TriggeredAbility]{
		Moment:  t.Moment,
		Events:  names,
		Payload: t,
	})
	return t.registration
}

// UnregisterTrigger removes a triggered ability.
func (g *Game) UnregisterTrigger(t *TriggeredAbility) {
	if t.registration == "" {
		return
	}
	g.triggers.Unregister(t.registration)
	t.registration = ""
}
