package actions

import (
	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
	"github.com/jigoku/jigoku-server-go/internal/game/targeting"
)

// eventHandlerAction applies a fixed handler through a single event.
type eventHandlerAction struct {
	name  string
	event rules.EventName
	fn    func(event *game.Event)
}

func (a *eventHandlerAction) Name() string               { return a.name }
func (a *eventHandlerAction) EventName() rules.EventName { return a.event }

func (a *eventHandlerAction) CanAffect(game.Value, *game.AbilityContext, game.Overrides) bool {
	return true
}

func (a *eventHandlerAction) HasLegalTarget(*game.AbilityContext, game.Overrides) bool { return true }

func (a *eventHandlerAction) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	*events = append(*events, game.NewActionEvent(a, game.EventParams{Context: ctx}, o))
}

func (a *eventHandlerAction) EventHandler(event *game.Event) {
	if a.fn != nil {
		a.fn(event)
	}
}

func (a *eventHandlerAction) CheckEventCondition(*game.Event) bool { return true }

// Handler runs fn when its event applies.
func Handler(fn func(ctx *game.AbilityContext)) game.Action {
	return &eventHandlerAction{
		name:  "handler",
		event: rules.EventUnnamed,
		fn:    func(e *game.Event) { fn(e.Context) },
	}
}

type noAction struct{}

// NoAction does nothing. It always has a legal target, so abilities built
// around it can always be initiated.
func NoAction() game.Action { return noAction{} }

func (noAction) Name() string { return "noAction" }

func (noAction) EventName() rules.EventName { return rules.EventUnnamed }

func (noAction) CanAffect(game.Value, *game.AbilityContext, game.Overrides) bool { return true }

func (noAction) HasLegalTarget(*game.AbilityContext, game.Overrides) bool { return true }

func (noAction) AddEventsToArray(*[]*game.Event, *game.AbilityContext, game.Overrides) {}

func (noAction) EventHandler(*game.Event) {}

func (noAction) CheckEventCondition(*game.Event) bool { return true }

// metaAction is embedded by actions that only delegate to other actions.
type metaAction struct {
	name string
}

func (a metaAction) Name() string { return a.name }

func (a metaAction) EventName() rules.EventName { return rules.EventUnnamed }

func (a metaAction) EventHandler(*game.Event) {}

func (a metaAction) CheckEventCondition(*game.Event) bool { return true }

// SelectCardProperties configure SelectCard.
type SelectCardProperties struct {
	ActivePromptTitle string
	Mode              targeting.Mode
	NumCards          int
	Optional          bool
	// Player chooses the cards; the acting player by default.
	Player     game.Players
	CardTypes  []game.CardType
	Locations  []game.Location
	Controller game.Players
	// CardCondition further restricts selectable cards.
	CardCondition func(card *game.Card, ctx *game.AbilityContext) bool
	// GameAction is applied to the selected cards.
	GameAction game.Action
	// Message is logged once the selection is made; {0} is the chooser and
	// {1} the selection.
	Message string
}

// SelectCardAction prompts for cards then applies its game action to them.
type SelectCardAction struct {
	metaAction
	props Properties[SelectCardProperties]
}

// SelectCard builds a SelectCardAction.
func SelectCard(props Properties[SelectCardProperties]) *SelectCardAction {
	return &SelectCardAction{metaAction: metaAction{name: "selectCard"}, props: props}
}

func (a *SelectCardAction) GetProperties(ctx *game.AbilityContext, _ game.Overrides) SelectCardProperties {
	p := a.props.Evaluate(ctx)
	if p.GameAction == nil {
		p.GameAction = NoAction()
	}
	if p.Controller == "" {
		p.Controller = game.PlayersAny
	}
	if len(p.Locations) == 0 {
		p.Locations = []game.Location{game.LocationPlayArea}
	}
	return p
}

func (a *SelectCardAction) chooser(ctx *game.AbilityContext, p SelectCardProperties) *game.Player {
	if p.Player == game.PlayersOpponent && ctx.Player.Opponent() != nil {
		return ctx.Player.Opponent()
	}
	return ctx.Player
}

func (a *SelectCardAction) selectable(card *game.Card, ctx *game.AbilityContext, p SelectCardProperties) bool {
	if p.CardCondition != nil && !p.CardCondition(card, ctx) {
		return false
	}
	return p.GameAction.CanAffect(game.CardValue(card), ctx, game.Overrides{})
}

func (a *SelectCardAction) CanAffect(target game.Value, ctx *game.AbilityContext, o game.Overrides) bool {
	p := a.GetProperties(ctx, o)
	for _, card := range target.Cards() {
		if !a.selectable(card, ctx, p) {
			return false
		}
	}
	return len(target.Cards()) > 0
}

func (a *SelectCardAction) HasLegalTarget(ctx *game.AbilityContext, o game.Overrides) bool {
	p := a.GetProperties(ctx, o)
	chooser := a.chooser(ctx, p)
	for _, player := range ctx.Game.Players() {
		if p.Controller == game.PlayersSelf && player != chooser || p.Controller == game.PlayersOpponent && player == chooser {
			continue
		}
		for _, card := range cardsAt(player, p.Locations) {
			if len(p.CardTypes) > 0 && !cardTypeIn(card.Type(), p.CardTypes) {
				continue
			}
			if a.selectable(card, ctx, p) {
				return true
			}
		}
	}
	return false
}

func cardsAt(player *game.Player, locations []game.Location) []*game.Card {
	var out []*game.Card
	for _, loc := range locations {
		switch {
		case loc == game.LocationAny:
			out = append(out, player.AllCards()...)
			out = append(out, player.Provinces()...)
		case loc == game.LocationProvinces:
			out = append(out, player.Provinces()...)
		default:
			out = append(out, player.CardsIn(loc)...)
			if loc.IsProvince() {
				if province := player.Province(loc); province != nil {
					out = append(out, province)
				}
			}
		}
	}
	return out
}

func (a *SelectCardAction) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	p := a.GetProperties(ctx, o)
	g := ctx.Game
	g.PromptForSelect(a.chooser(ctx, p), game.SelectCardProperties{
		ActivePromptTitle: p.ActivePromptTitle,
		Context:           ctx,
		Mode:              p.Mode,
		NumCards:          p.NumCards,
		Optional:          p.Optional,
		CardTypes:         p.CardTypes,
		Locations:         p.Locations,
		Controller:        p.Controller,
		CardCondition: func(card *game.Card, c *game.AbilityContext) bool {
			return a.selectable(card, c, p)
		},
		OnSelect: func(player *game.Player, cards []*game.Card) {
			target := game.CardsValue(cards...)
			if len(cards) == 1 {
				target = game.CardValue(cards[0])
			}
			if p.Message != "" {
				g.AddMessage(p.Message, player, target)
			}
			p.GameAction.AddEventsToArray(events, ctx, game.Overrides{Target: target, Optional: o.Optional})
		},
	})
}

// SelectRingProperties configure SelectRing.
type SelectRingProperties struct {
	ActivePromptTitle string
	Optional          bool
	// Player chooses the ring; the acting player by default.
	Player        game.Players
	RingCondition func(ring *game.Ring, ctx *game.AbilityContext) bool
	// GameAction is applied to the selected ring.
	GameAction game.Action
	Message    string
}

// SelectRingAction prompts for a ring then applies its game action to it.
type SelectRingAction struct {
	metaAction
	props Properties[SelectRingProperties]
}

// SelectRing builds a SelectRingAction.
func SelectRing(props Properties[SelectRingProperties]) *SelectRingAction {
	return &SelectRingAction{metaAction: metaAction{name: "selectRing"}, props: props}
}

func (a *SelectRingAction) GetProperties(ctx *game.AbilityContext, _ game.Overrides) SelectRingProperties {
	p := a.props.Evaluate(ctx)
	if p.GameAction == nil {
		p.GameAction = NoAction()
	}
	return p
}

func (a *SelectRingAction) selectable(ring *game.Ring, ctx *game.AbilityContext, p SelectRingProperties) bool {
	if ring.RemovedFromGame {
		return false
	}
	if p.RingCondition != nil && !p.RingCondition(ring, ctx) {
		return false
	}
	return p.GameAction.CanAffect(game.RingValue(ring), ctx, game.Overrides{})
}

func (a *SelectRingAction) CanAffect(target game.Value, ctx *game.AbilityContext, o game.Overrides) bool {
	ring := target.Ring()
	return ring != nil && a.selectable(ring, ctx, a.GetProperties(ctx, o))
}

func (a *SelectRingAction) HasLegalTarget(ctx *game.AbilityContext, o game.Overrides) bool {
	p := a.GetProperties(ctx, o)
	for _, ring := range ctx.Game.Rings() {
		if a.selectable(ring, ctx, p) {
			return true
		}
	}
	return false
}

func (a *SelectRingAction) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	p := a.GetProperties(ctx, o)
	g := ctx.Game
	chooser := ctx.Player
	if p.Player == game.PlayersOpponent && chooser.Opponent() != nil {
		chooser = chooser.Opponent()
	}
	g.PromptForRingSelect(chooser, game.SelectRingProperties{
		ActivePromptTitle: p.ActivePromptTitle,
		Context:           ctx,
		Optional:          p.Optional,
		RingCondition: func(ring *game.Ring, c *game.AbilityContext) bool {
			return a.selectable(ring, c, p)
		},
		OnSelect: func(player *game.Player, ring *game.Ring) {
			if p.Message != "" {
				g.AddMessage(p.Message, player, ring)
			}
			p.GameAction.AddEventsToArray(events, ctx, game.Overrides{Target: game.RingValue(ring), Optional: o.Optional})
		},
	})
}

// SequentialAction resolves its actions one after the other, each in its
// own window. Actions that have no legal target when their turn comes are
// skipped.
type SequentialAction struct {
	metaAction
	actions []game.Action
}

// Sequential builds a SequentialAction.
func Sequential(actions ...game.Action) *SequentialAction {
	return &SequentialAction{metaAction: metaAction{name: "sequential"}, actions: actions}
}

func (a *SequentialAction) CanAffect(target game.Value, ctx *game.AbilityContext, o game.Overrides) bool {
	for _, action := range a.actions {
		if action.CanAffect(target, ctx, o) {
			return true
		}
	}
	return false
}

func (a *SequentialAction) HasLegalTarget(ctx *game.AbilityContext, o game.Overrides) bool {
	for _, action := range a.actions {
		if action.HasLegalTarget(ctx, o) {
			return true
		}
	}
	return false
}

func (a *SequentialAction) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	handler := &eventHandlerAction{
		name:  a.name,
		event: rules.EventUnnamed,
		fn: func(e *game.Event) {
			g := e.Context.Game
			for _, action := range a.actions {
				g.QueueSimpleStep("sequential action", func() {
					if action.HasLegalTarget(ctx, o) {
						g.ResolveGameAction(action, ctx, o)
					}
				})
			}
		},
	}
	handler.AddEventsToArray(events, ctx, o)
}

// MultipleAction resolves its actions simultaneously in one window.
type MultipleAction struct {
	metaAction
	actions []game.Action
}

// Multiple builds a MultipleAction.
func Multiple(actions ...game.Action) *MultipleAction {
	return &MultipleAction{metaAction: metaAction{name: "multiple"}, actions: actions}
}

func (a *MultipleAction) CanAffect(target game.Value, ctx *game.AbilityContext, o game.Overrides) bool {
	for _, action := range a.actions {
		if action.CanAffect(target, ctx, o) {
			return true
		}
	}
	return false
}

func (a *MultipleAction) HasLegalTarget(ctx *game.AbilityContext, o game.Overrides) bool {
	for _, action := range a.actions {
		if action.HasLegalTarget(ctx, o) {
			return true
		}
	}
	return false
}

func (a *MultipleAction) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	for _, action := range a.actions {
		if action.HasLegalTarget(ctx, o) {
			action.AddEventsToArray(events, ctx, o)
		}
	}
}

// ConditionalProperties configure Conditional.
type ConditionalProperties struct {
	Condition   func(ctx *game.AbilityContext) bool
	TrueAction  game.Action
	FalseAction game.Action
}

// ConditionalAction picks one of two actions when evaluated.
type ConditionalAction struct {
	metaAction
	props Properties[ConditionalProperties]
}

// Conditional builds a ConditionalAction.
func Conditional(props Properties[ConditionalProperties]) *ConditionalAction {
	return &ConditionalAction{metaAction: metaAction{name: "conditional"}, props: props}
}

func (a *ConditionalAction) pick(ctx *game.AbilityContext) game.Action {
	p := a.props.Evaluate(ctx)
	var picked game.Action
	if p.Condition != nil && p.Condition(ctx) {
		picked = p.TrueAction
	} else {
		picked = p.FalseAction
	}
	if picked == nil {
		return NoAction()
	}
	return picked
}

func (a *ConditionalAction) CanAffect(target game.Value, ctx *game.AbilityContext, o game.Overrides) bool {
	return a.pick(ctx).CanAffect(target, ctx, o)
}

func (a *ConditionalAction) HasLegalTarget(ctx *game.AbilityContext, o game.Overrides) bool {
	return a.pick(ctx).HasLegalTarget(ctx, o)
}

func (a *ConditionalAction) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	a.pick(ctx).AddEventsToArray(events, ctx, o)
}

// CancelAction cancels the triggering event of an interrupt, optionally
// replacing it with the events of another action.
type CancelAction struct {
	metaAction
	replacement game.Action
}

// Cancel builds a CancelAction. replacement may be nil.
func Cancel(replacement game.Action) *CancelAction {
	return &CancelAction{metaAction: metaAction{name: "cancel"}, replacement: replacement}
}

func cancellable(event *game.Event) bool {
	if event == nil || event.IsCancelled() || event.IsResolved() {
		return false
	}
	if ctx := event.Context; ctx != nil && ctx.Player != nil && ctx.Player.AnyEffect(game.EffectEventsCannotBeCancelled) {
		return false
	}
	return true
}

func (a *CancelAction) CanAffect(_ game.Value, ctx *game.AbilityContext, _ game.Overrides) bool {
	return cancellable(ctx.TriggeringEvent)
}

func (a *CancelAction) HasLegalTarget(ctx *game.AbilityContext, _ game.Overrides) bool {
	return cancellable(ctx.TriggeringEvent)
}

func (a *CancelAction) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	target := ctx.TriggeringEvent
	if !cancellable(target) {
		return
	}
	handler := &eventHandlerAction{
		name:  a.name,
		event: rules.EventUnnamed,
		fn: func(e *game.Event) {
			if !cancellable(target) {
				return
			}
			target.Cancel()
			e.Context.Game.AddMessage("{0} cancels {1}", e.Context.Player, string(target.Name))
			window := target.Window()
			if a.replacement == nil || window == nil {
				return
			}
			var replacements []*game.Event
			a.replacement.AddEventsToArray(&replacements, e.Context, o)
			for _, r := range replacements {
				window.AddEvent(r)
			}
		},
	}
	handler.AddEventsToArray(events, ctx, o)
}

// Choice is one option of ChooseAction.
type Choice struct {
	Title  string
	Action game.Action
}

// ChooseActionProperties configure ChooseAction.
type ChooseActionProperties struct {
	ActivePromptTitle string
	// Player chooses; the acting player by default.
	Player  game.Players
	Choices []Choice
	// Optional adds a choice doing nothing.
	Optional bool
}

// ChooseGameAction lets a player choose which of several actions resolves.
// Only choices whose action has a legal target are offered.
type ChooseGameAction struct {
	metaAction
	props Properties[ChooseActionProperties]
}

// ChooseAction builds a ChooseGameAction.
func ChooseAction(props Properties[ChooseActionProperties]) *ChooseGameAction {
	return &ChooseGameAction{metaAction: metaAction{name: "chooseAction"}, props: props}
}

func (a *ChooseGameAction) legal(ctx *game.AbilityContext, o game.Overrides) []Choice {
	var out []Choice
	for _, c := range a.props.Evaluate(ctx).Choices {
		if c.Action != nil && c.Action.HasLegalTarget(ctx, o) {
			out = append(out, c)
		}
	}
	return out
}

func (a *ChooseGameAction) CanAffect(target game.Value, ctx *game.AbilityContext, o game.Overrides) bool {
	for _, c := range a.legal(ctx, o) {
		if c.Action.CanAffect(target, ctx, o) {
			return true
		}
	}
	return false
}

func (a *ChooseGameAction) HasLegalTarget(ctx *game.AbilityContext, o game.Overrides) bool {
	return len(a.legal(ctx, o)) > 0
}

func (a *ChooseGameAction) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	p := a.props.Evaluate(ctx)
	legal := a.legal(ctx, o)
	if len(legal) == 0 {
		return
	}
	chooser := ctx.Player
	if p.Player == game.PlayersOpponent && chooser.Opponent() != nil {
		chooser = chooser.Opponent()
	}
	choices := make([]string, 0, len(legal)+1)
	handlers := make([]func(), 0, len(legal)+1)
	for _, c := range legal {
		choices = append(choices, c.Title)
		handlers = append(handlers, func() {
			ctx.Game.AddMessage("{0} chooses to {1}", chooser, c.Title)
			c.Action.AddEventsToArray(events, ctx, o)
		})
	}
	if p.Optional {
		choices = append(choices, "Done")
		handlers = append(handlers, func() {})
	}
	title := p.ActivePromptTitle
	if title == "" {
		title = "Select an action:"
	}
	ctx.Game.PromptWithHandlerMenu(chooser, game.MenuProperties{
		ActivePromptTitle: title,
		Context:           ctx,
		Choices:           choices,
		Handlers:          handlers,
	})
}
