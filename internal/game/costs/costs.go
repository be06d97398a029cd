// Package costs builds the costs abilities pay before their effects resolve.
// Most costs wrap a game action, so paying them raises ordinary events that
// can be interrupted or cancelled.
package costs

import (
	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/actions"
	"github.com/jigoku/jigoku-server-go/internal/game/targeting"
)

// ActionCost pays by applying a game action to its default targets.
type ActionCost struct {
	action game.Action
}

// GameActionCost wraps action as a cost.
func GameActionCost(action game.Action) *ActionCost {
	return &ActionCost{action: action}
}

func (c *ActionCost) CanPay(ctx *game.AbilityContext) bool {
	return c.action.HasLegalTarget(ctx, game.Overrides{})
}

func (c *ActionCost) PayEvents(ctx *game.AbilityContext) []*game.Event {
	var events []*game.Event
	c.action.AddEventsToArray(&events, ctx, game.Overrides{})
	return events
}

// SelectProperties restrict the cards a select cost offers.
type SelectProperties struct {
	ActivePromptTitle string
	Mode              targeting.Mode
	NumCards          int
	CardTypes         []game.CardType
	// Locations default to the play area.
	Locations []game.Location
	// Controller defaults to the paying player.
	Controller    game.Players
	CardCondition func(card *game.Card, ctx *game.AbilityContext) bool
}

// SelectCardCost prompts for cards then pays by applying its action to
// them. The selection is stored under the action's name in the context's
// costs.
type SelectCardCost struct {
	action game.Action
	props  SelectProperties
}

// MetaActionCost wraps action as a cost paid with cards the player selects.
func MetaActionCost(action game.Action, props SelectProperties) *SelectCardCost {
	if props.Controller == "" {
		props.Controller = game.PlayersSelf
	}
	if len(props.Locations) == 0 {
		props.Locations = []game.Location{game.LocationPlayArea}
	}
	if props.Mode == "" {
		props.Mode = targeting.ModeSingle
	}
	if props.NumCards == 0 {
		props.NumCards = 1
	}
	return &SelectCardCost{action: action, props: props}
}

func (c *SelectCardCost) selectable(card *game.Card, ctx *game.AbilityContext) bool {
	if len(c.props.CardTypes) > 0 && !cardTypeIn(card.Type(), c.props.CardTypes) {
		return false
	}
	if c.props.CardCondition != nil && !c.props.CardCondition(card, ctx) {
		return false
	}
	return c.action.CanAffect(game.CardValue(card), ctx, game.Overrides{})
}

func (c *SelectCardCost) candidates(ctx *game.AbilityContext) []*game.Card {
	var out []*game.Card
	for _, player := range ctx.Game.Players() {
		switch c.props.Controller {
		case game.PlayersSelf:
			if player != ctx.Player {
				continue
			}
		case game.PlayersOpponent:
			if player == ctx.Player {
				continue
			}
		}
		for _, loc := range c.props.Locations {
			for _, card := range player.CardsIn(loc) {
				if c.selectable(card, ctx) {
					out = append(out, card)
				}
			}
			if loc.IsProvince() {
				if province := player.Province(loc); province != nil && c.selectable(province, ctx) {
					out = append(out, province)
				}
			}
		}
	}
	return out
}

func (c *SelectCardCost) required() int {
	if c.props.Mode == targeting.ModeExactly {
		return c.props.NumCards
	}
	return 1
}

func (c *SelectCardCost) CanPay(ctx *game.AbilityContext) bool {
	if chosen, ok := ctx.Costs[c.action.Name()]; ok && !chosen.IsEmpty() {
		return c.action.CanAffect(chosen, ctx, game.Overrides{})
	}
	return len(c.candidates(ctx)) >= c.required()
}

func (c *SelectCardCost) PromptsPlayer() bool { return true }

func (c *SelectCardCost) Resolve(ctx *game.AbilityContext, result *game.CostResult) {
	ctx.Game.PromptForSelect(ctx.Player, game.SelectCardProperties{
		ActivePromptTitle: c.props.ActivePromptTitle,
		Context:           ctx,
		Mode:              c.props.Mode,
		NumCards:          c.props.NumCards,
		Optional:          result.CanCancel,
		CardTypes:         c.props.CardTypes,
		Locations:         c.props.Locations,
		Controller:        c.props.Controller,
		CardCondition:     c.selectable,
		OnSelect: func(_ *game.Player, cards []*game.Card) {
			ctx.Costs[c.action.Name()] = cardsValue(cards)
		},
		OnCancel: func(*game.Player) {
			result.Cancelled = true
		},
	})
}

func (c *SelectCardCost) PayEvents(ctx *game.AbilityContext) []*game.Event {
	var events []*game.Event
	c.action.AddEventsToArray(&events, ctx, game.Overrides{Target: ctx.Costs[c.action.Name()]})
	return events
}

// SelectRingCost prompts for a ring then pays by applying its action to it.
type SelectRingCost struct {
	action    game.Action
	title     string
	condition func(ring *game.Ring, ctx *game.AbilityContext) bool
	canPay    func(ctx *game.AbilityContext) bool
}

func (c *SelectRingCost) selectable(ring *game.Ring, ctx *game.AbilityContext) bool {
	if c.condition != nil && !c.condition(ring, ctx) {
		return false
	}
	return c.action.CanAffect(game.RingValue(ring), ctx, game.Overrides{})
}

func (c *SelectRingCost) CanPay(ctx *game.AbilityContext) bool {
	if c.canPay != nil && !c.canPay(ctx) {
		return false
	}
	if chosen, ok := ctx.Costs[c.action.Name()]; ok && !chosen.IsEmpty() {
		return c.action.CanAffect(chosen, ctx, game.Overrides{})
	}
	for _, ring := range ctx.Game.Rings() {
		if !ring.RemovedFromGame && c.selectable(ring, ctx) {
			return true
		}
	}
	return false
}

func (c *SelectRingCost) PromptsPlayer() bool { return true }

func (c *SelectRingCost) Resolve(ctx *game.AbilityContext, result *game.CostResult) {
	ctx.Game.PromptForRingSelect(ctx.Player, game.SelectRingProperties{
		ActivePromptTitle: c.title,
		Context:           ctx,
		Optional:          result.CanCancel,
		RingCondition:     c.selectable,
		OnSelect: func(_ *game.Player, ring *game.Ring) {
			ctx.Costs[c.action.Name()] = game.RingValue(ring)
		},
		OnCancel: func(*game.Player) {
			result.Cancelled = true
		},
	})
}

func (c *SelectRingCost) PayEvents(ctx *game.AbilityContext) []*game.Event {
	var events []*game.Event
	c.action.AddEventsToArray(&events, ctx, game.Overrides{Target: ctx.Costs[c.action.Name()]})
	return events
}

func cardsValue(cards []*game.Card) game.Value {
	if len(cards) == 1 {
		return game.CardValue(cards[0])
	}
	return game.CardsValue(cards...)
}

func cardTypeIn(t game.CardType, set []game.CardType) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}

func self() actions.Properties[actions.CardProperties] {
	return actions.Derived(func(ctx *game.AbilityContext) actions.CardProperties {
		return actions.CardProperties{Target: game.CardValue(ctx.SourceCard())}
	})
}

func canSpendFate(ctx *game.AbilityContext, amount int) bool {
	return ctx.Player.Fate >= amount && (amount == 0 || ctx.Player.CheckRestrictions(game.RestrictionSpendFate, ctx))
}
