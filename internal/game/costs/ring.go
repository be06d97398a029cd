package costs

import (
	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/actions"
)

// PayFateToRing moves amount fate from the player onto a ring they select.
// A nil condition accepts every unclaimed ring.
func PayFateToRing(amount int, condition func(ring *game.Ring, ctx *game.AbilityContext) bool) *SelectRingCost {
	if condition == nil {
		condition = func(ring *game.Ring, _ *game.AbilityContext) bool { return ring.IsUnclaimed() }
	}
	return &SelectRingCost{
		action: actions.PlaceFateOnRing(actions.Derived(func(ctx *game.AbilityContext) actions.PlaceFateOnRingProperties {
			return actions.PlaceFateOnRingProperties{Amount: amount, Origin: ctx.Player}
		})),
		title:     "Select a ring to place fate on",
		condition: condition,
		canPay:    func(ctx *game.AbilityContext) bool { return canSpendFate(ctx, amount) },
	}
}

type returnRingsCost struct {
	amount    int
	condition func(ring *game.Ring, ctx *game.AbilityContext) bool
}

// ReturnRings returns rings the player has claimed, one prompt per ring, up
// to amount rings (any number when amount is negative). Cancelling after
// the first ring finishes the selection.
func ReturnRings(amount int, condition func(ring *game.Ring, ctx *game.AbilityContext) bool) game.Cost {
	return &returnRingsCost{amount: amount, condition: condition}
}

func (c *returnRingsCost) returnable(ring *game.Ring, ctx *game.AbilityContext) bool {
	if ring.RemovedFromGame || ring.ClaimedBy != ctx.Player.Name {
		return false
	}
	return c.condition == nil || c.condition(ring, ctx)
}

func (c *returnRingsCost) CanPay(ctx *game.AbilityContext) bool {
	if chosen, ok := ctx.Costs[KeyReturnRing]; ok && !chosen.IsEmpty() {
		for _, ring := range chosen.Rings() {
			if !c.returnable(ring, ctx) {
				return false
			}
		}
		return true
	}
	for _, ring := range ctx.Game.Rings() {
		if c.returnable(ring, ctx) {
			return true
		}
	}
	return false
}

func (c *returnRingsCost) PromptsPlayer() bool { return true }

func (c *returnRingsCost) Resolve(ctx *game.AbilityContext, result *game.CostResult) {
	c.prompt(ctx, result, nil)
}

func (c *returnRingsCost) prompt(ctx *game.AbilityContext, result *game.CostResult, chosen []*game.Ring) {
	isChosen := func(ring *game.Ring) bool {
		for _, r := range chosen {
			if r == ring {
				return true
			}
		}
		return false
	}
	ctx.Game.PromptForRingSelect(ctx.Player, game.SelectRingProperties{
		ActivePromptTitle: "Choose a ring to return",
		Context:           ctx,
		Optional:          result.CanCancel || len(chosen) > 0,
		RingCondition: func(ring *game.Ring, ctx *game.AbilityContext) bool {
			return c.returnable(ring, ctx) && !isChosen(ring)
		},
		OnSelect: func(_ *game.Player, ring *game.Ring) {
			next := append(append([]*game.Ring(nil), chosen...), ring)
			ctx.Costs[KeyReturnRing] = game.RingsValue(next...)
			if c.amount >= 0 && len(next) >= c.amount {
				return
			}
			for _, r := range ctx.Game.Rings() {
				if c.returnable(r, ctx) && r != ring && !isChosen(r) {
					c.prompt(ctx, result, next)
					return
				}
			}
		},
		OnCancel: func(*game.Player) {
			if len(chosen) == 0 {
				delete(ctx.Costs, KeyReturnRing)
				result.Cancelled = true
			}
		},
	})
}

func (c *returnRingsCost) PayEvents(ctx *game.AbilityContext) []*game.Event {
	var events []*game.Event
	actions.ReturnRing(actions.Static(actions.RingProperties{})).
		AddEventsToArray(&events, ctx, game.Overrides{Target: ctx.Costs[KeyReturnRing]})
	return events
}
