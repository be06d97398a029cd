package actions

import (
	"fmt"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/targeting"
)

var ringPriorities = map[game.Element]int{
	game.ElementAir:   1,
	game.ElementEarth: 2,
	game.ElementVoid:  3,
	game.ElementFire:  4,
	game.ElementWater: 5,
}

// RingPriority is the default order ring effects resolve in for the first
// player.
func RingPriority(element game.Element) int {
	p, ok := ringPriorities[element]
	if !ok {
		panic(fmt.Sprintf("no ring effect for element %q", element))
	}
	return p
}

const dontResolve = "Don't resolve"

// RingEffectContext builds the context resolving element's ring effect for
// player. The ring is the source.
func RingEffectContext(player *game.Player, element game.Element, optional bool) *game.AbilityContext {
	g := player.Game()
	ring := g.Ring(element)
	ctx := game.NewAbilityContext(game.ContextProperties{
		Game:    g,
		Source:  ring,
		Player:  player,
		Ability: RingEffect(element, optional),
	})
	ctx.Ring = ring
	ctx.Element = element
	return ctx
}

// RingEffect returns the ability of element's ring effect.
func RingEffect(element game.Element, optional bool) *game.Ability {
	var handler func(ctx *game.AbilityContext, optional bool)
	switch element {
	case game.ElementAir:
		handler = airEffect
	case game.ElementEarth:
		handler = earthEffect
	case game.ElementFire:
		handler = fireEffect
	case game.ElementVoid:
		handler = voidEffect
	case game.ElementWater:
		handler = waterEffect
	default:
		panic(fmt.Sprintf("no ring effect for element %q", element))
	}
	return &game.Ability{
		DefaultPriority: RingPriority(element),
		Handler:         func(ctx *game.AbilityContext) { handler(ctx, optional) },
	}
}

func menuWithSkip(ctx *game.AbilityContext, title string, optional bool, choices []string, handlers []func()) {
	if optional {
		choices = append(choices, dontResolve)
		handlers = append(handlers, func() {
			ctx.Game.AddMessage("{0} chooses not to resolve {1}", ctx.Player, ctx.Source)
		})
	}
	if len(choices) == 0 {
		return
	}
	ctx.Game.PromptWithHandlerMenu(ctx.Player, game.MenuProperties{
		ActivePromptTitle: title,
		Context:           ctx,
		Choices:           choices,
		Handlers:          handlers,
	})
}

func airEffect(ctx *game.AbilityContext, optional bool) {
	g := ctx.Game
	gain := GainHonor(Static(AmountProperties{Amount: 2}))
	take := TakeHonor(Static(AmountProperties{}))
	var (
		choices  []string
		handlers []func()
	)
	if gain.HasLegalTarget(ctx, game.Overrides{}) {
		choices = append(choices, "Gain 2 Honor")
		handlers = append(handlers, func() {
			g.AddMessage("{0} resolves {1} to gain 2 honor", ctx.Player, ctx.Source)
			g.ResolveGameAction(gain, ctx, game.Overrides{})
		})
	}
	if take.HasLegalTarget(ctx, game.Overrides{}) {
		choices = append(choices, "Take 1 Honor from opponent")
		handlers = append(handlers, func() {
			g.AddMessage("{0} resolves {1} to take 1 honor from {2}", ctx.Player, ctx.Source, ctx.Player.Opponent())
			g.ResolveGameAction(take, ctx, game.Overrides{})
		})
	}
	menuWithSkip(ctx, "Choose an effect to resolve", optional, choices, handlers)
}

func earthEffect(ctx *game.AbilityContext, optional bool) {
	g := ctx.Game
	resolve := func() {
		actions := []game.Action{Draw(Static(AmountProperties{}))}
		msg := "{0} resolves {1} to draw a card"
		if opponent := ctx.Player.Opponent(); opponent != nil && !opponent.IsDummy() {
			actions = append(actions, DiscardAtRandom(Static(AmountProperties{})))
			msg = "{0} resolves {1} to draw a card and force {2} to discard a card at random"
		}
		g.AddMessage(msg, ctx.Player, ctx.Source, ctx.Player.Opponent())
		for _, a := range actions {
			g.ResolveGameAction(a, ctx, game.Overrides{})
		}
	}
	if !optional {
		resolve()
		return
	}
	menuWithSkip(ctx, "Resolve the earth ring?", optional, []string{"Draw a card"}, []func(){resolve})
}

func selectCharacter(ctx *game.AbilityContext, title string, optional bool, condition func(*game.Card) bool, onSelect func(card *game.Card)) {
	g := ctx.Game
	g.PromptForSelect(ctx.Player, game.SelectCardProperties{
		ActivePromptTitle: title,
		Context:           ctx,
		Mode:              targeting.ModeSingle,
		Optional:          optional,
		CardTypes:         []game.CardType{game.CardTypeCharacter},
		Locations:         []game.Location{game.LocationPlayArea},
		Controller:        game.PlayersAny,
		CardCondition: func(card *game.Card, _ *game.AbilityContext) bool {
			return condition(card)
		},
		OnSelect: func(_ *game.Player, cards []*game.Card) {
			if len(cards) > 0 {
				onSelect(cards[0])
			}
		},
		OnCancel: func(player *game.Player) {
			g.AddMessage("{0} chooses not to resolve {1}", player, ctx.Source)
		},
	})
}

func fireEffect(ctx *game.AbilityContext, optional bool) {
	g := ctx.Game
	honor := Honor(Static(CardProperties{}))
	dishonor := Dishonor(Static(CardProperties{}))
	canAffect := func(a game.Action, card *game.Card) bool {
		return a.CanAffect(game.CardValue(card), ctx, game.Overrides{})
	}
	selectCharacter(ctx, "Choose character to honor or dishonor", optional,
		func(card *game.Card) bool { return canAffect(honor, card) || canAffect(dishonor, card) },
		func(card *game.Card) {
			o := game.Overrides{Target: game.CardValue(card)}
			var (
				choices  []string
				handlers []func()
			)
			if canAffect(honor, card) {
				choices = append(choices, "Honor "+card.Name())
				handlers = append(handlers, func() {
					g.AddMessage("{0} resolves {1}, honoring {2}", ctx.Player, ctx.Source, card)
					g.ResolveGameAction(honor, ctx, o)
				})
			}
			if canAffect(dishonor, card) {
				choices = append(choices, "Dishonor "+card.Name())
				handlers = append(handlers, func() {
					g.AddMessage("{0} resolves {1}, dishonoring {2}", ctx.Player, ctx.Source, card)
					g.ResolveGameAction(dishonor, ctx, o)
				})
			}
			if len(choices) == 1 {
				handlers[0]()
				return
			}
			menuWithSkip(ctx, "Do you wish to honor or dishonor "+card.Name()+"?", false, choices, handlers)
		})
}

func voidEffect(ctx *game.AbilityContext, optional bool) {
	g := ctx.Game
	removeFate := RemoveFate(Static(FateProperties{}))
	selectCharacter(ctx, "Choose character to remove fate from", optional,
		func(card *game.Card) bool {
			return removeFate.CanAffect(game.CardValue(card), ctx, game.Overrides{})
		},
		func(card *game.Card) {
			g.AddMessage("{0} resolves {1}, removing a fate from {2}", ctx.Player, ctx.Source, card)
			g.ResolveGameAction(removeFate, ctx, game.Overrides{Target: game.CardValue(card)})
		})
}

func waterEffect(ctx *game.AbilityContext, optional bool) {
	g := ctx.Game
	ready := Ready(Static(CardProperties{}))
	bow := Bow(Static(CardProperties{}))
	canBow := func(card *game.Card) bool {
		return card.Fate == 0 && bow.CanAffect(game.CardValue(card), ctx, game.Overrides{})
	}
	canReady := func(card *game.Card) bool {
		return ready.CanAffect(game.CardValue(card), ctx, game.Overrides{})
	}
	selectCharacter(ctx, "Choose character to bow or ready", optional,
		func(card *game.Card) bool { return canBow(card) || canReady(card) },
		func(card *game.Card) {
			o := game.Overrides{Target: game.CardValue(card)}
			if card.Bowed {
				g.AddMessage("{0} resolves {1}, readying {2}", ctx.Player, ctx.Source, card)
				g.ResolveGameAction(ready, ctx, o)
				return
			}
			g.AddMessage("{0} resolves {1}, bowing {2}", ctx.Player, ctx.Source, card)
			g.ResolveGameAction(bow, ctx, o)
		})
}
