package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/gametest"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

func TestSelectCardAppliesActionToSelection(t *testing.T) {
	h := gametest.New(t)
	h.Character(h.P1, "Own", 1, 1)
	theirs := h.Character(h.P2, "Theirs", 1, 1)
	other := h.Character(h.P2, "Other", 1, 1)

	h.Resolve(SelectCard(Static(SelectCardProperties{
		ActivePromptTitle: "Choose a character to bow",
		Controller:        game.PlayersOpponent,
		CardTypes:         []game.CardType{game.CardTypeCharacter},
		GameAction:        Bow(Static(CardProperties{})),
		Message:           "{0} chooses to bow {1}",
	})), h.Context(h.P1), game.Overrides{})

	view := h.Prompt(h.P1)
	assert.Equal(t, "Choose a character to bow", view.Title)
	assert.ElementsMatch(t, []string{theirs.ID, other.ID}, view.SelectableCardIDs)
	h.Select(h.P1, theirs)

	assert.True(t, theirs.Bowed)
	assert.False(t, other.Bowed)
	assert.True(t, h.HasMessage("Player 1 chooses to bow Theirs"))
	h.RequireIdle()
}

func TestSelectCardWithoutLegalCards(t *testing.T) {
	h := gametest.New(t)
	bowed := h.Character(h.P2, "Bowed", 1, 1)
	bowed.Bowed = true
	selectCard := SelectCard(Static(SelectCardProperties{GameAction: Bow(Static(CardProperties{}))}))

	assert.False(t, selectCard.HasLegalTarget(h.Context(h.P1), game.Overrides{}))
	h.Resolve(selectCard, h.Context(h.P1), game.Overrides{})
	h.RequireIdle()
}

func TestSelectRing(t *testing.T) {
	h := gametest.New(t)
	h.Game.Ring(game.ElementAir).ClaimRing(h.P2)

	h.Resolve(SelectRing(Static(SelectRingProperties{
		ActivePromptTitle: "Choose a ring",
		GameAction:        PlaceFateOnRing(Static(PlaceFateOnRingProperties{})),
	})), h.Context(h.P1), game.Overrides{})

	view := h.Prompt(h.P1)
	assert.NotContains(t, view.SelectableRings, game.ElementAir)
	h.SelectRing(h.P1, game.ElementWater)

	assert.Equal(t, 1, h.Game.Ring(game.ElementWater).Fate)
	h.RequireIdle()
}

func TestSequentialResolvesInOrder(t *testing.T) {
	h := gametest.New(t)

	h.Resolve(Sequential(GainHonor(amount(1)), GainFate(amount(2))), h.Context(h.P1), game.Overrides{})

	assert.Equal(t, 11, h.P1.Honor)
	assert.Equal(t, 12, h.P1.Fate)
	var order []rules.EventName
	for _, r := range h.Records("") {
		if r.Name == rules.EventModifyHonor || r.Name == rules.EventModifyFate {
			order = append(order, r.Name)
		}
	}
	assert.Equal(t, []rules.EventName{rules.EventModifyHonor, rules.EventModifyFate}, order)
	h.RequireIdle()
}

func TestSequentialSkipsIllegalSteps(t *testing.T) {
	h := gametest.New(t)
	card := h.Character(h.P1, "Already Bowed", 1, 1)
	card.Bowed = true

	h.Resolve(Sequential(
		Bow(Static(CardProperties{Target: game.CardValue(card)})),
		GainFate(amount(1)),
	), h.Context(h.P1), game.Overrides{})

	assert.Equal(t, 11, h.P1.Fate)
	assert.Empty(t, h.Records(rules.EventCardBowed))
}

func TestMultipleResolvesTogether(t *testing.T) {
	h := gametest.New(t)
	card := h.Character(h.P2, "Target", 1, 1)

	h.Resolve(Multiple(
		Bow(Static(CardProperties{Target: game.CardValue(card)})),
		LoseHonor(amount(1)),
	), h.Context(h.P1), game.Overrides{})

	assert.True(t, card.Bowed)
	assert.Equal(t, 9, h.P1.Honor)
}

func TestConditionalPicksBranch(t *testing.T) {
	h := gametest.New(t)
	action := Conditional(Static(ConditionalProperties{
		Condition:   func(ctx *game.AbilityContext) bool { return ctx.Player.Honor > 5 },
		TrueAction:  GainFate(amount(1)),
		FalseAction: LoseFate(amount(1)),
	}))

	h.Resolve(action, h.Context(h.P1), game.Overrides{})
	assert.Equal(t, 11, h.P1.Fate)

	h.P1.Honor = 3
	h.Resolve(action, h.Context(h.P1), game.Overrides{})
	assert.Equal(t, 10, h.P1.Fate)
}

func TestConditionalWithoutFalseBranchDoesNothing(t *testing.T) {
	h := gametest.New(t)
	action := Conditional(Static(ConditionalProperties{
		Condition:  func(*game.AbilityContext) bool { return false },
		TrueAction: GainFate(amount(1)),
	}))

	assert.True(t, action.HasLegalTarget(h.Context(h.P1), game.Overrides{}))
	h.Resolve(action, h.Context(h.P1), game.Overrides{})
	assert.Equal(t, 10, h.P1.Fate)
}

func TestChooseActionOffersLegalChoices(t *testing.T) {
	h := gametest.New(t)
	bowed := h.Character(h.P1, "Bowed", 1, 1)
	bowed.Bowed = true

	h.Resolve(ChooseAction(Static(ChooseActionProperties{
		Choices: []Choice{
			{Title: "Gain a fate", Action: GainFate(amount(1))},
			{Title: "Bow a character", Action: Bow(Static(CardProperties{Target: game.CardValue(bowed)}))},
			{Title: "Gain an honor", Action: GainHonor(amount(1))},
		},
	})), h.Context(h.P1), game.Overrides{})

	view := h.Prompt(h.P1)
	assert.Equal(t, "Select an action:", view.Title)
	assert.Equal(t, []string{"Gain a fate", "Gain an honor"}, view.Choices)
	h.Choose(h.P1, "Gain an honor")

	assert.Equal(t, 11, h.P1.Honor)
	assert.Equal(t, 10, h.P1.Fate)
	assert.True(t, h.HasMessage("Player 1 chooses to Gain an honor"))
	h.RequireIdle()
}

func TestHandlerRunsWithContext(t *testing.T) {
	h := gametest.New(t)
	var got *game.Player

	h.Resolve(Handler(func(ctx *game.AbilityContext) { got = ctx.Player }), h.Context(h.P2), game.Overrides{})

	assert.Equal(t, h.P2, got)
}

// cancelBowOf registers an interrupt on a P2 card that cancels bowing target.
func cancelBowOf(h *gametest.Harness, target *game.Card, replacement game.Action) {
	warden := h.Character(h.P2, "Warden", 1, 1)
	h.Game.RegisterTrigger(&game.TriggeredAbility{
		Ability: &game.Ability{
			Title:       "Protect",
			GameActions: []game.Action{Cancel(replacement)},
		},
		Card:   warden,
		Moment: rules.MomentInterrupt,
		When: map[rules.EventName]func(*game.Event, *game.AbilityContext) bool{
			rules.EventCardBowed: func(e *game.Event, _ *game.AbilityContext) bool { return e.Card == target },
		},
	})
}

func TestCancelInterruptStopsEvent(t *testing.T) {
	h := gametest.New(t)
	target := h.Character(h.P2, "Protected", 2, 2)
	cancelBowOf(h, target, nil)

	h.Resolve(Bow(Static(CardProperties{})), h.Context(h.P1), game.Overrides{Target: game.CardValue(target)})

	assert.False(t, target.Bowed)
	records := h.Records(rules.EventCardBowed)
	require.Len(t, records, 1)
	assert.True(t, records[0].Cancelled)
	assert.True(t, h.HasMessage("Player 2 cancels onCardBowed"))
	h.RequireIdle()
}

func TestCancelWithReplacement(t *testing.T) {
	h := gametest.New(t)
	target := h.Character(h.P2, "Protected", 2, 2)
	cancelBowOf(h, target, Dishonor(Static(CardProperties{Target: game.CardValue(target)})))

	h.Resolve(Bow(Static(CardProperties{})), h.Context(h.P1), game.Overrides{Target: game.CardValue(target)})

	assert.False(t, target.Bowed)
	assert.True(t, target.Dishonored)
	assert.Len(t, h.Applied(rules.EventCardDishonored), 1)
}

func TestEventsThatCannotBeCancelled(t *testing.T) {
	h := gametest.New(t)
	target := h.Character(h.P2, "Protected", 2, 2)
	cancelBowOf(h, target, nil)
	h.Game.Effects().Add(game.EffectProperties{
		Effect:  game.EffectFactory{Name: game.EffectEventsCannotBeCancelled, Value: true},
		Targets: []game.EffectTarget{h.P1},
	})

	h.Resolve(Bow(Static(CardProperties{})), h.Context(h.P1), game.Overrides{Target: game.CardValue(target)})

	assert.True(t, target.Bowed)
	assert.Len(t, h.Applied(rules.EventCardBowed), 1)
}
