package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/gametest"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

func restrict(g *game.Game, target game.EffectTarget, actionType string) {
	g.Effects().Add(game.EffectProperties{
		Effect:  game.EffectFactory{Name: game.EffectRestriction, Value: game.Restriction{Type: actionType}},
		Targets: []game.EffectTarget{target},
	})
}

func TestBowAndReady(t *testing.T) {
	h := gametest.New(t)
	card := h.Character(h.P1, "Doji Whisperer", 1, 3)
	ctx := h.Context(h.P1)
	target := game.Overrides{Target: game.CardValue(card)}

	h.Resolve(Bow(Static(CardProperties{})), ctx, target)
	require.True(t, card.Bowed)
	assert.Len(t, h.Applied(rules.EventCardBowed), 1)

	assert.False(t, Bow(Static(CardProperties{})).CanAffect(game.CardValue(card), ctx, game.Overrides{}))
	h.Resolve(Bow(Static(CardProperties{})), ctx, target)
	assert.Len(t, h.Records(rules.EventCardBowed), 1, "bowing a bowed card raises no event")

	h.Resolve(Ready(Static(CardProperties{})), ctx, target)
	assert.False(t, card.Bowed)
	h.RequireIdle()
}

func TestCardActionDefaultsToSourceCard(t *testing.T) {
	h := gametest.New(t)
	card := h.Character(h.P1, "Bayushi Manipulator", 1, 2)

	h.Resolve(Bow(Static(CardProperties{})), h.CardContext(card), game.Overrides{})

	assert.True(t, card.Bowed)
}

func TestGetPropertiesPrecedence(t *testing.T) {
	h := gametest.New(t)
	first := h.Character(h.P1, "First", 1, 1)
	second := h.Character(h.P1, "Second", 1, 1)
	ctx := h.Context(h.P1)

	bow := Bow(Static(CardProperties{Target: game.CardValue(first)}))
	assert.Equal(t, []*game.Card{first}, bow.GetProperties(ctx, game.Overrides{}).Target.Cards())

	optional := true
	p := bow.GetProperties(ctx, game.Overrides{Target: game.CardValue(second), Optional: &optional})
	assert.Equal(t, []*game.Card{second}, p.Target.Cards())
	assert.True(t, p.Optional)

	fate := PlaceFate(Static(FateProperties{}))
	assert.Equal(t, 1, fate.GetProperties(ctx, game.Overrides{}).Amount, "amount defaults to 1")
}

func TestDerivedPropertiesAreEvaluatedPerCall(t *testing.T) {
	h := gametest.New(t)
	card := h.Character(h.P1, "Target", 1, 1)
	ctx := h.Context(h.P1)
	calls := 0
	fate := PlaceFate(Derived(func(*game.AbilityContext) FateProperties {
		calls++
		return FateProperties{CardProperties: CardProperties{Target: game.CardValue(card)}, Amount: 2}
	}))

	first := fate.GetProperties(ctx, game.Overrides{})
	second := fate.GetProperties(ctx, game.Overrides{})

	assert.Equal(t, first.Amount, second.Amount)
	assert.Equal(t, first.Target.Cards(), second.Target.Cards())
	assert.Equal(t, 2, calls)
	assert.True(t, fate.props.IsDerived())
}

func TestHonorRemovesDishonoredStatus(t *testing.T) {
	h := gametest.New(t)
	card := h.Character(h.P1, "Kakita Yoshi", 2, 4)
	card.Dishonored = true
	ctx := h.Context(h.P1)

	h.Resolve(Honor(Static(CardProperties{})), ctx, game.Overrides{Target: game.CardValue(card)})
	assert.False(t, card.Dishonored)
	assert.False(t, card.Honored)

	h.Resolve(Honor(Static(CardProperties{})), ctx, game.Overrides{Target: game.CardValue(card)})
	assert.True(t, card.Honored)

	assert.False(t, Honor(Static(CardProperties{})).CanAffect(game.CardValue(card), ctx, game.Overrides{}))
}

func TestDishonorRespectsRestriction(t *testing.T) {
	h := gametest.New(t)
	card := h.Character(h.P2, "Matsu Berserker", 3, 0)
	restrict(h.Game, card, game.RestrictionReceiveDishonorToken)

	dishonor := Dishonor(Static(CardProperties{}))
	assert.False(t, dishonor.CanAffect(game.CardValue(card), h.Context(h.P1), game.Overrides{}))

	card.Honored = true
	assert.True(t, dishonor.CanAffect(game.CardValue(card), h.Context(h.P1), game.Overrides{}),
		"losing the honored status needs no dishonor token")
}

func TestRestrictionOnActionNameBlocksEvent(t *testing.T) {
	h := gametest.New(t)
	card := h.Character(h.P2, "Steadfast Witch Hunter", 3, 1)
	restrict(h.Game, card, "bow")

	h.Resolve(Bow(Static(CardProperties{})), h.Context(h.P1), game.Overrides{Target: game.CardValue(card)})

	assert.False(t, card.Bowed)
	assert.Empty(t, h.Records(rules.EventCardBowed))
}

func TestDiscardFromPlayUsesSideDiscardPile(t *testing.T) {
	h := gametest.New(t)
	dynasty := h.Character(h.P1, "Miya Mystic", 1, 1)
	attachment := h.Card(h.P1, game.CardDefinition{Name: "Fine Katana", Type: game.CardTypeAttachment, Side: "conflict"}, game.LocationPlayArea)

	h.Resolve(DiscardFromPlay(Static(CardProperties{})), h.Context(h.P1), game.Overrides{
		Target: game.CardsValue(dynasty, attachment),
	})

	assert.Equal(t, game.LocationDynastyDiscard, dynasty.Location)
	assert.Equal(t, game.LocationConflictDiscard, attachment.Location)
	assert.Len(t, h.Applied(rules.EventCardLeavesPlay), 2)
}

func TestSacrificeRequiresControl(t *testing.T) {
	h := gametest.New(t)
	mine := h.Character(h.P1, "Mine", 1, 1)
	theirs := h.Character(h.P2, "Theirs", 1, 1)
	sacrifice := Sacrifice(Static(CardProperties{}))
	ctx := h.Context(h.P1)

	assert.True(t, sacrifice.CanAffect(game.CardValue(mine), ctx, game.Overrides{}))
	assert.False(t, sacrifice.CanAffect(game.CardValue(theirs), ctx, game.Overrides{}))
}

func TestReturnToHandSkipsDynastyCards(t *testing.T) {
	h := gametest.New(t)
	dynasty := h.Character(h.P1, "Dynasty", 1, 1)
	conflict := h.Card(h.P1, game.CardDefinition{Name: "Conflict Character", Type: game.CardTypeCharacter, Side: "conflict"}, game.LocationPlayArea)
	ctx := h.Context(h.P1)

	h.Resolve(ReturnToHand(Static(CardProperties{})), ctx, game.Overrides{Target: game.CardsValue(dynasty, conflict)})

	assert.Equal(t, game.LocationPlayArea, dynasty.Location)
	assert.Equal(t, game.LocationHand, conflict.Location)
}

func TestDiscardCardFromHand(t *testing.T) {
	h := gametest.New(t)
	card := h.HandCard(h.P2, "Banzai!")
	inPlay := h.Character(h.P2, "In Play", 1, 1)
	discard := DiscardCard(Static(CardProperties{}))

	assert.False(t, discard.CanAffect(game.CardValue(inPlay), h.Context(h.P1), game.Overrides{}))
	h.Resolve(discard, h.Context(h.P1), game.Overrides{Target: game.CardValue(card)})

	assert.Equal(t, game.LocationConflictDiscard, card.Location)
	assert.Len(t, h.Applied(rules.EventCardDiscarded), 1)
}

func TestPlaceFateFromPlayerIsCappedByAvailableFate(t *testing.T) {
	h := gametest.New(t)
	card := h.Character(h.P1, "Akodo Toturi", 6, 3)
	h.P1.Fate = 1

	h.Resolve(PlaceFate(Static(FateProperties{Amount: 3, Origin: h.P1})), h.Context(h.P1), game.Overrides{Target: game.CardValue(card)})

	assert.Equal(t, 1, card.Fate)
	assert.Equal(t, 0, h.P1.Fate)
	moves := h.Applied(rules.EventMoveFate)
	require.Len(t, moves, 1)
	assert.Equal(t, 1, moves[0].Amount)
	assert.Equal(t, "p1", moves[0].Metadata["origin"])
	assert.Equal(t, card.ID, moves[0].Metadata["recipient"])
}

func TestPlaceFateFromEmptyOriginHasNoTarget(t *testing.T) {
	h := gametest.New(t)
	card := h.Character(h.P1, "Akodo Toturi", 6, 3)
	h.P1.Fate = 0

	assert.False(t, PlaceFate(Static(FateProperties{Origin: h.P1})).HasLegalTarget(h.Context(h.P1), game.Overrides{Target: game.CardValue(card)}))
}

func TestRemoveFateToRecipient(t *testing.T) {
	h := gametest.New(t)
	card := h.Character(h.P2, "Isawa Kaede", 2, 3)
	card.Fate = 2
	ring := h.Game.Ring(game.ElementVoid)

	h.Resolve(RemoveFate(Static(FateProperties{Amount: 5, Recipient: ring})), h.Context(h.P1), game.Overrides{Target: game.CardValue(card)})

	assert.Equal(t, 0, card.Fate)
	assert.Equal(t, 2, ring.Fate)
	assert.False(t, RemoveFate(Static(FateProperties{})).CanAffect(game.CardValue(card), h.Context(h.P1), game.Overrides{}))
}

func TestBreakProvince(t *testing.T) {
	h := gametest.New(t)
	province := h.Province(h.P2, game.LocationProvinceOne, "Shameful Display", 3)

	h.Resolve(Break(Static(CardProperties{})), h.Context(h.P1), game.Overrides{Target: game.CardValue(province)})

	assert.True(t, province.IsBroken)
	assert.True(t, h.HasMessage("Shameful Display has been broken"))
	assert.False(t, Break(Static(CardProperties{})).CanAffect(game.CardValue(province), h.Context(h.P1), game.Overrides{}))
}

func TestSendHomeAndMoveToConflict(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 3, 1)
	helper := h.Character(h.P1, "Helper", 2, 2)
	province := h.Province(h.P2, game.LocationProvinceOne, "Province", 3)
	conflict := DeclareConflict(h.Game, h.P1, h.Game.Ring(game.ElementAir), province, game.ConflictMilitary, []*game.Card{attacker})
	h.Run()
	ctx := h.Context(h.P1)

	h.Resolve(MoveToConflict(Static(CardProperties{})), ctx, game.Overrides{Target: game.CardValue(helper)})
	assert.True(t, conflict.IsAttacking(helper))

	h.Resolve(SendHome(Static(CardProperties{})), ctx, game.Overrides{Target: game.CardValue(attacker)})
	assert.False(t, conflict.IsAttacking(attacker))
	assert.True(t, attacker.IsAtHome())
	h.RequireIdle()
}

func TestTaint(t *testing.T) {
	h := gametest.New(t)
	province := h.Province(h.P2, game.LocationProvinceTwo, "Province", 3)

	h.Resolve(Taint(Static(CardProperties{})), h.Context(h.P1), game.Overrides{Target: game.CardValue(province)})

	assert.True(t, province.Tainted)
	assert.Equal(t, 5, province.GetStrength())
}
