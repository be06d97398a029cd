package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/gametest"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// bowLoser bows whoever lost the duel.
func bowLoser(duel *game.Duel, _ *game.AbilityContext) game.Action {
	if len(duel.Loser) == 0 {
		return nil
	}
	return Bow(Static(CardProperties{Target: game.CardsValue(duel.Loser...)}))
}

type duelSetup struct {
	h          *gametest.Harness
	challenger *game.Card
	target     *game.Card
}

func newDuel(t *testing.T, challengerMil, targetMil int) duelSetup {
	h := gametest.New(t)
	return duelSetup{
		h:          h,
		challenger: h.Character(h.P1, "Mirumoto Raitsugu", challengerMil, 1),
		target:     h.Character(h.P2, "Hida Kisada", targetMil, 1),
	}
}

func (d duelSetup) start(props DuelProperties) {
	if props.Type == "" {
		props.Type = game.DuelMilitary
	}
	d.h.Resolve(Duel(Static(props)), d.h.CardContext(d.challenger), game.Overrides{Target: game.CardValue(d.target)})
}

func (d duelSetup) bid(p1, p2 string) {
	d.h.Choose(d.h.P1, p1)
	d.h.Choose(d.h.P2, p2)
}

func TestDuelWinnerResolvesEffect(t *testing.T) {
	d := newDuel(t, 3, 2)
	h := d.h

	d.start(DuelProperties{GameActionFor: bowLoser})
	view := h.Prompt(h.P1)
	assert.Equal(t, "Choose your bid for the duel", view.Title)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, view.Choices)
	d.bid("1", "1")

	assert.True(t, h.HasMessage("Player 1 reveals a bid of 1"))
	assert.True(t, h.HasMessage("Mirumoto Raitsugu won the duel with a total of 4 vs 3"))
	assert.True(t, h.HasMessage("Duel Effect: bow Hida Kisada"))
	assert.True(t, d.target.Bowed)
	assert.False(t, d.challenger.Bowed)
	assert.Len(t, h.Applied(rules.EventDuelInitiated), 1)
	assert.Len(t, h.Applied(rules.EventHonorBidsRevealed), 1)
	assert.Len(t, h.Applied(rules.EventDuelFinished), 1)
	h.RequireIdle()
}

func TestDuelTransfersHonorBetweenBids(t *testing.T) {
	d := newDuel(t, 3, 2)
	h := d.h

	d.start(DuelProperties{GameActionFor: bowLoser})
	d.bid("5", "1")

	assert.Equal(t, 6, h.P1.Honor)
	assert.Equal(t, 14, h.P2.Honor)
	assert.True(t, h.HasMessage("won the duel with a total of 8 vs 3"))
	h.RequireIdle()
}

func TestDuelTargetCanWin(t *testing.T) {
	d := newDuel(t, 1, 4)
	h := d.h

	d.start(DuelProperties{GameActionFor: bowLoser})
	d.bid("2", "2")

	assert.True(t, h.HasMessage("Hida Kisada won the duel with a total of 6 vs 3"))
	assert.True(t, d.challenger.Bowed)
	assert.False(t, d.target.Bowed)
	h.RequireIdle()
}

func TestDuelTieHasNoEffect(t *testing.T) {
	d := newDuel(t, 3, 3)
	h := d.h

	d.start(DuelProperties{GameActionFor: bowLoser})
	d.bid("1", "1")

	assert.True(t, h.HasMessage("The duel ends in a draw: 4 vs 4"))
	assert.True(t, h.HasMessage("The duel has no effect"))
	assert.False(t, d.challenger.Bowed)
	assert.False(t, d.target.Bowed)
	h.RequireIdle()
}

func TestCannotBidInDuelsCountsBidAsZero(t *testing.T) {
	d := newDuel(t, 3, 2)
	h := d.h
	h.Game.Effects().Add(game.EffectProperties{
		Effect:  game.EffectFactory{Name: game.EffectCannotBidInDuels, Value: true},
		Targets: []game.EffectTarget{h.P1},
	})

	d.start(DuelProperties{GameActionFor: bowLoser})
	d.bid("1", "2")

	assert.True(t, h.HasMessage("Hida Kisada won the duel with a total of 4 vs 3"))
	assert.True(t, d.challenger.Bowed, "the target wins once the challenger's bid is ignored")
}

func TestDuelCanBeRefused(t *testing.T) {
	d := newDuel(t, 3, 2)
	h := d.h

	d.start(DuelProperties{
		GameActionFor:    bowLoser,
		RefuseGameAction: Dishonor(Static(CardProperties{Target: game.CardValue(d.target)})),
	})
	view := h.Prompt(h.P2)
	assert.Equal(t, "Do you wish to refuse the duel?", view.Title)
	h.Choose(h.P2, "Yes")

	assert.True(t, d.target.Dishonored)
	assert.True(t, h.HasMessage("Player 2 chooses to refuse the duel and dishonor Hida Kisada"))
	assert.Empty(t, h.Records(rules.EventDuelInitiated))
	h.RequireIdle()
}

func TestDuelRefusalDeclined(t *testing.T) {
	d := newDuel(t, 3, 2)
	h := d.h

	d.start(DuelProperties{
		GameActionFor:    bowLoser,
		RefuseGameAction: Dishonor(Static(CardProperties{Target: game.CardValue(d.target)})),
	})
	h.Choose(h.P2, "No")
	d.bid("1", "1")

	assert.False(t, d.target.Dishonored)
	assert.True(t, d.target.Bowed)
	h.RequireIdle()
}

func TestDuelEffectsLastUntilDuelFinishes(t *testing.T) {
	d := newDuel(t, 1, 2)
	h := d.h

	d.start(DuelProperties{
		GameActionFor:     bowLoser,
		ChallengerEffects: []game.EffectFactory{{Name: game.EffectModifyMilitarySkill, Value: 2}},
	})
	require.Equal(t, 3, d.challenger.GetMilitarySkill())
	d.bid("1", "1")

	assert.True(t, d.target.Bowed)
	assert.Equal(t, 1, d.challenger.GetMilitarySkill())
	h.RequireIdle()
}

func TestDuelRequiresLegalParticipants(t *testing.T) {
	h := gametest.New(t)
	challenger := h.Character(h.P1, "Challenger", 3, 1)
	dashed := h.Card(h.P2, game.CardDefinition{
		Name: "Dashed", Type: game.CardTypeCharacter, Side: "dynasty", MilitaryDash: true, Political: 2,
	}, game.LocationPlayArea)
	ally := h.Character(h.P1, "Ally", 2, 2)
	ctx := h.CardContext(challenger)
	duel := Duel(Static(DuelProperties{Type: game.DuelMilitary}))

	assert.False(t, duel.CanAffect(game.CardValue(dashed), ctx, game.Overrides{}))
	assert.False(t, duel.CanAffect(game.CardValue(challenger), ctx, game.Overrides{}))
	assert.True(t, duel.CanAffect(game.CardValue(ally), ctx, game.Overrides{}))

	political := Duel(Static(DuelProperties{Type: game.DuelPolitical}))
	assert.True(t, political.CanAffect(game.CardValue(dashed), ctx, game.Overrides{}))
}

func TestShiftPlaceholders(t *testing.T) {
	assert.Equal(t, "take {1} from {2}", shiftPlaceholders("take {0} from {1}", 1))
	assert.Equal(t, "no args {x}", shiftPlaceholders("no args {x}", 1))
}

func TestDuelWithNoOpActionLeavesParticipantsUnchanged(t *testing.T) {
	d := newDuel(t, 3, 2)
	h := d.h
	before := []game.CardSnapshot{d.challenger.CreateSnapshot(), d.target.CreateSnapshot()}

	d.start(DuelProperties{GameAction: NoAction()})
	d.bid("2", "2")

	after := []game.CardSnapshot{d.challenger.CreateSnapshot(), d.target.CreateSnapshot()}
	assert.Equal(t, before, after)
	assert.Equal(t, 10, h.P1.Honor)
	assert.Equal(t, 10, h.P2.Honor)
	assert.True(t, h.HasMessage("Mirumoto Raitsugu won the duel with a total of 5 vs 4"))
	assert.Len(t, h.Applied(rules.EventDuelFinished), 1)
	h.RequireIdle()
}

func TestDuelCostHandlerReplacesHonorTransfer(t *testing.T) {
	d := newDuel(t, 3, 2)
	h := d.h

	d.start(DuelProperties{
		GameActionFor: bowLoser,
		CostHandler: func(ctx *game.AbilityContext, flow *DuelFlow) {
			for _, player := range flow.Bidders() {
				ctx.Game.ResolveGameAction(LoseHonor(Static(AmountProperties{
					PlayerProperties: PlayerProperties{Target: game.PlayerValue(player)},
					Amount:           player.HonorBid,
				})), ctx, game.Overrides{})
			}
		},
	})
	d.bid("4", "1")

	assert.Equal(t, 6, h.P1.Honor, "each player pays their own bid")
	assert.Equal(t, 9, h.P2.Honor)
	assert.Empty(t, h.Records(rules.EventTransferHonor))
	assert.True(t, d.target.Bowed)
	h.RequireIdle()
}

func TestDuelCostHandlerCanKeepDefaultTransfer(t *testing.T) {
	d := newDuel(t, 3, 2)
	h := d.h
	var seen *game.Duel

	d.start(DuelProperties{
		GameActionFor: bowLoser,
		CostHandler: func(_ *game.AbilityContext, flow *DuelFlow) {
			seen = flow.Duel()
			flow.TransferHonorAfterBid()
		},
	})
	d.bid("5", "1")

	require.NotNil(t, seen)
	assert.Equal(t, d.challenger, seen.Challenger)
	assert.Equal(t, 6, h.P1.Honor)
	assert.Equal(t, 14, h.P2.Honor)
	h.RequireIdle()
}
