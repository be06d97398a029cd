package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/gametest"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

type conflictSetup struct {
	h        *gametest.Harness
	ring     *game.Ring
	province *game.Card
	attacker *game.Card
	defender *game.Card
	conflict *game.Conflict
}

// declare starts a military air conflict by P1 with one attacker and, when
// defenderMil is non-negative, one P2 defender.
func declare(t *testing.T, attackerMil, defenderMil, provinceStrength int) conflictSetup {
	h := gametest.New(t)
	s := conflictSetup{
		h:        h,
		ring:     h.Game.Ring(game.ElementAir),
		province: h.Province(h.P2, game.LocationProvinceOne, "Pilgrimage", provinceStrength),
		attacker: h.Character(h.P1, "Attacker", attackerMil, 0),
	}
	s.conflict = DeclareConflict(h.Game, h.P1, s.ring, s.province, game.ConflictMilitary, []*game.Card{s.attacker})
	if defenderMil >= 0 {
		s.defender = h.Character(h.P2, "Defender", defenderMil, 0)
		s.conflict.AddDefenders([]*game.Card{s.defender})
	}
	h.Run()
	return s
}

func (s conflictSetup) resolve() {
	s.h.Game.QueueStep(NewConflictResolution(s.h.Game, s.conflict))
	s.h.Run()
}

func TestDeclareConflict(t *testing.T) {
	s := declare(t, 3, -1, 3)
	h := s.h

	assert.Equal(t, s.conflict, h.Game.CurrentConflict())
	assert.True(t, s.ring.Contested)
	assert.True(t, s.conflict.IsAttacking(s.attacker))
	assert.True(t, s.attacker.InConflict)
	assert.True(t, h.HasMessage("Player 1 is initiating a military conflict at Pilgrimage, contesting Air Ring"))
	assert.Len(t, h.Applied(rules.EventConflictDeclared), 1)
}

func TestAttackerWinsBreaksAndClaims(t *testing.T) {
	s := declare(t, 4, 1, 3)
	h := s.h

	s.resolve()
	assert.True(t, h.HasMessage("Player 1 won a military conflict 4 vs 1"))
	assert.True(t, s.province.IsBroken)

	view := h.Prompt(h.P1)
	assert.Equal(t, []string{"Gain 2 Honor", "Take 1 Honor from opponent", "Don't resolve"}, view.Choices)
	h.Choose(h.P1, "Gain 2 Honor")

	assert.Equal(t, 12, h.P1.Honor)
	assert.Equal(t, "Player 1", s.ring.ClaimedBy)
	assert.False(t, s.ring.Contested)
	assert.True(t, s.attacker.Bowed)
	assert.True(t, s.defender.Bowed)
	assert.Nil(t, h.Game.CurrentConflict())
	assert.False(t, s.attacker.InConflict)
	require.Len(t, h.Game.ConflictHistory(), 1)
	assert.Len(t, h.Applied(rules.EventConflictDecided), 1)
	assert.Len(t, h.Applied(rules.EventConflictFinished), 1)
	h.RequireIdle()
}

func TestAttackerWinsWithoutBreaking(t *testing.T) {
	s := declare(t, 4, 2, 3)
	h := s.h

	s.resolve()
	h.Choose(h.P1, "Don't resolve")

	assert.False(t, s.province.IsBroken)
	assert.Equal(t, "Player 1", s.ring.ClaimedBy)
	h.RequireIdle()
}

func TestUnopposedConflictCostsDefenderHonor(t *testing.T) {
	s := declare(t, 2, -1, 5)
	h := s.h

	s.resolve()
	h.Choose(h.P1, "Don't resolve")

	assert.True(t, s.conflict.ConflictUnopposed)
	assert.Equal(t, 9, h.P2.Honor)
	assert.True(t, h.HasMessage("Player 2 loses 1 honor for not defending the conflict"))
	h.RequireIdle()
}

func TestDefenderWinsClaimsRing(t *testing.T) {
	s := declare(t, 1, 3, 3)
	h := s.h

	s.resolve()

	assert.True(t, h.HasMessage("Player 2 won a military conflict 3 vs 1"))
	assert.Equal(t, "Player 2", s.ring.ClaimedBy)
	assert.False(t, s.province.IsBroken)
	assert.Equal(t, 10, h.P2.Honor)
	h.RequireIdle()
}

func TestTiesGoToTheAttacker(t *testing.T) {
	s := declare(t, 2, 2, 4)
	h := s.h

	s.resolve()
	h.Choose(h.P1, "Don't resolve")

	assert.True(t, s.conflict.IsAttackerTheWinner())
	assert.False(t, s.province.IsBroken)
	h.RequireIdle()
}

func TestNoWinnerResetsRing(t *testing.T) {
	s := declare(t, 0, -1, 3)
	h := s.h

	s.resolve()

	assert.True(t, h.HasMessage("There is no winner of the military conflict"))
	assert.Nil(t, s.conflict.Winner)
	assert.False(t, s.ring.IsClaimed())
	assert.False(t, s.ring.Contested)
	assert.Equal(t, 10, h.P2.Honor)
	h.RequireIdle()
}

func TestAttackerChoosesRingElements(t *testing.T) {
	s := declare(t, 4, -1, 6)
	h := s.h
	h.Game.Effects().Add(game.EffectProperties{
		Effect:  game.EffectFactory{Name: game.EffectAddElement, Value: game.ElementEarth},
		Targets: []game.EffectTarget{s.ring},
	})

	s.resolve()
	view := h.Prompt(h.P1)
	assert.Equal(t, "Choose a ring effect to resolve", view.Title)
	assert.Equal(t, []string{"Air Ring", "Earth Ring"}, view.Choices)
	h.Choose(h.P1, "Earth Ring")

	h.Choose(h.P1, "Don't resolve")
	assert.True(t, h.HasMessage("Player 1 chooses not to resolve Earth Ring"))
	assert.Equal(t, 10, h.P1.Honor)
	assert.Equal(t, "Player 1", s.ring.ClaimedBy)
	h.RequireIdle()
}

func TestCannotResolveRingsDuringConflict(t *testing.T) {
	s := declare(t, 4, -1, 6)
	h := s.h
	h.Game.Effects().Add(game.EffectProperties{
		Effect:  game.EffectFactory{Name: game.EffectCannotResolveRings, Value: true},
		Targets: []game.EffectTarget{h.P1},
	})

	s.resolve()

	assert.True(t, h.HasMessage("Player 1's ring effect is cancelled."))
	assert.Equal(t, "Player 1", s.ring.ClaimedBy)
	h.RequireIdle()
}
