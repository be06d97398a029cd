package game_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/effects"
	"github.com/jigoku/jigoku-server-go/internal/game/gametest"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

type conflictSetup struct {
	h        *gametest.Harness
	conflict *game.Conflict
	province *game.Card
}

// declare starts a conflict by P1 at the air ring against a strength 3
// province, with the given participants.
func declare(h *gametest.Harness, attackers, defenders []*game.Card) conflictSetup {
	province := h.Province(h.P2, game.LocationProvinceOne, "Shameful Display", 3)
	ring := h.Game.Ring(game.ElementAir)
	c := game.NewConflict(h.Game, h.P1, h.P2, ring, province, "")
	ring.Contested = true
	h.Game.SetCurrentConflict(c)
	c.AddAttackers(attackers)
	c.AddDefenders(defenders)
	c.SetDeclarationComplete(true)
	return conflictSetup{h: h, conflict: c, province: province}
}

func TestConflictSkillScenario(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Akodo Toturi", 2, 1)
	defender := h.Character(h.P2, "Hida Kisada", 3, 1)
	c := declare(h, []*game.Card{attacker}, []*game.Card{defender}).conflict

	c.CalculateSkill(false)
	assert.Equal(t, 2, c.AttackerSkill)
	assert.Equal(t, 3, c.DefenderSkill)

	c.DetermineWinner()
	assert.Same(t, h.P2, c.Winner)
	assert.Same(t, h.P1, c.Loser)
	assert.Equal(t, 3, c.WinnerSkill)
	assert.Equal(t, 2, c.LoserSkill)
	assert.Equal(t, 1, c.SkillDifference)
	assert.False(t, c.IsAttackerTheWinner())
	assert.True(t, c.WinnerDetermined())
}

func TestConflictWinnerInvariant(t *testing.T) {
	for attack := 0; attack <= 3; attack++ {
		for defend := 0; defend <= 3; defend++ {
			t.Run(fmt.Sprintf("%d vs %d", attack, defend), func(t *testing.T) {
				h := gametest.New(t)
				attacker := h.Character(h.P1, "Attacker", attack, 0)
				defender := h.Character(h.P2, "Defender", defend, 0)
				c := declare(h, []*game.Card{attacker}, []*game.Card{defender}).conflict

				c.DetermineWinner()

				switch {
				case attack == 0 && defend == 0:
					assert.Nil(t, c.Winner)
					assert.Nil(t, c.Loser)
					assert.Equal(t, 0, c.SkillDifference)
				case attack >= defend:
					assert.Same(t, h.P1, c.Winner)
					assert.Same(t, h.P2, c.Loser)
				default:
					assert.Same(t, h.P2, c.Winner)
					assert.Same(t, h.P1, c.Loser)
				}
				if c.Winner != nil {
					assert.Equal(t, c.WinnerSkill-c.LoserSkill, c.SkillDifference)
					assert.GreaterOrEqual(t, c.SkillDifference, 0)
				}
			})
		}
	}
}

func TestDetermineWinnerRecordsProvinceStrength(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 4, 0)
	setup := declare(h, []*game.Card{attacker}, nil)

	setup.conflict.DetermineWinner()

	require.Len(t, setup.conflict.ProvinceStrengthsAtResolution, 1)
	assert.Equal(t, game.ProvinceStrength{Province: setup.province, Strength: 3}, setup.conflict.ProvinceStrengthsAtResolution[0])
}

func TestSkillIsFixedOnceWinnerDetermined(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	c := declare(h, []*game.Card{attacker}, nil).conflict
	c.DetermineWinner()

	effects.For(h.Context(h.P1)).Targeting(attacker).Apply(effects.ModifyMilitarySkill(5))
	c.CalculateSkill(false)

	assert.Equal(t, 2, c.AttackerSkill)
}

func TestSetConflictTotalSkillOverridesParticipants(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	defender := h.Character(h.P2, "Defender", 3, 0)
	c := declare(h, []*game.Card{attacker}, []*game.Card{defender}).conflict
	effects.For(h.Context(h.P1)).Targeting(h.P1).Apply(
		effects.ChangePlayerSkillModifier(4),
		effects.SetConflictTotalSkill(7),
	)

	c.CalculateSkill(false)

	assert.Equal(t, 7, c.AttackerSkill)
	assert.Equal(t, 3, c.DefenderSkill)
}

func TestImperialFavorBonus(t *testing.T) {
	tests := []struct {
		name  string
		favor game.Favor
		want  int
	}{
		{"matching favor", game.FavorMilitary, 3},
		{"other favor", game.FavorPolitical, 2},
		{"both", game.FavorBoth, 3},
		{"no favor", game.FavorNone, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := gametest.New(t)
			h.P1.ImperialFavor = tt.favor
			attacker := h.Character(h.P1, "Attacker", 2, 0)
			c := declare(h, []*game.Card{attacker}, nil).conflict

			c.CalculateSkill(false)

			assert.Equal(t, tt.want, c.AttackerSkill)
		})
	}
}

func TestImperialFavorNeedsParticipants(t *testing.T) {
	h := gametest.New(t)
	h.P2.ImperialFavor = game.FavorBoth
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	c := declare(h, []*game.Card{attacker}, nil).conflict

	c.CalculateSkill(false)

	assert.Equal(t, 0, c.DefenderSkill)
}

func TestBowedCharactersDoNotContribute(t *testing.T) {
	h := gametest.New(t)
	bowed := h.Character(h.P1, "Bowed", 3, 0)
	steadfast := h.Character(h.P1, "Steadfast", 2, 0)
	bowed.Bowed = true
	steadfast.Bowed = true
	c := declare(h, []*game.Card{bowed, steadfast}, nil).conflict
	effects.For(h.Context(h.P1)).Targeting(steadfast).Apply(effects.CanContributeWhileBowed())

	c.CalculateSkill(false)

	assert.Equal(t, 2, c.AttackerSkill)
}

func TestCannotContribute(t *testing.T) {
	h := gametest.New(t)
	big := h.Character(h.P1, "Big", 5, 0)
	small := h.Character(h.P1, "Small", 1, 0)
	c := declare(h, []*game.Card{big, small}, nil).conflict
	effects.For(h.Context(h.P2)).Targeting(c).Apply(effects.CannotContribute(func(card *game.Card) bool {
		return card.GetMilitarySkill() > 3
	}))

	c.CalculateSkill(false)

	assert.Equal(t, 1, c.AttackerSkill)
}

func TestContributionRestriction(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 3, 0)
	other := h.Character(h.P1, "Other", 1, 0)
	c := declare(h, []*game.Card{attacker, other}, nil).conflict
	effects.For(h.Context(h.P2)).Targeting(attacker).Apply(effects.CardCannot(game.RestrictionContributeSkillToConflict, nil))

	c.CalculateSkill(false)

	assert.Equal(t, 1, c.AttackerSkill)
}

func TestPlayerSkillModifier(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	defender := h.Character(h.P2, "Defender", 2, 0)
	c := declare(h, []*game.Card{attacker}, []*game.Card{defender}).conflict
	effects.For(h.Context(h.P2)).Targeting(h.P2).Apply(effects.ChangePlayerSkillModifier(2))

	c.CalculateSkill(false)

	assert.Equal(t, 2, c.AttackerSkill)
	assert.Equal(t, 4, c.DefenderSkill)
}

func TestChangeConflictSkillFunction(t *testing.T) {
	h := gametest.New(t)
	first := h.Character(h.P1, "First", 1, 3)
	second := h.Character(h.P1, "Second", 1, 4)
	defender := h.Character(h.P2, "Defender", 2, 5)
	c := declare(h, []*game.Card{first, second}, []*game.Card{defender}).conflict
	ctx := h.Context(h.P1)

	effects.For(ctx).Targeting(c).Apply(effects.ChangeConflictSkillFunction(func(card *game.Card, _ *game.Conflict) int {
		return card.GetPoliticalSkill()
	}))
	c.CalculateSkill(false)
	assert.Equal(t, 7, c.AttackerSkill)
	assert.Equal(t, 5, c.DefenderSkill)

	effects.For(ctx).Targeting(h.P1).Apply(effects.ChangeConflictSkillFunction(func(*game.Card, *game.Conflict) int {
		return 10
	}))
	c.CalculateSkill(false)
	assert.Equal(t, 20, c.AttackerSkill, "the controller's function wins for their cards")
	assert.Equal(t, 5, c.DefenderSkill)
}

func TestContributeToConflictFromHome(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	helper := h.Character(h.P1, "Helper", 3, 0)
	c := declare(h, []*game.Card{attacker}, nil).conflict
	effects.For(h.Context(h.P1)).Targeting(helper).Apply(effects.ContributeToConflict(h.P1))

	c.CalculateSkill(false)

	assert.Equal(t, 5, c.AttackerSkill)
	assert.False(t, c.IsAttacking(helper))
}

func TestParticipatesFromHome(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	remote := h.Character(h.P1, "Remote", 1, 0)
	c := declare(h, []*game.Card{attacker}, nil).conflict
	effects.For(h.Context(h.P1)).Targeting(remote).Apply(effects.ParticipatesFromHome())

	assert.True(t, c.IsAttacking(remote))
	assert.True(t, c.IsParticipating(remote))
	c.CalculateSkill(false)
	assert.Equal(t, 3, c.AttackerSkill)
}

func TestAddParticipantsIsIdempotent(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	defender := h.Character(h.P2, "Defender", 2, 0)
	c := declare(h, []*game.Card{attacker, attacker}, []*game.Card{defender}).conflict

	c.AddAttacker(attacker)
	c.AddAttackers([]*game.Card{attacker})
	c.AddDefender(defender)
	c.AddDefenders([]*game.Card{defender, defender})

	assert.Equal(t, []*game.Card{attacker}, c.GetAttackers(nil))
	assert.Equal(t, []*game.Card{defender}, c.GetDefenders(nil))
	assert.Equal(t, 2, c.GetNumberOfParticipants(nil))
	assert.True(t, attacker.InConflict)
}

func TestRemoveFromConflict(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	c := declare(h, []*game.Card{attacker}, nil).conflict

	c.RemoveFromConflict(attacker)

	assert.Empty(t, c.GetAttackers(nil))
	assert.False(t, attacker.InConflict)
	assert.True(t, attacker.IsAtHome())
}

func TestParticipantCounts(t *testing.T) {
	h := gametest.New(t)
	a1 := h.Character(h.P1, "A1", 1, 0)
	a2 := h.Character(h.P1, "A2", 1, 0)
	d1 := h.Character(h.P2, "D1", 1, 0)
	c := declare(h, []*game.Card{a1, a2}, []*game.Card{d1}).conflict

	assert.Equal(t, 2, c.GetNumberOfParticipantsFor(h.P1, nil))
	assert.True(t, c.HasMoreParticipants(h.P1, nil))

	effects.For(h.Context(h.P2)).Targeting(h.P2).Apply(effects.AdditionalCharactersInConflict(1))
	assert.Equal(t, 2, c.GetNumberOfParticipantsFor(h.P2, nil))
	assert.Equal(t, 1, c.GetNumberOfParticipantsFor(h.P2, func(*game.Card) bool { return true }))
	assert.False(t, c.HasMoreParticipants(h.P1, nil))
}

func TestCardsPlayedDuringConflict(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 1, 0)
	c := declare(h, []*game.Card{attacker}, nil).conflict
	event := h.HandCard(h.P1, "Banzai!")

	c.AddCardPlayed(h.P1, event)
	effects.For(h.Context(h.P1)).Targeting(h.P1).Apply(effects.AdditionalCardPlayed(2))

	played := c.GetCardsPlayed(h.P1, nil)
	require.Len(t, played, 1)
	assert.Equal(t, "Banzai!", played[0].Name)
	assert.Equal(t, 3, c.GetNumberOfCardsPlayed(h.P1, nil))
	assert.Equal(t, 1, c.GetNumberOfCardsPlayed(h.P1, func(s game.CardSnapshot) bool { return s.Type == game.CardTypeEvent }))
	assert.Equal(t, 0, c.GetNumberOfCardsPlayed(h.P2, nil))
}

func TestIsBreaking(t *testing.T) {
	tests := []struct {
		attack, defend int
		want           bool
	}{
		{5, 1, true},
		{3, 0, true},
		{3, 1, false},
		{1, 3, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d vs %d", tt.attack, tt.defend), func(t *testing.T) {
			h := gametest.New(t)
			attacker := h.Character(h.P1, "Attacker", tt.attack, 0)
			defender := h.Character(h.P2, "Defender", tt.defend, 0)
			c := declare(h, []*game.Card{attacker}, []*game.Card{defender}).conflict

			c.CalculateSkill(false)

			assert.Equal(t, tt.want, c.IsBreaking())
			assert.Equal(t, tt.want, c.GetSummary().Breaking)
		})
	}
}

func TestConflictSummary(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 3, 0)
	c := declare(h, []*game.Card{attacker}, nil).conflict
	c.CalculateSkill(false)

	summary := c.GetSummary()

	assert.Equal(t, h.P1.ID, summary.AttackingPlayerID)
	assert.Equal(t, h.P2.ID, summary.DefendingPlayerID)
	assert.Equal(t, 3, summary.AttackerSkill)
	assert.Equal(t, game.ConflictMilitary, summary.Type)
	assert.Equal(t, []game.Element{game.ElementAir}, summary.Elements)
	assert.True(t, summary.AttackerWins)
	assert.True(t, summary.Unopposed)
	assert.True(t, summary.DeclarationComplete)
}

func TestSwitchElementTakesFateFromNewRing(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	c := declare(h, []*game.Card{attacker}, nil).conflict
	air, fire := h.Game.Ring(game.ElementAir), h.Game.Ring(game.ElementFire)
	fire.Fate = 2

	c.SwitchElement(game.ElementFire)
	h.Run()

	assert.Same(t, fire, c.Ring)
	assert.True(t, fire.Contested)
	assert.Equal(t, 0, fire.Fate)
	assert.Equal(t, 12, h.P1.Fate)
	assert.True(t, air.IsUnclaimed())
	moves := h.Applied(rules.EventMoveFate)
	require.Len(t, moves, 1)
	assert.Equal(t, 2, moves[0].Amount)
	assert.True(t, h.HasMessage("Player 1 takes 2 fate from Fire Ring"))
}

func TestSwitchElementRespectsTakeFateRestriction(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	c := declare(h, []*game.Card{attacker}, nil).conflict
	fire := h.Game.Ring(game.ElementFire)
	fire.Fate = 2
	effects.For(h.Context(h.P2)).Targeting(h.P1).Apply(effects.PlayerCannot(game.RestrictionTakeFateFromRings, nil))

	c.SwitchElement(game.ElementFire)
	h.Run()

	assert.Equal(t, 2, fire.Fate)
	assert.Equal(t, 10, h.P1.Fate)
	assert.Empty(t, h.Records(rules.EventMoveFate))
}

func TestSwitchElementTransfersClaim(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	c := declare(h, []*game.Card{attacker}, nil).conflict
	air, water := h.Game.Ring(game.ElementAir), h.Game.Ring(game.ElementWater)
	water.ClaimRing(h.P2)

	c.SwitchElement(game.ElementWater)

	assert.Same(t, water, c.Ring)
	assert.True(t, water.Contested)
	assert.False(t, water.IsClaimed())
	assert.Equal(t, h.P2.Name, air.ClaimedBy)
	claimed := 0
	for _, ring := range h.Game.Rings() {
		if ring.ClaimedBy == h.P2.Name {
			claimed++
		}
	}
	assert.Equal(t, 1, claimed)
}

func TestSwitchElementMatchesConflictType(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	c := declare(h, []*game.Card{attacker}, nil).conflict
	earth := h.Game.Ring(game.ElementEarth)
	earth.ConflictType = game.ConflictPolitical

	c.SwitchElement(game.ElementEarth)

	assert.Equal(t, game.ConflictMilitary, earth.ConflictType)
	assert.Equal(t, game.ConflictMilitary, c.ConflictType())
}

func TestSwitchElementToMissingRingPanics(t *testing.T) {
	h := gametest.New(t)
	c := declare(h, nil, nil).conflict

	assert.Panics(t, func() { c.SwitchElement(game.Element("spirit")) })
}

func TestSwitchType(t *testing.T) {
	h := gametest.New(t)
	c := declare(h, nil, nil).conflict

	c.SwitchType()

	assert.Equal(t, game.ConflictPolitical, c.ConflictType())
	assert.True(t, c.ConflictTypeSwitched)
}

func TestPassConflict(t *testing.T) {
	h := gametest.New(t)
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	setup := declare(h, []*game.Card{attacker}, nil)
	c := setup.conflict
	ring := c.Ring

	c.PassConflict("")
	h.Run()

	assert.Nil(t, h.Game.CurrentConflict())
	assert.True(t, ring.IsUnclaimed())
	assert.False(t, ring.Contested)
	assert.True(t, c.ConflictPassed)
	assert.False(t, attacker.InConflict)
	assert.Equal(t, []*game.Conflict{c}, h.Game.ConflictHistory())
	assert.Len(t, h.Applied(rules.EventConflictPass), 1)
	assert.True(t, h.HasMessage("Player 1 has chosen to pass their conflict opportunity"))
}

func TestSinglePlayerConflictUsesDummyDefender(t *testing.T) {
	h := gametest.New(t, gametest.SinglePlayer())
	attacker := h.Character(h.P1, "Attacker", 2, 0)
	province := h.Province(h.P1, game.LocationProvinceOne, "Own Province", 3)
	c := game.NewConflict(h.Game, h.P1, nil, h.Game.Ring(game.ElementVoid), province, "")
	h.Game.SetCurrentConflict(c)
	c.AddAttackers([]*game.Card{attacker})
	c.SetDeclarationComplete(true)

	c.DetermineWinner()

	assert.True(t, c.IsSinglePlayer)
	assert.True(t, c.DefendingPlayer.IsDummy())
	assert.Equal(t, 0, c.DefenderSkill)
	assert.Same(t, h.P1, c.Winner)
	assert.Equal(t, 2, c.SkillDifference)
}
