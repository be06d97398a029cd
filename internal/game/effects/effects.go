// Package effects provides the named modifiers cards apply through the
// effect engine, and a fluent builder registering them.
package effects

import "github.com/jigoku/jigoku-server-go/internal/game"

func static(name game.EffectName, value any) game.EffectFactory {
	return game.EffectFactory{Name: name, Value: value}
}

// ModifyMilitarySkill adds n to a character's military skill.
func ModifyMilitarySkill(n int) game.EffectFactory {
	return static(game.EffectModifyMilitarySkill, n)
}

// ModifyMilitarySkillBy computes the modifier for each affected card.
func ModifyMilitarySkillBy(fn func(card *game.Card, ctx *game.AbilityContext) int) game.EffectFactory {
	return cardDynamic(game.EffectModifyMilitarySkill, fn)
}

// ModifyPoliticalSkill adds n to a character's political skill.
func ModifyPoliticalSkill(n int) game.EffectFactory {
	return static(game.EffectModifyPoliticalSkill, n)
}

// ModifyPoliticalSkillBy computes the modifier for each affected card.
func ModifyPoliticalSkillBy(fn func(card *game.Card, ctx *game.AbilityContext) int) game.EffectFactory {
	return cardDynamic(game.EffectModifyPoliticalSkill, fn)
}

// ModifyBothSkills adds n to both skills.
func ModifyBothSkills(n int) game.EffectFactory {
	return static(game.EffectModifyBothSkills, n)
}

// SetMilitarySkill overrides military skill; the newest one wins.
func SetMilitarySkill(n int) game.EffectFactory {
	return static(game.EffectSetMilitarySkill, n)
}

// SetPoliticalSkill overrides political skill; the newest one wins.
func SetPoliticalSkill(n int) game.EffectFactory {
	return static(game.EffectSetPoliticalSkill, n)
}

func ModifyGlory(n int) game.EffectFactory {
	return static(game.EffectModifyGlory, n)
}

func ModifyProvinceStrength(n int) game.EffectFactory {
	return static(game.EffectModifyProvinceStrength, n)
}

func SetProvinceStrength(n int) game.EffectFactory {
	return static(game.EffectSetProvinceStrength, n)
}

func cardDynamic(name game.EffectName, fn func(card *game.Card, ctx *game.AbilityContext) int) game.EffectFactory {
	return game.EffectFactory{
		Name: name,
		Dynamic: func(target game.EffectTarget, ctx *game.AbilityContext) any {
			card, ok := target.(*game.Card)
			if !ok {
				return 0
			}
			return fn(card, ctx)
		},
	}
}

// CardCannot forbids a game action (by name) or restriction type on the
// affected cards, while condition holds for the acting context.
func CardCannot(actionType string, condition func(ctx *game.AbilityContext) bool) game.EffectFactory {
	return static(game.EffectRestriction, game.Restriction{Type: actionType, Condition: condition})
}

// PlayerCannot is CardCannot for players.
func PlayerCannot(actionType string, condition func(ctx *game.AbilityContext) bool) game.EffectFactory {
	return static(game.EffectRestriction, game.Restriction{Type: actionType, Condition: condition})
}

func CanContributeWhileBowed() game.EffectFactory {
	return static(game.EffectCanContributeWhileBowed, true)
}

// ContributeToConflict makes a character not participating add its skill
// to player's side.
func ContributeToConflict(player *game.Player) game.EffectFactory {
	return static(game.EffectContributeToConflict, player)
}

func ParticipatesFromHome() game.EffectFactory {
	return static(game.EffectParticipatesFromHome, true)
}

// CannotParticipateAsAttacker blocks attacking in conflicts of type t, or
// in every conflict when t is empty.
func CannotParticipateAsAttacker(t game.ConflictType) game.EffectFactory {
	return static(game.EffectCannotParticipateAsAttacker, t)
}

// CannotParticipateAsDefender blocks defending in conflicts of type t, or
// in every conflict when t is empty.
func CannotParticipateAsDefender(t game.ConflictType) game.EffectFactory {
	return static(game.EffectCannotParticipateAsDefender, t)
}

// AddElement gives a ring an additional element.
func AddElement(e game.Element) game.EffectFactory {
	return static(game.EffectAddElement, e)
}

// ConsideredAsClaimed makes player count as having claimed the ring. A nil
// player counts for both.
func ConsideredAsClaimed(player *game.Player) game.EffectFactory {
	return static(game.EffectConsideredAsClaimed, player)
}

// WinDuel makes the affected character win duel regardless of totals.
func WinDuel(duel *game.Duel) game.EffectFactory {
	return static(game.EffectWinDuel, duel)
}

func CannotBidInDuels() game.EffectFactory {
	return static(game.EffectCannotBidInDuels, true)
}

func CannotResolveRings() game.EffectFactory {
	return static(game.EffectCannotResolveRings, true)
}

// ChangePlayerSkillModifier adds n to every conflict total of the player.
func ChangePlayerSkillModifier(n int) game.EffectFactory {
	return static(game.EffectChangePlayerSkillModifier, n)
}

// SetConflictTotalSkill fixes the player's conflict total.
func SetConflictTotalSkill(n int) game.EffectFactory {
	return static(game.EffectSetConflictTotalSkill, n)
}

// ChangeConflictSkillFunction replaces how characters contribute to a
// conflict. Applied to a conflict it covers every card; applied to a player
// it covers the cards that player controls.
func ChangeConflictSkillFunction(fn game.SkillFunction) game.EffectFactory {
	return static(game.EffectChangeConflictSkillFunction, fn)
}

func AdditionalCardPlayed(n int) game.EffectFactory {
	return static(game.EffectAdditionalCardPlayed, n)
}

func AdditionalCharactersInConflict(n int) game.EffectFactory {
	return static(game.EffectAdditionalCharactersInConflict, n)
}

// ReduceCostProperties configure ReduceCost.
type ReduceCostProperties struct {
	// Amount defaults to 1.
	Amount   int
	PlayType game.PlayType
	Match    func(card *game.Card) bool
	// Limit caps how many plays the reduction applies to; 0 is unlimited.
	Limit int
}

// ReduceCost lowers what the affected player pays for matching cards while
// the effect lasts.
func ReduceCost(props ReduceCostProperties) game.EffectFactory {
	if props.Amount == 0 {
		props.Amount = 1
	}
	return static(game.EffectReduceCost, &game.CostReducer{
		Amount:   props.Amount,
		PlayType: props.PlayType,
		Match:    props.Match,
		Limit:    props.Limit,
	})
}

func IncreaseCost(n int) game.EffectFactory {
	return static(game.EffectIncreaseCost, n)
}

func EventsCannotBeCancelled() game.EffectFactory {
	return static(game.EffectEventsCannotBeCancelled, true)
}

// CannotContribute stops matching cards from contributing to the affected
// conflict.
func CannotContribute(match game.CardPredicate) game.EffectFactory {
	return static(game.EffectCannotContribute, match)
}

func ModifyConflictElementsToResolve(n int) game.EffectFactory {
	return static(game.EffectModifyConflictElementsToResolve, n)
}

// RestrictNumberOfDefenders caps the defenders of the affected conflict;
// the lowest cap wins.
func RestrictNumberOfDefenders(n int) game.EffectFactory {
	return static(game.EffectRestrictNumberOfDefenders, n)
}

func ForceConflictUnopposed() game.EffectFactory {
	return static(game.EffectForceConflictUnopposed, true)
}

// AdditionalAttackedProvince adds province to those attacked in the
// affected conflict.
func AdditionalAttackedProvince(province *game.Card) game.EffectFactory {
	return static(game.EffectAdditionalAttackedProvince, province)
}
