package actions

import (
	"go.uber.org/zap"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// DeclareConflict starts a conflict by attacker over ring and province with
// the given attackers. An empty conflictType keeps the ring's current type.
func DeclareConflict(g *game.Game, attacker *game.Player, ring *game.Ring, province *game.Card, conflictType game.ConflictType, attackers []*game.Card) *game.Conflict {
	conflict := game.NewConflict(g, attacker, attacker.Opponent(), ring, province, conflictType)
	if conflictType != "" {
		ring.ConflictType = conflictType
	}
	conflict.DeclaredType = ring.ConflictType
	ring.Contested = true
	g.SetCurrentConflict(conflict)
	conflict.AddAttackers(attackers)
	conflict.SetDeclarationComplete(true)
	g.AddMessage("{0} is initiating a {1} conflict at {2}, contesting {3}", attacker, ring.ConflictType, province, ring)
	g.RaiseEvent(rules.EventConflictDeclared, game.EventParams{
		Context:  g.GetFrameworkContext(attacker),
		Conflict: conflict,
		Ring:     ring,
		Card:     province,
	})
	return conflict
}

// ConflictResolution resolves a declared conflict: it fixes the winner,
// breaks provinces, resolves ring effects, claims the ring and tears the
// conflict down.
type ConflictResolution struct {
	rules.StepWithPipeline

	game     *game.Game
	conflict *game.Conflict
}

// NewConflictResolution builds the resolution step for conflict.
func NewConflictResolution(g *game.Game, conflict *game.Conflict) *ConflictResolution {
	r := &ConflictResolution{game: g, conflict: conflict}
	r.Pipeline = rules.NewPipeline(
		rules.NewSimpleStep("determine winner", r.determineWinner),
		rules.NewSimpleStep("unopposed honor loss", r.applyUnopposed),
		rules.NewSimpleStep("break province", r.breakProvince),
		rules.NewSimpleStep("resolve ring effects", r.resolveRingEffects),
		rules.NewSimpleStep("claim ring", r.claimRing),
		rules.NewSimpleStep("return home", r.returnHome),
		rules.NewSimpleStep("conflict finished", r.finish),
		rules.NewSimpleStep("end conflict", r.game.EndConflict),
	)
	return r
}

func (r *ConflictResolution) determineWinner() {
	c, g := r.conflict, r.game
	c.DetermineWinner()
	g.Logger().Debug("conflict decided",
		zap.String("conflict_id", c.EntityID()),
		zap.Int("attacker_skill", c.AttackerSkill),
		zap.Int("defender_skill", c.DefenderSkill),
	)
	if c.Winner == nil {
		g.AddMessage("There is no winner of the {0} conflict", c.ConflictType())
	} else {
		g.AddMessage("{0} won a {1} conflict {2} vs {3}", c.Winner, c.ConflictType(), c.WinnerSkill, c.LoserSkill)
	}
	g.RaiseEvent(rules.EventConflictDecided, game.EventParams{
		Context:  g.GetFrameworkContext(c.AttackingPlayer),
		Conflict: c,
	})
}

func (r *ConflictResolution) applyUnopposed() {
	c, g := r.conflict, r.game
	if !c.IsAttackerTheWinner() || !c.GetSummary().Unopposed {
		return
	}
	c.ConflictUnopposed = true
	defender := c.DefendingPlayer
	if defender.IsDummy() {
		return
	}
	g.AddMessage("{0} loses 1 honor for not defending the conflict", defender)
	g.ResolveGameAction(LoseHonor(Static(AmountProperties{})), g.GetFrameworkContext(defender), game.Overrides{})
}

func (r *ConflictResolution) breakProvince() {
	c, g := r.conflict, r.game
	if !c.IsAttackerTheWinner() {
		return
	}
	var broken []*game.Card
	for _, ps := range c.ProvinceStrengthsAtResolution {
		if ps.Strength-c.SkillDifference <= 0 {
			broken = append(broken, ps.Province)
		}
	}
	if len(broken) == 0 {
		return
	}
	g.ResolveGameAction(Break(Static(CardProperties{})), g.GetFrameworkContext(c.AttackingPlayer), game.Overrides{
		Target: game.CardsValue(broken...),
	})
}

func (r *ConflictResolution) resolveRingEffects() {
	c, g := r.conflict, r.game
	if !c.IsAttackerTheWinner() || c.Ring == nil {
		return
	}
	attacker := c.AttackingPlayer
	if attacker.AnyEffect(game.EffectCannotResolveRings) {
		g.AddMessage("{0}'s ring effect is cancelled.", attacker)
		return
	}
	elements := c.Elements()
	toResolve := c.ElementsToResolve()
	if len(elements) <= toResolve {
		r.resolveElements(elements)
		return
	}
	r.chooseElements(elements, toResolve, nil)
}

// chooseElements prompts the attacker for the elements to resolve, one at a
// time, until remaining reaches zero or they stop.
func (r *ConflictResolution) chooseElements(available []game.Element, remaining int, chosen []game.Element) {
	if remaining == 0 || len(available) == 0 {
		r.resolveElements(chosen)
		return
	}
	g, attacker := r.game, r.conflict.AttackingPlayer
	choices := make([]string, 0, len(available)+1)
	handlers := make([]func(), 0, len(available)+1)
	for i, element := range available {
		rest := make([]game.Element, 0, len(available)-1)
		rest = append(rest, available[:i]...)
		rest = append(rest, available[i+1:]...)
		choices = append(choices, g.Ring(element).Name())
		handlers = append(handlers, func() {
			r.chooseElements(rest, remaining-1, append(chosen, element))
		})
	}
	if len(chosen) > 0 {
		choices = append(choices, "Done")
		handlers = append(handlers, func() { r.resolveElements(chosen) })
	}
	g.PromptWithHandlerMenu(attacker, game.MenuProperties{
		ActivePromptTitle: "Choose a ring effect to resolve",
		Context:           g.GetFrameworkContext(attacker),
		Choices:           choices,
		Handlers:          handlers,
	})
}

func (r *ConflictResolution) resolveElements(elements []game.Element) {
	if len(elements) == 0 {
		return
	}
	c, g := r.conflict, r.game
	rings := make([]*game.Ring, 0, len(elements))
	for _, e := range elements {
		rings = append(rings, g.Ring(e))
	}
	ctx := g.GetFrameworkContext(c.AttackingPlayer)
	g.ResolveGameAction(ResolveElement(Static(ResolveElementProperties{
		RingProperties: RingProperties{Optional: true},
		PhysicalRing:   c.Ring,
		Player:         c.AttackingPlayer,
	})), ctx, game.Overrides{Target: game.RingsValue(rings...)})
}

func (r *ConflictResolution) claimRing() {
	c, g := r.conflict, r.game
	ring := c.Ring
	if ring == nil {
		return
	}
	if c.Winner == nil || c.Winner.IsDummy() {
		ring.ResetRing()
		return
	}
	g.ResolveGameAction(ClaimRing(Static(ClaimRingProperties{Type: ring.ConflictType})), g.GetFrameworkContext(c.Winner), game.Overrides{
		Target: game.RingValue(ring),
	})
}

func (r *ConflictResolution) returnHome() {
	c, g := r.conflict, r.game
	participants := c.GetParticipants(nil)
	if len(participants) == 0 {
		return
	}
	g.ResolveGameAction(Bow(Static(CardProperties{})), g.GetFrameworkContext(c.AttackingPlayer), game.Overrides{
		Target: game.CardsValue(participants...),
	})
}

func (r *ConflictResolution) finish() {
	c, g := r.conflict, r.game
	g.RecordConflict(c)
	g.RaiseEvent(rules.EventConflictFinished, game.EventParams{
		Context:  g.GetFrameworkContext(c.AttackingPlayer),
		Conflict: c,
	})
}
