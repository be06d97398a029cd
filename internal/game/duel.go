package game

import "github.com/google/uuid"

// Duel is one duel between a challenger and one or more targets. Totals are
// the compared statistic plus the side's honor bid.
type Duel struct {
	ID         string
	Type       DuelType
	Challenger *Card
	Targets    []*Card
	// Statistic overrides the statistic selected by Type.
	Statistic func(card *Card) int
	// Player initiated the duel.
	Player *Player

	ChallengerTotal int
	TargetTotal     int
	Winner          []*Card
	Loser           []*Card
	WinningPlayer   *Player
	LosingPlayer    *Player
	Finished        bool

	game *Game
}

// NewDuel creates a duel.
func NewDuel(g *Game, challenger *Card, targets []*Card, t DuelType, statistic func(*Card) int, player *Player) *Duel {
	return &Duel{
		ID:         uuid.NewString(),
		Type:       t,
		Challenger: challenger,
		Targets:    append([]*Card(nil), targets...),
		Statistic:  statistic,
		Player:     player,
		game:       g,
	}
}

// EntityID implements EffectTarget.
func (d *Duel) EntityID() string { return d.ID }

// SkillStatistic returns card's dueling statistic.
func (d *Duel) SkillStatistic(card *Card) int {
	if d.Statistic != nil {
		return d.Statistic(card)
	}
	switch d.Type {
	case DuelMilitary:
		return card.GetMilitarySkill()
	case DuelPolitical:
		return card.GetPoliticalSkill()
	case DuelGlory:
		return card.GetGlory()
	}
	return 0
}

// IsInvolved reports whether card is a duel participant.
func (d *Duel) IsInvolved(card *Card) bool {
	return card == d.Challenger || containsCard(d.Targets, card)
}

// Opponent returns the player facing the initiating player.
func (d *Duel) Opponent() *Player {
	if d.Player == nil {
		return nil
	}
	return d.Player.Opponent()
}

func (d *Duel) bid(player *Player) int {
	if player == nil || player.AnyEffect(EffectCannotBidInDuels) {
		return 0
	}
	return player.HonorBid
}

// SetTotals computes both sides' totals from participants still in play.
func (d *Duel) SetTotals() {
	d.ChallengerTotal, d.TargetTotal = 0, 0
	if d.Challenger != nil && d.Challenger.Location == LocationPlayArea {
		d.ChallengerTotal = d.SkillStatistic(d.Challenger) + d.bid(d.Challenger.Controller())
	}
	var targetController *Player
	for _, t := range d.Targets {
		if t.Location != LocationPlayArea {
			continue
		}
		d.TargetTotal += d.SkillStatistic(t)
		targetController = t.Controller()
	}
	if targetController != nil {
		d.TargetTotal += d.bid(targetController)
	}
}

func (d *Duel) winsAutomatically(card *Card) bool {
	for _, v := range card.GetEffects(EffectWinDuel) {
		if duel, ok := v.(*Duel); ok && duel == d {
			return true
		}
	}
	return false
}

// DetermineResult fixes the winner and loser. A tie has no winner.
func (d *Duel) DetermineResult() {
	d.SetTotals()
	challengerWins := d.Challenger != nil && d.winsAutomatically(d.Challenger)
	targetsWin := false
	for _, t := range d.Targets {
		if d.winsAutomatically(t) {
			targetsWin = true
		}
	}
	var targets []*Card
	for _, t := range d.Targets {
		if t.Location == LocationPlayArea {
			targets = append(targets, t)
		}
	}
	switch {
	case challengerWins && !targetsWin,
		!targetsWin && d.ChallengerTotal > d.TargetTotal:
		d.Winner, d.Loser = []*Card{d.Challenger}, targets
	case targetsWin && !challengerWins,
		!challengerWins && d.TargetTotal > d.ChallengerTotal:
		d.Winner, d.Loser = targets, []*Card{d.Challenger}
	default:
		d.Winner, d.Loser = nil, nil
	}
	d.WinningPlayer, d.LosingPlayer = nil, nil
	if len(d.Winner) > 0 {
		d.WinningPlayer = d.Winner[0].Controller()
	}
	if len(d.Loser) > 0 {
		d.LosingPlayer = d.Loser[0].Controller()
	}
}

// Message returns the match log line describing the result.
func (d *Duel) Message() (string, []any) {
	if len(d.Winner) == 0 {
		return "The duel ends in a draw: {0} vs {1}", []any{d.ChallengerTotal, d.TargetTotal}
	}
	return "{0} won the duel with a total of {1} vs {2}", []any{d.Winner, max(d.ChallengerTotal, d.TargetTotal), min(d.ChallengerTotal, d.TargetTotal)}
}
