package game

import (
	"fmt"

	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// ProvinceStrength records a conflict province's strength when the winner was
// determined.
type ProvinceStrength struct {
	Province *Card
	Strength int
}

// ConflictSummary is the read-only view of a conflict sent to clients.
type ConflictSummary struct {
	AttackingPlayerID   string
	DefendingPlayerID   string
	AttackerSkill       int
	DefenderSkill       int
	Type                ConflictType
	Elements            []Element
	AttackerWins        bool
	Breaking            bool
	Unopposed           bool
	DeclarationComplete bool
	DefendersChosen     bool
}

// Conflict is one contest between an attacking and a defending player over a
// ring and a province. Skill totals are derived: call CalculateSkill before
// reading them.
type Conflict struct {
	game *Game
	id   string

	AttackingPlayer *Player
	DefendingPlayer *Player
	IsSinglePlayer  bool

	ForcedDeclaredType ConflictType
	DeclaredType       ConflictType
	DeclaredRing       *Ring
	Ring               *Ring
	ConflictProvince   *Card
	DeclaredProvince   *Card

	DeclarationComplete              bool
	DefendersChosen                  bool
	ConflictFailedToInitiate         bool
	ConflictPassed                   bool
	ConflictTypeSwitched             bool
	ConflictUnopposed                bool
	WinnerGoesStraightToNextConflict bool

	attackers           []*Card
	defenders           []*Card
	attackerCardsPlayed []CardSnapshot
	defenderCardsPlayed []CardSnapshot

	AttackerSkill int
	DefenderSkill int

	winnerDetermined              bool
	Winner                        *Player
	Loser                         *Player
	WinnerSkill                   int
	LoserSkill                    int
	SkillDifference               int
	ProvinceStrengthsAtResolution []ProvinceStrength
}

// NewConflict creates a conflict. A nil defender makes this a single-player
// conflict against a dummy defender.
func NewConflict(game *Game, attacker, defender *Player, ring *Ring, province *Card, forcedType ConflictType) *Conflict {
	game.conflictCount++
	c := &Conflict{
		game:               game,
		id:                 fmt.Sprintf("conflict-%d", game.conflictCount),
		AttackingPlayer:    attacker,
		DefendingPlayer:    defender,
		IsSinglePlayer:     defender == nil,
		ForcedDeclaredType: forcedType,
		DeclaredRing:       ring,
		Ring:               ring,
		ConflictProvince:   province,
		DeclaredProvince:   province,
	}
	if c.DefendingPlayer == nil {
		c.DefendingPlayer = newDummyPlayer(game)
	}
	return c
}

func (c *Conflict) EntityID() string { return c.id }

// Game returns the game the conflict belongs to.
func (c *Conflict) Game() *Game { return c.game }

// ConflictType returns the type of the contested ring, or "" without a ring.
func (c *Conflict) ConflictType() ConflictType {
	if c.Ring == nil {
		return ""
	}
	return c.Ring.ConflictType
}

// Element returns the contested ring's element.
func (c *Conflict) Element() Element {
	if c.Ring == nil {
		return ""
	}
	return c.Ring.Element
}

// Elements returns every element the contested ring counts as.
func (c *Conflict) Elements() []Element {
	if c.Ring == nil {
		return nil
	}
	return c.Ring.GetElements()
}

// HasElement reports whether the conflict counts as having element.
func (c *Conflict) HasElement(element Element) bool {
	for _, e := range c.Elements() {
		if e == element {
			return true
		}
	}
	return false
}

// ElementsToResolve is how many ring elements the attacker may resolve.
func (c *Conflict) ElementsToResolve() int {
	return c.game.effects.SumInt(c, EffectModifyConflictElementsToResolve) + 1
}

// MaxAllowedDefenders returns the lowest defender limit in effect, or -1.
func (c *Conflict) MaxAllowedDefenders() int {
	limit := -1
	for _, v := range c.game.effects.Get(c, EffectRestrictNumberOfDefenders) {
		n, ok := v.(int)
		if !ok {
			continue
		}
		if limit == -1 || n < limit {
			limit = n
		}
	}
	return limit
}

// GetConflictProvinces returns the attacked province plus any additional
// attacked provinces.
func (c *Conflict) GetConflictProvinces() []*Card {
	if c.ConflictProvince == nil {
		return nil
	}
	provinces := []*Card{c.ConflictProvince}
	for _, v := range c.game.effects.Get(c, EffectAdditionalAttackedProvince) {
		if p, ok := v.(*Card); ok && p != nil {
			provinces = append(provinces, p)
		}
	}
	return provinces
}

// IsCardInConflictProvince reports whether card sits in an attacked province.
func (c *Conflict) IsCardInConflictProvince(card *Card) bool {
	for _, p := range c.GetConflictProvinces() {
		if p.Location == card.Location && p.controller == card.controller {
			return true
		}
	}
	return false
}

// GetSummary returns the client view of the conflict.
func (c *Conflict) GetSummary() ConflictSummary {
	forcedUnopposed := c.game.effects.Any(c, EffectForceConflictUnopposed)
	return ConflictSummary{
		AttackingPlayerID:   c.AttackingPlayer.ID,
		DefendingPlayerID:   c.DefendingPlayer.ID,
		AttackerSkill:       c.AttackerSkill,
		DefenderSkill:       c.DefenderSkill,
		Type:                c.ConflictType(),
		Elements:            c.Elements(),
		AttackerWins:        len(c.attackers) > 0 && c.AttackerSkill >= c.DefenderSkill,
		Breaking:            c.IsBreaking(),
		Unopposed:           !(len(c.defenders) > 0 && !forcedUnopposed),
		DeclarationComplete: c.DeclarationComplete,
		DefendersChosen:     c.DefendersChosen,
	}
}

// SetDeclarationComplete marks the declaration as finished.
func (c *Conflict) SetDeclarationComplete(value bool) {
	c.DeclarationComplete = value
}

// SetDefendersChosen marks defenders as chosen.
func (c *Conflict) SetDefendersChosen(value bool) {
	c.DefendersChosen = value
}

// ResetCards clears participation markers on both players' cards and on the
// attacked provinces.
func (c *Conflict) ResetCards() {
	c.AttackingPlayer.ResetForConflict()
	c.DefendingPlayer.ResetForConflict()
	for _, p := range c.GetConflictProvinces() {
		p.InConflict = false
	}
}

// AddAttackers adds each card not already attacking.
func (c *Conflict) AddAttackers(cards []*Card) {
	var added []*Card
	for _, card := range cards {
		if !c.IsAttacking(card) && !containsCard(added, card) {
			added = append(added, card)
		}
	}
	if len(added) > 0 {
		c.attackers = append(c.attackers, added...)
		markAsParticipating(added)
	}
}

// AddAttacker adds a single attacker; adding the same card twice is a no-op.
func (c *Conflict) AddAttacker(card *Card) {
	if containsCard(c.attackers, card) {
		return
	}
	c.attackers = append(c.attackers, card)
	markAsParticipating([]*Card{card})
}

// AddDefenders adds each card not already defending.
func (c *Conflict) AddDefenders(cards []*Card) {
	var added []*Card
	for _, card := range cards {
		if !c.IsDefending(card) && !containsCard(added, card) {
			added = append(added, card)
		}
	}
	if len(added) > 0 {
		c.defenders = append(c.defenders, added...)
		markAsParticipating(added)
	}
}

// AddDefender adds a single defender; adding the same card twice is a no-op.
func (c *Conflict) AddDefender(card *Card) {
	if containsCard(c.defenders, card) {
		return
	}
	c.defenders = append(c.defenders, card)
	markAsParticipating([]*Card{card})
}

func markAsParticipating(cards []*Card) {
	for _, card := range cards {
		card.InConflict = true
	}
}

// SwitchType flips the contested ring's conflict type.
func (c *Conflict) SwitchType() {
	c.Ring.FlipConflictType()
	c.ConflictTypeSwitched = true
}

// SwitchElement moves the conflict to the ring of another element. Fate on
// the new ring goes to the attacker, the new ring takes the conflict's type,
// a claim on the new ring moves to the old one and the new ring becomes
// contested. Switching to an element with no ring is a definition error and
// panics.
func (c *Conflict) SwitchElement(element Element) {
	newRing := c.game.rings[element]
	if newRing == nil {
		panic(fmt.Sprintf("switchElement called for non-existent element %q", element))
	}
	if newRing.Fate > 0 && c.AttackingPlayer.AllowGameAction(RestrictionTakeFateFromRings, nil) {
		fate := newRing.Fate
		c.game.AddMessage("{0} takes {1} fate from {2}", c.AttackingPlayer, fate, newRing)
		c.AttackingPlayer.ModifyFate(fate)
		newRing.Fate = 0
		c.game.RaiseEvent(rules.EventMoveFate, EventParams{
			Context:   c.game.GetFrameworkContext(c.AttackingPlayer),
			Fate:      fate,
			Origin:    newRing,
			Recipient: c.AttackingPlayer,
		})
	}
	if newRing.ConflictType != c.ConflictType() && c.Ring != nil {
		newRing.FlipConflictType()
	}
	if c.Ring != nil && c.Ring != newRing {
		if newRing.IsClaimed() {
			claimedBy := c.game.playerByName(newRing.ClaimedBy)
			c.Ring.ClaimRing(claimedBy)
			newRing.ResetRing()
		} else {
			c.Ring.ResetRing()
		}
	}
	newRing.Contested = true
	c.Ring = newRing
}

// CheckForIllegalParticipants sends home bowed every participant that can no
// longer take part in a conflict of the current type.
func (c *Conflict) CheckForIllegalParticipants() {
	var illegal []*Card
	for _, card := range c.GetAttackers(nil) {
		if !card.CanParticipateAsAttacker(c.ConflictType()) {
			illegal = append(illegal, card)
		}
	}
	for _, card := range c.GetDefenders(nil) {
		if !card.CanParticipateAsDefender(c.ConflictType()) {
			illegal = append(illegal, card)
		}
	}
	if len(illegal) == 0 {
		return
	}
	verb := "is"
	if len(illegal) > 1 {
		verb = "are"
	}
	c.game.AddMessage("{0} cannot participate in the conflict any more and {1} sent home bowed", illegal, verb)
	events := make([]*Event, 0, len(illegal))
	for _, card := range illegal {
		events = append(events, c.game.newActionEvent(illegalParticipant{}, EventParams{
			Context: c.game.GetFrameworkContext(nil),
			Card:    card,
		}))
	}
	c.game.OpenEventWindow(events...)
}

// illegalParticipant sends a card home bowed.
type illegalParticipant struct{}

func (illegalParticipant) Name() string { return "sendHome" }

func (illegalParticipant) EventName() rules.EventName { return rules.EventSendHome }

func (illegalParticipant) CanAffect(Value, *AbilityContext, Overrides) bool { return true }

func (illegalParticipant) HasLegalTarget(*AbilityContext, Overrides) bool { return true }

func (illegalParticipant) AddEventsToArray(*[]*Event, *AbilityContext, Overrides) {}

func (illegalParticipant) CheckEventCondition(*Event) bool { return true }

func (illegalParticipant) EventHandler(event *Event) {
	if conflict := event.Card.game.CurrentConflict(); conflict != nil {
		conflict.RemoveFromConflict(event.Card)
	}
	event.Card.Bowed = true
}

// RemoveFromConflict takes card out of both participant lists.
func (c *Conflict) RemoveFromConflict(card *Card) {
	c.attackers = removeCard(c.attackers, card)
	c.defenders = removeCard(c.defenders, card)
	card.InConflict = false
}

// IsAttacking reports whether card is among the attackers.
func (c *Conflict) IsAttacking(card *Card) bool {
	return containsCard(c.GetAttackers(nil), card)
}

// IsDefending reports whether card is among the defenders.
func (c *Conflict) IsDefending(card *Card) bool {
	return containsCard(c.GetDefenders(nil), card)
}

// IsParticipating reports whether card is a participant. Cards only count
// once the declaration is complete.
func (c *Conflict) IsParticipating(card *Card) bool {
	return c.DeclarationComplete && (c.IsAttacking(card) || c.IsDefending(card))
}

// GetAttackers returns the attackers, including cards participating from
// home, filtered by pred (nil keeps all).
func (c *Conflict) GetAttackers(pred CardPredicate) []*Card {
	cards := append([]*Card(nil), c.attackers...)
	if c.AttackingPlayer != nil {
		for _, card := range c.AttackingPlayer.CardsInPlay() {
			if card.AnyEffect(EffectParticipatesFromHome) && card.CanParticipateAsAttacker(c.ConflictType()) && card.IsAtHome() {
				cards = append(cards, card)
			}
		}
	}
	return filterCards(cards, pred)
}

// GetDefenders returns the defenders, including cards participating from
// home, filtered by pred (nil keeps all).
func (c *Conflict) GetDefenders(pred CardPredicate) []*Card {
	cards := append([]*Card(nil), c.defenders...)
	if c.DefendingPlayer != nil {
		for _, card := range c.DefendingPlayer.CardsInPlay() {
			if card.AnyEffect(EffectParticipatesFromHome) && card.CanParticipateAsDefender(c.ConflictType()) && card.IsAtHome() {
				cards = append(cards, card)
			}
		}
	}
	return filterCards(cards, pred)
}

// AnyParticipants reports whether any participant matches pred.
func (c *Conflict) AnyParticipants(pred CardPredicate) bool {
	return len(c.GetParticipants(pred)) > 0
}

// GetParticipants returns attackers then defenders, filtered by pred.
func (c *Conflict) GetParticipants(pred CardPredicate) []*Card {
	return filterCards(append(c.GetAttackers(nil), c.GetDefenders(nil)...), pred)
}

// GetNumberOfParticipants counts participants matching pred.
func (c *Conflict) GetNumberOfParticipants(pred CardPredicate) int {
	return len(c.GetParticipants(pred))
}

// GetCharacters returns player's side of the conflict.
func (c *Conflict) GetCharacters(player *Player) []*Card {
	if player == nil {
		return nil
	}
	if player == c.AttackingPlayer {
		return c.GetAttackers(nil)
	}
	return c.GetDefenders(nil)
}

// GetNumberOfParticipantsFor counts player's participants. Without a
// predicate, additional-characters effects are included.
func (c *Conflict) GetNumberOfParticipantsFor(player *Player, pred CardPredicate) int {
	if player == nil {
		return 0
	}
	characters := c.GetCharacters(player)
	if pred != nil {
		return len(filterCards(characters, pred))
	}
	return len(characters) + player.SumEffects(EffectAdditionalCharactersInConflict)
}

// HasMoreParticipants reports whether player has more participants than
// their opponent.
func (c *Conflict) HasMoreParticipants(player *Player, pred CardPredicate) bool {
	if player == nil {
		return false
	}
	opponent := player.Opponent()
	if opponent == nil {
		return c.GetNumberOfParticipantsFor(player, pred) > 0
	}
	return c.GetNumberOfParticipantsFor(player, nil) > c.GetNumberOfParticipantsFor(opponent, nil)
}

// AddCardPlayed records a snapshot of a card played by player during the
// conflict.
func (c *Conflict) AddCardPlayed(player *Player, card *Card) {
	if player == c.AttackingPlayer {
		c.attackerCardsPlayed = append(c.attackerCardsPlayed, card.CreateSnapshot())
		return
	}
	c.defenderCardsPlayed = append(c.defenderCardsPlayed, card.CreateSnapshot())
}

// GetCardsPlayed returns the snapshots of cards played by player.
func (c *Conflict) GetCardsPlayed(player *Player, pred func(CardSnapshot) bool) []CardSnapshot {
	source := c.defenderCardsPlayed
	if player == c.AttackingPlayer {
		source = c.attackerCardsPlayed
	}
	var out []CardSnapshot
	for _, s := range source {
		if pred == nil || pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// GetNumberOfCardsPlayed counts cards played by player. Without a predicate,
// additional-card-played effects are included.
func (c *Conflict) GetNumberOfCardsPlayed(player *Player, pred func(CardSnapshot) bool) int {
	if player == nil {
		return 0
	}
	if pred != nil {
		return len(c.GetCardsPlayed(player, pred))
	}
	return player.SumEffects(EffectAdditionalCardPlayed) + len(c.GetCardsPlayed(player, nil))
}

var contributingLocations = []Location{
	LocationPlayArea,
	LocationProvinceOne,
	LocationProvinceTwo,
	LocationProvinceThree,
	LocationProvinceFour,
	LocationStrongholdProvince,
}

// CalculateSkill rechecks effects and recomputes both sides' totals. It
// returns whether effect state changed.
func (c *Conflict) CalculateSkill(prevStateChanged bool) bool {
	stateChanged := c.game.effects.CheckEffects(prevStateChanged)
	if c.winnerDetermined {
		return stateChanged
	}

	additional := c.game.FindAnyCardsInAnyList(func(card *Card) bool {
		return card.Type() == CardTypeCharacter &&
			locationIn(card.Location, contributingLocations) &&
			card.AnyEffect(EffectContributeToConflict)
	})

	c.AttackerSkill = c.sideSkill(c.AttackingPlayer, c.GetAttackers(nil), len(c.attackers), additional)
	c.DefenderSkill = c.sideSkill(c.DefendingPlayer, c.GetDefenders(nil), len(c.defenders), additional)
	return stateChanged
}

func (c *Conflict) sideSkill(player *Player, participants []*Card, declared int, additional []*Card) int {
	if !player.dummy {
		if v, ok := player.MostRecentEffect(EffectSetConflictTotalSkill); ok {
			if n, ok := v.(int); ok {
				return n
			}
		}
	}
	for _, card := range additional {
		for _, v := range card.GetEffects(EffectContributeToConflict) {
			if p, ok := v.(*Player); ok && p == player {
				participants = append(participants, card)
				break
			}
		}
	}
	skill := c.calculateSkillFor(participants) + player.SkillModifier()
	favor := player.ImperialFavor
	if (favor == FavorBoth || (favor != FavorNone && string(favor) == string(c.ConflictType()))) && declared > 0 {
		skill++
	}
	return skill
}

// calculateSkillFor sums contributions. A controller-level skill function
// replaces the running function for that card and every card after it.
func (c *Conflict) calculateSkillFor(cards []*Card) int {
	skillFunction := SkillFunction(func(card *Card, conflict *Conflict) int {
		return card.GetContributionToConflict(conflict.ConflictType())
	})
	if v, ok := c.game.effects.MostRecent(c, EffectChangeConflictSkillFunction); ok {
		if fn, ok := v.(SkillFunction); ok && fn != nil {
			skillFunction = fn
		}
	}
	var cannotContribute []CardPredicate
	for _, v := range c.game.effects.Get(c, EffectCannotContribute) {
		if fn, ok := v.(CardPredicate); ok && fn != nil {
			cannotContribute = append(cannotContribute, fn)
		}
	}
	framework := c.game.GetFrameworkContext(nil)

	sum := 0
	for _, card := range cards {
		blocked := card.Bowed && !card.AnyEffect(EffectCanContributeWhileBowed)
		if controller := card.Controller(); controller != nil && !controller.dummy {
			if v, ok := controller.MostRecentEffect(EffectChangeConflictSkillFunction); ok {
				if fn, ok := v.(SkillFunction); ok && fn != nil {
					skillFunction = fn
				}
			}
		}
		if !blocked {
			for _, fn := range cannotContribute {
				if fn(card) {
					blocked = true
					break
				}
			}
		}
		if !blocked {
			blocked = !card.CheckRestrictions(RestrictionContributeSkillToConflict, framework)
		}
		if blocked {
			continue
		}
		sum += skillFunction(card, c)
	}
	return sum
}

// DetermineWinner computes final skills and fixes the outcome. If both sides
// have 0 skill there is no winner; otherwise ties go to the attacker.
func (c *Conflict) DetermineWinner() {
	c.CalculateSkill(false)
	c.winnerDetermined = true
	c.ProvinceStrengthsAtResolution = nil
	for _, p := range c.GetConflictProvinces() {
		c.ProvinceStrengthsAtResolution = append(c.ProvinceStrengthsAtResolution, ProvinceStrength{
			Province: p,
			Strength: p.GetStrength(),
		})
	}

	if c.AttackerSkill == 0 && c.DefenderSkill == 0 {
		c.Winner, c.Loser = nil, nil
		c.WinnerSkill, c.LoserSkill, c.SkillDifference = 0, 0, 0
		return
	}
	if c.AttackerSkill >= c.DefenderSkill {
		c.Winner, c.WinnerSkill = c.AttackingPlayer, c.AttackerSkill
		c.Loser, c.LoserSkill = c.DefendingPlayer, c.DefenderSkill
	} else {
		c.Winner, c.WinnerSkill = c.DefendingPlayer, c.DefenderSkill
		c.Loser, c.LoserSkill = c.AttackingPlayer, c.AttackerSkill
	}
	c.SkillDifference = c.WinnerSkill - c.LoserSkill
}

// WinnerDetermined reports whether DetermineWinner has run.
func (c *Conflict) WinnerDetermined() bool {
	return c.winnerDetermined
}

// IsAttackerTheWinner reports whether the attacker won.
func (c *Conflict) IsAttackerTheWinner() bool {
	return c.Winner != nil && c.Winner == c.AttackingPlayer
}

// PassConflict ends the conflict without resolution: the ring is reset, the
// conflict is recorded and detached from the game, onConflictPass is raised
// and participation is cleared.
func (c *Conflict) PassConflict(message string) {
	if message == "" {
		message = "{0} has chosen to pass their conflict opportunity"
	}
	c.game.AddMessage(message, c.AttackingPlayer)
	c.ConflictPassed = true
	if c.Ring != nil {
		c.Ring.ResetRing()
	}
	c.game.RecordConflict(c)
	c.game.currentConflict = nil
	c.game.RaiseEvent(rules.EventConflictPass, EventParams{
		Context:  c.game.GetFrameworkContext(c.AttackingPlayer),
		Conflict: c,
	})
	c.ResetCards()
}

// IsBreaking reports whether an attacked province's strength, reduced by the
// current skill difference, is at or below zero.
func (c *Conflict) IsBreaking() bool {
	if c.ConflictProvince == nil {
		return false
	}
	diff := c.AttackerSkill - c.DefenderSkill
	for _, p := range c.GetConflictProvinces() {
		if p.GetStrength()-diff <= 0 {
			return true
		}
	}
	return false
}

func containsCard(cards []*Card, card *Card) bool {
	for _, c := range cards {
		if c == card {
			return true
		}
	}
	return false
}

func removeCard(cards []*Card, card *Card) []*Card {
	out := cards[:0:0]
	for _, c := range cards {
		if c != card {
			out = append(out, c)
		}
	}
	return out
}

func filterCards(cards []*Card, pred CardPredicate) []*Card {
	if pred == nil {
		return cards
	}
	out := make([]*Card, 0, len(cards))
	for _, c := range cards {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

func locationIn(loc Location, set []Location) bool {
	for _, l := range set {
		if l == loc {
			return true
		}
	}
	return false
}
