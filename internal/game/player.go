package game

// Player is one seat in the game. The card lists are the player's view of the
// arena; the cards themselves are registered with the Game.
type Player struct {
	ID            string
	Name          string
	Fate          int
	Honor         int
	ImperialFavor Favor
	FirstPlayer   bool
	HonorBid      int

	game      *Game
	lists     map[Location][]*Card
	provinces map[Location]*Card
	reducers  *CostReducerManager
	dummy     bool
}

func newPlayer(game *Game, id, name string) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		game:      game,
		lists:     make(map[Location][]*Card),
		provinces: make(map[Location]*Card),
		reducers:  NewCostReducerManager(),
	}
}

// newDummyPlayer builds the stand-in defender used when a conflict is
// declared without an opponent.
func newDummyPlayer(game *Game) *Player {
	p := newPlayer(game, "", "Dummy Player")
	p.dummy = true
	return p
}

func (p *Player) EntityID() string   { return p.ID }
func (p *Player) SourceID() string   { return p.ID }
func (p *Player) SourceName() string { return p.Name }

// Game returns the game the player is seated in.
func (p *Player) Game() *Game { return p.game }

// IsDummy reports whether this is the synthetic single-player defender.
func (p *Player) IsDummy() bool { return p.dummy }

// Opponent returns the other seated player, or nil in single-player games.
func (p *Player) Opponent() *Player {
	if p.game == nil {
		return nil
	}
	for _, other := range p.game.players {
		if other != p {
			return other
		}
	}
	return nil
}

// CardsIn returns a copy of the cards in the given location.
func (p *Player) CardsIn(loc Location) []*Card {
	return append([]*Card(nil), p.lists[loc]...)
}

// CardsInPlay returns the cards in the play area.
func (p *Player) CardsInPlay() []*Card {
	return p.CardsIn(LocationPlayArea)
}

// AllCards returns every card the player holds, in a fixed location order.
func (p *Player) AllCards() []*Card {
	var out []*Card
	for _, loc := range allLocations {
		out = append(out, p.lists[loc]...)
	}
	return out
}

// Province returns the province card in a province slot.
func (p *Player) Province(loc Location) *Card {
	return p.provinces[loc]
}

// Provinces returns the player's province cards in slot order.
func (p *Player) Provinces() []*Card {
	var out []*Card
	for _, loc := range ProvinceLocations {
		if card := p.provinces[loc]; card != nil {
			out = append(out, card)
		}
	}
	return out
}

// MoveCard moves a card into loc at the end of the list.
func (p *Player) MoveCard(card *Card, loc Location) {
	if card == nil {
		return
	}
	if card.Type() == CardTypeProvince || card.Type() == CardTypeStronghold {
		if card.Location.IsProvince() && p.provinces[card.Location] == card {
			delete(p.provinces, card.Location)
		}
		if loc.IsProvince() {
			p.provinces[loc] = card
			card.Location = loc
			return
		}
	}
	p.removeFromList(card)
	wasInPlay := card.Location == LocationPlayArea
	p.lists[loc] = append(p.lists[loc], card)
	card.Location = loc
	if wasInPlay && loc != LocationPlayArea {
		card.leavePlay()
	}
}

func (p *Player) removeFromList(card *Card) {
	list := p.lists[card.Location]
	for i, c := range list {
		if c == card {
			p.lists[card.Location] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// ModifyFate adds amount (possibly negative) to the fate pool, never below 0.
func (p *Player) ModifyFate(amount int) {
	p.Fate += amount
	if p.Fate < 0 {
		p.Fate = 0
	}
}

// ModifyHonor adds amount (possibly negative) to the honor total, never
// below 0.
func (p *Player) ModifyHonor(amount int) {
	p.Honor += amount
	if p.Honor < 0 {
		p.Honor = 0
	}
}

// ClaimImperialFavor gives the player the favor of the given type and takes it
// from the opponent.
func (p *Player) ClaimImperialFavor(f Favor) {
	if opp := p.Opponent(); opp != nil {
		opp.ImperialFavor = FavorNone
	}
	p.ImperialFavor = f
}

// LoseImperialFavor discards the favor.
func (p *Player) LoseImperialFavor() {
	p.ImperialFavor = FavorNone
}

// AnyEffect reports whether an effect with the given name applies to the
// player.
func (p *Player) AnyEffect(name EffectName) bool {
	return p.game.effects.Any(p, name)
}

// GetEffects returns the values of effects with the given name on the player.
func (p *Player) GetEffects(name EffectName) []any {
	return p.game.effects.Get(p, name)
}

// MostRecentEffect returns the value of the newest effect with the given name.
func (p *Player) MostRecentEffect(name EffectName) (any, bool) {
	return p.game.effects.MostRecent(p, name)
}

// SumEffects adds up the integer values of the named effects.
func (p *Player) SumEffects(name EffectName) int {
	return p.game.effects.SumInt(p, name)
}

// CheckRestrictions reports whether nothing forbids the action type for the
// player.
func (p *Player) CheckRestrictions(actionType string, ctx *AbilityContext) bool {
	if p.dummy {
		return true
	}
	return p.game.effects.checkRestrictions(p, actionType, ctx)
}

// AllowGameAction reports whether a game action of the given name may affect
// the player.
func (p *Player) AllowGameAction(actionType string, ctx *AbilityContext) bool {
	if ctx == nil {
		ctx = p.game.GetFrameworkContext(p)
	}
	return p.CheckRestrictions(actionType, ctx)
}

// SkillModifier is the flat bonus the player adds to conflict totals.
func (p *Player) SkillModifier() int {
	if p.dummy {
		return 0
	}
	return p.SumEffects(EffectChangePlayerSkillModifier)
}

// ResetForConflict clears participation markers on every card the player
// holds.
func (p *Player) ResetForConflict() {
	for _, card := range p.AllCards() {
		card.InConflict = false
	}
	for _, card := range p.provinces {
		card.InConflict = false
	}
}

// ReplaceDynastyCard fills an empty province slot from the top of the
// dynasty deck. It reports whether a card was placed.
func (p *Player) ReplaceDynastyCard(loc Location) bool {
	if !loc.IsProvince() || len(p.lists[loc]) > 0 {
		return false
	}
	deck := p.lists[LocationDynastyDeck]
	if len(deck) == 0 {
		return false
	}
	card := deck[0]
	p.MoveCard(card, loc)
	card.FacedDown = true
	return true
}

// DrawCards moves up to n cards from the top of the conflict deck to hand
// and returns them.
func (p *Player) DrawCards(n int) []*Card {
	var drawn []*Card
	for i := 0; i < n; i++ {
		deck := p.lists[LocationConflictDeck]
		if len(deck) == 0 {
			break
		}
		card := deck[0]
		p.MoveCard(card, LocationHand)
		drawn = append(drawn, card)
	}
	return drawn
}

// FindPlayType returns how source would be played by this player, based on
// where it currently is.
func (p *Player) FindPlayType(source EffectSource) PlayType {
	card, ok := source.(*Card)
	if !ok || card == nil || card.controller != p {
		return PlayTypeNone
	}
	switch {
	case card.Location == LocationHand:
		return PlayTypeFromHand
	case card.Location.IsProvince() && card.Type() != CardTypeProvince && card.Type() != CardTypeStronghold:
		return PlayTypeFromProvince
	}
	return PlayTypeNone
}

// AddCostReducer registers a reducer and returns its ID.
func (p *Player) AddCostReducer(r *CostReducer) string {
	return p.reducers.AddReducer(r)
}

// RemoveCostReducer removes a reducer by ID.
func (p *Player) RemoveCostReducer(id string) {
	p.reducers.RemoveReducer(id)
}

// GetReducedCost returns what playing card with the given play type costs
// after reducers and cost increases.
func (p *Player) GetReducedCost(playType PlayType, card *Card, ignoreType bool) int {
	cost := card.GetCost() + p.SumEffects(EffectIncreaseCost)
	reduced := cost - p.totalReduction(playType, card, ignoreType)
	if reduced < 0 {
		return 0
	}
	return reduced
}

// CostModifiers returns the net change to card's cost: increases minus
// applicable reductions. Unlike GetReducedCost it is not clamped.
func (p *Player) CostModifiers(playType PlayType, card *Card) int {
	return p.SumEffects(EffectIncreaseCost) - p.totalReduction(playType, card, false)
}

// effectReducers are the reducers granted by live costReducer effects.
func (p *Player) effectReducers() []*CostReducer {
	var out []*CostReducer
	for _, v := range p.GetEffects(EffectReduceCost) {
		if r, ok := v.(*CostReducer); ok && r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (p *Player) totalReduction(playType PlayType, card *Card, ignoreType bool) int {
	total := p.reducers.TotalReduction(playType, card, ignoreType)
	for _, r := range p.effectReducers() {
		if r.applies(playType, card, ignoreType) {
			total += r.Amount
		}
	}
	return total
}

// MarkUsedReducers spends one use of every reducer that applied to card.
// Exhausted effect reducers stop applying but stay registered until their
// effect expires.
func (p *Player) MarkUsedReducers(playType PlayType, card *Card, ignoreType bool) {
	for _, r := range p.effectReducers() {
		if r.applies(playType, card, ignoreType) {
			r.uses++
		}
	}
	p.reducers.MarkUsed(playType, card, ignoreType)
}

func (p *Player) String() string { return p.Name }
