package game

import "time"

// GameView is what one player is allowed to see of a game.
type GameView struct {
	GameID    string
	Phase     string
	Round     int
	Players   []PlayerView
	Rings     []RingState
	Conflict  *ConflictSummary
	Prompt    *PromptView
	Messages  []Message
	Finished  bool
	WinnerID  string
	Timestamp time.Time
}

// PlayerView is a player's public state, plus the hand for the viewer.
type PlayerView struct {
	PlayerID          string
	Name              string
	Fate              int
	Honor             int
	ImperialFavor     Favor
	FirstPlayer       bool
	HandCount         int
	ConflictDeckCount int
	DynastyDeckCount  int
	Hand              []CardView
	PlayArea          []CardView
	Provinces         []CardView
	ConflictDiscard   []CardView
	DynastyDiscard    []CardView
}

// CardView is a card as shown to a client. Face-down cards hide their
// identity.
type CardView struct {
	ID         string
	Code       string
	Name       string
	Type       CardType
	Location   Location
	Bowed      bool
	Fate       int
	Honored    bool
	Dishonored bool
	Tainted    bool
	InConflict bool
	FacedDown  bool
	Military   int
	Political  int
	Glory      int
	Strength   int
}

func cardView(c *Card, hidden bool) CardView {
	if hidden {
		return CardView{ID: c.ID, Location: c.Location, FacedDown: true}
	}
	v := CardView{
		ID:         c.ID,
		Code:       c.Definition.Code,
		Name:       c.Name(),
		Type:       c.Type(),
		Location:   c.Location,
		Bowed:      c.Bowed,
		Fate:       c.Fate,
		Honored:    c.Honored,
		Dishonored: c.Dishonored,
		Tainted:    c.Tainted,
		InConflict: c.InConflict,
		FacedDown:  c.FacedDown,
	}
	switch c.Type() {
	case CardTypeCharacter:
		v.Military = c.GetMilitarySkill()
		v.Political = c.GetPoliticalSkill()
		v.Glory = c.GetGlory()
	case CardTypeProvince, CardTypeStronghold:
		v.Strength = c.GetStrength()
	}
	return v
}

func cardViews(cards []*Card, hidden func(*Card) bool) []CardView {
	out := make([]CardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardView(c, hidden(c)))
	}
	return out
}

// View builds the view of the game for viewerID. Hands of other players
// and face-down cards they own are hidden.
func (g *Game) View(viewerID string) GameView {
	view := GameView{
		GameID:    g.ID,
		Phase:     g.phases.CurrentPhase().String(),
		Round:     g.phases.Round(),
		Messages:  g.Messages(),
		Finished:  g.finished,
		Timestamp: time.Now(),
	}
	if g.winner != nil {
		view.WinnerID = g.winner.ID
	}
	for _, p := range g.players {
		own := p.ID == viewerID
		faceDown := func(c *Card) bool { return c.FacedDown && !own }
		pv := PlayerView{
			PlayerID:          p.ID,
			Name:              p.Name,
			Fate:              p.Fate,
			Honor:             p.Honor,
			ImperialFavor:     p.ImperialFavor,
			FirstPlayer:       p.FirstPlayer,
			HandCount:         len(p.lists[LocationHand]),
			ConflictDeckCount: len(p.lists[LocationConflictDeck]),
			DynastyDeckCount:  len(p.lists[LocationDynastyDeck]),
			PlayArea:          cardViews(p.lists[LocationPlayArea], func(*Card) bool { return false }),
			Provinces:         cardViews(p.Provinces(), faceDown),
			ConflictDiscard:   cardViews(p.lists[LocationConflictDiscard], func(*Card) bool { return false }),
			DynastyDiscard:    cardViews(p.lists[LocationDynastyDiscard], func(*Card) bool { return false }),
		}
		if own {
			pv.Hand = cardViews(p.lists[LocationHand], func(*Card) bool { return false })
		}
		for _, loc := range ProvinceLocations {
			pv.Provinces = append(pv.Provinces, cardViews(p.lists[loc], faceDown)...)
		}
		view.Players = append(view.Players, pv)
	}
	for _, r := range g.Rings() {
		view.Rings = append(view.Rings, RingState{
			Element:         r.Element,
			ConflictType:    r.ConflictType,
			Fate:            r.Fate,
			ClaimedBy:       r.ClaimedBy,
			Contested:       r.Contested,
			RemovedFromGame: r.RemovedFromGame,
		})
	}
	if g.currentConflict != nil {
		summary := g.currentConflict.GetSummary()
		view.Conflict = &summary
	}
	if prompt, ok := g.ActivePrompt(); ok && prompt.PlayerID == viewerID {
		view.Prompt = &prompt
	}
	return view
}
