package game

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jigoku/jigoku-server-go/internal/game/rules"
	"github.com/jigoku/jigoku-server-go/internal/game/targeting"
)

// PromptKind identifies the shape of an outstanding prompt.
type PromptKind string

const (
	PromptMenu       PromptKind = "menu"
	PromptSelectCard PromptKind = "selectCard"
	PromptSelectRing PromptKind = "selectRing"
)

// ButtonCancel is the button that declines an optional selection.
const ButtonCancel = "cancel"

// PromptView is the client-facing description of an outstanding prompt.
type PromptView struct {
	ID                string
	PlayerID          string
	Kind              PromptKind
	Title             string
	Choices           []string
	SelectableCardIDs []string
	SelectableRings   []Element
	Mode              targeting.Mode
	NumCards          int
	Optional          bool
	Buttons           []string
}

// MenuProperties configures PromptWithHandlerMenu. Choices and Handlers are
// parallel slices.
type MenuProperties struct {
	ActivePromptTitle string
	Context           *AbilityContext
	Choices           []string
	Handlers          []func()
}

// SelectCardProperties configures PromptForSelect.
type SelectCardProperties struct {
	ActivePromptTitle string
	Context           *AbilityContext
	Mode              targeting.Mode
	NumCards          int
	Optional          bool
	CardTypes         []CardType
	Locations         []Location
	Controller        Players
	CardCondition     func(card *Card, ctx *AbilityContext) bool
	OnSelect          func(player *Player, cards []*Card)
	OnCancel          func(player *Player)
}

// SelectRingProperties configures PromptForRingSelect.
type SelectRingProperties struct {
	ActivePromptTitle string
	Context           *AbilityContext
	Optional          bool
	RingCondition     func(ring *Ring, ctx *AbilityContext) bool
	OnSelect          func(player *Player, ring *Ring)
	OnCancel          func(player *Player)
}

// promptStep suspends the pipeline until the prompted player answers. Run
// returns false until HandleInput stored an answer, then runs the completion
// with the answer attached.
type promptStep struct {
	game     *Game
	player   *Player
	view     PromptView
	validate func(in rules.Input) error
	complete func(in rules.Input)

	answer   *rules.Input
	finished bool
}

func (g *Game) newPrompt(player *Player, view PromptView) *promptStep {
	view.ID = uuid.NewString()
	view.PlayerID = player.ID
	return &promptStep{game: g, player: player, view: view}
}

// Run implements rules.Step.
func (p *promptStep) Run() bool {
	if p.finished {
		return true
	}
	if p.answer == nil {
		p.game.prompts[p.view.ID] = p
		return false
	}
	delete(p.game.prompts, p.view.ID)
	p.finished = true
	if p.complete != nil {
		p.complete(*p.answer)
	}
	return true
}

// HandleInput implements rules.InputHandler.
func (p *promptStep) HandleInput(in rules.Input) bool {
	if p.answer != nil || in.PromptID != p.view.ID || in.PlayerID != p.player.ID {
		return false
	}
	if p.validate != nil && p.validate(in) != nil {
		return false
	}
	answer := in
	p.answer = &answer
	return true
}

// AwaitingInput implements rules.Awaiter.
func (p *promptStep) AwaitingInput() (string, bool) {
	return p.view.ID, p.answer == nil && !p.finished
}

// PromptWithHandlerMenu asks player to pick one of the menu choices and runs
// the matching handler.
func (g *Game) PromptWithHandlerMenu(player *Player, props MenuProperties) {
	if len(props.Choices) != len(props.Handlers) {
		panic(fmt.Sprintf("menu prompt %q has %d choices and %d handlers", props.ActivePromptTitle, len(props.Choices), len(props.Handlers)))
	}
	p := g.newPrompt(player, PromptView{
		Kind:    PromptMenu,
		Title:   props.ActivePromptTitle,
		Choices: append([]string(nil), props.Choices...),
	})
	p.validate = func(in rules.Input) error {
		if choiceIndex(props.Choices, in.Choice) < 0 {
			return fmt.Errorf("unknown choice %q", in.Choice)
		}
		return nil
	}
	p.complete = func(in rules.Input) {
		if h := props.Handlers[choiceIndex(props.Choices, in.Choice)]; h != nil {
			h()
		}
	}
	g.QueueStep(p)
}

// PromptForYesNo is a two-choice handler menu.
func (g *Game) PromptForYesNo(player *Player, title string, ctx *AbilityContext, onYes, onNo func()) {
	g.PromptWithHandlerMenu(player, MenuProperties{
		ActivePromptTitle: title,
		Context:           ctx,
		Choices:           []string{"Yes", "No"},
		Handlers:          []func(){onYes, onNo},
	})
}

func choiceIndex(choices []string, choice string) int {
	for i, c := range choices {
		if c == choice {
			return i
		}
	}
	return -1
}

// PromptForSelect asks player to choose cards. When nothing can be selected
// the prompt is skipped and OnCancel runs.
func (g *Game) PromptForSelect(player *Player, props SelectCardProperties) {
	ctx := props.Context
	if ctx == nil {
		ctx = g.GetFrameworkContext(player)
	}
	legal := g.selectableCards(player, props, ctx)
	if len(legal) == 0 {
		if props.OnCancel != nil {
			g.QueueSimpleStep("select card: no legal targets", func() { props.OnCancel(player) })
		}
		return
	}

	req := targeting.Requirement{Mode: props.Mode, NumCards: props.NumCards, Optional: props.Optional}
	if req.Mode == targeting.ModeAutoSingle && len(legal) == 1 {
		card := legal[0]
		g.QueueSimpleStep("select card: auto", func() {
			if props.OnSelect != nil {
				props.OnSelect(player, []*Card{card})
			}
		})
		return
	}
	if req.Mode == "" || req.Mode == targeting.ModeAutoSingle {
		req.Mode = targeting.ModeSingle
	}
	if req.Mode == targeting.ModeUnlimited {
		req.NumCards = len(legal)
	}

	byID := make(map[string]*Card, len(legal))
	ids := make([]string, 0, len(legal))
	for _, c := range legal {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}
	view := PromptView{
		Kind:              PromptSelectCard,
		Title:             props.ActivePromptTitle,
		SelectableCardIDs: ids,
		Mode:              req.Mode,
		NumCards:          req.NumCards,
		Optional:          req.Optional,
		Buttons:           []string{"done"},
	}
	if req.Optional {
		view.Buttons = append(view.Buttons, ButtonCancel)
	}
	p := g.newPrompt(player, view)
	p.validate = func(in rules.Input) error {
		if in.Button == ButtonCancel {
			if !req.Optional {
				return fmt.Errorf("selection is not optional")
			}
			return nil
		}
		return targeting.Validate(req, in.CardIDs, func(id string) bool { return byID[id] != nil })
	}
	p.complete = func(in rules.Input) {
		if in.Button == ButtonCancel || len(in.CardIDs) == 0 {
			if props.OnCancel != nil {
				props.OnCancel(player)
			}
			return
		}
		cards := make([]*Card, 0, len(in.CardIDs))
		for _, id := range in.CardIDs {
			cards = append(cards, byID[id])
		}
		if props.OnSelect != nil {
			props.OnSelect(player, cards)
		}
	}
	g.QueueStep(p)
}

func (g *Game) selectableCards(player *Player, props SelectCardProperties, ctx *AbilityContext) []*Card {
	locations := props.Locations
	if len(locations) == 0 {
		locations = []Location{LocationPlayArea}
	}
	var out []*Card
	for _, owner := range g.players {
		switch props.Controller {
		case PlayersSelf:
			if owner != player {
				continue
			}
		case PlayersOpponent:
			if owner == player {
				continue
			}
		}
		for _, card := range g.cardsAt(owner, locations) {
			if len(props.CardTypes) > 0 && !cardTypeIn(card.Type(), props.CardTypes) {
				continue
			}
			if props.CardCondition != nil && !props.CardCondition(card, ctx) {
				continue
			}
			out = append(out, card)
		}
	}
	return out
}

func (g *Game) cardsAt(player *Player, locations []Location) []*Card {
	var out []*Card
	for _, loc := range locations {
		switch {
		case loc == LocationAny:
			out = append(out, player.AllCards()...)
			out = append(out, player.Provinces()...)
		case loc == LocationProvinces:
			out = append(out, player.Provinces()...)
		default:
			out = append(out, player.CardsIn(loc)...)
			if loc.IsProvince() {
				if p := player.Province(loc); p != nil {
					out = append(out, p)
				}
			}
		}
	}
	return out
}

func cardTypeIn(t CardType, set []CardType) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}

// PromptForRingSelect asks player to choose one ring.
func (g *Game) PromptForRingSelect(player *Player, props SelectRingProperties) {
	ctx := props.Context
	if ctx == nil {
		ctx = g.GetFrameworkContext(player)
	}
	var legal []Element
	for _, e := range Elements {
		ring := g.rings[e]
		if ring == nil || ring.RemovedFromGame {
			continue
		}
		if props.RingCondition != nil && !props.RingCondition(ring, ctx) {
			continue
		}
		legal = append(legal, e)
	}
	if len(legal) == 0 {
		if props.OnCancel != nil {
			g.QueueSimpleStep("select ring: no legal targets", func() { props.OnCancel(player) })
		}
		return
	}

	view := PromptView{
		Kind:            PromptSelectRing,
		Title:           props.ActivePromptTitle,
		SelectableRings: legal,
		Optional:        props.Optional,
	}
	if props.Optional {
		view.Buttons = []string{ButtonCancel}
	}
	p := g.newPrompt(player, view)
	p.validate = func(in rules.Input) error {
		if in.Button == ButtonCancel {
			if !props.Optional {
				return fmt.Errorf("ring selection is not optional")
			}
			return nil
		}
		for _, e := range legal {
			if string(e) == in.Ring {
				return nil
			}
		}
		return fmt.Errorf("ring %q cannot be selected", in.Ring)
	}
	p.complete = func(in rules.Input) {
		if in.Button == ButtonCancel {
			if props.OnCancel != nil {
				props.OnCancel(player)
			}
			return
		}
		if props.OnSelect != nil {
			props.OnSelect(player, g.rings[Element(in.Ring)])
		}
	}
	g.QueueStep(p)
}

// SimultaneousChoice is one effect offered in a simultaneous effect window.
type SimultaneousChoice struct {
	Title   string
	Handler func()
}

// OpenSimultaneousEffectWindow lets player order effects that would happen
// at the same time. Each pick resolves one effect and re-prompts for the
// rest; a single remaining effect resolves without a prompt.
func (g *Game) OpenSimultaneousEffectWindow(player *Player, choices []SimultaneousChoice) {
	if len(choices) == 0 {
		return
	}
	if len(choices) == 1 || player == nil || player.dummy {
		for _, c := range choices {
			g.QueueSimpleStep(c.Title, c.Handler)
		}
		return
	}
	titles := make([]string, 0, len(choices))
	handlers := make([]func(), 0, len(choices))
	for i, c := range choices {
		titles = append(titles, c.Title)
		handlers = append(handlers, func() {
			if c.Handler != nil {
				c.Handler()
			}
			rest := make([]SimultaneousChoice, 0, len(choices)-1)
			rest = append(rest, choices[:i]...)
			rest = append(rest, choices[i+1:]...)
			g.QueueSimpleStep("simultaneous effects", func() {
				g.OpenSimultaneousEffectWindow(player, rest)
			})
		})
	}
	g.PromptWithHandlerMenu(player, MenuProperties{
		ActivePromptTitle: "Choose an effect to resolve",
		Choices:           titles,
		Handlers:          handlers,
	})
}
