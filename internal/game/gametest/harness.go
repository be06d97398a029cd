// Package gametest builds small two-player games for tests and drives their
// prompts.
package gametest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// Harness wraps a game with two seated players. P1 is first player.
type Harness struct {
	t    testing.TB
	Game *game.Game
	P1   *game.Player
	P2   *game.Player
}

// Option tweaks the game a harness builds.
type Option func(*game.Options, *setup)

type setup struct {
	singlePlayer bool
}

// WithFate sets each player's starting fate.
func WithFate(n int) Option {
	return func(o *game.Options, _ *setup) { o.StartingFate = n }
}

// WithHonor sets each player's starting honor.
func WithHonor(n int) Option {
	return func(o *game.Options, _ *setup) { o.StartingHonor = n }
}

// SinglePlayer seats only P1.
func SinglePlayer() Option {
	return func(_ *game.Options, s *setup) { s.singlePlayer = true }
}

// New creates a harness. Players start with 10 fate and 10 honor.
func New(t testing.TB, opts ...Option) *Harness {
	t.Helper()
	o := game.Options{
		ID:            "test-game",
		Logger:        zaptest.NewLogger(t),
		StartingFate:  10,
		StartingHonor: 10,
	}
	var s setup
	for _, opt := range opts {
		opt(&o, &s)
	}
	g := game.New(o)
	h := &Harness{t: t, Game: g}
	h.P1 = g.AddPlayer("p1", "Player 1")
	if !s.singlePlayer {
		h.P2 = g.AddPlayer("p2", "Player 2")
	}
	return h
}

// Character puts a character into owner's play area.
func (h *Harness) Character(owner *game.Player, name string, military, political int) *game.Card {
	return h.Card(owner, game.CardDefinition{
		Name:      name,
		Type:      game.CardTypeCharacter,
		Side:      "dynasty",
		Military:  military,
		Political: political,
		Glory:     1,
	}, game.LocationPlayArea)
}

// Card registers a card built from def in loc.
func (h *Harness) Card(owner *game.Player, def game.CardDefinition, loc game.Location) *game.Card {
	if def.Code == "" {
		def.Code = strings.ToLower(strings.ReplaceAll(def.Name, " ", "-"))
	}
	return h.Game.CreateCard(owner, def, loc)
}

// Province places a province with the given strength in a province slot.
func (h *Harness) Province(owner *game.Player, loc game.Location, name string, strength int) *game.Card {
	return h.Card(owner, game.CardDefinition{
		Name:     name,
		Type:     game.CardTypeProvince,
		Strength: strength,
	}, loc)
}

// HandCard puts a conflict card into owner's hand.
func (h *Harness) HandCard(owner *game.Player, name string) *game.Card {
	return h.Card(owner, game.CardDefinition{
		Name: name,
		Type: game.CardTypeEvent,
		Side: "conflict",
	}, game.LocationHand)
}

// Deck fills owner's conflict deck with n cards.
func (h *Harness) Deck(owner *game.Player, n int) []*game.Card {
	cards := make([]*game.Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, h.Card(owner, game.CardDefinition{
			Name: "Deck Card",
			Type: game.CardTypeEvent,
			Side: "conflict",
		}, game.LocationConflictDeck))
	}
	return cards
}

// Context is a framework context acting for player.
func (h *Harness) Context(player *game.Player) *game.AbilityContext {
	return h.Game.GetFrameworkContext(player)
}

// CardContext is a context whose source is card, acting for its controller.
func (h *Harness) CardContext(card *game.Card) *game.AbilityContext {
	return game.NewAbilityContext(game.ContextProperties{
		Game:   h.Game,
		Source: card,
		Player: card.Controller(),
	})
}

// Resolve resolves action against ctx and drains the pipeline.
func (h *Harness) Resolve(action game.Action, ctx *game.AbilityContext, o game.Overrides) {
	h.Game.ResolveGameAction(action, ctx, o)
	h.Run()
}

// Run drains the pipeline up to the next prompt.
func (h *Harness) Run() {
	h.Game.Continue()
}

// Prompt returns the active prompt, failing unless player is being asked.
func (h *Harness) Prompt(player *game.Player) game.PromptView {
	h.t.Helper()
	view, ok := h.Game.ActivePrompt()
	require.True(h.t, ok, "expected a prompt for %s", player.Name)
	require.Equal(h.t, player.ID, view.PlayerID, "prompt %q is for another player", view.Title)
	return view
}

// HasPrompt reports whether any prompt is outstanding.
func (h *Harness) HasPrompt() bool {
	_, ok := h.Game.ActivePrompt()
	return ok
}

// Choose answers a menu prompt.
func (h *Harness) Choose(player *game.Player, choice string) {
	h.t.Helper()
	view := h.Prompt(player)
	require.Contains(h.t, view.Choices, choice)
	h.respond(rules.Input{PromptID: view.ID, PlayerID: player.ID, Choice: choice})
}

// Select answers a card selection prompt.
func (h *Harness) Select(player *game.Player, cards ...*game.Card) {
	h.t.Helper()
	view := h.Prompt(player)
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	h.respond(rules.Input{PromptID: view.ID, PlayerID: player.ID, CardIDs: ids, Button: "done"})
}

// SelectRing answers a ring selection prompt.
func (h *Harness) SelectRing(player *game.Player, element game.Element) {
	h.t.Helper()
	view := h.Prompt(player)
	h.respond(rules.Input{PromptID: view.ID, PlayerID: player.ID, Ring: string(element)})
}

// Decline presses cancel on an optional selection prompt.
func (h *Harness) Decline(player *game.Player) {
	h.t.Helper()
	view := h.Prompt(player)
	h.respond(rules.Input{PromptID: view.ID, PlayerID: player.ID, Button: game.ButtonCancel})
}

func (h *Harness) respond(in rules.Input) {
	h.t.Helper()
	require.NoError(h.t, h.Game.Respond(in))
}

// RequireIdle fails if a prompt is outstanding or steps remain queued.
func (h *Harness) RequireIdle() {
	h.t.Helper()
	if view, ok := h.Game.ActivePrompt(); ok {
		h.t.Fatalf("unexpected prompt %q for %s", view.Title, view.PlayerID)
	}
	require.True(h.t, h.Game.IsIdle(), "pipeline still has queued steps")
}

// Messages returns the match log text.
func (h *Harness) Messages() []string {
	msgs := h.Game.Messages()
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

// HasMessage reports whether a log line contains text.
func (h *Harness) HasMessage(text string) bool {
	for _, m := range h.Messages() {
		if strings.Contains(m, text) {
			return true
		}
	}
	return false
}

// Records returns the journaled records named name, or all records when
// name is empty.
func (h *Harness) Records(name rules.EventName) []rules.Record {
	var out []rules.Record
	for _, r := range h.Game.Journal() {
		if name == "" || r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

// Applied returns the records named name that were not cancelled.
func (h *Harness) Applied(name rules.EventName) []rules.Record {
	var out []rules.Record
	for _, r := range h.Records(name) {
		if !r.Cancelled {
			out = append(out, r)
		}
	}
	return out
}
