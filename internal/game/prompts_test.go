package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/gametest"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
	"github.com/jigoku/jigoku-server-go/internal/game/targeting"
)

func TestRespondErrors(t *testing.T) {
	h := gametest.New(t)
	answered := ""

	err := h.Game.Respond(rules.Input{PlayerID: h.P1.ID, Choice: "Yes"})
	require.ErrorIs(t, err, game.ErrNoActivePrompt)

	h.Game.PromptForYesNo(h.P1, "Continue?", nil,
		func() { answered = "yes" },
		func() { answered = "no" },
	)
	h.Run()
	view := h.Prompt(h.P1)

	err = h.Game.Respond(rules.Input{PromptID: view.ID, PlayerID: h.P2.ID, Choice: "Yes"})
	assert.ErrorIs(t, err, game.ErrNotPromptedPlayer)

	err = h.Game.Respond(rules.Input{PromptID: "stale", PlayerID: h.P1.ID, Choice: "Yes"})
	assert.ErrorIs(t, err, game.ErrPromptMismatch)

	err = h.Game.Respond(rules.Input{PromptID: view.ID, PlayerID: h.P1.ID, Choice: "Maybe"})
	assert.ErrorIs(t, err, game.ErrInvalidResponse)
	assert.Empty(t, answered, "rejected answers leave the prompt open")

	require.NoError(t, h.Game.Respond(rules.Input{PlayerID: h.P1.ID, Choice: "No"}))
	assert.Equal(t, "no", answered)
	h.RequireIdle()
}

func TestRespondAfterGameFinished(t *testing.T) {
	h := gametest.New(t)
	h.Game.PromptForYesNo(h.P1, "Continue?", nil, nil, nil)
	h.Run()
	h.Game.RecordWinner(h.P2, "concede")

	err := h.Game.Respond(rules.Input{PlayerID: h.P1.ID, Choice: "Yes"})

	assert.ErrorIs(t, err, game.ErrGameFinished)
	assert.True(t, h.HasMessage("Player 2 has won the game"))
}

func TestMenuNeedsAHandlerPerChoice(t *testing.T) {
	h := gametest.New(t)

	assert.Panics(t, func() {
		h.Game.PromptWithHandlerMenu(h.P1, game.MenuProperties{
			ActivePromptTitle: "Broken",
			Choices:           []string{"a", "b"},
			Handlers:          []func(){nil},
		})
	})
}

func TestSelectCardPrompt(t *testing.T) {
	h := gametest.New(t)
	mine := h.Character(h.P1, "Doji Whisperer", 0, 3)
	theirs := h.Character(h.P2, "Matsu Berserker", 3, 0)
	other := h.Character(h.P2, "Akodo Cadet", 2, 1)
	var chosen []*game.Card

	h.Game.PromptForSelect(h.P1, game.SelectCardProperties{
		ActivePromptTitle: "Choose a character",
		Controller:        game.PlayersOpponent,
		CardTypes:         []game.CardType{game.CardTypeCharacter},
		OnSelect:          func(_ *game.Player, cards []*game.Card) { chosen = cards },
	})
	h.Run()

	view := h.Prompt(h.P1)
	assert.Equal(t, game.PromptSelectCard, view.Kind)
	assert.ElementsMatch(t, []string{theirs.ID, other.ID}, view.SelectableCardIDs)
	assert.NotContains(t, view.SelectableCardIDs, mine.ID)
	assert.Equal(t, targeting.ModeSingle, view.Mode)

	err := h.Game.Respond(rules.Input{PlayerID: h.P1.ID, CardIDs: []string{mine.ID}})
	assert.ErrorIs(t, err, game.ErrInvalidResponse)
	err = h.Game.Respond(rules.Input{PlayerID: h.P1.ID, CardIDs: []string{theirs.ID, other.ID}})
	assert.ErrorIs(t, err, game.ErrInvalidResponse)
	err = h.Game.Respond(rules.Input{PlayerID: h.P1.ID, Button: game.ButtonCancel})
	assert.ErrorIs(t, err, game.ErrInvalidResponse, "mandatory selections cannot be cancelled")

	h.Select(h.P1, theirs)
	assert.Equal(t, []*game.Card{theirs}, chosen)
	h.RequireIdle()
}

func TestSelectCardWithoutLegalCardsCancels(t *testing.T) {
	h := gametest.New(t)
	h.Character(h.P1, "Doji Whisperer", 0, 3)
	cancelled := false

	h.Game.PromptForSelect(h.P1, game.SelectCardProperties{
		Controller: game.PlayersOpponent,
		OnSelect:   func(*game.Player, []*game.Card) { t.Fatal("nothing should be selectable") },
		OnCancel:   func(*game.Player) { cancelled = true },
	})
	h.Run()

	assert.True(t, cancelled)
	h.RequireIdle()
}

func TestAutoSingleSelectsOnlyCard(t *testing.T) {
	h := gametest.New(t)
	only := h.Character(h.P2, "Matsu Berserker", 3, 0)
	var chosen []*game.Card

	h.Game.PromptForSelect(h.P1, game.SelectCardProperties{
		Mode:       targeting.ModeAutoSingle,
		Controller: game.PlayersOpponent,
		OnSelect:   func(_ *game.Player, cards []*game.Card) { chosen = cards },
	})
	h.Run()

	assert.Equal(t, []*game.Card{only}, chosen)
	h.RequireIdle()
}

func TestOptionalSelectionCanBeDeclined(t *testing.T) {
	h := gametest.New(t)
	h.Character(h.P2, "Matsu Berserker", 3, 0)
	declined := false

	h.Game.PromptForSelect(h.P1, game.SelectCardProperties{
		Optional: true,
		OnCancel: func(*game.Player) { declined = true },
	})
	h.Run()
	assert.Contains(t, h.Prompt(h.P1).Buttons, game.ButtonCancel)
	h.Decline(h.P1)

	assert.True(t, declined)
}

func TestRingSelectPrompt(t *testing.T) {
	h := gametest.New(t)
	h.Game.Ring(game.ElementVoid).ClaimRing(h.P2)
	var chosen *game.Ring

	h.Game.PromptForRingSelect(h.P1, game.SelectRingProperties{
		ActivePromptTitle: "Choose an unclaimed ring",
		RingCondition:     func(ring *game.Ring, _ *game.AbilityContext) bool { return ring.IsUnclaimed() },
		OnSelect:          func(_ *game.Player, ring *game.Ring) { chosen = ring },
	})
	h.Run()

	view := h.Prompt(h.P1)
	assert.Equal(t, game.PromptSelectRing, view.Kind)
	assert.NotContains(t, view.SelectableRings, game.ElementVoid)
	assert.Len(t, view.SelectableRings, 4)

	err := h.Game.Respond(rules.Input{PlayerID: h.P1.ID, Ring: string(game.ElementVoid)})
	assert.ErrorIs(t, err, game.ErrInvalidResponse)

	h.SelectRing(h.P1, game.ElementWater)
	assert.Same(t, h.Game.Ring(game.ElementWater), chosen)
}

func TestSimultaneousEffectWindowLetsPlayerOrder(t *testing.T) {
	h := gametest.New(t)
	var log []string
	effect := func(name string) game.SimultaneousChoice {
		return game.SimultaneousChoice{Title: name, Handler: func() { log = append(log, name) }}
	}

	h.Game.OpenSimultaneousEffectWindow(h.P1, []game.SimultaneousChoice{effect("air"), effect("fire"), effect("water")})
	h.Run()

	assert.Equal(t, "Choose an effect to resolve", h.Prompt(h.P1).Title)
	h.Choose(h.P1, "water")
	assert.Equal(t, []string{"air", "fire"}, h.Prompt(h.P1).Choices)
	h.Choose(h.P1, "fire")

	assert.Equal(t, []string{"water", "fire", "air"}, log)
	h.RequireIdle()
}
