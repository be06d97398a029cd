package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/gametest"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// logAction appends its label to a shared log when applied.
type logAction struct {
	label     string
	event     rules.EventName
	log       *[]string
	condition func(*game.Event) bool
	onApply   func(*game.Event)
}

func (a *logAction) Name() string               { return a.label }
func (a *logAction) EventName() rules.EventName { return a.event }

func (a *logAction) CanAffect(game.Value, *game.AbilityContext, game.Overrides) bool { return true }

func (a *logAction) HasLegalTarget(*game.AbilityContext, game.Overrides) bool { return true }

func (a *logAction) AddEventsToArray(events *[]*game.Event, ctx *game.AbilityContext, o game.Overrides) {
	*events = append(*events, game.NewActionEvent(a, game.EventParams{Context: ctx}, o))
}

func (a *logAction) EventHandler(e *game.Event) {
	*a.log = append(*a.log, a.label)
	if a.onApply != nil {
		a.onApply(e)
	}
}

func (a *logAction) CheckEventCondition(e *game.Event) bool {
	return a.condition == nil || a.condition(e)
}

func newEvent(ctx *game.AbilityContext, a *logAction) *game.Event {
	return game.NewActionEvent(a, game.EventParams{Context: ctx}, game.Overrides{})
}

func alwaysWhen(names ...rules.EventName) map[rules.EventName]func(*game.Event, *game.AbilityContext) bool {
	when := make(map[rules.EventName]func(*game.Event, *game.AbilityContext) bool, len(names))
	for _, name := range names {
		when[name] = func(*game.Event, *game.AbilityContext) bool { return true }
	}
	return when
}

func TestHandlersRunInInsertionOrder(t *testing.T) {
	h := gametest.New(t)
	ctx := h.Context(h.P1)
	var log []string

	w := h.Game.OpenEventWindow(
		newEvent(ctx, &logAction{label: "first", event: rules.EventCardBowed, log: &log}),
		newEvent(ctx, &logAction{label: "second", event: rules.EventCardReadied, log: &log}),
		newEvent(ctx, &logAction{label: "third", event: rules.EventCardHonored, log: &log}),
	)
	h.Run()

	assert.Equal(t, []string{"first", "second", "third"}, log)
	for i, e := range w.Events() {
		assert.Equal(t, i, e.Order)
		assert.True(t, e.IsResolved())
		assert.Same(t, w, e.Window())
	}
	records := h.Records("")
	require.Len(t, records, 3)
	assert.Equal(t, rules.EventCardBowed, records[0].Name)
	assert.Equal(t, rules.EventCardHonored, records[2].Name)
	assert.Less(t, records[0].Sequence, records[1].Sequence)
	h.RequireIdle()
}

func TestFailedConditionCancelsEvent(t *testing.T) {
	h := gametest.New(t)
	ctx := h.Context(h.P1)
	var log []string

	h.Game.OpenEventWindow(
		newEvent(ctx, &logAction{label: "blocked", event: rules.EventCardBowed, log: &log,
			condition: func(*game.Event) bool { return false }}),
		newEvent(ctx, &logAction{label: "applied", event: rules.EventCardReadied, log: &log}),
	)
	h.Run()

	assert.Equal(t, []string{"applied"}, log)
	bowed := h.Records(rules.EventCardBowed)
	require.Len(t, bowed, 1)
	assert.True(t, bowed[0].Cancelled, "cancelled events are still journaled")
	assert.Empty(t, h.Applied(rules.EventCardBowed))
}

func TestInterruptCanCancelEvent(t *testing.T) {
	h := gametest.New(t)
	guard := h.Character(h.P2, "Kaiu Envoy", 1, 1)
	var log []string
	h.Game.RegisterTrigger(&game.TriggeredAbility{
		Ability: &game.Ability{
			Title:   "Stop it",
			Handler: func(ctx *game.AbilityContext) { ctx.TriggeringEvent.Cancel() },
		},
		Card:   guard,
		Moment: rules.MomentInterrupt,
		When:   alwaysWhen(rules.EventCardBowed),
	})

	h.Game.OpenEventWindow(newEvent(h.Context(h.P1), &logAction{label: "bow", event: rules.EventCardBowed, log: &log}))
	h.Run()

	assert.Empty(t, log)
	assert.True(t, h.HasMessage("Player 2 uses Stop it"))
	bowed := h.Records(rules.EventCardBowed)
	require.Len(t, bowed, 1)
	assert.True(t, bowed[0].Cancelled)
	h.RequireIdle()
}

func TestInterruptsDoNotFireForOtherEvents(t *testing.T) {
	h := gametest.New(t)
	guard := h.Character(h.P2, "Kaiu Envoy", 1, 1)
	fired := 0
	h.Game.RegisterTrigger(&game.TriggeredAbility{
		Ability: &game.Ability{Handler: func(*game.AbilityContext) { fired++ }},
		Card:    guard,
		Moment:  rules.MomentInterrupt,
		When:    alwaysWhen(rules.EventCardHonored),
	})
	var log []string

	h.Game.OpenEventWindow(newEvent(h.Context(h.P1), &logAction{label: "bow", event: rules.EventCardBowed, log: &log}))
	h.Run()

	assert.Zero(t, fired)
	assert.Equal(t, []string{"bow"}, log)
}

func TestReactionsFireAfterHandlers(t *testing.T) {
	h := gametest.New(t)
	watcher := h.Character(h.P1, "Doji Hotaru", 2, 4)
	var log []string
	h.Game.RegisterTrigger(&game.TriggeredAbility{
		Ability: &game.Ability{Handler: func(ctx *game.AbilityContext) {
			assert.True(t, ctx.TriggeringEvent.IsResolved())
			log = append(log, "reaction")
		}},
		Card:   watcher,
		Moment: rules.MomentReaction,
		When:   alwaysWhen(rules.EventCardBowed),
	})

	h.Game.OpenEventWindow(newEvent(h.Context(h.P1), &logAction{label: "bow", event: rules.EventCardBowed, log: &log}))
	h.Run()

	assert.Equal(t, []string{"bow", "reaction"}, log)
	h.RequireIdle()
}

func TestReactionsIgnoreCancelledEvents(t *testing.T) {
	h := gametest.New(t)
	watcher := h.Character(h.P1, "Doji Hotaru", 2, 4)
	fired := false
	h.Game.RegisterTrigger(&game.TriggeredAbility{
		Ability: &game.Ability{Handler: func(*game.AbilityContext) { fired = true }},
		Card:    watcher,
		Moment:  rules.MomentReaction,
		When:    alwaysWhen(rules.EventCardBowed),
	})
	var log []string

	h.Game.OpenEventWindow(newEvent(h.Context(h.P1), &logAction{label: "bow", event: rules.EventCardBowed, log: &log,
		condition: func(*game.Event) bool { return false }}))
	h.Run()

	assert.False(t, fired)
}

func TestTriggersNeedSourceInPlay(t *testing.T) {
	h := gametest.New(t)
	inHand := h.HandCard(h.P1, "Court Games")
	fired := false
	h.Game.RegisterTrigger(&game.TriggeredAbility{
		Ability: &game.Ability{Handler: func(*game.AbilityContext) { fired = true }},
		Card:    inHand,
		Moment:  rules.MomentReaction,
		When:    alwaysWhen(rules.EventCardBowed),
	})
	var log []string

	h.Game.OpenEventWindow(newEvent(h.Context(h.P1), &logAction{label: "bow", event: rules.EventCardBowed, log: &log}))
	h.Run()

	assert.False(t, fired)
}

func TestOptionalTriggerPrompts(t *testing.T) {
	for _, tc := range []struct {
		answer string
		fired  bool
	}{
		{answer: "Yes", fired: true},
		{answer: "No", fired: false},
	} {
		t.Run(tc.answer, func(t *testing.T) {
			h := gametest.New(t)
			watcher := h.Character(h.P1, "Doji Hotaru", 2, 4)
			fired := false
			h.Game.RegisterTrigger(&game.TriggeredAbility{
				Ability:  &game.Ability{Title: "Inspire", Handler: func(*game.AbilityContext) { fired = true }},
				Card:     watcher,
				Moment:   rules.MomentReaction,
				When:     alwaysWhen(rules.EventCardBowed),
				Optional: true,
			})
			var log []string

			h.Game.OpenEventWindow(newEvent(h.Context(h.P1), &logAction{label: "bow", event: rules.EventCardBowed, log: &log}))
			h.Run()

			prompt := h.Prompt(h.P1)
			assert.Equal(t, "Trigger Inspire?", prompt.Title)
			assert.Equal(t, []string{"Yes", "No"}, prompt.Choices)
			h.Choose(h.P1, tc.answer)

			assert.Equal(t, tc.fired, fired)
			h.RequireIdle()
		})
	}
}

func TestUnregisteredTriggerDoesNotFire(t *testing.T) {
	h := gametest.New(t)
	watcher := h.Character(h.P1, "Doji Hotaru", 2, 4)
	fired := false
	trigger := &game.TriggeredAbility{
		Ability: &game.Ability{Handler: func(*game.AbilityContext) { fired = true }},
		Card:    watcher,
		Moment:  rules.MomentReaction,
		When:    alwaysWhen(rules.EventCardBowed),
	}
	h.Game.RegisterTrigger(trigger)
	h.Game.UnregisterTrigger(trigger)
	var log []string

	h.Game.OpenEventWindow(newEvent(h.Context(h.P1), &logAction{label: "bow", event: rules.EventCardBowed, log: &log}))
	h.Run()

	assert.False(t, fired)
}

func TestThenWindowReactionsJoinParentWindow(t *testing.T) {
	h := gametest.New(t)
	watcher := h.Character(h.P1, "Doji Hotaru", 2, 4)
	var log []string
	h.Game.RegisterTrigger(&game.TriggeredAbility{
		Ability: &game.Ability{Handler: func(*game.AbilityContext) { log = append(log, "reaction") }},
		Card:    watcher,
		Moment:  rules.MomentReaction,
		When:    alwaysWhen(rules.EventCardReadied),
	})
	ctx := h.Context(h.P1)
	child := &logAction{label: "child", event: rules.EventCardReadied, log: &log}
	parent := &logAction{label: "parent", event: rules.EventCardBowed, log: &log, onApply: func(*game.Event) {
		h.Game.OpenThenEventWindow(newEvent(ctx, child))
		h.Game.QueueSimpleStep("marker", func() { log = append(log, "marker") })
	}}

	h.Game.OpenEventWindow(newEvent(ctx, parent))
	h.Run()

	assert.Equal(t, []string{"parent", "child", "marker", "reaction"}, log)
	h.RequireIdle()
}

func TestRecordCarriesEventPayload(t *testing.T) {
	h := gametest.New(t)
	ring := h.Game.Ring(game.ElementFire)

	h.Game.RaiseEvent(rules.EventMoveFate, game.EventParams{
		Context:   h.Context(h.P1),
		Fate:      3,
		Origin:    ring,
		Recipient: h.P1,
	})
	h.Run()

	records := h.Records(rules.EventMoveFate)
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, 3, r.Amount)
	assert.Equal(t, "3", r.Metadata["fate"])
	assert.Equal(t, ring.EntityID(), r.Metadata["origin"])
	assert.Equal(t, h.P1.ID, r.Metadata["recipient"])
	assert.Equal(t, h.P1.ID, r.PlayerID)
	assert.False(t, r.Cancelled)
}
