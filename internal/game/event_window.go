package game

import (
	"go.uber.org/zap"

	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

// EventWindow applies a batch of events. Its steps run in order: condition
// check, interrupts, a second condition check, handlers (insertion order),
// then-window hand-off, reactions and close.
type EventWindow struct {
	rules.StepWithPipeline

	game           *Game
	events         []*Event
	reactionEvents []*Event
	then           bool
	parent         *EventWindow
}

func newEventWindow(g *Game, events []*Event, then bool) *EventWindow {
	w := &EventWindow{game: g, then: then}
	for _, e := range events {
		w.AddEvent(e)
	}
	w.Pipeline = rules.NewPipeline(
		rules.NewSimpleStep("open window", w.open),
		rules.NewSimpleStep("check event conditions", w.checkEventConditions),
		rules.NewSimpleStep("interrupt window", func() { w.openTriggerWindow(rules.MomentInterrupt) }),
		rules.NewSimpleStep("check event conditions", w.checkEventConditions),
		rules.NewSimpleStep("execute handlers", w.executeHandlers),
		rules.NewSimpleStep("reaction window", func() { w.openTriggerWindow(rules.MomentReaction) }),
		rules.NewSimpleStep("close window", w.close),
	)
	return w
}

// AddEvent adds an event to the window. Events added after the handlers
// ran are not applied.
func (w *EventWindow) AddEvent(e *Event) {
	if e == nil {
		return
	}
	e.window = w
	e.Order = len(w.events)
	w.events = append(w.events, e)
}

// Events returns the window's events in application order.
func (w *EventWindow) Events() []*Event {
	return append([]*Event(nil), w.events...)
}

func (w *EventWindow) open() {
	g := w.game
	if w.then && len(g.windows) > 0 {
		w.parent = g.windows[len(g.windows)-1]
	}
	g.windows = append(g.windows, w)
}

func (w *EventWindow) close() {
	g := w.game
	if n := len(g.windows); n > 0 && g.windows[n-1] == w {
		g.windows = g.windows[:n-1]
	}
}

func (w *EventWindow) checkEventConditions() {
	for _, e := range w.events {
		if !e.cancelled && !e.CheckCondition() {
			e.Cancel()
		}
	}
}

func (w *EventWindow) executeHandlers() {
	g := w.game
	applied := false
	for _, e := range w.events {
		if e.cancelled {
			g.record(e)
			continue
		}
		e.apply()
		applied = true
		g.logger.Debug("event applied",
			zap.String("game_id", g.ID),
			zap.String("event", string(e.Name)),
			zap.Bool("cancelled", e.cancelled),
		)
		g.record(e)
		g.effects.onEvent(e)
	}
	g.CheckGameState(applied)
}

// triggerEvents returns the events reactions/interrupts may respond to.
func (w *EventWindow) triggerEvents(moment rules.Moment) []*Event {
	var out []*Event
	for _, e := range w.events {
		if e.cancelled {
			continue
		}
		if moment == rules.MomentReaction && !e.resolved {
			continue
		}
		out = append(out, e)
	}
	if moment == rules.MomentReaction {
		for _, e := range w.reactionEvents {
			if !e.cancelled && e.resolved {
				out = append(out, e)
			}
		}
	}
	return out
}

func (w *EventWindow) openTriggerWindow(moment rules.Moment) {
	if moment == rules.MomentReaction && w.parent != nil {
		w.parent.reactionEvents = append(w.parent.reactionEvents, w.triggerEvents(moment)...)
		return
	}
	w.game.openTriggerWindow(moment, w.triggerEvents(moment))
}

// triggerChoice is one triggered ability that may fire in a window.
type triggerChoice struct {
	ability *TriggeredAbility
	ctx     *AbilityContext
}

func (g *Game) openTriggerWindow(moment rules.Moment, events []*Event) {
	if len(events) == 0 || g.triggers.Len() == 0 {
		return
	}
	var names []rules.EventName
	seen := make(map[rules.EventName]bool)
	for _, e := range events {
		if !seen[e.Name] {
			seen[e.Name] = true
			names = append(names, e.Name)
		}
	}

	var choices []triggerChoice
	for _, t := range g.triggers.Matching(moment, names...) {
		ability := t.Payload
		for _, e := range events {
			if !t.Matches(moment, e.Name) {
				continue
			}
			ctx := ability.createContext(e)
			if ability.canTrigger(e, ctx) {
				choices = append(choices, triggerChoice{ability: ability, ctx: ctx})
				break
			}
		}
	}
	if len(choices) == 0 {
		return
	}

	for _, player := range g.GetPlayersInFirstPlayerOrder() {
		for _, choice := range choices {
			if choice.ctx.Player != player {
				continue
			}
			g.QueueSimpleStep("resolve trigger", func() {
				g.resolveTrigger(moment, choice)
			})
		}
	}
}

func (g *Game) resolveTrigger(moment rules.Moment, choice triggerChoice) {
	event := choice.ctx.TriggeringEvent
	if event != nil && event.cancelled {
		return
	}
	if moment == rules.MomentInterrupt && event != nil && event.resolved {
		return
	}
	if !choice.ability.Optional {
		g.ResolveAbility(choice.ctx)
		return
	}
	title := choice.ability.Title
	if title == "" && choice.ability.Card != nil {
		title = choice.ability.Card.Name()
	}
	g.PromptForYesNo(choice.ctx.Player, "Trigger "+title+"?", choice.ctx, func() {
		g.ResolveAbility(choice.ctx)
	}, nil)
}
