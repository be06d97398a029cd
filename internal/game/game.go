package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jigoku/jigoku-server-go/internal/game/rules"
	"github.com/jigoku/jigoku-server-go/internal/game/watchers"
)

// Errors returned at the response boundary.
var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameFinished      = errors.New("game has finished")
	ErrNoActivePrompt    = errors.New("no active prompt")
	ErrNotPromptedPlayer = errors.New("player is not the prompted player")
	ErrInvalidResponse   = errors.New("invalid prompt response")
	ErrPromptMismatch    = errors.New("response does not match the active prompt")
)

// Options configures a new game.
type Options struct {
	ID            string
	Logger        *zap.Logger
	StartingFate  int
	StartingHonor int
}

// Message is one line of the player-visible match log.
type Message struct {
	Text      string
	Timestamp time.Time
}

// Game is the arena every entity of a match lives in. All mutation happens
// inside steps drained from its pipeline.
type Game struct {
	ID string

	logger  *zap.Logger
	options Options

	players []*Player
	cards   map[string]*Card
	rings   map[Element]*Ring

	currentConflict *Conflict
	conflictCount   int
	conflictHistory []*Conflict

	pipeline *rules.Pipeline
	effects  *EffectEngine
	bus      *rules.EventBus
	triggers *rules.TriggerRegistry[*TriggeredAbility]
	watchers *rules.WatcherRegistry
	phases   *rules.PhaseTracker

	prompts  map[string]*promptStep
	windows  []*EventWindow
	messages []Message
	journal  []rules.Record
	seq      int

	framework frameworkSource
	winner    *Player
	finished  bool
}

// New creates a game with the five rings and the default watchers.
func New(opts Options) *Game {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	g := &Game{
		ID:        opts.ID,
		logger:    opts.Logger.With(zap.String("game_id", opts.ID)),
		options:   opts,
		cards:     make(map[string]*Card),
		rings:     make(map[Element]*Ring),
		pipeline:  rules.NewPipeline(),
		bus:       rules.NewEventBus(),
		triggers:  rules.NewTriggerRegistry[*TriggeredAbility](),
		watchers:  rules.NewWatcherRegistry(),
		phases:    rules.NewPhaseTracker(""),
		prompts:   make(map[string]*promptStep),
		framework: frameworkSource{id: "framework-" + opts.ID},
	}
	g.effects = newEffectEngine(g)
	for _, e := range Elements {
		g.rings[e] = newRing(g, e)
	}
	for _, w := range watchers.Defaults() {
		g.watchers.AddWatcher(w)
	}
	g.bus.Subscribe(g.watchers.NotifyWatchers)
	return g
}

// Logger returns the game's logger.
func (g *Game) Logger() *zap.Logger { return g.logger }

// AddPlayer seats a player. The first player seated is first player.
func (g *Game) AddPlayer(id, name string) *Player {
	if id == "" {
		id = uuid.NewString()
	}
	p := newPlayer(g, id, name)
	p.Fate = g.options.StartingFate
	p.Honor = g.options.StartingHonor
	if len(g.players) == 0 {
		p.FirstPlayer = true
		g.phases.SetFirstPlayer(p.ID)
	}
	g.players = append(g.players, p)
	return p
}

// CreateCard registers a card owned and controlled by owner in loc.
func (g *Game) CreateCard(owner *Player, def CardDefinition, loc Location) *Card {
	card := newCard(g, owner, def)
	g.cards[card.ID] = card
	owner.MoveCard(card, loc)
	return card
}

// Card returns a registered card by ID.
func (g *Game) Card(id string) *Card { return g.cards[id] }

// Players returns the seated players in seating order.
func (g *Game) Players() []*Player { return append([]*Player(nil), g.players...) }

// Player returns a seated player by ID.
func (g *Game) Player(id string) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) playerByName(name string) *Player {
	for _, p := range g.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Ring returns the ring of element, or nil.
func (g *Game) Ring(e Element) *Ring { return g.rings[e] }

// Rings returns the rings in element order.
func (g *Game) Rings() []*Ring {
	out := make([]*Ring, 0, len(g.rings))
	for _, e := range Elements {
		if r := g.rings[e]; r != nil {
			out = append(out, r)
		}
	}
	return out
}

// CurrentConflict returns the conflict in progress, or nil.
func (g *Game) CurrentConflict() *Conflict { return g.currentConflict }

// SetCurrentConflict makes c the conflict in progress.
func (g *Game) SetCurrentConflict(c *Conflict) { g.currentConflict = c }

// RecordConflict appends c to the conflict history.
func (g *Game) RecordConflict(c *Conflict) {
	g.conflictHistory = append(g.conflictHistory, c)
}

// ConflictHistory returns the conflicts declared so far this game.
func (g *Game) ConflictHistory() []*Conflict {
	return append([]*Conflict(nil), g.conflictHistory...)
}

// Effects returns the effect engine.
func (g *Game) Effects() *EffectEngine { return g.effects }

// Bus returns the bus applied event records are published on.
func (g *Game) Bus() *rules.EventBus { return g.bus }

// Watchers returns the watcher registry.
func (g *Game) Watchers() *rules.WatcherRegistry { return g.watchers }

// Phases returns the phase tracker.
func (g *Game) Phases() *rules.PhaseTracker { return g.phases }

// Journal returns every applied or cancelled event record, in order.
func (g *Game) Journal() []rules.Record {
	return append([]rules.Record(nil), g.journal...)
}

func (g *Game) record(e *Event) {
	r := e.Record()
	g.seq++
	r.Sequence = g.seq
	g.journal = append(g.journal, r)
	g.bus.Publish(r)
}

// QueueStep schedules a step.
func (g *Game) QueueStep(step rules.Step) {
	g.pipeline.QueueStep(step)
}

// QueueSimpleStep schedules fn as a step.
func (g *Game) QueueSimpleStep(name string, fn func()) {
	g.pipeline.QueueStep(rules.NewSimpleStep(name, fn))
}

// Continue drains the pipeline. It returns true when the queue is empty and
// false when a prompt is waiting for input.
func (g *Game) Continue() bool {
	done := g.pipeline.Continue()
	if !done {
		if id, ok := g.pipeline.AwaitingInput(); ok {
			g.logger.Debug("pipeline waiting for input", zap.String("prompt_id", id))
		}
	}
	return done
}

// IsIdle reports whether no steps are queued.
func (g *Game) IsIdle() bool { return g.pipeline.IsEmpty() }

// ActivePrompt returns the prompt the pipeline is blocked on.
func (g *Game) ActivePrompt() (PromptView, bool) {
	id, ok := g.pipeline.AwaitingInput()
	if !ok {
		return PromptView{}, false
	}
	p := g.prompts[id]
	if p == nil {
		return PromptView{}, false
	}
	return p.view, true
}

// Respond answers the active prompt and resumes the pipeline.
func (g *Game) Respond(in rules.Input) error {
	if g.finished {
		return ErrGameFinished
	}
	id, ok := g.pipeline.AwaitingInput()
	if !ok {
		return ErrNoActivePrompt
	}
	p := g.prompts[id]
	if p == nil {
		return ErrNoActivePrompt
	}
	if in.PromptID != "" && in.PromptID != id {
		return fmt.Errorf("%w: active prompt is %s", ErrPromptMismatch, id)
	}
	if in.PlayerID != p.player.ID {
		return fmt.Errorf("%w: waiting for %s", ErrNotPromptedPlayer, p.player.Name)
	}
	in.PromptID = id
	if p.validate != nil {
		if err := p.validate(in); err != nil {
			g.logger.Warn("rejected prompt response",
				zap.String("prompt_id", id),
				zap.String("player_id", in.PlayerID),
				zap.Error(err),
			)
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	if !g.pipeline.HandleInput(in) {
		return ErrInvalidResponse
	}
	g.Continue()
	return nil
}

// GetEvent creates a notification event without opening a window for it.
func (g *Game) GetEvent(name rules.EventName, params EventParams) *Event {
	return NewEvent(name, params)
}

func (g *Game) newActionEvent(action Action, params EventParams) *Event {
	return NewActionEvent(action, params, Overrides{})
}

// RaiseEvent opens a window for a single notification event.
func (g *Game) RaiseEvent(name rules.EventName, params EventParams) *Event {
	e := g.GetEvent(name, params)
	g.OpenEventWindow(e)
	return e
}

// OpenEventWindow queues a window applying events in order.
func (g *Game) OpenEventWindow(events ...*Event) *EventWindow {
	w := newEventWindow(g, events, false)
	g.QueueStep(w)
	return w
}

// OpenThenEventWindow queues a window whose reactions are folded into the
// window that was open when it started.
func (g *Game) OpenThenEventWindow(events ...*Event) *EventWindow {
	w := newEventWindow(g, events, true)
	g.QueueStep(w)
	return w
}

// GetFrameworkContext returns a context sourced from the framework.
func (g *Game) GetFrameworkContext(player *Player) *AbilityContext {
	return NewAbilityContext(ContextProperties{Game: g, Player: player})
}

// GetPlayersInFirstPlayerOrder returns the first player followed by the
// rest in seating order.
func (g *Game) GetPlayersInFirstPlayerOrder() []*Player {
	out := make([]*Player, 0, len(g.players))
	for _, p := range g.players {
		if p.FirstPlayer {
			out = append(out, p)
		}
	}
	for _, p := range g.players {
		if !p.FirstPlayer {
			out = append(out, p)
		}
	}
	return out
}

// FindAnyCardsInAnyList returns every card, provinces included, matching
// pred.
func (g *Game) FindAnyCardsInAnyList(pred func(*Card) bool) []*Card {
	var out []*Card
	for _, p := range g.players {
		for _, c := range p.AllCards() {
			if pred == nil || pred(c) {
				out = append(out, c)
			}
		}
		for _, c := range p.Provinces() {
			if pred == nil || pred(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// CheckGameState refreshes effects and conflict skills, then checks honor
// win conditions.
func (g *Game) CheckGameState(hasChanged bool) {
	changed := g.effects.CheckEffects(hasChanged)
	if g.currentConflict != nil {
		changed = g.currentConflict.CalculateSkill(changed)
	}
	if changed {
		g.checkWinCondition()
	}
}

func (g *Game) checkWinCondition() {
	if g.finished {
		return
	}
	for _, p := range g.GetPlayersInFirstPlayerOrder() {
		switch {
		case p.Honor >= HonorVictory:
			g.RecordWinner(p, "honor")
			return
		case p.Honor <= HonorDefeat && p.Opponent() != nil:
			g.RecordWinner(p.Opponent(), "dishonor")
			return
		}
	}
}

// RecordWinner ends the game in winner's favor.
func (g *Game) RecordWinner(winner *Player, reason string) {
	if g.finished {
		return
	}
	g.winner = winner
	g.finished = true
	g.AddMessage("{0} has won the game", winner)
	g.logger.Info("game won",
		zap.String("winner", winner.Name),
		zap.String("reason", reason),
	)
}

// Winner returns the winning player once the game finished.
func (g *Game) Winner() *Player { return g.winner }

// Finished reports whether the game has a winner.
func (g *Game) Finished() bool { return g.finished }

// AdvancePhase ends the current phase and starts the next one, expiring
// phase and round effects and resetting watchers at round boundaries.
func (g *Game) AdvancePhase() rules.Phase {
	ctx := g.GetFrameworkContext(nil)
	previous := g.phases.CurrentPhase()
	if g.phases.Round() > 0 {
		g.effects.EndPhase()
		g.RaiseEvent(rules.EventPhaseEnded, EventParams{Context: ctx})
	}
	phase, newRound := g.phases.Advance("")
	if newRound && g.phases.Round() > 1 {
		g.effects.EndRound()
		g.watchers.ResetWatchers()
		g.RaiseEvent(rules.EventRoundEnded, EventParams{Context: ctx})
	}
	g.logger.Debug("phase advanced",
		zap.Stringer("from", previous),
		zap.Stringer("to", phase),
		zap.Int("round", g.phases.Round()),
	)
	g.RaiseEvent(rules.EventPhaseStarted, EventParams{Context: ctx})
	return phase
}

// EndConflict expires conflict effects and detaches the current conflict.
func (g *Game) EndConflict() {
	g.effects.EndConflict()
	if g.currentConflict != nil {
		g.currentConflict.ResetCards()
		g.currentConflict = nil
	}
	g.CheckGameState(true)
}

// AddMessage appends a line to the match log. {N} placeholders are replaced
// by the display form of the Nth argument.
func (g *Game) AddMessage(format string, args ...any) {
	text := formatMessage(format, args)
	g.messages = append(g.messages, Message{Text: text, Timestamp: time.Now()})
	g.logger.Debug("match log", zap.String("message", text))
}

// Messages returns the match log.
func (g *Game) Messages() []Message {
	return append([]Message(nil), g.messages...)
}

func formatMessage(format string, args []any) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] == '{' {
			if end := strings.IndexByte(format[i:], '}'); end > 1 {
				if n, err := strconv.Atoi(format[i+1 : i+end]); err == nil && n >= 0 && n < len(args) {
					b.WriteString(displayName(args[n]))
					i += end
					continue
				}
			}
		}
		b.WriteByte(format[i])
	}
	return b.String()
}

func displayName(arg any) string {
	switch v := arg.(type) {
	case nil:
		return ""
	case *Player:
		if v == nil {
			return ""
		}
		return v.Name
	case *Card:
		if v == nil {
			return ""
		}
		return v.Name()
	case []*Card:
		names := make([]string, 0, len(v))
		for _, c := range v {
			names = append(names, c.Name())
		}
		return joinNames(names)
	case []*Ring:
		names := make([]string, 0, len(v))
		for _, r := range v {
			names = append(names, r.Name())
		}
		return joinNames(names)
	case EffectSource:
		return v.SourceName()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
