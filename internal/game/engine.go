package game

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jigoku/jigoku-server-go/internal/game/rules"
	"github.com/jigoku/jigoku-server-go/internal/metrics"
)

// ErrTooManyGames is returned when the host is at capacity.
var ErrTooManyGames = errors.New("too many games")

// Journal persists applied event records of hosted games.
type Journal interface {
	Append(ctx context.Context, gameID string, records []rules.Record) error
}

// Notification is pushed to subscribers after every command that changed a
// game.
type Notification struct {
	Type      string
	GameID    string
	Timestamp time.Time
	Prompt    *PromptView
	Records   []rules.Record
}

// Notification types.
const (
	NotificationUpdate   = "GAME_UPDATE"
	NotificationPrompt   = "PROMPT"
	NotificationGameOver = "GAME_OVER"
)

// NotificationHandler receives engine notifications. It is called without
// any game lock held.
type NotificationHandler func(Notification)

// EngineOptions configures an Engine.
type EngineOptions struct {
	Logger        *zap.Logger
	Journal       Journal
	Recorder      *ReplayRecorder
	MaxGames      int
	StartingFate  int
	StartingHonor int
}

type session struct {
	mu      sync.Mutex
	game    *Game
	flushed int
	faulted error
	created time.Time
}

// Engine hosts concurrent games. Each game is single threaded: commands on
// one game are serialised by its session lock.
type Engine struct {
	logger   *zap.Logger
	journal  Journal
	recorder *ReplayRecorder
	opts     EngineOptions

	mu       sync.RWMutex
	sessions map[string]*session
	handler  NotificationHandler
}

// NewEngine creates an engine.
func NewEngine(opts EngineOptions) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		logger:   opts.Logger,
		journal:  opts.Journal,
		recorder: opts.Recorder,
		opts:     opts,
		sessions: make(map[string]*session),
	}
}

// SetNotificationHandler sets the handler for game notifications.
func (e *Engine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = handler
}

func (e *Engine) emit(n Notification) {
	e.mu.RLock()
	handler := e.handler
	e.mu.RUnlock()
	if handler != nil {
		handler(n)
	}
}

// SeatRequest describes one player of a new game.
type SeatRequest struct {
	ID   string
	Name string
}

// CreateGame starts hosting a new game. setup runs inside the game's lock
// before the pipeline is first drained.
func (e *Engine) CreateGame(ctx context.Context, id string, seats []SeatRequest, setup func(*Game) error) (*Game, error) {
	if len(seats) == 0 || len(seats) > 2 {
		return nil, fmt.Errorf("create game: need one or two players, got %d", len(seats))
	}
	e.mu.Lock()
	if e.opts.MaxGames > 0 && len(e.sessions) >= e.opts.MaxGames {
		e.mu.Unlock()
		return nil, ErrTooManyGames
	}
	if id != "" {
		if _, exists := e.sessions[id]; exists {
			e.mu.Unlock()
			return nil, fmt.Errorf("create game: game %s already exists", id)
		}
	}
	g := New(Options{
		ID:            id,
		Logger:        e.logger,
		StartingFate:  e.opts.StartingFate,
		StartingHonor: e.opts.StartingHonor,
	})
	s := &session{game: g, created: time.Now()}
	// Lookups block on the session lock until seating and setup are done.
	s.mu.Lock()
	e.sessions[g.ID] = s
	e.mu.Unlock()

	for _, seat := range seats {
		g.AddPlayer(seat.ID, seat.Name)
	}
	if e.recorder != nil {
		e.recorder.StartRecording(g.ID)
	}
	metrics.GameCreated()
	e.logger.Info("game created",
		zap.String("game_id", g.ID),
		zap.Int("players", len(seats)),
	)

	if setup == nil {
		s.mu.Unlock()
		return g, nil
	}
	err := e.runLocked(ctx, s, "setup", func(g *Game) error {
		if err := setup(g); err != nil {
			s.faulted = fmt.Errorf("setup failed: %w", err)
			return err
		}
		return nil
	})
	if err != nil {
		e.mu.Lock()
		delete(e.sessions, g.ID)
		e.mu.Unlock()
		metrics.GameEnded()
		if e.recorder != nil {
			e.recorder.ClearReplay(g.ID)
		}
		return nil, fmt.Errorf("create game %s: %w", g.ID, err)
	}
	return g, nil
}

func (e *Engine) session(gameID string) (*session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return s, nil
}

// Do runs fn against a game under its lock, then drains the pipeline,
// journals new records and notifies subscribers.
func (e *Engine) Do(ctx context.Context, gameID, command string, fn func(*Game) error) error {
	s, err := e.session(gameID)
	if err != nil {
		return err
	}
	return e.run(ctx, s, command, fn)
}

// Respond answers the active prompt of a game.
func (e *Engine) Respond(ctx context.Context, gameID string, in rules.Input) error {
	s, err := e.session(gameID)
	if err != nil {
		metrics.PromptResponse("game_not_found")
		return err
	}
	err = e.run(ctx, s, "respond", func(g *Game) error { return g.Respond(in) })
	switch {
	case err == nil:
		metrics.PromptResponse("accepted")
	case errors.Is(err, ErrNotPromptedPlayer):
		metrics.PromptResponse("not_prompted_player")
	case errors.Is(err, ErrNoActivePrompt):
		metrics.PromptResponse("no_active_prompt")
	case errors.Is(err, ErrPromptMismatch):
		metrics.PromptResponse("prompt_mismatch")
	default:
		metrics.PromptResponse("invalid")
	}
	return err
}

// run executes fn with panic recovery. A panic faults the game: every later
// command fails with the recorded error.
func (e *Engine) run(ctx context.Context, s *session, command string, fn func(*Game) error) error {
	start := time.Now()
	defer metrics.ObserveCommand(command, start)

	s.mu.Lock()
	return e.runLocked(ctx, s, command, fn)
}

// runLocked is run with s.mu already held. It releases the lock.
func (e *Engine) runLocked(ctx context.Context, s *session, command string, fn func(*Game) error) (err error) {
	if s.faulted != nil {
		s.mu.Unlock()
		return fmt.Errorf("game %s is faulted: %w", s.game.ID, s.faulted)
	}
	g := s.game
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.faulted = fmt.Errorf("panic in %s: %v", command, r)
				err = s.faulted
				metrics.GamePanicked()
				e.logger.Error("game faulted",
					zap.String("game_id", g.ID),
					zap.String("command", command),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
			}
		}()
		if g.finished && command != "view" {
			err = ErrGameFinished
			return
		}
		if err = fn(g); err != nil {
			return
		}
		g.Continue()
	}()
	records := g.journal[s.flushed:]
	s.flushed = len(g.journal)
	prompt, waiting := g.ActivePrompt()
	finished := g.finished
	s.mu.Unlock()

	if len(records) > 0 {
		e.persist(ctx, g.ID, records)
	}
	if err != nil {
		return err
	}

	n := Notification{Type: NotificationUpdate, GameID: g.ID, Timestamp: time.Now(), Records: records}
	if waiting {
		n.Type = NotificationPrompt
		n.Prompt = &prompt
	}
	if finished {
		n.Type = NotificationGameOver
	}
	e.emit(n)
	return nil
}

func (e *Engine) persist(ctx context.Context, gameID string, records []rules.Record) {
	for _, r := range records {
		metrics.EventRecorded(string(r.Name), r.Cancelled)
	}
	if e.recorder != nil {
		e.recorder.RecordEvents(gameID, records)
	}
	if e.journal == nil {
		return
	}
	if err := e.journal.Append(ctx, gameID, records); err != nil {
		metrics.JournalError()
		e.logger.Error("failed to journal events",
			zap.String("game_id", gameID),
			zap.Int("records", len(records)),
			zap.Error(err),
		)
	}
}

// View returns a player's view of a game.
func (e *Engine) View(gameID, playerID string) (GameView, error) {
	s, err := e.session(gameID)
	if err != nil {
		return GameView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.View(playerID), nil
}

// EndGame stops hosting a game and saves its replay.
func (e *Engine) EndGame(gameID string) error {
	e.mu.Lock()
	s, ok := e.sessions[gameID]
	if ok {
		delete(e.sessions, gameID)
	}
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	metrics.GameEnded()

	s.mu.Lock()
	winner := ""
	if s.game.winner != nil {
		winner = s.game.winner.Name
	}
	s.mu.Unlock()
	e.logger.Info("game ended",
		zap.String("game_id", gameID),
		zap.String("winner", winner),
		zap.Duration("duration", time.Since(s.created)),
	)
	if e.recorder != nil && e.recorder.IsRecording(gameID) {
		e.recorder.StopRecording(gameID)
		if err := e.recorder.SaveReplay(gameID); err != nil {
			return fmt.Errorf("end game %s: %w", gameID, err)
		}
	}
	return nil
}

// Games returns the IDs of hosted games.
func (e *Engine) Games() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.sessions))
	for id := range e.sessions {
		ids = append(ids, id)
	}
	return ids
}
