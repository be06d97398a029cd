// Package gateway exposes hosted games to players over websockets.
package gateway

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/jigoku/jigoku-server-go/internal/cards"
	"github.com/jigoku/jigoku-server-go/internal/game"
)

// Hub tracks connected clients and fans engine notifications out to the
// clients seated at the notified game.
type Hub struct {
	engine  *game.Engine
	catalog *cards.Catalog
	logger  *zap.Logger
	opts    Options

	clients    map[*Client]bool
	outbox     chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

}

// delivery is either a notification for every client at a game or a payload
// for a single client. Both share one channel so that a client sees replies
// and broadcasts in the order they were produced.
type delivery struct {
	note    *game.Notification
	client  *Client
	payload []byte
}

// NewHub creates a hub over engine and subscribes it to the engine's
// notifications. A nil catalog disallows decks in create_game.
func NewHub(engine *game.Engine, catalog *cards.Catalog, logger *zap.Logger, opts Options) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		engine:     engine,
		catalog:    catalog,
		logger:     logger,
		opts:       opts.withDefaults(),
		clients:    make(map[*Client]bool),
		outbox:     make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	engine.SetNotificationHandler(h.Notify)
	return h
}

// Run serves registrations and broadcasts until ctx is cancelled. Every
// connected client is closed on return.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return nil

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("client registered", zap.String("remote", client.remote))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				gameID, playerID := client.seat()
				h.logger.Debug("client unregistered",
					zap.String("remote", client.remote),
					zap.String("game_id", gameID),
					zap.String("player_id", playerID),
				)
			}

		case d := <-h.outbox:
			if d.note != nil {
				h.fanOut(*d.note)
				continue
			}
			if h.clients[d.client] {
				h.deliver(d.client, d.payload)
			}
		}
	}
}

// Notify queues an engine notification for delivery.
func (h *Hub) Notify(n game.Notification) {
	h.enqueue(delivery{note: &n})
}

func (h *Hub) enqueue(d delivery) {
	select {
	case h.outbox <- d:
	case <-h.done:
	}
}

// deliver hands payload to client, dropping the client when its buffer is
// full.
func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		gameID, playerID := client.seat()
		h.logger.Warn("dropping slow client",
			zap.String("game_id", gameID),
			zap.String("player_id", playerID),
		)
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) fanOut(n game.Notification) {
	msgType := TypeGameState
	if n.Type == game.NotificationGameOver {
		msgType = TypeGameOver
	}
	for client := range h.clients {
		gameID, playerID := client.seat()
		if gameID != n.GameID {
			continue
		}
		view, err := h.engine.View(gameID, playerID)
		if err != nil {
			continue
		}
		payload, err := encode(msgType, gameID, playerID, view)
		if err != nil {
			h.logger.Error("failed to encode game state", zap.String("game_id", gameID), zap.Error(err))
			continue
		}
		h.deliver(client, payload)
	}
}

func encode(msgType, gameID, playerID string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: msgType, GameID: gameID, PlayerID: playerID, Data: raw})
}
