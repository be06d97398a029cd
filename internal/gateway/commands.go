package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/actions"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

var (
	errNotSeated     = errors.New("not seated at a game")
	errUnknownPlayer = errors.New("player is not seated at this game")
)

func (h *Hub) handleMessage(c *Client, msg Message) {
	h.logger.Debug("message received",
		zap.String("type", msg.Type),
		zap.String("remote", c.remote),
	)

	ctx := context.Background()
	var err error
	switch msg.Type {
	case TypeCreateGame:
		err = h.createGame(ctx, c, msg)
	case TypeJoinGame:
		err = h.joinGame(c, msg)
	case TypeView:
		err = h.sendView(c)
	case TypeRespond:
		err = h.respond(ctx, c, msg)
	case TypeDeclareConflict:
		err = h.declareConflict(ctx, c, msg)
	case TypePassConflict:
		err = h.passConflict(ctx, c)
	case TypeEndGame:
		err = h.endGame(c)
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}
	if err != nil {
		gameID, _ := c.seat()
		c.reply(TypeError, gameID, ErrorData{Request: msg.Type, Error: err.Error()})
	}
}

func (h *Hub) createGame(ctx context.Context, c *Client, msg Message) error {
	var data CreateGameData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fmt.Errorf("invalid create_game payload: %w", err)
	}
	seats := make([]game.SeatRequest, 0, len(data.Players))
	for _, p := range data.Players {
		if p.ID == "" {
			return errors.New("every player needs an id")
		}
		seats = append(seats, game.SeatRequest{ID: p.ID, Name: p.Name})
	}
	gameID := msg.GameID
	if gameID == "" {
		gameID = uuid.NewString()
	}

	// Seat the creator first so the setup notification reaches them.
	c.sit(gameID, msg.PlayerID)
	_, err := h.engine.CreateGame(ctx, gameID, seats, func(g *game.Game) error {
		for _, seat := range data.Players {
			if seat.Deck.Stronghold == "" && len(seat.Deck.Provinces) == 0 &&
				len(seat.Deck.Dynasty) == 0 && len(seat.Deck.Conflict) == 0 {
				continue
			}
			if h.catalog == nil {
				return errors.New("no card catalog loaded")
			}
			if err := h.catalog.Deal(g, g.Player(seat.ID), seat.Deck); err != nil {
				return fmt.Errorf("deck of %s: %w", seat.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		c.sit("", "")
		return err
	}
	return h.sendView(c)
}

func (h *Hub) joinGame(c *Client, msg Message) error {
	view, err := h.engine.View(msg.GameID, msg.PlayerID)
	if err != nil {
		return err
	}
	if msg.PlayerID != "" && !seatedIn(view, msg.PlayerID) {
		return errUnknownPlayer
	}
	c.sit(msg.GameID, msg.PlayerID)
	c.reply(TypeGameState, msg.GameID, view)
	return nil
}

func seatedIn(view game.GameView, playerID string) bool {
	for _, p := range view.Players {
		if p.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (h *Hub) sendView(c *Client) error {
	gameID, playerID := c.seat()
	if gameID == "" {
		return errNotSeated
	}
	view, err := h.engine.View(gameID, playerID)
	if err != nil {
		return err
	}
	c.reply(TypeGameState, gameID, view)
	return nil
}

func (h *Hub) respond(ctx context.Context, c *Client, msg Message) error {
	gameID, playerID := c.seat()
	if gameID == "" {
		return errNotSeated
	}
	var data RespondData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fmt.Errorf("invalid respond payload: %w", err)
	}
	return h.engine.Respond(ctx, gameID, rules.Input{
		PromptID: data.PromptID,
		PlayerID: playerID,
		Choice:   data.Choice,
		CardIDs:  data.CardIDs,
		Ring:     data.Ring,
		Button:   data.Button,
	})
}

func (h *Hub) declareConflict(ctx context.Context, c *Client, msg Message) error {
	gameID, playerID := c.seat()
	if gameID == "" {
		return errNotSeated
	}
	var data DeclareConflictData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return fmt.Errorf("invalid declare_conflict payload: %w", err)
	}
	return h.engine.Do(ctx, gameID, TypeDeclareConflict, func(g *game.Game) error {
		attacker := g.Player(playerID)
		if attacker == nil {
			return errUnknownPlayer
		}
		if g.CurrentConflict() != nil {
			return errors.New("a conflict is already in progress")
		}
		ring := g.Ring(game.Element(data.Ring))
		if ring == nil {
			return fmt.Errorf("unknown ring %q", data.Ring)
		}
		if !ring.IsUnclaimed() || ring.Contested {
			return fmt.Errorf("the %s ring cannot be contested", data.Ring)
		}
		conflictType := game.ConflictType(data.Type)
		if conflictType != "" && conflictType != game.ConflictMilitary && conflictType != game.ConflictPolitical {
			return fmt.Errorf("unknown conflict type %q", data.Type)
		}
		province := g.Card(data.ProvinceID)
		if province == nil || !province.Location.IsProvince() || province.Controller() == attacker {
			return fmt.Errorf("card %q is not an opposing province", data.ProvinceID)
		}
		attackers := make([]*game.Card, 0, len(data.AttackerIDs))
		for _, id := range data.AttackerIDs {
			card := g.Card(id)
			if card == nil || card.Location != game.LocationPlayArea || card.Controller() != attacker || card.Bowed {
				return fmt.Errorf("card %q cannot attack", id)
			}
			attackers = append(attackers, card)
		}

		conflict := actions.DeclareConflict(g, attacker, ring, province, conflictType, attackers)
		g.QueueStep(actions.NewConflictResolution(g, conflict))
		return nil
	})
}

func (h *Hub) passConflict(ctx context.Context, c *Client) error {
	gameID, playerID := c.seat()
	if gameID == "" {
		return errNotSeated
	}
	return h.engine.Do(ctx, gameID, TypePassConflict, func(g *game.Game) error {
		attacker := g.Player(playerID)
		if attacker == nil {
			return errUnknownPlayer
		}
		if g.CurrentConflict() != nil {
			return errors.New("a conflict is already in progress")
		}
		game.NewConflict(g, attacker, attacker.Opponent(), nil, nil, "").PassConflict("")
		return nil
	})
}

func (h *Hub) endGame(c *Client) error {
	gameID, _ := c.seat()
	if gameID == "" {
		return errNotSeated
	}
	if err := h.engine.EndGame(gameID); err != nil {
		return err
	}
	c.sit("", "")
	return nil
}
