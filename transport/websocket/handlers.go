package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gridgame-backend/internal/apperror"
)

func (that *Server) handleConnect(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq ConnectPayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	player, err := that.manager.GetOrCreatePlayer(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return that.sendError(cl, msg.Action, "failed to create a new player")
	}

	that.register(cl, player.ID)

	geo := that.manager.Geometry()
	payloadResp := ResponsePayload{
		Player:   player,
		Geometry: &geo,
	}

	// a reconnecting player gets their running game back
	if player.GameID != "" {
		game, err := that.manager.GetOrCreateGame(ctx, player.ID)
		if err != nil {
			log.Error("failed to get game", "game_id", player.GameID, "error", err)
			return that.sendError(cl, msg.Action, "failed to get the game")
		}
		payloadResp.Game = game
	}

	if err = that.sendMessage(cl, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "player_id", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleNewGame")

	if cl.playerID == "" {
		return that.sendError(cl, msg.Action, "connect first")
	}

	game, err := that.manager.GetOrCreateGame(ctx, cl.playerID)
	if err != nil {
		log.Error("failed to create game", "error", err)
		return that.sendError(cl, msg.Action, "failed to create a game")
	}

	if err = that.sendMessage(cl, msg.Action, ResponsePayload{Game: game}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleJoinGame")

	if cl.playerID == "" {
		return that.sendError(cl, msg.Action, "connect first")
	}

	var payloadReq JoinGamePayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	game, err := that.manager.JoinGame(ctx, payloadReq.Game.ID, cl.playerID)
	if err != nil {
		log.Error("failed to join game", "game_id", payloadReq.Game.ID, "error", err)

		if errors.Is(err, apperror.ErrGameAlreadyFull) {
			return that.sendError(cl, msg.Action, "game already has two players")
		}

		return that.sendError(cl, msg.Action, "failed to join the game")
	}

	that.broadcastGame(msg.Action, game)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleGameTurn")

	if cl.playerID == "" {
		return that.sendError(cl, msg.Action, "connect first")
	}

	var payloadReq TurnPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	game, err := that.manager.MakeTurn(ctx, cl.playerID, payloadReq.Pointer)
	if err != nil {
		log.Info("turn rejected", "player_id", cl.playerID, "error", err)

		switch {
		case errors.Is(err, apperror.ErrNotYourTurn):
			return that.sendError(cl, msg.Action, "it's not your turn")
		case errors.Is(err, apperror.ErrCellUnavailable):
			return that.sendError(cl, msg.Action, "cell is not available")
		case errors.Is(err, apperror.ErrGameFinished):
			return that.sendError(cl, msg.Action, "game is already finished")
		case errors.Is(err, apperror.ErrGameIsNotStarted):
			return that.sendError(cl, msg.Action, "game is not started")
		default:
			return that.sendError(cl, msg.Action, "failed to make turn")
		}
	}

	that.broadcastGame(msg.Action, game)

	return nil
}

func (that *Server) handleGameRestart(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleGameRestart")

	if cl.playerID == "" {
		return that.sendError(cl, msg.Action, "connect first")
	}

	game, err := that.manager.Restart(ctx, cl.playerID)
	if err != nil {
		log.Error("failed to restart game", "player_id", cl.playerID, "error", err)
		return that.sendError(cl, msg.Action, "failed to restart the game")
	}

	that.broadcastGame(msg.Action, game)

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleGameLeave")

	if cl.playerID == "" {
		return that.sendError(cl, msg.Action, "connect first")
	}

	game, err := that.manager.LeaveGame(ctx, cl.playerID)
	if err != nil {
		log.Error("failed to leave game", "player_id", cl.playerID, "error", err)

		if errors.Is(err, apperror.ErrNoActiveGames) {
			return that.sendError(cl, msg.Action, "no active game")
		}

		return that.sendError(cl, msg.Action, "failed to leave the game")
	}

	that.broadcastGame(msg.Action, game)

	return nil
}
