package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/gridgame-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgame-backend/internal/config"
	"github.com/rocketscienceinc/gridgame-backend/internal/entity"
	"github.com/rocketscienceinc/gridgame-backend/internal/gridgame"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager is the authoritative owner of every session: each move and
// restart goes through it, is applied to the session entity, and the
// resulting state is persisted before anything is reported back.
type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo

	rules config.Game
	geo   gridgame.Geometry

	// seed source for per-board generators; rand.Rand is not goroutine-safe
	// and sessions are created and reset from concurrent connection loops,
	// so boards never share one generator.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewGameManager validates the board rules once, so that bad configuration
// fails at startup rather than on the first created game. rng may be nil for
// time-seeded randomness.
func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, rules config.Game, render config.Render, rng *rand.Rand) (*GameManager, error) {
	if _, err := entity.NewBoard(rules.Rows, rules.Cols, rules.WinLength, rules.Obstacles, rng); err != nil {
		return nil, fmt.Errorf("invalid game rules: %w", err)
	}

	return &GameManager{
		logger: logger,

		playerRepo: playerRepo,
		gameRepo:   gameRepo,

		rules: rules,
		geo: gridgame.Geometry{
			Rows:     rules.Rows,
			Cols:     rules.Cols,
			CellSize: render.CellSize,
			Margin:   render.Margin,
		},
		rng: rng,
	}, nil
}

// newBoardRand derives an independent generator for one board. With no
// injected seed source each board gets time-seeded randomness; tests inject
// a fixed source and the derived seeds stay deterministic.
func (that *GameManager) newBoardRand() *rand.Rand {
	if that.rng == nil {
		return nil
	}

	that.rngMu.Lock()
	seed := that.rng.Int63()
	that.rngMu.Unlock()

	return rand.New(rand.NewSource(seed)) //nolint:gosec // obstacle layouts, not security
}

// Geometry returns the pointer-mapping constants shared with clients.
func (that *GameManager) Geometry() gridgame.Geometry {
	return that.geo
}

// GetOrCreatePlayer resolves a returning player by ID or mints a new one.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	if playerID == "" {
		player := &entity.Player{ID: uuid.NewString()}
		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// GetOrCreateGame returns the player's current session or opens a fresh one
// with the player as X. A new session waits for a second player.
func (that *GameManager) GetOrCreateGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID != "" {
		game, err := that.gameRepo.GetByID(ctx, player.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed to get game by id: %w", err)
		}

		return game, nil
	}

	board, err := entity.NewBoard(that.rules.Rows, that.rules.Cols, that.rules.WinLength, that.rules.Obstacles, that.newBoardRand())
	if err != nil {
		return nil, fmt.Errorf("failed to build board: %w", err)
	}

	game := entity.NewGame(uuid.NewString(), board)

	player.GameID = game.ID
	player.Mark = entity.PlayerX
	game.Players = []*entity.Player{player}

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "game_id", game.ID, "player_id", player.ID)

	return game, nil
}

// JoinGame seats a second player as O and starts the session.
func (that *GameManager) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == game.ID {
		return game, nil
	}

	if len(game.Players) >= 2 {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameAlreadyFull, gameID)
	}

	player.GameID = game.ID
	player.Mark = entity.PlayerO
	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	game.Players = append(game.Players, player)
	game.Start()
	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	that.logger.Info("player joined", "game_id", game.ID, "player_id", player.ID)

	return game, nil
}

// MakeTurn resolves the pointer event to a cell through the shared geometry
// and applies the move for the submitting player's mark.
func (that *GameManager) MakeTurn(ctx context.Context, playerID string, ev gridgame.PointerEvent) (*entity.Game, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, err
	}

	source := gridgame.NewHumanPlayer(player.Mark)
	cell, ok := source.ProduceMove(ev, that.geo)
	if !ok {
		return game, fmt.Errorf("%w: pointer (%d, %d) outside the grid", apperror.ErrCellUnavailable, ev.X, ev.Y)
	}

	if err = game.MakeTurn(player.Mark, cell.Row, cell.Col); err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

// Restart resets a finished session: fresh obstacle layout, X to open. A
// restart against a running game is deliberately ignored so that one player
// cannot wipe an active board; the current state is returned unchanged.
func (that *GameManager) Restart(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if !game.Restart() {
		that.logger.Debug("restart ignored, game still in progress", "game_id", game.ID)
		return game, nil
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	that.logger.Info("game restarted", "game_id", game.ID)

	return game, nil
}

// LeaveGame tears a session down and unlinks its players.
func (that *GameManager) LeaveGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	game, err := that.gameRepo.GetByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	for _, member := range game.Players {
		member.GameID = ""
		member.Mark = ""
		if err = that.playerRepo.CreateOrUpdate(ctx, member); err != nil {
			return nil, fmt.Errorf("failed to unlink player: %w", err)
		}
	}

	if err = that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		return nil, fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "game_id", game.ID)

	return game, nil
}
