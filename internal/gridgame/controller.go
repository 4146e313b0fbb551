package gridgame

import "github.com/rocketscienceinc/gridgame-backend/internal/entity"

// State is the controller's phase: a game is either in progress or over.
type State uint8

const (
	InProgress State = iota
	Over
)

// Controller sequences one game between two move sources. It resolves the
// active player for each input event, lets the board validate the candidate
// cell, and drives the session entity through its transitions. Illegal input
// is absorbed silently; the controller never fails on user input.
type Controller struct {
	game    *entity.Game
	players [2]Player
	geo     Geometry
}

// NewController wires a session to its two move sources. The first player
// opens. A waiting game is started immediately; the controller exists to
// play, not to lobby.
func NewController(game *entity.Game, first, second Player, geo Geometry) *Controller {
	if game.IsWaiting() {
		game.Start()
	}

	return &Controller{
		game:    game,
		players: [2]Player{first, second},
		geo:     geo,
	}
}

// SubmitMoveInput feeds a pointer event to the active player and applies the
// resulting move. It reports whether the game state changed; events that
// resolve to no cell or to an unavailable cell change nothing.
func (that *Controller) SubmitMoveInput(ev PointerEvent) bool {
	if that.game.IsFinished() {
		return false
	}

	player := that.activePlayer()

	cell, ok := player.ProduceMove(ev, that.geo)
	if !ok {
		return false
	}

	return that.game.MakeTurn(player.Mark(), cell.Row, cell.Col) == nil
}

// SubmitRestart resets the board with a fresh obstacle layout and gives the
// opening turn to the first player. Restarts are ignored while a game is in
// progress; only a terminal state accepts one.
func (that *Controller) SubmitRestart() bool {
	return that.game.Restart()
}

// State reports whether the game is still accepting moves.
func (that *Controller) State() State {
	if that.game.IsFinished() {
		return Over
	}
	return InProgress
}

// Winner returns the winning mark. The second return is false while the game
// is in progress or when it ended in a draw.
func (that *Controller) Winner() (string, bool) {
	if !that.game.IsFinished() || that.game.Winner == entity.PlayerTie {
		return "", false
	}
	return that.game.Winner, true
}

// ActiveMark returns the mark whose turn it is; empty once the game is over.
func (that *Controller) ActiveMark() string {
	return that.game.Turn
}

// Snapshot returns a read-only copy of the grid for rendering.
func (that *Controller) Snapshot() [][]entity.Cell {
	return that.game.Board.Snapshot()
}

func (that *Controller) activePlayer() Player {
	if that.game.Turn == that.players[1].Mark() {
		return that.players[1]
	}
	return that.players[0]
}
