package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gridgame-backend/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Game is the session envelope around a Board: whose turn it is, whether the
// session is over and who won. Winner is PlayerTie for a draw and empty while
// the game is running.
type Game struct {
	ID      string    `json:"id"`
	Board   *Board    `json:"board"`
	Winner  string    `json:"winner,omitempty"`
	Status  string    `json:"status"`
	Turn    string    `json:"player_turn,omitempty"`
	Players []*Player `json:"players,omitempty"`
}

func NewGame(id string, board *Board) *Game {
	return &Game{
		ID:     id,
		Board:  board,
		Turn:   PlayerX,
		Status: StatusWaiting,
	}
}

// Start moves a waiting game into play. X always opens.
func (that *Game) Start() {
	that.Status = StatusOngoing
	that.Turn = PlayerX
}

// MakeTurn places mark at (row, col) and advances the session state: finish
// with a winner when the placement completes a run, finish with a tie when
// the board fills up, otherwise hand the turn to the other mark.
func (that *Game) MakeTurn(mark string, row, col int) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if !that.Board.PlaceMark(row, col, mark) {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrCellUnavailable, row, col)
	}

	switch {
	case that.Board.HasWinningRun(mark):
		that.Winner = mark
		that.Status = StatusFinished
		that.Turn = ""
	case that.Board.IsFull():
		that.Winner = PlayerTie
		that.Status = StatusFinished
		that.Turn = ""
	default:
		that.Turn = ToggleMark(mark)
	}

	return nil
}

// Restart wipes the board, resamples obstacles and gives the opening turn
// back to X. Only finished games restart; a running game is left untouched
// so that a stray restart cannot interrupt play.
func (that *Game) Restart() bool {
	if !that.IsFinished() {
		return false
	}

	that.Board.Reset()
	that.Winner = ""
	that.Start()

	return true
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// ToggleMark returns the opposing mark.
func ToggleMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
