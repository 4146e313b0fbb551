package apperror

import "errors"

// Configuration errors are fatal at construction time; the game never starts.
var (
	ErrInvalidDimensions = errors.New("board dimensions must be positive")
	ErrInvalidWinLength  = errors.New("win length must be at least 1")
	ErrTooManyObstacles  = errors.New("obstacle count must be less than the cell count")
)

// Session errors are surfaced by the networked layer for protocol misuse.
// Inside the core controller an illegal move is a no-op, never an error.
var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellUnavailable  = errors.New("cell is not open for a mark")
	ErrNoActiveGames    = errors.New("no active games")
	ErrGameAlreadyFull  = errors.New("game already has two players")
)
