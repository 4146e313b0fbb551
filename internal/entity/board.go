package entity

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/rocketscienceinc/gridgame-backend/internal/apperror"
)

// CellKind tags the three states a board cell can be in.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellObstacle
	CellMark
)

// Cell is a tagged cell value; Mark is set only when Kind is CellMark.
type Cell struct {
	Kind CellKind `json:"kind"`
	Mark string   `json:"mark,omitempty"`
}

// Coord addresses a cell by row and column.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Board owns the grid and an open-coordinate index of cells still eligible
// for a mark. The grid and the index are mutated together, only through
// PlaceMark and Reset.
type Board struct {
	Rows          int      `json:"rows"`
	Cols          int      `json:"cols"`
	WinLength     int      `json:"win_length"`
	ObstacleCount int      `json:"obstacle_count"`
	Cells         [][]Cell `json:"cells"`

	open map[Coord]struct{}
	rng  *rand.Rand
}

// scan directions: vertical, horizontal, the two diagonals.
var runDirections = [4]Coord{
	{Row: 1, Col: 0},
	{Row: 0, Col: 1},
	{Row: 1, Col: 1},
	{Row: 1, Col: -1},
}

// NewBoard validates the rule parameters and builds a fresh grid with
// obstacleCount obstacles sampled uniformly over the cells.
//
// A winLength larger than max(rows, cols) is accepted; it simply makes
// winning impossible. rng may be nil, in which case a time-seeded source is
// used; tests inject a fixed seed for deterministic layouts.
func NewBoard(rows, cols, winLength, obstacleCount int, rng *rand.Rand) (*Board, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: %dx%d", apperror.ErrInvalidDimensions, rows, cols)
	}

	if winLength < 1 {
		return nil, fmt.Errorf("%w: %d", apperror.ErrInvalidWinLength, winLength)
	}

	if obstacleCount < 0 || obstacleCount >= rows*cols {
		return nil, fmt.Errorf("%w: %d obstacles on %d cells", apperror.ErrTooManyObstacles, obstacleCount, rows*cols)
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // game randomness, not security
	}

	board := &Board{
		Rows:          rows,
		Cols:          cols,
		WinLength:     winLength,
		ObstacleCount: obstacleCount,
		rng:           rng,
	}
	board.initialize()

	return board, nil
}

// Reset rebuilds the grid with a freshly sampled obstacle layout. No state
// survives a reset.
func (that *Board) Reset() {
	that.initialize()
}

func (that *Board) initialize() {
	that.Cells = make([][]Cell, that.Rows)
	for i := range that.Cells {
		that.Cells[i] = make([]Cell, that.Cols)
	}

	that.placeObstacles()
	that.rebuildOpenIndex()
}

// placeObstacles uses rejection sampling: draw a uniform cell, skip it if it
// is already taken, repeat until obstacleCount cells are filled.
func (that *Board) placeObstacles() {
	placed := 0
	for placed < that.ObstacleCount {
		i := that.random().Intn(that.Rows)
		j := that.random().Intn(that.Cols)

		if that.Cells[i][j].Kind != CellEmpty {
			continue
		}

		that.Cells[i][j] = Cell{Kind: CellObstacle}
		placed++
	}
}

func (that *Board) rebuildOpenIndex() {
	that.open = make(map[Coord]struct{}, that.Rows*that.Cols-that.ObstacleCount)
	for i := range that.Cells {
		for j := range that.Cells[i] {
			if that.Cells[i][j].Kind == CellEmpty {
				that.open[Coord{Row: i, Col: j}] = struct{}{}
			}
		}
	}
}

func (that *Board) random() *rand.Rand {
	if that.rng == nil {
		that.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // game randomness, not security
	}
	return that.rng
}

// InBounds reports whether (i, j) addresses a cell on the grid.
func (that *Board) InBounds(i, j int) bool {
	return i >= 0 && i < that.Rows && j >= 0 && j < that.Cols
}

// IsLegalMove reports whether (i, j) is in bounds and still open for a mark.
// Out-of-bounds coordinates return false, they never panic.
func (that *Board) IsLegalMove(i, j int) bool {
	if !that.InBounds(i, j) {
		return false
	}

	_, ok := that.open[Coord{Row: i, Col: j}]
	return ok
}

// PlaceMark puts mark at (i, j) if the cell is open and reports whether it
// did. A failed placement mutates nothing. This is the only mutator besides
// Reset.
func (that *Board) PlaceMark(i, j int, mark string) bool {
	if !that.IsLegalMove(i, j) {
		return false
	}

	that.Cells[i][j] = Cell{Kind: CellMark, Mark: mark}
	delete(that.open, Coord{Row: i, Col: j})

	return true
}

// IsFull reports whether no open cells remain.
func (that *Board) IsFull() bool {
	return len(that.open) == 0
}

// OpenCells returns the number of cells still eligible for a mark.
func (that *Board) OpenCells() int {
	return len(that.open)
}

// HasWinningRun reports whether mark has a run of at least WinLength
// consecutive cells in a row, column or diagonal. Obstacles and other marks
// terminate a run; runs do not combine across directions.
func (that *Board) HasWinningRun(mark string) bool {
	for i := range that.Cells {
		for j := range that.Cells[i] {
			if !that.isMark(i, j, mark) {
				continue
			}

			// a single placed mark is already a run of one
			if that.WinLength == 1 {
				return true
			}

			for _, dir := range runDirections {
				count := 1
				x, y := i+dir.Row, j+dir.Col
				for that.isMark(x, y, mark) {
					count++
					if count >= that.WinLength {
						return true
					}
					x += dir.Row
					y += dir.Col
				}
			}
		}
	}

	return false
}

func (that *Board) isMark(i, j int, mark string) bool {
	if !that.InBounds(i, j) {
		return false
	}

	cell := that.Cells[i][j]
	return cell.Kind == CellMark && cell.Mark == mark
}

// Snapshot returns a deep copy of the grid for rendering and transport.
func (that *Board) Snapshot() [][]Cell {
	cells := make([][]Cell, len(that.Cells))
	for i := range that.Cells {
		cells[i] = make([]Cell, len(that.Cells[i]))
		copy(cells[i], that.Cells[i])
	}

	return cells
}

// boardJSON avoids recursing into UnmarshalJSON.
type boardJSON Board

// UnmarshalJSON restores a board from its stored form and rebuilds the
// open-coordinate index, which is derived state and never serialized.
func (that *Board) UnmarshalJSON(data []byte) error {
	var raw boardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal board: %w", err)
	}

	*that = Board(raw)
	that.rebuildOpenIndex()

	return nil
}
