package entity

import (
	"encoding/json"
	"math/rand"
	"sync"
	"testing"

	"github.com/rocketscienceinc/gridgame-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(1)) //nolint:gosec // deterministic test layouts
}

func countKind(board *Board, kind CellKind) int {
	count := 0
	for i := range board.Cells {
		for j := range board.Cells[i] {
			if board.Cells[i][j].Kind == kind {
				count++
			}
		}
	}
	return count
}

func TestNewBoard_Validation(t *testing.T) {
	t.Run("Rejects non-positive dimensions", func(t *testing.T) {
		// Given: a zero rows parameter
		// When: building the board
		_, err := NewBoard(0, 5, 4, 0, testRand())

		// Then: construction fails with a dimension error
		assert.ErrorIs(t, err, apperror.ErrInvalidDimensions)

		_, err = NewBoard(5, -1, 4, 0, testRand())
		assert.ErrorIs(t, err, apperror.ErrInvalidDimensions)
	})

	t.Run("Rejects win length below 1", func(t *testing.T) {
		_, err := NewBoard(5, 5, 0, 0, testRand())

		assert.ErrorIs(t, err, apperror.ErrInvalidWinLength)
	})

	t.Run("Rejects obstacle count outside the grid", func(t *testing.T) {
		_, err := NewBoard(3, 3, 3, 9, testRand())
		assert.ErrorIs(t, err, apperror.ErrTooManyObstacles)

		_, err = NewBoard(3, 3, 3, -1, testRand())
		assert.ErrorIs(t, err, apperror.ErrTooManyObstacles)
	})

	t.Run("Accepts a win length longer than both dimensions", func(t *testing.T) {
		// Given: winLength 9 on a 3x3 board, which makes winning impossible
		board, err := NewBoard(3, 3, 9, 0, testRand())

		// Then: construction succeeds; the rule is accepted as configured
		require.NoError(t, err)
		assert.Equal(t, 9, board.WinLength)
	})
}

func TestNewBoard_ObstaclePlacement(t *testing.T) {
	t.Run("Places exactly the configured number of obstacles", func(t *testing.T) {
		// Given: a 5x5 board with 5 obstacles
		board, err := NewBoard(5, 5, 4, 5, testRand())
		require.NoError(t, err)

		// Then: exactly 5 obstacle cells, the rest empty, open set matches
		assert.Equal(t, 5, countKind(board, CellObstacle))
		assert.Equal(t, 20, countKind(board, CellEmpty))
		assert.Equal(t, 20, board.OpenCells())
	})

	t.Run("Obstacle cells are never legal moves", func(t *testing.T) {
		board, err := NewBoard(4, 4, 3, 6, testRand())
		require.NoError(t, err)

		for i := range board.Cells {
			for j := range board.Cells[i] {
				if board.Cells[i][j].Kind == CellObstacle {
					assert.False(t, board.IsLegalMove(i, j))
				}
			}
		}
	})
}

func TestBoard_IsLegalMove(t *testing.T) {
	board, err := NewBoard(3, 3, 3, 0, testRand())
	require.NoError(t, err)

	t.Run("Open cell is legal", func(t *testing.T) {
		assert.True(t, board.IsLegalMove(1, 1))
	})

	t.Run("Out of bounds is false, not a panic", func(t *testing.T) {
		assert.False(t, board.IsLegalMove(-1, 0))
		assert.False(t, board.IsLegalMove(0, -1))
		assert.False(t, board.IsLegalMove(3, 0))
		assert.False(t, board.IsLegalMove(0, 3))
	})

	t.Run("Marked cell is no longer legal", func(t *testing.T) {
		require.True(t, board.PlaceMark(1, 1, PlayerX))

		assert.False(t, board.IsLegalMove(1, 1))
	})
}

func TestBoard_PlaceMark(t *testing.T) {
	t.Run("Succeeds exactly once per cell", func(t *testing.T) {
		// Given: an obstacle-free board
		board, err := NewBoard(3, 3, 3, 0, testRand())
		require.NoError(t, err)

		// When: placing twice on the same cell
		first := board.PlaceMark(0, 0, PlayerX)
		second := board.PlaceMark(0, 0, PlayerO)

		// Then: only the first placement lands and the cell keeps its mark
		assert.True(t, first)
		assert.False(t, second)
		assert.Equal(t, Cell{Kind: CellMark, Mark: PlayerX}, board.Cells[0][0])
	})

	t.Run("Failed placement mutates nothing", func(t *testing.T) {
		board, err := NewBoard(3, 3, 3, 0, testRand())
		require.NoError(t, err)
		require.True(t, board.PlaceMark(0, 0, PlayerX))

		before := board.Snapshot()
		openBefore := board.OpenCells()

		// When: attempting an occupied cell and an out-of-bounds cell
		assert.False(t, board.PlaceMark(0, 0, PlayerO))
		assert.False(t, board.PlaceMark(5, 5, PlayerO))

		// Then: grid and open set are untouched
		assert.Equal(t, before, board.Snapshot())
		assert.Equal(t, openBefore, board.OpenCells())
	})

	t.Run("Each mark shrinks the open set by one", func(t *testing.T) {
		board, err := NewBoard(3, 3, 3, 2, testRand())
		require.NoError(t, err)
		openBefore := board.OpenCells()

		placed := false
		for i := 0; i < 3 && !placed; i++ {
			for j := 0; j < 3 && !placed; j++ {
				placed = board.PlaceMark(i, j, PlayerX)
			}
		}

		require.True(t, placed)
		assert.Equal(t, openBefore-1, board.OpenCells())
	})
}

func TestBoard_IsFull(t *testing.T) {
	// Given: a tiny board with one obstacle
	board, err := NewBoard(1, 3, 3, 1, testRand())
	require.NoError(t, err)
	require.False(t, board.IsFull())

	// When: marking every open cell
	mark := PlayerX
	for j := 0; j < 3; j++ {
		if board.PlaceMark(0, j, mark) {
			mark = ToggleMark(mark)
		}
	}

	// Then: the board reports full
	assert.True(t, board.IsFull())
	assert.Equal(t, 0, board.OpenCells())
}

func TestBoard_HasWinningRun(t *testing.T) {
	newEmpty := func(t *testing.T, rows, cols, winLength int) *Board {
		t.Helper()
		board, err := NewBoard(rows, cols, winLength, 0, testRand())
		require.NoError(t, err)
		return board
	}

	t.Run("Horizontal run of win length wins", func(t *testing.T) {
		// Given: X on (0,0)..(0,3) of a 5x5 board with winLength 4
		board := newEmpty(t, 5, 5, 4)
		for j := 0; j < 4; j++ {
			require.True(t, board.PlaceMark(0, j, PlayerX))
		}

		assert.True(t, board.HasWinningRun(PlayerX))
		assert.False(t, board.HasWinningRun(PlayerO))
	})

	t.Run("Vertical and diagonal runs win", func(t *testing.T) {
		board := newEmpty(t, 5, 5, 4)
		for i := 1; i < 5; i++ {
			require.True(t, board.PlaceMark(i, 2, PlayerO))
		}
		assert.True(t, board.HasWinningRun(PlayerO))

		board = newEmpty(t, 5, 5, 4)
		for i := 0; i < 4; i++ {
			require.True(t, board.PlaceMark(i, i, PlayerX))
		}
		assert.True(t, board.HasWinningRun(PlayerX))

		board = newEmpty(t, 5, 5, 4)
		for i := 0; i < 4; i++ {
			require.True(t, board.PlaceMark(i, 4-i, PlayerX))
		}
		assert.True(t, board.HasWinningRun(PlayerX))
	})

	t.Run("Opposing mark breaks a run", func(t *testing.T) {
		board := newEmpty(t, 5, 5, 4)
		require.True(t, board.PlaceMark(0, 0, PlayerX))
		require.True(t, board.PlaceMark(0, 1, PlayerX))
		require.True(t, board.PlaceMark(0, 2, PlayerO))
		require.True(t, board.PlaceMark(0, 3, PlayerX))
		require.True(t, board.PlaceMark(0, 4, PlayerX))

		assert.False(t, board.HasWinningRun(PlayerX))
	})

	t.Run("Obstacle breaks a run", func(t *testing.T) {
		// Given: a hand-built row with an obstacle in the middle
		board := newEmpty(t, 1, 5, 3)
		board.Cells[0][2] = Cell{Kind: CellObstacle}
		board.rebuildOpenIndex()

		require.True(t, board.PlaceMark(0, 0, PlayerX))
		require.True(t, board.PlaceMark(0, 1, PlayerX))
		require.True(t, board.PlaceMark(0, 3, PlayerX))
		require.True(t, board.PlaceMark(0, 4, PlayerX))

		// Then: two runs of two, no run of three
		assert.False(t, board.HasWinningRun(PlayerX))
	})

	t.Run("A run of obstacles is not a win for anyone", func(t *testing.T) {
		board, err := NewBoard(1, 4, 3, 3, testRand())
		require.NoError(t, err)

		assert.False(t, board.HasWinningRun(PlayerX))
		assert.False(t, board.HasWinningRun(PlayerO))
	})

	t.Run("Runs shorter than win length do not win", func(t *testing.T) {
		board := newEmpty(t, 5, 5, 4)
		for j := 0; j < 3; j++ {
			require.True(t, board.PlaceMark(0, j, PlayerX))
		}

		assert.False(t, board.HasWinningRun(PlayerX))
	})

	t.Run("Win length of one wins on any placed mark", func(t *testing.T) {
		board := newEmpty(t, 3, 3, 1)
		require.False(t, board.HasWinningRun(PlayerX))
		require.True(t, board.PlaceMark(2, 2, PlayerX))

		assert.True(t, board.HasWinningRun(PlayerX))
	})
}

func TestBoard_Reset(t *testing.T) {
	// Given: a played-out board
	board, err := NewBoard(5, 5, 4, 5, testRand())
	require.NoError(t, err)

	placed := 0
	for i := 0; i < 5 && placed < 3; i++ {
		for j := 0; j < 5 && placed < 3; j++ {
			if board.PlaceMark(i, j, PlayerX) {
				placed++
			}
		}
	}
	require.Equal(t, 3, placed)
	require.Equal(t, 17, board.OpenCells())

	// When: resetting
	board.Reset()

	// Then: marks are gone, obstacles resampled to the configured count, open
	// set rebuilt to rows*cols minus obstacles
	assert.Equal(t, 0, countKind(board, CellMark))
	assert.Equal(t, 5, countKind(board, CellObstacle))
	assert.Equal(t, 20, board.OpenCells())
}

func TestBoard_ConcurrentResets(t *testing.T) {
	// Given: boards with their own generators, as the session layer hands
	// them out; resets on different boards run on different goroutines
	const boards = 4

	var wg sync.WaitGroup
	for seed := int64(0); seed < boards; seed++ {
		board, err := NewBoard(5, 5, 4, 5, rand.New(rand.NewSource(seed))) //nolint:gosec // deterministic test layouts
		require.NoError(t, err)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				board.Reset()
			}
		}()
	}

	wg.Wait()
}

func TestBoard_Snapshot(t *testing.T) {
	board, err := NewBoard(3, 3, 3, 0, testRand())
	require.NoError(t, err)
	require.True(t, board.PlaceMark(0, 0, PlayerX))

	// Given: a snapshot of the grid
	snapshot := board.Snapshot()

	// When: mutating the snapshot
	snapshot[1][1] = Cell{Kind: CellMark, Mark: PlayerO}

	// Then: the board is unaffected
	assert.Equal(t, CellEmpty, board.Cells[1][1].Kind)
	assert.Equal(t, Cell{Kind: CellMark, Mark: PlayerX}, snapshot[0][0])
}

func TestBoard_JSONRoundTrip(t *testing.T) {
	// Given: a board with obstacles and a mark
	board, err := NewBoard(4, 4, 3, 4, testRand())
	require.NoError(t, err)

	placed := false
	for i := 0; i < 4 && !placed; i++ {
		for j := 0; j < 4 && !placed; j++ {
			placed = board.PlaceMark(i, j, PlayerX)
		}
	}
	require.True(t, placed)

	data, err := json.Marshal(board)
	require.NoError(t, err)

	// When: restoring from JSON
	var restored Board
	require.NoError(t, json.Unmarshal(data, &restored))

	// Then: grid matches and the open index is rebuilt from the cells
	assert.Equal(t, board.Cells, restored.Cells)
	assert.Equal(t, board.OpenCells(), restored.OpenCells())
	assert.Equal(t, 1, countKind(&restored, CellMark))
}
