package gridgame

import "github.com/rocketscienceinc/gridgame-backend/internal/entity"

// PointerEvent carries raw pointer coordinates in pixels, as delivered by a
// presentation client.
type PointerEvent struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Geometry describes how the grid is laid out on screen: a margin-wide gap
// frames the board and separates the cells. Presentation clients draw with
// the same constants, so pointer coordinates round-trip onto cells.
type Geometry struct {
	Rows     int `json:"rows"`
	Cols     int `json:"cols"`
	CellSize int `json:"cell_size"`
	Margin   int `json:"margin"`
}

// CellAt maps pointer coordinates onto a grid cell. The second return is
// false when the pointer falls outside the grid. Occupancy is not its
// concern; callers still validate the cell against the board.
func (that Geometry) CellAt(ev PointerEvent) (entity.Coord, bool) {
	if ev.X < that.Margin || ev.Y < that.Margin {
		return entity.Coord{}, false
	}

	col := (ev.X - that.Margin) / (that.CellSize + that.Margin)
	row := (ev.Y - that.Margin) / (that.CellSize + that.Margin)

	if row >= that.Rows || col >= that.Cols {
		return entity.Coord{}, false
	}

	return entity.Coord{Row: row, Col: col}, true
}

// Player turns a raw input event into a candidate cell. Only a human variant
// exists today; a computer variant would implement the same interface and
// the controller would not change.
type Player interface {
	Mark() string
	ProduceMove(ev PointerEvent, geo Geometry) (entity.Coord, bool)
}

// HumanPlayer resolves moves from pointer coordinates.
type HumanPlayer struct {
	mark string
}

func NewHumanPlayer(mark string) *HumanPlayer {
	return &HumanPlayer{mark: mark}
}

func (that *HumanPlayer) Mark() string {
	return that.mark
}

func (that *HumanPlayer) ProduceMove(ev PointerEvent, geo Geometry) (entity.Coord, bool) {
	return geo.CellAt(ev)
}
