package detection

import (
	"log/slog"

	"github.com/ironsheep/map-shapes-mcp/internal/imaging"
)

// Direction names one of the four grid neighbours.
type Direction int

const (
	None Direction = iota
	Left
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "none"
}

func (d Direction) offset() (dx, dy int) {
	switch d {
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	}
	return 0, 0
}

func (d Direction) horizontal() bool { return d == Left || d == Right }

// adjacentPixel returns the neighbour of p one step along dir1 and, when
// dir2 is not None, one further step along dir2, which yields a diagonal.
//
// dir1 must not be None and dir2 must lie on the other axis. A query that
// breaks either rule is logged and answered with no neighbour. Positions
// outside the grid also yield no neighbour.
func adjacentPixel(log *slog.Logger, grid *imaging.PixelGrid, p imaging.Point2D, dir1, dir2 Direction) (imaging.Point2D, bool) {
	if dir1 == None || (dir2 != None && dir1.horizontal() == dir2.horizontal()) {
		log.Warn("invalid neighbour query",
			"x", p.X, "y", p.Y, "dir1", dir1.String(), "dir2", dir2.String())
		return imaging.Point2D{}, false
	}

	dx, dy := dir1.offset()
	dx2, dy2 := dir2.offset()
	x, y := int(p.X)+dx+dx2, int(p.Y)+dy+dy2
	if !grid.InBounds(x, y) {
		return imaging.Point2D{}, false
	}
	return imaging.Pt(x, y), true
}
