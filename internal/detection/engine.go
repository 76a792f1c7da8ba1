package detection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ironsheep/map-shapes-mcp/internal/imaging"
	"github.com/ironsheep/map-shapes-mcp/internal/logging"
	"github.com/ironsheep/map-shapes-mcp/internal/palette"
)

// ErrNoNonBorderPixel means a border pixel had no shape it could join. Since
// every earlier pixel already belongs to a shape when a border pixel is
// visited, this only happens when the whole image is border.
var ErrNoNonBorderPixel = errors.New("detection: no non-border pixel left to absorb border pixel")

// Stage is a step of a detection run. Runs move strictly forward through
// Scanning, Resolving and Merging to Done.
type Stage int

const (
	Scanning Stage = iota
	Resolving
	Merging
	Done
)

func (s Stage) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Resolving:
		return "resolving"
	case Merging:
		return "merging"
	case Done:
		return "done"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// DebugSink receives every pixel's display colour as soon as it is known.
// It is called synchronously from the detection loop.
type DebugSink interface {
	WritePixel(p imaging.Point2D, c imaging.Color)
}

// StageHook is called after each pass with the stage that just finished.
// A non-nil error aborts the run.
type StageHook func(stage Stage) error

// Stats counts what happened during a run.
type Stats struct {
	ProvisionalLabels int `json:"provisional_labels"`
	ColorMismatches   int `json:"color_mismatches"`
	BorderPixels      int `json:"border_pixels"`
	BorderAbsorbed    int `json:"border_absorbed"`
}

// Result is the outcome of a successful run.
type Result struct {
	Width  int
	Height int

	// Shapes in the order their root label was first met.
	Shapes []*Shape

	// Labels holds the final root label of every pixel, row-major.
	Labels []uint32

	Stats Stats

	// ProblemPixels has one entry for each time a pixel's colour differed
	// from its left or upper non-border neighbour.
	ProblemPixels []Pixel

	// shapeOf maps a root label to its shape index plus one.
	shapeOf []int
}

// ShapeAt returns the shape that owns (x, y) and its zero-based index.
func (r *Result) ShapeAt(x, y int) (*Shape, int, bool) {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return nil, 0, false
	}
	label := r.Labels[y*r.Width+x]
	if int(label) >= len(r.shapeOf) || r.shapeOf[label] == 0 {
		return nil, 0, false
	}
	i := r.shapeOf[label] - 1
	return r.Shapes[i], i, true
}

// PixelCount returns the total number of pixels across all shapes.
func (r *Result) PixelCount() int {
	n := 0
	for _, s := range r.Shapes {
		n += s.Len()
	}
	return n
}

// Option configures an Engine.
type Option func(*Engine)

// WithAllocator sets the colour allocator. The default is a fresh
// palette.Generator.
func WithAllocator(a palette.Allocator) Option {
	return func(e *Engine) { e.alloc = a }
}

// WithSink sets a sink that receives each pixel's display colour.
func WithSink(s DebugSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithStageHook sets a function called after each pass.
func WithStageHook(h StageHook) Option {
	return func(e *Engine) { e.hook = h }
}

// WithLogger overrides the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine runs three-pass connected-component labelling over a pixel grid.
//
// Pass 1 hands out provisional labels, looking only at the left and upper
// neighbours, so regions that touch only diagonally stay apart. Pass 2
// resolves every label to its root and builds one Shape per root. Pass 3
// hands each border pixel to a neighbouring shape.
//
// An Engine is not safe for concurrent use; run one detection at a time.
type Engine struct {
	alloc palette.Allocator
	sink  DebugSink
	hook  StageHook
	log   *slog.Logger
}

// NewEngine returns an engine configured by opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.alloc == nil {
		e.alloc = palette.NewGenerator()
	}
	if e.log == nil {
		e.log = logging.Logger()
	}
	return e
}

// FindShapes runs a detection with a new Engine.
func FindShapes(ctx context.Context, grid *imaging.PixelGrid, opts ...Option) (*Result, error) {
	return NewEngine(opts...).Run(ctx, grid)
}

// run is the state of one detection.
type run struct {
	*Engine

	grid   *imaging.PixelGrid
	width  int
	height int

	labels   []uint32
	resolver *LabelResolver
	next     uint32

	// provisional colours per label, kept only when someone is watching.
	provisional []imaging.Color

	shapes  []*Shape
	shapeOf []int
	border  []int

	stats    Stats
	problems []Pixel
}

// Run detects every shape in grid.
//
// The context is checked after each row. A cancelled run returns ctx.Err()
// and no result.
func (e *Engine) Run(ctx context.Context, grid *imaging.PixelGrid) (*Result, error) {
	r := &run{
		Engine:   e,
		grid:     grid,
		width:    grid.Width(),
		height:   grid.Height(),
		labels:   make([]uint32, grid.Len()),
		resolver: NewLabelResolver(64),
		next:     1,
	}

	passes := []struct {
		stage Stage
		fn    func(context.Context) error
	}{
		{Scanning, r.scan},
		{Resolving, r.resolve},
		{Merging, r.merge},
	}
	for _, p := range passes {
		e.log.Debug("detection pass starting", "stage", p.stage.String())
		if err := p.fn(ctx); err != nil {
			return nil, err
		}
		if e.hook != nil {
			if err := e.hook(p.stage); err != nil {
				return nil, fmt.Errorf("stage hook after %s: %w", p.stage, err)
			}
		}
	}
	e.log.Debug("detection finished", "stage", Done.String(), "shapes", len(r.shapes))

	return &Result{
		Width:         r.width,
		Height:        r.height,
		Shapes:        r.shapes,
		Labels:        r.labels,
		Stats:         r.stats,
		ProblemPixels: r.problems,
		shapeOf:       r.shapeOf,
	}, nil
}

func (r *run) watched() bool { return r.sink != nil || r.hook != nil }

func (r *run) emit(p imaging.Point2D, c imaging.Color) {
	if r.sink != nil {
		r.sink.WritePixel(p, c)
	}
}

// neighbourLabel returns the label of the neighbour in dir, or 0 when it is
// outside the grid, a border pixel, or a different colour.
func (r *run) neighbourLabel(p imaging.Point2D, c imaging.Color, dir Direction) uint32 {
	n, ok := adjacentPixel(r.log, r.grid, p, dir, None)
	if !ok {
		return 0
	}
	idx := r.grid.Index(int(n.X), int(n.Y))
	nc := r.grid.ColorAtIndex(idx)
	if nc.IsBorder() {
		return 0
	}
	if nc != c {
		r.stats.ColorMismatches++
		r.problems = append(r.problems, Pixel{Point: p, Color: c})
		r.log.Warn("multiple colors found in one shape",
			"x", p.X, "y", p.Y, "color", c.Hex(),
			"neighbour", dir.String(), "neighbour_color", nc.Hex())
		return 0
	}
	return r.labels[idx]
}

// scan is pass 1: provisional labelling.
func (r *run) scan(ctx context.Context) error {
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			idx := r.grid.Index(x, y)
			c := r.grid.ColorAtIndex(idx)
			p := imaging.Pt(x, y)

			if c.IsBorder() {
				r.labels[idx] = 0
				r.emit(p, c)
				continue
			}

			left := r.neighbourLabel(p, c, Left)
			up := r.neighbourLabel(p, c, Up)

			var label uint32
			switch {
			case left != 0 && up != 0:
				label = min(left, up)
				if left != up {
					r.resolver.Union(left, up)
				}
			case left != 0:
				label = left
			case up != 0:
				label = up
			default:
				label = r.next
				r.next++
				r.resolver.Add(label)
				if r.watched() {
					pc, err := r.alloc.Allocate(palette.Classify(c))
					if err != nil {
						return fmt.Errorf("allocating provisional color for label %d: %w", label, err)
					}
					r.provisional = append(r.provisional, pc)
				}
			}

			r.labels[idx] = label
			if r.watched() {
				r.emit(p, r.provisional[label-1])
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	r.stats.ProvisionalLabels = int(r.next - 1)
	return nil
}

// resolve is pass 2: root resolution and shape construction.
func (r *run) resolve(ctx context.Context) error {
	r.alloc.Reset()
	r.provisional = nil
	r.shapeOf = make([]int, r.next)

	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			idx := r.grid.Index(x, y)
			c := r.grid.ColorAtIndex(idx)
			if c.IsBorder() {
				r.border = append(r.border, idx)
				continue
			}

			root := r.resolver.Find(r.labels[idx])
			r.labels[idx] = root

			si := r.shapeOf[root]
			if si == 0 {
				cat := palette.Classify(c)
				uc, err := r.alloc.Allocate(cat)
				if err != nil {
					return fmt.Errorf("allocating color for shape %d: %w", len(r.shapes)+1, err)
				}
				r.shapes = append(r.shapes, &Shape{SourceColor: c, UniqueColor: uc, Category: cat})
				si = len(r.shapes)
				r.shapeOf[root] = si
			}

			s := r.shapes[si-1]
			p := imaging.Pt(x, y)
			s.add(Pixel{Point: p, Color: c})
			r.emit(p, s.UniqueColor)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	r.stats.BorderPixels = len(r.border)
	return nil
}

// merge is pass 3. Border pixels are visited in raster order; each joins
// the shape of its left neighbour if that is not border, else its upper
// neighbour if that is not border, else the next non-border pixel in
// raster order. A border pixel with none of those, such as a corner of a
// frame after the last shape pixel, joins the shape its left or upper
// neighbour was absorbed into earlier in this pass.
func (r *run) merge(ctx context.Context) error {
	cursor := 0
	row := -1
	for _, idx := range r.border {
		x, y := idx%r.width, idx/r.width
		if y != row {
			if row >= 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			row = y
		}
		p := imaging.Pt(x, y)

		donor := r.borderDonor(p, func(ni int) bool {
			return !r.grid.ColorAtIndex(ni).IsBorder()
		})

		if donor < 0 {
			if cursor <= idx {
				cursor = idx + 1
			}
			for cursor < len(r.labels) && r.grid.ColorAtIndex(cursor).IsBorder() {
				cursor++
			}
			if cursor < len(r.labels) {
				donor = cursor
			}
		}

		if donor < 0 {
			donor = r.borderDonor(p, func(ni int) bool { return r.labels[ni] != 0 })
		}
		if donor < 0 {
			r.log.Error("no non-border pixel found to absorb border pixel", "x", x, "y", y)
			return fmt.Errorf("%w at %s", ErrNoNonBorderPixel, p)
		}

		root := r.labels[donor]
		s := r.shapes[r.shapeOf[root]-1]
		r.labels[idx] = root
		s.add(Pixel{Point: p, Color: r.grid.ColorAtIndex(idx)})
		r.stats.BorderAbsorbed++
		r.emit(p, s.UniqueColor)
	}
	return ctx.Err()
}

// borderDonor returns the index of the left, else the upper, neighbour of p
// accepted by ok, or -1 when neither is.
func (r *run) borderDonor(p imaging.Point2D, ok func(idx int) bool) int {
	for _, dir := range []Direction{Left, Up} {
		n, in := adjacentPixel(r.log, r.grid, p, dir, None)
		if !in {
			continue
		}
		if ni := r.grid.Index(int(n.X), int(n.Y)); ok(ni) {
			return ni
		}
	}
	return -1
}
