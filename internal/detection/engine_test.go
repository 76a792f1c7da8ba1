package detection

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/map-shapes-mcp/internal/imaging"
	"github.com/ironsheep/map-shapes-mcp/internal/palette"
)

func TestFindShapes_FrameAroundSinglePixel(t *testing.T) {
	grid := createMap(t,
		"###",
		"#W#",
		"###",
	)

	result, err := FindShapes(context.Background(), grid)
	require.NoError(t, err)
	require.Len(t, result.Shapes, 1)

	s := result.Shapes[0]
	require.Equal(t, 9, s.Len())
	require.Equal(t, testColors['W'], s.SourceColor)
	require.Equal(t, imaging.Pt(0, 0), s.Box.BottomLeft)
	require.Equal(t, imaging.Pt(2, 2), s.Box.TopRight)

	require.Equal(t, 8, result.Stats.BorderPixels)
	require.Equal(t, 8, result.Stats.BorderAbsorbed)
	require.Equal(t, 1, result.Stats.ProvisionalLabels)
	for _, l := range result.Labels {
		require.Equal(t, uint32(1), l)
	}
}

func TestFindShapes_BlocksSeparatedByBorderColumn(t *testing.T) {
	grid := createMap(t,
		"RR#RR",
		"RR#RR",
	)

	result, err := FindShapes(context.Background(), grid)
	require.NoError(t, err)
	require.Len(t, result.Shapes, 2)

	// The border column sits right of the first block, so it joins it.
	require.Equal(t, 6, result.Shapes[0].Len())
	require.Equal(t, 4, result.Shapes[1].Len())
	require.Equal(t, result.Shapes[0].SourceColor, result.Shapes[1].SourceColor)
	require.NotEqual(t, result.Shapes[0].UniqueColor, result.Shapes[1].UniqueColor)

	s, idx, ok := result.ShapeAt(2, 1)
	require.True(t, ok)
	require.Equal(t, 0, idx)
	require.Same(t, result.Shapes[0], s)
}

func TestFindShapes_BlocksSeparatedByBorderRow(t *testing.T) {
	grid := createMap(t,
		"RR",
		"RR",
		"##",
		"RR",
		"RR",
	)

	result, err := FindShapes(context.Background(), grid)
	require.NoError(t, err)
	require.Len(t, result.Shapes, 2)
	require.Equal(t, 6, result.Shapes[0].Len())
	require.Equal(t, 4, result.Shapes[1].Len())
	require.Equal(t, imaging.Pt(1, 2), result.Shapes[0].Box.TopRight)
	require.Equal(t, imaging.Pt(0, 3), result.Shapes[1].Box.BottomLeft)
}

func TestFindShapes_BorderRowFollowsUpperShape(t *testing.T) {
	grid := createMap(t,
		"RRG",
		"###",
		"BBB",
	)

	result, err := FindShapes(context.Background(), grid)
	require.NoError(t, err)
	require.Len(t, result.Shapes, 3)
	require.Equal(t, testColors['R'], result.Shapes[0].SourceColor)
	require.Equal(t, testColors['G'], result.Shapes[1].SourceColor)

	// The left neighbour of (1,1) and (2,1) is border, so the pixel above decides.
	for x, want := range []int{0, 0, 1} {
		_, idx, ok := result.ShapeAt(x, 1)
		require.True(t, ok)
		require.Equal(t, want, idx, "border pixel (%d, 1)", x)
	}
	require.Equal(t, 4, result.Shapes[0].Len())
	require.Equal(t, 2, result.Shapes[1].Len())
	require.Equal(t, 3, result.Shapes[2].Len())
}

func TestFindShapes_TrailingBorderJoinsAbsorbedNeighbour(t *testing.T) {
	grid := createMap(t,
		"RG",
		"##",
		"##",
	)

	result, err := FindShapes(context.Background(), grid)
	require.NoError(t, err)
	require.Len(t, result.Shapes, 2)

	// Row 1 takes the shapes above it. Row 2 has no non-border pixel left,
	// so it follows the absorbed left neighbour, else the one above.
	want := map[imaging.Point2D]int{
		imaging.Pt(0, 1): 0,
		imaging.Pt(1, 1): 1,
		imaging.Pt(0, 2): 0,
		imaging.Pt(1, 2): 0,
	}
	for p, w := range want {
		_, idx, ok := result.ShapeAt(int(p.X), int(p.Y))
		require.True(t, ok)
		require.Equal(t, w, idx, "border pixel %s", p)
	}
	require.Equal(t, 4, result.Shapes[0].Len())
	require.Equal(t, 2, result.Shapes[1].Len())
	require.Equal(t, 6, result.PixelCount())
}

func TestFindShapes_AllBorder(t *testing.T) {
	grid := createMap(t,
		"####",
		"####",
		"####",
	)

	result, err := FindShapes(context.Background(), grid)
	require.ErrorIs(t, err, ErrNoNonBorderPixel)
	require.Nil(t, result)
}

func TestFindShapes_LeadingBorderScansForward(t *testing.T) {
	grid := createMap(t,
		"###",
		"##G",
		"GGG",
	)

	result, err := FindShapes(context.Background(), grid)
	require.NoError(t, err)
	require.Len(t, result.Shapes, 1)
	require.Equal(t, 9, result.Shapes[0].Len())
}

func TestFindShapes_DiagonalRegionsStaySeparate(t *testing.T) {
	grid := createMap(t,
		"R#",
		"#R",
	)

	result, err := FindShapes(context.Background(), grid)
	require.NoError(t, err)
	require.Len(t, result.Shapes, 2)
	require.Equal(t, 3, result.Shapes[0].Len())
	require.Equal(t, 1, result.Shapes[1].Len())
}

func TestFindShapes_MergesLabelsMeetingLater(t *testing.T) {
	grid := createMap(t,
		"R#R#R",
		"R#RRR",
		"R###R",
		"RRRRR",
	)

	result, err := FindShapes(context.Background(), grid)
	require.NoError(t, err)
	require.Len(t, result.Shapes, 1)
	require.Equal(t, 3, result.Stats.ProvisionalLabels)
	require.Equal(t, 20, result.Shapes[0].Len())
}

func TestFindShapes_ColorMismatch(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	grid := createMap(t,
		"RG",
		"RG",
	)

	result, err := FindShapes(context.Background(), grid, WithLogger(logger))
	require.NoError(t, err)
	require.Len(t, result.Shapes, 2)
	require.Equal(t, 2, result.Stats.ColorMismatches)
	require.Len(t, result.ProblemPixels, 2)
	require.Equal(t, imaging.Pt(1, 0), result.ProblemPixels[0].Point)
	require.Equal(t, testColors['G'], result.ProblemPixels[0].Color)
	require.Contains(t, buf.String(), "multiple colors found in one shape")
}

func TestFindShapes_Categories(t *testing.T) {
	grid := createMap(t,
		"GG#BB",
		"GG#BB",
	)

	result, err := FindShapes(context.Background(), grid)
	require.NoError(t, err)
	require.Len(t, result.Shapes, 2)
	require.Equal(t, palette.Land, result.Shapes[0].Category)
	require.Equal(t, palette.Sea, result.Shapes[1].Category)
}

var propertyMap = []string{
	"RRR#GGG",
	"RRR#GGG",
	"####GGG",
	"BBBB#WW",
	"BB#BB#W",
	"#WWWW#W",
}

func TestFindShapes_PixelConservationAndContainment(t *testing.T) {
	grid := createMap(t, propertyMap...)

	result, err := FindShapes(context.Background(), grid)
	require.NoError(t, err)
	require.Equal(t, grid.Len(), result.PixelCount())

	seen := make(map[imaging.Point2D]bool)
	for i, s := range result.Shapes {
		require.False(t, s.Box.Empty())
		for _, px := range s.Pixels {
			require.False(t, seen[px.Point], "pixel %s owned twice", px.Point)
			seen[px.Point] = true
			require.True(t, s.Box.Contains(px.Point), "shape %d box does not contain %s", i, px.Point)

			owner, idx, ok := result.ShapeAt(int(px.Point.X), int(px.Point.Y))
			require.True(t, ok)
			require.Equal(t, i, idx)
			require.Same(t, s, owner)
		}
	}
	require.Len(t, seen, grid.Len())
}

func TestFindShapes_Deterministic(t *testing.T) {
	grid := createMap(t, propertyMap...)

	first, err := FindShapes(context.Background(), grid)
	require.NoError(t, err)
	second, err := FindShapes(context.Background(), grid)
	require.NoError(t, err)

	require.Equal(t, first.Shapes, second.Shapes)
	require.Equal(t, first.Labels, second.Labels)

	// Reusing an engine and allocator gives the same answer too.
	engine := NewEngine(WithAllocator(palette.NewGenerator()))
	a, err := engine.Run(context.Background(), grid)
	require.NoError(t, err)
	b, err := engine.Run(context.Background(), grid)
	require.NoError(t, err)
	require.Equal(t, a.Shapes, b.Shapes)
}

func TestFindShapes_RootsAreStable(t *testing.T) {
	grid := createMap(t, propertyMap...)
	engine := NewEngine()
	r := &run{Engine: engine, grid: grid, width: grid.Width(), height: grid.Height(),
		labels: make([]uint32, grid.Len()), resolver: NewLabelResolver(8), next: 1}

	require.NoError(t, r.scan(context.Background()))
	require.NoError(t, r.resolve(context.Background()))
	for _, l := range r.labels {
		require.Equal(t, l, r.resolver.Find(l))
	}
}

func TestFindShapes_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	grid := createMap(t, propertyMap...)
	result, err := FindShapes(ctx, grid)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, result)
}

type recordingSink struct {
	writes int
	last   map[imaging.Point2D]imaging.Color
}

func (s *recordingSink) WritePixel(p imaging.Point2D, c imaging.Color) {
	if s.last == nil {
		s.last = make(map[imaging.Point2D]imaging.Color)
	}
	s.writes++
	s.last[p] = c
}

func TestFindShapes_SinkSeesFinalColors(t *testing.T) {
	grid := createMap(t, propertyMap...)
	sink := &recordingSink{}

	result, err := FindShapes(context.Background(), grid, WithSink(sink))
	require.NoError(t, err)

	// Every pixel once in pass 1, and once more when it joins a shape.
	require.Equal(t, 2*grid.Len(), sink.writes)
	for _, s := range result.Shapes {
		for _, px := range s.Pixels {
			require.Equal(t, s.UniqueColor, sink.last[px.Point])
		}
	}
}

func TestFindShapes_StageHook(t *testing.T) {
	grid := createMap(t, propertyMap...)

	var stages []Stage
	_, err := FindShapes(context.Background(), grid, WithStageHook(func(s Stage) error {
		stages = append(stages, s)
		return nil
	}))
	require.NoError(t, err)
	require.Equal(t, []Stage{Scanning, Resolving, Merging}, stages)

	boom := errors.New("disk full")
	_, err = FindShapes(context.Background(), grid, WithStageHook(func(s Stage) error {
		if s == Resolving {
			return boom
		}
		return nil
	}))
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "resolving")
}

func TestStage_String(t *testing.T) {
	require.Equal(t, "scanning", Scanning.String())
	require.Equal(t, "resolving", Resolving.String())
	require.Equal(t, "merging", Merging.String())
	require.Equal(t, "done", Done.String())
	require.Equal(t, "stage(9)", Stage(9).String())
}

// sequenceAllocator hands out 1, 2, 3, ... as colours and counts resets.
type sequenceAllocator struct {
	next       uint32
	resets     int
	categories []palette.ProvinceType
}

func (a *sequenceAllocator) Allocate(cat palette.ProvinceType) (imaging.Color, error) {
	a.next++
	a.categories = append(a.categories, cat)
	return imaging.ColorFromUint32(a.next), nil
}

func (a *sequenceAllocator) Reset() {
	a.next = 0
	a.resets++
}

func TestFindShapes_AllocatorResetBetweenPasses(t *testing.T) {
	grid := createMap(t,
		"GG#BB",
		"GG#BB",
	)
	alloc := &sequenceAllocator{}

	result, err := FindShapes(context.Background(), grid, WithAllocator(alloc), WithSink(&recordingSink{}))
	require.NoError(t, err)
	require.Equal(t, 1, alloc.resets)

	// Two provisional colours, then two final ones after the reset.
	require.Equal(t, []palette.ProvinceType{palette.Land, palette.Sea, palette.Land, palette.Sea}, alloc.categories)
	require.Equal(t, imaging.ColorFromUint32(1), result.Shapes[0].UniqueColor)
	require.Equal(t, imaging.ColorFromUint32(2), result.Shapes[1].UniqueColor)
}

type failingAllocator struct{}

func (failingAllocator) Allocate(palette.ProvinceType) (imaging.Color, error) {
	return imaging.BorderColor, palette.ErrExhausted
}
func (failingAllocator) Reset() {}

func TestFindShapes_AllocatorExhausted(t *testing.T) {
	grid := createMap(t, "RR")
	_, err := FindShapes(context.Background(), grid, WithAllocator(failingAllocator{}))
	require.ErrorIs(t, err, palette.ErrExhausted)
}

func TestAdjacentPixel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	grid := createMap(t,
		"RRR",
		"RRR",
	)

	p, ok := adjacentPixel(log, grid, imaging.Pt(1, 1), Up, Left)
	require.True(t, ok)
	require.Equal(t, imaging.Pt(0, 0), p)

	p, ok = adjacentPixel(log, grid, imaging.Pt(1, 0), Right, Down)
	require.True(t, ok)
	require.Equal(t, imaging.Pt(2, 1), p)

	_, ok = adjacentPixel(log, grid, imaging.Pt(0, 0), Left, None)
	require.False(t, ok, "left of the first column is outside the grid")
	_, ok = adjacentPixel(log, grid, imaging.Pt(0, 0), Up, None)
	require.False(t, ok)
	require.Empty(t, buf.String(), "out of bounds is not a warning")

	for _, q := range [][2]Direction{{None, None}, {None, Left}, {Left, Right}, {Up, Down}, {Up, Up}} {
		buf.Reset()
		_, ok = adjacentPixel(log, grid, imaging.Pt(1, 1), q[0], q[1])
		require.False(t, ok, "query %v must be rejected", q)
		require.Contains(t, buf.String(), "invalid neighbour query")
	}
}
