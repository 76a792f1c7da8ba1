// Package palette hands out display colours for detected shapes.
//
// Every shape gets a colour that no other shape in the same run has. Colours
// are drawn from a hue band chosen by the shape's coarse category so that a
// recoloured map still reads as land, sea and lakes at a glance.
package palette

import (
	"errors"
	"math"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/map-shapes-mcp/internal/imaging"
)

// ErrExhausted is returned once every non-border 24-bit colour has been
// handed out since the last Reset.
var ErrExhausted = errors.New("palette: no unused colours left")

// ProvinceType is the coarse category a shape's source colour belongs to.
type ProvinceType int

const (
	Unknown ProvinceType = iota
	Land
	Sea
	Lake
)

func (t ProvinceType) String() string {
	switch t {
	case Land:
		return "land"
	case Sea:
		return "sea"
	case Lake:
		return "lake"
	}
	return "unknown"
}

// ParseProvinceType maps "land", "sea" and "lake" (any case) to their
// category. Every other string is Unknown.
func ParseProvinceType(s string) ProvinceType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "land":
		return Land
	case "sea":
		return Sea
	case "lake":
		return Lake
	}
	return Unknown
}

// Classify derives a category from a source colour. Near-grey or near-black
// colours are Unknown, blue hues are Sea when dark and Lake when light, and
// everything else is Land.
func Classify(c imaging.Color) ProvinceType {
	h, s, v := c.Colorful().Hsv()
	switch {
	case s < 0.15 || v < 0.1:
		return Unknown
	case h >= 180 && h < 260:
		if v < 0.7 {
			return Sea
		}
		return Lake
	}
	return Land
}

// Allocator hands out colours that are unique until the next Reset and never
// equal to imaging.BorderColor.
type Allocator interface {
	Allocate(category ProvinceType) (imaging.Color, error)
	Reset()
}

// band is the HSV region a category draws from.
type band struct {
	hueLo, hueHi float64
	satLo, satHi float64
	valLo, valHi float64
}

var bands = map[ProvinceType]band{
	Unknown: {0, 360, 0.35, 0.95, 0.45, 1.0},
	Land:    {20, 160, 0.35, 0.95, 0.45, 1.0},
	Sea:     {200, 250, 0.45, 1.0, 0.30, 0.70},
	Lake:    {170, 200, 0.30, 0.90, 0.70, 1.0},
}

const (
	colorSpace = 1 << 24

	// candidateAttempts bounds how many band candidates are tried before
	// falling back to a linear walk of the colour cube.
	candidateAttempts = 64
)

// Generator is the default Allocator. Its output depends only on the order
// of calls since the last Reset, so repeated runs over the same map produce
// the same colours. Safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	used     []uint64
	count    int
	counters map[ProvinceType]uint64
	cursor   uint32
}

// NewGenerator returns an empty Generator.
func NewGenerator() *Generator {
	g := &Generator{used: make([]uint64, colorSpace/64)}
	g.reset()
	return g
}

// Reset forgets every colour handed out so far.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.used {
		g.used[i] = 0
	}
	g.reset()
}

func (g *Generator) reset() {
	g.counters = make(map[ProvinceType]uint64)
	g.cursor = 1
	g.count = 0
	g.claim(imaging.BorderColor)
}

// Allocate returns a fresh colour from the category's band, or from anywhere
// in the colour cube once the band keeps colliding.
func (g *Generator) Allocate(category ProvinceType) (imaging.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := bands[category]
	if !ok {
		b = bands[Unknown]
	}

	for i := 0; i < candidateAttempts; i++ {
		n := g.counters[category]
		g.counters[category]++
		if c := candidate(b, n); g.claim(c) {
			return c, nil
		}
	}

	for ; g.cursor < colorSpace; g.cursor++ {
		if c := imaging.ColorFromUint32(g.cursor); g.claim(c) {
			return c, nil
		}
	}
	return imaging.BorderColor, ErrExhausted
}

// Used returns how many colours (excluding the border colour) are taken.
func (g *Generator) Used() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count - 1
}

// claim marks c as used and reports whether it was free.
func (g *Generator) claim(c imaging.Color) bool {
	v := c.Uint32()
	word, bit := v/64, v%64
	if g.used[word]&(1<<bit) != 0 {
		return false
	}
	g.used[word] |= 1 << bit
	g.count++
	return true
}

// candidate returns the n-th point of an additive recurrence over the band.
func candidate(b band, n uint64) imaging.Color {
	f := float64(n)
	h := b.hueLo + frac(f*0.6180339887498949)*(b.hueHi-b.hueLo)
	s := b.satLo + frac(f*0.7548776662466927)*(b.satHi-b.satLo)
	v := b.valLo + frac(f*0.5698402909980532)*(b.valHi-b.valLo)
	r, gr, bl := colorful.Hsv(h, s, v).RGB255()
	return imaging.Color{R: r, G: gr, B: bl}
}

func frac(x float64) float64 {
	return x - math.Floor(x)
}
