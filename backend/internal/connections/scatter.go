package connections

import (
	"math"
	"sort"
	"strings"

	"studio-journal/backend/internal/content"
)

// Placement limits for scatter layouts
const (
	MinMarkerDistance    = 80.0
	MaxPlacementAttempts = 50
)

// Horizontal band: markers sit in the right part of the canvas, leaving the
// left side for the subject anchor and its connecting curves.
const (
	scatterXStart = 0.35
	scatterXSpan  = 0.50
)

type band struct{ top, bottom float64 }

var typeBands = map[content.ContentType]band{
	content.TypeEssay:     {0.08, 0.38},
	content.TypeFieldNote: {0.38, 0.68},
	content.TypeShelf:     {0.68, 0.92},
}

var defaultBand = band{0.10, 0.90}

// SeededRNG is a linear congruential generator seeded from a string. Each
// layout owns its generator so concurrent layouts never share state.
type SeededRNG struct {
	state uint32
}

// NewSeededRNG derives the generator state from seed
func NewSeededRNG(seed string) *SeededRNG {
	var h uint32
	for _, r := range seed {
		h = h*31 + uint32(r)
	}
	return &SeededRNG{state: h}
}

// Float64 returns the next value in [0, 1)
func (g *SeededRNG) Float64() float64 {
	g.state = g.state*1664525 + 1013904223
	return float64(g.state) / (1 << 32)
}

// ScatterLayout is the result of a layout pass. Exhausted[i] is true when
// item i used its whole attempt budget and may overlap a neighbour.
type ScatterLayout struct {
	Positions []content.ScatterPosition
	Exhausted []bool
}

// ComputeScatterPositions places one marker per connection, in input order
func ComputeScatterPositions(cs []content.Connection, width, height float64) []content.ScatterPosition {
	return Layout(cs, width, height).Positions
}

// Layout places markers by rejection sampling: each candidate must be more
// than MinMarkerDistance from every placed marker. After
// MaxPlacementAttempts the last candidate is kept anyway, which bounds the
// work at O(n^2 * MaxPlacementAttempts) distance checks.
func Layout(cs []content.Connection, width, height float64) ScatterLayout {
	layout := ScatterLayout{
		Positions: make([]content.ScatterPosition, 0, len(cs)),
		Exhausted: make([]bool, 0, len(cs)),
	}
	if len(cs) == 0 {
		return layout
	}

	rng := NewSeededRNG(layoutSeed(cs))

	for _, c := range cs {
		b, ok := typeBands[c.Type]
		if !ok {
			b = defaultBand
		}

		var x, y float64
		placed := false
		for attempt := 0; attempt < MaxPlacementAttempts; attempt++ {
			x = width*scatterXStart + rng.Float64()*width*scatterXSpan
			y = height*b.top + rng.Float64()*height*(b.bottom-b.top)
			if clearOf(layout.Positions, x, y) {
				placed = true
				break
			}
		}

		layout.Positions = append(layout.Positions, content.ScatterPosition{X: x, Y: y, Connection: c})
		layout.Exhausted = append(layout.Exhausted, !placed)
	}

	return layout
}

func clearOf(placed []content.ScatterPosition, x, y float64) bool {
	for _, p := range placed {
		if math.Hypot(p.X-x, p.Y-y) <= MinMarkerDistance {
			return false
		}
	}
	return true
}

// layoutSeed depends only on the set of connection IDs, not their order
func layoutSeed(cs []content.Connection) string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
