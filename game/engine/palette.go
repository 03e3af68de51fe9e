package engine

import (
	"fmt"
	"image/color"
	"math"

	"golang.org/x/image/colornames"
)

// ReservedColors are used by the boundary and bulk display and are never
// handed out to defects.
var ReservedColors = []color.RGBA{
	colornames.Blue,
	colornames.Orange,
	colornames.White,
	colornames.Black,
}

// ColorProvider returns n pairwise distinguishable colors that stay away
// from the reserved ones.
type ColorProvider interface {
	Colors(n int, reserved []color.RGBA) []color.RGBA
}

// DistinctPalette picks colors by greedy farthest-point selection over a
// fixed HSV candidate pool. It is deterministic.
type DistinctPalette struct {
	// PoolSize bounds the number of candidates considered; zero means auto.
	PoolSize int
}

const maxPaletteCandidates = 4096

// Colors implements ColorProvider
func (p DistinctPalette) Colors(n int, reserved []color.RGBA) []color.RGBA {
	if n <= 0 {
		return nil
	}

	size := p.PoolSize
	if size <= 0 {
		size = 8 * n
		if size < 64 {
			size = 64
		}
	}
	if size > maxPaletteCandidates {
		size = maxPaletteCandidates
	}
	pool := candidatePool(size)

	// dist[i] is the distance from pool[i] to the nearest chosen or reserved color
	dist := make([]float64, len(pool))
	for i := range pool {
		dist[i] = math.Inf(1)
		for _, r := range reserved {
			dist[i] = math.Min(dist[i], colorDistance(pool[i], r))
		}
	}

	out := make([]color.RGBA, 0, n)
	distinct := 0
	for len(out) < n {
		best := -1
		for i := range pool {
			if best == -1 || dist[i] > dist[best] {
				best = i
			}
		}
		if dist[best] == 0 && distinct > 0 {
			// Pool exhausted, cycle through what we already have
			out = append(out, out[len(out)%distinct])
			continue
		}
		distinct++
		chosen := pool[best]
		out = append(out, chosen)
		for i := range pool {
			dist[i] = math.Min(dist[i], colorDistance(pool[i], chosen))
		}
	}
	return out
}

// HexColor formats c as #rrggbb
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func candidatePool(size int) []color.RGBA {
	levels := []struct{ s, v float64 }{
		{0.85, 0.95},
		{0.55, 0.80},
		{0.95, 0.60},
		{0.35, 0.98},
	}
	perLevel := size / len(levels)
	if perLevel < 1 {
		perLevel = 1
	}
	pool := make([]color.RGBA, 0, perLevel*len(levels))
	for _, lv := range levels {
		for i := 0; i < perLevel; i++ {
			h := float64(i) / float64(perLevel)
			pool = append(pool, hsvToRGB(h, lv.s, lv.v))
		}
	}
	return pool
}

// colorDistance is a weighted RGB distance that tracks perceived difference
// better than plain Euclidean distance.
func colorDistance(a, b color.RGBA) float64 {
	rmean := (float64(a.R) + float64(b.R)) / 2
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt((2+rmean/256)*dr*dr + 4*dg*dg + (2+(255-rmean)/256)*db*db)
}

func hsvToRGB(h, s, v float64) color.RGBA {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{R: uint8(255 * r), G: uint8(255 * g), B: uint8(255 * b), A: 255}
}
