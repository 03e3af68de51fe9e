package engine

// Syndrome is the product of one generation episode
type Syndrome struct {
	Lattice        *Lattice
	Original       *Lattice
	BoundaryCharge [2]int
	Colors         []string

	// ErrorCount is the number of defects attempted, Accepted the number
	// that survived the boundary rejection rule.
	ErrorCount int
	Accepted   int
}

// GenerateSyndrome places random paired defects on a fresh lattice, records
// the parity that landed on each boundary column and scrubs the boundaries.
func GenerateSyndrome(p float64, k, size int, rng *RNG, colors ColorProvider) *Syndrome {
	lattice := NewLattice(size, k)

	errorCount := 1
	for i := 0; i < 2*size*size; i++ {
		if rng.Bernoulli(p) {
			errorCount++
		}
	}

	accepted := 0
	for i := 0; i < errorCount; i++ {
		x0, y0 := rng.IntN(size), rng.IntN(size)
		x1, y1 := x0, y0
		if rng.Bool() {
			x1 = x0 + rng.Choice(steps(x0, size))
		} else {
			y1 = y0 + rng.Choice(steps(y0, size))
		}

		// Only a defect living entirely on boundary columns is dropped;
		// one boundary endpoint is how boundary charge arises.
		if lattice.IsBoundaryColumn(x0) && lattice.IsBoundaryColumn(x1) {
			continue
		}
		e := 1 + rng.IntN(k-1)
		lattice.Add(x0, y0, e)
		lattice.Add(x1, y1, k-e)
		accepted++
	}

	if colors == nil {
		colors = DistinctPalette{}
	}
	palette := colors.Colors(errorCount, ReservedColors)
	hex := make([]string, len(palette))
	for i, c := range palette {
		hex[i] = HexColor(c)
	}

	var charge [2]int
	for e, x := range lattice.BoundaryColumns() {
		charge[e] = lattice.ColumnResidue(x)
		for y := 0; y < size; y++ {
			lattice.Zero(x, y)
		}
	}

	return &Syndrome{
		Lattice:        lattice,
		Original:       lattice.Clone(),
		BoundaryCharge: charge,
		Colors:         hex,
		ErrorCount:     errorCount,
		Accepted:       accepted,
	}
}

// steps lists the in-bounds unit offsets from coordinate c
func steps(c, size int) []int {
	var out []int
	if c > 0 {
		out = append(out, -1)
	}
	if c < size-1 {
		out = append(out, +1)
	}
	return out
}
