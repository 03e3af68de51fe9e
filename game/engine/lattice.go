package engine

// Lattice is an L x L grid of charge accumulators interpreted mod K.
// Columns 0 and L-1 are boundary columns, the rest is bulk.
type Lattice struct {
	L     int
	K     int
	cells []int
}

// NewLattice allocates an all-zero lattice
func NewLattice(size, modulus int) *Lattice {
	return &Lattice{L: size, K: modulus, cells: make([]int, size*size)}
}

// LatticeFromRows rebuilds a lattice from [y][x] rows as found in PuzzleState
func LatticeFromRows(modulus int, rows [][]int) *Lattice {
	l := NewLattice(len(rows), modulus)
	for y, row := range rows {
		for x := 0; x < len(row) && x < l.L; x++ {
			l.cells[l.index(x, y)] = row[x]
		}
	}
	return l
}

func (l *Lattice) index(x, y int) int { return y*l.L + x }

// InBounds reports whether (x, y) addresses a cell
func (l *Lattice) InBounds(x, y int) bool {
	return x >= 0 && x < l.L && y >= 0 && y < l.L
}

// Get returns the raw accumulated value at (x, y)
func (l *Lattice) Get(x, y int) int { return l.cells[l.index(x, y)] }

// Add accumulates delta at (x, y) without reducing mod K
func (l *Lattice) Add(x, y, delta int) { l.cells[l.index(x, y)] += delta }

// Zero clears the cell at (x, y)
func (l *Lattice) Zero(x, y int) { l.cells[l.index(x, y)] = 0 }

// Residue returns the cell value mod K
func (l *Lattice) Residue(x, y int) int { return mod(l.Get(x, y), l.K) }

// IsTrivial reports whether the cell carries no charge mod K
func (l *Lattice) IsTrivial(x, y int) bool { return l.Residue(x, y) == 0 }

// IsBoundaryColumn reports whether column x is one of the two boundaries
func (l *Lattice) IsBoundaryColumn(x int) bool { return x == 0 || x == l.L-1 }

// BoundaryColumns returns the x coordinates of the two boundary columns
func (l *Lattice) BoundaryColumns() [2]int { return [2]int{0, l.L - 1} }

// ColumnResidue returns the sum of column x mod K
func (l *Lattice) ColumnResidue(x int) int {
	sum := 0
	for y := 0; y < l.L; y++ {
		sum += l.Get(x, y)
	}
	return mod(sum, l.K)
}

// BulkRemaining sums the residues of all bulk cells. It is zero exactly
// when every bulk cell is trivial.
func (l *Lattice) BulkRemaining() int {
	total := 0
	for x := 1; x < l.L-1; x++ {
		for y := 0; y < l.L; y++ {
			total += l.Residue(x, y)
		}
	}
	return total
}

// Total sums every cell mod K
func (l *Lattice) Total() int {
	sum := 0
	for _, v := range l.cells {
		sum += v
	}
	return mod(sum, l.K)
}

// Clone returns an independent copy
func (l *Lattice) Clone() *Lattice {
	cells := make([]int, len(l.cells))
	copy(cells, l.cells)
	return &Lattice{L: l.L, K: l.K, cells: cells}
}

// Rows exports the raw values indexed [y][x]
func (l *Lattice) Rows() [][]int {
	rows := make([][]int, l.L)
	for y := range rows {
		rows[y] = make([]int, l.L)
		for x := 0; x < l.L; x++ {
			rows[y][x] = l.Get(x, y)
		}
	}
	return rows
}
