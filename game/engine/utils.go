package engine

import "strconv"

// mod returns the non-negative residue of v modulo k
func mod(v, k int) int {
	r := v % k
	if r < 0 {
		r += k
	}
	return r
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// CountNonTrivial counts the bulk cells carrying charge
func CountNonTrivial(l *Lattice) int {
	count := 0
	for x := 1; x < l.L-1; x++ {
		for y := 0; y < l.L; y++ {
			if !l.IsTrivial(x, y) {
				count++
			}
		}
	}
	return count
}

// ExpectedErrorCount is the mean defect count for a preset: 1 + 2L²p
func ExpectedErrorCount(p float64, size int) float64 {
	return 1 + 2*float64(size*size)*p
}

// GraphSize returns the node and edge counts BuildDecodingGraph produces for size
func GraphSize(size int) (nodes, edges int) {
	bulkColumns := size - 2
	if bulkColumns < 0 {
		bulkColumns = 0
	}
	nodes = bulkColumns*size + 2
	if bulkColumns == 0 {
		return nodes, 0
	}
	boundary := 2 * size
	space := size * (bulkColumns - 1)
	timeLike := (size - 1) * bulkColumns
	return nodes, boundary + space + timeLike
}

// residueLabel formats a cell residue for display; k=2 shows no label
func residueLabel(r, k int) string {
	if k == 2 {
		return ""
	}
	return strconv.Itoa(r)
}
