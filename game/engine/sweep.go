package engine

// SweepPlan returns a move sequence that pushes every bulk charge, row by
// row, onto the chosen boundary column (0 for x=0, 1 for x=L-1). Applied in
// order through the state machine it always clears the bulk. The input
// lattice is not modified.
func SweepPlan(l *Lattice, boundary int) []Move {
	if l.L < 3 {
		return nil
	}
	work := l.Clone()
	var plan []Move

	// walk each row away from the target boundary so charge piles toward it
	step, first := -1, l.L-2
	if boundary == 1 {
		step, first = 1, 1
	}

	for y := 0; y < l.L; y++ {
		for i, x := 0, first; i < l.L-2; i, x = i+1, x+step {
			if work.IsTrivial(x, y) {
				continue
			}
			m := Move{From: Position{X: x, Y: y}, To: Position{X: x + step, Y: y}}
			work.Add(m.To.X, m.To.Y, work.Get(x, y))
			work.Zero(x, y)
			plan = append(plan, m)
		}
	}
	return plan
}

// ApplyPlan presses every move of plan in order and returns the final state
func ApplyPlan(e Engine, plan []Move) *PuzzleState {
	// release anything held so the first press starts a fresh selection
	state := e.Step(Input{})
	for _, m := range plan {
		e.Press(m.From)
		state = e.Press(m.To)
	}
	return state
}
