package engine

import "strconv"

// selectable reports whether pos may start a move: a bulk cell carrying charge
func (e *PuzzleEngine) selectable(pos Position) bool {
	return !e.lattice.IsBoundaryColumn(pos.X) && !e.lattice.IsTrivial(pos.X, pos.Y)
}

// process runs one tick of the correction state machine. The lattice is
// mutated before any display or graph work happens.
func (e *PuzzleEngine) process(held []Position, advance bool) {
	switch len(held) {
	case 1:
		if e.selectable(held[0]) {
			e.selection = []Position{held[0]}
			e.display.Status = PromptChooseDestination
		} else {
			e.selection = nil
		}
	case 2:
		from, to := held[0], held[1]
		switch {
		case !e.selectable(from):
			e.selection = nil
		case from == to:
			e.selection = []Position{from}
			e.display.Status = PromptChooseDestination
		default:
			e.move(from, to)
			e.selection = nil
			e.display.Status = PromptChooseElement
		}
	default:
		e.selection = nil
		e.display.Status = PromptChooseElement
	}

	if advance {
		e.selection = nil
		e.display.Status = PromptChooseElement
	}

	if e.evaluate(advance) {
		// a new episode already refreshed the graph
		return
	}
	e.graph.Update(e.lattice)
}

// move transfers the full accumulated value of from onto to
func (e *PuzzleEngine) move(from, to Position) {
	moved := e.lattice.Get(from.X, from.Y)
	e.lattice.Add(to.X, to.Y, moved)
	e.lattice.Zero(from.X, from.Y)

	e.moves = append(e.moves, MoveRecord{
		Number:    len(e.moves) + 1,
		From:      from,
		To:        to,
		Moved:     moved,
		Timestamp: e.now().Unix(),
	})

	e.paintBulk(from.X, from.Y)
	e.paintBulk(to.X, to.Y)
}

// evaluate recomputes the remaining bulk charge and, once it is zero, the
// outcome. It reports whether a new episode was started.
func (e *PuzzleEngine) evaluate(advance bool) bool {
	e.remaining = e.lattice.BulkRemaining()
	if e.remaining != 0 {
		return false
	}

	if e.correction == nil {
		var c [2]int
		for i, x := range e.lattice.BoundaryColumns() {
			c[i] = e.lattice.ColumnResidue(x)
		}
		e.correction = &c
	}
	e.showResolution()

	if advance {
		e.startEpisode()
		return true
	}
	return false
}

// showResolution labels both boundaries with charge (top) and correction
// (bottom) and colors them by outcome.
func (e *PuzzleEngine) showResolution() {
	k := e.config.K
	if mod(e.correction[0]+e.boundaryCharge[0], k) == 0 {
		e.outcome = OutcomeWon
		e.display.Status = MessageSuccess
	} else {
		e.outcome = OutcomeLost
		e.display.Status = MessageFailure
	}

	color := ColorSuccess
	if e.outcome == OutcomeLost {
		color = ColorFailure
	}
	last := e.config.L - 1
	for i, x := range e.lattice.BoundaryColumns() {
		for y := 0; y <= last; y++ {
			e.display.Tiles[y][x].Color = color
		}
		e.display.Tiles[0][x].Label = strconv.Itoa(e.boundaryCharge[i])
		e.display.Tiles[last][x].Label = strconv.Itoa(e.correction[i])
	}
}

// paintBulk refreshes the tile of one bulk cell; boundary tiles are left alone
func (e *PuzzleEngine) paintBulk(x, y int) {
	if e.lattice.IsBoundaryColumn(x) {
		return
	}
	r := e.lattice.Residue(x, y)
	if r == 0 {
		e.display.Tiles[y][x] = Tile{Color: ColorBulk}
		return
	}
	e.display.Tiles[y][x] = Tile{Color: ColorError, Label: residueLabel(r, e.config.K)}
}

// initDisplay draws the start-of-episode frame
func (e *PuzzleEngine) initDisplay() {
	size := e.config.L
	tiles := make([][]Tile, size)
	for y := range tiles {
		tiles[y] = make([]Tile, size)
		for x := range tiles[y] {
			tiles[y][x] = Tile{Color: ColorBoundary}
		}
	}
	e.display = Display{Tiles: tiles, Status: PromptStart}
	for x := 1; x < size-1; x++ {
		for y := 0; y < size; y++ {
			e.paintBulk(x, y)
		}
	}
}
