// Package engine provides the core logic of the Decodoku puzzle.
//
// The engine package implements:
//   - The charge lattice with its two boundary columns
//   - Syndrome generation with the boundary conservation rule
//   - The space-time decoding graph and its refresh from the lattice
//   - The correction state machine that moves charge and decides the outcome
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for puzzle operations,
// implemented by PuzzleEngine. PuzzleState is a self-contained snapshot of an
// episode, while PuzzleConfig carries the (p, k, L) parameters loaded from
// JSON files.
//
// Usage:
//
//	config, err := engine.LoadPuzzleConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	puzzle, err := engine.NewEngine(config, engine.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Move the charge at (3,4) one cell to the left
//	puzzle.Press(engine.Position{X: 3, Y: 4})
//	state := puzzle.Press(engine.Position{X: 2, Y: 4})
//
// Rules:
//
// Every defect inserts e and k-e on two adjacent cells, so the lattice total
// is zero mod k. Whatever landed on the boundary columns is recorded as the
// boundary charge and scrubbed. The player moves charge until every bulk
// cell is trivial; the episode is won when the charge pushed onto the left
// boundary cancels the recorded charge there.
package engine
