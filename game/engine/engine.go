package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Engine provides the main interface for puzzle operations
type Engine interface {
	// Input handling
	Step(in Input) *PuzzleState
	Press(pos Position) *PuzzleState
	Advance() *PuzzleState
	NewEpisode() *PuzzleState

	// State inspection
	GetState() *PuzzleState
	GraphSnapshot(original bool) GraphSnapshot
	IsResolved() bool
	IsVictory() bool
	RemainingCharge() int
	Selection() []Position

	// Configuration
	GetConfig() *PuzzleConfig
	SetConfig(config *PuzzleConfig) error

	// History
	GetMoveHistory() []MoveRecord
}

// PuzzleEngine implements the Engine interface. It is not safe for
// concurrent use; callers serialize access.
type PuzzleEngine struct {
	config *PuzzleConfig
	rng    *RNG
	colors ColorProvider
	now    func() time.Time

	episode   int
	episodeID string

	lattice        *Lattice
	original       *Lattice
	boundaryCharge [2]int
	correction     *[2]int
	defectColors   []string
	errorCount     int
	accepted       int

	graph     *DecodingGraph
	selection []Position
	display   Display
	outcome   Outcome
	remaining int
	moves     []MoveRecord
}

// Option configures a PuzzleEngine
type Option func(*PuzzleEngine)

// WithSeed makes every episode reproducible from seed
func WithSeed(seed int64) Option {
	return func(e *PuzzleEngine) { e.rng = NewRNG(seed) }
}

// WithRNG injects the random source directly
func WithRNG(rng *RNG) Option {
	return func(e *PuzzleEngine) { e.rng = rng }
}

// WithColorProvider replaces the default defect palette
func WithColorProvider(p ColorProvider) Option {
	return func(e *PuzzleEngine) { e.colors = p }
}

// WithClock overrides the clock used for move timestamps
func WithClock(now func() time.Time) Option {
	return func(e *PuzzleEngine) { e.now = now }
}

// NewEngine validates config, generates the first episode and returns the engine
func NewEngine(config *PuzzleConfig, opts ...Option) (*PuzzleEngine, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	e := &PuzzleEngine{
		config: config,
		colors: DistinctPalette{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		if err := e.seedFromConfig(); err != nil {
			return nil, err
		}
	}

	e.graph = BuildDecodingGraph(config.L)
	e.startEpisode()
	return e, nil
}

// NewEngineWithDefaults creates an engine with the classic preset
func NewEngineWithDefaults() (*PuzzleEngine, error) {
	return NewEngine(DefaultConfig())
}

func (e *PuzzleEngine) seedFromConfig() error {
	if e.config.Seed != nil {
		e.rng = NewRNG(*e.config.Seed)
		return nil
	}
	seed, err := NewSeed()
	if err != nil {
		return fmt.Errorf("seed engine: %w", err)
	}
	e.rng = NewRNG(seed)
	return nil
}

// startEpisode runs the syndrome generator and resets everything episode scoped
func (e *PuzzleEngine) startEpisode() {
	s := GenerateSyndrome(e.config.P, e.config.K, e.config.L, e.rng, e.colors)

	e.episode++
	e.episodeID = uuid.NewString()
	e.lattice = s.Lattice
	e.original = s.Original
	e.boundaryCharge = s.BoundaryCharge
	e.defectColors = s.Colors
	e.errorCount = s.ErrorCount
	e.accepted = s.Accepted
	e.correction = nil
	e.selection = nil
	e.moves = nil
	e.outcome = OutcomePlaying

	e.initDisplay()
	e.evaluate(false)
	e.graph.Update(e.lattice)
}

// Step processes one tick of input: the presses still held, first selected
// first, and the advance flag.
func (e *PuzzleEngine) Step(in Input) *PuzzleState {
	e.process(e.heldPresses(in.Pressed), in.Advance)
	return e.GetState()
}

// Press adds pos to the held selection and processes the tick
func (e *PuzzleEngine) Press(pos Position) *PuzzleState {
	held := append(append([]Position(nil), e.selection...), pos)
	return e.Step(Input{Pressed: held})
}

// Advance asserts the advance signal with the current selection held
func (e *PuzzleEngine) Advance() *PuzzleState {
	return e.Step(Input{Pressed: e.Selection(), Advance: true})
}

// NewEpisode discards the current lattice and generates a fresh one
func (e *PuzzleEngine) NewEpisode() *PuzzleState {
	e.startEpisode()
	return e.GetState()
}

// heldPresses drops out-of-range presses and keeps the last two
func (e *PuzzleEngine) heldPresses(pressed []Position) []Position {
	held := make([]Position, 0, 2)
	for _, p := range pressed {
		if e.lattice.InBounds(p.X, p.Y) {
			held = append(held, p)
		}
	}
	if len(held) > 2 {
		held = held[len(held)-2:]
	}
	return held
}

// GetState returns a snapshot of the current puzzle state
func (e *PuzzleEngine) GetState() *PuzzleState {
	state := &PuzzleState{
		ConfigName:      e.config.Name,
		EpisodeID:       e.episodeID,
		Episode:         e.episode,
		P:               e.config.P,
		K:               e.config.K,
		L:               e.config.L,
		Lattice:         e.lattice.Rows(),
		Original:        e.original.Rows(),
		BoundaryCharge:  e.boundaryCharge,
		DefectColors:    append([]string(nil), e.defectColors...),
		ErrorCount:      e.errorCount,
		Selection:       e.Selection(),
		Display:         e.copyDisplay(),
		Outcome:         e.outcome,
		RemainingCharge: e.remaining,
		Moves:           e.GetMoveHistory(),
		Graph:           e.graph.Snapshot(),
	}
	if e.correction != nil {
		c := *e.correction
		state.BoundaryCorrection = &c
	}
	return state
}

// GraphSnapshot returns the decoding graph refreshed from either the live or
// the original lattice. The live graph is never touched for the original view.
func (e *PuzzleEngine) GraphSnapshot(original bool) GraphSnapshot {
	if !original {
		return e.graph.Snapshot()
	}
	g := e.graph.Clone()
	g.Update(e.original)
	return g.Snapshot()
}

// IsResolved reports whether the bulk has been cleared this episode
func (e *PuzzleEngine) IsResolved() bool {
	return e.outcome != OutcomePlaying
}

// IsVictory reports whether the episode resolved successfully
func (e *PuzzleEngine) IsVictory() bool {
	return e.outcome == OutcomeWon
}

// RemainingCharge returns the bulk charge left after the last event
func (e *PuzzleEngine) RemainingCharge() int {
	return e.remaining
}

// Selection returns a copy of the held selection
func (e *PuzzleEngine) Selection() []Position {
	return append([]Position(nil), e.selection...)
}

// Lattice exposes the live lattice for read-only inspection
func (e *PuzzleEngine) Lattice() *Lattice {
	return e.lattice.Clone()
}

// OriginalLattice returns the lattice as generated
func (e *PuzzleEngine) OriginalLattice() *Lattice {
	return e.original.Clone()
}

// BoundaryCharge returns the parity recorded on each boundary at generation
func (e *PuzzleEngine) BoundaryCharge() [2]int {
	return e.boundaryCharge
}

// Graph exposes the decoding graph
func (e *PuzzleEngine) Graph() *DecodingGraph {
	return e.graph
}

// GetConfig returns the current puzzle configuration
func (e *PuzzleEngine) GetConfig() *PuzzleConfig {
	return e.config
}

// SetConfig swaps the configuration and starts a new episode
func (e *PuzzleEngine) SetConfig(config *PuzzleConfig) error {
	if err := ValidateConfig(config); err != nil {
		return err
	}

	sizeChanged := e.config.L != config.L
	e.config = config
	if config.Seed != nil {
		e.rng = NewRNG(*config.Seed)
	}
	if sizeChanged {
		e.graph = BuildDecodingGraph(config.L)
	}
	e.startEpisode()
	return nil
}

// GetMoveHistory returns the moves made in the current episode
func (e *PuzzleEngine) GetMoveHistory() []MoveRecord {
	return append([]MoveRecord(nil), e.moves...)
}

func (e *PuzzleEngine) copyDisplay() Display {
	tiles := make([][]Tile, len(e.display.Tiles))
	for y, row := range e.display.Tiles {
		tiles[y] = append([]Tile(nil), row...)
	}
	return Display{Tiles: tiles, Status: e.display.Status}
}
