package engine

// Outcome reports where an episode stands
type Outcome string

const (
	OutcomePlaying Outcome = "playing"
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"

	// Validation constants
	MinLatticeSize = 2
	MaxLatticeSize = 64
	MinModulus     = 2
)

// Tile colors written to the render sink
const (
	ColorBoundary = "orange"
	ColorBulk     = "blue"
	ColorError    = "red"
	ColorSuccess  = "green"
	ColorFailure  = "red"
)

// Status prompts written to the render sink
const (
	PromptStart             = "Choose node with an error"
	PromptChooseElement     = "Choose syndrome element"
	PromptChooseDestination = "Choose node to move it to"
	MessageSuccess          = "Correction successful! :D"
	MessageFailure          = "Correction unsuccessful! :("
)

// NodeState is the display state of a decoding graph node
type NodeState string

const (
	NodeBoundary NodeState = "boundary"
	NodeError    NodeState = "error"
	NodeNeutral  NodeState = "neutral"
)

// Position represents x,y lattice coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Move is a charge transfer from one cell onto another
type Move struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Input is one tick from the input source: the presses still held
// (first selected first) and the advance flag.
type Input struct {
	Pressed []Position `json:"pressed"`
	Advance bool       `json:"advance"`
}

// Tile is what the render sink draws for one cell
type Tile struct {
	Color string `json:"color"`
	Label string `json:"label,omitempty"`
}

// Display is the full frame for the render sink. Tiles are indexed [y][x].
type Display struct {
	Tiles  [][]Tile `json:"tiles"`
	Status string   `json:"status"`
}

// MoveRecord represents a single move in the current episode
type MoveRecord struct {
	Number    int      `json:"number"`
	From      Position `json:"from"`
	To        Position `json:"to"`
	Moved     int      `json:"moved"`
	Timestamp int64    `json:"timestamp"`
}

// GraphNode is a decoding graph vertex
type GraphNode struct {
	Time        int  `json:"time"`
	Element     int  `json:"element"`
	IsBoundary  bool `json:"is_boundary"`
	Highlighted bool `json:"highlighted"`
	Value       int  `json:"value"`
}

// GraphEdge connects two node indices
type GraphEdge struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Point is a layout coordinate for drawing the decoding graph
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GraphSnapshot is a copy of the decoding graph safe to hand to collaborators
type GraphSnapshot struct {
	Nodes     []GraphNode `json:"nodes"`
	Edges     []GraphEdge `json:"edges"`
	Positions []Point     `json:"positions"`
	States    []NodeState `json:"states"`
}

// PuzzleState represents the complete puzzle state
type PuzzleState struct {
	ConfigName string  `json:"config_name"`
	EpisodeID  string  `json:"episode_id"`
	Episode    int     `json:"episode"`
	P          float64 `json:"p"`
	K          int     `json:"k"`
	L          int     `json:"l"`

	// Lattice and Original are indexed [y][x] and hold raw accumulators.
	Lattice  [][]int `json:"lattice"`
	Original [][]int `json:"original"`

	BoundaryCharge     [2]int  `json:"boundary_charge"`
	BoundaryCorrection *[2]int `json:"boundary_correction,omitempty"`
	DefectColors       []string `json:"defect_colors"`
	ErrorCount         int      `json:"error_count"`

	Selection       []Position   `json:"selection"`
	Display         Display      `json:"display"`
	Outcome         Outcome      `json:"outcome"`
	RemainingCharge int          `json:"remaining_charge"`
	Moves           []MoveRecord `json:"moves"`

	Graph GraphSnapshot `json:"graph"`
}
