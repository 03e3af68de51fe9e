package render

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/wricardo/decodoku/game/engine"
)

// Base node colors for the decoding graph picture
const (
	NodeColorBoundary = "orange"
	NodeColorError    = "red"
	NodeColorNeutral  = "cornflowerblue"
)

// NodeStyle is the color and label of one decoding graph node
type NodeStyle struct {
	Index    int          `json:"index"`
	Color    string       `json:"color"`
	Hex      string       `json:"hex"`
	Label    string       `json:"label"`
	Position engine.Point `json:"position"`
	Cluster  *int         `json:"cluster,omitempty"`
}

// GraphView is everything an external renderer needs to draw the graph
type GraphView struct {
	Nodes    []NodeStyle        `json:"nodes"`
	Edges    []engine.GraphEdge `json:"edges"`
	Parity   *[2]int            `json:"parity,omitempty"`
	Original bool               `json:"original"`
}

// Adapter maps puzzle state onto per-node render instructions
type Adapter struct {
	decoder Decoder
}

// NewAdapter creates an adapter; a nil decoder means no cluster override
func NewAdapter(decoder Decoder) *Adapter {
	if decoder == nil {
		decoder = NopDecoder{}
	}
	return &Adapter{decoder: decoder}
}

// Decoder returns the configured decoder
func (a *Adapter) Decoder() Decoder {
	return a.decoder
}

// RenderState draws the live graph carried by state
func (a *Adapter) RenderState(state *engine.PuzzleState, clusters bool) (*GraphView, error) {
	return a.Render(state, state.Graph, clusters)
}

// Render computes node styles for graph. When clusters is set the decoder is
// consulted and its cluster ids override node colors with the defect palette.
// Decoder errors are returned as is; state is never modified.
func (a *Adapter) Render(state *engine.PuzzleState, graph engine.GraphSnapshot, clusters bool) (*GraphView, error) {
	var eval Evaluation
	if clusters {
		var err error
		eval, err = a.decoder.Evaluate(state)
		if err != nil {
			return nil, fmt.Errorf("evaluate decoder: %w", err)
		}
	}

	view := &GraphView{
		Nodes:  make([]NodeStyle, len(graph.Nodes)),
		Edges:  append([]engine.GraphEdge(nil), graph.Edges...),
		Parity: eval.Parity,
	}
	for i, node := range graph.Nodes {
		style := NodeStyle{Index: i, Color: baseColor(graph, i)}
		if i < len(graph.Positions) {
			style.Position = graph.Positions[i]
		}
		style.Label = nodeLabel(node, eval.Parity, state.K)
		view.Nodes[i] = style
	}

	for n, c := range eval.Clusters {
		if n < 0 || n >= len(view.Nodes) {
			return nil, fmt.Errorf("cluster for node %d: %w", n, ErrNodeOutOfRange)
		}
		if c < 0 || c >= len(state.DefectColors) {
			return nil, fmt.Errorf("cluster %d for node %d with %d colors: %w", c, n, len(state.DefectColors), ErrClusterOutOfRange)
		}
		id := c
		view.Nodes[n].Color = state.DefectColors[c]
		view.Nodes[n].Cluster = &id
	}

	for i := range view.Nodes {
		view.Nodes[i].Hex = ResolveHex(view.Nodes[i].Color)
	}
	return view, nil
}

func baseColor(graph engine.GraphSnapshot, i int) string {
	node := graph.Nodes[i]
	switch {
	case node.IsBoundary:
		return NodeColorBoundary
	case node.Highlighted:
		return NodeColorError
	default:
		return NodeColorNeutral
	}
}

func nodeLabel(node engine.GraphNode, parity *[2]int, k int) string {
	switch {
	case node.IsBoundary && parity != nil:
		if node.Element < 0 || node.Element > 1 {
			return ""
		}
		return strconv.Itoa(parity[node.Element])
	case node.Highlighted && k != 2:
		return strconv.Itoa(node.Value)
	default:
		return ""
	}
}

// ResolveHex turns an SVG color name or #rrggbb string into #rrggbb.
// Unknown names resolve to the empty string.
func ResolveHex(name string) string {
	if strings.HasPrefix(name, "#") {
		return strings.ToLower(name)
	}
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return ""
	}
	return engine.HexColor(c)
}
