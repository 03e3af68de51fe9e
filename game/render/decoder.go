package render

import (
	"errors"

	"github.com/wricardo/decodoku/game/engine"
)

var (
	// ErrClusterOutOfRange means a decoder returned a cluster id with no palette color
	ErrClusterOutOfRange = errors.New("cluster id out of range")
	// ErrNodeOutOfRange means a decoder referenced a node the graph does not have
	ErrNodeOutOfRange = errors.New("node index out of range")
)

// Evaluation is what a decoder hands back. Either field may be nil.
type Evaluation struct {
	// Parity replaces the boundary node labels, one entry per boundary element.
	Parity *[2]int `json:"parity,omitempty"`
	// Clusters maps node index to a cluster id that indexes the defect palette.
	Clusters map[int]int `json:"clusters,omitempty"`
}

// Decoder is an optional external matching or clustering strategy.
// Implementations must treat the state as read-only.
type Decoder interface {
	Evaluate(state *engine.PuzzleState) (Evaluation, error)
}

// NopDecoder returns no parity and no clusters
type NopDecoder struct{}

// Evaluate implements Decoder
func (NopDecoder) Evaluate(*engine.PuzzleState) (Evaluation, error) {
	return Evaluation{}, nil
}

// DecoderFunc adapts a plain function to the Decoder interface
type DecoderFunc func(state *engine.PuzzleState) (Evaluation, error)

// Evaluate implements Decoder
func (f DecoderFunc) Evaluate(state *engine.PuzzleState) (Evaluation, error) {
	return f(state)
}
