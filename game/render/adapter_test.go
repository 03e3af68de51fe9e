package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/decodoku/game/engine"
)

// testState builds a k=3, L=4 state with charge at cells (1,0) and (2,0)
func testState(t *testing.T) *engine.PuzzleState {
	t.Helper()
	l := engine.LatticeFromRows(3, [][]int{
		{0, 1, 2, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	g := engine.BuildDecodingGraph(4)
	g.Update(l)
	return &engine.PuzzleState{
		K:            3,
		L:            4,
		Lattice:      l.Rows(),
		DefectColors: []string{"#112233", "#445566"},
		Graph:        g.Snapshot(),
	}
}

func nodeIndex(t *testing.T, state *engine.PuzzleState, time, element int, boundary bool) int {
	t.Helper()
	for i, n := range state.Graph.Nodes {
		if n.Time == time && n.Element == element && n.IsBoundary == boundary {
			return i
		}
	}
	t.Fatalf("node (%d,%d,%v) not found", time, element, boundary)
	return -1
}

func TestRenderBaseColors(t *testing.T) {
	state := testState(t)
	view, err := NewAdapter(nil).RenderState(state, true)
	require.NoError(t, err)
	require.Len(t, view.Nodes, len(state.Graph.Nodes))
	assert.Len(t, view.Edges, len(state.Graph.Edges))
	assert.Nil(t, view.Parity)

	charged := nodeIndex(t, state, 0, 0, false)
	assert.Equal(t, NodeColorError, view.Nodes[charged].Color)
	assert.Equal(t, "1", view.Nodes[charged].Label)
	assert.Equal(t, "#ff0000", view.Nodes[charged].Hex)

	quiet := nodeIndex(t, state, 2, 1, false)
	assert.Equal(t, NodeColorNeutral, view.Nodes[quiet].Color)
	assert.Empty(t, view.Nodes[quiet].Label)

	b := nodeIndex(t, state, 0, 1, true)
	assert.Equal(t, NodeColorBoundary, view.Nodes[b].Color)
	assert.Empty(t, view.Nodes[b].Label)
	assert.Equal(t, state.Graph.Positions[b], view.Nodes[b].Position)
}

func TestRenderQubitHasNoValueLabels(t *testing.T) {
	state := testState(t)
	state.K = 2
	view, err := NewAdapter(nil).RenderState(state, false)
	require.NoError(t, err)
	for _, n := range view.Nodes {
		assert.Empty(t, n.Label)
	}
}

func TestRenderAppliesDecoder(t *testing.T) {
	state := testState(t)
	a := nodeIndex(t, state, 0, 0, false)
	b := nodeIndex(t, state, 0, 1, false)

	decoder := DecoderFunc(func(s *engine.PuzzleState) (Evaluation, error) {
		parity := [2]int{2, 1}
		return Evaluation{Parity: &parity, Clusters: map[int]int{a: 0, b: 1}}, nil
	})

	view, err := NewAdapter(decoder).RenderState(state, true)
	require.NoError(t, err)
	assert.Equal(t, "#112233", view.Nodes[a].Color)
	assert.Equal(t, "#445566", view.Nodes[b].Hex)
	require.NotNil(t, view.Nodes[b].Cluster)
	assert.Equal(t, 1, *view.Nodes[b].Cluster)

	b0 := nodeIndex(t, state, 0, 0, true)
	b1 := nodeIndex(t, state, 0, 1, true)
	assert.Equal(t, "2", view.Nodes[b0].Label)
	assert.Equal(t, "1", view.Nodes[b1].Label)
}

func TestRenderSkipsDecoderWithoutClusters(t *testing.T) {
	called := false
	decoder := DecoderFunc(func(*engine.PuzzleState) (Evaluation, error) {
		called = true
		return Evaluation{}, nil
	})

	_, err := NewAdapter(decoder).RenderState(testState(t), false)
	require.NoError(t, err)
	assert.False(t, called)
}

func TestRenderDecoderErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewAdapter(DecoderFunc(func(*engine.PuzzleState) (Evaluation, error) {
		return Evaluation{}, boom
	})).RenderState(testState(t), true)
	assert.ErrorIs(t, err, boom)

	_, err = NewAdapter(DecoderFunc(func(*engine.PuzzleState) (Evaluation, error) {
		return Evaluation{Clusters: map[int]int{0: 7}}, nil
	})).RenderState(testState(t), true)
	assert.ErrorIs(t, err, ErrClusterOutOfRange)

	_, err = NewAdapter(DecoderFunc(func(*engine.PuzzleState) (Evaluation, error) {
		return Evaluation{Clusters: map[int]int{500: 0}}, nil
	})).RenderState(testState(t), true)
	assert.ErrorIs(t, err, ErrNodeOutOfRange)
}

func TestRenderDoesNotMutateState(t *testing.T) {
	state := testState(t)
	before := state.Graph.Nodes[0]
	decoder := DecoderFunc(func(*engine.PuzzleState) (Evaluation, error) {
		return Evaluation{Clusters: map[int]int{0: 1}}, nil
	})

	_, err := NewAdapter(decoder).RenderState(state, true)
	require.NoError(t, err)
	assert.Equal(t, before, state.Graph.Nodes[0])
	assert.Equal(t, 1, state.Lattice[0][1])
}

func TestResolveHex(t *testing.T) {
	assert.Equal(t, "#6495ed", ResolveHex("cornflowerblue"))
	assert.Equal(t, "#ffa500", ResolveHex("Orange"))
	assert.Equal(t, "#abcdef", ResolveHex("#ABCDEF"))
	assert.Empty(t, ResolveHex("not-a-color"))
}
