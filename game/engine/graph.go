package engine

type nodeKey struct {
	time     int
	element  int
	boundary bool
}

// DecodingGraph is the space-time graph over bulk cells plus one node per
// boundary column. Nodes get a dense index at construction time.
type DecodingGraph struct {
	Nodes     []GraphNode
	Edges     []GraphEdge
	Positions []Point
	States    []NodeState

	index     map[nodeKey]int
	adjacency [][]int
}

// BuildDecodingGraph builds the graph for an L x L lattice. Node order is
// bulk cells column by column, then the element-0 and element-1 boundaries.
func BuildDecodingGraph(size int) *DecodingGraph {
	g := &DecodingGraph{index: make(map[nodeKey]int)}
	d := size - 1

	for x := 1; x < size-1; x++ {
		for y := 0; y < size; y++ {
			e := x - 1
			t := size - 1 - y
			g.addNode(GraphNode{Time: t, Element: e}, Point{X: float64(e), Y: float64(-t)})
		}
	}
	middle := -float64(size-1) / 2
	g.addNode(GraphNode{Time: 0, Element: 0, IsBoundary: true}, Point{X: -2, Y: middle})
	g.addNode(GraphNode{Time: 0, Element: 1, IsBoundary: true}, Point{X: float64(d), Y: middle})

	// boundary edges
	for t := 0; t < size; t++ {
		g.connect(nodeKey{0, 0, true}, nodeKey{t, 0, false})
		g.connect(nodeKey{0, 1, true}, nodeKey{t, d - 2, false})
	}
	// space-like edges
	for t := 0; t < size; t++ {
		for x := 1; x < size-2; x++ {
			e := x - 1
			g.connect(nodeKey{t, e, false}, nodeKey{t, e + 1, false})
		}
	}
	// time-like edges
	for t := 0; t < size-1; t++ {
		for x := 1; x < size-1; x++ {
			e := x - 1
			g.connect(nodeKey{t, e, false}, nodeKey{t + 1, e, false})
		}
	}

	g.States = make([]NodeState, len(g.Nodes))
	return g
}

func (g *DecodingGraph) addNode(n GraphNode, pos Point) {
	g.index[nodeKey{n.Time, n.Element, n.IsBoundary}] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	g.Positions = append(g.Positions, pos)
	g.adjacency = append(g.adjacency, nil)
}

// connect adds an edge when both endpoints exist; tiny lattices have no bulk
// to attach the boundaries to.
func (g *DecodingGraph) connect(a, b nodeKey) {
	ia, okA := g.index[a]
	ib, okB := g.index[b]
	if !okA || !okB {
		return
	}
	g.Edges = append(g.Edges, GraphEdge{A: ia, B: ib})
	g.adjacency[ia] = append(g.adjacency[ia], ib)
	g.adjacency[ib] = append(g.adjacency[ib], ia)
}

// NodeIndex looks a node up by its attributes
func (g *DecodingGraph) NodeIndex(time, element int, boundary bool) (int, bool) {
	i, ok := g.index[nodeKey{time, element, boundary}]
	return i, ok
}

// Neighbors returns the indices adjacent to node i
func (g *DecodingGraph) Neighbors(i int) []int {
	if i < 0 || i >= len(g.adjacency) {
		return nil
	}
	return g.adjacency[i]
}

// Cell maps a bulk node to its lattice cell. The time coordinate is read
// straight off as the row, matching how the graph is refreshed.
func (g *DecodingGraph) Cell(i int) (Position, bool) {
	if i < 0 || i >= len(g.Nodes) || g.Nodes[i].IsBoundary {
		return Position{}, false
	}
	n := g.Nodes[i]
	return Position{X: n.Element + 1, Y: n.Time}, true
}

// Update refreshes highlighted/value from the lattice without rebuilding.
func (g *DecodingGraph) Update(l *Lattice) {
	for i := range g.Nodes {
		g.Nodes[i].Highlighted = false
		if l.K != 2 {
			g.Nodes[i].Value = 0
		}
	}
	for i := range g.Nodes {
		node := &g.Nodes[i]
		if node.IsBoundary {
			g.States[i] = NodeBoundary
			continue
		}
		x, y := node.Element+1, node.Time
		if r := l.Residue(x, y); r > 0 {
			node.Highlighted = true
			node.Value = r
			g.States[i] = NodeError
		} else {
			g.States[i] = NodeNeutral
		}
	}
}

// Snapshot copies the graph so callers can read it without holding the engine
func (g *DecodingGraph) Snapshot() GraphSnapshot {
	s := GraphSnapshot{
		Nodes:     make([]GraphNode, len(g.Nodes)),
		Edges:     make([]GraphEdge, len(g.Edges)),
		Positions: make([]Point, len(g.Positions)),
		States:    make([]NodeState, len(g.States)),
	}
	copy(s.Nodes, g.Nodes)
	copy(s.Edges, g.Edges)
	copy(s.Positions, g.Positions)
	copy(s.States, g.States)
	return s
}

// Clone returns an independent graph sharing no mutable state
func (g *DecodingGraph) Clone() *DecodingGraph {
	s := g.Snapshot()
	c := &DecodingGraph{
		Nodes:     s.Nodes,
		Edges:     s.Edges,
		Positions: s.Positions,
		States:    s.States,
		index:     make(map[nodeKey]int, len(g.index)),
		adjacency: make([][]int, len(g.adjacency)),
	}
	for k, v := range g.index {
		c.index[k] = v
	}
	for i, adj := range g.adjacency {
		c.adjacency[i] = append([]int(nil), adj...)
	}
	return c
}
