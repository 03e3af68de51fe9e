package render

import "github.com/wricardo/decodoku/game/engine"

// ComponentClusterer groups highlighted bulk nodes into connected components
// of the decoding graph. It is a display aid, not a decoder: it never
// reports parity. Component ids wrap around the defect palette.
type ComponentClusterer struct{}

// Evaluate implements Decoder
func (ComponentClusterer) Evaluate(state *engine.PuzzleState) (Evaluation, error) {
	graph := state.Graph
	palette := len(state.DefectColors)
	if palette == 0 {
		return Evaluation{}, nil
	}

	adj := make([][]int, len(graph.Nodes))
	for _, e := range graph.Edges {
		if e.A < 0 || e.B < 0 || e.A >= len(adj) || e.B >= len(adj) {
			continue
		}
		adj[e.A] = append(adj[e.A], e.B)
		adj[e.B] = append(adj[e.B], e.A)
	}

	active := func(i int) bool {
		n := graph.Nodes[i]
		return !n.IsBoundary && n.Highlighted
	}

	clusters := make(map[int]int)
	next := 0
	for start := range graph.Nodes {
		if !active(start) {
			continue
		}
		if _, seen := clusters[start]; seen {
			continue
		}

		id := next % palette
		next++
		clusters[start] = id
		queue := []int{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range adj[cur] {
				if !active(nb) {
					continue
				}
				if _, seen := clusters[nb]; seen {
					continue
				}
				clusters[nb] = id
				queue = append(queue, nb)
			}
		}
	}

	if len(clusters) == 0 {
		return Evaluation{}, nil
	}
	return Evaluation{Clusters: clusters}, nil
}
