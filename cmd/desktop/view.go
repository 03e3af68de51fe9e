package main

import (
	"log"

	"github.com/wricardo/decodoku/game/engine"
	"github.com/wricardo/decodoku/game/render"
)

// renderView draws graph, dropping back to the plain graph when the decoder
// fails. It returns the view to show and whether cluster coloring is still
// on. When even the plain render fails, prev is kept.
func renderView(adapter *render.Adapter, state *engine.PuzzleState, graph engine.GraphSnapshot, clusters bool, prev *render.GraphView) (*render.GraphView, bool) {
	view, err := adapter.Render(state, graph, clusters)
	if err == nil {
		return view, clusters
	}
	if clusters {
		log.Printf("Decoder failed, showing plain graph: %v", err)
		if view, err = adapter.Render(state, graph, false); err == nil {
			return view, false
		}
	}
	log.Printf("Failed to render graph, keeping previous picture: %v", err)
	return prev, false
}
