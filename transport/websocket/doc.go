// Package websocket streams Decodoku puzzle state to browsers and accepts
// cell presses back.
//
// Architecture:
//
// A central Hub owns every connection, grouped by session ID. Each client
// runs a read pump and a write pump; the hub loop alone mutates the
// registry.
//
// Message Protocol:
//
//   - Outgoing: {"session_id": "ab12", "event": "state_update", "puzzle_state": {...}}
//   - Incoming: {"action": "press", "x": 3, "y": 4}, {"action": "advance"},
//     {"action": "step", "pressed": [...], "advance": false} or
//     {"action": "new_episode"}
//
// Incoming messages are handed to the InputHandler installed with
// SetInputHandler; the API server wires it to the game service and
// broadcasts the resulting state.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetInputHandler(handler)
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
