// Package api provides the HTTP REST API for Decodoku sessions.
//
// The api package implements:
//   - Session management endpoints
//   - Puzzle input (presses, advance ticks, whole input ticks)
//   - Puzzle state, decoding graph and move history queries
//   - Configuration listing, lookup and creation
//   - WebSocket upgrade handling
//   - Prometheus metrics and a health check
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "qudit", "seed": 7})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Puzzle Input:
//   - POST /api/sessions/{id}/press - Press a cell ({"x": 3, "y": 4})
//   - POST /api/sessions/{id}/advance - Advance tick
//   - POST /api/sessions/{id}/step - Full tick ({"pressed": [...], "advance": false})
//   - POST /api/sessions/{id}/new-episode - Discard the episode and draw a new syndrome
//
// Puzzle State:
//   - GET /api/sessions/{id}/state - Current puzzle state
//   - GET /api/sessions/{id}/graph - Decoding graph (?original=true, ?clusters=false skips the decoder)
//   - GET /api/sessions/{id}/history - Moves of the current episode (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List available presets
//   - GET /api/configs/{name} - Get one preset
//   - POST /api/configs - Save a preset
//
// Other:
//   - GET /ws?session={id} - WebSocket stream of state updates and events
//   - GET /metrics - Prometheus metrics
//   - GET /healthz - Health check
//
// Every input endpoint answers with a service.StepResult and pushes the new
// state to the session's WebSocket clients.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status derived from the error:
// unknown sessions and presets map to 404, invalid presets to 400.
//
//	{
//	  "error": "error message"
//	}
package api
