// Package mcp exposes Decodoku to AI agents over the Model Context Protocol.
//
// The Client registers MCP tools and forwards every call to the REST API,
// so agents and browsers share the same sessions.
//
// MCP Tools:
//   - create_session, get_session, list_sessions: session management
//   - puzzle_state: lattice as a grid of residues with the status prompt
//   - press_cell: select a bulk charge, then the cell to move it onto
//   - advance: cancel a selection or start the next episode
//   - step: one full input tick
//   - new_episode: draw a fresh syndrome
//   - render_graph: decoding graph summary, optionally clustered
//   - move_history: moves of the current episode
//   - list_configs: available presets
//   - puzzle_instructions: complete rules
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp with a JSON-RPC body handled by HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
