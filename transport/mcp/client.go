package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/decodoku/game/engine"
	"github.com/wricardo/decodoku/game/render"
	"github.com/wricardo/decodoku/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Decodoku",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Decodoku - MCP Interface

This is a thin client that proxies all requests to the REST API server.

PUZZLE OBJECTIVE:
Random errors left charges on an LxL lattice of qudits. Move every bulk
charge off the lattice (onto the boundary columns or onto other charges
that cancel it). The episode resolves as soon as no bulk charge remains:
you win when the boundary charges you produced cancel the hidden parity.

AVAILABLE TOOLS:
- puzzle_state: Current lattice, selection and status prompt
- press_cell: Press one cell (select a charge, then its destination)
- advance: Cancel a selection, or start the next episode once resolved
- step: One full input tick (all held presses plus the advance flag)
- new_episode: Discard the episode and draw a new syndrome
- render_graph: Decoding graph with optional decoder clusters
- move_history: Moves made in the current episode
- create_session / get_session / list_sessions: Session management
- list_configs: Available presets (error rate p, modulus k, size L)
- puzzle_instructions: Complete rules`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new puzzle session with optional preset and seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the preset to use (optional)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for reproducible syndromes (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active puzzle sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Puzzle operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "puzzle_state",
		Description: "Get the current lattice, selection and status prompt",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handlePuzzleState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "press_cell",
		Description: "Press a lattice cell. The first press selects a bulk charge, the second moves it onto the pressed cell.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based, 0 and L-1 are boundary columns)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why you are pressing this cell",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handlePressCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "advance",
		Description: "Advance the puzzle: cancels a pending selection, and after a resolved episode starts the next one",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleAdvance)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Process one input tick: up to two held presses (selection first) and the advance flag",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"pressed": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"x": map[string]interface{}{"type": "integer"},
							"y": map[string]interface{}{"type": "integer"},
						},
					},
					"description": "Cells held during this tick",
				},
				"advance": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether advance is pressed",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_episode",
		Description: "Discard the current episode and draw a new syndrome",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleNewEpisode)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "render_graph",
		Description: "Describe the decoding graph of the current or original lattice",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"original": map[string]interface{}{
					"type":        "boolean",
					"description": "Build the graph from the syndrome as first drawn",
				},
				"clusters": map[string]interface{}{
					"type":        "boolean",
					"description": "Ask the decoder to color nodes by cluster (default true)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRenderGraph)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the moves of the current episode",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available puzzle presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "puzzle_instructions",
		Description: "Get complete puzzle instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handlePuzzleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configName, _ := args["config_name"].(string)

	body := map[string]interface{}{}
	if configName != "" {
		body["config_id"] = configName
	}
	if seed, ok := intArg(args, "seed"); ok {
		body["seed"] = seed
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatPuzzleState(session.PuzzleState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&result, "- %s (Config: %s, Created: %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handlePuzzleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.PuzzleState
	if err := c.apiCall("GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPuzzleState(&state)), nil
}

func (c *Client) handlePressCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var result service.StepResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/press"), engine.Position{X: x, Y: y}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.StepResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/advance"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	input := engine.Input{}
	input.Advance, _ = args["advance"].(bool)
	pressedRaw, _ := args["pressed"].([]interface{})
	for _, p := range pressedRaw {
		cell, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		x, okX := intArg(cell, "x")
		y, okY := intArg(cell, "y")
		if okX && okY {
			input.Pressed = append(input.Pressed, engine.Position{X: x, Y: y})
		}
	}

	var result service.StepResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/step"), input, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleNewEpisode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.StepResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/new-episode"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleRenderGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	original, _ := args["original"].(bool)
	clusters := true
	if v, ok := args["clusters"].(bool); ok {
		clusters = v
	}

	query := url.Values{}
	query.Set("original", fmt.Sprint(original))
	query.Set("clusters", fmt.Sprint(clusters))

	var view render.GraphView
	if err := c.apiCall("GET", sessionPath(sessionID, "/graph?"+query.Encode()), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGraph(&view)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	query := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		query.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		query.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall("GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&result, "• %s\n  %s\n  Lattice: %dx%d, k=%d, p=%.3f\n\n",
			config.ConfigID, config.Description, config.L, config.L, config.K, config.P)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handlePuzzleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Decodoku - Complete Instructions

PUZZLE OBJECTIVE:
Each episode starts from a syndrome: random errors with probability p
moved charge between neighbouring cells of an LxL lattice, with values
counted modulo k. Cells with a non-zero value are syndrome elements.
Remove every bulk charge. The moment the bulk is clear your boundary
charges are compared with the hidden parity of the errors.

LATTICE LEGEND:
  .      trivial bulk cell (value 0 mod k)
  3      bulk syndrome element with that residue
  |n|    boundary columns (x = 0 and x = L-1) with their residue
  *      currently selected cell

PRESSING CELLS:
1. Press a bulk cell holding a charge: it becomes the selection.
2. Press any other cell: the whole charge moves onto that cell and
   adds to it modulo k. Charges moved onto a boundary column leave
   the bulk for good.
3. Press advance to cancel a selection.

RESOLVING:
The boundaries turn green on success and red on failure, labelled with
the error parity (top) and your correction (bottom). Advance draws the
next syndrome.

STRATEGY:
• Pair up charges that sum to 0 mod k before pushing them outward
• Push isolated charges to the nearer boundary column
• render_graph shows which charges belong together; clusters=false skips the decoder

Good luck decoding!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatPuzzleState(session.PuzzleState))
}

func residue(v, k int) int {
	if k <= 0 {
		return v
	}
	r := v % k
	if r < 0 {
		r += k
	}
	return r
}

func formatPuzzleState(state *engine.PuzzleState) string {
	if state == nil {
		return "No puzzle state available"
	}

	selected := make(map[engine.Position]bool, len(state.Selection))
	for _, p := range state.Selection {
		selected[p] = true
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Episode: %d | k=%d | L=%d | Remaining charge: %d | Moves: %d\n\n",
		state.Episode, state.K, state.L, state.RemainingCharge, len(state.Moves))

	for y, row := range state.Lattice {
		for x, v := range row {
			r := residue(v, state.K)
			cell := "."
			switch {
			case selected[engine.Position{X: x, Y: y}]:
				cell = "*"
			case x == 0 || x == len(row)-1:
				cell = fmt.Sprintf("|%d|", r)
			case r != 0:
				cell = fmt.Sprint(r)
			}
			fmt.Fprintf(&result, "%4s", cell)
		}
		result.WriteString("\n")
	}

	switch state.Outcome {
	case engine.OutcomeWon:
		result.WriteString("\n🎉 " + engine.MessageSuccess)
	case engine.OutcomeLost:
		result.WriteString("\n💀 " + engine.MessageFailure)
	default:
		if state.Display.Status != "" {
			fmt.Fprintf(&result, "\nStatus: %s", state.Display.Status)
		}
	}

	return result.String()
}

func formatStepResult(result *service.StepResult) string {
	var out strings.Builder

	switch {
	case result.Resolved:
		out.WriteString("✓ Episode resolved\n")
	case result.Moved:
		out.WriteString("✓ Charge moved\n")
	}
	for _, ev := range result.Events {
		if ev.Position != nil {
			fmt.Fprintf(&out, "- %s at (%d,%d)\n", ev.Type, ev.Position.X, ev.Position.Y)
		} else {
			fmt.Fprintf(&out, "- %s\n", ev.Type)
		}
	}
	if result.Message != "" {
		fmt.Fprintf(&out, "Message: %s\n", result.Message)
	}
	out.WriteString("\n")
	out.WriteString(formatPuzzleState(result.State))

	return out.String()
}

func formatGraph(view *render.GraphView) string {
	var out strings.Builder

	source := "current"
	if view.Original {
		source = "original"
	}
	fmt.Fprintf(&out, "Decoding graph (%s lattice): %d nodes, %d edges\n", source, len(view.Nodes), len(view.Edges))
	if view.Parity != nil {
		fmt.Fprintf(&out, "Boundary parity: left=%d right=%d\n", view.Parity[0], view.Parity[1])
	}

	counts := map[string]int{}
	for _, n := range view.Nodes {
		counts[n.Color]++
	}
	for _, color := range []string{render.NodeColorError, render.NodeColorBoundary, render.NodeColorNeutral} {
		if counts[color] > 0 {
			fmt.Fprintf(&out, "  %s: %d\n", color, counts[color])
		}
	}

	for _, n := range view.Nodes {
		if n.Color != render.NodeColorError && n.Cluster == nil {
			continue
		}
		fmt.Fprintf(&out, "node %d at (%.1f,%.1f) %s", n.Index, n.Position.X, n.Position.Y, n.Color)
		if n.Label != "" {
			fmt.Fprintf(&out, " value=%s", n.Label)
		}
		if n.Cluster != nil {
			fmt.Fprintf(&out, " cluster=%d", *n.Cluster)
		}
		out.WriteString("\n")
	}

	return out.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var out strings.Builder
	fmt.Fprintf(&out, "Episode %d moves (page %d/%d, total %d):\n",
		history.Episode, history.Page, history.TotalPages, history.TotalMoves)

	for _, m := range history.Moves {
		fmt.Fprintf(&out, "#%d (%d,%d) -> (%d,%d) moved %d\n",
			m.Number, m.From.X, m.From.Y, m.To.X, m.To.Y, m.Moved)
	}
	if len(history.Moves) == 0 {
		out.WriteString("No moves yet\n")
	}

	return out.String()
}
