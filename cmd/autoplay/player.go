package main

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

	"github.com/wricardo/decodoku/game/engine"
	"github.com/wricardo/decodoku/game/service"
)

// EpisodeReport summarizes one automatically played episode
type EpisodeReport struct {
	Episode   int
	Moves     int
	Outcome   engine.Outcome
	Remaining int
}

// Player drives a session through the REST API, sweeping all bulk charge
// onto one boundary column
type Player struct {
	baseURL    string
	httpClient *http.Client
	boundary   int
}

// NewPlayer creates a player for the server at baseURL. boundary selects
// the target column: 0 for x=0, 1 for x=L-1.
func NewPlayer(baseURL string, boundary int) *Player {
	return &Player{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		boundary:   boundary,
	}
}

// CreateSession starts a new session on the server
func (p *Player) CreateSession(ctx context.Context, preset string, seed *int64) (*service.SessionInfo, error) {
	body := map[string]interface{}{}
	if preset != "" {
		body["config_id"] = preset
	}
	if seed != nil {
		body["seed"] = *seed
	}

	var info service.SessionInfo
	if err := p.call(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &info, nil
}

// State fetches the current puzzle state of a session
func (p *Player) State(ctx context.Context, sessionID string) (*engine.PuzzleState, error) {
	var state engine.PuzzleState
	if err := p.call(ctx, "GET", p.sessionPath(sessionID, "state"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Press sends one cell press
func (p *Player) Press(ctx context.Context, sessionID string, pos engine.Position) (*service.StepResult, error) {
	var result service.StepResult
	if err := p.call(ctx, "POST", p.sessionPath(sessionID, "press"), pos, &result); err != nil {
		return nil, fmt.Errorf("press (%d,%d): %w", pos.X, pos.Y, err)
	}
	return &result, nil
}

// Advance sends one advance tick
func (p *Player) Advance(ctx context.Context, sessionID string) (*service.StepResult, error) {
	var result service.StepResult
	if err := p.call(ctx, "POST", p.sessionPath(sessionID, "advance"), nil, &result); err != nil {
		return nil, fmt.Errorf("advance: %w", err)
	}
	return &result, nil
}

// Solve plays the current episode to resolution. An episode that resolved
// on generation is reported without any presses.
func (p *Player) Solve(ctx context.Context, sessionID string) (*EpisodeReport, error) {
	state, err := p.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	report := &EpisodeReport{Episode: state.Episode}

	// drop any selection someone else left behind
	if len(state.Selection) > 0 && state.Outcome == engine.OutcomePlaying {
		result, err := p.Advance(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		state = result.State
	}

	plan := engine.SweepPlan(engine.LatticeFromRows(state.K, state.Lattice), p.boundary)
	if state.Outcome != engine.OutcomePlaying {
		plan = nil
	}

	for _, m := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := p.Press(ctx, sessionID, m.From); err != nil {
			return nil, err
		}
		result, err := p.Press(ctx, sessionID, m.To)
		if err != nil {
			return nil, err
		}
		state = result.State
		report.Moves++
	}

	report.Outcome = state.Outcome
	report.Remaining = state.RemainingCharge
	if report.Outcome == engine.OutcomePlaying {
		return report, fmt.Errorf("episode %d still holds %d bulk charge after %d moves", report.Episode, report.Remaining, report.Moves)
	}
	return report, nil
}

// Play solves episodes in a row, advancing between them
func (p *Player) Play(ctx context.Context, sessionID string, episodes int) ([]EpisodeReport, error) {
	reports := make([]EpisodeReport, 0, episodes)
	for i := 0; i < episodes; i++ {
		if i > 0 {
			if _, err := p.Advance(ctx, sessionID); err != nil {
				return reports, err
			}
		}
		report, err := p.Solve(ctx, sessionID)
		if err != nil {
			return reports, err
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

func (p *Player) sessionPath(sessionID, action string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + "/" + action
}

func (p *Player) call(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
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
