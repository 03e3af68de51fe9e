package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/decodoku/game/config"
	"github.com/wricardo/decodoku/game/engine"
	"github.com/wricardo/decodoku/game/render"
	"github.com/wricardo/decodoku/game/service"
	"github.com/wricardo/decodoku/game/session"
	"github.com/wricardo/decodoku/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string, seed *int64) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error
	CleanupFunc       func(ctx context.Context, maxAge time.Duration) int

	// Puzzle Input
	PressFunc      func(ctx context.Context, sessionID string, pos engine.Position) (*service.StepResult, error)
	AdvanceFunc    func(ctx context.Context, sessionID string) (*service.StepResult, error)
	StepFunc       func(ctx context.Context, sessionID string, input engine.Input) (*service.StepResult, error)
	NewEpisodeFunc func(ctx context.Context, sessionID string) (*service.StepResult, error)

	// Puzzle State
	GetPuzzleStateFunc func(ctx context.Context, sessionID string) (*engine.PuzzleState, error)
	RenderGraphFunc    func(ctx context.Context, sessionID string, opts service.GraphOptions) (*render.GraphView, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.PuzzleConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.PuzzleConfig) error
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string, seed *int64) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName, seed)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		ConfigName: configName,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		ConfigName: "test-config",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) int {
	if m.CleanupFunc != nil {
		return m.CleanupFunc(ctx, maxAge)
	}
	return 0
}

func (m *MockGameService) Press(ctx context.Context, sessionID string, pos engine.Position) (*service.StepResult, error) {
	if m.PressFunc != nil {
		return m.PressFunc(ctx, sessionID, pos)
	}
	return stepResult(), nil
}

func (m *MockGameService) Advance(ctx context.Context, sessionID string) (*service.StepResult, error) {
	if m.AdvanceFunc != nil {
		return m.AdvanceFunc(ctx, sessionID)
	}
	return stepResult(), nil
}

func (m *MockGameService) Step(ctx context.Context, sessionID string, input engine.Input) (*service.StepResult, error) {
	if m.StepFunc != nil {
		return m.StepFunc(ctx, sessionID, input)
	}
	return stepResult(), nil
}

func (m *MockGameService) NewEpisode(ctx context.Context, sessionID string) (*service.StepResult, error) {
	if m.NewEpisodeFunc != nil {
		return m.NewEpisodeFunc(ctx, sessionID)
	}
	return stepResult(), nil
}

func (m *MockGameService) GetPuzzleState(ctx context.Context, sessionID string) (*engine.PuzzleState, error) {
	if m.GetPuzzleStateFunc != nil {
		return m.GetPuzzleStateFunc(ctx, sessionID)
	}
	return &engine.PuzzleState{Episode: 1, K: 2, L: 4}, nil
}

func (m *MockGameService) RenderGraph(ctx context.Context, sessionID string, opts service.GraphOptions) (*render.GraphView, error) {
	if m.RenderGraphFunc != nil {
		return m.RenderGraphFunc(ctx, sessionID, opts)
	}
	return &render.GraphView{Original: opts.Original}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Moves:    []engine.MoveRecord{},
		Episode:  1,
		Page:     opts.Page,
		PageSize: opts.Limit,
	}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.PuzzleConfig{
		Name:        configName,
		Description: "Test config",
		P:           0.1,
		K:           2,
		L:           10,
	}, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

func stepResult() *service.StepResult {
	return &service.StepResult{
		State:   &engine.PuzzleState{Episode: 1, K: 2, L: 4, Outcome: engine.OutcomePlaying},
		Message: engine.PromptChooseElement,
		Events:  []service.GameEvent{},
	}
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func notFound(id string) error {
	return fmt.Errorf("session not found: %w", session.ErrSessionNotFound)
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default config",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, seed *int64) (*service.SessionInfo, error) {
					if configName != "" || seed != nil {
						t.Errorf("Expected empty config and seed, got %q %v", configName, seed)
					}
					return &service.SessionInfo{ID: "ab12", ConfigName: "classic", CreatedAt: time.Now()}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" {
					t.Errorf("Expected session ID ab12, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with config and seed",
			requestBody: map[string]interface{}{"config_id": "qudit", "seed": 7},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, seed *int64) (*service.SessionInfo, error) {
					if configName != "qudit" {
						t.Errorf("Expected config 'qudit', got %s", configName)
					}
					if seed == nil || *seed != 7 {
						t.Errorf("Expected seed 7, got %v", seed)
					}
					return &service.SessionInfo{ID: "cd34", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Deprecated config_name",
			requestBody: map[string]string{"config_name": "tiny"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, seed *int64) (*service.SessionInfo, error) {
					if configName != "tiny" {
						t.Errorf("Expected config 'tiny', got %s", configName)
					}
					return &service.SessionInfo{ID: "ef56", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Unknown config",
			requestBody: map[string]string{"config_id": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, seed *int64) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("config 'nope' not found: %w", service.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, seed *int64) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now},
				{ID: "mid", CreatedAt: now.Add(-90 * time.Minute), LastAccessedAt: now.Add(-30 * time.Minute)},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		name      string
		query     string
		wantFirst string
		wantCount int
	}{
		{name: "default sort", query: "", wantFirst: "new", wantCount: 3},
		{name: "created ascending", query: "?sort=created&order=asc", wantFirst: "old", wantCount: 3},
		{name: "limit", query: "?limit=1", wantFirst: "new", wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)
			if resp.Count != tt.wantCount || len(resp.Sessions) != tt.wantCount {
				t.Errorf("Expected %d sessions, got %d", tt.wantCount, resp.Count)
			}
			if resp.Total != 3 {
				t.Errorf("Expected total 3, got %d", resp.Total)
			}
			if resp.Sessions[0].ID != tt.wantFirst {
				t.Errorf("Expected first session %s, got %s", tt.wantFirst, resp.Sessions[0].ID)
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, notFound(sessionID)
			}
			return &service.SessionInfo{ID: sessionID, ConfigName: "classic"}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return notFound(sessionID)
			}
			return nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/sessions/ab12", http.StatusOK},
		{"GET", "/api/sessions/zz99", http.StatusNotFound},
		{"DELETE", "/api/sessions/ab12", http.StatusOK},
		{"DELETE", "/api/sessions/zz99", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

// Puzzle Input Tests

func TestPress(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name: "valid press",
			body: map[string]int{"x": 2, "y": 3},
			setupMock: func(m *MockGameService) {
				m.PressFunc = func(ctx context.Context, sessionID string, pos engine.Position) (*service.StepResult, error) {
					if pos != (engine.Position{X: 2, Y: 3}) {
						t.Errorf("Expected press at (2,3), got %+v", pos)
					}
					result := stepResult()
					result.Moved = true
					return result, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid body",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown session",
			body: map[string]int{"x": 0, "y": 0},
			setupMock: func(m *MockGameService) {
				m.PressFunc = func(ctx context.Context, sessionID string, pos engine.Position) (*service.StepResult, error) {
					return nil, notFound(sessionID)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}
			server := setupTestServer(mockService)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/press", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAdvanceStepAndNewEpisode(t *testing.T) {
	var gotInput engine.Input
	calls := map[string]int{}
	mockService := &MockGameService{
		AdvanceFunc: func(ctx context.Context, sessionID string) (*service.StepResult, error) {
			calls["advance"]++
			return stepResult(), nil
		},
		StepFunc: func(ctx context.Context, sessionID string, input engine.Input) (*service.StepResult, error) {
			calls["step"]++
			gotInput = input
			return stepResult(), nil
		},
		NewEpisodeFunc: func(ctx context.Context, sessionID string) (*service.StepResult, error) {
			calls["new_episode"]++
			result := stepResult()
			result.Events = []service.GameEvent{{Type: service.EventNewEpisode}}
			return result, nil
		},
	}
	server := setupTestServer(mockService)

	requests := []struct {
		path string
		body interface{}
	}{
		{"/api/sessions/ab12/advance", nil},
		{"/api/sessions/ab12/step", engine.Input{Pressed: []engine.Position{{X: 1, Y: 0}, {X: 2, Y: 0}}, Advance: true}},
		{"/api/sessions/ab12/new-episode", nil},
	}
	for _, r := range requests {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", r.path, r.body))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", r.path, w.Code)
		}
	}

	if calls["advance"] != 1 || calls["step"] != 1 || calls["new_episode"] != 1 {
		t.Errorf("Unexpected calls %v", calls)
	}
	if len(gotInput.Pressed) != 2 || !gotInput.Advance {
		t.Errorf("Step input not decoded: %+v", gotInput)
	}
}

// Puzzle State Tests

func TestGetPuzzleState(t *testing.T) {
	mockService := &MockGameService{
		GetPuzzleStateFunc: func(ctx context.Context, sessionID string) (*engine.PuzzleState, error) {
			if sessionID != "ab12" {
				return nil, notFound(sessionID)
			}
			return &engine.PuzzleState{Episode: 4, K: 3, L: 5, RemainingCharge: 2}, nil
		},
	}
	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var state engine.PuzzleState
	parseResponse(t, w, &state)
	if state.Episode != 4 || state.RemainingCharge != 2 {
		t.Errorf("Unexpected state %+v", state)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/nope/state", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetGraph(t *testing.T) {
	var gotOpts service.GraphOptions
	mockService := &MockGameService{
		RenderGraphFunc: func(ctx context.Context, sessionID string, opts service.GraphOptions) (*render.GraphView, error) {
			gotOpts = opts
			if sessionID == "bad" {
				return nil, fmt.Errorf("render graph: %w", render.ErrClusterOutOfRange)
			}
			return &render.GraphView{
				Nodes:    []render.NodeStyle{{Index: 0, Color: render.NodeColorBoundary}},
				Original: opts.Original,
			}, nil
		},
	}
	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/graph?original=true&clusters=1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !gotOpts.Original || !gotOpts.Clusters {
		t.Errorf("Expected both options set, got %+v", gotOpts)
	}
	var view render.GraphView
	parseResponse(t, w, &view)
	if len(view.Nodes) != 1 || !view.Original {
		t.Errorf("Unexpected view %+v", view)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/graph", nil))
	if gotOpts.Original || !gotOpts.Clusters {
		t.Errorf("Expected the live graph with clusters by default, got %+v", gotOpts)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/graph?clusters=false", nil))
	if gotOpts.Clusters {
		t.Errorf("Expected clusters=false to skip the decoder, got %+v", gotOpts)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/graph?clusters=maybe", nil))
	if !gotOpts.Clusters {
		t.Errorf("Expected a malformed flag to keep the default, got %+v", gotOpts)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/bad/graph?clusters=true", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 for decoder failure, got %d", w.Code)
	}
}

func TestGetGraphConsultsDecoderByDefault(t *testing.T) {
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	calls := 0
	decoder := render.DecoderFunc(func(state *engine.PuzzleState) (render.Evaluation, error) {
		calls++
		return render.Evaluation{Parity: &[2]int{1, 0}}, nil
	})
	svc := service.NewGameService(session.NewManager(), configs, service.WithDecoder(decoder))
	server := NewServer(svc, nil)

	info, err := svc.CreateSession(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/"+info.ID+"/graph", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if calls != 1 {
		t.Fatalf("Expected the decoder to be consulted once, got %d calls", calls)
	}
	var view render.GraphView
	parseResponse(t, w, &view)
	if view.Parity == nil || view.Parity[0] != 1 {
		t.Errorf("Expected decoder parity in the view, got %+v", view.Parity)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/"+info.ID+"/graph?clusters=false", nil))
	if w.Code != http.StatusOK || calls != 1 {
		t.Errorf("Expected clusters=false to skip the decoder, got status %d and %d calls", w.Code, calls)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
		wantOrder string
	}{
		{name: "defaults", query: "", wantPage: 1, wantLimit: 20, wantOrder: "desc"},
		{name: "explicit", query: "?page=2&limit=5&order=asc", wantPage: 2, wantLimit: 5, wantOrder: "asc"},
		{name: "garbage ignored", query: "?page=x&limit=-1&order=up", wantPage: 1, wantLimit: 20, wantOrder: "desc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			mockService := &MockGameService{
				GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Moves: []engine.MoveRecord{}}, nil
				},
			}
			server := setupTestServer(mockService)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/history"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit || got.Order != tt.wantOrder {
				t.Errorf("Unexpected options %+v", got)
			}
		})
	}
}

// Configuration Tests

func TestConfigs(t *testing.T) {
	var saved *engine.PuzzleConfig
	mockService := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "classic", Name: "classic", K: 2, L: 10}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
			if configName != "classic" {
				return nil, fmt.Errorf("config %s: %w", configName, service.ErrConfigNotFound)
			}
			return engine.DefaultConfig(), nil
		},
		SaveConfigFunc: func(ctx context.Context, configName string, config *engine.PuzzleConfig) error {
			if err := engine.ValidateConfig(config); err != nil {
				return err
			}
			saved = config
			return nil
		},
	}
	server := setupTestServer(mockService)

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))
		var configs []service.ConfigInfo
		parseResponse(t, w, &configs)
		if len(configs) != 1 || configs[0].ConfigID != "classic" {
			t.Errorf("Unexpected configs %+v", configs)
		}
	})

	t.Run("get with extension", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs/classic.json", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs/nope", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("create", func(t *testing.T) {
		body := engine.PuzzleConfig{Name: "custom", P: 0.05, K: 4, L: 6}
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/configs", body))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		if saved == nil || saved.K != 4 {
			t.Errorf("Expected config to be saved, got %+v", saved)
		}
	})

	t.Run("create invalid", func(t *testing.T) {
		body := engine.PuzzleConfig{Name: "broken", P: 0.05, K: 1, L: 6}
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/configs", body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("create without name", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/configs", map[string]int{"k": 2}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestHealthAndMetrics(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("Expected default Prometheus collectors in /metrics")
	}
}

func TestClientInput(t *testing.T) {
	pressed := make(chan engine.Position, 1)
	mockService := &MockGameService{
		PressFunc: func(ctx context.Context, sessionID string, pos engine.Position) (*service.StepResult, error) {
			pressed <- pos
			return stepResult(), nil
		},
	}
	server := setupTestServer(mockService)

	server.handleClientInput("ab12", websocket.ClientMessage{Action: websocket.ActionPress, X: 1, Y: 2})

	select {
	case pos := <-pressed:
		if pos != (engine.Position{X: 1, Y: 2}) {
			t.Errorf("Unexpected press %+v", pos)
		}
	case <-time.After(time.Second):
		t.Fatal("Press was not dispatched")
	}

	// unknown actions are ignored
	server.handleClientInput("ab12", websocket.ClientMessage{Action: "jump"})
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, notFound(sessionID)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "Valid session",
			queryParams: "?session=ab12",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return &service.SessionInfo{ID: sessionID, ConfigName: "classic"}, nil
				}
			},
			expectedStatus: http.StatusSwitchingProtocols,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/ws"+tt.queryParams, nil)

			if tt.expectedStatus == http.StatusSwitchingProtocols {
				req.Header.Set("Upgrade", "websocket")
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
				req.Header.Set("Sec-WebSocket-Version", "13")
			}

			server.handleWebSocket(w, req)

			// httptest.ResponseRecorder cannot be hijacked, so an attempted
			// upgrade surfaces as a 500
			if tt.expectedStatus == http.StatusSwitchingProtocols && w.Code == http.StatusInternalServerError {
				return
			}

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}
