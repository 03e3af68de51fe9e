package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/decodoku/api"
	"github.com/wricardo/decodoku/game/render"
	"github.com/wricardo/decodoku/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Decodoku Server" {
		t.Errorf("Expected app name 'Decodoku Server', got %s", AppName)
	}
}

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := loadSettings()
		if err != nil {
			t.Fatalf("loadSettings failed: %v", err)
		}
		if s.Addr == "" || s.ConfigDir == "" {
			t.Errorf("Expected defaults, got %+v", s)
		}
		if s.SessionTTL != 24*time.Hour && os.Getenv("DECODOKU_SESSION_TTL") == "" {
			t.Errorf("Expected 24h TTL, got %v", s.SessionTTL)
		}
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("DECODOKU_ADDR", ":9191")
		t.Setenv("DECODOKU_CONFIG_DIR", "/tmp/presets")
		t.Setenv("DECODOKU_SESSION_TTL", "90m")
		t.Setenv("DECODOKU_DEBUG", "true")

		s, err := loadSettings()
		if err != nil {
			t.Fatalf("loadSettings failed: %v", err)
		}
		if s.Addr != ":9191" || s.ConfigDir != "/tmp/presets" || s.SessionTTL != 90*time.Minute || !s.Debug {
			t.Errorf("Unexpected settings %+v", s)
		}
	})

	t.Run("invalid duration", func(t *testing.T) {
		t.Setenv("DECODOKU_SESSION_TTL", "soon")
		if _, err := loadSettings(); err == nil {
			t.Error("Expected error for invalid duration")
		}
	})
}

func TestCommandFlags(t *testing.T) {
	var got Settings
	cmd := newCommand(Settings{Addr: "localhost:8080", ConfigDir: "configs", SessionTTL: time.Hour})
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		got = settingsFrom(c)
		return nil
	}

	err := cmd.Run(context.Background(), []string{"decodoku", "--addr", ":7070", "--default-config", "tiny", "--debug"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got.Addr != ":7070" || got.DefaultConfig != "tiny" || !got.Debug {
		t.Errorf("Flags not applied: %+v", got)
	}
	if got.ConfigDir != "configs" || got.SessionTTL != time.Hour {
		t.Errorf("Defaults not kept: %+v", got)
	}
}

func TestCommandHasSubcommands(t *testing.T) {
	cmd := newCommand(Settings{})
	names := map[string]bool{}
	for _, sub := range cmd.Commands {
		names[sub.Name] = true
	}
	if !names["serve"] || !names["mcp"] {
		t.Errorf("Expected serve and mcp commands, got %v", names)
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	svc, err := initializeServices(Settings{ConfigDir: "configs", DefaultConfig: "tiny"})
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if svc.game == nil || svc.sessions == nil || svc.configs == nil {
		t.Fatal("Expected all services to be initialized")
	}
	if svc.configs.GetDefault().Name != "tiny" {
		t.Errorf("Expected default preset 'tiny', got %s", svc.configs.GetDefault().Name)
	}

	info, err := svc.game.CreateSession(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if info.PuzzleState.L != 3 {
		t.Errorf("Expected the default preset to be used, got L=%d", info.PuzzleState.L)
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	if _, err := initializeServices(Settings{ConfigDir: "/non/existent/path"}); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestInitializeServices_UnknownDefault(t *testing.T) {
	if _, err := initializeServices(Settings{ConfigDir: t.TempDir(), DefaultConfig: "nope"}); err == nil {
		t.Error("Expected error for unknown default preset")
	}
}

func TestLoadDecoder(t *testing.T) {
	d, err := loadDecoder("")
	if err != nil {
		t.Fatalf("loadDecoder failed: %v", err)
	}
	if _, ok := d.(render.ComponentClusterer); !ok {
		t.Errorf("Expected ComponentClusterer without a script, got %T", d)
	}

	script := filepath.Join(t.TempDir(), "decoder.lua")
	if err := os.WriteFile(script, []byte("function evaluate(state) return nil, nil end"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadDecoder(script); err != nil {
		t.Errorf("Expected script to load, got %v", err)
	}

	if _, err := loadDecoder(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("Expected error for missing script")
	}
}

func TestBaseURLFor(t *testing.T) {
	tests := map[string]string{
		":8080":          "http://localhost:8080",
		"localhost:9090": "http://localhost:9090",
		"0.0.0.0:80":     "http://0.0.0.0:80",
	}
	for addr, want := range tests {
		if got := baseURLFor(addr); got != want {
			t.Errorf("baseURLFor(%q) = %q, want %q", addr, got, want)
		}
	}
}

func TestCleanupInterval(t *testing.T) {
	if got := cleanupInterval(24 * time.Hour); got != time.Hour {
		t.Errorf("Expected hourly sweeps for long TTLs, got %v", got)
	}
	if got := cleanupInterval(10 * time.Minute); got != 5*time.Minute {
		t.Errorf("Expected half the TTL, got %v", got)
	}
}

func TestMCPEndpoint(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	svc, err := initializeServices(Settings{ConfigDir: "configs"})
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	var router http.Handler
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, r)
	}))
	defer server.Close()

	router = newRouter(api.NewServer(svc.game, nil), mcp.NewClient(server.URL))

	t.Run("rejects GET", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/mcp")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", resp.StatusCode)
		}
	})

	t.Run("lists tools", func(t *testing.T) {
		body := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
		resp, err := http.Post(server.URL+"/mcp", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var out map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		raw, _ := json.Marshal(out["result"])
		for _, tool := range []string{"press_cell", "advance", "render_graph", "puzzle_state"} {
			if !strings.Contains(string(raw), tool) {
				t.Errorf("Expected tool %s in tools/list, got %s", tool, raw)
			}
		}
	})

	t.Run("api still mounted", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200 from /healthz, got %d", resp.StatusCode)
		}
	})
}
