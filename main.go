// Command decodoku starts the Decodoku puzzle server.
//
// It supports two commands:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, metrics and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from DECODOKU_* environment variables (optionally loaded from
// a .env file) and can be overridden with flags.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/decodoku/api"
	"github.com/wricardo/decodoku/game/config"
	"github.com/wricardo/decodoku/game/decoder/luadecoder"
	"github.com/wricardo/decodoku/game/render"
	"github.com/wricardo/decodoku/game/service"
	"github.com/wricardo/decodoku/game/session"
	"github.com/wricardo/decodoku/transport/mcp"
	"github.com/wricardo/decodoku/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Decodoku Server"
)

// Settings is the process configuration
type Settings struct {
	Addr          string        `env:"DECODOKU_ADDR" envDefault:"localhost:8080"`
	ConfigDir     string        `env:"DECODOKU_CONFIG_DIR" envDefault:"configs"`
	DefaultConfig string        `env:"DECODOKU_DEFAULT_CONFIG"`
	DecoderScript string        `env:"DECODOKU_DECODER_SCRIPT"`
	SessionTTL    time.Duration `env:"DECODOKU_SESSION_TTL" envDefault:"24h"`
	Debug         bool          `env:"DECODOKU_DEBUG"`
}

// loadSettings reads Settings from the environment
func loadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// services holds the wired components shared by both commands
type services struct {
	configs  *config.Manager
	sessions *session.Manager
	game     service.GameService
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	settings, err := loadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	if err := newCommand(settings).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newCommand builds the CLI. Flag defaults come from settings.
func newCommand(defaults Settings) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "addr", Value: defaults.Addr, Usage: "HTTP listen address"},
		&cli.StringFlag{Name: "config-dir", Value: defaults.ConfigDir, Usage: "Directory containing puzzle presets"},
		&cli.StringFlag{Name: "default-config", Value: defaults.DefaultConfig, Usage: "Preset used when a session names none"},
		&cli.StringFlag{Name: "decoder-script", Value: defaults.DecoderScript, Usage: "Lua script defining evaluate(state)"},
		&cli.DurationFlag{Name: "session-ttl", Value: defaults.SessionTTL, Usage: "Idle time before a session is dropped"},
		&cli.BoolFlag{Name: "debug", Value: defaults.Debug, Usage: "Enable debug logging"},
	}

	return &cli.Command{
		Name:    "decodoku",
		Usage:   AppName,
		Version: Version,
		Flags:   flags,
		Action:  serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run HTTP server with API, WebSocket, metrics and MCP endpoint (default)",
				Action: serveAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  mcpAction,
			},
		},
	}
}

// settingsFrom reads the effective settings off the parsed flags
func settingsFrom(cmd *cli.Command) Settings {
	return Settings{
		Addr:          cmd.String("addr"),
		ConfigDir:     cmd.String("config-dir"),
		DefaultConfig: cmd.String("default-config"),
		DecoderScript: cmd.String("decoder-script"),
		SessionTTL:    cmd.Duration("session-ttl"),
		Debug:         cmd.Bool("debug"),
	}
}

func setupLogging(debug bool) {
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	settings := settingsFrom(cmd)
	setupLogging(settings.Debug)
	log.Printf("Starting %s v%s (mode: serve)", AppName, Version)

	svc, err := initializeServices(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	return runHTTPServer(ctx, svc, settings)
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	settings := settingsFrom(cmd)
	setupLogging(settings.Debug)
	log.Printf("Starting %s v%s (mode: mcp)", AppName, Version)

	svc, err := initializeServices(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	return runStdioMCPWithInternalServer(svc, settings)
}

// initializeServices wires config and session managers, the decoder and the
// game service.
func initializeServices(settings Settings) (*services, error) {
	configManager, err := config.NewManager(settings.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if settings.DefaultConfig != "" {
		if err := configManager.SetDefault(settings.DefaultConfig); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
	}

	decoder, err := loadDecoder(settings.DecoderScript)
	if err != nil {
		return nil, err
	}

	sessionManager := session.NewManager()
	gameService := service.NewGameService(sessionManager, configManager, service.WithDecoder(decoder))

	return &services{
		configs:  configManager,
		sessions: sessionManager,
		game:     gameService,
	}, nil
}

// loadDecoder returns the Lua decoder for script, or the component
// clusterer when no script is configured
func loadDecoder(script string) (render.Decoder, error) {
	if script == "" {
		return render.ComponentClusterer{}, nil
	}
	d, err := luadecoder.Load(script)
	if err != nil {
		return nil, fmt.Errorf("failed to load decoder: %w", err)
	}
	log.Printf("Using Lua decoder %s", script)
	return d, nil
}

// baseURLFor turns a listen address into a URL clients can dial
func baseURLFor(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// newRouter mounts the API and the /mcp endpoint on one mux
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// mcpHandler answers JSON-RPC MCP messages over HTTP POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an
// /mcp proxy endpoint. SIGHUP reloads presets; SIGINT and SIGTERM shut down.
func runHTTPServer(ctx context.Context, svc *services, settings Settings) error {
	hub := websocket.NewHub()
	go hub.Run()

	apiServer := api.NewServer(svc.game, hub)
	mcpClient := mcp.NewClient(baseURLFor(settings.Addr))

	httpServer := &http.Server{
		Addr:         settings.Addr,
		Handler:      newRouter(apiServer, mcpClient),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(stop)
	defer signal.Stop(reload)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, svc.game, settings.SessionTTL)
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", settings.Addr)
		log.Printf("REST API: %s/api", baseURLFor(settings.Addr))
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", strings.TrimPrefix(baseURLFor(settings.Addr), "http://"))
		log.Printf("MCP endpoint: %s/mcp", baseURLFor(settings.Addr))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
loop:
	for {
		select {
		case <-reload:
			reloadConfigs(svc.configs, settings.DefaultConfig)
		case sig := <-stop:
			log.Printf("Received signal: %v. Shutting down...", sig)
			break loop
		case err, ok := <-serveErr:
			if ok {
				runErr = fmt.Errorf("HTTP server failed: %w", err)
			}
			break loop
		case <-ctx.Done():
			break loop
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return runErr
}

// reloadConfigs drops cached presets and restores the configured default
func reloadConfigs(configs *config.Manager, defaultConfig string) {
	if err := configs.RefreshCache(); err != nil {
		log.Printf("Failed to reload presets: %v", err)
		return
	}
	if defaultConfig != "" {
		if err := configs.SetDefault(defaultConfig); err != nil {
			log.Printf("Failed to restore default preset %s: %v", defaultConfig, err)
			return
		}
	}
	log.Println("Reloaded puzzle presets")
}

// cleanupInterval picks how often idle sessions are swept for a given TTL
func cleanupInterval(ttl time.Duration) time.Duration {
	interval := time.Hour
	if half := ttl / 2; half > 0 && half < interval {
		interval = half
	}
	return interval
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl. A non-positive ttl keeps sessions forever.
func sessionCleanupRoutine(ctx context.Context, game service.GameService, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	ticker := time.NewTicker(cleanupInterval(ttl))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := game.CleanupExpiredSessions(ctx, ttl); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server. It reuses an API
// already listening on settings.Addr; otherwise it starts an internal HTTP
// API on a random loopback port and targets that.
func runStdioMCPWithInternalServer(svc *services, settings Settings) error {
	externalURL := baseURLFor(settings.Addr)
	baseURL := externalURL
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/healthz")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		if resp != nil {
			resp.Body.Close()
		}
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run()

		httpServer := &http.Server{Handler: api.NewServer(svc.game, hub)}
		defer httpServer.Close()

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go sessionCleanupRoutine(ctx, svc.game, settings.SessionTTL)

		baseURL = "http://" + internalAddr
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
