package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/decodoku/game/engine"
	"github.com/wricardo/decodoku/game/render"
)

// ErrConfigNotFound is returned by config managers for unknown presets
var ErrConfigNotFound = errors.New("configuration not found")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	adapter  *render.Adapter
	now      func() time.Time
	mu       sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithDecoder sets the decoder consulted when rendering clusters
func WithDecoder(d render.Decoder) Option {
	return func(s *gameServiceImpl) { s.adapter = render.NewAdapter(d) }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		adapter:  render.NewAdapter(nil),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		PuzzleState:    sess.Engine.GetState(),
		PuzzleConfig:   sess.Config,
	}
}

// CreateSession creates a new puzzle session. A non-nil seed overrides the
// preset's seed for this session only.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, seed *int64) (*SessionInfo, error) {
	_, span := getTracer().Start(ctx, "service.CreateSession",
		trace.WithAttributes(attribute.String("config", configName)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.PuzzleConfig
	if configName != "" {
		loaded, err := s.configs.LoadConfig(configName)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "config load failed")
			if errors.Is(err, ErrConfigNotFound) {
				return nil, s.configNotFound(configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
		config = loaded
	} else {
		config = s.configs.GetDefault()
	}

	if seed != nil {
		seeded := *config
		seeded.Seed = seed
		config = &seeded
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session create failed")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	episodesTotal.Inc()
	activeSessions.Inc()

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	span.SetAttributes(attribute.String("session", sess.ID))
	return s.sessionInfo(sess, configID), nil
}

// configNotFound lists the available presets alongside the failure
func (s *gameServiceImpl) configNotFound(configName string, err error) error {
	availableConfigs, listErr := s.configs.ListConfigs()
	if listErr == nil && len(availableConfigs) > 0 {
		var configIDs []string
		for _, cfg := range availableConfigs {
			configIDs = append(configIDs, cfg.ConfigID)
		}
		return fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
	}
	return fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	// access time is written, so readers take the write lock
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	activeSessions.Dec()
	return nil
}

// CleanupExpiredSessions removes sessions idle for longer than maxAge
func (s *gameServiceImpl) CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.sessions.CleanupExpiredSessions(maxAge)
	activeSessions.Sub(float64(removed))
	return removed
}

// Press selects a cell or, with a cell already held, moves its charge
func (s *gameServiceImpl) Press(ctx context.Context, sessionID string, pos engine.Position) (*StepResult, error) {
	return s.run(ctx, "press", sessionID, func(e *engine.PuzzleEngine) *engine.PuzzleState {
		return e.Press(pos)
	})
}

// Advance asserts the advance signal: cancel mid-episode, next episode once resolved
func (s *gameServiceImpl) Advance(ctx context.Context, sessionID string) (*StepResult, error) {
	return s.run(ctx, "advance", sessionID, func(e *engine.PuzzleEngine) *engine.PuzzleState {
		return e.Advance()
	})
}

// Step processes a raw input tick
func (s *gameServiceImpl) Step(ctx context.Context, sessionID string, input engine.Input) (*StepResult, error) {
	return s.run(ctx, "step", sessionID, func(e *engine.PuzzleEngine) *engine.PuzzleState {
		return e.Step(input)
	})
}

// NewEpisode discards the current lattice and generates a new one
func (s *gameServiceImpl) NewEpisode(ctx context.Context, sessionID string) (*StepResult, error) {
	return s.run(ctx, "new_episode", sessionID, func(e *engine.PuzzleEngine) *engine.PuzzleState {
		return e.NewEpisode()
	})
}

// run applies one engine operation under the service lock and derives events
// from the before and after snapshots.
func (s *gameServiceImpl) run(ctx context.Context, op, sessionID string, apply func(*engine.PuzzleEngine) *engine.PuzzleState) (*StepResult, error) {
	_, span := getTracer().Start(ctx, "service."+op,
		trace.WithAttributes(attribute.String("session", sessionID)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session not found")
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	start := time.Now()
	before := sess.Engine.GetState()
	after := apply(sess.Engine)
	stepDuration.Observe(time.Since(start).Seconds())
	stepTotal.WithLabelValues(op).Inc()

	events := s.extractEvents(before, after)
	result := &StepResult{
		Resolved:  after.Outcome != engine.OutcomePlaying,
		State:     after,
		Message:   after.Display.Status,
		Events:    events,
		Remaining: after.RemainingCharge,
	}
	for _, ev := range events {
		switch ev.Type {
		case EventMove:
			result.Moved = true
			movesTotal.Inc()
		case EventNewEpisode:
			episodesTotal.Inc()
		case EventVictory:
			outcomesTotal.WithLabelValues(string(engine.OutcomeWon)).Inc()
		case EventFailure:
			outcomesTotal.WithLabelValues(string(engine.OutcomeLost)).Inc()
		}
	}

	span.SetAttributes(
		attribute.Int("episode", after.Episode),
		attribute.Int("remaining_charge", after.RemainingCharge),
		attribute.Int("events", len(events)),
	)
	span.SetStatus(codes.Ok, "step processed")
	return result, nil
}

// GetPuzzleState returns the current puzzle state
func (s *gameServiceImpl) GetPuzzleState(ctx context.Context, sessionID string) (*engine.PuzzleState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// RenderGraph draws the decoding graph of a session
func (s *gameServiceImpl) RenderGraph(ctx context.Context, sessionID string, opts GraphOptions) (*render.GraphView, error) {
	_, span := getTracer().Start(ctx, "service.RenderGraph",
		trace.WithAttributes(
			attribute.String("session", sessionID),
			attribute.Bool("original", opts.Original),
			attribute.Bool("clusters", opts.Clusters),
		),
	)
	defer span.End()

	s.mu.RLock()
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.mu.RUnlock()
		span.RecordError(err)
		span.SetStatus(codes.Error, "session not found")
		return nil, fmt.Errorf("session not found: %w", err)
	}
	state := sess.Engine.GetState()
	graph := sess.Engine.GraphSnapshot(opts.Original)
	s.mu.RUnlock()

	// the decoder runs on a snapshot, outside the service lock
	view, err := s.adapter.Render(state, graph, opts.Clusters)
	if err != nil {
		decoderErrors.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return nil, fmt.Errorf("render graph: %w", err)
	}
	view.Original = opts.Original
	return view, nil
}

// GetMoveHistory returns paginated moves of the current episode
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	history := sess.Engine.GetMoveHistory()
	episode := sess.Engine.GetState().Episode

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "desc" {
		opts.Order = "asc"
	}

	total := len(history)
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveRecord
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}
	if moves == nil {
		moves = []engine.MoveRecord{}
	}

	return &HistoryResponse{
		Moves:       moves,
		Episode:     episode,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available puzzle configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific puzzle configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a puzzle configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// extractEvents compares snapshots taken around one engine operation
func (s *gameServiceImpl) extractEvents(before, after *engine.PuzzleState) []GameEvent {
	events := []GameEvent{}
	now := s.now()

	if after.Episode != before.Episode {
		events = append(events, GameEvent{
			Type:      EventNewEpisode,
			Message:   fmt.Sprintf("Episode %d started with %d defects", after.Episode, after.ErrorCount),
			Timestamp: now,
		})
		return appendOutcome(events, engine.OutcomePlaying, after, now)
	}

	for _, m := range after.Moves[len(before.Moves):] {
		to := m.To
		events = append(events, GameEvent{
			Type:      EventMove,
			Message:   fmt.Sprintf("Moved charge from (%d,%d) to (%d,%d)", m.From.X, m.From.Y, m.To.X, m.To.Y),
			Timestamp: now,
			Position:  &to,
		})
	}

	switch {
	case len(after.Selection) == 1 && !samePositions(before.Selection, after.Selection):
		pos := after.Selection[0]
		events = append(events, GameEvent{
			Type:      EventSelect,
			Message:   fmt.Sprintf("Selected (%d,%d)", pos.X, pos.Y),
			Timestamp: now,
			Position:  &pos,
		})
	case len(before.Selection) > 0 && len(after.Selection) == 0 && len(after.Moves) == len(before.Moves):
		events = append(events, GameEvent{
			Type:      EventCancel,
			Message:   "Selection cleared",
			Timestamp: now,
		})
	}

	return appendOutcome(events, before.Outcome, after, now)
}

// appendOutcome reports the first transition out of playing
func appendOutcome(events []GameEvent, prev engine.Outcome, after *engine.PuzzleState, now time.Time) []GameEvent {
	if prev != engine.OutcomePlaying || after.Outcome == engine.OutcomePlaying {
		return events
	}
	ev := GameEvent{Type: EventFailure, Message: engine.MessageFailure, Timestamp: now}
	if after.Outcome == engine.OutcomeWon {
		ev = GameEvent{Type: EventVictory, Message: engine.MessageSuccess, Timestamp: now}
	}
	return append(events, ev)
}

func samePositions(a, b []engine.Position) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
