// Package service provides the business logic layer for Decodoku.
//
// The service package implements:
//   - Multi-session puzzle management
//   - Input processing with event derivation
//   - Decoding graph rendering through an optional decoder
//   - Move history pagination
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager stores sessions; ConfigManager loads puzzle presets.
//
// Architecture:
//
// The service sits between the transports (HTTP, WebSocket, MCP) and the
// puzzle engine. Engine calls are serialized under one lock; the decoder runs
// on snapshots after the lock is released. Each operation records Prometheus
// metrics and an OpenTelemetry span.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Press(ctx, info.ID, engine.Position{X: 3, Y: 4})
package service
