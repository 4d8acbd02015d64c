// Package service provides the business logic layer for the rail puzzle.
//
// The service package implements:
//   - Multi-session game management
//   - Map selection from the catalog
//   - Interaction processing, the game timer and completion recording
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// MapCatalog provides the playable maps.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP/CLI) and
// the game engine. Each session keeps its own engine instance. All access to session
// state goes through one service mutex, so interactions on a board are applied one
// at a time.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	mapMgr, _ := config.NewManager("maps")
//	gameService := service.NewGameService(sessionMgr, mapMgr,
//		service.WithLeaderboard(leaderboard.NewMemoryStore()))
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{
//		PlayerName: "Anna",
//		Difficulty: engine.Easy,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Interact(ctx, info.ID, engine.Position{X: 1, Y: 2})
//
// Completion:
//
// The first interaction that leaves the board solved finishes the session. Its elapsed
// time is frozen and a leaderboard entry is recorded; further interactions and resets
// fail with ErrGameFinished.
package service
