// Package api provides the HTTP REST API of the rail puzzle.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Start a game: {"player_name", "difficulty", "map_id"?}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Session with timer, verdict and board
//   - DELETE /api/sessions/{id} - Remove a session
//
// Game Operations:
//   - GET /api/sessions/{id}/board - Current board
//   - POST /api/sessions/{id}/interact - Tap a cell: {"x": row, "y": column}
//   - POST /api/sessions/{id}/reset - Restore the starting board
//   - GET /api/sessions/{id}/check - Per-cell diagnostics
//   - GET /api/sessions/{id}/cells/{x}/{y} - Explain one cell
//
// Maps and Scores:
//   - GET /api/maps - Catalog listing
//   - GET /api/maps/{difficulty}/{id} - One map layout
//   - GET /api/leaderboard?difficulty=easy|hard&limit=N - Fastest completions
//
// Infrastructure:
//   - GET /ws?session={id} - Live board updates (see transport/websocket)
//   - GET /metrics - Prometheus metrics
//   - GET /healthz - Liveness probe
//
// Error Handling:
//
// Errors are returned as JSON with the matching status code:
//
//	{
//	  "error": "session not found: zz99",
//	  "code": 404
//	}
//
// Invalid coordinates and requests map to 400, unknown sessions and maps to 404,
// interactions on a solved game to 409 and corrupted boards to 500.
package api
