// Package mcp exposes the rail puzzle to AI agents over the Model Context Protocol.
//
// The Client is a thin MCP front end over the REST API: every tool call is
// forwarded as an HTTP request and the JSON response is rendered as text, with
// boards drawn by the render package.
//
// MCP Tools:
//   - create_session: start a game for a player on an easy or hard map
//   - list_sessions, get_session: inspect running games
//   - board_state: board drawing with unsatisfied cells marked
//   - interact: tap one cell (x is the row, y the column)
//   - reset_board: restore the starting board, the clock keeps running
//   - check_board: per-cell diagnostics
//   - describe_cell: what a cell connects to and what the next tap does
//   - list_maps, leaderboard, game_instructions
//
// Transport Modes:
//
// The server returned by GetMCPServer can be served over stdio for local MCP
// clients or mounted behind an HTTP endpoint by the serve command.
package mcp
