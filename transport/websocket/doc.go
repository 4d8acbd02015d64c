// Package websocket pushes live board updates to watching clients.
//
// A central Hub owns every connection. Clients attach to one session with
// /ws?session=<id> and receive a JSON Message whenever that session changes:
//   - board_update after an interaction, with the affected cell and the verdict
//   - board_reset after the board was restored
//   - session_deleted when the session goes away
//
// The socket is receive-only for clients; interactions go through the REST API.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithLogger(logger))
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Register, unregister and broadcast requests are processed by the Run loop one
// at a time. Clients that cannot keep up with their send buffer are dropped.
package websocket
