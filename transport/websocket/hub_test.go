package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/railpuzzle/game/engine"
	"github.com/wricardo/mcp-training/railpuzzle/game/leaderboard"
	"github.com/wricardo/mcp-training/railpuzzle/game/service"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
	}
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	case <-time.After(time.Second):
		t.Fatal("No message received within timeout")
	}
	return Message{}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "ab12")

	hub.registerClient(client)

	if !hub.sessions["ab12"][client] {
		t.Error("Client was not registered in session")
	}
	if hub.ClientCount("ab12") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("ab12"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "ab12")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["ab12"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// A second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	client1 := newTestClient(hub, "ab12")
	client2 := newTestClient(hub, "ab12")
	other := newTestClient(hub, "cd34")

	hub.registerClient(client1)
	hub.registerClient(client2)
	hub.registerClient(other)

	if hub.ClientCount("ab12") != 2 {
		t.Errorf("Expected 2 clients in session, got %d", hub.ClientCount("ab12"))
	}

	hub.unregisterClient(client1)
	if hub.ClientCount("ab12") != 1 || !hub.sessions["ab12"][client2] {
		t.Error("client2 should still be registered")
	}
	if hub.ClientCount("cd34") != 1 {
		t.Error("Other sessions must not be affected")
	}
}

func TestHubBroadcastOnlyReachesSession(t *testing.T) {
	hub := NewHub()
	watcher := newTestClient(hub, "ab12")
	bystander := newTestClient(hub, "cd34")
	hub.registerClient(watcher)
	hub.registerClient(bystander)

	hub.broadcastMessage(&Message{Type: EventBoardReset, SessionID: "ab12"})

	if msg := receive(t, watcher); msg.Type != EventBoardReset {
		t.Errorf("Expected %s, got %s", EventBoardReset, msg.Type)
	}
	select {
	case <-bystander.send:
		t.Error("Client of another session received the message")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "ab12", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{Type: EventBoardUpdate, SessionID: "ab12"})

	if hub.ClientCount("ab12") != 0 {
		t.Error("Expected slow client to be dropped")
	}
}

func TestBroadcastInteraction(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient(hub, "ab12")
	hub.register <- client

	after := engine.Cell{Position: engine.Position{X: 1, Y: 2}, Terrain: engine.StraightRail, Orientation: engine.Horizontal}
	hub.BroadcastInteraction(&service.InteractResult{
		SessionID: "ab12",
		Position:  after.Position,
		After:     after,
		Changed:   true,
		Solved:    true,
		Elapsed:   "01:35",
		Entry:     &leaderboard.Entry{ID: 3, Name: "Anna", TimeToComplete: "01:35"},
		Board:     &service.BoardState{Size: 5, Solved: true, Interactions: 12},
	})

	msg := receive(t, client)
	if msg.Type != EventBoardUpdate || msg.SessionID != "ab12" {
		t.Errorf("Unexpected message header %+v", msg)
	}
	if msg.Cell == nil || *msg.Cell != after {
		t.Errorf("Expected cell %+v, got %+v", after, msg.Cell)
	}
	if !msg.Solved || !msg.Changed || msg.Interactions != 12 || msg.Elapsed != "01:35" {
		t.Errorf("Unexpected verdict fields %+v", msg)
	}
	if msg.Data == nil {
		t.Error("Expected leaderboard entry in data")
	}
}

func TestBroadcastEvent(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("ab12", EventSessionDeleted, "bye")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "ab12" || message.Type != EventSessionDeleted || message.Data != "bye" {
			t.Errorf("Unexpected message %+v", message)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message received within timeout")
	}
}

func TestRunClosesClientsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := newTestClient(hub, "ab12")
	hub.register <- client
	cancel()
	<-stopped

	if hub.ClientCount("ab12") != 0 {
		t.Error("Expected all clients closed")
	}
}

func TestStoppedHubDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := 0; i < 200; i++ {
			hub.BroadcastEvent("ab12", "ping", i)
			hub.BroadcastBoard("ab12", EventBoardReset, nil)
			hub.BroadcastInteraction(&service.InteractResult{SessionID: "ab12"})
		}
		hub.leave(newTestClient(hub, "ab12"))
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Sends to a stopped hub blocked")
	}
}

func TestServeWSAfterStop(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "ws02")
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed by a stopped hub")
	}
	if hub.ClientCount("ws02") != 0 {
		t.Error("Stopped hub should not register clients")
	}
}

func TestWebSocketRoundTrip(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws01"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return hub.ClientCount("ws01") == 1 })

	hub.BroadcastBoard("ws01", EventBoardReset, &service.BoardState{Size: 7, Interactions: 0})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.Type != EventBoardReset || message.Board == nil || message.Board.Size != 7 {
		t.Errorf("Unexpected message %+v", message)
	}

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount("ws01") == 0 })
}
