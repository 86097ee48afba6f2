package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"flipgrid-server/config"
	"flipgrid-server/lobby"
	"flipgrid-server/ws"
)

// setupTestServer creates a test HTTP server with the full stack (no store).
func setupTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()

	cfg := &config.Config{
		GridRows:           3,
		GridCols:           3,
		ExtraFlipAllowance: 10,
		MaxPlayersPerRoom:  4,
		MaxNameLength:      24,
		WSPort:             0, // not used with httptest
	}

	lby := lobby.New(cfg, nil)
	hub := ws.NewHub(cfg, lby)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r)
	})

	server := httptest.NewServer(mux)
	cleanup := func() {
		server.Close()
		cancel()
	}
	return server, cleanup
}

// connectWS creates a WebSocket connection to the test server.
func connectWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	return conn
}

// readMsg reads a JSON message from the WebSocket and returns it as a map.
func readMsg(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	return msg
}

// readUntilType reads messages until one with the given type arrives.
func readUntilType(t *testing.T, conn *websocket.Conn, msgType string) map[string]interface{} {
	t.Helper()
	for i := 0; i < 20; i++ {
		msg := readMsg(t, conn)
		if msg["type"] == msgType {
			return msg
		}
	}
	t.Fatalf("did not receive message of type %q", msgType)
	return nil
}

func sendMsg(t *testing.T, conn *websocket.Conn, msg map[string]interface{}) {
	t.Helper()
	conn.SetWriteDeadline(time.Now().Add(3 * time.Second))
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("failed to send message: %v", err)
	}
}

func TestJoinAndFlipOverWebSocket(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	conn := connectWS(t, server)
	defer conn.Close()

	sendMsg(t, conn, map[string]interface{}{"type": "set_name", "name": "Alice"})

	joined := readUntilType(t, conn, "room_joined")
	if id, _ := joined["roomId"].(string); id == "" {
		t.Error("expected a room ID")
	}
	if joined["rows"].(float64) != 3 || joined["cols"].(float64) != 3 {
		t.Errorf("expected 3x3 grid, got %vx%v", joined["rows"], joined["cols"])
	}

	state := readUntilType(t, conn, "grid_state")
	flipsBefore := state["playerFlipCount"].(float64)
	if flipsBefore != 0 {
		t.Errorf("expected playerFlipCount=0 at round start, got %v", flipsBefore)
	}

	sendMsg(t, conn, map[string]interface{}{"type": "flip", "axis": "ROW", "index": 1})
	state = readUntilType(t, conn, "grid_state")
	if state["playerFlipCount"].(float64) != 1 {
		t.Errorf("expected playerFlipCount=1 after a flip, got %v", state["playerFlipCount"])
	}
}

func TestInvalidAxisRejectedAtBoundary(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	conn := connectWS(t, server)
	defer conn.Close()

	sendMsg(t, conn, map[string]interface{}{"type": "set_name", "name": "Alice"})
	readUntilType(t, conn, "room_joined")
	readUntilType(t, conn, "grid_state")

	sendMsg(t, conn, map[string]interface{}{"type": "flip", "axis": "X", "index": 0})
	errMsg := readUntilType(t, conn, "error")
	if !strings.Contains(errMsg["message"].(string), `"X"`) {
		t.Errorf("expected error naming the invalid axis, got %q", errMsg["message"])
	}

	// The session keeps running: a valid flip still works
	sendMsg(t, conn, map[string]interface{}{"type": "flip", "axis": "COL", "index": 0})
	state := readUntilType(t, conn, "grid_state")
	if state["playerFlipCount"].(float64) != 1 {
		t.Errorf("expected playerFlipCount=1 (invalid axis not counted), got %v", state["playerFlipCount"])
	}
}

func TestFlipBeforeJoiningRejected(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	conn := connectWS(t, server)
	defer conn.Close()

	sendMsg(t, conn, map[string]interface{}{"type": "flip", "axis": "ROW", "index": 0})
	msg := readUntilType(t, conn, "error")
	if msg["message"] == "" {
		t.Error("expected an error message")
	}
}

func TestTwoClientsShareARoom(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	conn1 := connectWS(t, server)
	defer conn1.Close()
	conn2 := connectWS(t, server)
	defer conn2.Close()

	sendMsg(t, conn1, map[string]interface{}{"type": "set_name", "name": "Alice"})
	joined1 := readUntilType(t, conn1, "room_joined")

	sendMsg(t, conn2, map[string]interface{}{"type": "set_name", "name": "Bob"})
	joined2 := readUntilType(t, conn2, "room_joined")

	if joined1["roomId"] != joined2["roomId"] {
		t.Fatalf("expected a shared room, got %v and %v", joined1["roomId"], joined2["roomId"])
	}

	// Bob's flip is visible to Alice
	sendMsg(t, conn2, map[string]interface{}{"type": "flip", "axis": "DIAGONAL", "index": 0})
	deadline := time.Now().Add(3 * time.Second)
	for {
		state := readUntilType(t, conn1, "grid_state")
		if state["playerFlipCount"].(float64) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Alice never saw Bob's flip")
		}
	}
}
