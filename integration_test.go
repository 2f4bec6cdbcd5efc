package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(nil)
	go hub.Run()
	srv := httptest.NewServer(SetupRoutes(hub, t.TempDir()))
	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return hub, srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEnvelope reads text frames until one of the wanted type arrives,
// skipping binary snapshots along the way.
func readEnvelope(t *testing.T, conn *websocket.Conn, want string) json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read waiting for %q: %v", want, err)
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var env InEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		if env.T == want {
			return env.D
		}
	}
}

func readSnapshot(t *testing.T, conn *websocket.Conn) GameState {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read waiting for snapshot: %v", err)
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		var gs GameState
		if err := msgpack.Unmarshal(data, &gs); err != nil {
			t.Fatalf("snapshot unmarshal: %v", err)
		}
		return gs
	}
}

func sendEnvelope(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	raw, _ := json.Marshal(data)
	env := InEnvelope{T: msgType, D: raw}
	if err := conn.WriteJSON(env); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func TestConnectReceivesMapDataFirst(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dialWS(t, srv)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if msgType != websocket.TextMessage {
		t.Fatal("first frame should be text, not a snapshot")
	}
	var env InEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatal(err)
	}
	if env.T != MsgMapData {
		t.Fatalf("expected map_data first, got %q", env.T)
	}
	var md MapDataMsg
	if err := json.Unmarshal(env.D, &md); err != nil {
		t.Fatal(err)
	}
	if len(md.Boxes) == 0 || len(md.Spawns) == 0 {
		t.Error("map_data should carry geometry and spawn points")
	}
	if md.HalfX != LevelHalfX || md.HalfZ != LevelHalfZ {
		t.Error("map_data should carry level bounds")
	}
	if _, ok := md.Archetypes["soldier"]; !ok {
		t.Error("map_data should carry the archetype table")
	}
}

func TestJoinAndSnapshotOverWebsocket(t *testing.T) {
	hub, srv := newTestServer(t)
	conn := dialWS(t, srv)

	readEnvelope(t, conn, MsgMapData)
	sendEnvelope(t, conn, MsgJoin, JoinMsg{Name: "Ana", Class: "rusher"})

	var joined JoinedMsg
	if err := json.Unmarshal(readEnvelope(t, conn, MsgJoined), &joined); err != nil {
		t.Fatal(err)
	}
	if joined.ID == "" || joined.Class != "rusher" {
		t.Fatalf("unexpected join confirmation: %+v", joined)
	}
	if hub.game.PlayerCount() != 1 {
		t.Error("player should be registered in the match")
	}

	gs := readSnapshot(t, conn)
	var me *PlayerState
	for i := range gs.Players {
		if gs.Players[i].ID == joined.ID {
			me = &gs.Players[i]
		}
	}
	if me == nil {
		t.Fatal("snapshot should contain the joined player")
	}
	if me.Health != me.MaxHealth || me.Ammo != me.MaxAmmo || !me.Alive {
		t.Error("snapshot should show a fresh player at full strength")
	}
}

func TestBinaryMoveMessage(t *testing.T) {
	_, srv := newTestServer(t)
	conn := dialWS(t, srv)

	readEnvelope(t, conn, MsgMapData)
	sendEnvelope(t, conn, MsgJoin, JoinMsg{Name: "Ana", Class: "soldier"})
	var joined JoinedMsg
	if err := json.Unmarshal(readEnvelope(t, conn, MsgJoined), &joined); err != nil {
		t.Fatal(err)
	}

	before := readSnapshot(t, conn)
	startX := before.Players[0].X

	// 10-byte move frame: marker, then mx/mz/yaw/pitch as int16 x1000, flags.
	// mx=1.0 walks toward +x.
	frame := []byte{0x01, 0x03, 0xE8, 0, 0, 0, 0, 0, 0, 0}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		gs := readSnapshot(t, conn)
		if len(gs.Players) == 1 && gs.Players[0].X > startX+0.1 {
			return
		}
	}
	t.Error("player did not move after binary move frame")
}

func TestDisconnectRemovesPlayer(t *testing.T) {
	hub, srv := newTestServer(t)
	conn := dialWS(t, srv)

	readEnvelope(t, conn, MsgMapData)
	sendEnvelope(t, conn, MsgJoin, JoinMsg{Name: "Ana", Class: "soldier"})
	readEnvelope(t, conn, MsgJoined)

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.game.PlayerCount() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("player should be removed after disconnect")
}

func TestConnectionLimitPerIP(t *testing.T) {
	_, srv := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conns := make([]*websocket.Conn, 0, maxConnsPerIP)
	for i := 0; i < maxConnsPerIP; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		conns = append(conns, conn)
	}
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("connection past the per-IP limit should be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Error("expected a 503 refusal")
	}
}

func TestHealthzEndpoint(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("unexpected health response: %d %q", resp.StatusCode, body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("metrics should be JSON: %v", err)
	}
	for _, key := range []string{"clients", "players"} {
		if _, ok := out[key]; !ok {
			t.Errorf("metrics missing %q", key)
		}
	}
}

func TestQREndpoint(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/qr?size=128")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	if !bytes.HasPrefix(body, pngMagic) {
		t.Error("response is not a PNG")
	}
}
