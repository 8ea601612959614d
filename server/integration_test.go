package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// ---------- helpers ----------

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// startTestServer spins up an httptest.Server with a Hub backed by a temp
// database. Returns the server, its WebSocket URL, the DB handle and a
// cleanup func.
func startTestServer(t *testing.T) (*httptest.Server, string, *DB, func()) {
	t.Helper()

	// Minimal client dir so SPA routes have something to serve
	tmpDir := t.TempDir()
	jsDir := filepath.Join(tmpDir, "js")
	os.MkdirAll(jsDir, 0o755)
	os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte("<html>maze</html>"), 0o644)
	os.WriteFile(filepath.Join(jsDir, "main.js"), []byte("// test"), 0o644)

	cfg := DefaultConfig()
	cfg.ClientDir = tmpDir
	cfg.DBPath = filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	tel := NewTelemetry(db)

	hub := NewHub(cfg, db, tel)
	go hub.Run()

	mux := SetupRoutes(hub, tmpDir)
	srv := httptest.NewServer(mux)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	return srv, wsURL, db, func() {
		srv.Close()
		// Let disconnects drain through the hub before telemetry stops
		time.Sleep(200 * time.Millisecond)
		tel.Stop()
		db.Close()
	}
}

// dialWS opens a WebSocket connection to the test server.
func dialWS(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial WS: %v", err)
	}
	return conn
}

// readEnvelope reads the next JSON message, skipping any binary state or
// view frames interleaved with it.
func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	for {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read WS: %v", err)
		}
		if msgType == websocket.BinaryMessage {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return env
	}
}

// readStateFrame reads binary messages until a state frame arrives.
func readStateFrame(t *testing.T, conn *websocket.Conn) StateFrame {
	t.Helper()
	for {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read WS: %v", err)
		}
		if msgType != websocket.BinaryMessage || len(raw) == 0 || raw[0] != frameState {
			continue
		}
		var state StateFrame
		if err := msgpack.Unmarshal(raw[1:], &state); err != nil {
			t.Fatalf("msgpack unmarshal: %v", err)
		}
		return state
	}
}

// sendMsg sends a typed message over the WebSocket.
func sendMsg(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	env := Envelope{T: msgType, Data: data}
	raw, _ := json.Marshal(env)
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("write WS: %v", err)
	}
}

// dataMap extracts the Data field as map[string]interface{}.
func dataMap(t *testing.T, env Envelope) map[string]interface{} {
	t.Helper()
	raw, _ := json.Marshal(env.Data)
	var m map[string]interface{}
	json.Unmarshal(raw, &m)
	return m
}

// dataSlice decodes the Data field into the given slice pointer.
func dataSlice(t *testing.T, env Envelope, out interface{}) {
	t.Helper()
	raw, _ := json.Marshal(env.Data)
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode %s data: %v", env.T, err)
	}
}

// createAndJoin creates a session then joins it. Returns the session ID.
func createAndJoin(t *testing.T, conn *websocket.Conn, name, sname string) string {
	t.Helper()
	sendMsg(t, conn, MsgCreate, map[string]string{"name": name, "sname": sname})
	created := readEnvelope(t, conn)
	if created.T != MsgCreated {
		t.Fatalf("expected created, got %s", created.T)
	}
	sid := dataMap(t, created)["sid"].(string)

	sendMsg(t, conn, MsgJoin, map[string]string{"name": name, "sid": sid})
	joined := readEnvelope(t, conn)
	if joined.T != MsgJoined {
		t.Fatalf("expected joined, got %s", joined.T)
	}
	_ = readEnvelope(t, conn) // welcome
	_ = readEnvelope(t, conn) // maze
	return sid
}

// ---------- session manager ----------

func TestSessionIDIsUUID(t *testing.T) {
	sm := NewSessionManager(DefaultConfig(), nil, nil)
	sess := sm.CreateSession("TestMaze", "")
	if sess == nil {
		t.Fatal("expected a session")
	}
	defer sess.Game.Stop()
	if !uuidRegex.MatchString(sess.ID) {
		t.Errorf("session ID %q is not a valid UUID v4", sess.ID)
	}
}

func TestSessionManagerLifecycle(t *testing.T) {
	sm := NewSessionManager(DefaultConfig(), nil, nil)

	sess := sm.CreateSession("Labyrinth", MazeAlgorithmPrim)
	if sess == nil {
		t.Fatal("expected a session")
	}
	if sess.Game.algorithm != MazeAlgorithmPrim {
		t.Errorf("expected prim algorithm, got %q", sess.Game.algorithm)
	}

	if got := sm.GetSession(sess.ID); got == nil || got.Name != "Labyrinth" {
		t.Errorf("expected to find Labyrinth, got %v", got)
	}
	if got := sm.GetSession("nonexistent"); got != nil {
		t.Error("expected nil for unknown session")
	}

	list := sm.ListSessions()
	if len(list) != 1 {
		t.Fatalf("expected 1 session, got %d", len(list))
	}
	if list[0].Name != "Labyrinth" || list[0].Runners != 0 || list[0].Phase != int(PhaseLobby) {
		t.Errorf("unexpected session info: %+v", list[0])
	}

	// Removing the last runner tears the session down immediately
	r := sess.Game.AddRunner("Solo", -1)
	sm.RemoveRunner(sess.ID, r.Ent.ID)
	if got := sm.GetSession(sess.ID); got != nil {
		t.Error("expected session removed after last runner left")
	}
}

// ---------- SPA routing ----------

func TestSPARoutingRoot(t *testing.T) {
	srv, _, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("GET / status = %d, want 200", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected Cache-Control: no-cache, got %q", cc)
	}
}

func TestSPARoutingUUIDPath(t *testing.T) {
	srv, _, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/d2719f8a-3b44-4c55-9a66-77e8f9a0b1c2")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("UUID path status = %d, want 200", resp.StatusCode)
	}
	buf := make([]byte, 100)
	n, _ := resp.Body.Read(buf)
	if !strings.Contains(string(buf[:n]), "<html>") {
		t.Errorf("UUID path should serve index.html, got %q", string(buf[:n]))
	}
}

func TestSPARoutingStaticFiles(t *testing.T) {
	srv, _, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/js/main.js")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("GET /js/main.js status = %d, want 200", resp.StatusCode)
	}
}

func TestSPARoutingNonUUIDPath(t *testing.T) {
	srv, _, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/not-a-uuid")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("GET /not-a-uuid status = %d, want 404", resp.StatusCode)
	}
}

// ---------- QR join links ----------

func TestQRCodeEndpoint(t *testing.T) {
	srv, _, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/qr/d2719f8a-3b44-4c55-9a66-77e8f9a0b1c2")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("QR status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	magic := make([]byte, 8)
	if _, err := io.ReadFull(resp.Body, magic); err != nil {
		t.Fatalf("read PNG header: %v", err)
	}
	if string(magic) != "\x89PNG\r\n\x1a\n" {
		t.Errorf("expected PNG magic bytes, got %q", magic)
	}
}

func TestQRCodeBadSessionID(t *testing.T) {
	srv, _, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/qr/not-a-session")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 400 {
		t.Errorf("bad QR sid status = %d, want 400", resp.StatusCode)
	}
}

// ---------- stats endpoint ----------

func TestStatsEndpoint(t *testing.T) {
	srv, _, _, cleanup := startTestServer(t)
	defer cleanup()

	resp, err := http.Get(srv.URL + "/api/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("stats status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var m map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	for _, key := range []string{"live_runners", "active_sessions", "connections",
		"dau", "wau", "mau", "runs", "events", "purchases", "daily_active"} {
		if _, ok := m[key]; !ok {
			t.Errorf("stats missing %q", key)
		}
	}
}

// ---------- session create/join over WS ----------

func TestCreateAndJoinFlow(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	sid := createAndJoin(t, c, "Pilot", "First Maze")
	if !uuidRegex.MatchString(sid) {
		t.Errorf("session id %q is not a UUID", sid)
	}

	// Another client sees the session
	c2 := dialWS(t, wsURL)
	defer c2.Close()
	sendMsg(t, c2, MsgCheck, map[string]string{"sid": sid})
	checked := readEnvelope(t, c2)
	if checked.T != MsgChecked {
		t.Fatalf("expected checked, got %s", checked.T)
	}
	d := dataMap(t, checked)
	if d["exists"] != true {
		t.Error("expected exists=true")
	}
	if d["name"] != "First Maze" {
		t.Errorf("expected name First Maze, got %v", d["name"])
	}
	if d["runners"].(float64) != 1 {
		t.Errorf("expected 1 runner, got %v", d["runners"])
	}
}

func TestJoinSendsWelcomeAndMaze(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, MsgCreate, map[string]string{"name": "Pilot", "sname": "Layout"})
	created := readEnvelope(t, c)
	sid := dataMap(t, created)["sid"].(string)

	sendMsg(t, c, MsgJoin, map[string]string{"name": "Pilot", "sid": sid})
	joined := readEnvelope(t, c)
	if joined.T != MsgJoined {
		t.Fatalf("expected joined, got %s", joined.T)
	}

	welcome := readEnvelope(t, c)
	if welcome.T != MsgWelcome {
		t.Fatalf("expected welcome, got %s", welcome.T)
	}
	w := dataMap(t, welcome)
	if w["id"] == nil || w["id"] == "" {
		t.Error("welcome should carry the runner id")
	}

	maze := readEnvelope(t, c)
	if maze.T != MsgMaze {
		t.Fatalf("expected maze, got %s", maze.T)
	}
	m := dataMap(t, maze)
	if m["cols"].(float64) != 21 || m["rows"].(float64) != 21 {
		t.Errorf("expected 21x21 maze, got %vx%v", m["cols"], m["rows"])
	}
	if m["tiles"] == nil {
		t.Error("maze should carry the tile layout")
	}
	if m["gate"].(float64) < 0 {
		t.Error("expected a gate tile")
	}
}

func TestJoinNonExistentSession(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, MsgJoin, map[string]string{"name": "Lost", "sid": "b2719f8a-3b44-4c55-9a66-77e8f9a0b1c2"})
	errMsg := readEnvelope(t, c)
	if errMsg.T != MsgError {
		t.Fatalf("expected error, got %s", errMsg.T)
	}
}

func TestCheckSessionNotExists(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, MsgCheck, map[string]string{"sid": "c2719f8a-3b44-4c55-9a66-77e8f9a0b1c2"})
	checked := readEnvelope(t, c)
	if checked.T != MsgChecked {
		t.Fatalf("expected checked, got %s", checked.T)
	}
	if dataMap(t, checked)["exists"] != false {
		t.Error("expected exists=false")
	}
}

func TestListSessions(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, MsgList, nil)
	listMsg := readEnvelope(t, c)
	if listMsg.T != MsgSessions {
		t.Fatalf("expected sessions, got %s", listMsg.T)
	}
	var sessions []SessionInfo
	dataSlice(t, listMsg, &sessions)
	if len(sessions) != 0 {
		t.Errorf("expected 0 sessions, got %d", len(sessions))
	}

	c2 := dialWS(t, wsURL)
	defer c2.Close()
	createAndJoin(t, c2, "P1", "Open Maze")

	sendMsg(t, c, MsgList, nil)
	listMsg2 := readEnvelope(t, c)
	var sessions2 []SessionInfo
	dataSlice(t, listMsg2, &sessions2)
	if len(sessions2) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions2))
	}
	if sessions2[0].Name != "Open Maze" || sessions2[0].Runners != 1 {
		t.Errorf("unexpected session info: %+v", sessions2[0])
	}
}

func TestMultipleRunnersInSession(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c1 := dialWS(t, wsURL)
	defer c1.Close()
	sid := createAndJoin(t, c1, "Alpha", "Crowded")

	c2 := dialWS(t, wsURL)
	defer c2.Close()
	sendMsg(t, c2, MsgJoin, map[string]string{"name": "Beta", "sid": sid})
	_ = readEnvelope(t, c2) // joined
	_ = readEnvelope(t, c2) // welcome
	_ = readEnvelope(t, c2) // maze

	c3 := dialWS(t, wsURL)
	defer c3.Close()
	sendMsg(t, c3, MsgCheck, map[string]string{"sid": sid})
	checked := readEnvelope(t, c3)
	if dataMap(t, checked)["runners"].(float64) != 2 {
		t.Errorf("expected 2 runners, got %v", dataMap(t, checked)["runners"])
	}
}

// ---------- state broadcasts ----------

func TestStateBroadcastOverWS(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()
	createAndJoin(t, c, "Watcher", "StateTest")

	state := readStateFrame(t, c)
	if state.Tick == 0 {
		t.Error("expected a nonzero tick")
	}
	if len(state.Runners) != 1 {
		t.Fatalf("expected 1 runner in frame, got %d", len(state.Runners))
	}
	if state.Runners[0].Name != "Watcher" {
		t.Errorf("expected runner Watcher, got %q", state.Runners[0].Name)
	}
	if state.Race.Phase != int(PhaseLobby) {
		t.Errorf("expected lobby phase, got %d", state.Race.Phase)
	}
	if len(state.Coins) == 0 || len(state.Sentries) == 0 {
		t.Error("expected a populated world in the frame")
	}
}

func TestDefaultRunnerName(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()
	createAndJoin(t, c, "", "")

	state := readStateFrame(t, c)
	if len(state.Runners) != 1 || state.Runners[0].Name != "Runner" {
		t.Errorf("expected default name Runner, got %+v", state.Runners)
	}
}

// ---------- input over WS ----------

func TestBinaryInputFrame(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()
	createAndJoin(t, c, "Mover", "InputTest")

	frame := []byte{frameInput, byte(int8(1)), byte(int8(0)), inputVault}
	if err := c.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatalf("write input frame: %v", err)
	}

	// Server keeps streaming state, so the frame was accepted
	state := readStateFrame(t, c)
	if len(state.Runners) != 1 {
		t.Errorf("expected the runner to survive input, got %d", len(state.Runners))
	}
}

func TestInputBeforeJoin(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	// Input without a session is dropped, not fatal
	c.WriteMessage(websocket.BinaryMessage, []byte{frameInput, 1, 1, 0})
	sendMsg(t, c, MsgInput, ClientInput{DX: 1})

	sendMsg(t, c, MsgList, nil)
	env := readEnvelope(t, c)
	if env.T != MsgSessions {
		t.Fatalf("expected sessions, got %s", env.T)
	}
}

func TestReadyStartsCountdownOverWS(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()
	createAndJoin(t, c, "Eager", "Countdown")

	sendMsg(t, c, MsgReady, nil)
	env := readEnvelope(t, c)
	if env.T != MsgPhase {
		t.Fatalf("expected phase message, got %s", env.T)
	}
	d := dataMap(t, env)
	if d["ph"].(float64) != float64(PhaseCountdown) {
		t.Errorf("expected countdown phase, got %v", d["ph"])
	}
	if d["cd"].(float64) != 3 {
		t.Errorf("expected 3 second countdown, got %v", d["cd"])
	}
}

// ---------- session lifecycle ----------

func TestLeaveCleansUpSession(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()
	sid := createAndJoin(t, c, "Solo", "Fleeting")

	c2 := dialWS(t, wsURL)
	defer c2.Close()
	sendMsg(t, c2, MsgCheck, map[string]string{"sid": sid})
	if dataMap(t, readEnvelope(t, c2))["exists"] != true {
		t.Fatal("session should exist before leave")
	}

	sendMsg(t, c, MsgLeave, nil)
	time.Sleep(150 * time.Millisecond)

	sendMsg(t, c2, MsgCheck, map[string]string{"sid": sid})
	if dataMap(t, readEnvelope(t, c2))["exists"] != false {
		t.Error("session should be cleaned up after the last runner leaves")
	}
}

func TestDisconnectCleansUpSession(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c1 := dialWS(t, wsURL)
	sid := createAndJoin(t, c1, "Ghost", "Haunted")
	c1.Close()

	time.Sleep(250 * time.Millisecond)

	c2 := dialWS(t, wsURL)
	defer c2.Close()
	sendMsg(t, c2, MsgCheck, map[string]string{"sid": sid})
	if dataMap(t, readEnvelope(t, c2))["exists"] != false {
		t.Error("session should be cleaned up after disconnect")
	}
}

func TestLeaveWithoutJoining(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, MsgLeave, nil)
	sendMsg(t, c, MsgList, nil)
	env := readEnvelope(t, c)
	if env.T != MsgSessions {
		t.Fatalf("expected sessions, got %s", env.T)
	}
}

// ---------- accounts over WS ----------

func TestRegisterAndProfileFlow(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, MsgRegister, map[string]string{"username": "wsuser", "password": "hunter22"})
	authOK := readEnvelope(t, c)
	if authOK.T != MsgAuthOK {
		t.Fatalf("expected auth_ok, got %s: %v", authOK.T, authOK.Data)
	}
	d := dataMap(t, authOK)
	token, _ := d["token"].(string)
	if token == "" {
		t.Fatal("expected a token")
	}
	if d["username"] != "wsuser" {
		t.Errorf("expected username wsuser, got %v", d["username"])
	}
	if d["pid"].(float64) <= 0 {
		t.Errorf("expected a player id, got %v", d["pid"])
	}

	sendMsg(t, c, MsgProfile, nil)
	profile := readEnvelope(t, c)
	if profile.T != MsgProfileData {
		t.Fatalf("expected profile_data, got %s", profile.T)
	}
	p := dataMap(t, profile)
	if p["username"] != "wsuser" || p["level"].(float64) != 1 {
		t.Errorf("unexpected profile: %v", p)
	}
	if p["xp_next"].(float64) != 100 {
		t.Errorf("expected 100 xp to next level, got %v", p["xp_next"])
	}

	// A stored token resumes on a fresh connection
	c2 := dialWS(t, wsURL)
	defer c2.Close()
	sendMsg(t, c2, MsgAuth, map[string]string{"token": token})
	resumed := readEnvelope(t, c2)
	if resumed.T != MsgAuthOK {
		t.Fatalf("expected auth_ok on resume, got %s", resumed.T)
	}
	if dataMap(t, resumed)["username"] != "wsuser" {
		t.Errorf("expected resumed username wsuser, got %v", dataMap(t, resumed)["username"])
	}

	// Wrong password is rejected
	sendMsg(t, c2, MsgLogin, map[string]string{"username": "wsuser", "password": "wrong"})
	if env := readEnvelope(t, c2); env.T != MsgError {
		t.Errorf("expected error for bad password, got %s", env.T)
	}
}

func TestProfileRequiresAuth(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, MsgProfile, nil)
	if env := readEnvelope(t, c); env.T != MsgError {
		t.Errorf("expected error without auth, got %s", env.T)
	}
}

// ---------- charm shop over WS ----------

func TestCatalogAndPurchase(t *testing.T) {
	_, wsURL, db, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, MsgCatalog, nil)
	catalog := readEnvelope(t, c)
	if catalog.T != MsgCatalogData {
		t.Fatalf("expected catalog_data, got %s", catalog.T)
	}
	var items []CharmItem
	dataSlice(t, catalog, &items)
	if len(items) != len(CharmCatalog) {
		t.Errorf("expected %d items, got %d", len(CharmCatalog), len(items))
	}

	sendMsg(t, c, MsgRegister, map[string]string{"username": "shopper", "password": "hunter22"})
	authOK := readEnvelope(t, c)
	if authOK.T != MsgAuthOK {
		t.Fatalf("expected auth_ok, got %s", authOK.T)
	}
	pid := int64(dataMap(t, authOK)["pid"].(float64))

	// Broke runners cannot buy
	sendMsg(t, c, MsgBuy, map[string]string{"item_id": "skin_ember"})
	if env := readEnvelope(t, c); env.T != MsgError {
		t.Errorf("expected not enough credits, got %s", env.T)
	}

	if err := db.AddCredits(pid, 200); err != nil {
		t.Fatalf("add credits: %v", err)
	}
	sendMsg(t, c, MsgBuy, map[string]string{"item_id": "skin_ember"})
	bought := readEnvelope(t, c)
	if bought.T != MsgBought {
		t.Fatalf("expected bought, got %s: %v", bought.T, bought.Data)
	}
	b := dataMap(t, bought)
	if b["item_id"] != "skin_ember" || b["credits"].(float64) != 150 {
		t.Errorf("unexpected purchase receipt: %v", b)
	}

	// Repeat purchase and unknown items are refused
	sendMsg(t, c, MsgBuy, map[string]string{"item_id": "skin_ember"})
	if env := readEnvelope(t, c); env.T != MsgError {
		t.Errorf("expected already owned, got %s", env.T)
	}
	sendMsg(t, c, MsgBuy, map[string]string{"item_id": "skin_nothing"})
	if env := readEnvelope(t, c); env.T != MsgError {
		t.Errorf("expected unknown item, got %s", env.T)
	}

	sendMsg(t, c, MsgCharms, nil)
	charms := readEnvelope(t, c)
	if charms.T != MsgCharmsData {
		t.Fatalf("expected charms_data, got %s", charms.T)
	}
	ch := dataMap(t, charms)
	if ch["credits"].(float64) != 150 {
		t.Errorf("expected 150 credits left, got %v", ch["credits"])
	}
}

// ---------- leaderboard and history over WS ----------

func TestBoardAndHistory(t *testing.T) {
	_, wsURL, _, cleanup := startTestServer(t)
	defer cleanup()

	c := dialWS(t, wsURL)
	defer c.Close()

	sendMsg(t, c, MsgRegister, map[string]string{"username": "ranked", "password": "hunter22"})
	if env := readEnvelope(t, c); env.T != MsgAuthOK {
		t.Fatalf("expected auth_ok, got %s", env.T)
	}

	sendMsg(t, c, MsgBoard, map[string]string{"by": "xp"})
	board := readEnvelope(t, c)
	if board.T != MsgBoardData {
		t.Fatalf("expected board_data, got %s", board.T)
	}
	var entries []LeaderboardEntry
	dataSlice(t, board, &entries)
	if len(entries) != 1 || entries[0].Username != "ranked" {
		t.Errorf("expected ranked on the board, got %+v", entries)
	}

	sendMsg(t, c, MsgHistory, nil)
	history := readEnvelope(t, c)
	if history.T != MsgHistoryData {
		t.Fatalf("expected history_data, got %s", history.T)
	}
	var runs []RunHistoryEntry
	dataSlice(t, history, &runs)
	if len(runs) != 0 {
		t.Errorf("expected empty history, got %d entries", len(runs))
	}
}

// ---------- util functions ----------

func TestGenerateIDLength(t *testing.T) {
	if id := GenerateID(4); len(id) != 8 {
		t.Errorf("expected 8 chars, got %d: %s", len(id), id)
	}
	if id := GenerateID(8); len(id) != 16 {
		t.Errorf("expected 16 chars, got %d: %s", len(id), id)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.min, tt.max); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestDistanceUtil(t *testing.T) {
	if d := Distance(0, 0, 3, 4); d != 5 {
		t.Errorf("Distance(0,0,3,4) = %v, want 5", d)
	}
}

func TestRound1(t *testing.T) {
	if got := round1(64.25); got != 64.3 {
		t.Errorf("round1(64.25) = %v, want 64.3", got)
	}
	if got := round1(12.04); got != 12.0 {
		t.Errorf("round1(12.04) = %v, want 12.0", got)
	}
}
