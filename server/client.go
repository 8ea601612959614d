package main

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 60
	maxNameLen        = 16
	maxSessionNameLen = 30
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	runnerID   string
	sessionID  string
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
	// Auth state
	authPlayerID int64  // 0 = unauthenticated/guest
	authUsername string // "" = unauthenticated
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		// Binary input frames: 4 bytes [frameInput, dx, dy, flags]
		if msgType == websocket.BinaryMessage && len(message) == 4 && message[0] == frameInput {
			c.handleBinaryInput(message)
		} else {
			c.handleMessage(message)
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes with 0xFF marker byte so WritePump can distinguish from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgList:
		c.handleList()
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgInput:
		c.handleInput(env.D)
	case MsgLeave:
		c.handleLeave()
	case MsgCheck:
		c.handleCheck(env.D)
	case MsgReady:
		c.handleReady()
	case MsgRematch:
		c.handleRematch()
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgProfile:
		c.handleProfile()
	case MsgCatalog:
		c.handleCatalog()
	case MsgBuy:
		c.handleBuy(env.D)
	case MsgCharms:
		c.handleCharms()
	case MsgBoard:
		c.handleBoard(env.D)
	case MsgHistory:
		c.handleHistory()
	}
}

func (c *Client) handleList() {
	sessions := c.hub.sessions.ListSessions()
	c.SendJSON(Envelope{T: MsgSessions, Data: sessions})
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sname := msg.SessionName
	if sname == "" {
		sname = "Maze Run"
	}
	if len(sname) > maxSessionNameLen {
		sname = sname[:maxSessionNameLen]
	}
	algo := msg.Algorithm
	if algo != MazeAlgorithmDFS && algo != MazeAlgorithmPrim {
		algo = ""
	}

	sess := c.hub.sessions.CreateSession(sname, algo)
	if sess == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "too many active sessions"}})
		return
	}

	c.hub.sessions.MarkActive(sess.ID)
	c.SendJSON(Envelope{T: MsgCreated, Data: map[string]string{"sid": sess.ID}})
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	name := msg.Name
	if name == "" {
		name = "Runner"
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	kit := -1
	if msg.Kit != nil {
		kit = *msg.Kit
	}

	sess := c.hub.sessions.GetSession(msg.SessionID)
	if sess == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "session not found"}})
		return
	}

	runner := sess.Game.AddRunner(name, kit)
	if runner == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "session full"}})
		return
	}
	c.hub.sessions.MarkActive(sess.ID)
	c.runnerID = runner.Ent.ID
	c.sessionID = sess.ID

	// Link auth to in-game runner
	runner.AuthPlayerID = c.authPlayerID

	sess.Game.SetClient(runner.Ent.ID, c)

	c.SendJSON(Envelope{T: MsgJoined, Data: map[string]string{"sid": sess.ID}})
	c.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{ID: runner.Ent.ID, Kit: int(runner.Kit)}})
	c.SendJSON(Envelope{T: MsgMaze, Data: sess.Game.MazeSnapshot()})
}

// handleBinaryInput decodes a compact 4-byte input frame
func (c *Client) handleBinaryInput(msg []byte) {
	if c.sessionID == "" || c.runnerID == "" {
		return
	}
	input := ClientInput{
		DX:    int(int8(msg[1])),
		DY:    int(int8(msg[2])),
		Vault: msg[3]&inputVault != 0,
		Flare: msg[3]&inputFlare != 0,
		Power: msg[3]&inputPower != 0,
		Auto:  msg[3]&inputAuto != 0,
	}
	sess := c.hub.sessions.GetSession(c.sessionID)
	if sess == nil {
		return
	}
	sess.Game.HandleInput(c.runnerID, input)
}

func (c *Client) handleInput(data json.RawMessage) {
	if c.sessionID == "" || c.runnerID == "" {
		return
	}
	var input ClientInput
	if err := json.Unmarshal(data, &input); err != nil {
		return
	}
	sess := c.hub.sessions.GetSession(c.sessionID)
	if sess == nil {
		return
	}
	sess.Game.HandleInput(c.runnerID, input)
}

func (c *Client) handleCheck(data json.RawMessage) {
	var msg CheckMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sess := c.hub.sessions.GetSession(msg.SID)
	if sess == nil {
		c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{SID: msg.SID, Exists: false}})
		return
	}
	c.SendJSON(Envelope{T: MsgChecked, Data: CheckedMsg{
		SID:     msg.SID,
		Exists:  true,
		Name:    sess.Name,
		Runners: sess.Game.RunnerCount(),
	}})
}

func (c *Client) handleLeave() {
	if c.sessionID != "" {
		c.hub.sessions.RemoveRunner(c.sessionID, c.runnerID)
		c.sessionID = ""
		c.runnerID = ""
	}
}

func (c *Client) handleReady() {
	if c.sessionID == "" || c.runnerID == "" {
		return
	}
	sess := c.hub.sessions.GetSession(c.sessionID)
	if sess == nil {
		return
	}
	sess.Game.HandleReady(c.runnerID)
}

func (c *Client) handleRematch() {
	if c.sessionID == "" || c.runnerID == "" {
		return
	}
	sess := c.hub.sessions.GetSession(c.sessionID)
	if sess == nil {
		return
	}
	sess.Game.HandleRematch(c.runnerID)
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.hub.SetOnline(id, c)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: msg.Username,
		PlayerID: id,
	}})
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.hub.SetOnline(id, c)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: msg.Username,
		PlayerID: id,
	}})
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "invalid token"}})
		return
	}
	c.authPlayerID = id
	c.authUsername = username
	c.hub.SetOnline(id, c)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    msg.Token,
		Username: username,
		PlayerID: id,
	}})
}

func (c *Client) handleProfile() {
	if c.hub.db == nil || c.authPlayerID == 0 {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "not authenticated"}})
		return
	}
	stats, err := c.hub.db.GetStats(c.authPlayerID)
	if err != nil || stats == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "profile not found"}})
		return
	}
	unlocked, err := c.hub.db.GetAchievements(c.authPlayerID)
	if err != nil {
		unlocked = nil
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		Username:     c.authUsername,
		Level:        stats.Level,
		XP:           stats.XP,
		XPNext:       XPForLevel(stats.Level + 1),
		Coins:        stats.Coins,
		Captures:     stats.Captures,
		Finishes:     stats.Finishes,
		Wins:         stats.Wins,
		Losses:       stats.Losses,
		Playtime:     stats.Playtime,
		Credits:      stats.Credits,
		Achievements: unlocked,
	}})
}

func (c *Client) handleCatalog() {
	c.SendJSON(Envelope{T: MsgCatalogData, Data: CharmCatalog})
}

func (c *Client) handleBuy(data json.RawMessage) {
	if c.hub.db == nil || c.authPlayerID == 0 {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "not authenticated"}})
		return
	}
	var msg BuyMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	item, ok := CharmCatalogMap[msg.ItemID]
	if !ok {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "unknown item"}})
		return
	}
	owned, err := c.hub.db.HasCharm(c.authPlayerID, item.ID)
	if err == nil && owned {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "already owned"}})
		return
	}
	paid, err := c.hub.db.SpendCredits(c.authPlayerID, item.Price)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "purchase failed"}})
		return
	}
	if !paid {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "not enough credits"}})
		return
	}
	if err := c.hub.db.AddCharm(c.authPlayerID, item.ID); err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "purchase failed"}})
		return
	}
	credits, _ := c.hub.db.GetCredits(c.authPlayerID)
	if c.hub.telemetry != nil {
		c.hub.telemetry.Track(EvtPurchase, c.authPlayerID, c.sessionID, fmt.Sprintf(`{"item_id":%q}`, item.ID))
	}
	c.SendJSON(Envelope{T: MsgBought, Data: BoughtMsg{ItemID: item.ID, Credits: credits}})
}

func (c *Client) handleCharms() {
	if c.hub.db == nil || c.authPlayerID == 0 {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "not authenticated"}})
		return
	}
	owned, err := c.hub.db.GetCharms(c.authPlayerID)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "charms unavailable"}})
		return
	}
	credits, _ := c.hub.db.GetCredits(c.authPlayerID)
	c.SendJSON(Envelope{T: MsgCharmsData, Data: CharmsDataMsg{Owned: owned, Credits: credits}})
}

func (c *Client) handleBoard(data json.RawMessage) {
	if c.hub.db == nil {
		return
	}
	var msg BoardMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	entries, err := c.hub.db.GetLeaderboard(msg.By, msg.Limit)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "leaderboard unavailable"}})
		return
	}
	c.SendJSON(Envelope{T: MsgBoardData, Data: entries})
}

func (c *Client) handleHistory() {
	if c.hub.db == nil || c.authPlayerID == 0 {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "not authenticated"}})
		return
	}
	entries, err := c.hub.db.GetRunHistory(c.authPlayerID, 10)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "history unavailable"}})
		return
	}
	c.SendJSON(Envelope{T: MsgHistoryData, Data: entries})
}
