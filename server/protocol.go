package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin     = "join"
	MsgLeave    = "leave"
	MsgInput    = "input" // JSON fallback; normally the 4-byte binary frame
	MsgCreate   = "create"
	MsgList     = "list"
	MsgCheck    = "check" // check if session exists
	MsgReady    = "ready"
	MsgRematch  = "rematch"
	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth" // resume with a stored token
	MsgProfile  = "profile"
	MsgCatalog  = "catalog"
	MsgBuy      = "buy"
	MsgCharms   = "charms"
	MsgBoard    = "board"
	MsgHistory  = "history"
)

// Server -> Client message types
const (
	MsgMaze        = "maze"
	MsgWelcome     = "welcome"
	MsgCaptured    = "captured" // you were caught
	MsgCapture     = "capture"  // someone was caught
	MsgCoin        = "coin"
	MsgPlate       = "plate"
	MsgPhase       = "phase"
	MsgFinish      = "finish"
	MsgPhrase      = "phrase"
	MsgAchievement = "achievement"
	MsgLevelUp     = "levelup"
	MsgSessions    = "sessions"
	MsgJoined      = "joined"
	MsgCreated     = "created" // session created, client should navigate
	MsgError       = "error"
	MsgChecked     = "checked" // session check response
	MsgAuthOK      = "auth_ok"
	MsgProfileData = "profile_data"
	MsgCatalogData = "catalog_data"
	MsgBought      = "bought"
	MsgCharmsData  = "charms_data"
	MsgBoardData   = "board_data"
	MsgHistoryData = "history_data"
)

// Binary frame markers. Client input frames start with frameInput;
// server frames are msgpack payloads prefixed with their marker byte.
const (
	frameInput = 0x01 // [marker, dx int8, dy int8, flags]
	frameState = 0x02
	frameView  = 0x03
)

// Input frame flag bits
const (
	inputVault = 1 << 0
	inputFlare = 1 << 1
	inputPower = 1 << 2
	inputAuto  = 1 << 3
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ClientInput carries one tick of movement intent
type ClientInput struct {
	DX    int  `json:"dx"` // -1, 0, 1
	DY    int  `json:"dy"` // -1, 0, 1
	Vault bool `json:"v,omitempty"`
	Flare bool `json:"f,omitempty"`
	Power bool `json:"p,omitempty"`
	Auto  bool `json:"a,omitempty"`
}

// JoinMsg is sent when a runner wants to join a session
type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
	Kit       *int   `json:"kit,omitempty"` // nil means auto-assign
}

// CreateMsg is sent when a runner wants to create a session
type CreateMsg struct {
	Name        string `json:"name"`
	SessionName string `json:"sname"`
	Algorithm   string `json:"algo,omitempty"` // dfs | prim
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates an account
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg resumes a session from a stored token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms register/login/auth
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"pid"`
}

// ProfileDataMsg is the response to a profile request
type ProfileDataMsg struct {
	Username     string   `json:"username"`
	Level        int      `json:"level"`
	XP           int      `json:"xp"`
	XPNext       int      `json:"xp_next"`
	Coins        int      `json:"coins"`
	Captures     int      `json:"captures"`
	Finishes     int      `json:"finishes"`
	Wins         int      `json:"wins"`
	Losses       int      `json:"losses"`
	Playtime     int      `json:"playtime"`
	Credits      int      `json:"credits"`
	Achievements []string `json:"achievements"`
}

// BuyMsg requests a charm purchase
type BuyMsg struct {
	ItemID string `json:"item_id"`
}

// BoughtMsg confirms a purchase
type BoughtMsg struct {
	ItemID  string `json:"item_id"`
	Credits int    `json:"credits"` // remaining balance
}

// CharmsDataMsg lists owned charms and the credit balance
type CharmsDataMsg struct {
	Owned   []string `json:"owned"`
	Credits int      `json:"credits"`
}

// BoardMsg requests a leaderboard
type BoardMsg struct {
	By    string `json:"by"`
	Limit int    `json:"limit,omitempty"`
}

// RunnerState is broadcast per runner each state frame
type RunnerState struct {
	ID       string  `json:"id" msgpack:"id"`
	Name     string  `json:"n" msgpack:"n"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Z        float64 `json:"z" msgpack:"z"` // vault height
	H        float64 `json:"h" msgpack:"h"` // heading degrees
	Kit      int     `json:"k" msgpack:"k"`
	Frame    int     `json:"fr" msgpack:"fr"`
	Coins    int     `json:"c" msgpack:"c"`
	Score    int     `json:"sc" msgpack:"sc"`
	Falling  bool    `json:"fl" msgpack:"fl"`
	Vaulting bool    `json:"vl" msgpack:"vl"`
	Auto     bool    `json:"au" msgpack:"au"`
	Finished bool    `json:"fin" msgpack:"fin"`
	Power    int     `json:"pw" msgpack:"pw"`
	PowerOn  bool    `json:"po" msgpack:"po"`
}

// SentryState is broadcast per sentry
type SentryState struct {
	ID      string  `json:"id" msgpack:"id"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	H       float64 `json:"h" msgpack:"h"`
	Frame   int     `json:"fr" msgpack:"fr"`
	Chasing bool    `json:"ch" msgpack:"ch"`
	Alert   bool    `json:"al" msgpack:"al"`
	Stunned bool    `json:"st" msgpack:"st"`
}

// FlareState is broadcast per flare in flight
type FlareState struct {
	ID    string  `json:"id" msgpack:"id"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	H     float64 `json:"h" msgpack:"h"`
	Owner string  `json:"o" msgpack:"o"`
}

// CoinState is broadcast per uncollected coin
type CoinState struct {
	ID    string  `json:"id" msgpack:"id"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	Frame int     `json:"fr" msgpack:"fr"`
}

// MistState is broadcast per mist bank
type MistState struct {
	ID string  `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
	W  float64 `json:"w" msgpack:"w"`
	H  float64 `json:"h" msgpack:"h"`
}

// WardState is broadcast per active ward
type WardState struct {
	ID    string  `json:"id" msgpack:"id"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	R     float64 `json:"r" msgpack:"r"`
	Owner string  `json:"o" msgpack:"o"`
}

// PlateState is broadcast for the gate plate
type PlateState struct {
	ID      string  `json:"id" msgpack:"id"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	Pressed bool    `json:"p" msgpack:"p"`
}

// RaceStateMsg is the race phase block inside each state frame
type RaceStateMsg struct {
	Phase     int     `json:"ph" msgpack:"ph"`
	Clock     float64 `json:"cl" msgpack:"cl"`
	TimeLeft  float64 `json:"tl" msgpack:"tl"`
	Countdown float64 `json:"cd" msgpack:"cd"`
	Ready     int     `json:"rd" msgpack:"rd"`
	WinnerID  string  `json:"w,omitempty" msgpack:"w,omitempty"`
}

// StateFrame is the full state broadcast (msgpack, frameState marker)
type StateFrame struct {
	Tick     uint64        `json:"tick" msgpack:"tick"`
	Runners  []RunnerState `json:"r" msgpack:"r"`
	Sentries []SentryState `json:"s" msgpack:"s"`
	Flares   []FlareState  `json:"f" msgpack:"f"`
	Coins    []CoinState   `json:"c" msgpack:"c"`
	Mists    []MistState   `json:"m" msgpack:"m"`
	Wards    []WardState   `json:"w" msgpack:"w"`
	Plate    *PlateState   `json:"p,omitempty" msgpack:"p,omitempty"`
	Race     RaceStateMsg  `json:"ra" msgpack:"ra"`
}

// SegWire is one floor ray segment in a view frame
type SegWire struct {
	X1 float64 `json:"x1" msgpack:"x1"`
	Y1 float64 `json:"y1" msgpack:"y1"`
	X2 float64 `json:"x2" msgpack:"x2"`
	Y2 float64 `json:"y2" msgpack:"y2"`
}

// StripWire is one projected wall strip in a view frame
type StripWire struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	W float64 `json:"w" msgpack:"w"`
	H float64 `json:"h" msgpack:"h"`
	S uint8   `json:"s" msgpack:"s"` // shade 0-255
}

// PingWire marks a revealed sentry position
type PingWire struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// ViewFrame is a per-runner first-person frame (msgpack, frameView marker)
type ViewFrame struct {
	Tick   uint64      `json:"tick" msgpack:"tick"`
	Segs   []SegWire   `json:"sg" msgpack:"sg"`
	Strips []StripWire `json:"st" msgpack:"st"`
	Pings  []PingWire  `json:"pg,omitempty" msgpack:"pg,omitempty"`
}

// MazeMsg describes the maze layout, sent once on join and on rematch
type MazeMsg struct {
	Cols    int     `json:"cols"`
	Rows    int     `json:"rows"`
	TileW   float64 `json:"tw"`
	TileH   float64 `json:"th"`
	OriginX float64 `json:"ox"`
	OriginY float64 `json:"oy"`
	Tiles   []byte  `json:"tiles"` // 1 = walkable, 0 = wall, row-major
	Spawn   int     `json:"spawn"`
	Goal    int     `json:"goal"`
	Gate    int     `json:"gate"`
	Plate   int     `json:"plate"`
}

// WelcomeMsg is sent to a runner when they join
type WelcomeMsg struct {
	ID  string `json:"id"`
	Kit int    `json:"kit"`
}

// CapturedMsg notifies a runner they were caught
type CapturedMsg struct {
	SentryID string `json:"sid"`
}

// CaptureMsg is broadcast to the session when someone is caught
type CaptureMsg struct {
	SentryID   string `json:"sid"`
	RunnerID   string `json:"rid"`
	RunnerName string `json:"rn"`
}

// CoinMsg is broadcast when a coin is collected
type CoinMsg struct {
	RunnerID string `json:"rid"`
	CoinID   string `json:"cid"`
	Total    int    `json:"total"`
}

// PlateMsg is broadcast when the gate plate is pressed
type PlateMsg struct {
	RunnerID string `json:"rid"`
	Gate     int    `json:"gate"`
}

// PhaseMsg announces a race phase change
type PhaseMsg struct {
	Phase     int     `json:"ph"`
	Countdown float64 `json:"cd,omitempty"`
}

// FinishMsg is broadcast when a runner reaches the goal
type FinishMsg struct {
	RunnerID string  `json:"rid"`
	Name     string  `json:"n"`
	Time     float64 `json:"t"`
	Winner   bool    `json:"win"`
}

// PhraseMsg carries a sentry bark
type PhraseMsg struct {
	SentryID string `json:"sid"`
	Text     string `json:"text"`
}

// AchievementMsg notifies a runner of a fresh unlock
type AchievementMsg struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"desc"`
}

// LevelUpMsg notifies a runner they reached a new level
type LevelUpMsg struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Runners int    `json:"runners"`
	Phase   int    `json:"phase"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// CheckMsg is sent by client to check if a session exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// CheckedMsg is the response to a session check
type CheckedMsg struct {
	SID     string `json:"sid"`
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	Runners int    `json:"runners,omitempty"`
}
