package main

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120 // move updates arrive at client frame rate
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   string
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
				Log.Debugf("ws error: %v", err)
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
			Log.Infof("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		// Binary move messages: 10 bytes [0x01, mx, mz, yaw, pitch, flags]
		// with each value an int16 scaled by 1000
		if msgType == websocket.BinaryMessage && len(message) == 10 && message[0] == 0x01 {
			c.handleBinaryMove(message)
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
			// 0xFF prefix marks frames queued by SendBinary
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
		Log.Warnf("marshal error: %v", err)
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
	msg[0] = 0xFF
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
		return
	}

	switch env.T {
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgMove:
		c.handleMove(env.D)
	case MsgFire:
		c.handleFire(env.D)
	case MsgReload:
		c.handleReload()
	case MsgNewGame:
		c.handleNewGame()
	case MsgLeave:
		c.handleLeave()
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgProfile:
		c.handleProfile()
	case MsgLeaderboard:
		c.handleLeaderboard(env.D)
	}
}

func (c *Client) handleJoin(data json.RawMessage) {
	if c.playerID != "" {
		return // already in the match
	}
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	name := msg.Name
	if name == "" {
		name = "Recruit"
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	player := c.hub.game.HandleJoin(name, msg.Class)
	if player == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "match full"}})
		return
	}
	c.playerID = player.ID
	player.AuthPlayerID = c.authPlayerID
	c.hub.game.SetClient(player.ID, c)

	c.SendJSON(Envelope{T: MsgJoined, Data: JoinedMsg{ID: player.ID, Class: player.Class.Name}})
}

// handleBinaryMove decodes the compact 10-byte binary move message
func (c *Client) handleBinaryMove(msg []byte) {
	if c.playerID == "" {
		return
	}
	mx := float64(int16(uint16(msg[1])<<8|uint16(msg[2]))) / 1000
	mz := float64(int16(uint16(msg[3])<<8|uint16(msg[4]))) / 1000
	yaw := float64(int16(uint16(msg[5])<<8|uint16(msg[6]))) / 1000
	pitch := float64(int16(uint16(msg[7])<<8|uint16(msg[8]))) / 1000
	flags := msg[9]

	c.hub.game.HandleMove(c.playerID, MoveMsg{
		MX:    mx,
		MZ:    mz,
		Yaw:   yaw,
		Pitch: pitch,
		Jump:  flags&0x01 != 0,
	})
}

func (c *Client) handleMove(data json.RawMessage) {
	if c.playerID == "" {
		return
	}
	var msg MoveMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.game.HandleMove(c.playerID, msg)
}

func (c *Client) handleFire(data json.RawMessage) {
	if c.playerID == "" {
		return
	}
	var msg FireMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.hub.game.HandleFire(c.playerID, msg)
}

func (c *Client) handleReload() {
	if c.playerID == "" {
		return
	}
	c.hub.game.HandleReload(c.playerID)
}

func (c *Client) handleNewGame() {
	if c.playerID == "" {
		return
	}
	c.hub.game.HandleNewGame()
}

func (c *Client) handleLeave() {
	if c.playerID != "" {
		c.hub.game.RemovePlayer(c.playerID)
		c.playerID = ""
	}
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
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: token, Username: msg.Username, PlayerID: id}})
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
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: token, Username: msg.Username, PlayerID: id}})
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
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Token: msg.Token, Username: username, PlayerID: id}})
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
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		Username: c.authUsername,
		Kills:    stats.Kills,
		Deaths:   stats.Deaths,
		Wins:     stats.Wins,
		Losses:   stats.Losses,
		Playtime: stats.Playtime,
	}})
}

func (c *Client) handleLeaderboard(data json.RawMessage) {
	if c.hub.db == nil {
		return
	}
	var msg LeaderboardMsg
	_ = json.Unmarshal(data, &msg) // empty payload defaults to kills
	entries, err := c.hub.db.GetLeaderboard(msg.OrderBy, 20)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "leaderboard unavailable"}})
		return
	}
	c.SendJSON(Envelope{T: MsgLeaders, Data: entries})
}
