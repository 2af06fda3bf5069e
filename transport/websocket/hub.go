package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chalwk/tictactoe-bot/game/sink"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Message is the JSON frame sent to connected clients.
type Message struct {
	GameID     string    `json:"game_id,omitempty"`
	Event      string    `json:"event"`
	Text       string    `json:"text,omitempty"`
	Board      string    `json:"board,omitempty"`
	Recipients []string  `json:"recipients,omitempty"`
	MessageID  string    `json:"message_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Client is one WebSocket connection. A client subscribed with an empty
// game ID receives every notice.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	gameID string
}

// Hub maintains the set of active clients and fans notices out to them.
type Hub struct {
	// Registered clients by game ID; the "" key is the firehose.
	rooms map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	log *slog.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the hub's event loop. It owns the room maps; handler
// goroutines only ever talk to it through the channels.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and registers the connection. gameID may be
// empty for the firehose.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		gameID: gameID,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastNotice queues a game notice for delivery to the matching room
// and the firehose.
func (h *Hub) BroadcastNotice(n sink.Notice, messageID string) {
	recipients := make([]string, len(n.Recipients))
	copy(recipients, n.Recipients)

	h.broadcast <- &Message{
		GameID:     n.GameID,
		Event:      string(n.Event),
		Text:       n.Text,
		Board:      n.Board,
		Recipients: recipients,
		MessageID:  messageID,
		Timestamp:  time.Now(),
	}
}

func (h *Hub) registerClient(client *Client) {
	if h.rooms[client.gameID] == nil {
		h.rooms[client.gameID] = make(map[*Client]bool)
	}
	h.rooms[client.gameID][client] = true

	h.log.Debug("client registered", "game_id", client.gameID, "room_size", len(h.rooms[client.gameID]))
}

func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.rooms[client.gameID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.rooms, client.gameID)
	}

	h.log.Debug("client unregistered", "game_id", client.gameID, "room_size", len(clients))
}

func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error("marshal broadcast message", "error", err)
		return
	}

	h.deliver(message.GameID, data)
	if message.GameID != "" {
		h.deliver("", data)
	}
}

func (h *Hub) deliver(room string, data []byte) {
	for client := range h.rooms[room] {
		select {
		case client.send <- data:
		default:
			// Slow client, drop it.
			h.unregisterClient(client)
		}
	}
}

// readPump discards client frames and keeps the connection alive. The
// socket is a one-way notice feed.
func (c *Client) readPump() {
	defer func() {
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
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read", "error", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
func (c *Client) writePump() {
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
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
