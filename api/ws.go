package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hoshinonyaruko/insane-snake/structs"
)

// sendBuffer is how many frames a slow client may lag before frames are dropped.
const sendBuffer = 16

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// clientMessage is what a websocket client sends: {"input":"up"}.
type clientMessage struct {
	Input string `json:"input"`
}

// wsClient is one websocket connection. Only its write pump writes to ws.
type wsClient struct {
	ID   string
	ws   *websocket.Conn
	send chan []byte
}

// Hub fans snapshots out to websocket clients and feeds their input back into
// the game loop.
type Hub struct {
	srv *Server

	mu      sync.RWMutex
	clients map[string]*wsClient
}

func newHub(srv *Server) *Hub {
	return &Hub{srv: srv, clients: make(map[string]*wsClient)}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.send)
		delete(h.clients, id)
	}
}

// Broadcast encodes snap once and queues it for every client. A client whose
// queue is full misses this frame.
func (h *Hub) Broadcast(snap structs.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("encode snapshot: %v", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Serve upgrades the request and runs the connection until it closes.
func (h *Hub) Serve(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	client := &wsClient{
		ID:   uuid.New().String(),
		ws:   ws,
		send: make(chan []byte, sendBuffer),
	}

	// 先发送当前画面，再加入广播
	snap, err := h.srv.snapshot(c.Request.Context())
	if err != nil {
		log.Printf("ws %s: %v", client.ID, err)
		ws.Close()
		return
	}
	if data, err := json.Marshal(snap); err == nil {
		client.send <- data
	}

	h.add(client)
	log.Printf("ws client connected: %s", client.ID)

	go client.writePump()
	h.readLoop(client)
}

func (c *wsClient) writePump() {
	defer c.ws.Close()
	for data := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("ws write error for %s: %v", c.ID, err)
			return
		}
	}
	_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readLoop posts each client input to the game loop until the connection drops.
func (h *Hub) readLoop(c *wsClient) {
	defer func() {
		h.remove(c.ID)
		log.Printf("ws client disconnected: %s", c.ID)
	}()

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read error for %s: %v", c.ID, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("bad message from %s: %v", c.ID, err)
			continue
		}
		in := structs.ParseInput(msg.Input)
		if !h.srv.loop.Post(func() { h.srv.ctrl.Input(in) }) {
			return
		}
	}
}
