// Package live publishes top-of-book snapshots to connected websocket
// clients, adapted from the teacher's session manager: a registry of
// clients, a bounded per-client send buffer, and drop-not-block semantics
// for a slow reader.
package live

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Snapshot is what gets published to subscribers: one security's current
// best bid/ask. cmd/replay publishes one for every book with a best level
// on each 200ms tick, whether or not the book changed.
type Snapshot struct {
	Stock    string  `json:"stock"`
	BidPrice float64 `json:"bid_price"`
	BidSize  uint32  `json:"bid_size"`
	AskPrice float64 `json:"ask_price"`
	AskSize  uint32  `json:"ask_size"`
}

var clientIDCounter uint64

// Client is one connected subscriber. Send never blocks: a full buffer
// increments Dropped and the message is discarded, exactly as the
// teacher's session.Client does for a slow reader.
type Client struct {
	ID      uint64
	conn    *websocket.Conn
	sendCh  chan []byte
	Dropped uint64

	closeOnce sync.Once
	mgr       *Manager

	mu     sync.Mutex
	tickers map[string]bool // nil/empty means "subscribed to everything"
}

// Send enqueues payload for delivery, returning false (and bumping
// Dropped) if the client's buffer is already full.
func (c *Client) Send(payload []byte) bool {
	select {
	case c.sendCh <- payload:
		return true
	default:
		atomic.AddUint64(&c.Dropped, 1)
		return false
	}
}

func (c *Client) subscribed(stock string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return true
	}
	return c.tickers[stock]
}

func (c *Client) writePump() {
	for payload := range c.sendCh {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.close()
			return
		}
	}
}

func (c *Client) readPump() {
	defer c.close()
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var sub struct {
			Subscribe []string `json:"subscribe"`
		}
		if err := json.Unmarshal(msg, &sub); err != nil {
			continue
		}
		c.mu.Lock()
		c.tickers = make(map[string]bool, len(sub.Subscribe))
		for _, t := range sub.Subscribe {
			c.tickers[t] = true
		}
		c.mu.Unlock()
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.mgr.unregister(c)
		close(c.sendCh)
		c.conn.Close()
	})
}

// Manager owns the client registry and broadcasts snapshots to whichever
// clients subscribed to the security involved.
type Manager struct {
	mu             sync.RWMutex
	clients        map[uint64]*Client
	sendBufferSize int
}

// NewManager creates a Manager whose clients each get a send buffer of
// sendBufferSize messages before Send starts dropping.
func NewManager(sendBufferSize int) *Manager {
	if sendBufferSize <= 0 {
		sendBufferSize = 256
	}
	return &Manager{clients: make(map[uint64]*Client), sendBufferSize: sendBufferSize}
}

// HandleWS upgrades an HTTP request to a websocket connection and
// registers the resulting client.
func (m *Manager) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: upgrade failed: %v", err)
		return
	}
	c := &Client{
		ID:     atomic.AddUint64(&clientIDCounter, 1),
		conn:   conn,
		sendCh: make(chan []byte, m.sendBufferSize),
		mgr:    m,
	}
	m.mu.Lock()
	m.clients[c.ID] = c
	m.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

func (m *Manager) unregister(c *Client) {
	m.mu.Lock()
	delete(m.clients, c.ID)
	m.mu.Unlock()
}

// Publish sends snap to every client subscribed to snap.Stock (or
// subscribed to everything).
func (m *Manager) Publish(snap Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Printf("live: marshal snapshot: %v", err)
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.clients {
		if c.subscribed(snap.Stock) {
			c.Send(payload)
		}
	}
}

// ClientCount returns the number of currently registered clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
