package telemetry

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsSendBuffer   = 64
	wsWriteTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsClient struct {
	conn *websocket.Conn
	send chan Event
	once sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// WebSocketStream pushes hub events to browser WebSocket clients as JSON.
type WebSocketStream struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

var _ Sink = (*WebSocketStream)(nil)

// NewWebSocketStream creates an empty stream.
func NewWebSocketStream() *WebSocketStream {
	return &WebSocketStream{clients: make(map[*wsClient]struct{})}
}

// ServeHTTP upgrades the connection and streams events until the peer leaves.
func (s *WebSocketStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("telemetry: websocket upgrade: %v", err)
		return
	}

	// The server's read timeout must not end a long-lived stream.
	_ = conn.SetReadDeadline(time.Time{})

	client := &wsClient{conn: conn, send: make(chan Event, wsSendBuffer)}
	s.mu.Lock()
	s.clients[client] = struct{}{}
	s.mu.Unlock()

	go s.writeLoop(client)

	// Inbound frames are ignored; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.remove(client)
}

func (s *WebSocketStream) writeLoop(c *wsClient) {
	defer c.conn.Close()
	for event := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteJSON(event); err != nil {
			s.remove(c)
			return
		}
	}
}

func (s *WebSocketStream) remove(c *wsClient) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		c.close()
	}
}

// Deliver queues event for every client, dropping it for clients whose
// buffer is full.
func (s *WebSocketStream) Deliver(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		select {
		case c.send <- event:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (s *WebSocketStream) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close disconnects every client.
func (s *WebSocketStream) Close() {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[*wsClient]struct{})
	s.mu.Unlock()

	for c := range clients {
		c.close()
	}
}
