package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// MessageWriter delivers one serialized frame to a client connection.
// Tests substitute an in-memory recorder for the websocket-backed
// Subscriber.
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Subscriber wraps a websocket connection with a write lock so the tick
// broadcaster and the session's own reply path never interleave frames.
type Subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewSubscriber wraps the given connection.
func NewSubscriber(conn *websocket.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

// WriteMessage implements MessageWriter with a write deadline, so a stalled
// consumer fails its own connection instead of back-pressuring the tick
// loop.
func (s *Subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// Close implements MessageWriter.
func (s *Subscriber) Close() error {
	return s.conn.Close()
}
