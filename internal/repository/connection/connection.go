package connection

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var (
	ErrNotFound       = errors.New("connection not found")
	ErrAlreadyExists  = errors.New("connection already exists")
	ErrClosed         = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// Sender delivers outbound events to one participant. Send enqueues
// without blocking; delivery is asynchronous relative to the caller.
type Sender interface {
	Send(v any) error
	Close()
}

type wsSender struct {
	conn      *websocket.Conn
	send      chan any
	done      chan struct{}
	closeOnce sync.Once
}

// NewSender wraps a websocket connection with a buffered outbound queue
// drained by a single writer goroutine, so broadcasts from many rooms
// never interleave writes on one connection.
func NewSender(conn *websocket.Conn, bufferSize int) Sender {
	s := &wsSender{
		conn: conn,
		send: make(chan any, bufferSize),
		done: make(chan struct{}),
	}
	go s.writePump()

	return s
}

func (s *wsSender) writePump() {
	for {
		select {
		case <-s.done:
			return
		case v := <-s.send:
			if err := s.conn.WriteJSON(v); err != nil {
				s.Close()
				return
			}
		}
	}
}

func (s *wsSender) Send(v any) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	select {
	case s.send <- v:
		return nil
	case <-s.done:
		return ErrClosed
	default:
		// a participant that cannot keep up is dropped rather than
		// allowed to stall the room
		s.Close()
		return ErrSendBufferFull
	}
}

func (s *wsSender) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
