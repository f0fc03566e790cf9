package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

var ErrUnknownMessageType = errors.New("unknown message type")

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Output is the outbound counterpart of the inbound envelope.
type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error

type ErrorFunc func(ctx context.Context, conn *websocket.Conn, err error)

type WSRouter struct {
	routes  map[string]HandlerFunc
	onError ErrorFunc
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

// OnError registers a callback invoked when a handler returns an error.
// Handler errors never terminate the connection.
func (r *WSRouter) OnError(f ErrorFunc) {
	r.onError = f
}

// ServeConn reads messages from the connection until the read fails,
// routing each one to the handler registered for its type.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)

		handler, exists := r.routes[msg.Type]
		if !exists {
			if r.onError != nil {
				r.onError(msgCtx, conn, fmt.Errorf("%w: %s", ErrUnknownMessageType, msg.Type))
			}
			continue
		}

		if err := handler(msgCtx, conn, msg.Payload); err != nil && r.onError != nil {
			r.onError(msgCtx, conn, err)
		}
	}
}
