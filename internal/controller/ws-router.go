package controller

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/watchparty/server/pkg/wsrouter"
)

// Client-to-server event names.
const (
	EventJoinRoom     = "joinRoom"
	EventSendMessage  = "sendMessage"
	EventStartTyping  = "startTyping"
	EventStopTyping   = "stopTyping"
	EventCreatePoll   = "createPoll"
	EventVote         = "vote"
	EventSyncPlayback = "syncPlayback"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	// chat
	mux.Handle(EventSendMessage, c.handleSendMessage)
	mux.Handle(EventStartTyping, c.handleStartTyping)
	mux.Handle(EventStopTyping, c.handleStopTyping)

	// polls
	mux.Handle(EventCreatePoll, c.handleCreatePoll)
	mux.Handle(EventVote, c.handleVote)

	// playback
	mux.Handle(EventSyncPlayback, c.handleSyncPlayback)

	// malformed or rejected events are dropped without disturbing the
	// connection or the other participants
	mux.OnError(func(ctx context.Context, _ *websocket.Conn, err error) {
		c.logger.DebugContext(ctx, "ws handler error",
			"type", wsrouter.GetMessageTypeFromCtx(ctx),
			"error", err,
		)
	})

	return mux
}
