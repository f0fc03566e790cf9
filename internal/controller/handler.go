package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/watchparty/server/internal/repository/connection"
	"github.com/watchparty/server/internal/service/room"
	"github.com/watchparty/server/pkg/wsrouter"
)

const joinTimeout = 10 * time.Second

type joinRoomInput struct {
	RoomId      string `json:"roomId"      validate:"required"`
	DisplayName string `json:"displayName" validate:"required,max=32"`
}

// serveWS upgrades the connection and performs the join handshake: the
// first message must be a joinRoom event, everything else closes the
// connection. After a successful join all writes to the peer go through
// its sender and all further messages are dispatched by the ws router.
func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	participantId := uuid.NewString()
	sender := connection.NewSender(conn, c.cfg.SendBufferSize)
	defer sender.Close()

	conn.SetReadDeadline(time.Now().Add(joinTimeout))
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read join message", "error", err)
		return
	}
	conn.SetReadDeadline(time.Time{})

	if msg.Type != EventJoinRoom {
		c.logger.DebugContext(r.Context(), "unexpected first message", "type", msg.Type)
		return
	}

	input, err := decode[joinRoomInput](msg.Payload)
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to decode join payload", "error", err)
		return
	}
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(r.Context(), "join validation failed", "errors", validationErrors)
		// no traffic has gone through the sender yet, so writing on the
		// conn directly is safe and guarantees delivery before close
		conn.WriteJSON(wsrouter.Output{Type: "error", Payload: envelope{"message": "invalid join request"}})
		return
	}

	// roomStateSynced is enqueued by the service before any concurrent
	// broadcast can reach this sender.
	joinRoomResponse, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		RoomId:        input.RoomId,
		ParticipantId: participantId,
		DisplayName:   input.DisplayName,
		Sender:        sender,
	})
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to join room", "error", err)
		if errors.Is(err, room.ErrRoomNotFound) {
			// a failed join never registers the sender, so the conn is
			// still exclusively ours here
			conn.WriteJSON(wsrouter.Output{Type: "error", Payload: envelope{"message": "room not found"}})
		}
		return
	}
	defer c.roomService.LeaveRoom(r.Context(), &room.LeaveRoomParams{
		RoomId:        input.RoomId,
		ParticipantId: participantId,
	})

	ctx := context.WithValue(r.Context(), roomIdCtxKey, joinRoomResponse.Room.Id)
	ctx = context.WithValue(ctx, participantIdCtxKey, participantId)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(r.Context(), "connection closed", "error", err)
	}
}
