package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/watchparty/server/internal/service/room"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outEnvelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client is one participant's side of the room event channel: it joins
// a room, keeps the Mirror in sync with broadcasts and drives the local
// player through the Synchronizer.
type Client struct {
	conn   *websocket.Conn
	roomId string
	mirror *Mirror
	sync   *Synchronizer
	logger *slog.Logger

	writeMu sync.Mutex
}

// Dial connects to the server, joins the room and returns once the
// initial roomStateSynced snapshot has been applied. Call Listen to
// consume subsequent broadcasts.
func Dial(ctx context.Context, url, roomId, displayName string, player Player, logger *slog.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial server: %w", err)
	}

	c := &Client{
		conn:   conn,
		roomId: roomId,
		mirror: NewMirror(),
		logger: logger,
	}
	c.sync = NewSynchronizer(player, c.emitPlayback)

	if err := c.write("joinRoom", map[string]any{
		"roomId":      roomId,
		"displayName": displayName,
	}); err != nil {
		conn.Close()
		return nil, err
	}

	// the first server event is either the snapshot or a join error
	var msg envelope
	if err := conn.ReadJSON(&msg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read join response: %w", err)
	}
	if msg.Type != room.EventRoomStateSynced {
		conn.Close()
		return nil, fmt.Errorf("join rejected: %s", msg.Payload)
	}

	var state room.FullRoomState
	if err := json.Unmarshal(msg.Payload, &state); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to decode room state: %w", err)
	}
	c.mirror.ApplySnapshot(state)
	c.sync.SetSelfId(state.SelfId)

	return c, nil
}

func (c *Client) Mirror() *Mirror { return c.mirror }

func (c *Client) Synchronizer() *Synchronizer { return c.sync }

func (c *Client) Close() error { return c.conn.Close() }

// Listen consumes broadcasts until the connection fails.
func (c *Client) Listen(ctx context.Context) error {
	for {
		var msg envelope
		if err := c.conn.ReadJSON(&msg); err != nil {
			return err
		}

		if err := c.dispatch(msg); err != nil {
			c.logger.WarnContext(ctx, "failed to handle event", "type", msg.Type, "error", err)
		}
	}
}

func (c *Client) dispatch(msg envelope) error {
	switch msg.Type {
	case room.EventRoomStateSynced:
		var state room.FullRoomState
		if err := json.Unmarshal(msg.Payload, &state); err != nil {
			return err
		}
		c.mirror.ApplySnapshot(state)
		c.sync.SetSelfId(state.SelfId)
	case room.EventNewMessage:
		var chatMsg room.ChatMessage
		if err := json.Unmarshal(msg.Payload, &chatMsg); err != nil {
			return err
		}
		c.mirror.AppendMessage(chatMsg)
	case room.EventPollCreated, room.EventPollUpdated:
		var poll room.Poll
		if err := json.Unmarshal(msg.Payload, &poll); err != nil {
			return err
		}
		c.mirror.SetPoll(&poll)
	case room.EventUserStartedTyping:
		var displayName string
		if err := json.Unmarshal(msg.Payload, &displayName); err != nil {
			return err
		}
		c.mirror.AddTyping(displayName)
	case room.EventUserStoppedTyping:
		var displayName string
		if err := json.Unmarshal(msg.Payload, &displayName); err != nil {
			return err
		}
		c.mirror.RemoveTyping(displayName)
	case room.EventPlaybackSynced:
		var state room.PlaybackState
		if err := json.Unmarshal(msg.Payload, &state); err != nil {
			return err
		}
		c.sync.OnRemoteBroadcast(state)
	}

	return nil
}

func (c *Client) SendChatMessage(message string) error {
	return c.write("sendMessage", map[string]any{
		"roomId":  c.roomId,
		"message": message,
	})
}

func (c *Client) StartTyping() error {
	return c.write("startTyping", c.roomId)
}

func (c *Client) StopTyping() error {
	return c.write("stopTyping", c.roomId)
}

func (c *Client) CreatePoll(question string, options []string) error {
	return c.write("createPoll", map[string]any{
		"roomId": c.roomId,
		"poll": map[string]any{
			"question": question,
			"options":  options,
		},
	})
}

func (c *Client) Vote(optionIndex int) error {
	return c.write("vote", map[string]any{
		"roomId":      c.roomId,
		"optionIndex": optionIndex,
	})
}

func (c *Client) emitPlayback(event room.PlaybackEvent, currentTime float64, seq uint64) {
	if err := c.write("syncPlayback", map[string]any{
		"roomId":      c.roomId,
		"event":       event,
		"currentTime": currentTime,
		"seq":         seq,
	}); err != nil {
		c.logger.Warn("failed to emit playback action", "error", err)
	}
}

func (c *Client) write(eventType string, payload any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.conn.WriteJSON(outEnvelope{Type: eventType, Payload: payload})
}
