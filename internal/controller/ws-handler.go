package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/watchparty/server/internal/service/room"
)

type sendMessageInput struct {
	RoomId  string `json:"roomId"`
	Message string `json:"message" validate:"required"`
}

func (c controller) handleSendMessage(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	input, err := decode[sendMessageInput](payload)
	if err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %v", ErrValidationError, validationErrors)
	}

	if err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		RoomId:        c.getRoomIdFromCtx(ctx),
		ParticipantId: c.getParticipantIdFromCtx(ctx),
		Message:       input.Message,
	}); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (c controller) handleStartTyping(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	// payload is the bare room id; the session the sender joined is
	// authoritative
	if _, err := decode[string](payload); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	if err := c.roomService.StartTyping(ctx, &room.TypingParams{
		RoomId:        c.getRoomIdFromCtx(ctx),
		ParticipantId: c.getParticipantIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to start typing: %w", err)
	}

	return nil
}

func (c controller) handleStopTyping(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	if _, err := decode[string](payload); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	if err := c.roomService.StopTyping(ctx, &room.TypingParams{
		RoomId:        c.getRoomIdFromCtx(ctx),
		ParticipantId: c.getParticipantIdFromCtx(ctx),
	}); err != nil {
		return fmt.Errorf("failed to stop typing: %w", err)
	}

	return nil
}

type createPollInput struct {
	RoomId string `json:"roomId"`
	Poll   struct {
		Question string   `json:"question" validate:"required,max=200"`
		Options  []string `json:"options"  validate:"min=2,dive,required,max=100"`
	} `json:"poll"`
}

func (c controller) handleCreatePoll(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	input, err := decode[createPollInput](payload)
	if err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %v", ErrValidationError, validationErrors)
	}

	if err := c.roomService.CreatePoll(ctx, &room.CreatePollParams{
		RoomId:        c.getRoomIdFromCtx(ctx),
		ParticipantId: c.getParticipantIdFromCtx(ctx),
		Question:      input.Poll.Question,
		Options:       input.Poll.Options,
	}); err != nil {
		return fmt.Errorf("failed to create poll: %w", err)
	}

	return nil
}

type voteInput struct {
	RoomId      string `json:"roomId"`
	OptionIndex int    `json:"optionIndex" validate:"gte=0"`
}

func (c controller) handleVote(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	input, err := decode[voteInput](payload)
	if err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %v", ErrValidationError, validationErrors)
	}

	if err := c.roomService.Vote(ctx, &room.VoteParams{
		RoomId:        c.getRoomIdFromCtx(ctx),
		ParticipantId: c.getParticipantIdFromCtx(ctx),
		OptionIndex:   input.OptionIndex,
	}); err != nil {
		return fmt.Errorf("failed to vote: %w", err)
	}

	return nil
}

type syncPlaybackInput struct {
	RoomId      string  `json:"roomId"`
	Event       string  `json:"event"       validate:"required,oneof=play pause"`
	CurrentTime float64 `json:"currentTime" validate:"gte=0"`
	Seq         uint64  `json:"seq"`
}

func (c controller) handleSyncPlayback(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	input, err := decode[syncPlaybackInput](payload)
	if err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		return fmt.Errorf("%w: %v", ErrValidationError, validationErrors)
	}

	if err := c.roomService.SyncPlayback(ctx, &room.SyncPlaybackParams{
		RoomId:        c.getRoomIdFromCtx(ctx),
		ParticipantId: c.getParticipantIdFromCtx(ctx),
		Event:         room.PlaybackEvent(input.Event),
		CurrentTime:   input.CurrentTime,
		Seq:           input.Seq,
	}); err != nil {
		return fmt.Errorf("failed to sync playback: %w", err)
	}

	return nil
}
