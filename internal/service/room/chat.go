package room

import (
	"context"
	"strings"
)

type SendMessageParams struct {
	RoomId        string
	ParticipantId string
	Message       string
}

// SendMessage appends the message to the room transcript in arrival
// order and broadcasts it to all participants, the author included. The
// transcript stores raw text only; render classification happens at read
// time. An open typing entry for the author is stopped synchronously
// ahead of the message broadcast so typing indicators never flicker
// after a send.
func (s *service) SendMessage(ctx context.Context, params *SendMessageParams) error {
	if strings.TrimSpace(params.Message) == "" {
		return ErrEmptyMessage
	}
	if len(params.Message) > s.messageMaxLength {
		return ErrMessageTooLong
	}

	ses, err := s.getSession(params.RoomId)
	if err != nil {
		return err
	}

	ses.mu.Lock()
	defer ses.mu.Unlock()

	displayName, ok := ses.participants[params.ParticipantId]
	if !ok {
		return ErrNotJoined
	}

	s.stopTypingLocked(ses, displayName)

	msg := ChatMessage{
		Author:  displayName,
		Message: params.Message,
		SentAt:  s.now(),
	}
	ses.chatLog = append(ses.chatLog, msg)
	s.broadcastLocked(ses, EventNewMessage, msg)

	return nil
}
