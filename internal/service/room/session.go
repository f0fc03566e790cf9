package room

import (
	"sync"
	"time"
)

// session owns the authoritative in-memory state of one live room. All
// mutation happens under mu (single-writer per room); different rooms
// proceed in parallel. Broadcast enqueueing happens while mu is held so
// every participant observes room events in the same order.
type session struct {
	id         string
	sourceType string

	mu           sync.Mutex
	closed       bool
	playback     playback
	chatLog      []ChatMessage
	activePoll   *Poll
	participants map[string]string // participantId -> displayName
	typingTimers map[string]*time.Timer
}

func newSession(id, sourceType string, now time.Time) *session {
	return &session{
		id:         id,
		sourceType: sourceType,
		playback: playback{
			event:     PlaybackPause,
			updatedAt: now,
		},
		participants: make(map[string]string),
		typingTimers: make(map[string]*time.Timer),
	}
}

// snapshotLocked builds the full join snapshot. Playback position is
// extrapolated to now while playing so a late joiner lands on the
// current estimate, not the last recorded one.
func (s *session) snapshotLocked(now time.Time) FullRoomState {
	chatHistory := make([]ChatMessage, len(s.chatLog))
	copy(chatHistory, s.chatLog)

	var activePoll *Poll
	if s.activePoll != nil {
		activePoll = s.activePoll.clone()
	}

	return FullRoomState{
		LastEvent:      s.playback.event,
		LastKnownTime:  s.playback.positionAt(now),
		LastUpdateTime: now.UnixMilli(),
		ChatHistory:    chatHistory,
		ActivePoll:     activePoll,
	}
}
