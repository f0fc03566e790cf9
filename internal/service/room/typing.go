package room

import (
	"context"
	"time"
)

type TypingParams struct {
	RoomId        string
	ParticipantId string
}

// StartTyping adds the participant's display name to the typing set and
// arms its expiry timer. A broadcast fires only on the first signal;
// repeated signals inside the debounce window re-arm the timer without
// emitting duplicate start events.
func (s *service) StartTyping(ctx context.Context, params *TypingParams) error {
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

	if timer, open := ses.typingTimers[displayName]; open {
		// refresh: replace the timer instead of resetting it so a
		// callback that already fired and is waiting on the lock
		// cannot expire the refreshed entry
		timer.Stop()
		ses.typingTimers[displayName] = s.newTypingTimer(ses, displayName)
		return nil
	}

	ses.typingTimers[displayName] = s.newTypingTimer(ses, displayName)
	s.broadcastLocked(ses, EventUserStartedTyping, displayName)

	return nil
}

// StopTyping clears the participant's typing entry and broadcasts the
// stop event immediately. Idempotent: stopping an absent entry is a
// no-op.
func (s *service) StopTyping(ctx context.Context, params *TypingParams) error {
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

	return nil
}

// stopTypingLocked cancels the entry's timer, removes it and broadcasts
// userStoppedTyping. Caller holds ses.mu.
func (s *service) stopTypingLocked(ses *session, displayName string) {
	timer, open := ses.typingTimers[displayName]
	if !open {
		return
	}

	timer.Stop()
	delete(ses.typingTimers, displayName)
	s.broadcastLocked(ses, EventUserStoppedTyping, displayName)
}

// newTypingTimer arms the self-expiry of a typing entry. The callback
// re-checks the entry under the session lock: a refresh or stop that
// raced the firing makes it a no-op, and a closed session is left alone.
func (s *service) newTypingTimer(ses *session, displayName string) *time.Timer {
	var timer *time.Timer
	timer = time.AfterFunc(s.typingTimeout, func() {
		ses.mu.Lock()
		defer ses.mu.Unlock()

		if ses.closed {
			return
		}
		if current, open := ses.typingTimers[displayName]; !open || current != timer {
			return
		}

		delete(ses.typingTimers, displayName)
		s.broadcastLocked(ses, EventUserStoppedTyping, displayName)
	})

	return timer
}
