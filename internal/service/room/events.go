package room

import "github.com/watchparty/server/pkg/wsrouter"

// Server-to-client event names. Together with the client-to-server names
// routed by the controller they form the room event surface.
const (
	EventRoomStateSynced   = "roomStateSynced"
	EventNewMessage        = "newMessage"
	EventUserStartedTyping = "userStartedTyping"
	EventUserStoppedTyping = "userStoppedTyping"
	EventPollCreated       = "pollCreated"
	EventPollUpdated       = "pollUpdated"
	EventPlaybackSynced    = "playbackSynced"
)

// broadcastLocked fans an event out to every participant of the session,
// the originator included. Callers hold ses.mu; Send only enqueues, so
// holding the lock keeps the per-room event order identical for all
// participants without blocking on slow connections.
func (s *service) broadcastLocked(ses *session, eventType string, payload any) {
	out := wsrouter.Output{Type: eventType, Payload: payload}
	for participantId := range ses.participants {
		sender, err := s.connRepo.Get(participantId)
		if err != nil {
			continue
		}
		if err := sender.Send(out); err != nil {
			s.logger.Debug("failed to send event",
				"event", eventType,
				"participant_id", participantId,
				"error", err,
			)
		}
	}
}
