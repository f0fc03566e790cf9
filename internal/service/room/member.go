package room

import (
	"context"

	"github.com/watchparty/server/internal/repository/connection"
	roomrepo "github.com/watchparty/server/internal/repository/room"
	"github.com/watchparty/server/pkg/wsrouter"
)

type JoinRoomParams struct {
	RoomId        string
	ParticipantId string
	DisplayName   string
	Sender        connection.Sender
}

type JoinRoomResponse struct {
	Room      roomrepo.Room
	RoomState FullRoomState
}

// JoinRoom resolves the room metadata, registers the participant's
// connection and adds it to the live session, creating the session
// lazily on first join. The roomStateSynced snapshot is enqueued to the
// joiner under the session lock, so no concurrent broadcast can reach
// the joiner ahead of it; it must fully replace any state the client
// holds. An unknown room id never creates a session.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	roomModel, err := s.GetRoom(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	if err := s.connRepo.Add(params.ParticipantId, params.Sender); err != nil {
		return JoinRoomResponse{}, err
	}

	for {
		ses := s.registry.getOrCreate(params.RoomId, roomModel.SourceType, s.now())

		ses.mu.Lock()
		if ses.closed {
			// lost the race against releaseIfEmpty
			ses.mu.Unlock()
			continue
		}

		ses.participants[params.ParticipantId] = params.DisplayName
		state := ses.snapshotLocked(s.now())
		state.SelfId = params.ParticipantId
		if err := params.Sender.Send(wsrouter.Output{Type: EventRoomStateSynced, Payload: state}); err != nil {
			s.logger.DebugContext(ctx, "failed to send room state", "error", err)
		}
		ses.mu.Unlock()

		s.logger.InfoContext(ctx, "participant joined room",
			"room_id", params.RoomId,
			"participant_id", params.ParticipantId,
			"display_name", params.DisplayName,
		)

		return JoinRoomResponse{Room: roomModel, RoomState: state}, nil
	}
}

type LeaveRoomParams struct {
	RoomId        string
	ParticipantId string
}

// LeaveRoom deregisters the participant. An open typing entry for its
// display name is flushed immediately with a stop broadcast instead of
// being left to expire against stale state. Poll voter sets keep the
// departed participant's votes. The session is destroyed when its
// participant set becomes empty.
func (s *service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) {
	defer s.connRepo.Remove(params.ParticipantId)

	ses, ok := s.registry.get(params.RoomId)
	if !ok {
		return
	}

	ses.mu.Lock()
	displayName, joined := ses.participants[params.ParticipantId]
	if joined {
		delete(ses.participants, params.ParticipantId)

		if timer, open := ses.typingTimers[displayName]; open && !displayNameStillPresentLocked(ses, displayName) {
			timer.Stop()
			delete(ses.typingTimers, displayName)
			s.broadcastLocked(ses, EventUserStoppedTyping, displayName)
		}
	}
	ses.mu.Unlock()

	if !joined {
		return
	}

	if s.registry.releaseIfEmpty(params.RoomId) {
		s.logger.InfoContext(ctx, "room session destroyed", "room_id", params.RoomId)
	}

	s.logger.InfoContext(ctx, "participant left room",
		"room_id", params.RoomId,
		"participant_id", params.ParticipantId,
	)
}

// displayNameStillPresentLocked reports whether another participant
// still uses displayName. Display names are not required to be unique.
func displayNameStillPresentLocked(ses *session, displayName string) bool {
	for _, name := range ses.participants {
		if name == displayName {
			return true
		}
	}

	return false
}
