package room

import "context"

type SyncPlaybackParams struct {
	RoomId        string
	ParticipantId string
	Event         PlaybackEvent
	CurrentTime   float64
	Seq           uint64
}

// SyncPlayback records the authoritative transport state and broadcasts
// it to all participants, the originator included. The originator's seq
// and id ride along so its synchronizer can discard the confirmation
// echo instead of re-driving its own player.
func (s *service) SyncPlayback(ctx context.Context, params *SyncPlaybackParams) error {
	if params.Event != PlaybackPlay && params.Event != PlaybackPause {
		return ErrInvalidPlaybackEvent
	}
	if params.CurrentTime < 0 {
		return ErrInvalidPlaybackEvent
	}

	ses, err := s.getSession(params.RoomId)
	if err != nil {
		return err
	}

	ses.mu.Lock()
	defer ses.mu.Unlock()

	if _, ok := ses.participants[params.ParticipantId]; !ok {
		return ErrNotJoined
	}

	ses.playback = playback{
		event:     params.Event,
		position:  params.CurrentTime,
		updatedAt: s.now(),
	}

	s.broadcastLocked(ses, EventPlaybackSynced, PlaybackState{
		Event:       params.Event,
		CurrentTime: params.CurrentTime,
		Seq:         params.Seq,
		SenderId:    params.ParticipantId,
	})

	return nil
}
