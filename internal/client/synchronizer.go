package client

import (
	"sync"
	"time"

	"github.com/watchparty/server/internal/service/room"
)

// EmitFunc sends a locally originated playback action to the room.
type EmitFunc func(event room.PlaybackEvent, currentTime float64, seq uint64)

// Synchronizer reconciles local player control actions with remote
// playbackSynced broadcasts. Every local action carries a monotonically
// increasing sequence number; a broadcast carrying this participant's
// own sender id and a sequence number this synchronizer emitted is its
// own confirmation echo and is discarded instead of driving the
// player, so a participant never
// reacts to the echo of its own play or pause. Unlike a suppression
// timer this holds regardless of how late the echo arrives.
type Synchronizer struct {
	player Player
	emit   EmitFunc

	mu             sync.Mutex
	selfId         string
	nextSeq        uint64
	pending        map[uint64]struct{}
	applyingRemote bool
}

func NewSynchronizer(player Player, emit EmitFunc) *Synchronizer {
	return &Synchronizer{
		player: player,
		emit:   emit,
		// seeded with wall-clock nanos so sequence numbers from
		// different participants in the same room do not collide
		nextSeq: uint64(time.Now().UnixNano()),
		pending: make(map[uint64]struct{}),
	}
}

// SetSelfId records the participant id the server assigned at join;
// broadcasts carry it as senderId.
func (s *Synchronizer) SetSelfId(selfId string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selfId = selfId
}

// OnLocalTransition is invoked by the local player's own event handlers
// when the user plays or pauses (for a direct media element, autoplay
// and buffering edges are reported the same way). Transitions the
// synchronizer itself is driving are suppressed so a remote correction
// never bounces back out as a new action.
func (s *Synchronizer) OnLocalTransition(event room.PlaybackEvent, position float64) {
	s.mu.Lock()
	if s.applyingRemote {
		s.mu.Unlock()
		return
	}
	s.nextSeq++
	seq := s.nextSeq
	s.pending[seq] = struct{}{}
	s.mu.Unlock()

	s.emit(event, position, seq)
}

// OnRemoteBroadcast merges a playbackSynced broadcast into the local
// player. It reports whether the player was driven; a discarded
// confirmation echo returns false.
func (s *Synchronizer) OnRemoteBroadcast(state room.PlaybackState) bool {
	s.mu.Lock()
	// both checks are required: another participant's broadcast must
	// drive the player even if its seq happens to collide with one of
	// ours, and must not consume the pending entry
	if _, own := s.pending[state.Seq]; own && state.SenderId == s.selfId {
		delete(s.pending, state.Seq)
		s.mu.Unlock()
		return false
	}
	s.applyingRemote = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.applyingRemote = false
		s.mu.Unlock()
	}()

	s.player.Seek(state.CurrentTime)
	if state.Event == room.PlaybackPlay {
		s.player.Play()
	} else {
		s.player.Pause()
	}

	return true
}
