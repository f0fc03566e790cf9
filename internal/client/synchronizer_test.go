package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchparty/server/internal/service/room"
)

type fakePlayer struct {
	seeks      []float64
	playCalls  int
	pauseCalls int
	position   float64

	sync *Synchronizer
	// when set, control calls re-enter the synchronizer the way a real
	// player's event handlers would
	reentrant bool
}

func (p *fakePlayer) Seek(position float64) {
	p.seeks = append(p.seeks, position)
	p.position = position
}

func (p *fakePlayer) Play() {
	p.playCalls++
	if p.reentrant {
		p.sync.OnLocalTransition(room.PlaybackPlay, p.position)
	}
}

func (p *fakePlayer) Pause() {
	p.pauseCalls++
	if p.reentrant {
		p.sync.OnLocalTransition(room.PlaybackPause, p.position)
	}
}

func (p *fakePlayer) CurrentPosition() float64 { return p.position }

type emitted struct {
	event       room.PlaybackEvent
	currentTime float64
	seq         uint64
}

func newTestSynchronizer() (*Synchronizer, *fakePlayer, *[]emitted) {
	player := &fakePlayer{}
	var emits []emitted
	s := NewSynchronizer(player, func(event room.PlaybackEvent, currentTime float64, seq uint64) {
		emits = append(emits, emitted{event, currentTime, seq})
	})
	s.SetSelfId("self")
	player.sync = s

	return s, player, &emits
}

func TestLocalTransitionEmitsWithFreshSeq(t *testing.T) {
	s, _, emits := newTestSynchronizer()

	s.OnLocalTransition(room.PlaybackPlay, 10)
	s.OnLocalTransition(room.PlaybackPause, 12)

	require.Len(t, *emits, 2)
	assert.Equal(t, room.PlaybackPlay, (*emits)[0].event)
	assert.Equal(t, 10.0, (*emits)[0].currentTime)
	assert.Greater(t, (*emits)[1].seq, (*emits)[0].seq, "sequence numbers increase monotonically")
}

func TestOwnEchoIsDiscarded(t *testing.T) {
	s, player, emits := newTestSynchronizer()

	s.OnLocalTransition(room.PlaybackPlay, 10)
	echo := room.PlaybackState{Event: room.PlaybackPlay, CurrentTime: 10, Seq: (*emits)[0].seq, SenderId: "self"}

	applied := s.OnRemoteBroadcast(echo)
	assert.False(t, applied, "confirmation echo must not drive the player")
	assert.Zero(t, player.playCalls)
	assert.Empty(t, player.seeks)
}

func TestLateEchoStillDiscarded(t *testing.T) {
	// unlike a suppression timer, seq matching holds no matter how many
	// foreign events arrive before the echo comes back
	s, player, emits := newTestSynchronizer()

	s.OnLocalTransition(room.PlaybackPause, 30)

	foreign := room.PlaybackState{Event: room.PlaybackPlay, CurrentTime: 31, Seq: 999, SenderId: "other"}
	assert.True(t, s.OnRemoteBroadcast(foreign))
	assert.Equal(t, 1, player.playCalls)

	echo := room.PlaybackState{Event: room.PlaybackPause, CurrentTime: 30, Seq: (*emits)[0].seq, SenderId: "self"}
	assert.False(t, s.OnRemoteBroadcast(echo))
	assert.Equal(t, 1, player.playCalls)
	assert.Zero(t, player.pauseCalls)
}

func TestEchoDiscardedOnlyOnce(t *testing.T) {
	s, player, emits := newTestSynchronizer()

	s.OnLocalTransition(room.PlaybackPlay, 10)
	echo := room.PlaybackState{Event: room.PlaybackPlay, CurrentTime: 10, Seq: (*emits)[0].seq, SenderId: "self"}

	assert.False(t, s.OnRemoteBroadcast(echo))
	// a second broadcast with the same seq is no longer pending and is
	// treated as a genuine remote action
	assert.True(t, s.OnRemoteBroadcast(echo))
	assert.Equal(t, 1, player.playCalls)
}

func TestForeignSeqCollisionNotSwallowed(t *testing.T) {
	s, player, emits := newTestSynchronizer()

	s.OnLocalTransition(room.PlaybackPlay, 10)
	ownSeq := (*emits)[0].seq

	// another participant's broadcast that happens to reuse our seq
	// must drive the player and must not consume the pending entry
	collision := room.PlaybackState{Event: room.PlaybackPause, CurrentTime: 20, Seq: ownSeq, SenderId: "other"}
	assert.True(t, s.OnRemoteBroadcast(collision))
	assert.Equal(t, 1, player.pauseCalls)

	echo := room.PlaybackState{Event: room.PlaybackPlay, CurrentTime: 10, Seq: ownSeq, SenderId: "self"}
	assert.False(t, s.OnRemoteBroadcast(echo), "own echo is still recognized after the collision")
	assert.Zero(t, player.playCalls)
}

func TestRemoteBroadcastDrivesPlayer(t *testing.T) {
	s, player, _ := newTestSynchronizer()

	applied := s.OnRemoteBroadcast(room.PlaybackState{Event: room.PlaybackPause, CurrentTime: 42.5, Seq: 7, SenderId: "other"})
	assert.True(t, applied)
	require.Len(t, player.seeks, 1)
	assert.Equal(t, 42.5, player.seeks[0])
	assert.Equal(t, 1, player.pauseCalls)
	assert.Zero(t, player.playCalls)
}

func TestRemoteDrivenTransitionDoesNotBounce(t *testing.T) {
	s, player, emits := newTestSynchronizer()
	player.reentrant = true

	s.OnRemoteBroadcast(room.PlaybackState{Event: room.PlaybackPlay, CurrentTime: 5, Seq: 3, SenderId: "other"})

	assert.Equal(t, 1, player.playCalls)
	assert.Empty(t, *emits, "a remote-driven transition must not emit a new action")
}
