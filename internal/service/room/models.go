package room

import "time"

type PlaybackEvent string

const (
	PlaybackPlay  PlaybackEvent = "play"
	PlaybackPause PlaybackEvent = "pause"
)

type ChatMessage struct {
	Author  string    `json:"author"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sentAt"`
}

type PollOption struct {
	Text   string   `json:"text"`
	Votes  int      `json:"votes"`
	Voters []string `json:"voters"`
}

type Poll struct {
	Question string       `json:"question"`
	Options  []PollOption `json:"options"`
}

func (p Poll) clone() *Poll {
	c := Poll{
		Question: p.Question,
		Options:  make([]PollOption, len(p.Options)),
	}
	for i, opt := range p.Options {
		voters := make([]string, len(opt.Voters))
		copy(voters, opt.Voters)
		c.Options[i] = PollOption{Text: opt.Text, Votes: opt.Votes, Voters: voters}
	}

	return &c
}

// hasVoted reports whether displayName appears in any option's voter
// set. One vote per participant per poll, no change of vote.
func (p Poll) hasVoted(displayName string) bool {
	for _, opt := range p.Options {
		for _, voter := range opt.Voters {
			if voter == displayName {
				return true
			}
		}
	}

	return false
}

// playback is the authoritative transport state plus the wall-clock time
// it was recorded. Position advances by extrapolation while playing and
// is frozen while paused.
type playback struct {
	event     PlaybackEvent
	position  float64
	updatedAt time.Time
}

// positionAt extrapolates the playback position to t.
func (p playback) positionAt(t time.Time) float64 {
	if p.event != PlaybackPlay {
		return p.position
	}

	return p.position + t.Sub(p.updatedAt).Seconds()
}

// FullRoomState is the join snapshot. It fully replaces any state the
// client holds; it is never merged.
type FullRoomState struct {
	// SelfId is the joiner's participant id. It is what playbackSynced
	// broadcasts carry as senderId, so the client needs it to recognize
	// its own echoes.
	SelfId         string        `json:"selfId"`
	LastEvent      PlaybackEvent `json:"lastEvent"`
	LastKnownTime  float64       `json:"lastKnownTime"`
	LastUpdateTime int64         `json:"lastUpdateTime"`
	ChatHistory    []ChatMessage `json:"chatHistory"`
	ActivePoll     *Poll         `json:"activePoll"`
}

// PlaybackState is the payload of playbackSynced broadcasts. Seq and
// SenderId let the originator discard its own confirmation echo.
type PlaybackState struct {
	Event       PlaybackEvent `json:"event"`
	CurrentTime float64       `json:"currentTime"`
	Seq         uint64        `json:"seq"`
	SenderId    string        `json:"senderId"`
}
