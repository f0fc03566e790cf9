package room

import (
	"context"
	"strings"
)

type CreatePollParams struct {
	RoomId        string
	ParticipantId string
	Question      string
	Options       []string
}

// CreatePoll installs a fresh poll and broadcasts it to all
// participants. There is at most one active poll per room; a new poll
// replaces the old one wholesale and restarts voting, old votes are
// never merged. Rejected creations leave any prior poll untouched and
// nothing is broadcast.
func (s *service) CreatePoll(ctx context.Context, params *CreatePollParams) error {
	question := strings.TrimSpace(params.Question)
	if question == "" {
		return ErrInvalidPoll
	}

	options := make([]PollOption, 0, len(params.Options))
	for _, opt := range params.Options {
		text := strings.TrimSpace(opt)
		if text == "" {
			continue
		}
		options = append(options, PollOption{Text: text, Voters: []string{}})
	}
	if len(options) < 2 || len(options) > s.pollOptionsLimit {
		return ErrInvalidPoll
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

	ses.activePoll = &Poll{Question: question, Options: options}
	s.broadcastLocked(ses, EventPollCreated, ses.activePoll.clone())

	return nil
}

type VoteParams struct {
	RoomId        string
	ParticipantId string
	OptionIndex   int
}

// Vote records one vote for the participant's display name and
// broadcasts the full updated poll so every mirror recomputes tallies
// consistently. Out-of-range indexes, a missing poll and repeat votes
// are rejected without any cross-participant effect.
func (s *service) Vote(ctx context.Context, params *VoteParams) error {
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

	if ses.activePoll == nil {
		return ErrNoActivePoll
	}
	if params.OptionIndex < 0 || params.OptionIndex >= len(ses.activePoll.Options) {
		return ErrOptionOutOfRange
	}
	if ses.activePoll.hasVoted(displayName) {
		return ErrAlreadyVoted
	}

	opt := &ses.activePoll.Options[params.OptionIndex]
	opt.Votes++
	opt.Voters = append(opt.Voters, displayName)

	s.broadcastLocked(ses, EventPollUpdated, ses.activePoll.clone())

	return nil
}
