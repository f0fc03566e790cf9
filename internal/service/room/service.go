package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/watchparty/server/internal/repository/connection"
	roomrepo "github.com/watchparty/server/internal/repository/room"
	"github.com/watchparty/server/pkg/randstr"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotJoined        = errors.New("participant has not joined the room")
	ErrEmptyMessage     = errors.New("empty message")
	ErrMessageTooLong   = errors.New("message too long")
	ErrInvalidPoll      = errors.New("invalid poll")
	ErrNoActivePoll     = errors.New("no active poll")
	ErrOptionOutOfRange = errors.New("poll option out of range")
	ErrAlreadyVoted     = errors.New("participant already voted")

	ErrInvalidPlaybackEvent = errors.New("invalid playback event")
)

type iRoomRepo interface {
	SetRoom(ctx context.Context, params *roomrepo.SetRoomParams) error
	GetRoom(ctx context.Context, roomId string) (roomrepo.Room, error)
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type iConnRepo interface {
	Add(participantId string, sender connection.Sender) error
	Remove(participantId string) error
	Get(participantId string) (connection.Sender, error)
}

type Config struct {
	// TypingTimeout is the debounce window after which a typing entry
	// self-expires without a fresh signal.
	TypingTimeout time.Duration
	// MessageMaxLength caps chat message size in bytes.
	MessageMaxLength int
	// PollOptionsLimit caps the number of options a poll may carry.
	PollOptionsLimit int
}

type service struct {
	roomRepo         iRoomRepo
	connRepo         iConnRepo
	registry         *registry
	generator        iGenerator
	typingTimeout    time.Duration
	messageMaxLength int
	pollOptionsLimit int
	logger           *slog.Logger
	now              func() time.Time
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, cfg *Config, logger *slog.Logger) *service {
	typingTimeout := cfg.TypingTimeout
	if typingTimeout <= 0 {
		typingTimeout = 1500 * time.Millisecond
	}
	messageMaxLength := cfg.MessageMaxLength
	if messageMaxLength <= 0 {
		messageMaxLength = 2000
	}
	pollOptionsLimit := cfg.PollOptionsLimit
	if pollOptionsLimit <= 0 {
		pollOptionsLimit = 5
	}

	letterBytes := []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

	return &service{
		roomRepo:         roomRepo,
		connRepo:         connRepo,
		registry:         newRegistry(),
		generator:        randstr.New(letterBytes),
		typingTimeout:    typingTimeout,
		messageMaxLength: messageMaxLength,
		pollOptionsLimit: pollOptionsLimit,
		logger:           logger,
		now:              time.Now,
	}
}

// GetRoom resolves the immutable room metadata record.
func (s *service) GetRoom(ctx context.Context, roomId string) (roomrepo.Room, error) {
	roomModel, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, roomrepo.ErrRoomNotFound) {
			return roomrepo.Room{}, ErrRoomNotFound
		}
		return roomrepo.Room{}, err
	}

	return roomModel, nil
}

// getSession returns the live session for roomId. Membership of the
// acting participant is checked by each operation under the session
// lock.
func (s *service) getSession(roomId string) (*session, error) {
	ses, ok := s.registry.get(roomId)
	if !ok {
		return nil, ErrNotJoined
	}

	return ses, nil
}
