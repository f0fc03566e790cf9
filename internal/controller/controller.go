package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	roomrepo "github.com/watchparty/server/internal/repository/room"
	"github.com/watchparty/server/internal/service/room"
	"github.com/watchparty/server/pkg/validator"
	"github.com/watchparty/server/pkg/wsrouter"
)

var ErrValidationError = errors.New("validation error")

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (roomrepo.Room, error)
	GetRoom(context.Context, string) (roomrepo.Room, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams)
	SendMessage(context.Context, *room.SendMessageParams) error
	StartTyping(context.Context, *room.TypingParams) error
	StopTyping(context.Context, *room.TypingParams) error
	CreatePoll(context.Context, *room.CreatePollParams) error
	Vote(context.Context, *room.VoteParams) error
	SyncPlayback(context.Context, *room.SyncPlaybackParams) error
}

type Config struct {
	UploadDir      string
	MaxUploadBytes int64
	SendBufferSize int
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	logger      *slog.Logger
	cfg         Config
}

func NewController(roomService iRoomService, cfg Config, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.New(),
		logger:      logger,
		cfg:         cfg,
	}
	c.wsmux = c.getWSRouter()

	return c
}
