package room

import (
	"context"
	"errors"
	"fmt"

	roomrepo "github.com/watchparty/server/internal/repository/room"
)

const roomIdLength = 8

type CreateRoomParams struct {
	SourceType string
	SourceRef  string
	Title      string
}

// CreateRoom writes a new immutable metadata record under a freshly
// generated room code. The live session is not created here; it appears
// lazily on first join.
func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (roomrepo.Room, error) {
	for attempt := 0; attempt < 3; attempt++ {
		roomModel := roomrepo.Room{
			Id:         s.generator.GenerateRandomString(roomIdLength),
			SourceType: params.SourceType,
			SourceRef:  params.SourceRef,
			Title:      params.Title,
			CreatedAt:  s.now().Unix(),
		}

		err := s.roomRepo.SetRoom(ctx, &roomrepo.SetRoomParams{
			Id:         roomModel.Id,
			SourceType: roomModel.SourceType,
			SourceRef:  roomModel.SourceRef,
			Title:      roomModel.Title,
			CreatedAt:  roomModel.CreatedAt,
		})
		if errors.Is(err, roomrepo.ErrRoomAlreadyExists) {
			continue
		}
		if err != nil {
			return roomrepo.Room{}, fmt.Errorf("failed to create room: %w", err)
		}

		s.logger.InfoContext(ctx, "room created",
			"room_id", roomModel.Id,
			"source_type", roomModel.SourceType,
		)

		return roomModel, nil
	}

	return roomrepo.Room{}, errors.New("failed to generate an unused room id")
}
