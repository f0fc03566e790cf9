package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/watchparty/server/internal/repository/room"
)

type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
}

func NewRepo(rc *redis.Client, expireDuration time.Duration) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
	}
}

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId + ":metadata"
}

func (r repo) SetRoom(ctx context.Context, params *room.SetRoomParams) error {
	roomKey := r.getRoomKey(params.Id)

	// claim the id first so concurrent creates with the same id cannot
	// both win
	claimed, err := r.rc.HSetNX(ctx, roomKey, "id", params.Id).Result()
	if err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}
	if !claimed {
		return room.ErrRoomAlreadyExists
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, roomKey, room.Room{
		Id:         params.Id,
		SourceType: params.SourceType,
		SourceRef:  params.SourceRef,
		Title:      params.Title,
		CreatedAt:  params.CreatedAt,
	})
	pipe.Expire(ctx, roomKey, r.expireDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	roomKey := r.getRoomKey(roomId)

	cmd := r.rc.HGetAll(ctx, roomKey)
	if err := cmd.Err(); err != nil {
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}
	if len(cmd.Val()) == 0 {
		return room.Room{}, room.ErrRoomNotFound
	}

	var roomModel room.Room
	if err := cmd.Scan(&roomModel); err != nil {
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	r.rc.Expire(ctx, roomKey, r.expireDuration)

	return roomModel, nil
}

func (r repo) RemoveRoom(ctx context.Context, roomId string) error {
	res, err := r.rc.Del(ctx, r.getRoomKey(roomId)).Result()
	if err != nil {
		return fmt.Errorf("failed to remove room: %w", err)
	}
	if res == 0 {
		return room.ErrRoomNotFound
	}

	return nil
}
