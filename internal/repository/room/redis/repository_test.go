package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchparty/server/internal/repository/room"
)

func newTestRepo(t *testing.T) *repo {
	t.Helper()

	s := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, time.Hour)
}

func TestSetGetRoom(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	params := room.SetRoomParams{
		Id:         "abc123",
		SourceType: room.SourceTypeYoutube,
		SourceRef:  "dQw4w9WgXcQ",
		CreatedAt:  1700000000,
	}
	require.NoError(t, r.SetRoom(ctx, &params))

	got, err := r.GetRoom(ctx, params.Id)
	require.NoError(t, err)
	assert.Equal(t, params.Id, got.Id)
	assert.Equal(t, params.SourceType, got.SourceType)
	assert.Equal(t, params.SourceRef, got.SourceRef)
	assert.Equal(t, params.CreatedAt, got.CreatedAt)
}

func TestSetRoomAlreadyExists(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	params := room.SetRoomParams{Id: "abc123", SourceType: room.SourceTypeLocal, SourceRef: "movie.mp4"}
	require.NoError(t, r.SetRoom(ctx, &params))

	err := r.SetRoom(ctx, &params)
	assert.ErrorIs(t, err, room.ErrRoomAlreadyExists)
}

func TestGetRoomNotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.GetRoom(context.Background(), "missing")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)
}

func TestRemoveRoom(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SetRoom(ctx, &room.SetRoomParams{Id: "abc123", SourceType: room.SourceTypeLocal, SourceRef: "movie.mp4"}))
	require.NoError(t, r.RemoveRoom(ctx, "abc123"))

	_, err := r.GetRoom(ctx, "abc123")
	assert.ErrorIs(t, err, room.ErrRoomNotFound)

	assert.ErrorIs(t, r.RemoveRoom(ctx, "abc123"), room.ErrRoomNotFound)
}
