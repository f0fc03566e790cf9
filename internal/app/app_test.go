package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchparty/server/internal/controller"
	"github.com/watchparty/server/internal/repository/connection/inmemory"
	roomrepo "github.com/watchparty/server/internal/repository/room"
	roomRedis "github.com/watchparty/server/internal/repository/room/redis"
	"github.com/watchparty/server/internal/service/room"
)

type wsEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type roomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (roomrepo.Room, error)
}

func newTestServer(t *testing.T) (*httptest.Server, roomService) {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	roomRepo := roomRedis.NewRepo(rc, time.Hour)
	connectionRepo := inmemory.NewRepo()
	roomService := room.NewService(roomRepo, connectionRepo, &room.Config{
		TypingTimeout: 100 * time.Millisecond,
	}, logger)
	ctrl := controller.NewController(roomService, controller.Config{
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 1 << 20,
		SendBufferSize: 32,
	}, logger)

	srv := httptest.NewServer(ctrl.Mux())
	t.Cleanup(srv.Close)

	return srv, roomService
}

func dialAndJoin(t *testing.T, srv *httptest.Server, roomId, displayName string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "joinRoom",
		"payload": map[string]any{
			"roomId":      roomId,
			"displayName": displayName,
		},
	}))

	var msg wsEnvelope
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, room.EventRoomStateSynced, msg.Type)

	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn, eventType string) json.RawMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg wsEnvelope
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == eventType {
			return msg.Payload
		}
	}
}

func TestChatOverWebsocket(t *testing.T) {
	srv, svc := newTestServer(t)

	roomModel, err := svc.CreateRoom(context.Background(), &room.CreateRoomParams{
		SourceType: roomrepo.SourceTypeYoutube,
		SourceRef:  "dQw4w9WgXcQ",
	})
	require.NoError(t, err)

	alice := dialAndJoin(t, srv, roomModel.Id, "alice")
	bob := dialAndJoin(t, srv, roomModel.Id, "bob")

	require.NoError(t, alice.WriteJSON(map[string]any{
		"type": "sendMessage",
		"payload": map[string]any{
			"roomId":  roomModel.Id,
			"message": "hello",
		},
	}))

	for _, conn := range []*websocket.Conn{alice, bob} {
		payload := readEvent(t, conn, room.EventNewMessage)

		var msg room.ChatMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, "alice", msg.Author)
		assert.Equal(t, "hello", msg.Message)
	}
}

func TestJoinUnknownRoomRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	// the error frame must arrive on every attempt, not just when the
	// connection teardown happens to lose the race
	for i := 0; i < 20; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)

		require.NoError(t, conn.WriteJSON(map[string]any{
			"type": "joinRoom",
			"payload": map[string]any{
				"roomId":      "missing1",
				"displayName": "alice",
			},
		}))

		var msg wsEnvelope
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		require.NoError(t, conn.ReadJSON(&msg), "attempt %d", i)
		assert.Equal(t, "error", msg.Type, "attempt %d", i)

		conn.Close()
	}
}

func TestJoinWithoutDisplayNameRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "joinRoom",
		"payload": map[string]any{
			"roomId": "abc123",
		},
	}))

	var msg wsEnvelope
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
}

func TestGetRoomRest(t *testing.T) {
	srv, svc := newTestServer(t)

	roomModel, err := svc.CreateRoom(context.Background(), &room.CreateRoomParams{
		SourceType: roomrepo.SourceTypeYoutube,
		SourceRef:  "dQw4w9WgXcQ",
	})
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/rooms/" + roomModel.Id)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/rooms/missing1")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestChatUploadRoundtrip(t *testing.T) {
	srv, _ := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "pic.png")
	require.NoError(t, err)
	// png magic bytes are enough for content sniffing
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/chat/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var uploadResp struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploadResp))
	require.True(t, strings.HasPrefix(uploadResp.URL, "/uploads/"))

	getResp, err := http.Get(srv.URL + uploadResp.URL)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
}

func TestChatUploadRejectsUnknownType(t *testing.T) {
	srv, _ := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("plain text is not an allowed chat asset"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/chat/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
