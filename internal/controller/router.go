package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c controller) Mux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.Post("/rooms", c.createRoom)
	r.Get("/rooms/{room-id}", c.getRoom)

	r.Post("/chat/upload", c.uploadChatAsset)
	r.Get("/uploads/{file-name}", c.serveUpload)
	r.Get("/stream/{room-id}", c.streamVideo)

	r.HandleFunc("/ws", c.serveWS)

	return r
}
