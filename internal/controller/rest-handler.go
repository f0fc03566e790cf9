package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	roomrepo "github.com/watchparty/server/internal/repository/room"
	"github.com/watchparty/server/internal/service/room"
	"github.com/watchparty/server/pkg/ytvideodata"
	"github.com/watchparty/server/pkg/ytvideoid"
)

var errUnsupportedFileType = errors.New("unsupported file type")

// createRoom accepts a multipart form with a sourceType of "youtube" or
// "local". Youtube rooms carry a video url that is reduced to its video
// id; local rooms carry an uploaded video file that is persisted under a
// generated name.
func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		c.logger.DebugContext(r.Context(), "failed to parse multipart form", "error", err)
		writeJSON(w, http.StatusBadRequest, envelope{"error": "invalid multipart form"})
		return
	}

	var sourceRef, title string
	sourceType := r.FormValue("sourceType")
	switch sourceType {
	case roomrepo.SourceTypeYoutube:
		videoId, err := ytvideoid.Parse(r.FormValue("url"))
		if err != nil {
			c.logger.DebugContext(r.Context(), "failed to parse video url", "error", err)
			writeJSON(w, http.StatusBadRequest, envelope{"error": "invalid youtube url"})
			return
		}
		sourceRef = videoId

		// best effort, the room works without a title
		if videoData, err := ytvideodata.Fetch(r.Context(), videoId); err != nil {
			c.logger.DebugContext(r.Context(), "failed to fetch video data", "error", err)
		} else {
			title = videoData.Title
		}
	case roomrepo.SourceTypeLocal:
		fileName, originalName, err := c.saveUploadNamed(r, "video", "video/mp4", "video/webm")
		if err != nil {
			c.logger.DebugContext(r.Context(), "failed to save video upload", "error", err)
			writeJSON(w, http.StatusBadRequest, envelope{"error": err.Error()})
			return
		}
		sourceRef = fileName
		title = originalName
	default:
		writeJSON(w, http.StatusBadRequest, envelope{"error": "sourceType must be youtube or local"})
		return
	}

	roomModel, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		SourceType: sourceType,
		SourceRef:  sourceRef,
		Title:      title,
	})
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to create room", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"error": "failed to create room"})
		return
	}

	writeJSON(w, http.StatusCreated, envelope{"room": roomModel})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomModel, err := c.roomService.GetRoom(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, envelope{"error": "room not found"})
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to get room", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{"error": "failed to get room"})
		return
	}

	writeJSON(w, http.StatusOK, envelope{"room": roomModel})
}

// uploadChatAsset stores an image or document shared in chat and returns
// the url participants paste into a message. The message itself stays
// plain text; clients classify it by the returned url at render time.
func (c controller) uploadChatAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		c.logger.DebugContext(r.Context(), "failed to parse multipart form", "error", err)
		writeJSON(w, http.StatusBadRequest, envelope{"error": "invalid multipart form"})
		return
	}

	fileName, err := c.saveUpload(r, "file",
		"image/png", "image/jpeg", "image/gif", "image/webp", "application/pdf")
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to save chat upload", "error", err)
		writeJSON(w, http.StatusBadRequest, envelope{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, envelope{"url": "/uploads/" + fileName})
}

func (c controller) serveUpload(w http.ResponseWriter, r *http.Request) {
	fileName := chi.URLParam(r, "file-name")
	if fileName == "" || fileName != filepath.Base(fileName) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filepath.Join(c.cfg.UploadDir, fileName))
}

// streamVideo serves the uploaded source file of a local room. Range
// requests are handled by http.ServeFile, so players can seek freely.
func (c controller) streamVideo(w http.ResponseWriter, r *http.Request) {
	roomModel, err := c.roomService.GetRoom(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil || roomModel.SourceType != roomrepo.SourceTypeLocal {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filepath.Join(c.cfg.UploadDir, filepath.Base(roomModel.SourceRef)))
}

func (c controller) saveUpload(r *http.Request, field string, allowedTypes ...string) (string, error) {
	fileName, _, err := c.saveUploadNamed(r, field, allowedTypes...)
	return fileName, err
}

// saveUploadNamed sniffs the uploaded file's real content type, rejects
// anything outside the allowlist and persists it under a lexically
// sortable generated name with the extension the sniffer reports. The
// client-supplied file name is returned alongside for display use only;
// it never touches the filesystem.
func (c controller) saveUploadNamed(r *http.Request, field string, allowedTypes ...string) (string, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", "", fmt.Errorf("missing %s file: %w", field, err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", "", fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := false
	for _, t := range allowedTypes {
		if mtype.Is(t) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", "", fmt.Errorf("%w: %s", errUnsupportedFileType, mtype.String())
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	fileName := ulid.Make().String() + mtype.Extension()
	dst, err := os.Create(filepath.Join(c.cfg.UploadDir, fileName))
	if err != nil {
		return "", "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return fileName, header.Filename, nil
}
