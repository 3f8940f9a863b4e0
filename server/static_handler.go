package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"musewave/config"
	"musewave/logger"
	"musewave/storage"

	"github.com/minio/minio-go/v7"
)

// StaticHandler proxies /static/ requests out of object storage.
type StaticHandler struct {
	cfg *config.Config
}

// NewStaticHandler creates a StaticHandler.
func NewStaticHandler(cfg *config.Config) *StaticHandler {
	return &StaticHandler{cfg: cfg}
}

// ServeHTTP implements http.Handler.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	objectPath := strings.TrimPrefix(r.URL.Path, "/static/")

	client := storage.GetMinioClient()
	if client == nil {
		http.Error(w, "object storage not available", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	object, err := client.GetObject(ctx, h.cfg.MinioBucket, objectPath, minio.GetObjectOptions{})
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	defer object.Close()

	// Stat forces the first round trip, so missing keys 404 instead of
	// failing mid-copy.
	if _, err := object.Stat(); err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", detectContentType(objectPath))
	w.Header().Set("Cache-Control", "public, max-age=31536000")

	if _, err := io.Copy(w, object); err != nil {
		logger.Error("error serving object", logger.String("object", objectPath), logger.ErrorField(err))
	}
}

// detectContentType guesses by path prefix and extension.
func detectContentType(path string) string {
	switch {
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasPrefix(path, "covers/"):
		return "image/jpeg"
	case strings.HasSuffix(path, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(path, ".flac"):
		return "audio/flac"
	case strings.HasSuffix(path, ".ogg"):
		return "audio/ogg"
	case strings.HasPrefix(path, "audio/"):
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}
