package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"musewave/core/utils"
	"musewave/logger"
	"musewave/storage"
)

const (
	maxAudioUploadSize = 200 << 20 // 200MB
	maxCoverUploadSize = 10 << 20  // 10MB
)

var audioContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
}

// UploadAudioHandler streams an audio file into object storage and returns
// the serving URL plus the metadata needed for track creation.
//
// Expected multipart form fields:
// - file: the audio file
// - title: track title (used for the object name)
// - artist: artist display name (optional)
func (h *APIHandler) UploadAudioHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxAudioUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing 'file' in form")
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	if title == "" {
		respondError(w, http.StatusBadRequest, "missing 'title' in form")
		return
	}
	artist := r.FormValue("artist")

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := audioContentTypes[ext]
	if !ok {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported audio format %q", ext))
		return
	}

	objectName := fmt.Sprintf("audio/%s_%s%s", utils.SafeFilenamePrefix(title, artist), utils.UniqueSuffix(), ext)

	key, err := storage.UploadObject(r.Context(), h.cfg.MinioBucket, objectName, file, header.Size, contentType)
	if err != nil {
		logger.Error("audio upload failed",
			logger.Int64("userId", userID),
			logger.String("object", objectName),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to store audio file")
		return
	}

	logger.Info("audio uploaded",
		logger.Int64("userId", userID),
		logger.String("object", key),
		logger.Int64("size", header.Size))

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"audioUrl":  h.cfg.PublicBaseURL + "/static/" + key,
		"audioSize": header.Size,
		"format":    strings.TrimPrefix(ext, "."),
	})
}

// UploadCoverHandler stores cover art and returns the serving URL.
func (h *APIHandler) UploadCoverHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxCoverUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing 'file' in form")
		return
	}
	defer file.Close()

	if header.Size > maxCoverUploadSize {
		respondError(w, http.StatusBadRequest, "file too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(w, http.StatusBadRequest, "only image files are allowed")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	objectName := fmt.Sprintf("covers/%s%s", utils.UniqueSuffix(), ext)

	key, err := storage.UploadObject(r.Context(), h.cfg.MinioBucket, objectName, file, header.Size, contentType)
	if err != nil {
		logger.Error("cover upload failed",
			logger.Int64("userId", userID),
			logger.String("object", objectName),
			logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to store cover file")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"coverUrl": h.cfg.PublicBaseURL + "/static/" + key,
	})
}
