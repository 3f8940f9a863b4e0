package server

import (
	"net/http"

	"musewave/core/activity"
	"musewave/logger"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled at the router; the feed is public read-only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ActivityFeedHandler upgrades the connection and subscribes it to the live
// activity feed. A bearer token is optional; anonymous viewers get the same
// stream.
func (h *APIHandler) ActivityFeedHandler(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "activity feed not running")
		return
	}

	var userID int64
	var username string
	if token := r.URL.Query().Get("token"); token != "" {
		if claims, err := h.tokens.ParseAccess(token); err == nil {
			userID = claims.UserID
			username = claims.Username
		}
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := activity.NewClient(h.hub, conn, userID, username)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
