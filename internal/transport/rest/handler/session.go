package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/DaveMolla/Emoji-Game/internal/cache"
	"github.com/DaveMolla/Emoji-Game/internal/service"
)

// SessionHandler serves archived session records and the wins leaderboard.
type SessionHandler struct {
	gameSvc     *service.GameService
	leaderboard cache.LeaderboardCache
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(gameSvc *service.GameService, leaderboard cache.LeaderboardCache) *SessionHandler {
	return &SessionHandler{gameSvc: gameSvc, leaderboard: leaderboard}
}

// Get handles GET /v1/sessions/{sessionId}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	record, err := h.gameSvc.GetRecord(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Leaderboard handles GET /v1/leaderboard
func (h *SessionHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries, err := h.leaderboard.Top(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
