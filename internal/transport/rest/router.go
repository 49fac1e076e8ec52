package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/DaveMolla/Emoji-Game/internal/cache"
	"github.com/DaveMolla/Emoji-Game/internal/service"
	"github.com/DaveMolla/Emoji-Game/internal/transport/rest/handler"
	"github.com/DaveMolla/Emoji-Game/internal/transport/rest/middleware"
	"github.com/DaveMolla/Emoji-Game/internal/transport/ws"
)

// Container holds all dependencies for the router.
type Container struct {
	AuthService *service.AuthService
	GameService *service.GameService
	Leaderboard cache.LeaderboardCache
	WSHub       *ws.Hub
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	sessionHandler := handler.NewSessionHandler(c.GameService, c.Leaderboard)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.GameService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/leaderboard", sessionHandler.Leaderboard).Methods("GET", "OPTIONS")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws", wsHandler.PlayerWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Authenticated routes
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)
	userRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
