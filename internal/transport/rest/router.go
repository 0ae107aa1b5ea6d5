package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/Eray464646/Algorithmen/internal/service"
	"github.com/Eray464646/Algorithmen/internal/transport/rest/handler"
	"github.com/Eray464646/Algorithmen/internal/transport/rest/middleware"
	"github.com/Eray464646/Algorithmen/internal/transport/ws"
)

// Container holds all dependencies for the router.
type Container struct {
	AuthService *service.AuthService
	RoomService *service.RoomService
	WSHub       *ws.Hub
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(c.RoomService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.RoomService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes: creating and joining a room is what issues the token.
	v1.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/leaderboard", roomHandler.Leaderboard).Methods("GET", "OPTIONS")

	// WebSocket feed (token in query param).
	v1.HandleFunc("/ws/rooms/{code}", wsHandler.RoomWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player routes (require a room-scoped token).
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/rooms/{code}/ready", roomHandler.Ready).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{code}/answers", roomHandler.Answer).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{code}/start", roomHandler.Start).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{code}/next", roomHandler.Next).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{code}/reset", roomHandler.Reset).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{code}/leave", roomHandler.Leave).Methods("POST", "OPTIONS")

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
