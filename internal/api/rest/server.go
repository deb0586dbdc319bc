package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/courtside-app/courtside/internal/cache"
	"github.com/courtside-app/courtside/internal/scheduler"
	"github.com/courtside-app/courtside/internal/store"
	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, db *store.Database, rc *cache.RedisCache, sched *scheduler.Scheduler) *Server {
	handler := NewHandler(db, rc, sched)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Standings
	api.HandleFunc("/standings", handler.GetStandings).Methods("GET")
	api.HandleFunc("/standings/{team}", handler.GetTeamStanding).Methods("GET")

	// Games
	api.HandleFunc("/games", handler.GetSchedule).Methods("GET")
	api.HandleFunc("/games/upcoming", handler.GetUpcomingGames).Methods("GET")
	api.HandleFunc("/games/results", handler.GetResults).Methods("GET")

	// Scrape operations
	api.HandleFunc("/refresh/{kind}", handler.TriggerRefresh).Methods("POST")
	api.HandleFunc("/runs/{kind}", handler.GetRecentRuns).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
