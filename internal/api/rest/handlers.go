package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/courtside-app/courtside/internal/cache"
	"github.com/courtside-app/courtside/internal/scheduler"
	"github.com/courtside-app/courtside/internal/scrape"
	"github.com/courtside-app/courtside/internal/service"
	"github.com/courtside-app/courtside/internal/store"
	"github.com/courtside-app/courtside/internal/store/repository"
	"github.com/gorilla/mux"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	db               *store.Database
	standingsService *service.StandingsService
	gameService      *service.GameService
	runRepo          *repository.RunRepository
	scheduler        *scheduler.Scheduler
}

// NewHandler creates a new handler
func NewHandler(db *store.Database, rc *cache.RedisCache, sched *scheduler.Scheduler) *Handler {
	return &Handler{
		db:               db,
		standingsService: service.NewStandingsService(db, rc),
		gameService:      service.NewGameService(db, rc),
		runRepo:          repository.NewRunRepository(db),
		scheduler:        sched,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "courtside",
		"version": "1.0.0",
	})
}

// GetStandings returns the league table ordered by position
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.standingsService.GetTable(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch standings", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"standings": standings,
		"count":     len(standings),
	})
}

// GetTeamStanding returns one team's row by exact name
func (h *Handler) GetTeamStanding(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	team := vars["team"]

	standing, err := h.standingsService.GetTeam(r.Context(), team)
	if err != nil {
		respondError(w, http.StatusNotFound, "Team not found", err)
		return
	}

	respondJSON(w, http.StatusOK, standing)
}

// GetSchedule returns the full season schedule
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameService.GetSchedule(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch schedule", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"count": len(games),
	})
}

// GetUpcomingGames returns fixtures from today onward
func (h *Handler) GetUpcomingGames(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 10)

	games, err := h.gameService.GetUpcoming(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch upcoming games", err)
		return
	}

	respondJSON(w, http.StatusOK, games)
}

// GetResults returns finished games, most recent first
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 10)

	games, err := h.gameService.GetResults(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch results", err)
		return
	}

	respondJSON(w, http.StatusOK, games)
}

// TriggerRefresh runs one scrape kind immediately
func (h *Handler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := scrape.Kind(vars["kind"])

	if !kind.Valid() {
		respondError(w, http.StatusBadRequest, "Unknown kind (use standings or schedule)", nil)
		return
	}

	if h.scheduler == nil {
		respondError(w, http.StatusServiceUnavailable, "Scheduler not running", nil)
		return
	}

	result, err := h.scheduler.TriggerManual(r.Context(), kind)
	if err != nil {
		if errors.Is(err, scrape.ErrRunInProgress) {
			respondError(w, http.StatusConflict, "A refresh for this kind is already running", err)
			return
		}
		respondError(w, http.StatusBadGateway, "Refresh failed", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetRecentRuns returns the latest scrape runs for a kind
func (h *Handler) GetRecentRuns(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := scrape.Kind(vars["kind"])

	if !kind.Valid() {
		respondError(w, http.StatusBadRequest, "Unknown kind (use standings or schedule)", nil)
		return
	}

	limit := queryLimit(r, 20)

	runs, err := h.runRepo.Recent(r.Context(), string(kind), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch runs", err)
		return
	}

	respondJSON(w, http.StatusOK, runs)
}

// queryLimit parses the limit query parameter with a default and a cap
func queryLimit(r *http.Request, def int) int {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return def
	}
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
		return l
	}
	return def
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
