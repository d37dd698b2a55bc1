package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/data-reconciler-service/internal/models"
	"github.com/cypherlabdev/data-reconciler-service/internal/service"
)

// GamesHandler handles HTTP requests for canonical games
type GamesHandler struct {
	cache  service.GameCache
	logger zerolog.Logger
}

// NewGamesHandler creates a new games HTTP handler
func NewGamesHandler(cache service.GameCache, logger zerolog.Logger) *GamesHandler {
	return &GamesHandler{
		cache:  cache,
		logger: logger.With().Str("component", "games_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided mux
func (h *GamesHandler) RegisterRoutes(mux *http.ServeMux) {
	// GET /api/v1/games/:league/:date        - All canonical games for a league on a date
	// GET /api/v1/games/:league/:date/:id    - One canonical game
	mux.HandleFunc("/api/v1/games/", h.handleGetGames)
}

// handleGetGames handles GET /api/v1/games/:league/:date[/:id]
func (h *GamesHandler) handleGetGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Parse path: /api/v1/games/:league/:date[/:id]
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/games/")
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")

	if len(parts) < 2 || len(parts) > 3 {
		h.errorResponse(w, http.StatusBadRequest, "invalid path: expected /api/v1/games/:league/:date[/:id]")
		return
	}

	league := models.League(parts[0])
	date := parts[1]

	if !league.Valid() {
		h.errorResponse(w, http.StatusBadRequest, "unknown league")
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid date: expected YYYY-MM-DD")
		return
	}

	if len(parts) == 3 {
		h.getGame(w, r, league, date, parts[2])
		return
	}
	h.getSlate(w, r, league, date)
}

// getGame serves one canonical game by ID
func (h *GamesHandler) getGame(w http.ResponseWriter, r *http.Request, league models.League, date, id string) {
	game, err := h.cache.Get(r.Context(), league, date, id)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Str("league", string(league)).
			Str("date", date).
			Str("id", id).
			Msg("game not found")
		h.errorResponse(w, http.StatusNotFound, "game not found")
		return
	}

	h.jsonResponse(w, http.StatusOK, game)
}

// getSlate serves every canonical game for a league on a date
func (h *GamesHandler) getSlate(w http.ResponseWriter, r *http.Request, league models.League, date string) {
	games, err := h.cache.GetByLeagueDate(r.Context(), league, date)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("league", string(league)).
			Str("date", date).
			Msg("failed to retrieve games")
		h.errorResponse(w, http.StatusInternalServerError, "failed to retrieve games")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"league": league,
		"date":   date,
		"count":  len(games),
		"games":  games,
	})
}

// jsonResponse writes a JSON response
func (h *GamesHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *GamesHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}
