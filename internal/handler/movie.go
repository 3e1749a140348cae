package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/movieweb/internal/model"
	"github.com/sakif/movieweb/internal/service"
)

// MovieHandler exposes the movie and list-membership operations over JSON.
type MovieHandler struct {
	movies *service.MovieService
	logger *slog.Logger
}

// NewMovieHandler creates a new MovieHandler.
func NewMovieHandler(movies *service.MovieService, logger *slog.Logger) *MovieHandler {
	return &MovieHandler{movies: movies, logger: logger}
}

// HandleList returns every movie in the store.
//
// HTTP: GET /api/movies
func (h *MovieHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movies.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// HandleGetByID returns a single movie.
//
// HTTP: GET /api/movies/{id}
func (h *MovieHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movies.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

// HandleListForUser returns the movies in one user's list.
//
// HTTP: GET /api/users/{id}/movies
func (h *MovieHandler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movies.ListByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// HandleAddToUser adds a movie to a user's list. If the title already exists
// in the store the existing row is linked instead of duplicated; 409 if the
// user's list already contains it.
//
// HTTP: POST /api/users/{id}/movies
// REQUEST BODY: {"title": "Inception", "director": "Christopher Nolan",
//
//	"year": 2010, "rating": 8.8, "poster": "https://..."}
func (h *MovieHandler) HandleAddToUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	var req struct {
		Title    string   `json:"title"`
		Director string   `json:"director"`
		Year     int      `json:"year"`
		Rating   *float64 `json:"rating"`
		Poster   string   `json:"poster"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid movie JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	movie := &model.Movie{
		Title:    req.Title,
		Director: req.Director,
		Year:     req.Year,
		Rating:   req.Rating,
		Poster:   req.Poster,
	}
	if err := h.movies.AddToUser(r.Context(), userID, movie); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, movie)
}

// HandleUpdateRating sets a movie's rating.
//
// HTTP: PUT /api/movies/{id}/rating
// REQUEST BODY: {"rating": 9.5}
func (h *MovieHandler) HandleUpdateRating(w http.ResponseWriter, r *http.Request) {
	movieID := r.PathValue("id")

	var req struct {
		Rating *float64 `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid rating JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Rating == nil {
		http.Error(w, "rating is required", http.StatusBadRequest)
		return
	}

	if err := h.movies.UpdateRating(r.Context(), movieID, *req.Rating); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveFromUser removes a movie from one user's list.
//
// HTTP: DELETE /api/users/{id}/movies/{movieID}
func (h *MovieHandler) HandleRemoveFromUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	movieID := r.PathValue("movieID")

	if err := h.movies.RemoveFromUser(r.Context(), userID, movieID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
