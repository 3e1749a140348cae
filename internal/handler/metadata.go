package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/movieweb/internal/omdb"
)

// MetadataFetcher is the slice of the OMDb client this handler needs;
// tests substitute a stub.
type MetadataFetcher interface {
	Lookup(ctx context.Context, title string) (*omdb.Metadata, error)
}

// MetadataHandler answers pre-fill lookups against the OMDb API. It never
// touches the store — the client decides what to do with the result,
// typically feeding it into POST /api/users/{id}/movies.
type MetadataHandler struct {
	fetcher MetadataFetcher
	logger  *slog.Logger
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(fetcher MetadataFetcher, logger *slog.Logger) *MetadataHandler {
	return &MetadataHandler{fetcher: fetcher, logger: logger}
}

// metadataResponse is the pre-fill payload, shaped to slot straight into an
// add-movie request body.
type metadataResponse struct {
	Title    string   `json:"title"`
	Director string   `json:"director"`
	Year     int      `json:"year"`
	Rating   *float64 `json:"rating,omitempty"`
	Poster   string   `json:"poster,omitempty"`
}

// HandleLookup fetches movie details by title.
//
// HTTP: GET /api/metadata?title=Inception
func (h *MetadataHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "title query parameter is required",
		})
		return
	}

	meta, err := h.fetcher.Lookup(r.Context(), title)
	if err != nil {
		switch {
		case errors.Is(err, omdb.ErrMovieNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "no movie found with title " + title,
			})
		case errors.Is(err, omdb.ErrMissingAPIKey):
			// Configuration problem on our side, not the caller's.
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
				Error:   "metadata_unavailable",
				Message: "movie metadata lookups are not configured",
			})
		default:
			h.logger.Error("metadata lookup failed",
				slog.String("title", title),
				slog.String("error", err.Error()),
			)
			writeJSON(w, http.StatusBadGateway, ErrorResponse{
				Error:   "metadata_unavailable",
				Message: "could not reach the movie information service",
			})
		}
		return
	}

	resp := metadataResponse{
		Title:    meta.Title,
		Director: meta.Director,
		Year:     meta.YearInt(),
		Poster:   meta.PosterURL,
	}
	if rating, ok := meta.RatingFloat(); ok {
		resp.Rating = &rating
	}
	writeJSON(w, http.StatusOK, resp)
}
