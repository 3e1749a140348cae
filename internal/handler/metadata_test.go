package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sakif/movieweb/internal/handler"
	"github.com/sakif/movieweb/internal/omdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFetcher implements handler.MetadataFetcher without network access.
type MockFetcher struct {
	CapturedTitle string
	ReturnMeta    *omdb.Metadata
	ReturnErr     error
}

func (m *MockFetcher) Lookup(_ context.Context, title string) (*omdb.Metadata, error) {
	m.CapturedTitle = title
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnMeta, nil
}

func TestMetadataHandler_HandleLookup(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("successful lookup", func(t *testing.T) {
		mock := &MockFetcher{
			ReturnMeta: &omdb.Metadata{
				Title:     "Inception",
				Director:  "Christopher Nolan",
				Year:      "2010",
				Rating:    "8.8",
				PosterURL: "https://example.com/inception.jpg",
			},
		}
		h := handler.NewMetadataHandler(mock, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/metadata?title=Inception", nil)
		rr := httptest.NewRecorder()
		h.HandleLookup(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Inception", mock.CapturedTitle)

		var resp struct {
			Title    string   `json:"title"`
			Director string   `json:"director"`
			Year     int      `json:"year"`
			Rating   *float64 `json:"rating"`
			Poster   string   `json:"poster"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "Inception", resp.Title)
		assert.Equal(t, "Christopher Nolan", resp.Director)
		assert.Equal(t, 2010, resp.Year)
		require.NotNil(t, resp.Rating)
		assert.Equal(t, 8.8, *resp.Rating)
	})

	t.Run("rating N/A is omitted", func(t *testing.T) {
		mock := &MockFetcher{
			ReturnMeta: &omdb.Metadata{Title: "Obscure Film", Year: "N/A", Rating: "N/A"},
		}
		h := handler.NewMetadataHandler(mock, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/metadata?title=Obscure+Film", nil)
		rr := httptest.NewRecorder()
		h.HandleLookup(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.NotContains(t, resp, "rating")
		assert.Equal(t, float64(0), resp["year"])
	})

	t.Run("missing title", func(t *testing.T) {
		h := handler.NewMetadataHandler(&MockFetcher{}, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/metadata", nil)
		rr := httptest.NewRecorder()
		h.HandleLookup(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("movie not found", func(t *testing.T) {
		h := handler.NewMetadataHandler(&MockFetcher{ReturnErr: omdb.ErrMovieNotFound}, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/metadata?title=Nope", nil)
		rr := httptest.NewRecorder()
		h.HandleLookup(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("missing API key", func(t *testing.T) {
		h := handler.NewMetadataHandler(&MockFetcher{ReturnErr: omdb.ErrMissingAPIKey}, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/metadata?title=Inception", nil)
		rr := httptest.NewRecorder()
		h.HandleLookup(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
