package omdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points a Client at a stub OMDb server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New("test-key")
	c.baseURL = srv.URL + "/"
	return c
}

func TestLookup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "Inception", r.URL.Query().Get("t"))
		w.Write([]byte(`{
			"Title": "Inception",
			"Director": "Christopher Nolan",
			"Year": "2010",
			"imdbRating": "8.8",
			"Poster": "https://example.com/inception.jpg",
			"Response": "True"
		}`))
	})

	meta, err := c.Lookup(context.Background(), "Inception")
	require.NoError(t, err)

	assert.Equal(t, "Inception", meta.Title)
	assert.Equal(t, "Christopher Nolan", meta.Director)
	assert.Equal(t, 2010, meta.YearInt())

	rating, ok := meta.RatingFloat()
	assert.True(t, ok)
	assert.Equal(t, 8.8, rating)
	assert.Equal(t, "https://example.com/inception.jpg", meta.PosterURL)
}

func TestLookup_MovieNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	})

	_, err := c.Lookup(context.Background(), "No Such Film")
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestLookup_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Invalid API key!"}`))
	})

	_, err := c.Lookup(context.Background(), "Inception")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMovieNotFound)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestLookup_MissingAPIKey(t *testing.T) {
	c := New("")
	_, err := c.Lookup(context.Background(), "Inception")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLookup_MalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>this is not JSON</html>`))
	})

	_, err := c.Lookup(context.Background(), "Inception")
	assert.Error(t, err)
}

func TestLookup_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Lookup(context.Background(), "Inception")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrMovieNotFound))
}

func TestMetadata_YearInt(t *testing.T) {
	tests := []struct {
		year string
		want int
	}{
		{"2010", 2010},
		{"2010–2014", 2010}, // series range
		{"N/A", 0},
		{"", 0},
	}
	for _, tt := range tests {
		got := Metadata{Year: tt.year}.YearInt()
		assert.Equal(t, tt.want, got, "YearInt(%q)", tt.year)
	}
}

func TestMetadata_RatingFloat(t *testing.T) {
	r, ok := Metadata{Rating: "8.8"}.RatingFloat()
	assert.True(t, ok)
	assert.Equal(t, 8.8, r)

	_, ok = Metadata{Rating: "N/A"}.RatingFloat()
	assert.False(t, ok)
}
