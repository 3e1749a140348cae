// Package omdb is a small client for the OMDb movie-information API
// (https://www.omdbapi.com). The presentation layer uses it to pre-fill
// movie details from a title before adding the movie to a list; the
// data-access layer has no dependency on it.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "http://www.omdbapi.com/"

var (
	// ErrMissingAPIKey means the client was built without an OMDb API key.
	ErrMissingAPIKey = errors.New("omdb: API key is not configured")

	// ErrMovieNotFound means OMDb answered but knows no such title.
	ErrMovieNotFound = errors.New("omdb: movie not found")
)

// Metadata is the subset of an OMDb record used to pre-fill an add-movie
// form. Year and Rating stay strings on the wire ("2010", "8.8", or "N/A");
// the parsed accessors below turn them into numbers.
type Metadata struct {
	Title     string
	Director  string
	Year      string
	Rating    string
	PosterURL string
}

// YearInt parses the release year, tolerating OMDb's "2010–2014" ranges by
// taking the first number. Returns 0 if nothing parses.
func (m Metadata) YearInt() int {
	year := m.Year
	if i := strings.IndexFunc(year, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		year = year[:i]
	}
	n, err := strconv.Atoi(year)
	if err != nil {
		return 0
	}
	return n
}

// RatingFloat parses the IMDb rating. The second return is false for "N/A"
// or anything else non-numeric.
func (m Metadata) RatingFloat() (float64, bool) {
	r, err := strconv.ParseFloat(m.Rating, 64)
	if err != nil {
		return 0, false
	}
	return r, true
}

// Client talks to the OMDb API with a bounded timeout.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates an OMDb client. An empty apiKey is allowed at construction —
// the server starts without one — but every Lookup will fail with
// ErrMissingAPIKey until it is set.
func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// omdbResponse mirrors OMDb's JSON envelope. OMDb signals "no such movie"
// with HTTP 200 and Response=="False", so the error field matters as much
// as the data fields.
type omdbResponse struct {
	Title      string `json:"Title"`
	Director   string `json:"Director"`
	Year       string `json:"Year"`
	ImdbRating string `json:"imdbRating"`
	Poster     string `json:"Poster"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// Lookup fetches metadata for a movie title.
func (c *Client) Lookup(ctx context.Context, title string) (*Metadata, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("t", title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("omdb: building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omdb: fetching %q: %w", title, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb: unexpected status %d for %q", resp.StatusCode, title)
	}

	var body omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("omdb: decoding response for %q: %w", title, err)
	}

	if body.Response == "False" {
		if body.Error != "" && !strings.EqualFold(body.Error, "Movie not found!") {
			return nil, fmt.Errorf("omdb: %s", body.Error)
		}
		return nil, ErrMovieNotFound
	}

	return &Metadata{
		Title:     body.Title,
		Director:  body.Director,
		Year:      body.Year,
		Rating:    body.ImdbRating,
		PosterURL: body.Poster,
	}, nil
}
