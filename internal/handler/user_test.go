package handler_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/sakif/movieweb/internal/handler"
	"github.com/sakif/movieweb/internal/repository/sqlite"
	"github.com/sakif/movieweb/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Handler tests run against the full stack on an in-memory database — the
// error-mapping behaviour (409 for duplicates, 404 for missing rows) is
// exactly what these tests exist to pin down, so mocking the service away
// would test nothing.
func newTestHandlers(t *testing.T) (*handler.UserHandler, *handler.MovieHandler) {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	users := handler.NewUserHandler(service.NewUserService(db.Users(), logger), logger)
	movies := handler.NewMovieHandler(service.NewMovieService(db, logger), logger)
	return users, movies
}

func doJSON(t *testing.T, h http.HandlerFunc, method, target, body string, pathValues map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestUserHandler_CreateAndGet(t *testing.T) {
	users, _ := newTestHandlers(t)

	rr := doJSON(t, users.HandleCreate, http.MethodPost, "/api/users", `{"name":"Alice"}`, nil)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Alice"`)

	rr = doJSON(t, users.HandleGetByName, http.MethodGet, "/api/users/Alice", "", map[string]string{"name": "Alice"})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, users.HandleGetByName, http.MethodGet, "/api/users/Bob", "", map[string]string{"name": "Bob"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error":"not_found"`)
}

func TestUserHandler_CreateDuplicateIs409(t *testing.T) {
	users, _ := newTestHandlers(t)

	rr := doJSON(t, users.HandleCreate, http.MethodPost, "/api/users", `{"name":"Alice"}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, users.HandleCreate, http.MethodPost, "/api/users", `{"name":"Alice"}`, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error":"conflict"`)
}

func TestUserHandler_CreateValidation(t *testing.T) {
	users, _ := newTestHandlers(t)

	rr := doJSON(t, users.HandleCreate, http.MethodPost, "/api/users", `{"name":"  "}`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error":"validation_error"`)

	rr = doJSON(t, users.HandleCreate, http.MethodPost, "/api/users", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMovieHandler_AddUpdateRemove(t *testing.T) {
	users, movies := newTestHandlers(t)

	rr := doJSON(t, users.HandleCreate, http.MethodPost, "/api/users", `{"name":"Alice"}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var alice struct {
		ID string `json:"id"`
	}
	require.NoError(t, jsonDecode(rr, &alice))

	rr = doJSON(t, movies.HandleAddToUser, http.MethodPost, "/api/users/"+alice.ID+"/movies",
		`{"title":"Inception","director":"Christopher Nolan","year":2010,"rating":8.8}`,
		map[string]string{"id": alice.ID})
	require.Equal(t, http.StatusCreated, rr.Code)
	var inception struct {
		ID string `json:"id"`
	}
	require.NoError(t, jsonDecode(rr, &inception))

	// Same title, same list → 409.
	rr = doJSON(t, movies.HandleAddToUser, http.MethodPost, "/api/users/"+alice.ID+"/movies",
		`{"title":"Inception"}`, map[string]string{"id": alice.ID})
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Out-of-range rating → 400, stored rating untouched.
	rr = doJSON(t, movies.HandleUpdateRating, http.MethodPut, "/api/movies/"+inception.ID+"/rating",
		`{"rating":11}`, map[string]string{"id": inception.ID})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, movies.HandleUpdateRating, http.MethodPut, "/api/movies/"+inception.ID+"/rating",
		`{"rating":9.5}`, map[string]string{"id": inception.ID})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, movies.HandleGetByID, http.MethodGet, "/api/movies/"+inception.ID, "",
		map[string]string{"id": inception.ID})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"rating":9.5`)

	rr = doJSON(t, movies.HandleRemoveFromUser, http.MethodDelete,
		"/api/users/"+alice.ID+"/movies/"+inception.ID, "",
		map[string]string{"id": alice.ID, "movieID": inception.ID})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, movies.HandleGetByID, http.MethodGet, "/api/movies/"+inception.ID, "",
		map[string]string{"id": inception.ID})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func jsonDecode(rr *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(rr.Body.Bytes(), v)
}
