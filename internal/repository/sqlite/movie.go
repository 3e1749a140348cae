package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/movieweb/internal/apperror"
	"github.com/sakif/movieweb/internal/model"
	"github.com/sakif/movieweb/internal/repository"
)

// compile-time check that *DB implements repository.MovieRepository
var _ repository.MovieRepository = (*DB)(nil)

const movieColumns = `id, title, director, year, rating, poster, created_at`

func scanMovie(row interface {
	Scan(dest ...any) error
}) (*model.Movie, error) {
	var m model.Movie
	err := row.Scan(&m.ID, &m.Title, &m.Director, &m.Year, &m.Rating, &m.Poster, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID retrieves a single movie by its ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	m, err := scanMovie(db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("movie", id)
		}
		return nil, apperror.Internal(fmt.Errorf("sqlite: getting movie %s: %w", id, err))
	}
	return m, nil
}

// List returns every movie in the store.
func (db *DB) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies`)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("sqlite: listing movies: %w", err))
	}
	defer rows.Close()
	return collectMovies(rows)
}

// ListByUser returns the movies reachable through a user's links.
// Returns NotFound if the user itself does not exist — an empty list and a
// missing user are different answers.
func (db *DB) ListByUser(ctx context.Context, userID string) ([]model.Movie, error) {
	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user WHERE id = ?`, userID).Scan(&exists)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("sqlite: checking user %s: %w", userID, err))
	}
	if exists == 0 {
		return nil, apperror.NotFound("user", userID)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.title, m.director, m.year, m.rating, m.poster, m.created_at
		 FROM movies m
		 JOIN user_movies um ON um.movie_id = m.id
		 WHERE um.user_id = ?`,
		userID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("sqlite: listing movies for user %s: %w", userID, err))
	}
	defer rows.Close()
	return collectMovies(rows)
}

func collectMovies(rows *sql.Rows) ([]model.Movie, error) {
	movies := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("sqlite: scanning movie row: %w", err))
		}
		movies = append(movies, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(fmt.Errorf("sqlite: iterating movies: %w", err))
	}
	return movies, nil
}

// AddToUser adds a movie to a user's list, deduplicating by title.
//
// Titles are unique across the store, so a movie is a shared resource:
//   - title absent           → insert a new row, then link it
//   - title present, no link → reuse the existing row, link it
//   - title present, linked  → Conflict, the list already has it
//
// Lookup, optional insert, and link all happen in one transaction so a
// concurrent add of the same title serializes through the engine instead of
// producing a duplicate row or a half-linked movie.
func (db *DB) AddToUser(ctx context.Context, userID string, movie *model.Movie) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := scanMovie(tx.QueryRowContext(ctx,
			`SELECT `+movieColumns+` FROM movies WHERE title = ?`, movie.Title))
		switch {
		case err == sql.ErrNoRows:
			movie.ID = xid.New().String()
			movie.CreatedAt = time.Now()
			_, err = tx.ExecContext(ctx,
				`INSERT INTO movies (id, title, director, year, rating, poster, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				movie.ID,
				movie.Title,
				movie.Director,
				movie.Year,
				movie.Rating,
				movie.Poster,
				movie.CreatedAt,
			)
			if err != nil {
				return apperror.Internal(fmt.Errorf("sqlite: inserting movie %q: %w", movie.Title, err))
			}

		case err != nil:
			return apperror.Internal(fmt.Errorf("sqlite: looking up movie %q: %w", movie.Title, err))

		default:
			var linked int
			err = tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM user_movies WHERE user_id = ? AND movie_id = ?`,
				userID, existing.ID).Scan(&linked)
			if err != nil {
				return apperror.Internal(fmt.Errorf("sqlite: checking link for movie %q: %w", movie.Title, err))
			}
			if linked > 0 {
				return apperror.Conflict("movie", fmt.Sprintf("%q is already in this user's list", movie.Title))
			}
			// Reuse the shared row; hand its canonical fields back to the caller.
			*movie = *existing
		}

		return insertLink(ctx, tx, userID, movie.ID)
	})
}

// RemoveFromUser removes a movie from one user's list.
//
// NotFound if the movie does not exist at all. Deleting the link is
// unconditional (removing an absent link is a no-op); the movie row itself
// is deleted only when its last link anywhere is gone.
func (db *DB) RemoveFromUser(ctx context.Context, userID, movieID string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM movies WHERE id = ?`, movieID).Scan(&exists)
		if err != nil {
			return apperror.Internal(fmt.Errorf("sqlite: checking movie %s: %w", movieID, err))
		}
		if exists == 0 {
			return apperror.NotFound("movie", movieID)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_movies WHERE user_id = ? AND movie_id = ?`,
			userID, movieID); err != nil {
			return apperror.Internal(fmt.Errorf("sqlite: deleting link %s/%s: %w", userID, movieID, err))
		}

		return deleteMovieIfOrphaned(ctx, tx, movieID)
	})
}

// UpdateRating persists a new rating on an existing movie. Title, director,
// year, and poster are immutable after creation — only the rating column
// changes. Range validation happens in the service layer before this call.
func (db *DB) UpdateRating(ctx context.Context, movieID string, rating float64) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE movies SET rating = ? WHERE id = ?`,
		rating, movieID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("sqlite: updating rating for movie %s: %w", movieID, err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.Internal(fmt.Errorf("sqlite: checking rows affected: %w", err))
	}
	if rowsAffected == 0 {
		return apperror.NotFound("movie", movieID)
	}

	return nil
}

// Link inserts a bare user-movie association and commits it.
func (db *DB) Link(ctx context.Context, userID, movieID string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return insertLink(ctx, tx, userID, movieID)
	})
}

func insertLink(ctx context.Context, tx *sql.Tx, userID, movieID string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO user_movies (id, user_id, movie_id) VALUES (?, ?, ?)`,
		xid.New().String(), userID, movieID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("movie", "already in this user's list")
		}
		return apperror.Internal(fmt.Errorf("sqlite: inserting link %s/%s: %w", userID, movieID, err))
	}
	return nil
}
