package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/movieweb/internal/apperror"
	"github.com/sakif/movieweb/internal/model"
	"github.com/sakif/movieweb/internal/repository"
)

// UserDB provides the user repository methods on top of the shared DB.
// Splitting it off keeps the method sets of the two repository interfaces
// from colliding on *DB (both define GetByID).
type UserDB struct {
	db *DB
}

// Users returns the user repository view of this database.
func (db *DB) Users() *UserDB {
	return &UserDB{db: db}
}

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite surfaces these as driver errors carrying the SQLite
// message text; matching on it avoids importing the driver's error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Create inserts a new user. Returns Conflict if the name is already taken.
//
// The service layer pre-checks the name too, but that check can race with a
// concurrent insert — the UNIQUE constraint on user.name is the authority,
// and its violation is translated into the same Conflict the pre-check gives.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err := u.db.conn.ExecContext(ctx,
		`INSERT INTO user (id, name, created_at) VALUES (?, ?, ?)`,
		user.ID,
		user.Name,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", fmt.Sprintf("user %q already exists", user.Name))
		}
		return apperror.Internal(fmt.Errorf("sqlite: inserting user %q: %w", user.Name, err))
	}

	return nil
}

// GetByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(u.db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM user WHERE id = ?`, id), id)
}

// GetByName retrieves a user by their exact name (case-sensitive, as stored).
func (u *UserDB) GetByName(ctx context.Context, name string) (*model.User, error) {
	return scanUser(u.db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM user WHERE name = ?`, name), name)
}

func scanUser(row *sql.Row, key string) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", key)
		}
		return nil, apperror.Internal(fmt.Errorf("sqlite: getting user %s: %w", key, err))
	}
	return &u, nil
}

// List returns all users in store order.
func (u *UserDB) List(ctx context.Context) ([]model.User, error) {
	rows, err := u.db.conn.QueryContext(ctx,
		`SELECT id, name, created_at FROM user`)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("sqlite: listing users: %w", err))
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.Name, &user.CreatedAt); err != nil {
			return nil, apperror.Internal(fmt.Errorf("sqlite: scanning user row: %w", err))
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(fmt.Errorf("sqlite: iterating users: %w", err))
	}

	return users, nil
}

// Delete removes a user and cascades to their movie links.
//
// Cascade ordering, all inside one transaction:
//  1. snapshot the movie IDs referenced by this user's links
//  2. delete the user's links
//  3. for each snapshotted movie, delete it only if no link from any other
//     user still references it — a shared movie survives
//  4. delete the user row
//
// The snapshot is taken before any deletion so the survival decision is made
// against the association set observed at the start of the operation.
func (u *UserDB) Delete(ctx context.Context, id string) error {
	return u.db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM user WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return apperror.Internal(fmt.Errorf("sqlite: checking user %s: %w", id, err))
		}
		if exists == 0 {
			return apperror.NotFound("user", id)
		}

		movieIDs, err := linkedMovieIDs(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_movies WHERE user_id = ?`, id); err != nil {
			return apperror.Internal(fmt.Errorf("sqlite: deleting links for user %s: %w", id, err))
		}

		for _, movieID := range movieIDs {
			if err := deleteMovieIfOrphaned(ctx, tx, movieID); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user WHERE id = ?`, id); err != nil {
			return apperror.Internal(fmt.Errorf("sqlite: deleting user %s: %w", id, err))
		}

		return nil
	})
}

// linkedMovieIDs returns the IDs of every movie the user has a link to.
func linkedMovieIDs(ctx context.Context, tx *sql.Tx, userID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT movie_id FROM user_movies WHERE user_id = ?`, userID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("sqlite: listing links for user %s: %w", userID, err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperror.Internal(fmt.Errorf("sqlite: scanning link row: %w", err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(fmt.Errorf("sqlite: iterating links: %w", err))
	}
	return ids, nil
}

// deleteMovieIfOrphaned removes the movie row iff no user links to it anymore.
func deleteMovieIfOrphaned(ctx context.Context, tx *sql.Tx, movieID string) error {
	var remaining int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_movies WHERE movie_id = ?`, movieID).Scan(&remaining)
	if err != nil {
		return apperror.Internal(fmt.Errorf("sqlite: counting links to movie %s: %w", movieID, err))
	}
	if remaining > 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM movies WHERE id = ?`, movieID); err != nil {
		return apperror.Internal(fmt.Errorf("sqlite: deleting orphaned movie %s: %w", movieID, err))
	}
	return nil
}
