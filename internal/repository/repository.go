package repository

import (
	"context"

	"github.com/sakif/movieweb/internal/model"
)

// UserRepository is the storage contract for users and their cascades.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByName(ctx context.Context, name string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)

	// Delete removes the user, all of their movie links, and every movie
	// left with no remaining links. Runs in a single transaction.
	Delete(ctx context.Context, id string) error
}

// MovieRepository is the storage contract for movies and user-movie links.
type MovieRepository interface {
	GetByID(ctx context.Context, id string) (*model.Movie, error)
	List(ctx context.Context) ([]model.Movie, error)
	ListByUser(ctx context.Context, userID string) ([]model.Movie, error)

	// AddToUser inserts the movie if its title is new, reuses the existing
	// row otherwise, and links it to the user. Returns Conflict if the
	// user's list already contains the title. Runs in a single transaction.
	AddToUser(ctx context.Context, userID string, movie *model.Movie) error

	// RemoveFromUser deletes the user's link to the movie and, if that was
	// the last link anywhere, the movie row itself.
	RemoveFromUser(ctx context.Context, userID, movieID string) error

	UpdateRating(ctx context.Context, movieID string, rating float64) error

	// Link inserts a bare user-movie association. Low-level primitive;
	// AddToUser is the usual entry point.
	Link(ctx context.Context, userID, movieID string) error
}
