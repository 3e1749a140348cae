package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/sakif/movieweb/internal/apperror"
	"github.com/sakif/movieweb/internal/model"
	"github.com/sakif/movieweb/internal/repository"
)

const (
	MaxTitleLength    = 200
	MaxDirectorLength = 200

	MinRating = 0.0
	MaxRating = 10.0

	// Loose sanity bounds; the upper bound leaves room for announced
	// releases.
	MinYear = 1870
	MaxYear = 2100
)

// MovieService handles business logic for movies and collection membership.
type MovieService struct {
	repo   repository.MovieRepository
	logger *slog.Logger
}

// NewMovieService creates a new MovieService.
func NewMovieService(repo repository.MovieRepository, logger *slog.Logger) *MovieService {
	return &MovieService{
		repo:   repo,
		logger: logger,
	}
}

// validRating reports whether r is a finite number within [0, 10].
// NaN and ±Inf arrive easily through JSON-adjacent code paths and must not
// reach the store.
func validRating(r float64) bool {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return false
	}
	return r >= MinRating && r <= MaxRating
}

// AddToUser validates a movie and adds it to the user's list. A title already
// in the store is reused (the movie row is shared across users); a title
// already in this user's list is a Conflict.
func (s *MovieService) AddToUser(ctx context.Context, userID string, movie *model.Movie) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperror.ValidationFailed("userId", "user ID is required")
	}

	movie.Title = strings.TrimSpace(movie.Title)
	if movie.Title == "" {
		return apperror.ValidationFailed("title", "movie title is required")
	}
	if len(movie.Title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("movie title must be %d characters or less", MaxTitleLength))
	}
	movie.Director = strings.TrimSpace(movie.Director)
	if len(movie.Director) > MaxDirectorLength {
		return apperror.ValidationFailed("director",
			fmt.Sprintf("director must be %d characters or less", MaxDirectorLength))
	}
	if movie.Year != 0 && (movie.Year < MinYear || movie.Year > MaxYear) {
		return apperror.ValidationFailed("year",
			fmt.Sprintf("year must be between %d and %d", MinYear, MaxYear))
	}
	if movie.Rating != nil && !validRating(*movie.Rating) {
		return apperror.ValidationFailed("rating",
			fmt.Sprintf("rating must be a number between %g and %g", MinRating, MaxRating))
	}

	if err := s.repo.AddToUser(ctx, userID, movie); err != nil {
		if !errors.Is(err, apperror.ErrConflict) && !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to add movie",
				slog.String("userId", userID),
				slog.String("title", movie.Title),
				slog.String("error", err.Error()),
			)
		}
		return fmt.Errorf("adding movie: %w", err)
	}

	s.logger.Info("movie added to list",
		slog.String("userId", userID),
		slog.String("movieId", movie.ID),
		slog.String("title", movie.Title),
	)

	return nil
}

// GetByID retrieves a single movie.
func (s *MovieService) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "movie ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns every movie in the store.
func (s *MovieService) List(ctx context.Context) ([]model.Movie, error) {
	movies, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list movies", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing movies: %w", err)
	}
	return movies, nil
}

// ListByUser returns the movies in a user's list. NotFound if the user
// does not exist.
func (s *MovieService) ListByUser(ctx context.Context, userID string) ([]model.Movie, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}
	return s.repo.ListByUser(ctx, userID)
}

// UpdateRating sets a movie's rating. The handler layer validates the raw
// input, but the range check is repeated here so no caller can slip an
// out-of-range or non-finite value past the service.
func (s *MovieService) UpdateRating(ctx context.Context, movieID string, rating float64) error {
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return apperror.ValidationFailed("id", "movie ID is required")
	}
	if !validRating(rating) {
		return apperror.ValidationFailed("rating",
			fmt.Sprintf("rating must be a number between %g and %g", MinRating, MaxRating))
	}

	if err := s.repo.UpdateRating(ctx, movieID, rating); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to update rating",
				slog.String("movieId", movieID),
				slog.String("error", err.Error()),
			)
		}
		return err
	}

	s.logger.Info("rating updated",
		slog.String("movieId", movieID),
		slog.Float64("rating", rating),
	)

	return nil
}

// RemoveFromUser removes a movie from one user's list; the movie row itself
// disappears only when the last list containing it lets go.
func (s *MovieService) RemoveFromUser(ctx context.Context, userID, movieID string) error {
	userID = strings.TrimSpace(userID)
	movieID = strings.TrimSpace(movieID)
	if userID == "" {
		return apperror.ValidationFailed("userId", "user ID is required")
	}
	if movieID == "" {
		return apperror.ValidationFailed("movieId", "movie ID is required")
	}

	if err := s.repo.RemoveFromUser(ctx, userID, movieID); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to remove movie",
				slog.String("userId", userID),
				slog.String("movieId", movieID),
				slog.String("error", err.Error()),
			)
		}
		return err
	}

	s.logger.Info("movie removed from list",
		slog.String("userId", userID),
		slog.String("movieId", movieID),
	)

	return nil
}
