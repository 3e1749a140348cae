// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services validate input, enforce
// the collection rules, and log business events; repositories talk to the
// database. Services depend on the repository interfaces, never on the
// sqlite package, so tests swap in in-memory mocks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/movieweb/internal/apperror"
	"github.com/sakif/movieweb/internal/model"
	"github.com/sakif/movieweb/internal/repository"
)

const MaxUserNameLength = 100

// UserService handles business logic for user accounts and their collections.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and adds a new user. Returns Conflict if the name is
// already taken.
//
// The lookup-then-insert gives the caller a precise error message; the
// schema's UNIQUE constraint backs it up if two requests race, and the
// repository reports that violation as the same Conflict.
func (s *UserService) Create(ctx context.Context, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "user name is required")
	}
	if len(name) > MaxUserNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("user name must be %d characters or less", MaxUserNameLength))
	}

	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return nil, apperror.Conflict("user", fmt.Sprintf("user %q already exists", name))
	} else if !errors.Is(err, apperror.ErrNotFound) {
		s.logger.Error("failed to check for existing user",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	user := &model.User{Name: name}
	if err := s.repo.Create(ctx, user); err != nil {
		if !errors.Is(err, apperror.ErrConflict) {
			s.logger.Error("failed to create user",
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.String("id", user.ID),
		slog.String("name", user.Name),
	)

	return user, nil
}

// GetByName retrieves a user by their exact name.
func (s *UserService) GetByName(ctx context.Context, name string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "user name is required")
	}
	return s.repo.GetByName(ctx, name)
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Delete removes a user, their movie links, and any movie left unreferenced.
// Destroying the unshared movies is intended behaviour, not an accident —
// a movie only exists while someone has it in a list.
func (s *UserService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "user ID is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to delete user",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		}
		return err
	}

	s.logger.Info("user deleted", slog.String("id", id))
	return nil
}
