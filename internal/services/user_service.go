package services

import (
	"context"
	"log/slog"

	"github.com/saksham-ndma/training-service/internal/models"
	"github.com/saksham-ndma/training-service/internal/repositories"
)

type userService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewUserService(repo repositories.Repository, logger *slog.Logger) UserService {
	return &userService{
		repo:   repo,
		logger: logger,
	}
}

// GetProfile returns the principal's own profile with the home district
// resolved against the catalog when possible.
func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, NewStoreError("get user", err)
	}

	if user.HomeDistrictName != "" {
		district, err := s.repo.District().GetByName(ctx, nil, user.HomeDistrictName)
		if err == nil && district != nil {
			user.HomeDistrictID = &district.ID
		}
	}

	return user, nil
}

// List returns users for administrative views
func (s *userService) List(ctx context.Context, limit, offset int, principal *models.User) ([]*models.User, error) {
	if !principal.IsAdmin() {
		return nil, NewPermissionError(principal.ID, 0, "user", "list", "user directory requires national admin")
	}

	users, err := s.repo.User().List(ctx, limit, offset)
	if err != nil {
		return nil, NewStoreError("list users", err)
	}

	return users, nil
}
