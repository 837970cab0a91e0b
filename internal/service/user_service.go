package service

import (
	"context"

	"github.com/courseboard/courseboard/internal/model"
	"github.com/courseboard/courseboard/internal/repository"
)

// UserService handles user business logic.
type UserService struct {
	userRepo *repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetByEmail retrieves a user by their unique email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userRepo.GetByEmail(ctx, email)
}

// List retrieves all users, optionally filtered by exact email match.
func (s *UserService) List(ctx context.Context, email string) ([]model.User, error) {
	users, err := s.userRepo.List(ctx, email)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// Create inserts a new user. The password hash must already be set.
func (s *UserService) Create(ctx context.Context, u *model.User) error {
	return s.userRepo.Create(ctx, u)
}

// Delete removes a user by ID.
func (s *UserService) Delete(ctx context.Context, id int) error {
	return s.userRepo.Delete(ctx, id)
}
