package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/smart-student-hub-api/internal/dto"
	"github.com/noah-isme/smart-student-hub-api/internal/models"
	"github.com/noah-isme/smart-student-hub-api/internal/repository"
)

// UserService resolves authenticated subjects against the User Directory.
type UserService interface {
	Resolve(ctx context.Context, subject string) (*Identity, error)
	Profile(ctx context.Context, identity *Identity) (dto.ProfileResponse, error)
}

type userService struct {
	repo   repository.UserRepository
	logger zerolog.Logger
}

// NewUserService constructs the directory service.
func NewUserService(repo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		repo:   repo,
		logger: logger.With().Str("component", "user_service").Logger(),
	}
}

// Resolve returns ErrUnauthenticated for subjects absent from the directory or holding an unknown role.
func (s *userService) Resolve(ctx context.Context, subject string) (*Identity, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrUnauthenticated
	}

	user, err := s.repo.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	role, ok := models.ParseRole(string(user.Role))
	if !ok {
		s.logger.Warn().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("directory entry has unknown role")
		return nil, ErrUnauthenticated
	}

	return &Identity{UserID: user.ID, Role: role, Department: user.Department}, nil
}

func (s *userService) Profile(ctx context.Context, identity *Identity) (dto.ProfileResponse, error) {
	if identity == nil || identity.UserID == "" {
		return dto.ProfileResponse{}, ErrUnauthenticated
	}

	user, err := s.repo.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUnauthenticated
		}
		return dto.ProfileResponse{}, err
	}

	return dto.NewProfileResponse(user), nil
}
