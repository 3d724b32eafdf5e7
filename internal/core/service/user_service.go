package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/credgate/auth-api/internal/core/domain"
	"github.com/credgate/auth-api/internal/core/ports"
)

type userService struct {
	repo  ports.UserRepository
	cache ports.ProfileCache
}

// NewUserService returns a UserService. cache may be nil.
func NewUserService(repo ports.UserRepository, cache ports.ProfileCache) ports.UserService {
	return &userService{repo: repo, cache: cache}
}

// GetProfile returns the public view of the user with the given identity key.
// The hash is excluded at the store level, not just stripped afterwards.
func (s *userService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, id); ok {
			return p, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	profile := user.Profile()
	if s.cache != nil {
		s.cache.Set(ctx, profile)
	}
	return profile, nil
}
