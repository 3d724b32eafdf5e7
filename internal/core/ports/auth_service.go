package ports

import (
	"context"

	"github.com/credgate/auth-api/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login returns a signed session token for the user owning email.
	Login(ctx context.Context, email, password string) (string, error)
}

// UserService serves the protected profile lookup.
type UserService interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
}
