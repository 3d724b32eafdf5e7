package ports

import (
	"context"

	"github.com/credgate/auth-api/internal/core/domain"
)

// UserRepository is the credential store. Email uniqueness is enforced by the
// store itself so that concurrent registrations cannot both succeed.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID looks a user up by identity key. When withHash is false the
	// password hash is never read from the store.
	FindByID(ctx context.Context, id string, withHash bool) (*domain.User, error)
	// Create returns domain.ErrUserExists when the email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// ProfileCache is an optional read-through cache for profile lookups.
// Implementations must treat backend failures as misses.
type ProfileCache interface {
	Get(ctx context.Context, id string) (*domain.Profile, bool)
	Set(ctx context.Context, profile *domain.Profile)
}
