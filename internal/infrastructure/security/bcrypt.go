package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/credgate/auth-api/internal/core/domain"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// BcryptHasher hashes passwords with bcrypt. The salt is generated per call
// and embedded in the digest.
type BcryptHasher struct {
	cost     int
	duration prometheus.Observer
}

// NewBcryptHasher returns a hasher with the given work factor. Costs outside
// bcrypt's accepted range fall back to DefaultCost. duration may be nil.
func NewBcryptHasher(cost int, duration prometheus.Observer) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost, duration: duration}
}

// Cost returns the effective work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	start := time.Now()
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if h.duration != nil {
		h.duration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.NewValidationError("password must be at most 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

func (h *BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
