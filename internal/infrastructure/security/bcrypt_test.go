package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/credgate/auth-api/internal/core/domain"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)

	digest, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", digest)
	assert.True(t, h.Verify("secret1", digest))
	assert.False(t, h.Verify("secret2", digest))
}

func TestBcryptHasher_SaltedDigestsDiffer(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same-password", first))
	assert.True(t, h.Verify("same-password", second))
}

func TestBcryptHasher_VerifyGarbageDigest(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)
	assert.False(t, h.Verify("secret", "not-a-bcrypt-digest"))
	assert.False(t, h.Verify("secret", ""))
}

func TestBcryptHasher_CostFallback(t *testing.T) {
	assert.Equal(t, DefaultCost, NewBcryptHasher(0, nil).Cost())
	assert.Equal(t, DefaultCost, NewBcryptHasher(bcrypt.MaxCost+1, nil).Cost())
	assert.Equal(t, 10, NewBcryptHasher(10, nil).Cost())
}

func TestBcryptHasher_EmbedsCost(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost+1, nil)
	digest, err := h.Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestBcryptHasher_PasswordTooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)
	_, err := h.Hash(strings.Repeat("a", 73))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

type countingObserver struct {
	calls int
}

func (o *countingObserver) Observe(float64) { o.calls++ }

func TestBcryptHasher_ObservesDuration(t *testing.T) {
	obs := &countingObserver{}
	h := NewBcryptHasher(bcrypt.MinCost, obs)

	_, err := h.Hash("pw")
	require.NoError(t, err)
	assert.Equal(t, 1, obs.calls)
}
