package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/credgate/auth-api/internal/core/domain"
	"github.com/credgate/auth-api/internal/core/ports"
	"github.com/credgate/auth-api/internal/infrastructure/security"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*domain.User
	nextID    int
	creates   int
	findErr   error // if set, FindByEmail/FindByID return this error
	createErr error // if set, Create returns this error
	// lastWithHash records the withHash flag of the last FindByID call.
	lastWithHash bool
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// Create enforces email uniqueness atomically, mirroring the unique index.
func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	r.creates++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("%024d", r.nextID)
	r.byEmail[stored.Email] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string, withHash bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastWithHash = withHash
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byEmail {
		if u.ID == id {
			clone := cloneUser(u)
			if !withHash {
				clone.PasswordHash = ""
			}
			return clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byEmail)
}

type failingIssuer struct{ err error }

func (f failingIssuer) Issue(string) (string, error) { return "", f.err }

func newTestAuthService(repo ports.UserRepository) (*AuthService, *security.JWTManager) {
	tokens := security.NewJWTManager("secret", time.Hour)
	return NewAuthService(repo, security.NewBcryptHasher(bcrypt.MinCost, nil), tokens, zerolog.Nop()), tokens
}

func validInput() ports.RegisterInput {
	return ports.RegisterInput{
		Name:            "Ana",
		Email:           "a@x.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected an identity key")
	}
	if user.PasswordHash == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if repo.count() != 1 {
		t.Fatalf("expected 1 stored user, got %d", repo.count())
	}
}

func TestAuthService_Register_DistinctEmails(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	for i := 0; i < 3; i++ {
		in := validInput()
		in.Email = fmt.Sprintf("user%d@x.com", i)
		in.Password = fmt.Sprintf("pw-%d", i)
		in.ConfirmPassword = in.Password

		if _, err := svc.Register(context.Background(), in); err != nil {
			t.Fatalf("register %s: %v", in.Email, err)
		}
		stored, _ := repo.FindByEmail(context.Background(), in.Email)
		if stored.PasswordHash == in.Password {
			t.Fatalf("hash equals plaintext for %s", in.Email)
		}
		if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(in.Password)) != nil {
			t.Fatalf("hash does not verify for %s", in.Email)
		}
	}
	if repo.count() != 3 {
		t.Fatalf("expected 3 users, got %d", repo.count())
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ports.RegisterInput)
		reason string
	}{
		{"missing name", func(in *ports.RegisterInput) { in.Name = "" }, "name is required"},
		{"blank name", func(in *ports.RegisterInput) { in.Name = "   " }, "name is required"},
		{"missing email", func(in *ports.RegisterInput) { in.Email = "" }, "email is required"},
		{"missing password", func(in *ports.RegisterInput) { in.Password = ""; in.ConfirmPassword = "" }, "password is required"},
		{"mismatch", func(in *ports.RegisterInput) { in.ConfirmPassword = "other" }, "passwords do not match"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubUserRepo()
			svc, _ := newTestAuthService(repo)

			in := validInput()
			tc.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if err.Error() != tc.reason {
				t.Fatalf("expected %q, got %q", tc.reason, err.Error())
			}
			if repo.creates != 0 {
				t.Fatalf("store mutated on rejection")
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	in := validInput()
	in.Name = "Other"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if repo.count() != 1 {
		t.Fatalf("expected exactly one record, got %d", repo.count())
	}
}

func TestAuthService_Register_ConcurrentDuplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), validInput())
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrUserExists):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one success, got %d", successes)
	}
	if repo.count() != 1 {
		t.Fatalf("expected exactly one record, got %d", repo.count())
	}
}

func TestAuthService_Register_StorageFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errors.New("connection reset")
	svc, _ := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), validInput())
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrValidation) {
		t.Fatalf("storage failure mapped to a client error: %v", err)
	}
}

func TestAuthService_Register_LookupFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("timeout")
	svc, _ := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), validInput()); err == nil || errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("store mutated after lookup failure")
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, tokens := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, err := svc.Login(context.Background(), "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	id, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if id != user.ID {
		t.Fatalf("token bound to %q, want %q", id, user.ID)
	}
}

func TestAuthService_Login_Validation(t *testing.T) {
	svc, _ := newTestAuthService(newStubUserRepo())

	if _, err := svc.Login(context.Background(), "", "pw"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty email, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "a@x.com", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty password, got %v", err)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc, _ := newTestAuthService(newStubUserRepo())

	_, _ = svc.Register(context.Background(), validInput())
	token, err := svc.Login(context.Background(), "a@x.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if token != "" {
		t.Fatalf("token issued on failed login")
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc, _ := newTestAuthService(newStubUserRepo())

	if _, err := svc.Login(context.Background(), "ghost@x.com", "pass"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_Login_SigningFailure(t *testing.T) {
	repo := newStubUserRepo()
	hasher := security.NewBcryptHasher(bcrypt.MinCost, nil)
	signErr := errors.New("key unavailable")
	svc := NewAuthService(repo, hasher, failingIssuer{err: signErr}, zerolog.Nop())

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "a@x.com", "secret1"); !errors.Is(err, signErr) {
		t.Fatalf("expected signing error to propagate, got %v", err)
	}
}
