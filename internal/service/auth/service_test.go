package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventra/eventra/internal/domain"
	"github.com/eventra/eventra/internal/repository"
)

type fakeUserStore struct {
	byEmail map[string]domain.User
	byID    map[uuid.UUID]domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail: make(map[string]domain.User),
		byID:    make(map[uuid.UUID]domain.User),
	}
}

func (f *fakeUserStore) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, fmt.Errorf("fake: %w", repository.ErrConflict)
	}
	u.ID = uuid.New()
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
	out := u
	return &out, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("fake: %w", repository.ErrNotFound)
	}
	out := u
	return &out, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("fake: %w", repository.ErrNotFound)
	}
	out := u
	return &out, nil
}

type fakeSessionStore struct {
	sessions map[string]string
	next     int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]string)}
}

func (f *fakeSessionStore) Create(ctx context.Context, userID string) (string, error) {
	f.next++
	token := fmt.Sprintf("token-%d", f.next)
	f.sessions[token] = userID
	return token, nil
}

func (f *fakeSessionStore) Get(ctx context.Context, token string) (string, bool, error) {
	userID, ok := f.sessions[token]
	return userID, ok, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func newAuthService() (*Service, *fakeUserStore, *fakeSessionStore) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	svc := New(users, sessions)
	// MinCost keeps the hash rounds cheap for the test run.
	svc.bcryptCost = bcrypt.MinCost
	return svc, users, sessions
}

func TestRegisterHashesPasswordAndRejectsDuplicates(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ada", "Ada@Example.com", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Errorf("email not lowercased: %q", u.Email)
	}

	stored := users.byEmail["ada@example.com"]
	if stored.PasswordHash == "hunter2" || stored.PasswordHash == "" {
		t.Fatal("password stored without hashing")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}

	if _, err := svc.Register(ctx, "Ada2", "ada@example.com", "other"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterRequiresAllFields(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	for _, tc := range []struct{ name, email, password string }{
		{"", "a@b.c", "pw"},
		{"Ada", "", "pw"},
		{"Ada", "a@b.c", ""},
	} {
		if _, err := svc.Register(ctx, tc.name, tc.email, tc.password); !errors.Is(err, ErrMissingFields) {
			t.Errorf("Register(%q, %q, %q) = %v, want ErrMissingFields", tc.name, tc.email, tc.password, err)
		}
	}
}

func TestLoginDistinguishesUnknownUserFromBadPassword(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}

	u, token, err := svc.Login(ctx, "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("no session token issued")
	}
	if u.Name != "Ada" {
		t.Errorf("user = %+v", u)
	}

	if _, _, err := svc.Login(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "hunter2"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown email: got %v, want ErrUserNotFound", err)
	}
}

func TestProfileRoundTripAndLogout(t *testing.T) {
	svc, _, sessions := newAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Ada", "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, token, err := svc.Login(ctx, "ada@example.com", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	u, err := svc.Profile(ctx, token)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if u == nil || u.ID != reg.ID {
		t.Fatalf("profile = %+v, want user %v", u, reg.ID)
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.sessions[token]; ok {
		t.Fatal("session survived logout")
	}

	u, err = svc.Profile(ctx, token)
	if err != nil {
		t.Fatalf("profile after logout: %v", err)
	}
	if u != nil {
		t.Fatalf("revoked token still resolves to %+v", u)
	}
}

func TestProfileAnonymousToken(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	for _, token := range []string{"", "never-issued"} {
		u, err := svc.Profile(ctx, token)
		if err != nil {
			t.Fatalf("profile(%q): %v", token, err)
		}
		if u != nil {
			t.Fatalf("profile(%q) = %+v, want nil", token, u)
		}
	}
}
