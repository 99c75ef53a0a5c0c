package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/matthewvu2719/Journey-sub002/internal/models"
	"github.com/matthewvu2719/Journey-sub002/internal/repository"
)

type mockUserRepo struct {
	CreateUserFunc        func(ctx context.Context, u models.User, passwordHash []byte) error
	FindByEmailFunc       func(ctx context.Context, email string) (*models.User, []byte, error)
	FindByIDFunc          func(ctx context.Context, id string) (*models.User, error)
	FindOrCreateGuestFunc func(ctx context.Context, newID, deviceID string) (*models.User, error)
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u models.User, passwordHash []byte) error {
	return m.CreateUserFunc(ctx, u, passwordHash)
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, []byte, error) {
	return m.FindByEmailFunc(ctx, email)
}
func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.FindByIDFunc(ctx, id)
}
func (m *mockUserRepo) FindOrCreateGuest(ctx context.Context, newID, deviceID string) (*models.User, error) {
	return m.FindOrCreateGuestFunc(ctx, newID, deviceID)
}

func TestSignUp_Success(t *testing.T) {
	var gotUser models.User
	var gotHash []byte
	repo := &mockUserRepo{
		CreateUserFunc: func(ctx context.Context, u models.User, passwordHash []byte) error {
			gotUser = u
			gotHash = passwordHash
			return nil
		},
	}
	svc := NewAuthService(repo)

	name := "Alice"
	u, err := svc.SignUp(context.Background(), "a@x.com", "secret1", &name)
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if u.ID == "" {
		t.Error("expected a generated user id")
	}
	if u.UserType != models.Authenticated {
		t.Errorf("expected authenticated user type, got %s", u.UserType)
	}
	if gotUser.Email == nil || *gotUser.Email != "a@x.com" {
		t.Errorf("repo received email %v; want a@x.com", gotUser.Email)
	}
	if err := bcrypt.CompareHashAndPassword(gotHash, []byte("secret1")); err != nil {
		t.Error("stored hash does not match the password")
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		CreateUserFunc: func(ctx context.Context, u models.User, passwordHash []byte) error {
			return repository.ErrDuplicateEmail
		},
	}
	svc := NewAuthService(repo)

	_, err := svc.SignUp(context.Background(), "a@x.com", "secret1", nil)
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	email := "a@x.com"
	repo := &mockUserRepo{
		FindByEmailFunc: func(ctx context.Context, e string) (*models.User, []byte, error) {
			if e != email {
				t.Errorf("FindByEmail received %q; want %q", e, email)
			}
			return &models.User{ID: "u1", Email: &email, UserType: models.Authenticated}, hash, nil
		},
	}
	svc := NewAuthService(repo)

	u, err := svc.Login(context.Background(), email, "secret1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if u.ID != "u1" {
		t.Errorf("expected user u1, got %s", u.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	email := "a@x.com"
	repo := &mockUserRepo{
		FindByEmailFunc: func(ctx context.Context, e string) (*models.User, []byte, error) {
			return &models.User{ID: "u1", Email: &email, UserType: models.Authenticated}, hash, nil
		},
	}
	svc := NewAuthService(repo)

	_, err := svc.Login(context.Background(), email, "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := &mockUserRepo{
		FindByEmailFunc: func(ctx context.Context, e string) (*models.User, []byte, error) {
			return nil, nil, repository.ErrNotFound
		},
	}
	svc := NewAuthService(repo)

	_, err := svc.Login(context.Background(), "missing@x.com", "pw")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestGuestLogin_StableForDevice(t *testing.T) {
	repo := &mockUserRepo{
		FindOrCreateGuestFunc: func(ctx context.Context, newID, deviceID string) (*models.User, error) {
			if deviceID != "d1" {
				t.Errorf("FindOrCreateGuest received device %q; want d1", deviceID)
			}
			if newID == "" {
				t.Error("expected a generated candidate id")
			}
			return &models.User{ID: "g1", UserType: models.Guest}, nil
		},
	}
	svc := NewAuthService(repo)

	u, err := svc.GuestLogin(context.Background(), "d1")
	if err != nil {
		t.Fatalf("GuestLogin returned error: %v", err)
	}
	if u.UserType != models.Guest {
		t.Errorf("expected guest user type, got %s", u.UserType)
	}
}

func TestCurrentUser_NotFound(t *testing.T) {
	repo := &mockUserRepo{
		FindByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := NewAuthService(repo)

	_, err := svc.CurrentUser(context.Background(), "gone")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
