package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/arzan03/OnboardGate/internal/db"
	"github.com/arzan03/OnboardGate/internal/metrics"
	"github.com/arzan03/OnboardGate/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var hashCost = bcrypt.DefaultCost

var (
	timingHashOnce sync.Once
	timingHash     string
)

// HashPassword returns the bcrypt hash stored in the password field.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	return string(hash), err
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NormalizeEmail is applied to every email before it reaches the store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser builds an account record with a hashed password. The plaintext
// is not retained.
func NewUser(email, password string, role models.Role, status models.Status, createdAt time.Time) (models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	return models.User{
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
		Status:       status,
		Responses:    []models.Response{},
		CreatedAt:    createdAt.UTC(),
	}, nil
}

type AuthService struct {
	users UserStore
	now   func() time.Time
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users, now: time.Now}
}

// Signup registers a user with role "user" and status "new".
func (s *AuthService) Signup(ctx context.Context, email, password string) (models.User, error) {
	email = NormalizeEmail(email)

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return models.User{}, ErrEmailTaken
	}
	if !errors.Is(err, db.ErrNotFound) {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}

	user, err := NewUser(email, password, models.RoleUser, models.StatusNew, s.now())
	if err != nil {
		return models.User{}, err
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	metrics.RecordSignup()
	return user, nil
}

// Login checks credentials. Unknown emails and wrong passwords both return
// ErrInvalidCredentials after a bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			VerifyPassword(password, unknownUserHash())
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

func unknownUserHash() string {
	timingHashOnce.Do(func() {
		timingHash, _ = HashPassword("onboardgate-unknown-user")
	})
	return timingHash
}
