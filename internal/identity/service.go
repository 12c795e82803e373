// Package identity is the account side of the façade: registration, login,
// magic-link requests and profile lookups.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"campusattend/internal/auth"
	"campusattend/internal/queue"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoMatch            = errors.New("no matching user")
	ErrProfileNotFound    = errors.New("profile not found")
)

// User is the authenticated view of an account.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// MagicLinkJob is the queue payload handed to the worker for delivery.
type MagicLinkJob struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// MsgMagicLink tags magic-link jobs on the queue.
const MsgMagicLink = "magiclink"

// Store is the persistence surface the service needs.
type Store interface {
	CreateAccount(ctx context.Context, email, passwordHash, fullName, role, rollNumber, employeeID, department string) (string, error)
	CredentialsByEmail(ctx context.Context, email string) (id, hash string, err error)
	ProfileByID(ctx context.Context, id string) (User, error)
	MatchUser(ctx context.Context, email, userID, role string) (User, error)
}

// Config carries the token-issuing settings.
type Config struct {
	Issuer     string
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Service implements account flows.
type Service struct {
	store Store
	jobs  queue.Queue
	cfg   Config
}

// NewService creates an identity service.
func NewService(store Store, jobs queue.Queue, cfg Config) *Service {
	return &Service{store: store, jobs: jobs, cfg: cfg}
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Email      string
	Password   string
	FullName   string
	Role       string
	RollNumber string
	EmployeeID string
	Department string
}

// Register creates an account with a bcrypt-hashed password and its profile.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if in.Role != auth.RoleStudent && in.Role != auth.RoleTeacher {
		return fmt.Errorf("unknown role %q", in.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.store.CreateAccount(ctx, in.Email, string(hash), in.FullName, in.Role, in.RollNumber, in.EmployeeID, in.Department)
	return err
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (auth.TokenPair, error) {
	id, hash, err := s.store.CredentialsByEmail(ctx, email)
	if err != nil {
		return auth.TokenPair{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	user, err := s.store.ProfileByID(ctx, id)
	if err != nil {
		return auth.TokenPair{}, err
	}
	return auth.Issue(user.ID, user.Email, user.Role, s.cfg.Issuer, s.cfg.SigningKey, s.cfg.AccessTTL, s.cfg.RefreshTTL)
}

// VerifyUser checks that email, campus id and role all point at one account.
func (s *Service) VerifyUser(ctx context.Context, email, userID, role string) (User, error) {
	return s.store.MatchUser(ctx, email, userID, role)
}

// RequestMagicLink verifies the account and enqueues a sign-in mail job for
// the worker. Delivery happens out of band.
func (s *Service) RequestMagicLink(ctx context.Context, email, userID, role string) error {
	user, err := s.store.MatchUser(ctx, email, userID, role)
	if err != nil {
		return err
	}
	body, err := json.Marshal(MagicLinkJob{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return err
	}
	return s.jobs.Publish(ctx, queue.Message{Type: MsgMagicLink, Body: body})
}

// Profile returns the caller's display profile.
func (s *Service) Profile(ctx context.Context, id string) (User, error) {
	return s.store.ProfileByID(ctx, id)
}
