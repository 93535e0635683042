package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/models"
	"github.com/learnhub/backend/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

const (
	adminDisplayName = "Administrator"
	adminEmail       = "admin@example.com"
)

// Service registers users and opens and closes the local session.
type Service struct {
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	tokens   *JWTService
	admin    Admin
	log      *logger.Logger
	now      func() time.Time
}

func NewService(users *repository.UserRepository, sessions *repository.SessionRepository, tokens *JWTService, admin Admin, log *logger.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		admin:    admin,
		log:      log.With("service", "AuthService"),
		now:      time.Now,
	}
}

// EnsureAdmin seeds the administrator account when it is missing
func (s *Service) EnsureAdmin(ctx context.Context) error {
	hash, err := HashPassword(s.admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	created, err := s.users.EnsureUser(ctx, &models.User{
		Username: s.admin.Username,
		Password: hash,
		Name:     adminDisplayName,
		Email:    adminEmail,
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	if created {
		s.log.Info("seeded admin account", "username", s.admin.Username)
	}
	return nil
}

// Register creates a new user. It does not sign the user in.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Password: hash,
		Email:    req.Email,
		Name:     req.Username,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", "username", user.Username)
	return user, nil
}

// Login checks the credentials, writes the session and returns it with a
// signed token. Plaintext passwords left by imported accounts are accepted
// once and replaced by a hash.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.Get(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.verify(ctx, user, req.Password); err != nil {
		return nil, err
	}

	session := models.NewSession(user, s.now())
	var credential string
	if user.Username == s.admin.Username {
		credential = s.admin.Password
	}
	if err := s.sessions.Save(ctx, session, credential); err != nil {
		return nil, err
	}
	session.Credential = credential

	token, err := s.tokens.GenerateToken(session.Username, session.Name)
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", "username", user.Username)
	return &models.LoginResponse{
		Token:   token,
		Session: session,
		User:    user.Public(),
	}, nil
}

func (s *Service) verify(ctx context.Context, user *models.User, password string) error {
	if IsHashed(user.Password) {
		if CheckPassword(user.Password, password) != nil {
			return ErrInvalidCredentials
		}
		return nil
	}

	if user.Password != password {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(password)
	if err != nil {
		s.log.Warn("failed to upgrade plaintext password", "username", user.Username, "error", err)
		return nil
	}
	user.Password = hash
	if err := s.users.Update(ctx, user); err != nil {
		s.log.Warn("failed to upgrade plaintext password", "username", user.Username, "error", err)
	}
	return nil
}

// Logout clears the stored session
func (s *Service) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// Authenticate resolves a bearer token into the explicit session. The stored
// session must belong to the token's user.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if session.Username != claims.Username {
		return nil, repository.ErrNoSession
	}
	return session, nil
}
