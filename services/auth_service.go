//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"messenger-lab/auth"
	"messenger-lab/domain"
	"messenger-lab/errors"
	"messenger-lab/repositories"
)

type IAuthService interface {
	Authenticate(username, password string) (domain.User, Token, error)
	Register(username, password string) (domain.User, error)
	SeedDemoAccounts() error
	RestoreCredentials() (repositories.Credentials, bool, error)
	ClearSession() error
}

type Token string

type AuthService struct {
	users         repositories.IUserRepository
	sessions      repositories.ISessionRepository
	demo          map[string]domain.User
	tokenLifetime time.Duration
	log           *slog.Logger
}

func NewAuthService(users repositories.IUserRepository, sessions repositories.ISessionRepository,
	tokenLifetime time.Duration, log *slog.Logger) IAuthService {
	return &AuthService{
		users:         users,
		sessions:      sessions,
		demo:          domain.DemoAccounts(),
		tokenLifetime: tokenLifetime,
		log:           log,
	}
}

// resolveAccount is the one canonical lookup used by both authentication
// and registration uniqueness. Demo accounts shadow persisted records of
// the same name.
func (s *AuthService) resolveAccount(username string) (domain.User, bool) {
	if user, ok := s.demo[username]; ok {
		return user, true
	}
	user, err := s.users.GetUser(username)
	if err != nil {
		return domain.User{}, false
	}
	return user, true
}

// Authenticate checks the supplied credentials against demo accounts first,
// then persisted users. On success it issues a process-local session token
// and persists the session entry so the next start restores directly into
// the logged-in state.
func (s *AuthService) Authenticate(username, password string) (domain.User, Token, error) {
	if err := auth.ValidateLogin(auth.RegisterRequest{Username: username, Password: password}); err != nil {
		return domain.User{}, "", err
	}

	user, ok := s.resolveAccount(username)
	if !ok || !auth.VerifyPassword(password, user.Password) {
		return domain.User{}, "", errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.Username, s.tokenLifetime)
	if err != nil {
		return domain.User{}, "", errors.ErrTokenGeneration
	}

	if err := s.sessions.Save(repositories.Credentials{Username: username, Password: password}); err != nil {
		return domain.User{}, "", fmt.Errorf("persisting session: %w", err)
	}

	s.log.Info("authenticated", "username", user.Username)
	return user, Token(token), nil
}

// Register creates a new persisted account. It does not log the user in.
func (s *AuthService) Register(username, password string) (domain.User, error) {
	if err := auth.ValidateRegister(auth.RegisterRequest{Username: username, Password: password}); err != nil {
		return domain.User{}, err
	}

	// Uniqueness is case-sensitive and spans demo and persisted accounts.
	// The persisted half is re-checked inside the repository transaction.
	if _, taken := s.resolveAccount(username); taken {
		return domain.User{}, errors.ErrUsernameTaken
	}

	user := domain.User{Username: username, Password: password, LastSeen: time.Now().UTC()}
	if err := s.users.CreateUser(user); err != nil {
		return domain.User{}, err
	}

	s.log.Info("registered", "username", username)
	return user, nil
}

// SeedDemoAccounts writes demo accounts missing from the persisted store
// so they show up in listings on first run. Already-present names are left
// untouched.
func (s *AuthService) SeedDemoAccounts() error {
	for _, name := range domain.DemoUsernames {
		err := s.users.CreateUser(s.demo[name])
		if err != nil && !isTaken(err) {
			return fmt.Errorf("seeding %s: %w", name, err)
		}
	}
	return nil
}

// RestoreCredentials loads the persisted session entry, if any.
func (s *AuthService) RestoreCredentials() (repositories.Credentials, bool, error) {
	return s.sessions.Load()
}

// ClearSession removes the persisted session entry.
func (s *AuthService) ClearSession() error {
	return s.sessions.Clear()
}

func isTaken(err error) bool {
	return stderrors.Is(err, errors.ErrUsernameTaken)
}
