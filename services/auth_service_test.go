package services_test

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"messenger-lab/auth"
	"messenger-lab/domain"
	"messenger-lab/errors"
	"messenger-lab/mocks"
	"messenger-lab/repositories"
	"messenger-lab/services"
)

var errKeyNotFound = fmt.Errorf("Key not found")

func newAuthService(t *testing.T) (*mocks.MockIUserRepository, *mocks.MockISessionRepository, services.IAuthService) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	sessions := mocks.NewMockISessionRepository(ctrl)
	return users, sessions, services.NewAuthService(users, sessions, 24*time.Hour, slog.Default())
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Run("should authenticate demo account with empty persisted store", func(t *testing.T) {
		req := require.New(t)
		users, sessions, svc := newAuthService(t)

		// Demo accounts never touch the user store.
		users.EXPECT().GetUser(gomock.Any()).Times(0)
		sessions.EXPECT().Save(repositories.Credentials{Username: "User_1", Password: "123"}).Return(nil).Times(1)

		user, token, err := svc.Authenticate("User_1", "123")

		req.NoError(err)
		req.Equal("User_1", user.Username)
		req.NotEmpty(token)

		claims, err := auth.ValidateToken(string(token))
		req.NoError(err)
		req.Equal("User_1", claims.Username)
	})

	t.Run("should fail with wrong demo password", func(t *testing.T) {
		req := require.New(t)
		users, sessions, svc := newAuthService(t)

		users.EXPECT().GetUser(gomock.Any()).Times(0)
		sessions.EXPECT().Save(gomock.Any()).Times(0)

		_, _, err := svc.Authenticate("User_1", "wrong")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should authenticate persisted user", func(t *testing.T) {
		req := require.New(t)
		users, sessions, svc := newAuthService(t)

		stored := domain.User{Username: "Alice", Password: "pw1", LastSeen: time.Now().UTC()}
		users.EXPECT().GetUser("Alice").Return(stored, nil).Times(1)
		sessions.EXPECT().Save(gomock.Any()).Return(nil).Times(1)

		user, token, err := svc.Authenticate("Alice", "pw1")

		req.NoError(err)
		req.Equal("Alice", user.Username)
		req.NotEmpty(token)
	})

	t.Run("should fail with invalid credentials for unknown user", func(t *testing.T) {
		req := require.New(t)
		users, sessions, svc := newAuthService(t)

		users.EXPECT().GetUser("Ghost").Return(domain.User{}, errKeyNotFound).Times(1)
		sessions.EXPECT().Save(gomock.Any()).Times(0)

		_, _, err := svc.Authenticate("Ghost", "pw")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should fail with missing field on empty input", func(t *testing.T) {
		req := require.New(t)
		users, sessions, svc := newAuthService(t)

		users.EXPECT().GetUser(gomock.Any()).Times(0)
		sessions.EXPECT().Save(gomock.Any()).Times(0)

		_, _, err := svc.Authenticate("", "pw")
		req.ErrorIs(err, errors.ErrMissingField)

		_, _, err = svc.Authenticate("Alice", "")
		req.ErrorIs(err, errors.ErrMissingField)
	})
}

func TestAuthService_Register(t *testing.T) {
	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		users, _, svc := newAuthService(t)

		users.EXPECT().GetUser("Alice").Return(domain.User{}, errKeyNotFound).Times(1)
		users.EXPECT().CreateUser(gomock.Any()).Return(nil).Times(1)

		user, err := svc.Register("Alice", "pw1")

		req.NoError(err)
		req.Equal("Alice", user.Username)
		req.Equal("pw1", user.Password)
		req.False(user.LastSeen.IsZero())
	})

	t.Run("should fail when username collides with demo account", func(t *testing.T) {
		req := require.New(t)
		users, _, svc := newAuthService(t)

		users.EXPECT().CreateUser(gomock.Any()).Times(0)

		_, err := svc.Register("User_1", "whatever")

		req.ErrorIs(err, errors.ErrUsernameTaken)
	})

	t.Run("should fail when username collides with persisted user", func(t *testing.T) {
		req := require.New(t)
		users, _, svc := newAuthService(t)

		users.EXPECT().GetUser("Alice").
			Return(domain.User{Username: "Alice", Password: "other"}, nil).Times(1)
		users.EXPECT().CreateUser(gomock.Any()).Times(0)

		_, err := svc.Register("Alice", "pw1")

		req.ErrorIs(err, errors.ErrUsernameTaken)
	})

	t.Run("uniqueness is case-sensitive", func(t *testing.T) {
		req := require.New(t)
		users, _, svc := newAuthService(t)

		users.EXPECT().GetUser("alice").Return(domain.User{}, errKeyNotFound).Times(1)
		users.EXPECT().CreateUser(gomock.Any()).Return(nil).Times(1)

		_, err := svc.Register("alice", "pw2")

		req.NoError(err)
	})

	t.Run("should fail with invalid format", func(t *testing.T) {
		req := require.New(t)
		users, _, svc := newAuthService(t)

		users.EXPECT().GetUser(gomock.Any()).Times(0)
		users.EXPECT().CreateUser(gomock.Any()).Times(0)

		_, err := svc.Register("bad name", "x")

		req.ErrorIs(err, errors.ErrInvalidFormat)
	})

	t.Run("should fail with missing field on empty input", func(t *testing.T) {
		req := require.New(t)
		users, _, svc := newAuthService(t)

		users.EXPECT().CreateUser(gomock.Any()).Times(0)

		_, err := svc.Register("", "x")
		req.ErrorIs(err, errors.ErrMissingField)

		_, err = svc.Register("Alice", "")
		req.ErrorIs(err, errors.ErrMissingField)
	})
}

func TestAuthService_SeedDemoAccounts(t *testing.T) {
	t.Run("should seed all demo accounts on first run", func(t *testing.T) {
		req := require.New(t)
		users, _, svc := newAuthService(t)

		users.EXPECT().CreateUser(gomock.Any()).Return(nil).Times(len(domain.DemoUsernames))

		req.NoError(svc.SeedDemoAccounts())
	})

	t.Run("already seeded accounts are left untouched", func(t *testing.T) {
		req := require.New(t)
		users, _, svc := newAuthService(t)

		users.EXPECT().CreateUser(gomock.Any()).Return(errors.ErrUsernameTaken).Times(len(domain.DemoUsernames))

		req.NoError(svc.SeedDemoAccounts())
	})
}
