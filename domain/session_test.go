package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"messenger-lab/errors"
)

func Test_Session_Full_Lifecycle(t *testing.T) {
	req := require.New(t)
	s := NewSession()
	req.Equal(LoggedOut, s.Phase())

	s.Login("Alice", "token")
	req.Equal(LoggedIn, s.Phase())
	req.Empty(s.Counterpart)

	req.NoError(s.OpenChat("Bob"))
	req.Equal(ChatOpen, s.Phase())

	counterpart, err := s.ActiveCounterpart()
	req.NoError(err)
	req.Equal("Bob", counterpart)

	s.CloseChat()
	req.Equal(LoggedIn, s.Phase())
	_, err = s.ActiveCounterpart()
	req.ErrorIs(err, errors.ErrNoActiveChat)

	s.Logout()
	req.Equal(LoggedOut, s.Phase())
	req.Empty(s.Username)
}

func Test_Session_Rejects_Chat_With_Self(t *testing.T) {
	req := require.New(t)
	s := NewSession()
	s.Login("Alice", "token")

	req.ErrorIs(s.OpenChat("Alice"), errors.ErrSelfChat)
	req.Equal(LoggedIn, s.Phase())
}

func Test_Session_Rejects_Chat_When_Logged_Out(t *testing.T) {
	req := require.New(t)
	s := NewSession()

	req.ErrorIs(s.OpenChat("Bob"), errors.ErrNotLoggedIn)
}

func Test_Session_CloseChat_Without_Open_Is_Noop(t *testing.T) {
	req := require.New(t)
	s := NewSession()
	s.Login("Alice", "token")

	s.CloseChat()
	req.Equal(LoggedIn, s.Phase())
}
