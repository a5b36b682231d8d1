package services_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"messenger-lab/domain"
	"messenger-lab/errors"
	"messenger-lab/mocks"
	"messenger-lab/moderation"
	"messenger-lab/repositories"
	"messenger-lab/services"
)

type chatFixture struct {
	auth     *mocks.MockIAuthService
	users    *mocks.MockIUserRepository
	messages *mocks.MockIMessageRepository
	index    *mocks.MockISearchIndex
	svc      *services.ChatService
}

func newChatFixture(t *testing.T, words []string) chatFixture {
	ctrl := gomock.NewController(t)
	f := chatFixture{
		auth:     mocks.NewMockIAuthService(ctrl),
		users:    mocks.NewMockIUserRepository(ctrl),
		messages: mocks.NewMockIMessageRepository(ctrl),
		index:    mocks.NewMockISearchIndex(ctrl),
	}
	moderator, err := moderation.NewModerator(words, '*')
	require.NoError(t, err)
	f.svc = services.NewChatService(f.auth, f.users, f.messages, f.index, moderator, slog.Default())
	return f
}

func (f chatFixture) loggedInAs(t *testing.T, username string) {
	f.auth.EXPECT().Authenticate(username, "pw").
		Return(domain.User{Username: username, Password: "pw"}, services.Token("token"), nil).Times(1)
	require.NoError(t, f.svc.Login(username, "pw"))
}

func TestChatService_Login_And_Logout(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)

	f.loggedInAs(t, "Alice")
	req.Equal(domain.LoggedIn, f.svc.Session().Phase())
	req.Equal("Alice", f.svc.Session().Username)
	req.NotEmpty(f.svc.Session().Token)

	f.auth.EXPECT().ClearSession().Return(nil).Times(1)
	req.NoError(f.svc.Logout())
	req.Equal(domain.LoggedOut, f.svc.Session().Phase())
}

func TestChatService_Login_Failure_Keeps_LoggedOut(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)

	f.auth.EXPECT().Authenticate("Alice", "bad").
		Return(domain.User{}, services.Token(""), errors.ErrInvalidCredentials).Times(1)

	req.ErrorIs(f.svc.Login("Alice", "bad"), errors.ErrInvalidCredentials)
	req.Equal(domain.LoggedOut, f.svc.Session().Phase())
}

func TestChatService_SendMessage(t *testing.T) {
	t.Run("should append to the canonical conversation", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t, nil)
		f.loggedInAs(t, "Alice")
		req.NoError(f.svc.OpenChat("User_1"))

		key := domain.ConversationKey("Alice", "User_1")
		f.messages.EXPECT().Append(key, gomock.Any()).Return(nil).Times(1)
		f.index.EXPECT().Index(gomock.Any(), key, gomock.Any()).Return(nil).Times(1)

		message, err := f.svc.SendMessage(context.Background(), "  hi  ")

		req.NoError(err)
		req.Equal("Alice", message.Sender)
		req.Equal("hi", message.Text)
		req.NotEqual(uuid.Nil, message.ID)
		req.False(message.At.IsZero())
	})

	t.Run("should fail with empty text and not touch the store", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t, nil)
		f.loggedInAs(t, "Alice")
		req.NoError(f.svc.OpenChat("Bob"))

		f.messages.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.SendMessage(context.Background(), "   \t  ")
		req.ErrorIs(err, errors.ErrEmptyText)
	})

	t.Run("should fail without an active chat", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t, nil)
		f.loggedInAs(t, "Alice")

		f.messages.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.SendMessage(context.Background(), "hi")
		req.ErrorIs(err, errors.ErrNoActiveChat)
	})

	t.Run("should censor configured words before storing", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t, []string{"stupid"})
		f.loggedInAs(t, "Alice")
		req.NoError(f.svc.OpenChat("Bob"))

		var stored domain.Message
		key := domain.ConversationKey("Alice", "Bob")
		f.messages.EXPECT().Append(key, gomock.Any()).
			DoAndReturn(func(_ string, m domain.Message) error {
				stored = m
				return nil
			}).Times(1)
		f.index.EXPECT().Index(gomock.Any(), key, gomock.Any()).Return(nil).Times(1)

		message, err := f.svc.SendMessage(context.Background(), "you are stupid")

		req.NoError(err)
		req.Equal("you are ******", message.Text)
		req.Equal(message.Text, stored.Text)
	})
}

func TestChatService_OpenChat_With_Self_Is_Rejected(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)
	f.loggedInAs(t, "Alice")

	req.ErrorIs(f.svc.OpenChat("Alice"), errors.ErrSelfChat)
	req.Equal(domain.LoggedIn, f.svc.Session().Phase())
}

func TestChatService_LoadMessages(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)
	f.loggedInAs(t, "Alice")

	expected := []domain.Message{
		{ID: uuid.New(), Sender: "Alice", Text: "hi", At: time.Now().UTC()},
	}
	f.messages.EXPECT().List(domain.ConversationKey("Alice", "User_1")).Return(expected, nil).Times(1)

	messages, err := f.svc.LoadMessages("User_1")
	req.NoError(err)
	req.Equal(expected, messages)
}

func TestChatService_LoadMessages_Requires_Login(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)

	_, err := f.svc.LoadMessages("User_1")
	req.ErrorIs(err, errors.ErrNotLoggedIn)
}

func TestChatService_ListCounterparts(t *testing.T) {
	t.Run("demo accounts come first, self and demo duplicates excluded", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t, nil)
		f.loggedInAs(t, "User_1")

		// Store iteration order is lexicographic; seeded demo names are in it too.
		f.users.EXPECT().ListUsernames().
			Return([]string{"Alice", "Bob", "User_1", "User_2", "User_3", "User_4"}, nil).Times(1)

		counterparts, err := f.svc.ListCounterparts("")
		req.NoError(err)

		names := make([]string, 0, len(counterparts))
		for _, c := range counterparts {
			names = append(names, c.Username)
		}
		req.Equal([]string{"User_2", "User_3", "User_4", "Alice", "Bob"}, names)
		req.True(counterparts[0].Demo)
		req.False(counterparts[3].Demo)
	})

	t.Run("query filters case-insensitively", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t, nil)
		f.loggedInAs(t, "User_1")

		f.users.EXPECT().ListUsernames().Return([]string{"Alice", "Bob", "alfred"}, nil).Times(1)

		counterparts, err := f.svc.ListCounterparts("AL")
		req.NoError(err)

		names := make([]string, 0, len(counterparts))
		for _, c := range counterparts {
			names = append(names, c.Username)
		}
		req.Equal([]string{"Alice", "alfred"}, names)
	})
}

func TestChatService_Restore(t *testing.T) {
	t.Run("should restore a persisted session directly to logged-in", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t, nil)

		f.auth.EXPECT().RestoreCredentials().
			Return(repositories.Credentials{Username: "Alice", Password: "pw"}, true, nil).Times(1)
		f.auth.EXPECT().Authenticate("Alice", "pw").
			Return(domain.User{Username: "Alice"}, services.Token("token"), nil).Times(1)

		restored, err := f.svc.Restore()
		req.NoError(err)
		req.True(restored)
		req.Equal(domain.LoggedIn, f.svc.Session().Phase())
		req.Empty(f.svc.Session().Counterpart)
	})

	t.Run("no persisted session stays logged out", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t, nil)

		f.auth.EXPECT().RestoreCredentials().Return(repositories.Credentials{}, false, nil).Times(1)

		restored, err := f.svc.Restore()
		req.NoError(err)
		req.False(restored)
		req.Equal(domain.LoggedOut, f.svc.Session().Phase())
	})

	t.Run("stale persisted session is cleared", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(t, nil)

		f.auth.EXPECT().RestoreCredentials().
			Return(repositories.Credentials{Username: "Alice", Password: "old"}, true, nil).Times(1)
		f.auth.EXPECT().Authenticate("Alice", "old").
			Return(domain.User{}, services.Token(""), errors.ErrInvalidCredentials).Times(1)
		f.auth.EXPECT().ClearSession().Return(nil).Times(1)

		restored, err := f.svc.Restore()
		req.NoError(err)
		req.False(restored)
	})
}

func TestChatService_SearchMessages_Scopes_To_Active_Chat(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)
	f.loggedInAs(t, "Alice")
	req.NoError(f.svc.OpenChat("Bob"))

	key := domain.ConversationKey("Alice", "Bob")
	expected := []domain.Message{{ID: uuid.New(), Sender: "Bob", Text: "the invoice", At: time.Now().UTC()}}
	f.index.EXPECT().Search(gomock.Any(), key, "invoice", 20).Return(expected, nil).Times(1)

	results, err := f.svc.SearchMessages(context.Background(), "invoice", 20)
	req.NoError(err)
	req.Equal(expected, results)
}

func TestChatService_Stats_Digests_Active_Conversation(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)
	f.loggedInAs(t, "Alice")
	req.NoError(f.svc.OpenChat("Bob"))

	at := time.Now().UTC()
	f.messages.EXPECT().List(domain.ConversationKey("Alice", "Bob")).Return([]domain.Message{
		{ID: uuid.New(), Sender: "Alice", Text: "hello there my friend", At: at},
		{ID: uuid.New(), Sender: "Alice", Text: "are you around today", At: at},
		{ID: uuid.New(), Sender: "Bob", Text: "yes I am here now", At: at},
	}, nil).Times(1)

	digest, err := f.svc.Stats()
	req.NoError(err)
	req.Equal(3, digest.Total)
	req.Equal(2, digest.BySender["Alice"])
	req.Equal(1, digest.BySender["Bob"])
}
