package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"messenger-lab/domain"
	"messenger-lab/errors"
	"messenger-lab/moderation"
	"messenger-lab/projection"
	"messenger-lab/repositories"
	"messenger-lab/search"
)

// Counterpart is one entry of the user listing.
type Counterpart struct {
	Username string
	Demo     bool
}

// ChatService orchestrates the stores around one session: login and
// registration against the credential store, send/load against the
// conversation store. Everything runs synchronously; there is exactly one
// active session per process.
type ChatService struct {
	session   *domain.Session
	auth      IAuthService
	users     repositories.IUserRepository
	messages  repositories.IMessageRepository
	index     search.ISearchIndex
	moderator moderation.Moderator
	log       *slog.Logger
}

func NewChatService(auth IAuthService, users repositories.IUserRepository,
	messages repositories.IMessageRepository, index search.ISearchIndex,
	moderator moderation.Moderator, log *slog.Logger) *ChatService {
	return &ChatService{
		session:   domain.NewSession(),
		auth:      auth,
		users:     users,
		messages:  messages,
		index:     index,
		moderator: moderator,
		log:       log,
	}
}

func (s *ChatService) Session() *domain.Session { return s.session }

// Login authenticates and moves the session machine to LoggedIn.
func (s *ChatService) Login(username, password string) error {
	user, token, err := s.auth.Authenticate(username, password)
	if err != nil {
		return err
	}
	s.session.Login(user.Username, string(token))
	return nil
}

// Register creates an account. It does not log the user in; a successful
// registration is followed by an explicit login.
func (s *ChatService) Register(username, password string) error {
	_, err := s.auth.Register(username, password)
	return err
}

// Logout clears both the in-memory session and the persisted entry.
func (s *ChatService) Logout() error {
	s.session.Logout()
	return s.auth.ClearSession()
}

// Restore replays persisted credentials through authentication. It reports
// whether a session was restored; a stale entry (for example a since-taken
// password) is cleared rather than surfaced as a login failure.
func (s *ChatService) Restore() (bool, error) {
	credentials, ok, err := s.auth.RestoreCredentials()
	if err != nil || !ok {
		return false, err
	}
	if err := s.Login(credentials.Username, credentials.Password); err != nil {
		s.log.Warn("persisted session no longer valid, clearing", "username", credentials.Username)
		return false, s.auth.ClearSession()
	}
	return true, nil
}

func (s *ChatService) OpenChat(counterpart string) error {
	return s.session.OpenChat(counterpart)
}

func (s *ChatService) CloseChat() {
	s.session.CloseChat()
}

// SendMessage appends one message to the active conversation. The text is
// trimmed, run through the censor, stamped and stored; indexing failures
// are logged but never lose the message, the index being derivable state.
func (s *ChatService) SendMessage(ctx context.Context, text string) (domain.Message, error) {
	counterpart, err := s.session.ActiveCounterpart()
	if err != nil {
		return domain.Message{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Message{}, errors.ErrEmptyText
	}

	censored, matched := s.moderator.Censor(text)
	if len(matched) > 0 {
		s.log.Info("message censored", "username", s.session.Username, "words", len(matched))
	}

	message := domain.Message{
		ID:     uuid.New(),
		Sender: s.session.Username,
		Text:   censored,
		At:     time.Now().UTC(),
	}

	key := domain.ConversationKey(s.session.Username, counterpart)
	if err := s.messages.Append(key, message); err != nil {
		return domain.Message{}, fmt.Errorf("storing message: %w", err)
	}

	if s.index != nil {
		if err := s.index.Index(ctx, key, message); err != nil {
			s.log.Error("indexing message", "error", err)
		}
	}
	return message, nil
}

// LoadMessages returns the stored sequence with the given counterpart,
// oldest first. Non-mutating; an unknown counterpart yields an empty slice.
func (s *ChatService) LoadMessages(counterpart string) ([]domain.Message, error) {
	if !s.session.IsLoggedIn() {
		return nil, errors.ErrNotLoggedIn
	}
	return s.messages.List(domain.ConversationKey(s.session.Username, counterpart))
}

// ListCounterparts returns chat candidates: demo accounts first in their
// fixed order, then registered users in store order. Both groups are
// filtered by a case-insensitive substring match on query; the caller's
// own name and demo duplicates are excluded.
func (s *ChatService) ListCounterparts(query string) ([]Counterpart, error) {
	if !s.session.IsLoggedIn() {
		return nil, errors.ErrNotLoggedIn
	}

	self := s.session.Username
	needle := strings.ToLower(strings.TrimSpace(query))
	matches := func(name string) bool {
		return name != self && (needle == "" || strings.Contains(strings.ToLower(name), needle))
	}

	demoSet := make(map[string]struct{}, len(domain.DemoUsernames))
	for _, name := range domain.DemoUsernames {
		demoSet[name] = struct{}{}
	}

	counterparts := lo.FilterMap(domain.DemoUsernames, func(name string, _ int) (Counterpart, bool) {
		return Counterpart{Username: name, Demo: true}, matches(name)
	})

	registered, err := s.users.ListUsernames()
	if err != nil {
		return nil, err
	}
	counterparts = append(counterparts, lo.FilterMap(registered, func(name string, _ int) (Counterpart, bool) {
		_, isDemo := demoSet[name]
		return Counterpart{Username: name}, !isDemo && matches(name)
	})...)

	return counterparts, nil
}

// SearchMessages runs a full-text query over the active conversation.
func (s *ChatService) SearchMessages(ctx context.Context, terms string, limit int) ([]domain.Message, error) {
	counterpart, err := s.session.ActiveCounterpart()
	if err != nil {
		return nil, err
	}
	if s.index == nil {
		return nil, nil
	}
	key := domain.ConversationKey(s.session.Username, counterpart)
	return s.index.Search(ctx, key, terms, limit)
}

// Stats digests the active conversation: totals per sender and detected
// languages.
func (s *ChatService) Stats() (*projection.Digest, error) {
	counterpart, err := s.session.ActiveCounterpart()
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.List(domain.ConversationKey(s.session.Username, counterpart))
	if err != nil {
		return nil, err
	}
	return projection.DigestOf(messages), nil
}
