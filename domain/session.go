package domain

import (
	stderrors "errors"

	"messenger-lab/errors"
)

// Phase is the state of the session machine:
// LoggedOut -> LoggedIn -> ChatOpen -> LoggedIn -> LoggedOut.
type Phase int

const (
	LoggedOut Phase = iota
	LoggedIn
	ChatOpen
)

func (p Phase) String() string {
	switch p {
	case LoggedIn:
		return "logged-in"
	case ChatOpen:
		return "chat-open"
	default:
		return "logged-out"
	}
}

// Session tracks the authenticated identity and, while a chat is open, the
// active counterpart. A chat can never be open without an authenticated
// user. Token is the process-local signed token issued at login; it is not
// persisted.
type Session struct {
	Username    string
	Token       string
	Counterpart string
	phase       Phase
}

func NewSession() *Session {
	return &Session{phase: LoggedOut}
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) IsLoggedIn() bool { return s.phase != LoggedOut }

// Login moves the machine to LoggedIn with no counterpart set.
func (s *Session) Login(username, token string) {
	s.Username = username
	s.Token = token
	s.Counterpart = ""
	s.phase = LoggedIn
}

// OpenChat activates a counterpart. Opening a chat with oneself is rejected
// rather than silently accepted.
func (s *Session) OpenChat(counterpart string) error {
	if s.phase == LoggedOut {
		return errors.ErrNotLoggedIn
	}
	if counterpart == s.Username {
		return errors.ErrSelfChat
	}
	s.Counterpart = counterpart
	s.phase = ChatOpen
	return nil
}

// CloseChat clears the counterpart and falls back to LoggedIn. Closing an
// already-closed chat is a no-op.
func (s *Session) CloseChat() {
	if s.phase != ChatOpen {
		return
	}
	s.Counterpart = ""
	s.phase = LoggedIn
}

// Logout clears everything and returns to LoggedOut.
func (s *Session) Logout() {
	*s = Session{phase: LoggedOut}
}

// ActiveCounterpart returns the open chat's counterpart, or ErrNoActiveChat
// when no chat is open.
func (s *Session) ActiveCounterpart() (string, error) {
	if s.phase != ChatOpen || s.Counterpart == "" {
		return "", errors.ErrNoActiveChat
	}
	return s.Counterpart, nil
}

// IsUserFacing reports whether err belongs to the validation taxonomy the
// UI renders verbatim, as opposed to an internal storage fault.
func IsUserFacing(err error) bool {
	for _, sentinel := range []error{
		errors.ErrMissingField, errors.ErrInvalidCredentials, errors.ErrInvalidFormat,
		errors.ErrUsernameTaken, errors.ErrEmptyText, errors.ErrNoActiveChat,
		errors.ErrSelfChat, errors.ErrNotLoggedIn,
	} {
		if stderrors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
