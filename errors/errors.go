package errors

import "fmt"

// Validation failures surfaced to the user. All of them are local and
// non-fatal: the caller shows the outcome and keeps going, nothing is
// retried or logged away silently.
var (
	ErrMissingField       = fmt.Errorf("username and password are required")
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
	ErrInvalidFormat      = fmt.Errorf("username may only contain letters, digits and underscore")
	ErrUsernameTaken      = fmt.Errorf("username is already taken")
	ErrEmptyText          = fmt.Errorf("message text is empty")
	ErrNoActiveChat       = fmt.Errorf("no active chat")
	ErrSelfChat           = fmt.Errorf("cannot open a chat with yourself")
	ErrNotLoggedIn        = fmt.Errorf("not logged in")
	ErrTokenGeneration    = fmt.Errorf("session token generation failed")
)
