// Package domain contains the core concepts of the messenger: users,
// messages, conversations and the session state machine. No storage,
// runtime, or UI logic lives here.
package domain

import "time"

// User is a registered account. Passwords are kept plaintext on purpose:
// the store never leaves the local machine and comparison is isolated in
// the auth package so a hash can be dropped in later.
type User struct {
	Username string
	Password string
	LastSeen time.Time
}

// DemoUsernames lists the fixed demo accounts in their stable display order.
var DemoUsernames = []string{"User_1", "User_2", "User_3", "User_4"}

const demoPassword = "123"

// DemoAccounts returns the fixed set of always-available accounts. They
// shadow persisted records of the same name at authentication time and are
// excluded from the registered-user listing.
func DemoAccounts() map[string]User {
	accounts := make(map[string]User, len(DemoUsernames))
	for _, name := range DemoUsernames {
		accounts[name] = User{Username: name, Password: demoPassword, LastSeen: time.Now().UTC()}
	}
	return accounts
}
