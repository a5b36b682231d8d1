package auth

import "crypto/subtle"

// VerifyPassword is the single place where a supplied password is compared
// against a stored one. The store keeps plaintext today; swapping in a hash
// later touches only this function.
func VerifyPassword(supplied, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(stored)) == 1
}
