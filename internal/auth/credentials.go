// Package auth provides password hashing, signed bearer tokens and the
// request gate that attaches verified tenant identity to a request context.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a password with bcrypt. A cost below bcrypt.MinCost
// falls back to bcrypt.DefaultCost; the salt is generated per call.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. A malformed hash
// yields false, never an error.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
