package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedHash means the stored hash itself is corrupt. Callers must treat
// this as an internal integrity failure, never as a failed password check.
var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword hashes a plain text password with bcrypt. The salt is random,
// so hashing the same password twice never yields the same bytes.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPassword compares a bcrypt hash with a plaintext password.
// A mismatch is (false, nil); only a structurally bad hash returns an error.
func VerifyPassword(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))

	if err == nil {
		return true, nil
	}

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
}
