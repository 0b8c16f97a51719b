package directory

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"bookfinder/internal/app/user"
)

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// passwordMatches checks password against r. upgrade is true when r still holds
// a plaintext password that matched and must be re-hashed.
func passwordMatches(r *user.Record, password string) (ok, upgrade bool) {
	if r.PasswordHash != "" {
		err := bcrypt.CompareHashAndPassword([]byte(r.PasswordHash), []byte(password))
		return err == nil, false
	}

	if r.LegacyPassword != "" &&
		subtle.ConstantTimeCompare([]byte(r.LegacyPassword), []byte(password)) == 1 {
		return true, true
	}

	return false, false
}

// setPassword stores a fresh hash and drops any plaintext leftover.
func setPassword(r *user.Record, password string, cost int) error {
	hash, err := hashPassword(password, cost)
	if err != nil {
		return err
	}
	r.PasswordHash = hash
	r.LegacyPassword = ""
	return nil
}

// bcrypt only reads the first 72 bytes of its input.
const maxPasswordBytes = 72

var (
	errEmptyPassword   = errors.New("password must not be empty")
	errPasswordTooLong = fmt.Errorf("password must be at most %d bytes", maxPasswordBytes)
)

// validatePassword rejects passwords that cannot be hashed faithfully.
func validatePassword(password string) error {
	switch {
	case password == "":
		return errEmptyPassword
	case len(password) > maxPasswordBytes:
		return errPasswordTooLong
	}
	return nil
}
