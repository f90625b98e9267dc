// internal/app/system/authutil/password.go
package authutil

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for account passwords.
const BcryptCost = 12

// MinPasswordLength is the shortest password accepted for new accounts.
const MinPasswordLength = 8

var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// HashPassword hashes password with bcrypt at BcryptCost.
func HashPassword(password string) (string, error) {
	return hashPasswordCost(password, BcryptCost)
}

// HashPasswordFast uses the minimum bcrypt cost. It is for seeding
// large sample datasets, never for real accounts.
func HashPasswordFast(password string) (string, error) {
	return hashPasswordCost(password, bcrypt.MinCost)
}

func hashPasswordCost(password string, cost int) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// LoginKind tells which sign-in form a login body uses.
type LoginKind int

const (
	LoginUnknown LoginKind = iota
	LoginPassword
	LoginPhone
)

// Kind picks the sign-in form: email plus password for staff accounts,
// phone alone for residents. An email wins when both are present.
func Kind(email, phone string) LoginKind {
	switch {
	case strings.TrimSpace(email) != "":
		return LoginPassword
	case strings.TrimSpace(phone) != "":
		return LoginPhone
	}
	return LoginUnknown
}
