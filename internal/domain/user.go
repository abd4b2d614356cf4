/**
 * @description
 * This file defines the user domain model and the role set used by the
 * authorization policy table.
 */
package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Role is a permission level attached to a user account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSupport Role = "support"
	RoleUser    Role = "user"
)

// ValidRole reports whether r is one of the recognized roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSupport, RoleUser:
		return true
	}
	return false
}

var (
	ErrInvalidUserName = errors.New("user name must be between 2 and 50 characters")
	ErrInvalidEmail    = errors.New("a valid email address is required")
	ErrInvalidPassword = errors.New("password must be at least 6 characters")
	ErrInvalidRole     = errors.New("user role is not recognized")
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// User represents an account holder. PasswordHash is never serialized.
type User struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Roles             []Role     `json:"roles"`
	IsActive          bool       `json:"is_active"`
	ActivationToken   string     `json:"-"`
	ActivationExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// HasRole reports whether the user holds at least one of the given roles.
func (u *User) HasRole(roles ...Role) bool {
	for _, want := range roles {
		for _, have := range u.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// NormalizeEmail lowercases and trims an email address for storage and
// lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateUserInput checks signup/create input against the account rules.
// The password is the plaintext candidate, checked before hashing.
func ValidateUserInput(name, email, password string) error {
	if l := len(strings.TrimSpace(name)); l < 2 || l > 50 {
		return ErrInvalidUserName
	}
	email = NormalizeEmail(email)
	if len(email) < 5 || len(email) > 255 || !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if len(password) < 6 {
		return ErrInvalidPassword
	}
	return nil
}

// ValidateRoles checks that every entry is a recognized role and the list is
// not empty.
func ValidateRoles(roles []Role) error {
	if len(roles) == 0 {
		return ErrInvalidRole
	}
	for _, r := range roles {
		if !ValidRole(r) {
			return ErrInvalidRole
		}
	}
	return nil
}
