package domain

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Role is the access level of an account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Seed account present on every directory. It can never be deleted or demoted.
const (
	SeedAdminID       = "1"
	SeedAdminUsername = "SAFAD"
	SeedAdminPassword = "SAFAD"
)

// DefaultDepartment is stamped on records of users without a department.
const DefaultDepartment = "general"

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrProtectedAccount   = errors.New("cannot delete or demote admin account")
	ErrNotAuthenticated   = errors.New("not logged in")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = wrapNotFound("user")
)

// User models an account in the directory. Password holds a bcrypt hash for
// accounts created by this module; documents written by older clients may
// still carry plaintext.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Password   string `json:"password,omitempty"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
	AvatarURL  string `json:"avatarUrl"`
}

// IsAdmin reports whether the user has the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsSeedAdmin reports whether u is the protected seed account.
func (u User) IsSeedAdmin() bool { return u.ID == SeedAdminID }

// RecordDepartment is the department copied onto records the user creates.
func (u User) RecordDepartment() string {
	if u.Department == "" {
		return DefaultDepartment
	}
	return u.Department
}

// Public returns a copy without the password field.
func (u User) Public() User {
	u.Password = ""
	return u
}

// SeedAdmin returns the account the directory starts with on first run.
// The password is returned in plaintext; the directory hashes it on seed.
func SeedAdmin() User {
	return User{
		ID:        SeedAdminID,
		Username:  SeedAdminUsername,
		Password:  SeedAdminPassword,
		Name:      SeedAdminUsername,
		Role:      RoleAdmin,
		AvatarURL: SeedAdminUsername,
	}
}

// SameUsername compares usernames the way registration and login do: both
// sides lower-cased, no trimming.
func SameUsername(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}

// NormalizeDepartment lower-cases and trims a department name.
func NormalizeDepartment(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}

// Initials builds the avatar label from a display name: the first letter of
// each whitespace-separated token, upper-cased, at most two characters.
func Initials(name string) string {
	var b strings.Builder
	n := 0
	for _, part := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		n++
		if n == 2 {
			break
		}
	}
	return b.String()
}

func wrapNotFound(what string) error {
	return &notFoundError{what: what}
}

type notFoundError struct{ what string }

func (e *notFoundError) Error() string { return e.what + " not found" }

func (e *notFoundError) Unwrap() error { return ErrNotFound }
