package ports

import (
	"context"

	"github.com/safad/worklog/internal/core/domain"
)

// RegisterInput carries the fields of the sign-up form.
type RegisterInput struct {
	Username   string
	Password   string
	Name       string
	Department string
}

// DirectoryService owns the user accounts and the current session slot.
type DirectoryService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
	Logout(ctx context.Context) error
	Current() (*domain.User, bool)
	UpdateUser(ctx context.Context, user domain.User) (*domain.User, error)
	SetPassword(ctx context.Context, id, password string) error
	DeleteUser(ctx context.Context, id string) error
	UserByID(id string) (*domain.User, error)
	AllUsers() []domain.User
}

// UserLister is the read-only view of the directory the ledger needs for
// attendance queries.
type UserLister interface {
	AllUsers() []domain.User
}
