package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// CreateUserInput carries the fields of a new account.
type CreateUserInput struct {
	Email    string
	Username string
	Password string
	Role     string
}

// UpdateProfileInput is a partial update. Nil or empty fields are left alone.
type UpdateProfileInput struct {
	Username *string
	Role     *string
}

// UserService exposes the administrative operations. The actor is always
// passed explicitly; nothing is read from ambient state.
type UserService interface {
	ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error)
	CreateUser(ctx context.Context, actor domain.Actor, input CreateUserInput) (*domain.User, error)
	ChangePassword(ctx context.Context, actor domain.Actor, targetID, newPassword string) error
	ChangeRole(ctx context.Context, actor domain.Actor, targetID, newRole string) error
	UpdateProfile(ctx context.Context, actor domain.Actor, targetID string, input UpdateProfileInput) error
}
