package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// UserRepository is the persistence contract the services rely on. Every
// method is atomic at the single-record level.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound when no record matches.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Insert stores a new record and returns its id. A duplicate email yields
	// domain.ErrUserExists.
	Insert(ctx context.Context, user *domain.User) (string, error)
	// UpdateFields applies update in a single statement conditioned on id and
	// the update's role guard. It returns the number of matched records; 0
	// means nothing was written.
	UpdateFields(ctx context.Context, id string, update domain.UserUpdate) (int64, error)
	// List returns records in insertion order, skipping system accounts when
	// excludeSystem is set.
	List(ctx context.Context, excludeSystem bool) ([]*domain.User, error)
}
