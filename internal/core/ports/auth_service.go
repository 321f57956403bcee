package ports

import (
	"context"

	"github.com/99minutos/user-admin/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string
	User  domain.PublicIdentity
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (domain.Actor, error)
}
