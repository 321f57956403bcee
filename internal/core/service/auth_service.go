package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
	"github.com/99minutos/user-admin/internal/core/security"
	"github.com/99minutos/user-admin/internal/pkg/metrics"
)

// staticDecoy is a well-formed bcrypt digest (cost 10) of an unused string,
// used only if the decoy cannot be hashed at start-up.
const staticDecoy = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService implements login and bearer-token authentication.
type AuthService struct {
	repo   ports.UserRepository
	hasher *security.PasswordHasher
	tokens *security.TokenCodec
	log    zerolog.Logger

	// decoy is compared against when the email is unknown so both failure
	// paths pay the same bcrypt cost.
	decoy string
}

func NewAuthService(repo ports.UserRepository, hasher *security.PasswordHasher, tokens *security.TokenCodec, log zerolog.Logger) *AuthService {
	s := &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log.With().Str("component", "auth_service").Logger(),
	}

	decoy, err := hasher.Hash("decoy-password-never-matches")
	if err != nil {
		s.log.Error().Err(err).Msg("failed to compute decoy hash, falling back to static digest")
		decoy = staticDecoy
	}
	s.decoy = decoy
	return s
}

// Login verifies the credentials and returns a signed token plus the redacted
// identity. Unknown email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrMissingLogin
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.decoy)
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		if errors.Is(err, security.ErrSigningKeyMissing) {
			s.log.Error().Msg("JWT_SECRET is not configured, refusing to issue tokens")
			metrics.LoginAttemptsTotal.WithLabelValues("misconfigured").Inc()
			return nil, domain.ErrServerMisconfigured
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login succeeded")

	return &ports.LoginResult{Token: token, User: user.Public()}, nil
}

// Authenticate decodes token into the calling actor. The claims are trusted
// for the token's lifetime; the store is not consulted.
func (s *AuthService) Authenticate(_ context.Context, token string) (domain.Actor, error) {
	if token == "" {
		return domain.Actor{}, domain.ErrUnauthenticated
	}

	claims, err := s.tokens.Decode(token)
	if err != nil {
		reason := rejectionReason(err)
		metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
		s.log.Debug().Err(err).Str("reason", reason).Msg("token rejected")
		return domain.Actor{}, domain.ErrUnauthenticated
	}
	return claims.Actor(), nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, security.ErrTokenExpired):
		return "expired"
	case errors.Is(err, security.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, security.ErrSigningKeyMissing):
		return "misconfigured"
	default:
		return "malformed"
	}
}
