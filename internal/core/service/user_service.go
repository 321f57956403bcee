package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/policy"
	"github.com/99minutos/user-admin/internal/core/ports"
	"github.com/99minutos/user-admin/internal/core/security"
	"github.com/99minutos/user-admin/internal/pkg/metrics"
)

const defaultSuperAdminUsername = "SuperAdmin"

// UserService implements the administrative operations on user records.
// Every mutation writes its fields and the audit stamp in one store call.
type UserService struct {
	repo   ports.UserRepository
	hasher *security.PasswordHasher
	audit  ports.AuditPublisher
	log    zerolog.Logger
	now    func() time.Time
}

// NewUserService returns a UserService. audit may be nil, in which case no
// audit events are published.
func NewUserService(repo ports.UserRepository, hasher *security.PasswordHasher, audit ports.AuditPublisher, log zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		audit:  audit,
		log:    log.With().Str("component", "user_service").Logger(),
		now:    time.Now,
	}
}

// ListUsers returns every non-system record. Password hashes are never
// serialized by the domain type.
func (s *UserService) ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	if !policy.CanView(actor.Role) {
		return nil, s.deny("list", actor, "")
	}

	users, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CreateUser validates the input, checks the role is assignable by actor and
// stores a new record stamped with actor's email.
func (s *UserService) CreateUser(ctx context.Context, actor domain.Actor, in ports.CreateUserInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || username == "" || in.Password == "" || strings.TrimSpace(in.Role) == "" {
		return nil, domain.ErrMissingFields
	}
	if err := domain.CheckPassword(in.Password); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if !policy.CanAssign(actor.Role, role) {
		return nil, s.deny("create", actor, "")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
	}
	user.Stamp(domain.NewAuditStamp(actor, now))

	id, err := s.repo.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.ID = id

	metrics.UserMutationsTotal.WithLabelValues("create").Inc()
	s.log.Info().Str("user_id", id).Str("role", string(role)).Str("by", actor.Email).Msg("user created")
	s.publish(domain.AuditUserCreated, actor, id, []string{"email", "username", "role", "password"}, now)

	return user, nil
}

// ChangePassword replaces the password of targetID. Passwords outside the
// accepted length are rejected before any hashing or storage call.
func (s *UserService) ChangePassword(ctx context.Context, actor domain.Actor, targetID, newPassword string) error {
	if targetID == "" {
		return domain.ErrMissingUserID
	}
	if err := domain.CheckPassword(newPassword); err != nil {
		return err
	}
	if !policy.CanChangePassword(actor.Role, actor.ID, targetID) {
		return s.deny("change_password", actor, targetID)
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	update := domain.UserUpdate{
		PasswordHash: &hash,
		Stamp:        domain.NewAuditStamp(actor, s.now()),
	}
	matched, err := s.repo.UpdateFields(ctx, targetID, update)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if matched == 0 {
		return domain.ErrUserNotFound
	}

	metrics.UserMutationsTotal.WithLabelValues("change_password").Inc()
	s.log.Info().Str("user_id", targetID).Str("by", actor.Email).Msg("password changed")
	s.publish(domain.AuditPasswordChanged, actor, targetID, update.Fields(), update.Stamp.At)
	return nil
}

// ChangeRole sets the role of targetID. The new role must be assignable by
// actor and the target's current role must be one actor may manage.
func (s *UserService) ChangeRole(ctx context.Context, actor domain.Actor, targetID, newRole string) error {
	if targetID == "" {
		return domain.ErrMissingUserID
	}
	role, err := domain.ParseRole(newRole)
	if err != nil {
		return err
	}
	if !policy.CanAssign(actor.Role, role) {
		return s.deny("change_role", actor, targetID)
	}

	update := domain.UserUpdate{Role: &role}
	if err := s.guardedUpdate(ctx, "change_role", policy.CanChangeRole, actor, targetID, update); err != nil {
		return err
	}

	s.log.Info().Str("user_id", targetID).Str("role", string(role)).Str("by", actor.Email).Msg("role changed")
	return nil
}

// UpdateProfile applies a partial update of username and role. A role change
// here is authorized exactly like ChangeRole.
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.Actor, targetID string, in ports.UpdateProfileInput) error {
	if targetID == "" {
		return domain.ErrMissingUserID
	}

	var update domain.UserUpdate
	if in.Username != nil {
		if username := strings.TrimSpace(*in.Username); username != "" {
			update.Username = &username
		}
	}
	if in.Role != nil && strings.TrimSpace(*in.Role) != "" {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return err
		}
		update.Role = &role
	}
	if update.Username == nil && update.Role == nil {
		return domain.ErrNoFields
	}

	if !policy.CanView(actor.Role) {
		return s.deny("update_profile", actor, targetID)
	}
	if update.Role != nil && !policy.CanAssign(actor.Role, *update.Role) {
		return s.deny("update_profile", actor, targetID)
	}

	if err := s.guardedUpdate(ctx, "update_profile", policy.CanUpdateProfile, actor, targetID, update); err != nil {
		return err
	}

	s.log.Info().Str("user_id", targetID).Strs("fields", update.Fields()).Str("by", actor.Email).Msg("profile updated")
	return nil
}

// guardedUpdate checks the target's current role with allowed and writes
// update conditioned on that role still being manageable, so a concurrent
// promotion cannot be overwritten.
func (s *UserService) guardedUpdate(ctx context.Context, op string, allowed func(actor, target domain.Role) bool, actor domain.Actor, targetID string, update domain.UserUpdate) error {
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if !allowed(actor.Role, target.Role) {
		return s.deny(op, actor, targetID)
	}

	update.Stamp = domain.NewAuditStamp(actor, s.now())
	update.GuardRoles = policy.ManageableRoles(actor.Role)

	matched, err := s.repo.UpdateFields(ctx, targetID, update)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if matched == 0 {
		// Either the record vanished or its role moved out of reach between
		// the read and the guarded write.
		if _, err := s.repo.FindByID(ctx, targetID); errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return s.deny(op, actor, targetID)
	}

	metrics.UserMutationsTotal.WithLabelValues(op).Inc()
	action := domain.AuditProfileUpdated
	if op == "change_role" {
		action = domain.AuditRoleChanged
	}
	s.publish(action, actor, targetID, update.Fields(), update.Stamp.At)
	return nil
}

// EnsureSuperAdmin creates the bootstrap superadmin when it does not exist
// yet. The account is flagged as a system account and stamped by "system".
// Missing configuration is logged and skipped.
func (s *UserService) EnsureSuperAdmin(ctx context.Context, email, password, username string) error {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		s.log.Warn().Msg("SUPER_ADMIN_EMAIL or SUPER_ADMIN_PASSWORD not set, skipping superadmin bootstrap")
		return nil
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		s.log.Info().Str("email", email).Msg("superadmin already exists")
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("bootstrap superadmin: %w", err)
	}

	if err := domain.CheckPassword(password); err != nil {
		return fmt.Errorf("bootstrap superadmin: %w", err)
	}
	if strings.TrimSpace(username) == "" {
		username = defaultSuperAdminUsername
	}

	hash, err := s.hash(password)
	if err != nil {
		return fmt.Errorf("bootstrap superadmin: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Email:        email,
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		Role:         domain.RoleSuperAdmin,
		System:       true,
		CreatedAt:    now,
	}
	user.Stamp(domain.AuditStamp{By: domain.SystemActor, At: now})

	if _, err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil
		}
		return fmt.Errorf("bootstrap superadmin: %w", err)
	}

	s.log.Info().Str("email", email).Msg("superadmin created")
	return nil
}

func (s *UserService) hash(plaintext string) (string, error) {
	timer := prometheus.NewTimer(metrics.PasswordHashDuration)
	defer timer.ObserveDuration()
	return s.hasher.Hash(plaintext)
}

func (s *UserService) deny(op string, actor domain.Actor, targetID string) error {
	metrics.AuthorizationDenialsTotal.WithLabelValues(op).Inc()
	s.log.Warn().
		Str("operation", op).
		Str("actor", actor.Email).
		Str("actor_role", string(actor.Role)).
		Str("target_id", targetID).
		Msg("operation denied by policy")
	return domain.ErrForbidden
}

func (s *UserService) publish(action domain.AuditAction, actor domain.Actor, targetID string, fields []string, at time.Time) {
	if s.audit == nil {
		return
	}
	s.audit.Publish(domain.AuditEvent{
		ID:         uuid.NewString(),
		Action:     action,
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		ActorRole:  actor.Role,
		TargetID:   targetID,
		Fields:     fields,
		At:         at,
	})
}
