// Package memory provides an in-process UserRepository. A single mutex
// serializes every operation, which gives the same per-record atomicity as the
// Mongo implementation.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/99minutos/user-admin/internal/core/domain"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
	order   []string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// Insert assigns a fresh UUID when the record has no id.
func (r *UserRepository) Insert(_ context.Context, user *domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return "", domain.ErrUserExists
	}

	stored := cloneUser(user)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if _, exists := r.byID[stored.ID]; exists {
		return "", domain.ErrUserExists
	}

	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	r.order = append(r.order, stored.ID)
	return stored.ID, nil
}

func (r *UserRepository) UpdateFields(_ context.Context, id string, update domain.UserUpdate) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || !update.Guards(u.Role) {
		return 0, nil
	}
	updated := u.Apply(update)
	r.byID[id] = &updated
	return 1, nil
}

func (r *UserRepository) List(_ context.Context, excludeSystem bool) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.order))
	for _, id := range r.order {
		u := r.byID[id]
		if excludeSystem && u.System {
			continue
		}
		users = append(users, cloneUser(u))
	}
	return users, nil
}
