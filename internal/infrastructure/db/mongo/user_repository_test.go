package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/99minutos/user-admin/internal/core/domain"
)

func TestSetDocument_StampAlwaysPresent(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	hash := "$2a$10$abc"

	set := setDocument(domain.UserUpdate{
		PasswordHash: &hash,
		Stamp:        domain.AuditStamp{By: "admin@co", At: at},
	})

	if set["updated_by"] != "admin@co" {
		t.Fatalf("expected updated_by, got %v", set["updated_by"])
	}
	if got, _ := set["updated_at"].(time.Time); !got.Equal(at) {
		t.Fatalf("expected updated_at %s, got %v", at, set["updated_at"])
	}
	if set["password_hash"] != hash {
		t.Fatalf("expected password_hash to be set")
	}
	if _, ok := set["role"]; ok {
		t.Fatalf("role must not be written when absent")
	}
	if _, ok := set["username"]; ok {
		t.Fatalf("username must not be written when absent")
	}
}

func TestSetDocument_RoleAndUsername(t *testing.T) {
	role := domain.RoleAdmin
	name := "alice"

	set := setDocument(domain.UserUpdate{Role: &role, Username: &name})

	if set["role"] != "admin" || set["username"] != "alice" {
		t.Fatalf("unexpected $set document: %v", set)
	}
}

func TestUpdateFilter_Guard(t *testing.T) {
	oid := primitive.NewObjectID()

	plain := updateFilter(oid, domain.UserUpdate{})
	if len(plain) != 1 || plain["_id"] != oid {
		t.Fatalf("expected id-only filter, got %v", plain)
	}

	guarded := updateFilter(oid, domain.UserUpdate{GuardRoles: []domain.Role{domain.RoleUser, domain.RoleAdmin}})
	in, ok := guarded["role"].(bson.M)
	if !ok {
		t.Fatalf("expected role guard, got %v", guarded)
	}
	roles, _ := in["$in"].([]string)
	if len(roles) != 2 || roles[0] != "user" || roles[1] != "admin" {
		t.Fatalf("unexpected guard roles: %v", roles)
	}
}

func TestMongoUser_ToDomain(t *testing.T) {
	oid := primitive.NewObjectID()
	mu := mongoUser{
		ID:           oid,
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "h",
		Role:         "user",
		UpdatedBy:    "admin@co",
	}

	u := mu.toDomain()
	if u.ID != oid.Hex() || u.Role != domain.RoleUser || u.UpdatedBy != "admin@co" {
		t.Fatalf("unexpected mapping: %+v", u)
	}
}
