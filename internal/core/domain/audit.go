package domain

import "time"

// AuditAction names the mutation recorded by an AuditEvent.
type AuditAction string

const (
	AuditUserCreated     AuditAction = "user.created"
	AuditPasswordChanged AuditAction = "user.password_changed"
	AuditRoleChanged     AuditAction = "user.role_changed"
	AuditProfileUpdated  AuditAction = "user.profile_updated"
)

// AuditEvent describes one persisted mutation. At matches the UpdatedAt
// written to the record.
type AuditEvent struct {
	ID         string
	Action     AuditAction
	ActorID    string
	ActorEmail string
	ActorRole  Role
	TargetID   string
	Fields     []string
	At         time.Time
}
