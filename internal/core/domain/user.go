package domain

import (
	"strings"
	"time"
)

// Role is the authorization level of a user record.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// SystemActor is the audit identity used for records created by the process itself.
const SystemActor = "system"

// Roles lists every valid role, lowest privilege first.
var Roles = []Role{RoleUser, RoleAdmin, RoleSuperAdmin}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts s into a Role, returning ErrInvalidRole for unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// NormalizeEmail trims and lower-cases an address so lookups and the unique
// index agree on a single spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AuditStamp records who last changed a record and when. Both fields are
// always written together.
type AuditStamp struct {
	By string
	At time.Time
}

// NewAuditStamp stamps a change made by actor at the current UTC time.
func NewAuditStamp(actor Actor, now time.Time) AuditStamp {
	return AuditStamp{By: actor.Email, At: now.UTC()}
}

// User is a stored account. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	System       bool      `json:"-"`
	UpdatedBy    string    `json:"updatedBy,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
	CreatedAt    time.Time `json:"-"`
}

// Stamp applies an audit stamp to the record.
func (u *User) Stamp(s AuditStamp) {
	u.UpdatedBy = s.By
	u.UpdatedAt = s.At
}

// PublicIdentity is the redacted view of a user returned after login.
type PublicIdentity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Username string `json:"username"`
}

// Public strips everything but the identity fields.
func (u *User) Public() PublicIdentity {
	return PublicIdentity{ID: u.ID, Email: u.Email, Role: u.Role, Username: u.Username}
}

// Actor is the authenticated caller of an operation, decoded from a token.
// It is passed by value into every service call.
type Actor struct {
	ID       string
	Email    string
	Role     Role
	Username string
}

// UserUpdate is the set of fields written by a single atomic update. Nil
// pointers leave the stored value untouched. Stamp is mandatory.
type UserUpdate struct {
	Username     *string
	Role         *Role
	PasswordHash *string
	Stamp        AuditStamp

	// GuardRoles, when non-empty, restricts the update to records whose
	// current role is in the set.
	GuardRoles []Role
}

// Fields returns the names of the data fields the update touches.
func (u UserUpdate) Fields() []string {
	var fields []string
	if u.Username != nil {
		fields = append(fields, "username")
	}
	if u.Role != nil {
		fields = append(fields, "role")
	}
	if u.PasswordHash != nil {
		fields = append(fields, "password")
	}
	return fields
}

// Guards reports whether role satisfies the update's role guard.
func (u UserUpdate) Guards(role Role) bool {
	if len(u.GuardRoles) == 0 {
		return true
	}
	for _, r := range u.GuardRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Apply writes the update onto a copy of u and returns it.
func (u User) Apply(upd UserUpdate) User {
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	u.Stamp(upd.Stamp)
	return u
}
