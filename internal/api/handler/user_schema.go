package handler

import "github.com/99minutos/user-admin/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse acknowledges a successful mutation.
type messageResponse struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string                `json:"token"`
	User  domain.PublicIdentity `json:"user"`
}

type createUserRequest struct {
	Email    string `json:"email"    validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"required,role"`
	Username string `json:"username" validate:"required,max=64"`
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// updateUserRequest is a partial update; omitted fields are left alone.
type updateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,max=64"`
	Role     *string `json:"role,omitempty"`
}

// userResponse is one entry of GET /auth/users.
type userResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Username  string      `json:"username"`
	UpdatedBy string      `json:"updatedBy,omitempty"`
	UpdatedAt string      `json:"updatedAt,omitempty"`
}
