package domain

import (
	"context"
	"errors"
)

// User is the authenticated caller. Token issuance and account management
// are owned by the surrounding system; we only verify and read claims.
type User struct {
	ID    string
	Email string
	Role  Role
}

// Role represents a caller's access level.
type Role string

const (
	// RoleAdmin may decide requests, adjust balances and run jobs.
	RoleAdmin Role = "admin"
	// RoleEmployee may submit and cancel their own requests.
	RoleEmployee Role = "employee"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleEmployee: true,
}

func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanDecide reports whether the role may approve or reject requests.
func (r Role) CanDecide() bool {
	return r == RoleAdmin
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type userContextKey struct{}

// ContextWithUser attaches the authenticated user to ctx.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok
}
