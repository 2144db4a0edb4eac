package auth

import (
	"context"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)

	// Me returns the caller identified by the access token in ctx.
	Me(ctx context.Context) (UserResponse, error)

	// EnsureAdmin creates the bootstrap admin account if no user has its email.
	EnsureAdmin(ctx context.Context, req BootstrapAdminRequest) error
}
