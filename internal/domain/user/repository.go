package user

import (
	"context"
)

type UserRepository interface {
	// GetByEmail returns ErrUserNotFound when no user has the email.
	GetByEmail(ctx context.Context, email string) (User, error)

	// GetByID loads a user with the last check-in and check-out projections.
	GetByID(ctx context.Context, id string) (User, error)

	Create(ctx context.Context, newUser User) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ListActiveBySchool returns active users of the given roles assigned to schoolID.
	ListActiveBySchool(ctx context.Context, schoolID string, roles []Role) ([]User, error)

	// CountBySchool counts users of the given roles assigned to schoolID, active or not.
	CountBySchool(ctx context.Context, schoolID string, roles []Role) (int, error)

	// CountActiveByRole counts active users with role across all schools.
	CountActiveByRole(ctx context.Context, role Role) (int, error)
}
