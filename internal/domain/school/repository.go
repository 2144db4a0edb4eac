package school

import (
	"context"
	"time"
)

type SchoolRepository interface {
	// Create returns ErrSchoolCodeExists when the code is taken.
	Create(ctx context.Context, newSchool School) (School, error)

	// GetByID returns ErrSchoolNotFound when id does not exist.
	GetByID(ctx context.Context, id string) (School, error)

	Update(ctx context.Context, s School) (School, error)
	UpdateBoundaryRadius(ctx context.Context, id string, radius int) (School, error)
	Delete(ctx context.Context, id string) error

	// SetPrincipalIfEmpty assigns principalID unless the school already has a principal.
	SetPrincipalIfEmpty(ctx context.Context, id string, principalID string) error

	// ListActive returns active schools with teacher counts and the number of
	// teachers whose attendance on day is approved.
	ListActive(ctx context.Context, day time.Time) ([]School, error)

	CountActive(ctx context.Context) (int, error)
}
