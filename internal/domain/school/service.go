package school

import "context"

type SchoolService interface {
	Create(ctx context.Context, req CreateSchoolRequest) (SchoolResponse, error)
	GetByID(ctx context.Context, id string) (SchoolResponse, error)
	List(ctx context.Context) ([]SchoolResponse, error)
	Update(ctx context.Context, req UpdateSchoolRequest) (SchoolResponse, error)

	// Delete refuses schools that still have teachers or a principal assigned.
	Delete(ctx context.Context, id string) error

	UpdateBoundary(ctx context.Context, req UpdateBoundaryRequest) (SchoolResponse, error)

	// SendAlert texts every active teacher and principal of the school.
	SendAlert(ctx context.Context, id string) (AlertResponse, error)

	// Dropdown lists active schools for the public registration form.
	Dropdown(ctx context.Context) ([]DropdownItem, error)
}
