package report

import (
	"context"
	"time"
)

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// ListSchoolPresence returns one row per active school matching filter,
	// counting teachers whose attendance on day is approved.
	ListSchoolPresence(ctx context.Context, day time.Time, filter DistrictFilter) ([]SchoolPresence, error)
}
