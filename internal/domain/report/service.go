package report

import (
	"context"
	"io"
)

// ReportService defines the interface for report generation
type ReportService interface {
	// GetStats totals today's approved attendance across active schools.
	GetStats(ctx context.Context, filter DistrictFilter) (StatsResponse, error)

	// ExportDistrictCSV writes one row per active school for today.
	ExportDistrictCSV(ctx context.Context, filter DistrictFilter, w io.Writer) error
}
