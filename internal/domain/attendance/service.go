package attendance

import (
	"context"
	"io"
)

type AttendanceService interface {
	// CheckIn records the caller's first capture of the day.
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut closes the caller's open record for the day.
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	GetTodayStatus(ctx context.Context) (TodayStatusResponse, error)
	GetHistory(ctx context.Context, filter HistoryFilter) (HistoryResponse, error)

	// Principal over teachers of their school
	ListSchoolAttendance(ctx context.Context) ([]AttendanceResponse, error)
	Approve(ctx context.Context, req DecisionRequest) (AttendanceResponse, error)
	Reject(ctx context.Context, req DecisionRequest) (AttendanceResponse, error)
	ExportSchoolCSV(ctx context.Context, w io.Writer) error

	// Admin over principals
	ListPrincipalAttendance(ctx context.Context) ([]AttendanceResponse, error)
	ApprovePrincipal(ctx context.Context, req DecisionRequest) (AttendanceResponse, error)
	RejectPrincipal(ctx context.Context, req DecisionRequest) (AttendanceResponse, error)
	ExportPrincipalCSV(ctx context.Context, w io.Writer) error
	GetStats(ctx context.Context) (StatsResponse, error)
}
