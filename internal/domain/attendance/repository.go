package attendance

import (
	"context"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
)

type AttendanceRepository interface {
	// CreateIfAbsent inserts rec unless the subject already holds a record for
	// rec.Date. A lost race returns ErrAlreadyCheckedIn and writes nothing.
	CreateIfAbsent(ctx context.Context, rec Attendance) (Attendance, error)

	// ListByUserAndDate returns every record of userID on date, oldest first.
	ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]Attendance, error)

	// CloseOpen writes out on record id if it has no checkout yet. A record that
	// was closed concurrently returns ErrAlreadyCheckedOut.
	CloseOpen(ctx context.Context, id string, out CheckOut) (Attendance, error)

	// GetByID returns ErrAttendanceNotFound when id does not exist.
	GetByID(ctx context.Context, id string) (Attendance, error)

	// UpdateDecision writes d while the record is still pending. A record that
	// was decided concurrently returns ErrAttendanceAlreadyProcessed.
	UpdateDecision(ctx context.Context, id string, d Decision) (Attendance, error)

	// ListBySchool returns every record of schoolID, newest check-in first.
	ListBySchool(ctx context.Context, schoolID string) ([]Attendance, error)

	// ListBySubjectRole returns every record captured by users of role, newest first.
	ListBySubjectRole(ctx context.Context, role user.Role) ([]Attendance, error)

	// ListByUser pages through userID's records, newest first. from and to bound
	// the attendance date when set.
	ListByUser(ctx context.Context, userID string, from, to *time.Time, limit, offset int) ([]Attendance, int64, error)

	// MonthlyCounts groups userID's records of year by month.
	MonthlyCounts(ctx context.Context, userID string, year int) ([]MonthlyCount, error)

	// DailyCounts groups all records with attendance date in [from, to] by day.
	DailyCounts(ctx context.Context, from, to time.Time) ([]DailyCount, error)
}
