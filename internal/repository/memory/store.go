// Package memory implements the repository interfaces over in-process maps.
// It backs service and handler tests; transactions do not roll back.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/attendance"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/report"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/school"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
)

const dateLayout = "2006-01-02"

// Store holds every table. Repositories obtained from the same Store see each
// other's writes, so joins behave as they do in PostgreSQL.
type Store struct {
	mu          sync.Mutex
	users       map[string]user.User
	schools     map[string]school.School
	attendances map[string]attendance.Attendance
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]user.User),
		schools:     make(map[string]school.School),
		attendances: make(map[string]attendance.Attendance),
		now:         time.Now,
	}
}

func (s *Store) Users() user.UserRepository {
	return &userRepository{store: s}
}

func (s *Store) Schools() school.SchoolRepository {
	return &schoolRepository{store: s}
}

func (s *Store) Attendances() attendance.AttendanceRepository {
	return &attendanceRepository{store: s}
}

func (s *Store) Reports() report.ReportRepository {
	return &reportRepository{store: s}
}

// WithinTransaction runs fn directly.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newID() string {
	return uuid.NewString()
}

func sameDay(a, b time.Time) bool {
	return a.Format(dateLayout) == b.Format(dateLayout)
}
