package attendance

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/attendance"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
)

const csvTimeLayout = "2006-01-02 15:04:05"

var schoolExportHeader = []string{
	"Teacher Name", "Teacher Email", "Check-in Time", "Check-out Time",
	"Latitude", "Longitude", "Distance (m)", "Status",
}

var principalExportHeader = []string{
	"Principal Name", "Principal Email", "School", "Check-in Time", "Check-out Time",
	"Latitude", "Longitude", "Distance (m)", "Status",
}

// ExportSchoolCSV implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ExportSchoolCSV(ctx context.Context, w io.Writer) error {
	principal, err := a.currentPrincipal(ctx)
	if err != nil {
		return err
	}

	records, err := a.AttendanceRepository.ListBySchool(ctx, *principal.SchoolID)
	if err != nil {
		return fmt.Errorf("failed to list school attendance: %w", err)
	}

	return a.writeCSV(w, schoolExportHeader, records, false)
}

// ExportPrincipalCSV implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ExportPrincipalCSV(ctx context.Context, w io.Writer) error {
	records, err := a.AttendanceRepository.ListBySubjectRole(ctx, user.RolePrincipal)
	if err != nil {
		return fmt.Errorf("failed to list principal attendance: %w", err)
	}

	return a.writeCSV(w, principalExportHeader, records, true)
}

func (a *AttendanceServiceImpl) writeCSV(w io.Writer, header []string, records []attendance.Attendance, withSchool bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{deref(rec.UserName), deref(rec.UserEmail)}
		if withSchool {
			row = append(row, deref(rec.SchoolName))
		}
		row = append(row,
			a.csvTime(&rec.CheckInTime),
			a.csvTime(rec.CheckOutTime),
			strconv.FormatFloat(rec.CheckInLatitude, 'f', 6, 64),
			strconv.FormatFloat(rec.CheckInLongitude, 'f', 6, 64),
			strconv.Itoa(rec.CheckInDistance),
			string(rec.Status),
		)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func (a *AttendanceServiceImpl) csvTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(a.loc).Format(csvTimeLayout)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
