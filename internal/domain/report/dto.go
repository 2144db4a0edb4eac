package report

import (
	"math"
	"strings"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/validator"
)

// DistrictFilter narrows reports to a district and optionally a block.
// A zero filter covers every active school.
type DistrictFilter struct {
	District *string `json:"district,omitempty"`
	Block    *string `json:"block,omitempty"`
}

func (f *DistrictFilter) Validate() error {
	var errs validator.ValidationErrors

	f.District = trimOrNil(f.District)
	f.Block = trimOrNil(f.Block)

	if f.Block != nil && f.District == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "block",
			Message: "block filter requires district",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// SchoolPresence is one active school's teacher headcount and approved
// attendance for a day.
type SchoolPresence struct {
	SchoolID        string
	Name            string
	Code            string
	Block           string
	District        string
	TotalTeachers   int
	PresentTeachers int
}

// AttendancePercent is present over total, rounded to a whole percent.
func (p SchoolPresence) AttendancePercent() int {
	return percent(p.PresentTeachers, p.TotalTeachers)
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

type StatsResponse struct {
	Date              string `json:"date"`
	Schools           int    `json:"schools"`
	TotalTeachers     int    `json:"total_teachers"`
	TotalPresent      int    `json:"total_present"`
	AverageAttendance int    `json:"average_attendance"`
}

// Summarize folds per-school presence into district totals.
func Summarize(day time.Time, rows []SchoolPresence) StatsResponse {
	resp := StatsResponse{
		Date:    day.Format("2006-01-02"),
		Schools: len(rows),
	}
	for _, r := range rows {
		resp.TotalTeachers += r.TotalTeachers
		resp.TotalPresent += r.PresentTeachers
	}
	resp.AverageAttendance = percent(resp.TotalPresent, resp.TotalTeachers)
	return resp
}
