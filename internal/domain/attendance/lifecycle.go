package attendance

import (
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
)

// DayState is where a subject stands for a calendar day.
type DayState int

const (
	NoRecord DayState = iota
	CheckedIn
	CheckedOut
)

func (s DayState) String() string {
	switch s {
	case CheckedIn:
		return "checked_in"
	case CheckedOut:
		return "checked_out"
	}
	return "no_record"
}

// StateOf returns the day state represented by rec. A nil record means NoRecord.
func StateOf(rec *Attendance) DayState {
	switch {
	case rec == nil:
		return NoRecord
	case rec.CheckOutTime == nil:
		return CheckedIn
	default:
		return CheckedOut
	}
}

// EnsureCanRecord rejects roles that do not record attendance.
func EnsureCanRecord(role user.Role) error {
	if !role.CanRecordAttendance() {
		return ErrRoleNotAllowed
	}
	return nil
}

// EnsureCanCheckIn allows a check-in only when the day has no record.
func EnsureCanCheckIn(today []Attendance) error {
	if len(today) > 0 {
		return ErrAlreadyCheckedIn
	}
	return nil
}

// EnsureCanCheckOut picks the open record among today's records. A day with
// no open record has nothing to check out. Days created before the
// one-record-per-day constraint may hold an open record next to a closed one;
// the closed record blocks a second checkout.
func EnsureCanCheckOut(today []Attendance) (*Attendance, error) {
	var open *Attendance
	closed := false

	for i := range today {
		switch StateOf(&today[i]) {
		case CheckedIn:
			if open == nil {
				open = &today[i]
			}
		case CheckedOut:
			closed = true
		}
	}

	switch {
	case open == nil:
		return nil, ErrNotCheckedIn
	case closed:
		return nil, ErrAlreadyCheckedOut
	}
	return open, nil
}

// EnsureCanDecide checks that approver may decide a record captured by subject.
// A principal decides only for their own school.
func EnsureCanDecide(approver user.User, subject user.Role, rec Attendance) error {
	if !approver.Role.CanDecide(subject) {
		return ErrNotSupervisor
	}
	if approver.Role == user.RolePrincipal && !approver.BelongsTo(rec.SchoolID) {
		return ErrNotSupervisor
	}
	return nil
}

// Decide moves a pending record to status. Status, approver and timestamp are
// always written together.
func (a *Attendance) Decide(status Status, approverID string, at time.Time, remarks *string) (Decision, error) {
	if a.Status != StatusPending {
		return Decision{}, ErrAttendanceAlreadyProcessed
	}
	d := Decision{
		Status:     status,
		ApprovedBy: approverID,
		ApprovedAt: at,
		Remarks:    remarks,
	}
	a.Status = d.Status
	a.ApprovedBy = &d.ApprovedBy
	a.ApprovedAt = &d.ApprovedAt
	if remarks != nil {
		a.Remarks = remarks
	}
	return d, nil
}
