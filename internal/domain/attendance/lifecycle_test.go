package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRecord(id string) Attendance {
	return Attendance{ID: id, Status: StatusPending, CheckInTime: time.Now()}
}

func closedRecord(id string) Attendance {
	out := time.Now()
	return Attendance{ID: id, Status: StatusPending, CheckInTime: out.Add(-time.Hour), CheckOutTime: &out}
}

func TestStateOf(t *testing.T) {
	open := openRecord("a")
	closed := closedRecord("b")

	assert.Equal(t, NoRecord, StateOf(nil))
	assert.Equal(t, CheckedIn, StateOf(&open))
	assert.Equal(t, CheckedOut, StateOf(&closed))
	assert.Equal(t, "checked_out", CheckedOut.String())
}

func TestEnsureCanRecord(t *testing.T) {
	assert.NoError(t, EnsureCanRecord(user.RoleTeacher))
	assert.NoError(t, EnsureCanRecord(user.RolePrincipal))
	assert.ErrorIs(t, EnsureCanRecord(user.RoleAdmin), ErrRoleNotAllowed)
}

func TestEnsureCanCheckIn(t *testing.T) {
	assert.NoError(t, EnsureCanCheckIn(nil))
	assert.ErrorIs(t, EnsureCanCheckIn([]Attendance{openRecord("a")}), ErrAlreadyCheckedIn)
	assert.ErrorIs(t, EnsureCanCheckIn([]Attendance{closedRecord("a")}), ErrAlreadyCheckedIn)
}

func TestEnsureCanCheckOut(t *testing.T) {
	t.Run("no record", func(t *testing.T) {
		_, err := EnsureCanCheckOut(nil)
		assert.ErrorIs(t, err, ErrNotCheckedIn)
	})

	t.Run("open record", func(t *testing.T) {
		rec, err := EnsureCanCheckOut([]Attendance{openRecord("a")})
		require.NoError(t, err)
		assert.Equal(t, "a", rec.ID)
	})

	t.Run("already closed", func(t *testing.T) {
		_, err := EnsureCanCheckOut([]Attendance{closedRecord("a")})
		assert.ErrorIs(t, err, ErrNotCheckedIn)
	})

	t.Run("duplicate day with one closed", func(t *testing.T) {
		_, err := EnsureCanCheckOut([]Attendance{openRecord("a"), closedRecord("b")})
		assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
	})
}

func TestEnsureCanDecide(t *testing.T) {
	schoolA, schoolB := "school-a", "school-b"
	principal := user.User{ID: "p", Role: user.RolePrincipal, SchoolID: &schoolA}
	admin := user.User{ID: "adm", Role: user.RoleAdmin}
	rec := Attendance{SchoolID: schoolA}

	assert.NoError(t, EnsureCanDecide(principal, user.RoleTeacher, rec))
	assert.NoError(t, EnsureCanDecide(admin, user.RolePrincipal, rec))

	assert.ErrorIs(t, EnsureCanDecide(principal, user.RolePrincipal, rec), ErrNotSupervisor)
	assert.ErrorIs(t, EnsureCanDecide(admin, user.RoleTeacher, rec), ErrNotSupervisor)
	assert.ErrorIs(t, EnsureCanDecide(principal, user.RoleTeacher, Attendance{SchoolID: schoolB}), ErrNotSupervisor)
}

func TestAttendance_Decide(t *testing.T) {
	at := time.Date(2025, 7, 20, 10, 0, 0, 0, time.UTC)
	remarks := "late photo"

	rec := openRecord("a")
	d, err := rec.Decide(StatusApproved, "approver", at, &remarks)
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, d.Status)
	assert.Equal(t, StatusApproved, rec.Status)
	require.NotNil(t, rec.ApprovedBy)
	require.NotNil(t, rec.ApprovedAt)
	assert.Equal(t, "approver", *rec.ApprovedBy)
	assert.True(t, at.Equal(*rec.ApprovedAt))
	assert.Equal(t, &remarks, rec.Remarks)

	_, err = rec.Decide(StatusRejected, "other", at.Add(time.Minute), nil)
	assert.ErrorIs(t, err, ErrAttendanceAlreadyProcessed)
	assert.Equal(t, StatusApproved, rec.Status)
	assert.Equal(t, "approver", *rec.ApprovedBy)
}

func TestBoundaryViolationError(t *testing.T) {
	var err error = &BoundaryViolationError{Distance: 1200, Radius: 100}

	assert.True(t, errors.Is(err, ErrOutsideAllowedRadius))
	assert.Contains(t, err.Error(), "Distance: 1200m, Boundary: 100m")

	var bv *BoundaryViolationError
	require.ErrorAs(t, err, &bv)
	assert.Equal(t, 1200, bv.Distance)
}
