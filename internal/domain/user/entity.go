package user

import "time"

type Role string

const (
	RoleTeacher   Role = "teacher"   // Records own attendance
	RolePrincipal Role = "principal" // Records own attendance, decides teacher attendance
	RoleAdmin     Role = "admin"     // Manages schools, decides principal attendance
)

// Roles lists every valid role.
var Roles = []Role{RoleTeacher, RolePrincipal, RoleAdmin}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleTeacher, RolePrincipal, RoleAdmin:
		return true
	}
	return false
}

// CanRecordAttendance reports whether users of this role check in and out.
func (r Role) CanRecordAttendance() bool {
	return r == RoleTeacher || r == RolePrincipal
}

// RequiresSchool reports whether users of this role must belong to a school.
func (r Role) RequiresSchool() bool {
	return r.CanRecordAttendance()
}

// Supervisor returns the role that approves attendance recorded by r,
// or "" when r does not record attendance.
func (r Role) Supervisor() Role {
	switch r {
	case RoleTeacher:
		return RolePrincipal
	case RolePrincipal:
		return RoleAdmin
	}
	return ""
}

// CanDecide reports whether r may approve or reject attendance recorded by subject.
func (r Role) CanDecide(subject Role) bool {
	return r != "" && subject.Supervisor() == r
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Phone        *string
	SchoolID     *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Projections over the user's attendance records
	LastCheckIn  *time.Time
	LastCheckOut *time.Time

	// Join
	SchoolName *string
}

// BelongsTo reports whether the user is assigned to schoolID.
func (u *User) BelongsTo(schoolID string) bool {
	return u.SchoolID != nil && *u.SchoolID == schoolID
}
