package user

type Permission string

const (
	// Own attendance
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"

	// School attendance (principal over teachers)
	PermissionAttendanceViewSchool     Permission = "attendance.view_school"
	PermissionAttendanceApproveTeacher Permission = "attendance.approve_teacher"

	// Principal attendance (admin over principals)
	PermissionAttendanceViewPrincipals   Permission = "attendance.view_principals"
	PermissionAttendanceApprovePrincipal Permission = "attendance.approve_principal"
	PermissionAttendanceStats            Permission = "attendance.stats"

	// Schools
	PermissionSchoolManage Permission = "school.manage"
	PermissionSchoolAlert  Permission = "school.alert"

	// Reports
	PermissionReportsView Permission = "reports.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleTeacher: {
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
	},
	RolePrincipal: {
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewSchool,
		PermissionAttendanceApproveTeacher,
	},
	RoleAdmin: {
		PermissionAttendanceViewPrincipals,
		PermissionAttendanceApprovePrincipal,
		PermissionAttendanceStats,
		PermissionSchoolManage,
		PermissionSchoolAlert,
		PermissionReportsView,
	},
}

// HasPermission checks if role has specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
