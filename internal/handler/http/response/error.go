package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/attendance"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/auth"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/school"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var boundaryErr *attendance.BoundaryViolationError
	if errors.As(err, &boundaryErr) {
		Forbidden(w, fmt.Sprintf("You are not within the school boundary. Distance: %dm, Boundary: %dm", boundaryErr.Distance, boundaryErr.Radius))
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrAccountDeactivated):
		Forbidden(w, "Account is deactivated")
	case errors.Is(err, auth.ErrAdminRegistration):
		Forbidden(w, "Admin accounts cannot be self-registered")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrAdminAccessRequired),
		errors.Is(err, user.ErrPrincipalAccessRequired),
		errors.Is(err, user.ErrStaffAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrRoleNotAllowed):
		Forbidden(w, "Only teachers and principals can record attendance")
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "You have already checked in today. You can only check in once per day.")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		BadRequest(w, "You need to check in before you can check out. Please check in first.", nil)
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "You have already checked out today.")
	case errors.Is(err, attendance.ErrOutsideAllowedRadius):
		Forbidden(w, "You are not within the school boundary")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance not found")
	case errors.Is(err, attendance.ErrAttendanceAlreadyProcessed):
		Conflict(w, "Attendance has already been approved or rejected")
	case errors.Is(err, attendance.ErrNotSupervisor):
		Forbidden(w, "You are not allowed to decide this attendance")
	case errors.Is(err, attendance.ErrNotPrincipalAttendance):
		Forbidden(w, "This attendance does not belong to a principal")
	case errors.Is(err, attendance.ErrInvalidPhoto):
		BadRequest(w, "Photo must be a base64 encoded JPEG or PNG image", nil)

	// School domain errors
	case errors.Is(err, school.ErrSchoolNotFound):
		NotFound(w, "School not found")
	case errors.Is(err, school.ErrSchoolInactive):
		BadRequest(w, "School is not active", nil)
	case errors.Is(err, school.ErrSchoolCodeExists):
		Conflict(w, "School code already exists")
	case errors.Is(err, school.ErrSchoolHasMembers):
		Conflict(w, "Cannot delete school with assigned teachers or principals")
	case errors.Is(err, school.ErrNoRecipients):
		BadRequest(w, "No active teachers or principal with a phone number to alert", nil)
	case errors.Is(err, school.ErrInvalidPrincipal):
		BadRequest(w, "Principal must be an active principal assigned to this school", nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
