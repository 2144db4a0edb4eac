package attendance

import (
	"errors"
	"fmt"
)

var (
	ErrRoleNotAllowed             = errors.New("only teachers and principals can record attendance")
	ErrAlreadyCheckedIn           = errors.New("you have already checked in today, you can only check in once per day")
	ErrNotCheckedIn               = errors.New("you need to check in before you can check out, please check in first")
	ErrAlreadyCheckedOut          = errors.New("you have already checked out today")
	ErrOutsideAllowedRadius       = errors.New("you are not within the school boundary")
	ErrAttendanceNotFound         = errors.New("attendance not found")
	ErrAttendanceAlreadyProcessed = errors.New("attendance has already been approved or rejected")
	ErrNotSupervisor              = errors.New("you are not allowed to decide this attendance")
	ErrNotPrincipalAttendance     = errors.New("this attendance does not belong to a principal")
	ErrInvalidPhoto               = errors.New("photo must be a base64 encoded jpeg or png image")
)

// BoundaryViolationError reports a capture outside the school geofence.
type BoundaryViolationError struct {
	Distance int
	Radius   int
}

func (e *BoundaryViolationError) Error() string {
	return fmt.Sprintf("you are not within the school boundary. Distance: %dm, Boundary: %dm", e.Distance, e.Radius)
}

func (e *BoundaryViolationError) Unwrap() error {
	return ErrOutsideAllowedRadius
}
