package school

import "errors"

var (
	ErrSchoolNotFound   = errors.New("school not found")
	ErrSchoolInactive   = errors.New("school is not active")
	ErrSchoolCodeExists = errors.New("school code already exists")
	ErrSchoolHasMembers = errors.New("cannot delete school with assigned teachers or principals")
	ErrNoRecipients     = errors.New("no active teachers or principal to alert")
	ErrInvalidPrincipal = errors.New("principal must be an active principal assigned to this school")
)
