package school

import (
	"strings"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/geo"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/validator"
)

type AddressRequest struct {
	Street   *string `json:"street,omitempty"`
	Village  *string `json:"village,omitempty"`
	Block    string  `json:"block"`
	District string  `json:"district"`
	State    string  `json:"state,omitempty"`
	Pincode  *string `json:"pincode,omitempty"`
}

func (a *AddressRequest) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	if validator.IsEmpty(a.Block) {
		errs = append(errs, validator.ValidationError{
			Field:   "address.block",
			Message: "block is required",
		})
	}
	if validator.IsEmpty(a.District) {
		errs = append(errs, validator.ValidationError{
			Field:   "address.district",
			Message: "district is required",
		})
	}
	if a.Pincode != nil && *a.Pincode != "" && !validator.IsValidPincode(*a.Pincode) {
		errs = append(errs, validator.ValidationError{
			Field:   "address.pincode",
			Message: "pincode must be 6 digits",
		})
	}
	return errs
}

func (a *AddressRequest) toAddress() Address {
	state := strings.TrimSpace(a.State)
	if state == "" {
		state = DefaultState
	}
	return Address{
		Street:   a.Street,
		Village:  a.Village,
		Block:    strings.TrimSpace(a.Block),
		District: strings.TrimSpace(a.District),
		State:    state,
		Pincode:  a.Pincode,
	}
}

type CreateSchoolRequest struct {
	Name           string         `json:"name"`
	Code           string         `json:"code"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	Address        AddressRequest `json:"address"`
	BoundaryRadius *int           `json:"boundary_radius,omitempty"`
}

func (r *CreateSchoolRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if !validator.IsValidSchoolCode(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code must be 2-20 characters of letters, digits, - or _",
		})
	}
	if err := geo.Validate(geo.Point{Latitude: r.Latitude, Longitude: r.Longitude}, nil); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	errs = r.Address.validate(errs)
	if r.BoundaryRadius != nil {
		errs = validateRadius(*r.BoundaryRadius, errs)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToSchool builds the entity for a new active school.
func (r *CreateSchoolRequest) ToSchool() School {
	radius := geo.DefaultRadiusMeters
	if r.BoundaryRadius != nil {
		radius = *r.BoundaryRadius
	}
	return School{
		Name:           strings.TrimSpace(r.Name),
		Code:           r.Code,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
		Address:        r.Address.toAddress(),
		IsActive:       true,
		BoundaryRadius: radius,
	}
}

// UpdateSchoolRequest is a partial update; nil fields are left unchanged.
type UpdateSchoolRequest struct {
	ID          string          `json:"-"`
	Name        *string         `json:"name,omitempty"`
	Code        *string         `json:"code,omitempty"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	Address     *AddressRequest `json:"address,omitempty"`
	PrincipalID *string         `json:"principal_id,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

func (r *UpdateSchoolRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}
	if r.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*r.Code))
		r.Code = &code
		if !validator.IsValidSchoolCode(code) {
			errs = append(errs, validator.ValidationError{
				Field:   "code",
				Message: "code must be 2-20 characters of letters, digits, - or _",
			})
		}
	}
	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "latitude and longitude must be updated together",
		})
	} else if r.Latitude != nil {
		if err := geo.Validate(geo.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}, nil); err != nil {
			errs = append(errs, err.(validator.ValidationErrors)...)
		}
	}
	if r.Address != nil {
		errs = r.Address.validate(errs)
	}
	if r.PrincipalID != nil && !validator.IsValidUUID(*r.PrincipalID) {
		errs = append(errs, validator.ValidationError{
			Field:   "principal_id",
			Message: "principal_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Apply copies the set fields onto s.
func (r *UpdateSchoolRequest) Apply(s *School) {
	if r.Name != nil {
		s.Name = strings.TrimSpace(*r.Name)
	}
	if r.Code != nil {
		s.Code = *r.Code
	}
	if r.Latitude != nil && r.Longitude != nil {
		s.Latitude = *r.Latitude
		s.Longitude = *r.Longitude
	}
	if r.Address != nil {
		s.Address = r.Address.toAddress()
	}
	if r.PrincipalID != nil {
		s.PrincipalID = r.PrincipalID
	}
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
}

type UpdateBoundaryRequest struct {
	ID             string `json:"-"`
	BoundaryRadius int    `json:"boundary_radius"`
}

func (r *UpdateBoundaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}
	errs = validateRadius(r.BoundaryRadius, errs)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateRadius(radius int, errs validator.ValidationErrors) validator.ValidationErrors {
	if radius < MinBoundaryRadius || radius > MaxBoundaryRadius {
		errs = append(errs, validator.ValidationError{
			Field:   "boundary_radius",
			Message: "boundary radius must be between 50 and 10000 meters",
		})
	}
	return errs
}

type AddressResponse struct {
	Street   *string `json:"street,omitempty"`
	Village  *string `json:"village,omitempty"`
	Block    string  `json:"block"`
	District string  `json:"district"`
	State    string  `json:"state"`
	Pincode  *string `json:"pincode,omitempty"`
}

type SchoolResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Code            string          `json:"code"`
	Latitude        float64         `json:"latitude"`
	Longitude       float64         `json:"longitude"`
	Address         AddressResponse `json:"address"`
	PrincipalID     *string         `json:"principal_id,omitempty"`
	PrincipalName   *string         `json:"principal_name,omitempty"`
	IsActive        bool            `json:"is_active"`
	BoundaryRadius  int             `json:"boundary_radius"`
	TotalTeachers   int             `json:"total_teachers"`
	PresentTeachers int             `json:"present_teachers"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

type DropdownItem struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Code    string          `json:"code"`
	Address AddressResponse `json:"address"`
}

type AlertResponse struct {
	SchoolID   string `json:"school_id"`
	Recipients int    `json:"recipients"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
}

func NewAddressResponse(a Address) AddressResponse {
	return AddressResponse{
		Street:   a.Street,
		Village:  a.Village,
		Block:    a.Block,
		District: a.District,
		State:    a.State,
		Pincode:  a.Pincode,
	}
}
