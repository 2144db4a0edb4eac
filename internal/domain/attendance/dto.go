package attendance

import (
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/geo"
	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/validator"
)

// ========================================
// CAPTURE DTOs
// ========================================

// Location is the device position reported with a capture.
type Location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Address   *string  `json:"address,omitempty"`
}

// CaptureRequest is the body of a check-in or check-out: the device location
// and a photo encoded as a data URI or bare base64.
type CaptureRequest struct {
	Photo     string   `json:"photo"`
	Location  Location `json:"location"`
	UserAgent string   `json:"-"`
}

func (r *CaptureRequest) Validate() error {
	var errs validator.ValidationErrors
	loc := r.Location

	if loc.Latitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude is required",
		})
	}
	if loc.Longitude == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude is required",
		})
	}
	if validator.IsEmpty(r.Photo) {
		errs = append(errs, validator.ValidationError{
			Field:   "photo",
			Message: "photo is required",
		})
	}

	if loc.Latitude != nil && loc.Longitude != nil {
		if err := geo.Validate(r.Point(), loc.Accuracy); err != nil {
			errs = append(errs, err.(validator.ValidationErrors)...)
		}
	} else if loc.Accuracy != nil {
		if err := geo.Validate(geo.Point{}, loc.Accuracy); err != nil {
			errs = append(errs, err.(validator.ValidationErrors)...)
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Point returns the reported coordinate. Call only after Validate succeeds.
func (r *CaptureRequest) Point() geo.Point {
	return geo.Point{Latitude: *r.Location.Latitude, Longitude: *r.Location.Longitude}
}

type CheckInRequest struct {
	CaptureRequest
}

type CheckOutRequest struct {
	CaptureRequest
}

// DecisionRequest carries optional remarks for approve and reject.
type DecisionRequest struct {
	ID      string  `json:"-"`
	Remarks *string `json:"remarks,omitempty"`
}

func (r *DecisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}
	if r.Remarks != nil && len(*r.Remarks) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "remarks",
			Message: "remarks must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type AttendanceResponse struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	UserName   *string `json:"user_name,omitempty"`
	UserEmail  *string `json:"user_email,omitempty"`
	UserRole   *string `json:"user_role,omitempty"`
	SchoolID   string  `json:"school_id"`
	SchoolName *string `json:"school_name,omitempty"`
	Date       string  `json:"date"`

	CheckInTime      string   `json:"check_in_time"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Accuracy         *float64 `json:"accuracy,omitempty"`
	Address          *string  `json:"address,omitempty"`
	Distance         int      `json:"distance"`
	IsWithinBoundary bool     `json:"is_within_boundary"`
	PhotoURL         string   `json:"photo_url"`

	CheckOutTime             *string  `json:"check_out_time,omitempty"`
	CheckOutLatitude         *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude        *float64 `json:"check_out_longitude,omitempty"`
	CheckOutAccuracy         *float64 `json:"check_out_accuracy,omitempty"`
	CheckOutAddress          *string  `json:"check_out_address,omitempty"`
	CheckOutDistance         *int     `json:"check_out_distance,omitempty"`
	CheckOutIsWithinBoundary *bool    `json:"check_out_is_within_boundary,omitempty"`
	CheckOutPhotoURL         *string  `json:"check_out_photo_url,omitempty"`

	Status     string  `json:"status"`
	ApprovedBy *string `json:"approved_by,omitempty"`
	ApprovedAt *string `json:"approved_at,omitempty"`
	Remarks    *string `json:"remarks,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

type TodayStatusResponse struct {
	HasCheckedIn  bool                `json:"has_checked_in"`
	HasCheckedOut bool                `json:"has_checked_out"`
	CheckInTime   *string             `json:"check_in_time,omitempty"`
	CheckOutTime  *string             `json:"check_out_time,omitempty"`
	Status        *string             `json:"status,omitempty"`
	Attendance    *AttendanceResponse `json:"attendance,omitempty"`
	LastCheckIn   *string             `json:"last_check_in,omitempty"`
	LastCheckOut  *string             `json:"last_check_out,omitempty"`
}

// ========================================
// HISTORY
// ========================================

type HistoryFilter struct {
	Page  int  `json:"page"`
	Limit int  `json:"limit"`
	Month *int `json:"month,omitempty"`
	Year  *int `json:"year,omitempty"`
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if (f.Month == nil) != (f.Year == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month and year must be provided together",
		})
	}
	if f.Month != nil && !validator.IsValidMonth(*f.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if f.Year != nil && (*f.Year < 2000 || *f.Year > 9999) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 9999",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type Statistics struct {
	TotalDays      int     `json:"total_days"`
	PresentDays    int     `json:"present_days"`
	AbsentDays     int     `json:"absent_days"`
	PendingDays    int     `json:"pending_days"`
	AttendanceRate float64 `json:"attendance_rate"`
}

type MonthlySummary struct {
	Year        int `json:"year"`
	Month       int `json:"month"`
	TotalDays   int `json:"total_days"`
	PresentDays int `json:"present_days"`
	AbsentDays  int `json:"absent_days"`
	PendingDays int `json:"pending_days"`
}

type HistoryResponse struct {
	Attendances    []AttendanceResponse `json:"attendances"`
	Statistics     Statistics           `json:"statistics"`
	MonthlySummary []MonthlySummary     `json:"monthly_summary"`
	TotalCount     int64                `json:"total_count"`
	Page           int                  `json:"page"`
	Limit          int                  `json:"limit"`
	TotalPages     int                  `json:"total_pages"`
}

// ========================================
// ADMIN STATS
// ========================================

type TodayStats struct {
	TotalCheckIns    int `json:"total_check_ins"`
	ApprovedCheckIns int `json:"approved_check_ins"`
	PendingCheckIns  int `json:"pending_check_ins"`
	RejectedCheckIns int `json:"rejected_check_ins"`
}

type TotalStats struct {
	Schools  int `json:"schools"`
	Teachers int `json:"teachers"`
}

type DailyStats struct {
	Date     string `json:"date"`
	CheckIns int    `json:"check_ins"`
	Approved int    `json:"approved"`
}

type StatsResponse struct {
	Today  TodayStats   `json:"today"`
	Total  TotalStats   `json:"total"`
	Weekly []DailyStats `json:"weekly"`
}
