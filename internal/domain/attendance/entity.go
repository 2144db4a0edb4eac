package attendance

import (
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/domain/user"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Attendance is one subject's record for one calendar day.
type Attendance struct {
	ID       string
	UserID   string
	SchoolID string
	Date     time.Time

	CheckInTime           time.Time
	CheckInLatitude       float64
	CheckInLongitude      float64
	CheckInAccuracy       *float64
	CheckInAddress        *string
	CheckInDistance       int
	CheckInWithinBoundary bool
	PhotoURL              string
	PhotoID               string

	CheckOutTime           *time.Time
	CheckOutLatitude       *float64
	CheckOutLongitude      *float64
	CheckOutAccuracy       *float64
	CheckOutAddress        *string
	CheckOutDistance       *int
	CheckOutWithinBoundary *bool
	CheckOutPhotoURL       *string
	CheckOutPhotoID        *string

	Status     Status
	ApprovedBy *string
	ApprovedAt *time.Time
	Remarks    *string
	UserAgent  *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	UserName   *string
	UserEmail  *string
	UserRole   *user.Role
	SchoolName *string
}

// CheckOut holds the values written when a record is closed.
type CheckOut struct {
	Time           time.Time
	Latitude       float64
	Longitude      float64
	Accuracy       *float64
	Address        *string
	Distance       int
	WithinBoundary bool
	PhotoURL       string
	PhotoID        string
}

// Decision holds the values written when a supervisor approves or rejects a record.
type Decision struct {
	Status     Status
	ApprovedBy string
	ApprovedAt time.Time
	Remarks    *string
}

// DailyCount aggregates check-ins for one calendar day.
type DailyCount struct {
	Date     time.Time
	CheckIns int
	Approved int
	Pending  int
	Rejected int
}

// MonthlyCount aggregates a subject's records for one month.
type MonthlyCount struct {
	Year     int
	Month    int
	Total    int
	Approved int
	Rejected int
	Pending  int
}
