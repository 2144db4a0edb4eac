package school

import (
	"time"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/geo"
)

const (
	DefaultState      = "Bihar"
	MinBoundaryRadius = 50
	MaxBoundaryRadius = 10000
)

type Address struct {
	Street   *string
	Village  *string
	Block    string
	District string
	State    string
	Pincode  *string
}

type School struct {
	ID             string
	Name           string
	Code           string
	Latitude       float64
	Longitude      float64
	Address        Address
	PrincipalID    *string
	IsActive       bool
	BoundaryRadius int
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Computed
	TotalTeachers   int
	PresentTeachers int
	PrincipalName   *string
}

// Center is the geofence center.
func (s *School) Center() geo.Point {
	return geo.Point{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Radius returns the geofence radius, falling back to the default when unset.
func (s *School) Radius() int {
	if s.BoundaryRadius <= 0 {
		return geo.DefaultRadiusMeters
	}
	return s.BoundaryRadius
}
