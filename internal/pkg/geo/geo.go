package geo

import (
	"math"

	"github.com/shikshak-watch/shikshak-watch-backend/internal/pkg/validator"
)

const (
	// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
	EarthRadiusMeters = 6371000

	// DefaultRadiusMeters is the boundary radius a school gets when none is configured.
	DefaultRadiusMeters = 100

	// Accuracy tiers. A coarse GPS fix widens the allowed distance.
	coarseAccuracyMeters = 1000
	mediumAccuracyMeters = 100
	coarseAllowance      = 2000
	mediumAllowance      = 500
)

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Evaluation is the outcome of a boundary check.
type Evaluation struct {
	DistanceMeters int
	WithinBoundary bool
	Accuracy       *float64
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// EvaluateBoundary decides whether reported lies inside the geofence around center.
// The decision uses the unrounded distance; the reported distance is rounded to the
// nearest meter.
func EvaluateBoundary(reported, center Point, radiusMeters float64, accuracy *float64) Evaluation {
	d := Distance(reported, center)

	var within bool
	switch {
	case accuracy == nil:
		within = d <= radiusMeters || d <= mediumAllowance
	case *accuracy > coarseAccuracyMeters:
		within = d <= coarseAllowance
	case *accuracy > mediumAccuracyMeters:
		within = d <= mediumAllowance
	default:
		within = d <= radiusMeters
	}

	return Evaluation{
		DistanceMeters: int(math.Round(d)),
		WithinBoundary: within,
		Accuracy:       accuracy,
	}
}

// Validate checks that p is a finite coordinate within WGS84 ranges and that
// accuracy, when reported, is a finite non-negative number.
func Validate(p Point, accuracy *float64) error {
	var errs validator.ValidationErrors

	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) || p.Latitude < -90 || p.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) || p.Longitude < -180 || p.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if accuracy != nil && (math.IsNaN(*accuracy) || math.IsInf(*accuracy, 0) || *accuracy < 0) {
		errs = append(errs, validator.ValidationError{
			Field:   "accuracy",
			Message: "accuracy must be a non-negative number of meters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
