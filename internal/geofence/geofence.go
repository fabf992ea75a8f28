package geofence

import (
	"errors"
	"fmt"
	"math"
)

const (
	StatusWithinRange = "within_range"
	StatusTooFar      = "too_far"

	earthRadiusMeters = 6371008.8
)

var ErrInvalidCoordinate = errors.New("coordinate out of valid range")

// Coordinate is a WGS84 point. Out-of-range values are rejected by Validate,
// never clamped.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinate, c.Lat, c.Lng)
	}
	return nil
}

// Result carries the verdict together with the measured distance so callers
// can render precise diagnostics ("you are 214.3 m away; limit is 100 m").
type Result struct {
	IsValid        bool    `json:"is_valid"`
	DistanceMeters float64 `json:"distance_meters"`
	AllowedRadius  float64 `json:"allowed_radius"`
	Status         string  `json:"status"`
}

// Distance returns the great-circle distance between two coordinates in
// meters using the haversine formula on a spherical earth.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Verify checks whether point lies within radiusMeters of center. Both
// coordinates are validated before any distance math. Pure function, safe
// for concurrent use.
func Verify(point, center Coordinate, radiusMeters float64) (Result, error) {
	if err := point.Validate(); err != nil {
		return Result{}, err
	}
	if err := center.Validate(); err != nil {
		return Result{}, err
	}
	if radiusMeters <= 0 {
		return Result{}, fmt.Errorf("allowed radius must be positive, got %v", radiusMeters)
	}

	distance := Distance(point, center)

	res := Result{
		IsValid:        distance <= radiusMeters,
		DistanceMeters: math.Round(distance*100) / 100,
		AllowedRadius:  radiusMeters,
	}
	if res.IsValid {
		res.Status = StatusWithinRange
	} else {
		res.Status = StatusTooFar
	}
	return res, nil
}
