package geofence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinate_Validate(t *testing.T) {
	assert.NoError(t, Coordinate{Lat: 7.3775, Lng: 3.9470}.Validate())
	assert.NoError(t, Coordinate{Lat: -90, Lng: 180}.Validate())

	assert.ErrorIs(t, Coordinate{Lat: 90.0001, Lng: 0}.Validate(), ErrInvalidCoordinate)
	assert.ErrorIs(t, Coordinate{Lat: -91, Lng: 0}.Validate(), ErrInvalidCoordinate)
	assert.ErrorIs(t, Coordinate{Lat: 0, Lng: 180.5}.Validate(), ErrInvalidCoordinate)
	assert.ErrorIs(t, Coordinate{Lat: 0, Lng: -181}.Validate(), ErrInvalidCoordinate)
}

func TestVerify_RejectsInvalidBeforeDistance(t *testing.T) {
	valid := Coordinate{Lat: 7.3775, Lng: 3.9470}
	invalid := Coordinate{Lat: 95, Lng: 3.9470}

	// Either side being invalid is rejected, symmetric
	_, err := Verify(invalid, valid, 100)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = Verify(valid, invalid, 100)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestVerify_RejectsNonPositiveRadius(t *testing.T) {
	p := Coordinate{Lat: 7.3775, Lng: 3.9470}
	_, err := Verify(p, p, 0)
	assert.Error(t, err)
}

func TestVerify_WithinRange(t *testing.T) {
	center := Coordinate{Lat: 7.3775, Lng: 3.9470}
	student := Coordinate{Lat: 7.3776, Lng: 3.9471}

	res, err := Verify(student, center, 100)
	assert.NoError(t, err)
	assert.True(t, res.IsValid)
	assert.Equal(t, StatusWithinRange, res.Status)
	// ~15 m between the two points
	assert.InDelta(t, 15, res.DistanceMeters, 5)
	assert.Equal(t, float64(100), res.AllowedRadius)
}

func TestVerify_TooFar(t *testing.T) {
	center := Coordinate{Lat: 7.3775, Lng: 3.9470}
	student := Coordinate{Lat: 7.3850, Lng: 3.9470}

	res, err := Verify(student, center, 100)
	assert.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, StatusTooFar, res.Status)
	// ~830 m straight north
	assert.InDelta(t, 830, res.DistanceMeters, 20)
}

func TestVerify_Monotonic(t *testing.T) {
	center := Coordinate{Lat: 7.3775, Lng: 3.9470}
	student := Coordinate{Lat: 7.3790, Lng: 3.9470}

	res, err := Verify(student, center, 1000)
	assert.NoError(t, err)
	assert.True(t, res.IsValid)

	// Shrinking the radius below the measured distance flips the verdict
	res2, err := Verify(student, center, res.DistanceMeters-1)
	assert.NoError(t, err)
	assert.False(t, res2.IsValid)
	assert.Equal(t, res.DistanceMeters, res2.DistanceMeters)
}

func TestDistance_ZeroForSamePoint(t *testing.T) {
	p := Coordinate{Lat: 7.3775, Lng: 3.9470}
	assert.InDelta(t, 0, Distance(p, p), 1e-9)
}
