// Package geo provides coordinate types and planar/spherical math used by
// the meeting point engine. Distances are approximations tuned for
// city-scale spans in China, not general-purpose geodesy.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate is a (longitude, latitude) pair in degrees, in whatever
// datum the map provider uses.
type Coordinate struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// String renders the coordinate in the provider's "lng,lat" wire form
// with six decimal places.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lng, c.Lat)
}

// ParseCoordinate parses the provider's "lng,lat" form.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("malformed coordinate %q", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("malformed longitude in %q: %w", s, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("malformed latitude in %q: %w", s, err)
	}
	return Coordinate{Lng: lng, Lat: lat}, nil
}

// Meters-per-degree factors for the latitudes this service targets.
// Longitude shrinks with latitude; 85km/deg matches roughly 40N.
const (
	metersPerLngDegree = 85000.0
	metersPerLatDegree = 111000.0
)

// Distance returns the approximate distance in meters between two points
// using an equirectangular projection. Good to a few percent at city scale.
func Distance(a, b Coordinate) float64 {
	dx := (a.Lng - b.Lng) * metersPerLngDegree
	dy := (a.Lat - b.Lat) * metersPerLatDegree
	return math.Sqrt(dx*dx + dy*dy)
}

// Offset returns the point reached by moving dxMeters east and dyMeters
// north from origin, using the same projection as Distance.
func Offset(origin Coordinate, dxMeters, dyMeters float64) Coordinate {
	return Coordinate{
		Lng: origin.Lng + dxMeters/metersPerLngDegree,
		Lat: origin.Lat + dyMeters/metersPerLatDegree,
	}
}

// Center computes the geometric center of the given points. For exactly
// two points it uses the great-circle midpoint, which lands on the
// spherical bisector rather than the flat average. For three or more it
// falls back to the arithmetic mean of the coordinates; the break in
// symmetry between the two branches is intentional and kept stable for
// downstream fairness scoring.
func Center(points []Coordinate) (Coordinate, error) {
	switch len(points) {
	case 0:
		return Coordinate{}, fmt.Errorf("center of zero points is undefined")
	case 1:
		return points[0], nil
	case 2:
		return sphericalMidpoint(points[0], points[1]), nil
	default:
		var sumLng, sumLat float64
		for _, p := range points {
			sumLng += p.Lng
			sumLat += p.Lat
		}
		n := float64(len(points))
		return Coordinate{Lng: sumLng / n, Lat: sumLat / n}, nil
	}
}

func sphericalMidpoint(a, b Coordinate) Coordinate {
	lat1 := a.Lat * math.Pi / 180
	lng1 := a.Lng * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lng2 := b.Lng * math.Pi / 180

	dLng := lng2 - lng1
	bx := math.Cos(lat2) * math.Cos(dLng)
	by := math.Cos(lat2) * math.Sin(dLng)

	lat3 := math.Atan2(
		math.Sin(lat1)+math.Sin(lat2),
		math.Sqrt((math.Cos(lat1)+bx)*(math.Cos(lat1)+bx)+by*by),
	)
	lng3 := lng1 + math.Atan2(by, math.Cos(lat1)+bx)

	return Coordinate{
		Lng: lng3 * 180 / math.Pi,
		Lat: lat3 * 180 / math.Pi,
	}
}

// BoundingBox returns the axis-aligned bounds of the given points.
func BoundingBox(points []Coordinate) (min, max Coordinate) {
	if len(points) == 0 {
		return
	}
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		min.Lng = math.Min(min.Lng, p.Lng)
		min.Lat = math.Min(min.Lat, p.Lat)
		max.Lng = math.Max(max.Lng, p.Lng)
		max.Lat = math.Max(max.Lat, p.Lat)
	}
	return
}
