package geo

import (
	"math"
	"testing"
)

func TestParseCoordinate(t *testing.T) {
	c, err := ParseCoordinate("116.404,39.915")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Lng != 116.404 || c.Lat != 39.915 {
		t.Fatalf("got %+v", c)
	}

	if _, err := ParseCoordinate("116.404"); err == nil {
		t.Fatalf("expected error for single component")
	}
	if _, err := ParseCoordinate("abc,39.9"); err == nil {
		t.Fatalf("expected error for non-numeric longitude")
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	c := Coordinate{Lng: 116.404123, Lat: 39.915456}
	got, err := ParseCoordinate(c.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got.Lng-c.Lng) > 1e-6 || math.Abs(got.Lat-c.Lat) > 1e-6 {
		t.Fatalf("round trip drifted: %+v vs %+v", got, c)
	}
}

func TestDistanceZero(t *testing.T) {
	c := Coordinate{Lng: 116.4, Lat: 39.9}
	if d := Distance(c, c); d != 0 {
		t.Fatalf("distance to self = %f, want 0", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Coordinate{Lng: 116.30, Lat: 39.95}
	b := Coordinate{Lng: 116.47, Lat: 39.92}
	if Distance(a, b) != Distance(b, a) {
		t.Fatalf("distance is not symmetric")
	}
}

func TestDistanceScale(t *testing.T) {
	// One hundredth of a degree of latitude is 1110m under the projection.
	a := Coordinate{Lng: 116.4, Lat: 39.90}
	b := Coordinate{Lng: 116.4, Lat: 39.91}
	if d := Distance(a, b); math.Abs(d-1110) > 0.01 {
		t.Fatalf("latitude distance = %f, want 1110", d)
	}
	c := Coordinate{Lng: 116.41, Lat: 39.90}
	if d := Distance(a, c); math.Abs(d-850) > 0.01 {
		t.Fatalf("longitude distance = %f, want 850", d)
	}
}

func TestOffsetInvertsDistance(t *testing.T) {
	origin := Coordinate{Lng: 116.4, Lat: 39.9}
	moved := Offset(origin, 300, 400)
	if d := Distance(origin, moved); math.Abs(d-500) > 0.01 {
		t.Fatalf("offset 300,400 distance = %f, want 500", d)
	}
}

func TestCenterZeroPoints(t *testing.T) {
	if _, err := Center(nil); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestCenterSinglePoint(t *testing.T) {
	p := Coordinate{Lng: 116.4, Lat: 39.9}
	c, err := Center([]Coordinate{p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != p {
		t.Fatalf("center of one point = %+v, want %+v", c, p)
	}
}

func TestCenterTwoPointsSymmetric(t *testing.T) {
	a := Coordinate{Lng: 116.30, Lat: 39.95}
	b := Coordinate{Lng: 116.47, Lat: 39.92}
	ab, err := Center([]Coordinate{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := Center([]Coordinate{b, a})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(ab.Lng-ba.Lng) > 1e-9 || math.Abs(ab.Lat-ba.Lat) > 1e-9 {
		t.Fatalf("midpoint order dependent: %+v vs %+v", ab, ba)
	}
}

func TestCenterTwoPointsSpherical(t *testing.T) {
	// Zhongguancun to Guomao. The great-circle midpoint of two points at
	// this latitude differs measurably from the flat average.
	a := Coordinate{Lng: 116.30, Lat: 39.95}
	b := Coordinate{Lng: 116.47, Lat: 39.92}
	mid, err := Center([]Coordinate{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flat := Coordinate{Lng: (a.Lng + b.Lng) / 2, Lat: (a.Lat + b.Lat) / 2}
	if mid.Lng == flat.Lng && mid.Lat == flat.Lat {
		t.Fatalf("spherical midpoint equals flat average exactly, projection lost")
	}
	// Still close: the span is only ~15km.
	if Distance(mid, flat) > 50 {
		t.Fatalf("midpoint %f m from flat average, expected under 50m", Distance(mid, flat))
	}
	// Roughly equidistant from both endpoints.
	da, db := Distance(mid, a), Distance(mid, b)
	if math.Abs(da-db) > 30 {
		t.Fatalf("midpoint unbalanced: %.1f vs %.1f meters", da, db)
	}
}

func TestCenterMeanInsideBounds(t *testing.T) {
	pts := []Coordinate{
		{Lng: 116.30, Lat: 39.95},
		{Lng: 116.47, Lat: 39.92},
		{Lng: 116.40, Lat: 39.85},
		{Lng: 116.35, Lat: 40.00},
	}
	c, err := Center(pts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	min, max := BoundingBox(pts)
	if c.Lng < min.Lng || c.Lng > max.Lng || c.Lat < min.Lat || c.Lat > max.Lat {
		t.Fatalf("center %+v outside bounding box [%+v, %+v]", c, min, max)
	}
}

func TestCenterThreePointsIsMean(t *testing.T) {
	pts := []Coordinate{
		{Lng: 116.0, Lat: 39.0},
		{Lng: 117.0, Lat: 40.0},
		{Lng: 118.0, Lat: 41.0},
	}
	c, err := Center(pts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(c.Lng-117.0) > 1e-9 || math.Abs(c.Lat-40.0) > 1e-9 {
		t.Fatalf("three point center = %+v, want mean 117,40", c)
	}
}
