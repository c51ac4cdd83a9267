package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
)

// EarthRadius is the mean Earth radius in metres used for great-circle distances.
const EarthRadius = 6371e3

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Coordinates is a point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%g, %g", c.Lat, c.Lon)
}

func (c Coordinates) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lon)
}

// UnitVector returns the point on the unit sphere for c. Straight-line distance
// between unit vectors grows monotonically with great-circle distance.
func (c Coordinates) UnitVector() [3]float64 {
	p := s2.PointFromLatLng(c.latLng())
	return [3]float64{p.X, p.Y, p.Z}
}

// Distance returns the great-circle distance in metres between p and q using
// the haversine formula.
func Distance(p, q Coordinates) float64 {
	return p.latLng().Distance(q.latLng()).Radians() * EarthRadius
}

// ParseCoordinates parses user input of the form "<lat>, <lon>".
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("%w: %q: expected \"<lat>, <lon>\"", ErrInvalidCoordinates, s)
	}
	var xs [2]float64
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return Coordinates{}, fmt.Errorf("%w: %q: bad number %q", ErrInvalidCoordinates, s, strings.TrimSpace(p))
		}
		xs[i] = x
	}
	c := Coordinates{Lat: xs[0], Lon: xs[1]}
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return Coordinates{}, fmt.Errorf("%w: %q out of range", ErrInvalidCoordinates, s)
	}
	return c, nil
}
