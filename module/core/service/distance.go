package service

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/nandanugg/linewatch/module/core/domain"
)

const earthRadiusMeters = 6371000.0

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b domain.Position) float64 {
	return latLng(a).Distance(latLng(b)).Radians() * earthRadiusMeters
}

// Offset returns the point reached by travelling meters from p along the
// given initial bearing (degrees clockwise from north).
func Offset(p domain.Position, bearingDeg, meters float64) domain.Position {
	ll := latLng(p)
	lat := ll.Lat.Radians()
	lon := ll.Lng.Radians()
	brg := (s1.Angle(bearingDeg) * s1.Degree).Radians()
	d := meters / earthRadiusMeters

	lat2 := math.Asin(math.Sin(lat)*math.Cos(d) + math.Cos(lat)*math.Sin(d)*math.Cos(brg))
	lon2 := lon + math.Atan2(
		math.Sin(brg)*math.Sin(d)*math.Cos(lat),
		math.Cos(d)-math.Sin(lat)*math.Sin(lat2))

	out := s2.LatLng{Lat: s1.Angle(lat2), Lng: s1.Angle(lon2)}.Normalized()
	return domain.Position{
		Lat:       out.Lat.Degrees(),
		Lon:       out.Lng.Degrees(),
		Timestamp: p.Timestamp,
	}
}

func validPosition(p domain.Position) bool {
	return latLng(p).IsValid()
}

func latLng(p domain.Position) s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lon)
}
