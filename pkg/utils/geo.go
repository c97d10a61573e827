package utils

import "math"

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.0

	// below this (about 89.4 degrees) a longitude bound is meaningless
	minLngCos = 0.01
)

// Haversine returns the great-circle distance in kilometers.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Box is a lat/lng rectangle used as a cheap SQL prefilter.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox is radius/111 degrees of latitude and radius/(111*cos(lat)) degrees
// of longitude around the centre. When the longitude span reaches the poles or the
// antimeridian it widens to the full [-180, 180] range, which keeps the prefilter
// a superset of the haversine result.
func BoundingBox(lat, lng, radiusKm float64) Box {
	dLat := radiusKm / kmPerDegree
	box := Box{
		MinLat: lat - dLat,
		MaxLat: lat + dLat,
		MinLng: -180,
		MaxLng: 180,
	}

	cos := math.Cos(toRad(lat))
	if cos < minLngCos {
		return box
	}
	dLng := radiusKm / (kmPerDegree * cos)
	if lng-dLng < -180 || lng+dLng > 180 {
		return box
	}
	box.MinLng, box.MaxLng = lng-dLng, lng+dLng
	return box
}

// Round2 rounds half away from zero to 2 decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
