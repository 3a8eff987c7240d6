// Package spatial holds the geodesic primitives shared by the motion
// classifier and the geofence engine.
package spatial

import (
	"github.com/golang/geo/s2"

	"github.com/famhub/location-tracking-system/internal/domain/models"
)

// EarthRadiusMeters is the mean Earth radius used for all distance math.
const EarthRadiusMeters = 6371000.0

// Distance returns the great-circle distance in meters between two
// coordinates.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// PointInPolygon reports whether the coordinate lies inside the polygon,
// using ray casting. Fewer than three vertices can never contain anything.
func PointInPolygon(lat, lng float64, polygon []models.LatLng) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		if ((polygon[i].Latitude > lat) != (polygon[j].Latitude > lat)) &&
			(lng < (polygon[j].Longitude-polygon[i].Longitude)*(lat-polygon[i].Latitude)/(polygon[j].Latitude-polygon[i].Latitude)+polygon[i].Longitude) {
			inside = !inside
		}
		j = i
	}

	return inside
}
