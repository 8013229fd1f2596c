package geo

import (
	"math"

	"github.com/Ahmed2300/triptracker/internal/domain/ride"
	"github.com/mmcloughlin/geohash"
)

// earthRadiusMiles is the Earth radius used by the mobile clients; distances
// across the system are in miles so the proximity gate matches what the
// driver app shows.
const earthRadiusMiles = 3959.0

// DefaultProximityRadiusMiles is how close a driver must be to the pickup
// (or destination) before a trip may start (or end).
const DefaultProximityRadiusMiles = 0.2

// DistanceMiles computes the Haversine great-circle distance in miles
func DistanceMiles(from, to ride.Location) float64 {
	dLat := toRadians(to.Latitude - from.Latitude)
	dLon := toRadians(to.Longitude - from.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(from.Latitude))*math.Cos(toRadians(to.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// WithinRadius reports whether two points are within radiusMiles of each
// other. The comparison is deliberately non-strict: a driver sitting at
// exactly the radius passes the gate.
func WithinRadius(from, to ride.Location, radiusMiles float64) bool {
	return DistanceMiles(from, to) <= radiusMiles
}

// ValidCoordinates reports whether a point is a plausible WGS84 coordinate
func ValidCoordinates(loc ride.Location) bool {
	return loc.Latitude >= -90 && loc.Latitude <= 90 &&
		loc.Longitude >= -180 && loc.Longitude <= 180
}

// RegionHash buckets a point into the geohash cell used for region-scoped
// pending-ride feeds
func RegionHash(loc ride.Location, precision uint) string {
	return geohash.EncodeWithPrecision(loc.Latitude, loc.Longitude, precision)
}

// RegionNeighborhood returns a region cell plus its eight neighbors, the
// set of cells a driver near a boundary should listen on
func RegionNeighborhood(hash string) []string {
	return append([]string{hash}, geohash.Neighbors(hash)...)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
