// README: Pure geographic computation helpers shared by scoring and clustering.
package geo

import (
	"math"

	"github.com/sirupsen/logrus"

	"tavolo/internal/types"
)

const earthRadiusKm = 6371.0

// DefaultAvgSpeedKmh is the assumed courier travel speed for ETA estimates
// when no routing oracle is available.
const DefaultAvgSpeedKmh = 30.0

// DistanceKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees (haversine formula).
//
// Malformed coordinates (NaN or out-of-range degrees) are a data-quality
// problem, not a dispatch failure: the distance degrades to 0 and a warning
// is logged instead of an error reaching the caller.
func DistanceKm(a, b types.Point) float64 {
	if !validPoint(a) || !validPoint(b) {
		logrus.WithFields(logrus.Fields{
			"a_lat": a.Lat, "a_lng": a.Lng,
			"b_lat": b.Lat, "b_lng": b.Lng,
		}).Warn("geo: malformed coordinates, treating distance as 0")
		return 0
	}

	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// EstimateEtaMinutes converts a distance to whole minutes of travel at the
// given average speed, rounding up. Non-positive speeds fall back to the
// default so the estimate never divides by zero.
func EstimateEtaMinutes(distanceKm, avgSpeedKmh float64) int {
	if avgSpeedKmh <= 0 {
		avgSpeedKmh = DefaultAvgSpeedKmh
	}
	if distanceKm <= 0 {
		return 0
	}
	return int(math.Ceil(distanceKm / avgSpeedKmh * 60))
}

func validPoint(p types.Point) bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// SortByDistance performs an insertion sort (fine for small N) on any slice
// where each element exposes a distance via the accessor function.
func SortByDistance[T any](items []T, dist func(T) float64) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && dist(items[j]) > dist(key) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
