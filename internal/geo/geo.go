package geo

import (
	"math"

	"github.com/roadtales/roadtales/internal/model"
)

// EarthRadiusMiles is the mean Earth radius used for trigger distances.
const EarthRadiusMiles = 3959.0

// DistanceMiles returns the great-circle (haversine) distance between two
// coordinates in statute miles.
func DistanceMiles(a, b model.Coordinates) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMiles * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
