package route

import "math"

const earthRadius = 6371e3

func haversin(theta float64) float64 {
	s := math.Sin(theta / 2)
	return s * s
}

// distance returns the great-circle distance in meters between two points
// in degrees.
func distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	a := haversin(lat2Rad-lat1Rad) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*haversin((lon2-lon1)*math.Pi/180)
	return 2 * earthRadius * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
