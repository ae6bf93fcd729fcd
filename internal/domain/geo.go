package domain

import "math"

const earthRadiusKm = 6371.0

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Project returns the point reached by travelling distanceKm from origin along
// the great circle with initial bearing bearingDeg (clockwise from true north).
// Inputs are not validated; bearings wrap naturally.
func Project(origin Geo, bearingDeg, distanceKm float64) Geo {
	brng := toRadians(bearingDeg)
	lat1 := toRadians(origin.Lat)
	lon1 := toRadians(origin.Lon)
	d := distanceKm / earthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Geo{Lat: toDegrees(lat2), Lon: toDegrees(lon2)}
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }
