// Package geo is a small haversine heuristic over a fixed gazetteer. It is not
// a geocoder: cities outside the gazetteer have no coordinates.
package geo

import (
	"math"
	"sort"
	"strings"
)

const earthRadiusKm = 6371.0

// Point latitude/longitude in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type city struct {
	name  string
	point Point
}

// gazetteer keys are lower-case; order is fixed so ties resolve the same way.
var gazetteer = []struct {
	key string
	city
}{
	{"pune", city{"Pune", Point{Lat: 18.5204, Lng: 73.8567}}},
	{"mumbai", city{"Mumbai", Point{Lat: 19.076, Lng: 72.8777}}},
	{"nagpur", city{"Nagpur", Point{Lat: 21.1458, Lng: 79.0882}}},
	{"delhi", city{"Delhi", Point{Lat: 28.7041, Lng: 77.1025}}},
}

// CoordsForCity looks a city up case-insensitively; nil when unknown.
func CoordsForCity(name string) *Point {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, c := range gazetteer {
		if c.key == key {
			p := c.point
			return &p
		}
	}
	return nil
}

// Cities returns the display names of every known city.
func Cities() []string {
	out := make([]string, 0, len(gazetteer))
	for _, c := range gazetteer {
		out = append(out, c.name)
	}
	return out
}

// DistanceKm haversine distance; ok is false when either point is missing.
func DistanceKm(a, b *Point) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c, true
}

// CityDistanceKm is DistanceKm between two gazetteer names.
func CityDistanceKm(from, to string) (float64, bool) {
	return DistanceKm(CoordsForCity(from), CoordsForCity(to))
}

// NearestCity returns the display name of the closest gazetteer city.
func NearestCity(p *Point) (string, bool) {
	if p == nil {
		return "", false
	}
	best, bestDist := "", math.MaxFloat64
	for _, c := range gazetteer {
		pt := c.point
		d, _ := DistanceKm(p, &pt)
		if d < bestDist {
			best, bestDist = c.name, d
		}
	}
	return best, best != ""
}

// SortByDistance orders items nearest-first from base. Items whose city has no
// coordinates keep their relative order at the end. A nil base leaves the
// slice untouched.
func SortByDistance[T any](items []T, cityOf func(T) string, base *Point) {
	if base == nil {
		return
	}
	dist := func(item T) float64 {
		if d, ok := DistanceKm(base, CoordsForCity(cityOf(item))); ok {
			return d
		}
		return math.MaxFloat64
	}
	sort.SliceStable(items, func(i, j int) bool {
		return dist(items[i]) < dist(items[j])
	})
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
