package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm_PuneMumbai(t *testing.T) {
	d, ok := CityDistanceKm("Pune", "Mumbai")
	require.True(t, ok)
	assert.True(t, d >= 120 && d <= 150, "got %.1f km", d)

	back, ok := CityDistanceKm("mumbai", "PUNE")
	require.True(t, ok)
	assert.InDelta(t, d, back, 1e-9)
}

func TestDistanceKm_Unavailable(t *testing.T) {
	_, ok := DistanceKm(nil, CoordsForCity("delhi"))
	assert.False(t, ok)
	_, ok = CityDistanceKm("Chennai", "Delhi")
	assert.False(t, ok)
}

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	d, ok := CityDistanceKm("Nagpur", "nagpur")
	require.True(t, ok)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestNearestCity(t *testing.T) {
	name, ok := NearestCity(&Point{Lat: 18.6, Lng: 73.7})
	require.True(t, ok)
	assert.Equal(t, "Pune", name)

	name, ok = NearestCity(&Point{Lat: 28.5, Lng: 77.3})
	require.True(t, ok)
	assert.Equal(t, "Delhi", name)

	_, ok = NearestCity(nil)
	assert.False(t, ok)
}

func TestSortByDistance_UnknownLast(t *testing.T) {
	items := []string{"Delhi", "Atlantis", "Mumbai", "Nagpur", "Pune"}
	SortByDistance(items, func(s string) string { return s }, CoordsForCity("pune"))
	assert.Equal(t, []string{"Pune", "Mumbai", "Nagpur", "Delhi", "Atlantis"}, items)
}

func TestSortByDistance_NilBaseKeepsOrder(t *testing.T) {
	items := []string{"Delhi", "Pune"}
	SortByDistance(items, func(s string) string { return s }, nil)
	assert.Equal(t, []string{"Delhi", "Pune"}, items)
}

func TestCities(t *testing.T) {
	assert.Equal(t, []string{"Pune", "Mumbai", "Nagpur", "Delhi"}, Cities())
}
