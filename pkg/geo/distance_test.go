package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	tataMemorial := Point{Latitude: 19.0110, Longitude: 72.8569}
	kemMumbai := Point{Latitude: 18.9893, Longitude: 72.8371}
	aiimsDelhi := Point{Latitude: 28.5672, Longitude: 77.2100}

	t.Run("identical points are zero", func(t *testing.T) {
		assert.Equal(t, 0.0, DistanceKm(tataMemorial, tataMemorial))
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.Equal(t, DistanceKm(tataMemorial, aiimsDelhi), DistanceKm(aiimsDelhi, tataMemorial))
		assert.Equal(t, DistanceKm(kemMumbai, tataMemorial), DistanceKm(tataMemorial, kemMumbai))
	})

	t.Run("short urban distance", func(t *testing.T) {
		assert.InDelta(t, 3.19, DistanceKm(tataMemorial, kemMumbai), 0.05)
	})

	t.Run("intercity distance", func(t *testing.T) {
		assert.InDelta(t, 1151, DistanceKm(tataMemorial, aiimsDelhi), 10)
	})

	t.Run("distinct points are positive", func(t *testing.T) {
		nudged := Point{Latitude: tataMemorial.Latitude + 1e-9, Longitude: tataMemorial.Longitude}
		assert.Greater(t, DistanceKm(tataMemorial, nudged), 0.0)
	})

	t.Run("antipodal points stay finite", func(t *testing.T) {
		d := DistanceKm(Point{Latitude: 0, Longitude: 0}, Point{Latitude: 0, Longitude: 180})
		assert.InDelta(t, 20015.1, d, 0.5)
	})
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 3.16, RoundKm(3.1649))
	assert.Equal(t, 0.0, RoundKm(0.004))
}
