package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	assert.InDelta(t, 0, HaversineDistance(51.5, -0.12, 51.5, -0.12), 1e-9)

	// One degree of latitude is about 111.2 km on the mean sphere
	assert.InDelta(t, 111195, HaversineDistance(0, 0, 1, 0), 5)
}

func TestPathLength(t *testing.T) {
	assert.Zero(t, PathLength(nil))
	assert.Zero(t, PathLength([]Point{{Lat: 10, Lon: 10}}))

	path := []Point{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 0}, {Lat: 2, Lon: 0}}
	assert.InDelta(t, 2*HaversineDistance(0, 0, 1, 0), PathLength(path), 1e-6)
}

func TestPoint_InRange(t *testing.T) {
	assert.True(t, Point{Lat: 90, Lon: -180}.InRange())
	assert.False(t, Point{Lat: 90.5, Lon: 0}.InRange())
	assert.False(t, Point{Lat: 0, Lon: 181}.InRange())
}
