package geometry

import (
	"encoding/json"
	"testing"

	"salesdash/server/internal/models"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marker(id int64, city string, lat, lng float64) models.MapMarker {
	return models.MapMarker{
		ID:          id,
		City:        city,
		Category:    models.CategoryHouse,
		Coordinates: [2]float64{lat, lng},
	}
}

func TestViewport(t *testing.T) {
	t.Run("no points opens on the island", func(t *testing.T) {
		v := Viewport(nil)
		assert.Equal(t, [2]float64{26.3344, 127.8056}, v.Center)
		assert.Equal(t, 10, v.Zoom)
		assert.Nil(t, v.Bounds)
	})

	t.Run("single point zooms in", func(t *testing.T) {
		v := Viewport([]orb.Point{{127.6809, 26.2124}})
		assert.Equal(t, [2]float64{26.2124, 127.6809}, v.Center)
		assert.Equal(t, 14, v.Zoom)
	})

	tests := []struct {
		name     string
		points   []orb.Point
		wantZoom int
	}{
		{"same city", []orb.Point{{127.68, 26.21}, {127.68, 26.21}}, 14},
		{"neighbouring cities", []orb.Point{{127.6809, 26.2124}, {127.7781, 26.2815}}, 13},
		{"south", []orb.Point{{127.6647, 26.1247}, {127.7781, 26.2815}}, 12},
		{"south to central", []orb.Point{{127.6809, 26.2124}, {127.8508, 26.3719}, {127.9772, 26.5919}}, 11},
		{"remote islands", []orb.Point{{127.6809, 26.2124}, {124.1556, 24.3364}}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Viewport(tt.points)
			assert.Equal(t, tt.wantZoom, v.Zoom)
			require.NotNil(t, v.Bounds)
		})
	}
}

func TestViewport_CenterOfBounds(t *testing.T) {
	v := Viewport([]orb.Point{{127.0, 26.0}, {128.0, 27.0}, {127.5, 26.1}})
	assert.InDelta(t, 26.5, v.Center[0], 1e-9)
	assert.InDelta(t, 127.5, v.Center[1], 1e-9)
	assert.Equal(t, [2][2]float64{{26.0, 127.0}, {27.0, 128.0}}, *v.Bounds)
}

func TestMarkerCollection(t *testing.T) {
	image := "a.jpg"
	naha := marker(1, "那覇市", 26.2124, 127.6809)
	naha.Image = &image
	nago := marker(2, "名護市", 26.5919, 127.9772)

	fc := MarkerCollection([]models.MapMarker{naha, nago})
	require.Len(t, fc.Features, 2)

	point, ok := fc.Features[0].Geometry.(orb.Point)
	require.True(t, ok)
	assert.Equal(t, 127.6809, point.Lon())
	assert.Equal(t, 26.2124, point.Lat())
	assert.Equal(t, "那覇・南部", fc.Features[0].Properties["region"])
	assert.Equal(t, "a.jpg", fc.Features[0].Properties["image"])
	_, hasImage := fc.Features[1].Properties["image"]
	assert.False(t, hasImage)
	assert.Equal(t, "北部", fc.Features[1].Properties["region"])

	raw, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"FeatureCollection"`)
	assert.Contains(t, string(raw), `"coordinates":[127.6809,26.2124]`)
}

func TestMarkerCollection_Empty(t *testing.T) {
	raw, err := json.Marshal(MarkerCollection(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(raw))
}

func TestRegions_MainIslandExcludesOutlyingIslands(t *testing.T) {
	island, ok := GetRegion("沖縄本島")
	require.True(t, ok)

	assert.True(t, island.Contains("那覇市"))
	assert.True(t, island.Contains("名護市"))
	assert.False(t, island.Contains("石垣市"))
	assert.False(t, island.Contains("宮古島市"))
	assert.False(t, island.Contains("久米島町"))

	for _, r := range Regions[1:] {
		for _, city := range r.Cities {
			assert.True(t, island.Contains(city), city)
		}
	}

	markers := []models.MapMarker{
		marker(1, "那覇市", 26.2124, 127.6809),
		marker(2, "石垣市", 24.3448, 124.1572),
	}
	filtered := FilterRegion(markers, island)
	require.Len(t, filtered, 1)
	assert.Equal(t, "那覇市", filtered[0].City)
}

func TestRegions(t *testing.T) {
	assert.Equal(t, "中部", RegionOf("北谷町"))
	assert.Equal(t, "", RegionOf("石垣市"))

	assert.Equal(t, "北部", RegionOf("名護市"))

	south, ok := GetRegion("那覇・南部")
	require.True(t, ok)
	markers := []models.MapMarker{
		marker(1, "那覇市", 26.2124, 127.6809),
		marker(2, "名護市", 26.5919, 127.9772),
		marker(3, "糸満市", 26.1247, 127.6647),
	}
	filtered := FilterRegion(markers, south)
	require.Len(t, filtered, 2)
	assert.Equal(t, int64(3), filtered[1].ID)

	_, ok = GetRegion("本州")
	assert.False(t, ok)
}
