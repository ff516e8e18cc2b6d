package geocoding

import (
	"testing"

	"salesdash/server/internal/analytics"
	"salesdash/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Resolve(t *testing.T) {
	table := NewTable(nil)

	p, ok := table.Resolve("那覇市")
	require.True(t, ok)
	assert.Equal(t, 26.2124, p.Lat())
	assert.Equal(t, 127.6809, p.Lon())

	p, ok = table.Resolve("与那国町")
	require.True(t, ok)
	assert.Equal(t, 24.4667, p.Lat())
	assert.Equal(t, 123.0000, p.Lon())

	for _, label := range []string{"存在しない市", "", "那覇", "沖縄県那覇市", "中頭郡北谷町"} {
		_, ok := table.Resolve(label)
		assert.False(t, ok, label)
	}
}

func TestTable_CoversPrefecture(t *testing.T) {
	table := NewTable(nil)
	assert.Equal(t, 41, table.Len())

	names := table.Names()
	assert.Len(t, names, 41)
	assert.IsIncreasing(t, names)

	for _, name := range names {
		p, _ := table.Resolve(name)
		assert.True(t, p.Lat() > 24 && p.Lat() < 28, name)
		assert.True(t, p.Lon() > 122 && p.Lon() < 132, name)
	}
}

func TestTable_MarkersDropUnresolved(t *testing.T) {
	table := NewTable(nil)
	addresses := []string{
		"沖縄県那覇市おもろまち1-1",
		"沖縄県存在しない市1-1",
		"沖縄県浦添市牧港",
		"",
		"沖縄県石垣市美崎町",
		"沖縄県中頭郡北谷町美浜",
	}

	var records []models.Property
	unresolved := 0
	for _, addr := range addresses {
		p := models.Property{Category: models.CategoryHouse, IsActive: true, Attributes: map[string]string{"所在地": addr}}
		if _, ok := table.Resolve(analytics.PropertyArea(&p)); !ok {
			unresolved++
		}
		records = append(records, p)
	}

	markers := analytics.BuildMarkers(records, table)
	assert.Equal(t, 3, unresolved)
	assert.Len(t, markers, len(records)-unresolved)
	for _, m := range markers {
		assert.NotEqual(t, [2]float64{}, m.Coordinates)
	}
}
