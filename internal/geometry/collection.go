package geometry

import (
	"salesdash/server/internal/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MarkerCollection renders markers as GeoJSON points. GeoJSON positions are
// (lng, lat), the reverse of MapMarker.Coordinates.
func MarkerCollection(markers []models.MapMarker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		feature := geojson.NewFeature(markerPoint(m))
		feature.ID = m.ID
		feature.Properties = geojson.Properties{
			"url":          m.URL,
			"title":        m.Title,
			"category":     string(m.Category),
			"categoryType": string(m.CategoryType),
			"genreName":    m.GenreName,
			"location":     m.Location,
			"city":         m.City,
			"region":       RegionOf(m.City),
			"price":        m.Price,
		}
		if m.Image != nil {
			feature.Properties["image"] = *m.Image
		}
		fc.Append(feature)
	}
	return fc
}

// MarkerPoints extracts the positions of markers.
func MarkerPoints(markers []models.MapMarker) []orb.Point {
	points := make([]orb.Point, len(markers))
	for i, m := range markers {
		points[i] = markerPoint(m)
	}
	return points
}

// FilterRegion keeps the markers whose city belongs to region.
func FilterRegion(markers []models.MapMarker, region *Region) []models.MapMarker {
	filtered := make([]models.MapMarker, 0, len(markers))
	for _, m := range markers {
		if region.Contains(m.City) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func markerPoint(m models.MapMarker) orb.Point {
	return orb.Point{m.Coordinates[1], m.Coordinates[0]}
}
