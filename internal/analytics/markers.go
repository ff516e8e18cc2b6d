package analytics

import (
	"salesdash/server/internal/models"

	"github.com/paulmach/orb"
)

// Resolver maps an area label to a coordinate.
type Resolver interface {
	Resolve(label string) (orb.Point, bool)
}

// BuildMarkers places each listing at its area's coordinate. Listings whose
// area cannot be resolved are left out, never placed at a default point.
func BuildMarkers(records []models.Property, resolver Resolver) []models.MapMarker {
	markers := make([]models.MapMarker, 0, len(records))
	for i := range records {
		p := &records[i]
		location := Location(p)
		city := AreaLabel(location)

		point, ok := resolver.Resolve(city)
		if !ok {
			continue
		}

		marker := models.MapMarker{
			ID:           p.ID,
			URL:          p.URL,
			Title:        p.Title,
			Category:     p.Category,
			CategoryType: p.CategoryType,
			GenreName:    p.GenreName,
			Location:     location,
			City:         city,
			Price:        p.Attribute(priceKeys...),
			Coordinates:  [2]float64{point.Lat(), point.Lon()},
		}
		if len(p.Images) > 0 {
			image := p.Images[0]
			marker.Image = &image
		}
		markers = append(markers, marker)
	}
	return markers
}
