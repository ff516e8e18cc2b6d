package geometry

import "github.com/paulmach/orb"

// View is where the map opens: a centre as (lat, lng) and a zoom level.
type View struct {
	Center [2]float64     `json:"center"`
	Zoom   int            `json:"zoom"`
	Bounds *[2][2]float64 `json:"bounds,omitempty"`
}

// Viewport fits the map to points. With no points it falls back to the
// whole-island preset; a single point is shown close up.
func Viewport(points []orb.Point) View {
	switch len(points) {
	case 0:
		r := Regions[0]
		return View{Center: latLng(r.Center), Zoom: r.Zoom}
	case 1:
		return View{Center: latLng(points[0]), Zoom: 14}
	}

	bound := orb.MultiPoint(points).Bound()
	span := max(bound.Max.Lat()-bound.Min.Lat(), bound.Max.Lon()-bound.Min.Lon())

	zoom := 10
	switch {
	case span < 0.05:
		zoom = 14
	case span < 0.1:
		zoom = 13
	case span < 0.2:
		zoom = 12
	case span < 0.5:
		zoom = 11
	}

	bounds := [2][2]float64{latLng(bound.Min), latLng(bound.Max)}
	return View{Center: latLng(bound.Center()), Zoom: zoom, Bounds: &bounds}
}

func latLng(p orb.Point) [2]float64 {
	return [2]float64{p.Lat(), p.Lon()}
}
