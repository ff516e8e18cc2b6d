package geometry

import (
	"slices"

	"github.com/paulmach/orb"
)

// Region groups municipalities of Okinawa Island the map can jump to.
type Region struct {
	Name   string    `json:"name"`
	Cities []string  `json:"cities"`
	Center orb.Point `json:"-"`
	Zoom   int       `json:"zoom"`
}

var (
	southCities   = []string{"那覇市", "浦添市", "豊見城市", "糸満市", "南城市", "八重瀬町", "南風原町", "与那原町", "西原町"}
	centralCities = []string{"沖縄市", "うるま市", "宜野湾市", "北谷町", "嘉手納町", "読谷村", "北中城村", "中城村"}
	northCities   = []string{"名護市", "本部町", "今帰仁村", "恩納村", "金武町", "宜野座村", "大宜味村", "東村", "国頭村"}
)

// Regions lists the map presets. The first entry is the whole main island;
// the outlying islands (Miyako, Yaeyama, Kumejima and the rest) belong to
// no preset.
var Regions = []Region{
	{
		Name:   "沖縄本島",
		Cities: slices.Concat(southCities, centralCities, northCities),
		Center: orb.Point{127.8056, 26.3344},
		Zoom:   10,
	},
	{Name: "那覇・南部", Cities: southCities, Center: orb.Point{127.6809, 26.2124}, Zoom: 11},
	{Name: "中部", Cities: centralCities, Center: orb.Point{127.8056, 26.3344}, Zoom: 11},
	{Name: "北部", Cities: northCities, Center: orb.Point{127.9772, 26.5919}, Zoom: 10},
}

// GetRegion returns the preset called name.
func GetRegion(name string) (*Region, bool) {
	for i := range Regions {
		if Regions[i].Name == name {
			return &Regions[i], true
		}
	}
	return nil, false
}

// Contains reports whether city lies in r.
func (r *Region) Contains(city string) bool {
	return slices.Contains(r.Cities, city)
}

// RegionOf names the most specific region containing city, or "" when the
// city is off the main island.
func RegionOf(city string) string {
	for _, r := range Regions[1:] {
		if r.Contains(city) {
			return r.Name
		}
	}
	return ""
}
