package analytics

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"salesdash/server/internal/models"
)

// UnknownArea labels listings whose address yields no usable area name.
const UnknownArea = "不明"

const prefecture = "沖縄県"

var (
	locationKeys = []string{"所在地", "住所", "location"}
	priceKeys    = []string{"家賃", "価格", "販売価格"}

	municipalityPattern = regexp.MustCompile(`([^市]+市|[^町]+町|[^村]+村)`)
	pricePattern        = regexp.MustCompile(`[\d,]+`)
)

// Location returns the raw address of p, or "" when none is recorded.
func Location(p *models.Property) string {
	return p.Attribute(locationKeys...)
}

// AreaLabel reduces a free-form address to the municipality it names,
// e.g. "沖縄県那覇市おもろまち1-1" becomes "那覇市".
func AreaLabel(location string) string {
	if location == "" || location == UnknownArea {
		return UnknownArea
	}

	location = strings.TrimSpace(strings.Replace(location, prefecture, "", 1))
	if m := municipalityPattern.FindStringSubmatch(location); m != nil {
		return m[1]
	}
	if fields := strings.Fields(location); len(fields) > 0 {
		return fields[0]
	}
	return UnknownArea
}

// PropertyArea is AreaLabel applied to the address of p.
func PropertyArea(p *models.Property) string {
	return AreaLabel(Location(p))
}

// PriceValue reads the leading number of the first populated price field.
// "8.5万円" yields 8 and "3,500万円" yields 3500; no match yields 0.
func PriceValue(p *models.Property) int64 {
	raw := p.Attribute(priceKeys...)
	m := pricePattern.FindString(raw)
	if m == "" {
		return 0
	}

	v, err := strconv.ParseInt(strings.ReplaceAll(m, ",", ""), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// daysSince counts whole days from t to ref, flooring toward negative
// infinity for t in the future.
func daysSince(ref, t time.Time) int {
	return int(math.Floor(ref.Sub(t).Hours() / 24))
}

type areaAccumulator struct {
	stat   models.AreaStatistic
	prices []int64
}

// ComputeAreaStats groups active listings by area label. The result is
// ordered by listing count, descending; areas with equal counts keep the
// order in which they were first encountered.
func ComputeAreaStats(records []models.Property, ref time.Time) []models.AreaStatistic {
	var (
		order []string
		areas = make(map[string]*areaAccumulator)
	)

	for i := range records {
		p := &records[i]
		city := PropertyArea(p)

		acc, ok := areas[city]
		if !ok {
			acc = &areaAccumulator{stat: models.AreaStatistic{
				City:       city,
				ByCategory: make(map[models.Category]int),
			}}
			areas[city] = acc
			order = append(order, city)
		}

		acc.stat.TotalProperties++
		acc.stat.ByType.Add(p.CategoryType)
		acc.stat.ByCategory[p.Category]++

		if price := PriceValue(p); price > 0 {
			acc.prices = append(acc.prices, price)
		}

		if !p.FirstSeenDate.IsZero() {
			days := daysSince(ref, p.FirstSeenDate)
			if days <= 7 {
				acc.stat.NewThisWeek++
			}
			if days <= 30 {
				acc.stat.NewThisMonth++
			}
		}
	}

	result := make([]models.AreaStatistic, 0, len(order))
	for _, city := range order {
		acc := areas[city]
		finalizeArea(&acc.stat, acc.prices)
		result = append(result, acc.stat)
	}

	slices.SortStableFunc(result, func(a, b models.AreaStatistic) int {
		return b.TotalProperties - a.TotalProperties
	})
	return result
}

func finalizeArea(stat *models.AreaStatistic, prices []int64) {
	slices.Sort(prices)

	if n := len(prices); n > 0 {
		var sum int64
		for _, p := range prices {
			sum += p
		}
		stat.AvgPrice = int64(roundHalfUp(float64(sum) / float64(n)))
		// Upper-middle element for even n, never interpolated
		stat.MedianPrice = prices[n/2]
		stat.MinPrice = prices[0]
		stat.MaxPrice = prices[n-1]
	}

	stat.ActivityScore = ActivityScore(len(stat.ByCategory), stat.TotalProperties, stat.NewThisWeek)
}

// ActivityScore weighs category diversity, volume (capped at 100) and
// fresh listings.
func ActivityScore(distinctCategories, total, newThisWeek int) int {
	return 10*distinctCategories + min(total, 100) + 5*newThisWeek
}
