package analytics

import (
	"math"
	"slices"
	"strings"
	"time"

	"salesdash/server/internal/models"
)

const dateLayout = "2006-01-02"

// DefaultTrendDays is the window used when a caller does not ask for one.
const DefaultTrendDays = 30

func tokyoDate(t time.Time) string {
	return t.In(models.Tokyo).Format(dateLayout)
}

// TrendCutoff is the first Tokyo calendar day inside a days-long window
// ending at ref.
func TrendCutoff(ref time.Time, days int) string {
	return tokyoDate(ref.AddDate(0, 0, -days))
}

type trendAccumulator struct {
	trend  models.DailyTrend
	prices []int64
}

// ComputeTrends buckets listings by the day they were first seen. A listing
// counts as sold in its bucket only when it went inactive on that same day.
// Listings first seen before the window but sold inside it still land in
// their (older) first-seen bucket.
func ComputeTrends(records []models.Property, days int, ref time.Time) models.TrendReport {
	if days <= 0 {
		days = DefaultTrendDays
	}
	cutoff := TrendCutoff(ref, days)

	buckets := make(map[string]*trendAccumulator)
	for i := range records {
		p := &records[i]
		if p.FirstSeenDate.IsZero() {
			continue
		}

		firstSeen := tokyoDate(p.FirstSeenDate)
		lastSeen := ""
		if !p.LastSeenDate.IsZero() {
			lastSeen = tokyoDate(p.LastSeenDate)
		}
		if firstSeen < cutoff && (p.IsActive || lastSeen < cutoff) {
			continue
		}

		acc, ok := buckets[firstSeen]
		if !ok {
			acc = &trendAccumulator{trend: models.DailyTrend{
				Date:       firstSeen,
				ByCategory: make(map[string]int),
			}}
			buckets[firstSeen] = acc
		}

		acc.trend.NewProperties++
		acc.trend.ByType.Add(p.CategoryType)
		if p.GenreName != "" {
			acc.trend.ByCategory[p.GenreName]++
		}
		if price := PriceValue(p); price > 0 {
			acc.prices = append(acc.prices, price)
		}
		if !p.IsActive && lastSeen == firstSeen {
			acc.trend.SoldProperties++
		}
	}

	trends := make([]models.DailyTrend, 0, len(buckets))
	for _, acc := range buckets {
		t := acc.trend
		t.NetChange = t.NewProperties - t.SoldProperties
		t.PriceCount = len(acc.prices)
		if t.PriceCount > 0 {
			var sum int64
			for _, p := range acc.prices {
				sum += p
			}
			t.AvgPrice = int64(roundHalfUp(float64(sum) / float64(t.PriceCount)))
		}
		trends = append(trends, t)
	}
	slices.SortFunc(trends, func(a, b models.DailyTrend) int {
		return strings.Compare(a.Date, b.Date)
	})

	report := models.TrendReport{
		Success: true,
		Period:  models.TrendPeriod{Days: days},
		Summary: summarizeTrends(trends),
		Trends:  trends,
	}
	if n := len(trends); n > 0 {
		report.Period.From = trends[0].Date
		report.Period.To = trends[n-1].Date
	}
	return report
}

func summarizeTrends(trends []models.DailyTrend) models.TrendSummary {
	var s models.TrendSummary
	for _, t := range trends {
		s.TotalNew += t.NewProperties
		s.TotalSold += t.SoldProperties
	}
	s.NetChange = s.TotalNew - s.TotalSold

	n := len(trends)
	if n == 0 {
		return s
	}
	s.AvgDailyNew = int(roundHalfUp(float64(s.TotalNew) / float64(n)))
	s.AvgDailySold = int(roundHalfUp(float64(s.TotalSold) / float64(n)))

	mid := n / 2
	firstAvg := meanNew(trends[:mid])
	secondAvg := meanNew(trends[mid:])
	if firstAvg > 0 {
		s.GrowthRate = int(roundHalfUp((secondAvg - firstAvg) / firstAvg * 100))
	}
	return s
}

func meanNew(trends []models.DailyTrend) float64 {
	if len(trends) == 0 {
		return 0
	}
	total := 0
	for _, t := range trends {
		total += t.NewProperties
	}
	return float64(total) / float64(len(trends))
}

// roundHalfUp rounds halves toward positive infinity, so -37.5 becomes -37.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
