package analytics

import (
	"math"
	"time"

	"salesdash/server/config"
	"salesdash/server/internal/models"
)

// DefaultDiffDays is the length of the daily series when none is asked for.
const DefaultDiffDays = 7

// ComputeMarketDiff reports today's movements against the whole table and a
// daily new/sold series for the days ending at ref. A listing counts as sold
// on the Tokyo day of its last sighting, as in ComputeGlobalStats.
func ComputeMarketDiff(records []models.Property, days int, ref time.Time) models.MarketDiff {
	if days <= 0 {
		days = DefaultDiffDays
	}
	start, end := DayWindow(ref)

	perCategory := make(map[models.Category]*models.CategoryDiff, len(config.SupportedCategories))
	diff := models.MarketDiff{
		Categories: make([]models.CategoryDiff, len(config.SupportedCategories)),
	}
	for i, info := range config.SupportedCategories {
		diff.Categories[i] = models.CategoryDiff{
			Category:   info.TypeName + "_" + info.GenreName,
			CategoryID: info.ID,
		}
		perCategory[info.ID] = &diff.Categories[i]
	}

	created := make(map[string]int)
	sold := make(map[string]int)
	summary := &diff.Summary
	for i := range records {
		p := &records[i]
		cat := perCategory[p.Category]
		summary.Total++

		if !p.CreatedAt.IsZero() {
			created[tokyoDate(p.CreatedAt)]++
		}
		newToday := inWindow(p.CreatedAt, start, end)
		if newToday {
			summary.NewToday++
		}
		if inWindow(p.UpdatedAt, start, end) {
			summary.UpdatedToday++
		}

		if p.IsActive {
			summary.Active++
			if p.Category.Type() == models.CategoryTypeRental {
				diff.Market.Rental++
			} else {
				diff.Market.Sale++
			}
		} else {
			summary.Inactive++
			if !p.LastSeenDate.IsZero() {
				sold[tokyoDate(p.LastSeenDate)]++
			}
			if inWindow(p.LastSeenDate, start, end) {
				summary.SoldToday++
			}
		}

		if cat != nil {
			if p.IsActive {
				cat.Active++
			} else {
				cat.Inactive++
			}
			if newToday {
				cat.NewToday++
			}
		}
	}

	if summary.Total > 0 {
		diff.Health.ActiveRate = roundTo(percent(summary.Active, summary.Total), 1)
		diff.Health.InactiveRate = roundTo(100-percent(summary.Active, summary.Total), 1)
	}
	diff.Health.NewRate = roundTo(percent(summary.NewToday, summary.Active), 2)
	diff.Market.RentalPercentage = roundTo(percent(diff.Market.Rental, summary.Active), 1)
	diff.Market.SalePercentage = roundTo(percent(diff.Market.Sale, summary.Active), 1)

	diff.Trend = make([]models.DailyChange, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := tokyoDate(start.AddDate(0, 0, -i))
		change := models.DailyChange{Date: date, New: created[date], Sold: sold[date]}
		change.Net = change.New - change.Sold
		diff.Trend = append(diff.Trend, change)
	}
	return diff
}

// percent is part/whole as a percentage, 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func roundTo(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return roundHalfUp(x*scale) / scale
}
