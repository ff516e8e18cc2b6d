package analytics

import (
	"time"

	"salesdash/server/config"
	"salesdash/server/internal/models"
)

// DayWindow returns the Tokyo calendar day containing ref as the half-open
// interval [start, end).
func DayWindow(ref time.Time) (start, end time.Time) {
	local := ref.In(models.Tokyo)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, models.Tokyo)
	return start, start.AddDate(0, 0, 1)
}

func inWindow(t, start, end time.Time) bool {
	return !t.IsZero() && !t.Before(start) && t.Before(end)
}

// ComputeGlobalStats summarises the whole table as seen at ref. records
// must include inactive listings for soldToday to be meaningful.
func ComputeGlobalStats(records []models.Property, ref time.Time) models.GlobalStats {
	start, end := DayWindow(ref)
	stats := models.GlobalStats{
		ByCategory: []models.CategoryCount{},
	}

	for i := range records {
		p := &records[i]

		if inWindow(p.CreatedAt, start, end) {
			stats.NewToday++
		}
		if !p.IsActive {
			if inWindow(p.LastSeenDate, start, end) {
				stats.SoldToday++
			}
			continue
		}

		stats.Total++
		stats.ByType.Add(p.CategoryType)
	}

	stats.Categories = ComputeCategoryBreakdown(records, models.AllCategories)
	for _, info := range config.SupportedCategories {
		count := stats.Categories[info.ID]
		if count == 0 {
			continue
		}
		stats.ByCategory = append(stats.ByCategory, models.CategoryCount{
			CategoryName: info.TypeName,
			GenreName:    info.GenreName,
			Count:        count,
		})
	}
	return stats
}

// ComputeCategoryBreakdown counts active records per category. Every
// category in categories is present in the result, zero when absent.
func ComputeCategoryBreakdown(records []models.Property, categories []models.Category) map[models.Category]int {
	counts := make(map[models.Category]int, len(categories))
	for _, c := range categories {
		counts[c] = 0
	}
	for i := range records {
		if !records[i].IsActive {
			continue
		}
		if _, ok := counts[records[i].Category]; ok {
			counts[records[i].Category]++
		}
	}
	return counts
}
