package analytics

import (
	"time"

	"salesdash/server/internal/models"
)

// Summarize counts the whole table, active and inactive alike.
func Summarize(records []models.Property) models.InventorySummary {
	summary := models.InventorySummary{
		Categories: make(map[models.Category]int, len(models.AllCategories)),
	}
	for _, c := range models.AllCategories {
		summary.Categories[c] = 0
	}

	var lastUpdated time.Time
	for i := range records {
		p := &records[i]
		summary.Total++
		if p.IsActive {
			summary.Active++
		} else {
			summary.Inactive++
		}
		summary.Categories[p.Category]++

		if p.UpdatedAt.After(lastUpdated) {
			lastUpdated = p.UpdatedAt
		}
	}

	if !lastUpdated.IsZero() {
		summary.LastUpdated = &lastUpdated
	}
	return summary
}
