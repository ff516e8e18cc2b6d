package analytics

import (
	"testing"
	"time"

	"salesdash/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokyoDay(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 0, 0, 0, 0, models.Tokyo)
}

func TestComputeTrends(t *testing.T) {
	ref := time.Date(2024, 3, 10, 12, 0, 0, 0, models.Tokyo)

	rent := listing(models.CategoryResidentialRental, map[string]string{"家賃": "10万円"})
	rent.GenreName = "住居"
	rent.FirstSeenDate = tokyoDay(3, 5)

	sameDaySale := listing(models.CategoryHouse, map[string]string{"価格": "2,000万円"})
	sameDaySale.GenreName = "戸建"
	sameDaySale.IsActive = false
	sameDaySale.FirstSeenDate = tokyoDay(3, 5)
	sameDaySale.LastSeenDate = tokyoDay(3, 5)

	condo := listing(models.CategoryCondo, nil)
	condo.GenreName = "マンション"
	condo.FirstSeenDate = tokyoDay(3, 8)

	oldSoldRecently := listing(models.CategoryLand, nil)
	oldSoldRecently.GenreName = "土地"
	oldSoldRecently.IsActive = false
	oldSoldRecently.FirstSeenDate = tokyoDay(2, 1)
	oldSoldRecently.LastSeenDate = tokyoDay(3, 6)

	oldActive := listing(models.CategoryResidentialRental, nil)
	oldActive.FirstSeenDate = tokyoDay(2, 1)

	oldSold := listing(models.CategoryHouse, nil)
	oldSold.IsActive = false
	oldSold.FirstSeenDate = tokyoDay(1, 1)
	oldSold.LastSeenDate = tokyoDay(1, 2)

	undated := listing(models.CategoryHouse, nil)

	records := []models.Property{rent, sameDaySale, condo, oldSoldRecently, oldActive, oldSold, undated}
	report := ComputeTrends(records, 7, ref)

	assert.True(t, report.Success)
	assert.Equal(t, models.TrendPeriod{Days: 7, From: "2024-02-01", To: "2024-03-08"}, report.Period)

	require.Len(t, report.Trends, 3)
	assert.Equal(t, "2024-02-01", report.Trends[0].Date)
	assert.Equal(t, 1, report.Trends[0].NewProperties)
	assert.Equal(t, 0, report.Trends[0].SoldProperties)

	day := report.Trends[1]
	assert.Equal(t, "2024-03-05", day.Date)
	assert.Equal(t, 2, day.NewProperties)
	assert.Equal(t, 1, day.SoldProperties)
	assert.Equal(t, 1, day.NetChange)
	assert.Equal(t, models.TypeBreakdown{Rental: 1, Sale: 1}, day.ByType)
	assert.Equal(t, map[string]int{"住居": 1, "戸建": 1}, day.ByCategory)
	assert.Equal(t, int64(1005), day.AvgPrice)
	assert.Equal(t, 2, day.PriceCount)

	assert.Equal(t, "2024-03-08", report.Trends[2].Date)
	assert.Equal(t, 0, report.Trends[2].PriceCount)
	assert.Equal(t, int64(0), report.Trends[2].AvgPrice)

	assert.Equal(t, models.TrendSummary{
		TotalNew:     4,
		TotalSold:    1,
		NetChange:    3,
		AvgDailyNew:  1,
		AvgDailySold: 0,
		GrowthRate:   50,
	}, report.Summary)
}

func TestComputeTrends_Empty(t *testing.T) {
	report := ComputeTrends(nil, 0, time.Now())

	assert.True(t, report.Success)
	assert.Equal(t, DefaultTrendDays, report.Period.Days)
	assert.Empty(t, report.Period.From)
	assert.NotNil(t, report.Trends)
	assert.Empty(t, report.Trends)
	assert.Equal(t, models.TrendSummary{}, report.Summary)
}

func TestComputeTrends_SingleDayHasNoGrowth(t *testing.T) {
	ref := time.Date(2024, 3, 10, 12, 0, 0, 0, models.Tokyo)
	p := listing(models.CategoryHouse, nil)
	p.FirstSeenDate = tokyoDay(3, 9)

	report := ComputeTrends([]models.Property{p, p, p}, 30, ref)
	require.Len(t, report.Trends, 1)
	assert.Equal(t, 3, report.Summary.AvgDailyNew)
	assert.Zero(t, report.Summary.GrowthRate)
}

func TestComputeTrends_NegativeHalfRoundsUp(t *testing.T) {
	ref := time.Date(2024, 3, 10, 12, 0, 0, 0, models.Tokyo)

	var records []models.Property
	for day, count := range map[int]int{1: 4, 2: 4, 3: 2, 4: 3} {
		for range count {
			p := listing(models.CategoryHouse, nil)
			p.FirstSeenDate = tokyoDay(3, day)
			records = append(records, p)
		}
	}

	report := ComputeTrends(records, 30, ref)
	require.Len(t, report.Trends, 4)
	// (2.5 - 4) / 4 = -37.5%
	assert.Equal(t, -37, report.Summary.GrowthRate)
	// 13 / 4 = 3.25
	assert.Equal(t, 3, report.Summary.AvgDailyNew)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 3.0, roundHalfUp(2.5))
	assert.Equal(t, -2.0, roundHalfUp(-2.5))
	assert.Equal(t, -3.0, roundHalfUp(-2.6))
	assert.Equal(t, 0.0, roundHalfUp(0.4))
}

func TestTrendCutoff(t *testing.T) {
	// 08:00 JST on the 10th is 23:00 UTC on the 9th
	ref := time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-03", TrendCutoff(ref, 7))
}
