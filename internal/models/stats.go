package models

import "time"

// TypeBreakdown counts active listings per rental/sale split.
type TypeBreakdown struct {
	Rental int `json:"rental"`
	Sale   int `json:"sale"`
}

// Add increments the bucket matching t.
func (b *TypeBreakdown) Add(t CategoryType) {
	if t == CategoryTypeRental {
		b.Rental++
		return
	}
	b.Sale++
}

type CategoryCount struct {
	CategoryName string `json:"category_name_ja"`
	GenreName    string `json:"genre_name_ja"`
	Count        int    `json:"count"`
}

type GlobalStats struct {
	Total      int              `json:"total"`
	NewToday   int              `json:"newToday"`
	SoldToday  int              `json:"soldToday"`
	ByType     TypeBreakdown    `json:"byType"`
	ByCategory []CategoryCount  `json:"byCategory"`
	Categories map[Category]int `json:"categories"`
}

// AreaStatistic is derived per request and never persisted.
type AreaStatistic struct {
	City            string           `json:"city"`
	TotalProperties int              `json:"totalProperties"`
	ByCategory      map[Category]int `json:"byCategory"`
	ByType          TypeBreakdown    `json:"byType"`
	AvgPrice        int64            `json:"avgPrice"`
	MedianPrice     int64            `json:"medianPrice"`
	MinPrice        int64            `json:"minPrice"`
	MaxPrice        int64            `json:"maxPrice"`
	NewThisWeek     int              `json:"newThisWeek"`
	NewThisMonth    int              `json:"newThisMonth"`
	ActivityScore   int              `json:"activityScore"`
}

type AreaStatsResponse struct {
	Success    bool            `json:"success"`
	Areas      []AreaStatistic `json:"areas"`
	TotalAreas int             `json:"totalAreas"`
}

type DailyTrend struct {
	Date           string         `json:"date"`
	NewProperties  int            `json:"newProperties"`
	SoldProperties int            `json:"soldProperties"`
	NetChange      int            `json:"netChange"`
	ByCategory     map[string]int `json:"byCategory"`
	ByType         TypeBreakdown  `json:"byType"`
	AvgPrice       int64          `json:"avgPrice"`
	PriceCount     int            `json:"priceCount"`
}

type TrendSummary struct {
	TotalNew     int `json:"totalNew"`
	TotalSold    int `json:"totalSold"`
	NetChange    int `json:"netChange"`
	AvgDailyNew  int `json:"avgDailyNew"`
	AvgDailySold int `json:"avgDailySold"`
	GrowthRate   int `json:"growthRate"`
}

type TrendPeriod struct {
	Days int    `json:"days"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type TrendReport struct {
	Success bool         `json:"success"`
	Period  TrendPeriod  `json:"period"`
	Summary TrendSummary `json:"summary"`
	Trends  []DailyTrend `json:"trends"`
}

// InventorySummary is the admin overview of the whole table.
type InventorySummary struct {
	Total       int              `json:"total"`
	Active      int              `json:"active"`
	Inactive    int              `json:"inactive"`
	Categories  map[Category]int `json:"categories"`
	LastUpdated *time.Time       `json:"lastUpdated"`
}

// MapMarker places one listing on the map. Listings without a known
// coordinate never become markers.
type MapMarker struct {
	ID           int64        `json:"id"`
	URL          string       `json:"url"`
	Title        string       `json:"title"`
	Category     Category     `json:"category"`
	CategoryType CategoryType `json:"categoryType"`
	GenreName    string       `json:"genreName"`
	Location     string       `json:"location"`
	City         string       `json:"city"`
	Price        string       `json:"price"`
	Image        *string      `json:"image"`
	Coordinates  [2]float64   `json:"coordinates"`
}

// MarketDiff is the day-over-day view of the table: today's movements,
// health ratios, the rental/sale mix and a daily new/sold series.
type MarketDiff struct {
	Summary    DiffSummary       `json:"summary"`
	Health     MarketHealth      `json:"health"`
	Market     MarketComposition `json:"market"`
	Categories []CategoryDiff    `json:"categories"`
	Trend      []DailyChange     `json:"trend"`
}

type DiffSummary struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Inactive     int `json:"inactive"`
	NewToday     int `json:"newToday"`
	UpdatedToday int `json:"updatedToday"`
	SoldToday    int `json:"soldToday"`
}

// MarketHealth holds percentages rounded for display.
type MarketHealth struct {
	ActiveRate   float64 `json:"activeRate"`
	InactiveRate float64 `json:"inactiveRate"`
	NewRate      float64 `json:"newRate"`
}

type MarketComposition struct {
	Rental           int     `json:"rental"`
	Sale             int     `json:"sale"`
	RentalPercentage float64 `json:"rentalPercentage"`
	SalePercentage   float64 `json:"salePercentage"`
}

type CategoryDiff struct {
	Category   string   `json:"category"`
	CategoryID Category `json:"categoryId"`
	Active     int      `json:"active"`
	NewToday   int      `json:"newToday"`
	Inactive   int      `json:"inactive"`
}

type DailyChange struct {
	Date string `json:"date"`
	New  int    `json:"new"`
	Sold int    `json:"sold"`
	Net  int    `json:"net"`
}
