package dashboard

import (
	"context"
	"fmt"

	"salesdash/server/internal/analytics"
	"salesdash/server/internal/database"
	"salesdash/server/internal/models"
)

// ListingFilter narrows the property list to one of the header counters.
type ListingFilter string

const (
	FilterNone      ListingFilter = ""
	FilterNewToday  ListingFilter = "new_today"
	FilterSoldToday ListingFilter = "sold_today"
	FilterInactive  ListingFilter = "inactive"
)

// ParseListingFilter reports whether s names a known filter.
func ParseListingFilter(s string) (ListingFilter, bool) {
	switch f := ListingFilter(s); f {
	case FilterNone, FilterNewToday, FilterSoldToday, FilterInactive:
		return f, true
	}
	return "", false
}

type ListingQuery struct {
	Filter   ListingFilter
	Category models.Category
	Limit    int
}

// Listings returns up to q.Limit properties. Without a filter these are the
// most recently created active listings, with FilterInactive the most
// recently created inactive ones; the today filters walk the table page
// by page and stop as soon as the limit is reached.
func (s *Service) Listings(ctx context.Context, q ListingQuery) ([]models.Property, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultListingLimit
	}

	if q.Filter == FilterNone || q.Filter == FilterInactive {
		properties, err := s.store.ListProperties(ctx, database.PropertyQuery{
			Active:   database.Bool(q.Filter == FilterNone),
			Category: q.Category,
			Order:    database.OrderCreatedDesc,
			Limit:    q.Limit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list properties: %w", err)
		}
		return properties, nil
	}

	start, end := analytics.DayWindow(s.now())
	base := database.PropertyQuery{Category: q.Category}
	match := func(p *models.Property) bool {
		return !p.CreatedAt.Before(start) && p.CreatedAt.Before(end)
	}
	if q.Filter == FilterSoldToday {
		base.Active = database.Bool(false)
		match = func(p *models.Property) bool {
			return !p.LastSeenDate.Before(start) && p.LastSeenDate.Before(end)
		}
	}

	properties := make([]models.Property, 0, q.Limit)
	for p, err := range database.ScanProperties(ctx, s.store, base, s.pageSize) {
		if err != nil {
			return nil, fmt.Errorf("failed to scan properties: %w", err)
		}
		if match(&p) {
			properties = append(properties, p)
			if len(properties) == q.Limit {
				break
			}
		}
	}
	return properties, nil
}
