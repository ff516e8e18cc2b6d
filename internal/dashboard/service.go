package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"salesdash/server/config"
	"salesdash/server/internal/analytics"
	"salesdash/server/internal/cache"
	"salesdash/server/internal/database"
	"salesdash/server/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	keyStats     = "stats"
	keyAreas     = "areas"
	keyInventory = "inventory"

	DefaultListingLimit = 50
	DefaultMarkerLimit  = 500
)

// Metrics receives timings of uncached computations.
type Metrics interface {
	cache.Observer
	ObserveAggregation(operation string, d time.Duration, records int)
}

type nopMetrics struct{}

func (nopMetrics) Hit(string)                                    {}
func (nopMetrics) Miss(string)                                   {}
func (nopMetrics) ObserveAggregation(string, time.Duration, int) {}

// Service answers every dashboard read. Aggregates are memoised in the
// response caches; concurrent misses on the same key share one computation.
type Service struct {
	store    database.Store
	resolver analytics.Resolver
	logger   *logrus.Logger
	metrics  Metrics
	now      cache.Clock
	pageSize int

	stats     *cache.Cache[models.GlobalStats]
	areas     *cache.Cache[models.AreaStatsResponse]
	trends    *cache.Cache[models.TrendReport]
	inventory *cache.Cache[models.InventorySummary]
	diffs     *cache.Cache[models.MarketDiff]
	markers   *cache.Cache[[]models.MapMarker]
	history   *cache.Cache[[]models.CopyHistory]

	group singleflight.Group
}

type Option func(*Service)

// WithClock replaces time.Now for both the caches and "today".
func WithClock(now cache.Clock) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(cfg *config.Config, store database.Store, resolver analytics.Resolver, logger *logrus.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	s := &Service{
		store:    store,
		resolver: resolver,
		logger:   logger,
		metrics:  nopMetrics{},
		now:      time.Now,
		pageSize: cfg.Database.PageSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	statsTTL, historyTTL := cfg.Cache.StatsTTL, cfg.Cache.HistoryTTL
	s.stats = cache.New(keyStats, statsTTL, cache.WithClock[models.GlobalStats](s.now), cache.WithObserver[models.GlobalStats](s.metrics))
	s.areas = cache.New(keyAreas, statsTTL, cache.WithClock[models.AreaStatsResponse](s.now), cache.WithObserver[models.AreaStatsResponse](s.metrics))
	s.trends = cache.New("trends", statsTTL, cache.WithClock[models.TrendReport](s.now), cache.WithObserver[models.TrendReport](s.metrics))
	s.inventory = cache.New(keyInventory, statsTTL, cache.WithClock[models.InventorySummary](s.now), cache.WithObserver[models.InventorySummary](s.metrics))
	s.diffs = cache.New("diff", statsTTL, cache.WithClock[models.MarketDiff](s.now), cache.WithObserver[models.MarketDiff](s.metrics))
	s.markers = cache.New("locations", statsTTL, cache.WithClock[[]models.MapMarker](s.now), cache.WithObserver[[]models.MapMarker](s.metrics))
	s.history = cache.New("history", historyTTL, cache.WithClock[[]models.CopyHistory](s.now), cache.WithObserver[[]models.CopyHistory](s.metrics))
	return s
}

// cached serves key from c or computes, stores and returns it. compute
// reports how many records it read.
func cached[V any](ctx context.Context, s *Service, c *cache.Cache[V], key string, compute func(ctx context.Context) (V, int, error)) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		s.logger.WithFields(logrus.Fields{"cache": c.Name(), "key": key}).Debug("Cache hit")
		return v, true, nil
	}
	s.logger.WithFields(logrus.Fields{"cache": c.Name(), "key": key}).Debug("Cache miss")

	res, err, _ := s.group.Do(c.Name()+":"+key, func() (any, error) {
		// A caller that missed just before another finished finds it here
		if v, ok := c.Peek(key); ok {
			return v, nil
		}
		start := time.Now()
		v, n, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveAggregation(c.Name(), time.Since(start), n)
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return res.(V), false, nil
}

// scan reads every record matching q.
func (s *Service) scan(ctx context.Context, q database.PropertyQuery) ([]models.Property, error) {
	records, err := database.Collect(database.ScanProperties(ctx, s.store, q, s.pageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to scan properties: %w", err)
	}
	return records, nil
}

// GlobalStats summarises the whole table for the dashboard header.
func (s *Service) GlobalStats(ctx context.Context) (models.GlobalStats, error) {
	v, _, err := cached(ctx, s, s.stats, keyStats, func(ctx context.Context) (models.GlobalStats, int, error) {
		records, err := s.scan(ctx, database.PropertyQuery{})
		if err != nil {
			return models.GlobalStats{}, 0, err
		}
		return analytics.ComputeGlobalStats(records, s.now()), len(records), nil
	})
	return v, err
}

// AreaStats rolls active listings up per municipality.
func (s *Service) AreaStats(ctx context.Context) (models.AreaStatsResponse, error) {
	v, _, err := cached(ctx, s, s.areas, keyAreas, func(ctx context.Context) (models.AreaStatsResponse, int, error) {
		records, err := s.scan(ctx, database.PropertyQuery{Active: database.Bool(true)})
		if err != nil {
			return models.AreaStatsResponse{}, 0, err
		}
		areas := analytics.ComputeAreaStats(records, s.now())
		return models.AreaStatsResponse{Success: true, Areas: areas, TotalAreas: len(areas)}, len(records), nil
	})
	return v, err
}

// Trends reports listing cohorts for the last days days.
func (s *Service) Trends(ctx context.Context, days int) (models.TrendReport, error) {
	if days <= 0 {
		days = analytics.DefaultTrendDays
	}
	v, _, err := cached(ctx, s, s.trends, strconv.Itoa(days), func(ctx context.Context) (models.TrendReport, int, error) {
		records, err := s.scan(ctx, database.PropertyQuery{})
		if err != nil {
			return models.TrendReport{}, 0, err
		}
		return analytics.ComputeTrends(records, days, s.now()), len(records), nil
	})
	return v, err
}

// Inventory is the admin view of the table.
func (s *Service) Inventory(ctx context.Context) (models.InventorySummary, error) {
	v, _, err := cached(ctx, s, s.inventory, keyInventory, func(ctx context.Context) (models.InventorySummary, int, error) {
		records, err := s.scan(ctx, database.PropertyQuery{})
		if err != nil {
			return models.InventorySummary{}, 0, err
		}
		return analytics.Summarize(records), len(records), nil
	})
	return v, err
}

// MarketDiff reports today's movements and a days-long daily series.
func (s *Service) MarketDiff(ctx context.Context, days int) (models.MarketDiff, error) {
	if days <= 0 {
		days = analytics.DefaultDiffDays
	}
	v, _, err := cached(ctx, s, s.diffs, strconv.Itoa(days), func(ctx context.Context) (models.MarketDiff, int, error) {
		records, err := s.scan(ctx, database.PropertyQuery{})
		if err != nil {
			return models.MarketDiff{}, 0, err
		}
		return analytics.ComputeMarketDiff(records, days, s.now()), len(records), nil
	})
	return v, err
}

// Markers places the newest limit active listings on the map. The bool
// reports whether the answer came from the cache.
func (s *Service) Markers(ctx context.Context, limit int) ([]models.MapMarker, bool, error) {
	if limit <= 0 {
		limit = DefaultMarkerLimit
	}
	return cached(ctx, s, s.markers, strconv.Itoa(limit), func(ctx context.Context) ([]models.MapMarker, int, error) {
		records, err := s.store.ListProperties(ctx, database.PropertyQuery{
			Active: database.Bool(true),
			Order:  database.OrderIDDesc,
			Limit:  limit,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list properties: %w", err)
		}
		return analytics.BuildMarkers(records, s.resolver), len(records), nil
	})
}

// Property returns one listing or database.ErrNotFound.
func (s *Service) Property(ctx context.Context, url string) (*models.Property, error) {
	return s.store.GetPropertyByURL(ctx, url)
}

// CopyHistory lists generated copy for url, newest first.
func (s *Service) CopyHistory(ctx context.Context, url string) ([]models.CopyHistory, error) {
	v, _, err := cached(ctx, s, s.history, url, func(ctx context.Context) ([]models.CopyHistory, int, error) {
		history, err := s.store.ListCopyHistory(ctx, url)
		if err != nil {
			return nil, 0, err
		}
		return history, len(history), nil
	})
	return v, err
}

// InvalidateHistory drops the cached history of url after new copy lands.
func (s *Service) InvalidateHistory(url string) {
	s.history.Delete(url)
}

// Invalidate drops every cached aggregate.
func (s *Service) Invalidate() {
	s.stats.Clear()
	s.areas.Clear()
	s.trends.Clear()
	s.inventory.Clear()
	s.diffs.Clear()
	s.markers.Clear()
	s.history.Clear()
}

// Warm recomputes the header stats and area rollup and stores them,
// replacing whatever was cached.
func (s *Service) Warm(ctx context.Context) error {
	records, err := s.scan(ctx, database.PropertyQuery{})
	if err != nil {
		return err
	}
	now := s.now()
	s.stats.Set(keyStats, analytics.ComputeGlobalStats(records, now))

	active := make([]models.Property, 0, len(records))
	for _, p := range records {
		if p.IsActive {
			active = append(active, p)
		}
	}
	areas := analytics.ComputeAreaStats(active, now)
	s.areas.Set(keyAreas, models.AreaStatsResponse{Success: true, Areas: areas, TotalAreas: len(areas)})
	s.inventory.Set(keyInventory, analytics.Summarize(records))

	s.logger.WithFields(logrus.Fields{
		"records": len(records),
		"areas":   len(areas),
	}).Info("Warmed dashboard caches")
	return nil
}
