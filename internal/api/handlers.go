package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"salesdash/server/config"
	"salesdash/server/internal/copywriter"
	"salesdash/server/internal/dashboard"
	"salesdash/server/internal/database"
	"salesdash/server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxTrendDays = 365

// Dashboard is the read side the handlers serve from.
type Dashboard interface {
	GlobalStats(ctx context.Context) (models.GlobalStats, error)
	AreaStats(ctx context.Context) (models.AreaStatsResponse, error)
	Trends(ctx context.Context, days int) (models.TrendReport, error)
	Inventory(ctx context.Context) (models.InventorySummary, error)
	MarketDiff(ctx context.Context, days int) (models.MarketDiff, error)
	Listings(ctx context.Context, q dashboard.ListingQuery) ([]models.Property, error)
	Markers(ctx context.Context, limit int) ([]models.MapMarker, bool, error)
	Property(ctx context.Context, url string) (*models.Property, error)
	CopyHistory(ctx context.Context, url string) ([]models.CopyHistory, error)
}

// HistorySink accepts generated copy for asynchronous persistence.
type HistorySink interface {
	Push(batch []models.CopyHistory) error
}

// CopyRecorder counts copy generations per model.
type CopyRecorder interface {
	RecordCopyGeneration(model string, ok bool)
}

type Handler struct {
	dashboard Dashboard
	generator copywriter.Generator
	history   HistorySink
	recorder  CopyRecorder
	logger    *logrus.Logger
	now       func() time.Time
}

type PropertyURLRequest struct {
	URL string `json:"url" binding:"required"`
}

type GenerateRequest struct {
	URL   string `json:"url" binding:"required"`
	Model string `json:"model"`
}

// listingFilters accepts both the API spelling and the dashboard's
// camelCase query values.
var listingFilters = map[string]dashboard.ListingFilter{
	"":           dashboard.FilterNone,
	"active":     dashboard.FilterNone,
	"new_today":  dashboard.FilterNewToday,
	"newToday":   dashboard.FilterNewToday,
	"sold_today": dashboard.FilterSoldToday,
	"soldToday":  dashboard.FilterSoldToday,
	"inactive":   dashboard.FilterInactive,
}

func NewHandler(d Dashboard, generator copywriter.Generator, history HistorySink, recorder CopyRecorder, logger *logrus.Logger) *Handler {
	return &Handler{
		dashboard: d,
		generator: generator,
		history:   history,
		recorder:  recorder,
		logger:    orDefaultLogger(logger),
		now:       time.Now,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.dashboard.GlobalStats(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get stats")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetAreaStats(c *gin.Context) {
	areas, err := h.dashboard.AreaStats(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get area stats")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch area statistics"})
		return
	}
	c.JSON(http.StatusOK, areas)
}

func (h *Handler) GetTrends(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 || days > maxTrendDays {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "days must be between 1 and 365"})
		return
	}

	report, err := h.dashboard.Trends(c.Request.Context(), days)
	if err != nil {
		h.logger.WithError(err).WithField("days", days).Error("Failed to get trends")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch trends"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) GetMarketDiff(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days <= 0 || days > maxTrendDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
		return
	}

	diff, err := h.dashboard.MarketDiff(c.Request.Context(), days)
	if err != nil {
		h.logger.WithError(err).WithField("days", days).Error("Failed to get market diff")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics"})
		return
	}
	c.JSON(http.StatusOK, diff)
}

func (h *Handler) GetAdminStats(c *gin.Context) {
	summary, err := h.dashboard.Inventory(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get inventory summary")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": config.SupportedCategories})
}

func (h *Handler) GetProperties(c *gin.Context) {
	filter, ok := listingFilters[c.Query("filter")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown filter"})
		return
	}

	var category models.Category
	if raw := c.Query("category"); raw != "" {
		if category, ok = models.ParseCategory(raw); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
			return
		}
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(dashboard.DefaultListingLimit)))
	if err != nil || limit <= 0 {
		limit = dashboard.DefaultListingLimit
	}

	properties, err := h.dashboard.Listings(c.Request.Context(), dashboard.ListingQuery{
		Filter:   filter,
		Category: category,
		Limit:    limit,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch properties"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

func (h *Handler) GetProperty(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	property, err := h.dashboard.Property(c.Request.Context(), url)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("url", url).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch property"})
		return
	}

	c.Header("Cache-Control", "public, max-age=300, stale-while-revalidate=600")
	c.JSON(http.StatusOK, property)
}

func (h *Handler) GenerateCopy(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if h.generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Copy generation is not configured"})
		return
	}
	if req.Model == "" {
		req.Model = copywriter.DefaultModel
	}
	if _, err := copywriter.ResolveModel(req.Model); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown model"})
		return
	}

	ctx := c.Request.Context()
	property, err := h.dashboard.Property(ctx, req.URL)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("url", req.URL).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate copy"})
		return
	}

	text, err := h.generator.Generate(ctx, property, req.Model)
	if h.recorder != nil {
		h.recorder.RecordCopyGeneration(req.Model, err == nil)
	}
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{"url": req.URL, "model": req.Model}).Error("Failed to generate copy")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate copy"})
		return
	}

	// The copy is returned even if it cannot be queued for saving
	record := models.CopyHistory{
		ID:          uuid.NewString(),
		PropertyURL: req.URL,
		CopyText:    text,
		Model:       req.Model,
		IsActive:    true,
		CreatedAt:   h.now(),
	}
	if h.history != nil {
		if err := h.history.Push([]models.CopyHistory{record}); err != nil {
			h.logger.WithError(err).WithField("url", req.URL).Warn("Failed to queue copy history")
		}
	}

	c.JSON(http.StatusOK, gin.H{"copy": text})
}

func (h *Handler) GetCopyHistory(c *gin.Context) {
	var req PropertyURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	history, err := h.dashboard.CopyHistory(c.Request.Context(), req.URL)
	if err != nil {
		h.logger.WithError(err).WithField("url", req.URL).Error("Failed to get copy history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}
	if history == nil {
		history = []models.CopyHistory{}
	}

	c.Header("Cache-Control", "public, max-age=180, stale-while-revalidate=300")
	c.JSON(http.StatusOK, gin.H{"history": history})
}
