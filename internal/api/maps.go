package api

import (
	"net/http"
	"strconv"

	"salesdash/server/internal/dashboard"
	"salesdash/server/internal/geometry"
	"salesdash/server/internal/models"

	"github.com/gin-gonic/gin"
)

type LocationsResponse struct {
	Success  bool               `json:"success"`
	Count    int                `json:"count"`
	Markers  []models.MapMarker `json:"markers"`
	Cached   bool               `json:"cached"`
	Viewport geometry.View      `json:"viewport"`
}

type RegionResponse struct {
	Name   string     `json:"name"`
	Cities []string   `json:"cities"`
	Center [2]float64 `json:"center"`
	Zoom   int        `json:"zoom"`
}

// GetLocations places the newest active listings on the map. With
// format=geojson the markers come back as a FeatureCollection.
func (h *Handler) GetLocations(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(dashboard.DefaultMarkerLimit)))
	if err != nil || limit <= 0 {
		limit = dashboard.DefaultMarkerLimit
	}

	var region *geometry.Region
	if name := c.Query("region"); name != "" {
		var ok bool
		if region, ok = geometry.GetRegion(name); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unknown region"})
			return
		}
	}

	markers, cached, err := h.dashboard.Markers(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get map markers")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch locations"})
		return
	}
	if region != nil {
		markers = geometry.FilterRegion(markers, region)
	}
	if markers == nil {
		markers = []models.MapMarker{}
	}

	if c.Query("format") == "geojson" {
		c.JSON(http.StatusOK, geometry.MarkerCollection(markers))
		return
	}

	c.JSON(http.StatusOK, LocationsResponse{
		Success:  true,
		Count:    len(markers),
		Markers:  markers,
		Cached:   cached,
		Viewport: geometry.Viewport(geometry.MarkerPoints(markers)),
	})
}

// GetRegions lists the map presets.
func (h *Handler) GetRegions(c *gin.Context) {
	regions := make([]RegionResponse, len(geometry.Regions))
	for i, r := range geometry.Regions {
		regions[i] = regionResponse(r)
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

func (h *Handler) GetRegion(c *gin.Context) {
	r, ok := geometry.GetRegion(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Region not found"})
		return
	}
	c.JSON(http.StatusOK, regionResponse(*r))
}

func regionResponse(r geometry.Region) RegionResponse {
	cities := r.Cities
	if cities == nil {
		cities = []string{}
	}
	return RegionResponse{
		Name:   r.Name,
		Cities: cities,
		Center: [2]float64{r.Center.Lat(), r.Center.Lon()},
		Zoom:   r.Zoom,
	}
}
