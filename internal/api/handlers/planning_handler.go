package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stockplan/internal/domain"
	"stockplan/internal/engine"
	"stockplan/internal/report"
	"stockplan/internal/service"
)

// PlanningHandler serves the catalog, per-component recommendations, and
// the portfolio views.
type PlanningHandler struct {
	service *service.PlanningService
}

func NewPlanningHandler(service *service.PlanningService) *PlanningHandler {
	return &PlanningHandler{service: service}
}

// parseParams reads the planning knobs from the query string, falling back
// to the configured defaults, and enforces the operating bounds.
func (h *PlanningHandler) parseParams(c *gin.Context) (domain.PlanningParams, error) {
	params := h.service.Defaults()

	if raw := strings.TrimSpace(c.Query("lead_time_days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("lead_time_days must be an integer, got %q", raw)
		}
		params.LeadTimeDays = days
	}

	if raw := strings.TrimSpace(c.Query("service_level")); raw != "" {
		level, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, fmt.Errorf("service_level must be a number, got %q", raw)
		}
		params.ServiceLevel = level
	}

	if err := params.Validate(); err != nil {
		return params, err
	}

	return params, nil
}

func (h *PlanningHandler) ListComponents(c *gin.Context) {
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if limit < 0 {
		limit = 0
	}

	components, err := h.service.Components(c.Request.Context(), category, limit)
	if err != nil {
		respondError(c, "failed to list components", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"components": components,
		"total":      len(components),
	})
}

func (h *PlanningHandler) GetUsage(c *gin.Context) {
	componentID := c.Param("id")

	days, _ := strconv.Atoi(c.DefaultQuery("days", "90"))
	if days < 0 {
		days = 0
	}

	points, err := h.service.UsageHistory(c.Request.Context(), componentID, days)
	if err != nil {
		respondError(c, "failed to fetch usage history", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"component_id": componentID,
		"days":         days,
		"usage":        points,
	})
}

func (h *PlanningHandler) GetRecommendation(c *gin.Context) {
	componentID := c.Param("id")

	params, err := h.parseParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.service.RecommendComponent(c.Request.Context(), componentID, params)
	if err != nil {
		respondError(c, "failed to compute recommendation", err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *PlanningHandler) GetPortfolioOverview(c *gin.Context) {
	params, err := h.parseParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	overview, err := h.service.PortfolioOverview(c.Request.Context(), params)
	if err != nil {
		respondError(c, "failed to build portfolio overview", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":         overview.Summary,
		"summary_table":   report.Summary(params, overview.Summary),
		"recommendations": overview.Recommendations,
	})
}

// DownloadPortfolioCSV streams the portfolio export as a CSV attachment.
func (h *PlanningHandler) DownloadPortfolioCSV(c *gin.Context) {
	params, err := h.parseParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	overview, err := h.service.PortfolioOverview(c.Request.Context(), params)
	if err != nil {
		respondError(c, "failed to build portfolio report", err)
		return
	}

	filename := fmt.Sprintf("portfolio_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "text/csv")

	if err := report.RenderCSV(c.Writer, overview.Recommendations); err != nil {
		respondError(c, "failed to render portfolio report", err)
		return
	}
}

// respondError maps the calculation sentinels and not-found errors onto
// status codes.
func respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrComponentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	}

	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
