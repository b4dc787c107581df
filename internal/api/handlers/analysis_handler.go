package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stockplan/internal/domain"
	"stockplan/internal/pipeline"
)

// AnalysisRunner executes one batch analysis. *pipeline.Orchestrator
// satisfies it.
type AnalysisRunner interface {
	Run(ctx context.Context, params domain.PlanningParams) (*pipeline.AnalysisRun, error)
}

// RunReader serves stored run records. *pipeline.RunStore satisfies it.
type RunReader interface {
	GetRun(ctx context.Context, id string) (*pipeline.AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]pipeline.AnalysisRun, error)
}

// RecommendationReader lists stored recommendations. The Postgres
// recommendation repository satisfies it.
type RecommendationReader interface {
	Latest(ctx context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, error)
}

// AnalysisHandler exposes batch analysis runs over HTTP.
type AnalysisHandler struct {
	runner   AnalysisRunner
	runs     RunReader
	recs     RecommendationReader
	defaults domain.PlanningParams
}

func NewAnalysisHandler(runner AnalysisRunner, runs RunReader, recs RecommendationReader, defaults domain.PlanningParams) *AnalysisHandler {
	return &AnalysisHandler{runner: runner, runs: runs, recs: recs, defaults: defaults}
}

type triggerAnalysisRequest struct {
	LeadTimeDays *int     `json:"lead_time_days"`
	ServiceLevel *float64 `json:"service_level"`
}

// TriggerAnalysis runs a batch analysis over the whole catalog and returns
// the finished run record.
func (h *AnalysisHandler) TriggerAnalysis(c *gin.Context) {
	params := h.defaults

	var req triggerAnalysisRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
		if req.LeadTimeDays != nil {
			params.LeadTimeDays = *req.LeadTimeDays
		}
		if req.ServiceLevel != nil {
			params.ServiceLevel = *req.ServiceLevel
		}
	}

	if err := params.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := h.runner.Run(c.Request.Context(), params)
	if err != nil {
		status := http.StatusInternalServerError
		body := gin.H{"error": "analysis run failed", "details": err.Error()}
		if run != nil {
			body["run"] = run
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusCreated, run)
}

func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 {
		limit = 20
	}

	runs, err := h.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list analyses", "details": err.Error()})
		return
	}
	if runs == nil {
		runs = make([]pipeline.AnalysisRun, 0)
	}

	c.JSON(http.StatusOK, gin.H{"analyses": runs, "total": len(runs)})
}

func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	run, err := h.runs.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, pipeline.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch analysis", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetAnalysisResults returns the recommendations a run stored, optionally
// narrowed by category or stock status.
func (h *AnalysisHandler) GetAnalysisResults(c *gin.Context) {
	if h.recs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "recommendation store not configured"})
		return
	}

	runID := c.Param("id")

	if _, err := h.runs.GetRun(c.Request.Context(), runID); err != nil {
		if errors.Is(err, pipeline.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch analysis", "details": err.Error()})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if limit < 0 {
		limit = 0
	}

	var status domain.StockStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := domain.ParseStockStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown stock status %q", raw)})
			return
		}
		status = parsed
	}

	filter := domain.RecommendationFilter{
		RunID:    runID,
		Category: c.Query("category"),
		Status:   status,
		Limit:    limit,
	}

	recs, err := h.recs.Latest(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list run results", "details": err.Error()})
		return
	}
	if recs == nil {
		recs = make([]domain.Recommendation, 0)
	}

	c.JSON(http.StatusOK, gin.H{"run_id": runID, "recommendations": recs, "total": len(recs)})
}
