package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockplan/internal/dataset"
	"stockplan/internal/domain"
	"stockplan/internal/engine"
	"stockplan/internal/forecast"
	"stockplan/internal/pipeline"
	"stockplan/internal/report"
	"stockplan/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()

	ds := dataset.NewDataset()
	ds.AddComponent(domain.Component{
		ComponentID:  "CMP-001",
		Name:         "Hydraulic seal",
		Category:     "seals",
		CurrentStock: 50,
		UnitCost:     5,
	})
	ds.AddComponent(domain.Component{
		ComponentID:  "CMP-002",
		Name:         "Bearing",
		Category:     "bearings",
		CurrentStock: 200,
		UnitCost:     12,
	})
	ds.AddComponent(domain.Component{ComponentID: "CMP-BARE", Name: "Untracked part", CurrentStock: 5, UnitCost: 1})

	base := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	for i, units := range []float64{10, 12, 9, 11, 10, 13, 8} {
		ds.AddUsage(domain.UsagePoint{ComponentID: "CMP-001", Date: base.AddDate(0, 0, i), UnitsUsed: units})
		ds.AddUsage(domain.UsagePoint{ComponentID: "CMP-002", Date: base.AddDate(0, 0, i), UnitsUsed: units * 2})
	}

	calc, err := engine.NewCalculator(engine.DefaultPolicy())
	require.NoError(t, err)

	svc := service.NewPlanningService(ds, forecast.NewFlatAverage(), calc, nil, domain.DefaultPlanningParams())

	return NewRouter(&Services{Planning: svc, Defaults: domain.DefaultPlanningParams()}, nil)
}

func doRequest(router *gin.Engine, method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doRequest(testRouter(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	w := doRequest(testRouter(t), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestListComponents(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/components", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Components []domain.Component `json:"components"`
		Total      int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)

	w = doRequest(router, http.MethodGet, "/api/v1/components?category=seals", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Components, 1)
	assert.Equal(t, "CMP-001", resp.Components[0].ComponentID)
}

func TestGetRecommendation(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/components/CMP-001/recommendation?lead_time_days=7&service_level=0.95", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec domain.Recommendation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "CMP-001", rec.ComponentID)
	assert.Equal(t, 7, rec.LeadTimeDays)
	assert.InDelta(t, 79.9229, rec.OptimalInventory, 1e-3)
	assert.Equal(t, domain.StatusBelowOptimal, rec.StockStatus)
}

func TestGetRecommendation_ParamBounds(t *testing.T) {
	router := testRouter(t)

	cases := []string{
		"lead_time_days=3",
		"lead_time_days=120",
		"service_level=0.5",
		"service_level=1.5",
		"lead_time_days=abc",
	}
	for _, query := range cases {
		w := doRequest(router, http.MethodGet, "/api/v1/components/CMP-001/recommendation?"+query, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", query)
	}
}

func TestGetRecommendation_UnknownComponent(t *testing.T) {
	w := doRequest(testRouter(t), http.MethodGet, "/api/v1/components/CMP-404/recommendation", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRecommendation_NoHistory(t *testing.T) {
	w := doRequest(testRouter(t), http.MethodGet, "/api/v1/components/CMP-BARE/recommendation", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetUsage(t *testing.T) {
	router := testRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/components/CMP-001/usage?days=3", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ComponentID string              `json:"component_id"`
		Days        int                 `json:"days"`
		Usage       []domain.UsagePoint `json:"usage"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CMP-001", resp.ComponentID)
	assert.Len(t, resp.Usage, 3)

	w = doRequest(router, http.MethodGet, "/api/v1/components/CMP-404/usage", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPortfolioOverview(t *testing.T) {
	w := doRequest(testRouter(t), http.MethodGet, "/api/v1/portfolio/overview?lead_time_days=7", "")
	require.Equal(t, http.StatusOK, w.Code)

	var overview struct {
		Summary         domain.PortfolioSummary `json:"summary"`
		SummaryTable    []report.SummaryRow     `json:"summary_table"`
		Recommendations []domain.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))

	assert.Equal(t, 2, overview.Summary.Components, "component without history is skipped")
	assert.Len(t, overview.Recommendations, 2)

	require.NotEmpty(t, overview.SummaryTable)
	assert.Equal(t, "Lead Time (days)", overview.SummaryTable[0].Parameter)
	assert.Equal(t, "7", overview.SummaryTable[0].Value)
}

func TestDownloadPortfolioCSV(t *testing.T) {
	w := doRequest(testRouter(t), http.MethodGet, "/api/v1/reports/portfolio.csv?lead_time_days=7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3, "header plus two analyzable components")
}

type fakeRunner struct {
	run *pipeline.AnalysisRun
	err error
}

func (f *fakeRunner) Run(_ context.Context, params domain.PlanningParams) (*pipeline.AnalysisRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	run := *f.run
	run.LeadTimeDays = params.LeadTimeDays
	run.ServiceLevel = params.ServiceLevel
	return &run, nil
}

type fakeRunReader struct {
	runs map[string]*pipeline.AnalysisRun
}

func (f *fakeRunReader) GetRun(_ context.Context, id string) (*pipeline.AnalysisRun, error) {
	run, ok := f.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", pipeline.ErrRunNotFound, id)
	}
	return run, nil
}

func (f *fakeRunReader) ListRuns(context.Context, int) ([]pipeline.AnalysisRun, error) {
	out := make([]pipeline.AnalysisRun, 0, len(f.runs))
	for _, run := range f.runs {
		out = append(out, *run)
	}
	return out, nil
}

type fakeRecReader struct {
	recs []domain.Recommendation
}

func (f *fakeRecReader) Latest(_ context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, error) {
	out := make([]domain.Recommendation, 0)
	for _, rec := range f.recs {
		if filter.RunID != "" && rec.RunID != filter.RunID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func analysisRouter(t *testing.T) *gin.Engine {
	t.Helper()

	done := time.Date(2025, time.August, 20, 10, 0, 0, 0, time.UTC)
	run := &pipeline.AnalysisRun{
		ID:              "run-1",
		Status:          pipeline.StatusCompleted,
		LeadTimeDays:    30,
		ServiceLevel:    0.95,
		TotalComponents: 2,
		Processed:       2,
		StartedAt:       done.Add(-time.Minute),
		CompletedAt:     &done,
	}

	services := &Services{
		AnalysisRunner: &fakeRunner{run: run},
		Runs:           &fakeRunReader{runs: map[string]*pipeline.AnalysisRun{"run-1": run}},
		Recommendations: &fakeRecReader{recs: []domain.Recommendation{
			{ID: "rec-1", RunID: "run-1", ComponentID: "CMP-001"},
			{ID: "rec-2", RunID: "run-2", ComponentID: "CMP-002"},
		}},
		Defaults: domain.DefaultPlanningParams(),
	}

	return NewRouter(services, nil)
}

func TestTriggerAnalysis(t *testing.T) {
	router := analysisRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/analyses", `{"lead_time_days": 14}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var run pipeline.AnalysisRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, 14, run.LeadTimeDays)
	assert.InDelta(t, 0.95, run.ServiceLevel, 1e-12)
}

func TestTriggerAnalysis_InvalidParams(t *testing.T) {
	w := doRequest(analysisRouter(t), http.MethodPost, "/api/v1/analyses", `{"lead_time_days": 3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAnalysis(t *testing.T) {
	router := analysisRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/analyses/run-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var run pipeline.AnalysisRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, pipeline.StatusCompleted, run.Status)

	w = doRequest(router, http.MethodGet, "/api/v1/analyses/run-404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAnalysisResults(t *testing.T) {
	router := analysisRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/analyses/run-1/recommendations", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		RunID           string                  `json:"run_id"`
		Recommendations []domain.Recommendation `json:"recommendations"`
		Total           int                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "rec-1", resp.Recommendations[0].ID)
}

func TestGetAnalysisResults_UnknownStatusFilter(t *testing.T) {
	w := doRequest(analysisRouter(t), http.MethodGet, "/api/v1/analyses/run-1/recommendations?status=overflowing", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalysisRoutesAbsentWithoutRunner(t *testing.T) {
	w := doRequest(testRouter(t), http.MethodPost, "/api/v1/analyses", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
