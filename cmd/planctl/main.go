package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"stockplan/internal/dataset"
	"stockplan/internal/domain"
	"stockplan/internal/engine"
	"stockplan/internal/forecast"
	"stockplan/internal/pipeline"
	"stockplan/internal/repository"
	"stockplan/internal/repository/postgres"
	"stockplan/internal/service"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func planningFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "lead-time-days",
			Usage:   "Replenishment lead time in days",
			Value:   domain.DefaultLeadTimeDays,
			EnvVars: []string{"PLANNING_DEFAULT_LEAD_TIME_DAYS"},
		},
		&cli.Float64Flag{
			Name:    "service-level",
			Usage:   "Target service level, e.g. 0.95",
			Value:   domain.DefaultServiceLevel,
			EnvVars: []string{"PLANNING_DEFAULT_SERVICE_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "lead-time-scaling",
			Usage:   "Safety stock lead time scaling: sqrt-days or sqrt-months",
			Value:   "sqrt-days",
			EnvVars: []string{"PLANNING_LEAD_TIME_SCALING"},
		},
		&cli.StringFlag{
			Name:    "forecast",
			Usage:   "Forecast provider: flat-average or smoothed-trend",
			Value:   forecast.NameFlatAverage,
			EnvVars: []string{"PLANNING_FORECAST_PROVIDER"},
		},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "source",
			Usage:   "Where the catalog lives: csv or postgres",
			Value:   "csv",
			EnvVars: []string{"PLANNING_DATA_SOURCE"},
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Usage:   "Directory holding stock_levels.csv and usage_history.csv",
			Value:   "./data/datasets",
			EnvVars: []string{"APP_DATA_DIR"},
		},
		newDBURLFlag(),
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "planctl",
		Usage: "Inventory planning toolbox: batch analyses, single recommendations, dataset sync",
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Run a batch analysis over the whole catalog",
				Flags: append(append(sourceFlags(), planningFlags()...),
					&cli.StringFlag{
						Name:    "output-dir",
						Usage:   "Directory for the portfolio CSV artifact",
						Value:   "./data/output",
						EnvVars: []string{"APP_OUTPUT_DIR"},
					},
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Number of concurrent analysis workers",
						Value:   4,
						EnvVars: []string{"PIPELINE_WORKERS"},
					},
					&cli.IntFlag{
						Name:    "batch-size",
						Usage:   "Recommendations persisted per batch",
						Value:   200,
						EnvVars: []string{"PIPELINE_BATCH_SIZE"},
					},
				),
				Action: runAnalyze,
			},
			{
				Name:      "component",
				Usage:     "Print the recommendation for one component",
				ArgsUsage: "COMPONENT_ID",
				Flags: append(sourceFlags(), append(planningFlags(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit the recommendation as JSON",
					},
				)...),
				Action: runComponent,
			},
			newSyncCommand(),
			newMigrateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func buildPlanner(c *cli.Context) (*engine.Calculator, forecast.Provider, error) {
	scaling, err := engine.ParseLeadTimeScaling(c.String("lead-time-scaling"))
	if err != nil {
		return nil, nil, err
	}

	policy := engine.DefaultPolicy()
	policy.LeadTimeScaling = scaling

	calc, err := engine.NewCalculator(policy)
	if err != nil {
		return nil, nil, err
	}

	provider, err := forecast.New(c.String("forecast"))
	if err != nil {
		return nil, nil, err
	}

	return calc, provider, nil
}

// sourceHandle bundles a catalog source with the connection behind it,
// if any.
type sourceHandle struct {
	source service.DataSource
	db     *postgres.DB
}

func (h *sourceHandle) Close() {
	if h.db != nil {
		h.db.Close()
	}
}

func openSource(c *cli.Context) (*sourceHandle, error) {
	switch c.String("source") {
	case "postgres":
		db, err := postgres.NewDBFromURL(c.String("db-url"))
		if err != nil {
			return nil, err
		}
		return &sourceHandle{source: postgres.NewComponentRepository(db), db: db}, nil
	case "csv":
		dir := c.String("data-dir")
		ds, err := dataset.NewLoader().LoadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("loading dataset from %s: %w", dir, err)
		}
		return &sourceHandle{source: ds}, nil
	}

	return nil, fmt.Errorf("unknown source %q (expected csv or postgres)", c.String("source"))
}

func planningParams(c *cli.Context) (domain.PlanningParams, error) {
	params := domain.PlanningParams{
		LeadTimeDays: c.Int("lead-time-days"),
		ServiceLevel: c.Float64("service-level"),
	}
	return params, params.Validate()
}

func runAnalyze(c *cli.Context) error {
	params, err := planningParams(c)
	if err != nil {
		return err
	}

	calc, provider, err := buildPlanner(c)
	if err != nil {
		return err
	}

	handle, err := openSource(c)
	if err != nil {
		return err
	}
	defer handle.Close()

	planner := service.NewPlanningService(handle.source, provider, calc, nil, params)

	cfg := pipeline.Config{
		Workers:   c.Int("workers"),
		BatchSize: c.Int("batch-size"),
		OutputDir: c.String("output-dir"),
	}

	var (
		recs repository.RecommendationRepository = discardRecommendations{}
		runs pipeline.RunRecorder                = memoryRunRecorder{}
	)
	if handle.db != nil {
		recs = postgres.NewRecommendationRepository(handle.db)
		runs = pipeline.NewRunStore(handle.db.DB)
	}

	orchestrator := pipeline.NewOrchestrator(handle.source, planner, recs, runs, nil, cfg)

	log.Printf("Starting analysis (lead time %d days, service level %.0f%%)...",
		params.LeadTimeDays, params.ServiceLevel*100)

	run, err := orchestrator.Run(c.Context, params)
	if err != nil {
		return err
	}

	log.Printf("Analysis %s completed: %d of %d components analyzed, %d skipped",
		run.ID, run.Processed, run.TotalComponents, run.Failed)
	if run.Processed > 0 {
		log.Printf("Portfolio report written to %s", pipeline.RunArtifactPath(cfg.OutputDir, run.ID))
	}

	return nil
}

func runComponent(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("component id is required")
	}

	params, err := planningParams(c)
	if err != nil {
		return err
	}

	calc, provider, err := buildPlanner(c)
	if err != nil {
		return err
	}

	handle, err := openSource(c)
	if err != nil {
		return err
	}
	defer handle.Close()

	svc := service.NewPlanningService(handle.source, provider, calc, nil, params)

	rec, err := svc.RecommendComponent(c.Context, id, params)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("%s (%s)\n", rec.ComponentName, rec.ComponentID)
	fmt.Printf("  Current stock:     %.0f units at $%.2f\n", rec.CurrentStock, rec.UnitCost)
	fmt.Printf("  Safety stock:      %.2f\n", rec.SafetyStock)
	fmt.Printf("  Optimal inventory: %.2f\n", rec.OptimalInventory)
	fmt.Printf("  Order quantity:    %.2f\n", rec.OrderQuantity)
	fmt.Printf("  Status:            %s\n", rec.StockStatus.Label())
	fmt.Printf("  Action:            %s\n", rec.Action)
	fmt.Printf("  Capital released:  $%.2f\n", rec.CapitalReleased)
	fmt.Printf("  Annual savings:    $%.2f\n", rec.AnnualSavings)
	fmt.Printf("  Forecast source:   %s (%d observations)\n", rec.ForecastSource, rec.DemandObservations)

	return nil
}

// discardRecommendations satisfies the recommendation repository for runs
// that only produce the CSV artifact.
type discardRecommendations struct{}

func (discardRecommendations) SaveBatch(context.Context, []domain.Recommendation) error { return nil }

func (discardRecommendations) Latest(context.Context, domain.RecommendationFilter) ([]domain.Recommendation, error) {
	return nil, nil
}

// memoryRunRecorder keeps run bookkeeping in-process for databaseless runs;
// the orchestrator already mutates the run record it returns.
type memoryRunRecorder struct{}

func (memoryRunRecorder) CreateRun(context.Context, *pipeline.AnalysisRun) error { return nil }

func (memoryRunRecorder) UpdateProgress(context.Context, string, int, int) error { return nil }

func (memoryRunRecorder) CompleteRun(context.Context, *pipeline.AnalysisRun) error { return nil }
