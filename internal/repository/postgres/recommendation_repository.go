package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"stockplan/internal/domain"
	"stockplan/internal/repository"
)

type recommendationRepository struct {
	db *DB
}

func NewRecommendationRepository(db *DB) repository.RecommendationRepository {
	return &recommendationRepository{db: db}
}

func (r *recommendationRepository) SaveBatch(ctx context.Context, recs []domain.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO recommendations (
				id, run_id, component_id, component_name, category,
				lead_time_days, service_level, current_stock, unit_cost,
				safety_stock, optimal_inventory, order_quantity, baseline_inventory,
				inventory_reduction, reduction_pct, capital_released, annual_savings,
				stock_status, action, demand_observations, forecast_source, generated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
				$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
			)
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, rec := range recs {
			_, err := stmt.ExecContext(
				ctx,
				rec.ID,
				rec.RunID,
				rec.ComponentID,
				rec.ComponentName,
				rec.Category,
				rec.LeadTimeDays,
				rec.ServiceLevel,
				rec.CurrentStock,
				rec.UnitCost,
				rec.SafetyStock,
				rec.OptimalInventory,
				rec.OrderQuantity,
				rec.BaselineInventory,
				rec.InventoryReduction,
				rec.ReductionPct,
				rec.CapitalReleased,
				rec.AnnualSavings,
				rec.StockStatus,
				rec.Action,
				rec.DemandObservations,
				rec.ForecastSource,
				rec.GeneratedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert recommendation for %s: %w", rec.ComponentID, err)
			}
		}

		return nil
	})
}

// Latest returns the newest recommendation per component matching the
// filter.
func (r *recommendationRepository) Latest(ctx context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, error) {
	query := `
		SELECT DISTINCT ON (component_id)
			id, run_id, component_id, component_name, category,
			lead_time_days, service_level, current_stock, unit_cost,
			safety_stock, optimal_inventory, order_quantity, baseline_inventory,
			inventory_reduction, reduction_pct, capital_released, annual_savings,
			stock_status, action, demand_observations, forecast_source, generated_at
		FROM recommendations
		WHERE 1=1
	`

	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCounter))
		args = append(args, filter.Category)
		argCounter++
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("stock_status = $%d", argCounter))
		args = append(args, filter.Status)
		argCounter++
	}

	if filter.RunID != "" {
		conditions = append(conditions, fmt.Sprintf("run_id = $%d", argCounter))
		args = append(args, filter.RunID)
		argCounter++
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY component_id, generated_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCounter)
		args = append(args, filter.Limit)
	}

	var recs []domain.Recommendation
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("error listing recommendations: %w", err)
	}

	return recs, nil
}
