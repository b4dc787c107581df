package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stockplan/internal/domain"
	"stockplan/internal/repository"
)

type componentRepository struct {
	db *DB
}

func NewComponentRepository(db *DB) repository.ComponentRepository {
	return &componentRepository{db: db}
}

func (r *componentRepository) Components(ctx context.Context) ([]domain.Component, error) {
	query := `
		SELECT id, component_id, name, category, current_stock, unit_cost, lead_time_days, updated_at
		FROM components
		ORDER BY component_id
	`

	var components []domain.Component
	if err := r.db.SelectContext(ctx, &components, query); err != nil {
		return nil, fmt.Errorf("error listing components: %w", err)
	}

	return components, nil
}

func (r *componentRepository) Component(ctx context.Context, componentID string) (domain.Component, error) {
	query := `
		SELECT id, component_id, name, category, current_stock, unit_cost, lead_time_days, updated_at
		FROM components
		WHERE component_id = $1
	`

	var c domain.Component
	if err := r.db.GetContext(ctx, &c, query, componentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Component{}, fmt.Errorf("%w: %s", domain.ErrComponentNotFound, componentID)
		}
		return domain.Component{}, fmt.Errorf("error getting component %s: %w", componentID, err)
	}

	return c, nil
}

func (r *componentRepository) Usage(ctx context.Context, componentID string, days int) ([]domain.UsagePoint, error) {
	query := `
		SELECT component_id, date, units_used
		FROM usage_history
		WHERE component_id = $1
	`
	args := []interface{}{componentID}

	// Window anchored at the component's newest observation, so stale
	// datasets still return their trailing days.
	if days > 0 {
		query += ` AND date > (SELECT MAX(date) FROM usage_history WHERE component_id = $1) - $2::int`
		args = append(args, days)
	}

	query += ` ORDER BY date`

	var points []domain.UsagePoint
	if err := r.db.SelectContext(ctx, &points, query, args...); err != nil {
		return nil, fmt.Errorf("error getting usage for %s: %w", componentID, err)
	}

	return points, nil
}

func (r *componentRepository) Demand(ctx context.Context, componentID string) ([]float64, error) {
	query := `
		SELECT units_used
		FROM usage_history
		WHERE component_id = $1
		ORDER BY date
	`

	var demand []float64
	if err := r.db.SelectContext(ctx, &demand, query, componentID); err != nil {
		return nil, fmt.Errorf("error getting demand for %s: %w", componentID, err)
	}

	return demand, nil
}

func (r *componentRepository) UpsertComponents(ctx context.Context, components []domain.Component) error {
	if len(components) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO components (
				component_id, name, category, current_stock, unit_cost, lead_time_days, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (component_id)
			DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				current_stock = EXCLUDED.current_stock,
				unit_cost = EXCLUDED.unit_cost,
				lead_time_days = EXCLUDED.lead_time_days,
				updated_at = NOW()
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, c := range components {
			_, err := stmt.ExecContext(
				ctx,
				c.ComponentID,
				c.Name,
				c.Category,
				c.CurrentStock,
				c.UnitCost,
				c.LeadTimeDays,
				time.Now(),
			)
			if err != nil {
				return fmt.Errorf("failed to upsert component %s: %w", c.ComponentID, err)
			}
		}

		return nil
	})
}

func (r *componentRepository) InsertUsage(ctx context.Context, points []domain.UsagePoint) error {
	if len(points) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO usage_history (component_id, date, units_used)
			VALUES ($1, $2, $3)
			ON CONFLICT (component_id, date)
			DO UPDATE SET units_used = EXCLUDED.units_used
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, p := range points {
			if _, err := stmt.ExecContext(ctx, p.ComponentID, p.Date, p.UnitsUsed); err != nil {
				return fmt.Errorf("failed to insert usage for %s: %w", p.ComponentID, err)
			}
		}

		return nil
	})
}
