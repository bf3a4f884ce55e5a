package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/flightguard/pkg/core/model"
)

// UpsertCategoryTargets writes per-category targets last-writer-wins.
func (db *DB) UpsertCategoryTargets(ctx context.Context, datasetID string, targets []model.CategoryTarget) error {
	if len(targets) == 0 {
		return nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range targets {
		_, err := tx.Exec(ctx, `
			INSERT INTO category_target (dataset_id, category, target_percent, updated_at, updated_by)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (dataset_id, category) DO UPDATE
			SET target_percent = EXCLUDED.target_percent,
			    updated_at = EXCLUDED.updated_at,
			    updated_by = EXCLUDED.updated_by
		`, datasetID, t.Category, t.TargetPercent, t.UpdatedAt, t.UpdatedBy)
		if err != nil {
			return fmt.Errorf("failed to upsert target for %s: %w", t.Category, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCategoryTargets retrieves a dataset's targets ordered by category
func (db *DB) GetCategoryTargets(ctx context.Context, datasetID string) ([]model.CategoryTarget, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT dataset_id, category, target_percent, updated_at, updated_by
		FROM category_target
		WHERE dataset_id = $1
		ORDER BY category
	`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	var targets []model.CategoryTarget
	for rows.Next() {
		var t model.CategoryTarget
		if err := rows.Scan(&t.DatasetID, &t.Category, &t.TargetPercent, &t.UpdatedAt, &t.UpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating targets: %w", err)
	}
	return targets, nil
}

// SaveSettings writes a dataset's settings last-writer-wins.
func (db *DB) SaveSettings(ctx context.Context, settings *model.DatasetSettings) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO dataset_settings (dataset_id, work_date, updated_at, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (dataset_id) DO UPDATE
		SET work_date = EXCLUDED.work_date,
		    updated_at = EXCLUDED.updated_at,
		    updated_by = EXCLUDED.updated_by
	`, settings.DatasetID, settings.WorkDate, settings.UpdatedAt, settings.UpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// GetSettings retrieves a dataset's settings; nil when none saved yet
func (db *DB) GetSettings(ctx context.Context, datasetID string) (*model.DatasetSettings, error) {
	var settings model.DatasetSettings
	err := db.pool.QueryRow(ctx, `
		SELECT dataset_id, work_date, updated_at, updated_by
		FROM dataset_settings
		WHERE dataset_id = $1
	`, datasetID).Scan(&settings.DatasetID, &settings.WorkDate, &settings.UpdatedAt, &settings.UpdatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	return &settings, nil
}
