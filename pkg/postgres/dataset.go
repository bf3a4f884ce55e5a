package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/flightguard/pkg/core/model"
)

// CreateDataset inserts a new dataset record
func (db *DB) CreateDataset(ctx context.Context, dataset *model.Dataset) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO dataset (id, name, created_at, created_by)
		VALUES ($1, $2, $3, $4)
	`, dataset.ID, dataset.Name, dataset.CreatedAt, dataset.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert dataset: %w", err)
	}
	return nil
}

// GetDataset retrieves one dataset by id
func (db *DB) GetDataset(ctx context.Context, datasetID string) (*model.Dataset, error) {
	var dataset model.Dataset
	err := db.pool.QueryRow(ctx, `
		SELECT id, name, created_at, created_by
		FROM dataset
		WHERE id = $1
	`, datasetID).Scan(&dataset.ID, &dataset.Name, &dataset.CreatedAt, &dataset.CreatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrDatasetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset: %w", err)
	}
	return &dataset, nil
}

// DeleteDataset removes a dataset; flights, targets and settings cascade.
// Assignment runs carry no foreign key and remain as audit trail.
func (db *DB) DeleteDataset(ctx context.Context, datasetID string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM dataset WHERE id = $1`, datasetID)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDatasetNotFound
	}
	return nil
}
