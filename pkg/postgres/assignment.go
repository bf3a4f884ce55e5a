package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/flightguard/pkg/core/model"
)

// ApplyAssignment executes one auto-assignment run as a single transaction.
// A per-scope advisory lock serializes concurrent runs for the same
// (dataset, work date); runs for other scopes are unaffected. The flight
// read, the decision and the bulk label write all happen inside the
// transaction, so no other writer ever observes a partially labeled state,
// and any failure rolls the whole run back including the run record.
func (db *DB) ApplyAssignment(ctx context.Context, scope model.AssignmentScope, run *model.AssignmentRun, decide model.DecideAssignment) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Transaction-scoped advisory lock, released automatically at commit
	// or rollback. hashtext keys the lock off the composite scope string.
	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`,
		scope.DatasetID, scope.WorkDateISO)
	if err != nil {
		return fmt.Errorf("failed to acquire assignment lock: %w", err)
	}

	if err := datasetExistsTx(ctx, tx, scope.DatasetID); err != nil {
		return err
	}

	flights, err := listFlightsTx(ctx, tx, scope.DatasetID)
	if err != nil {
		return err
	}
	targets, err := listTargetsTx(ctx, tx, scope.DatasetID)
	if err != nil {
		return err
	}

	decision, err := decide(flights, targets)
	if err != nil {
		return err
	}

	if err := applyLabelsTx(ctx, tx, run, decision.Labels); err != nil {
		return err
	}

	run.Summary = decision.Summary
	run.UpdatedFlightCount = len(decision.Labels)

	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO assignment_run (id, dataset_id, work_date, seed, summary, updated_flight_count, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, run.ID, run.DatasetID, run.WorkDate, run.Seed, summaryJSON, run.UpdatedFlightCount, run.CreatedAt, run.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit assignment: %w", err)
	}
	return nil
}

func datasetExistsTx(ctx context.Context, tx pgx.Tx, datasetID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM dataset WHERE id = $1`, datasetID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrDatasetNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check dataset: %w", err)
	}
	return nil
}

func listFlightsTx(ctx context.Context, tx pgx.Tx, datasetID string) ([]model.Flight, error) {
	rows, err := tx.Query(ctx, `SELECT `+flightColumns+` FROM flight WHERE dataset_id = $1`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var flights []model.Flight
	for rows.Next() {
		flight, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		flights = append(flights, *flight)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flights: %w", err)
	}
	return flights, nil
}

func listTargetsTx(ctx context.Context, tx pgx.Tx, datasetID string) ([]model.CategoryTarget, error) {
	rows, err := tx.Query(ctx, `
		SELECT dataset_id, category, target_percent, updated_at, updated_by
		FROM category_target
		WHERE dataset_id = $1
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

// applyLabelsTx writes every label in one statement via unnest, setting the
// run provenance columns unconditionally. Operated columns are untouched.
func applyLabelsTx(ctx context.Context, tx pgx.Tx, run *model.AssignmentRun, labels []model.FlightLabel) error {
	if len(labels) == 0 {
		return nil
	}

	ids := make([]string, len(labels))
	flags := make([]string, len(labels))
	for i, label := range labels {
		ids[i] = label.FlightID
		flags[i] = string(label.Flag)
	}

	_, err := tx.Exec(ctx, `
		UPDATE flight AS f
		SET service_flag = u.flag,
		    service_flag_source = 'auto',
		    service_flag_updated_at = $3,
		    service_flag_updated_by = $4,
		    service_flag_run_id = $5
		FROM unnest($1::text[], $2::text[]) AS u(id, flag)
		WHERE f.id = u.id
	`, ids, flags, time.Now().UTC(), run.CreatedBy, run.ID)
	if err != nil {
		return fmt.Errorf("failed to apply labels: %w", err)
	}
	return nil
}

// ListRuns retrieves a dataset's assignment runs, newest first
func (db *DB) ListRuns(ctx context.Context, datasetID string) ([]model.AssignmentRun, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, dataset_id, work_date, seed, summary, updated_flight_count, created_at, created_by
		FROM assignment_run
		WHERE dataset_id = $1
		ORDER BY created_at DESC
	`, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []model.AssignmentRun
	for rows.Next() {
		var r model.AssignmentRun
		var summaryJSON []byte
		if err := rows.Scan(&r.ID, &r.DatasetID, &r.WorkDate, &r.Seed, &summaryJSON, &r.UpdatedFlightCount, &r.CreatedAt, &r.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal(summaryJSON, &r.Summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run summary: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}
