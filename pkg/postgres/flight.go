package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/flightguard/pkg/core/model"
)

const flightColumns = `
	id, dataset_id, flight_key, category, flight_type,
	scheduled_date, scheduled_time, carrier_code, carrier_name, doc_code, flight_number,
	operated, operated_at, operated_by,
	service_flag, service_flag_source, service_flag_updated_at, service_flag_updated_by, service_flag_run_id
`

func scanFlight(row pgx.Row) (*model.Flight, error) {
	var f model.Flight
	var operatedBy, flag, source, flagBy, runID *string
	err := row.Scan(
		&f.ID, &f.DatasetID, &f.FlightKey, &f.Category, &f.FlightType,
		&f.ScheduledDate, &f.ScheduledTime, &f.CarrierCode, &f.CarrierName, &f.DocCode, &f.FlightNumber,
		&f.Operated, &f.OperatedAt, &operatedBy,
		&flag, &source, &f.ServiceFlagUpdatedAt, &flagBy, &runID,
	)
	if err != nil {
		return nil, err
	}
	if operatedBy != nil {
		f.OperatedBy = *operatedBy
	}
	if flag != nil {
		f.ServiceFlag = model.ServiceFlag(*flag)
	}
	if source != nil {
		f.ServiceFlagSource = model.FlagSource(*source)
	}
	if flagBy != nil {
		f.ServiceFlagUpdatedBy = *flagBy
	}
	if runID != nil {
		f.ServiceFlagRunID = *runID
	}
	return &f, nil
}

// GetFlight retrieves one flight by id
func (db *DB) GetFlight(ctx context.Context, flightID string) (*model.Flight, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+flightColumns+` FROM flight WHERE id = $1`, flightID)
	flight, err := scanFlight(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrFlightNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query flight: %w", err)
	}
	return flight, nil
}

// ListFlights retrieves a dataset's flights in stable display order
func (db *DB) ListFlights(ctx context.Context, datasetID string) ([]model.Flight, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT `+flightColumns+`
		FROM flight
		WHERE dataset_id = $1
		ORDER BY scheduled_date, scheduled_time, flight_number
	`, datasetID)
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

// InsertFlights bulk-inserts manifest flights. Rows whose (dataset, flight
// key) already exist are skipped, so re-importing an amended manifest only
// adds the new entries. Returns the number actually inserted.
func (db *DB) InsertFlights(ctx context.Context, datasetID string, flights []model.Flight) (int, error) {
	if len(flights) == 0 {
		return 0, nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, f := range flights {
		tag, err := tx.Exec(ctx, `
			INSERT INTO flight (
				id, dataset_id, flight_key, category, flight_type,
				scheduled_date, scheduled_time, carrier_code, carrier_name, doc_code, flight_number
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (dataset_id, flight_key) DO NOTHING
		`, f.ID, datasetID, f.FlightKey, f.Category, f.FlightType,
			f.ScheduledDate, f.ScheduledTime, f.CarrierCode, f.CarrierName, f.DocCode, f.FlightNumber)
		if err != nil {
			return 0, fmt.Errorf("failed to insert flight %s: %w", f.FlightKey, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// MarkOperated flips the operated flag with a compare-and-swap: the update
// is conditioned on operated still being false at write time. When another
// operator already flipped it the update affects zero rows, won is false,
// and the authoritative row is returned untouched.
func (db *DB) MarkOperated(ctx context.Context, flightID, operator string, at time.Time) (*model.Flight, bool, error) {
	row := db.pool.QueryRow(ctx, `
		UPDATE flight
		SET operated = TRUE, operated_at = $2, operated_by = $3
		WHERE id = $1 AND operated = FALSE
		RETURNING `+flightColumns,
		flightID, at.UTC(), operator)

	flight, err := scanFlight(row)
	if err == nil {
		return flight, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to mark flight operated: %w", err)
	}

	// Lost the race or the flight does not exist; fetch to tell which.
	flight, err = db.GetFlight(ctx, flightID)
	if err != nil {
		return nil, false, err
	}
	return flight, false, nil
}
