package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/flightguard/pkg/authz"
	"github.com/jakechorley/flightguard/pkg/core/model"
	"github.com/jakechorley/flightguard/pkg/ingest"
	"github.com/jakechorley/flightguard/pkg/realtime"
)

// ImportStore is the persistence contract for manifest imports.
// InsertFlights bulk-inserts new rows, skipping flight keys already present
// in the dataset, and reports how many were actually inserted.
type ImportStore interface {
	GetDataset(ctx context.Context, datasetID string) (*model.Dataset, error)
	InsertFlights(ctx context.Context, datasetID string, flights []model.Flight) (int, error)
}

// ImportResult reports one manifest import.
type ImportResult struct {
	ParsedCount   int `json:"parsedCount"`
	InsertedCount int `json:"insertedCount"`
	SkippedCount  int `json:"skippedCount"`
}

// ImportManifest adds parsed manifest records to a dataset. Admin-only.
// Records whose natural key already exists in the dataset are skipped, so
// re-uploading an amended manifest only adds the new flights.
func ImportManifest(
	ctx context.Context,
	store ImportStore,
	auth authz.Authorizer,
	pub realtime.Publisher,
	logger *zap.Logger,
	datasetID string, records []ingest.Record, actor string,
) (*ImportResult, error) {
	if !auth.CanAdminister(actor) {
		return nil, fmt.Errorf("actor %q: %w", actor, model.ErrUnauthorized)
	}

	if _, err := store.GetDataset(ctx, datasetID); err != nil {
		return nil, err
	}

	flights := make([]model.Flight, 0, len(records))
	for _, rec := range records {
		flights = append(flights, model.Flight{
			ID:            uuid.New().String(),
			DatasetID:     datasetID,
			FlightKey:     rec.Key(),
			Category:      rec.Category,
			FlightType:    rec.FlightType,
			ScheduledDate: rec.Date,
			ScheduledTime: rec.Time,
			CarrierCode:   rec.CarrierCode,
			CarrierName:   rec.CarrierName,
			DocCode:       rec.DocCode,
			FlightNumber:  rec.FlightNumber,
		})
	}

	inserted, err := store.InsertFlights(ctx, datasetID, flights)
	if err != nil {
		return nil, fmt.Errorf("failed to insert flights: %w", err)
	}

	logger.Info("Manifest imported",
		zap.String("dataset_id", datasetID),
		zap.Int("parsed", len(records)),
		zap.Int("inserted", inserted),
		zap.String("actor", actor))

	if inserted > 0 {
		publish(ctx, pub, logger, realtime.Event{
			DatasetID: datasetID,
			Kind:      realtime.FlightsChanged,
			Actor:     actor,
		})
	}

	return &ImportResult{
		ParsedCount:   len(records),
		InsertedCount: inserted,
		SkippedCount:  len(records) - inserted,
	}, nil
}

// DatasetStore is the persistence contract for dataset lifecycle and reads.
type DatasetStore interface {
	CreateDataset(ctx context.Context, dataset *model.Dataset) error
	GetDataset(ctx context.Context, datasetID string) (*model.Dataset, error)
	ListFlights(ctx context.Context, datasetID string) ([]model.Flight, error)
	ListRuns(ctx context.Context, datasetID string) ([]model.AssignmentRun, error)
	DeleteDataset(ctx context.Context, datasetID string) error
}

// CreateDataset registers a new, empty dataset. Admin-only.
func CreateDataset(
	ctx context.Context,
	store DatasetStore,
	auth authz.Authorizer,
	logger *zap.Logger,
	name, actor string,
) (*model.Dataset, error) {
	if !auth.CanAdminister(actor) {
		return nil, fmt.Errorf("actor %q: %w", actor, model.ErrUnauthorized)
	}
	if name == "" {
		return nil, fmt.Errorf("dataset name is required")
	}

	dataset := &model.Dataset{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		CreatedBy: actor,
	}
	if err := store.CreateDataset(ctx, dataset); err != nil {
		return nil, fmt.Errorf("failed to create dataset: %w", err)
	}

	logger.Info("Dataset created",
		zap.String("dataset_id", dataset.ID),
		zap.String("name", name),
		zap.String("actor", actor))

	return dataset, nil
}
