package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/flightguard/pkg/core/model"
	"github.com/jakechorley/flightguard/pkg/ingest"
)

func manifestRecords() []ingest.Record {
	return []ingest.Record{
		{Category: "5.3", FlightType: "INT", Date: "10/03/2025", Time: "08:30", DocCode: "AMX", FlightNumber: "404", CarrierCode: "AM", CarrierName: "Aeromexico"},
		{Category: "5.4", FlightType: "NAC", Date: "10/03/2025", Time: "07:15", DocCode: "VIV", FlightNumber: "1221", CarrierCode: "VB", CarrierName: "Viva"},
	}
}

func TestImportManifest(t *testing.T) {
	store, datasetID := newTestStore(t)
	ctx := context.Background()

	result, err := ImportManifest(ctx, store, testAuth, nil, zap.NewNop(),
		datasetID, manifestRecords(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, result.ParsedCount)
	assert.Equal(t, 2, result.InsertedCount)
	assert.Equal(t, 0, result.SkippedCount)

	flights, err := store.ListFlights(ctx, datasetID)
	require.NoError(t, err)
	require.Len(t, flights, 2)
	for _, f := range flights {
		assert.False(t, f.Operated, "imported flights start unoperated")
		assert.NotEmpty(t, f.ID)
		assert.NotEmpty(t, f.FlightKey)
	}
}

func TestImportManifest_ReImportSkipsExisting(t *testing.T) {
	store, datasetID := newTestStore(t)
	ctx := context.Background()

	_, err := ImportManifest(ctx, store, testAuth, nil, zap.NewNop(),
		datasetID, manifestRecords(), "admin@example.com")
	require.NoError(t, err)

	amended := append(manifestRecords(), ingest.Record{
		Category: "5.5", Date: "10/03/2025", Time: "09:00", DocCode: "VOI", FlightNumber: "503",
	})
	result, err := ImportManifest(ctx, store, testAuth, nil, zap.NewNop(),
		datasetID, amended, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, result.InsertedCount)
	assert.Equal(t, 2, result.SkippedCount)
}

func TestImportManifest_AdminOnly(t *testing.T) {
	store, datasetID := newTestStore(t)

	_, err := ImportManifest(context.Background(), store, testAuth, nil, zap.NewNop(),
		datasetID, manifestRecords(), "ops@example.com")
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestCreateDataset_AdminOnly(t *testing.T) {
	store := newTestStoreBare()

	_, err := CreateDataset(context.Background(), store, testAuth, zap.NewNop(), "x", "ops@example.com")
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}
