package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/flightguard/pkg/core/model"
	"github.com/jakechorley/flightguard/pkg/memstore"
)

func singleFlight(t *testing.T) (*memstore.Store, string) {
	t.Helper()
	store, datasetID := newTestStore(t)
	addFlights(t, store, datasetID, "5.3", "10/03/2025", 1)
	flights, err := store.ListFlights(context.Background(), datasetID)
	require.NoError(t, err)
	return store, flights[0].ID
}

func TestMarkOperated(t *testing.T) {
	store, flightID := singleFlight(t)
	ctx := context.Background()

	flight, err := MarkOperated(ctx, store, testAuth, nil, zap.NewNop(), flightID, "OPS@Example.com")
	require.NoError(t, err)
	require.NotNil(t, flight)
	assert.True(t, flight.Operated)
	assert.Equal(t, "ops@example.com", flight.OperatedBy, "identity lower-cased")
	require.NotNil(t, flight.OperatedAt)
}

func TestMarkOperated_SecondCallerLoses(t *testing.T) {
	store, flightID := singleFlight(t)
	ctx := context.Background()

	first, err := MarkOperated(ctx, store, testAuth, nil, zap.NewNop(), flightID, "ops@example.com")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := MarkOperated(ctx, store, testAuth, nil, zap.NewNop(), flightID, "admin@example.com")
	require.NoError(t, err, "losing the race is not an error")
	assert.Nil(t, second)

	// Provenance belongs to the winner.
	current, err := store.GetFlight(ctx, flightID)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", current.OperatedBy)
	assert.Equal(t, *first.OperatedAt, *current.OperatedAt)
}

func TestMarkOperated_Unauthorized(t *testing.T) {
	store, flightID := singleFlight(t)

	_, err := MarkOperated(context.Background(), store, testAuth, nil, zap.NewNop(), flightID, "stranger@example.com")
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestMarkOperated_UnknownFlight(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := MarkOperated(context.Background(), store, testAuth, nil, zap.NewNop(), "nope", "ops@example.com")
	assert.ErrorIs(t, err, model.ErrFlightNotFound)
}

func TestSetOperated_IllegalTransition(t *testing.T) {
	store, flightID := singleFlight(t)
	ctx := context.Background()

	marked, err := SetOperated(ctx, store, testAuth, nil, zap.NewNop(), flightID, true, "ops@example.com")
	require.NoError(t, err)
	require.NotNil(t, marked)

	_, err = SetOperated(ctx, store, testAuth, nil, zap.NewNop(), flightID, false, "ops@example.com")
	require.ErrorIs(t, err, model.ErrIllegalTransition)

	// Nothing changed.
	current, err := store.GetFlight(ctx, flightID)
	require.NoError(t, err)
	assert.True(t, current.Operated)
	assert.Equal(t, marked.OperatedBy, current.OperatedBy)
	assert.Equal(t, *marked.OperatedAt, *current.OperatedAt)
}

func TestSetOperated_FalseOnUnoperatedIsNoop(t *testing.T) {
	store, flightID := singleFlight(t)

	flight, err := SetOperated(context.Background(), store, testAuth, nil, zap.NewNop(), flightID, false, "ops@example.com")
	require.NoError(t, err)
	assert.False(t, flight.Operated)
}
