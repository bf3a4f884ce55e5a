package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/flightguard/pkg/authz"
	"github.com/jakechorley/flightguard/pkg/core/lifecycle"
	"github.com/jakechorley/flightguard/pkg/core/model"
	"github.com/jakechorley/flightguard/pkg/realtime"
)

// FlightStore is the persistence contract for single-flight mutation.
// MarkOperated must be a conditional update: it sets the operated columns
// only where the flag is currently false, reports won=false when another
// writer got there first, and returns the authoritative row either way.
type FlightStore interface {
	GetFlight(ctx context.Context, flightID string) (*model.Flight, error)
	MarkOperated(ctx context.Context, flightID, operator string, at time.Time) (flight *model.Flight, won bool, err error)
}

// MarkOperated flips a flight's operated flag exactly once. The returned
// flight is nil (with a nil error) when a concurrent operator already
// marked it; the caller refreshes its view from the store in that case.
// Marking is irrevocable and idempotent re-submission never overwrites the
// original provenance.
func MarkOperated(
	ctx context.Context,
	store FlightStore,
	auth authz.Authorizer,
	pub realtime.Publisher,
	logger *zap.Logger,
	flightID, actor string,
) (*model.Flight, error) {
	if !auth.CanOperate(actor) {
		return nil, fmt.Errorf("actor %q: %w", actor, model.ErrUnauthorized)
	}

	op, err := lifecycle.NewOperation(actor, time.Time{})
	if err != nil {
		return nil, err
	}

	flight, won, err := store.MarkOperated(ctx, flightID, op.Operator, op.At)
	if err != nil {
		return nil, fmt.Errorf("failed to mark flight operated: %w", err)
	}

	if !won {
		logger.Debug("Flight already operated by another session",
			zap.String("flight_id", flightID),
			zap.String("actor", op.Operator))
		return nil, nil
	}

	logger.Info("Flight marked operated",
		zap.String("flight_id", flightID),
		zap.String("dataset_id", flight.DatasetID),
		zap.String("operator", op.Operator))

	publish(ctx, pub, logger, realtime.Event{
		DatasetID: flight.DatasetID,
		Kind:      realtime.FlightsChanged,
		Actor:     op.Operator,
		Payload:   flight,
	})

	return flight, nil
}

// SetOperated handles a client request that carries an explicit desired
// operated value. Requesting true routes through MarkOperated; requesting
// false on an operated flight is an integrity violation and fails with
// ErrIllegalTransition without touching any persisted field.
func SetOperated(
	ctx context.Context,
	store FlightStore,
	auth authz.Authorizer,
	pub realtime.Publisher,
	logger *zap.Logger,
	flightID string, operated bool, actor string,
) (*model.Flight, error) {
	if !auth.CanOperate(actor) {
		return nil, fmt.Errorf("actor %q: %w", actor, model.ErrUnauthorized)
	}

	current, err := store.GetFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}

	if err := lifecycle.ValidateTransition(current.Operated, operated); err != nil {
		logger.Error("Rejected illegal operated transition",
			zap.String("flight_id", flightID),
			zap.String("actor", actor))
		return nil, err
	}

	if !operated {
		// Unoperated and staying unoperated: nothing to write.
		return current, nil
	}

	return MarkOperated(ctx, store, auth, pub, logger, flightID, actor)
}
