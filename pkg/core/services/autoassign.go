package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/flightguard/pkg/authz"
	"github.com/jakechorley/flightguard/pkg/core/assign"
	"github.com/jakechorley/flightguard/pkg/core/dates"
	"github.com/jakechorley/flightguard/pkg/core/model"
	"github.com/jakechorley/flightguard/pkg/realtime"
)

// AssignmentStore is the persistence contract for auto-assignment runs.
// ApplyAssignment must execute as one atomic unit: acquire the scope's
// advisory lock, load the dataset's flights and targets, invoke decide,
// apply every label plus the run's provenance columns in one bulk write,
// fill in run.Summary and run.UpdatedFlightCount from the decision, persist
// the run record, and commit. Any failure leaves no partial state.
type AssignmentStore interface {
	GetDataset(ctx context.Context, datasetID string) (*model.Dataset, error)
	ApplyAssignment(ctx context.Context, scope model.AssignmentScope, run *model.AssignmentRun, decide model.DecideAssignment) error
}

// RunResult is returned to the caller of RunAutoAssignment and propagated
// to all connected sessions.
type RunResult struct {
	RunID              string                  `json:"runId"`
	Seed               string                  `json:"seed"`
	WorkDate           string                  `json:"workDate"`
	UpdatedFlightCount int                     `json:"updatedFlightCount"`
	Summary            []model.CategorySummary `json:"summary"`
}

// RunAutoAssignment partitions every flight of the dataset scheduled on the
// given work date into ATENDER / NO_ATENDER per the category targets, using
// a fresh random seed. Re-running for the same scope fully relabels the
// group; prior runs remain as audit history only.
func RunAutoAssignment(
	ctx context.Context,
	store AssignmentStore,
	auth authz.Authorizer,
	pub realtime.Publisher,
	logger *zap.Logger,
	datasetID, rawWorkDate, actor string,
) (*RunResult, error) {
	if !auth.CanOperate(actor) {
		return nil, fmt.Errorf("actor %q: %w", actor, model.ErrUnauthorized)
	}

	workDate, err := dates.Normalize(rawWorkDate)
	if err != nil || workDate.IsZero() {
		return nil, fmt.Errorf("work date %q: %w", rawWorkDate, model.ErrInvalidWorkDate)
	}

	if _, err := store.GetDataset(ctx, datasetID); err != nil {
		return nil, err
	}

	seed := newSeed()
	run := &model.AssignmentRun{
		ID:        uuid.New().String(),
		DatasetID: datasetID,
		WorkDate:  rawWorkDate,
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
		CreatedBy: actor,
	}
	scope := model.AssignmentScope{DatasetID: datasetID, WorkDateISO: workDate.ISO}

	logger.Info("Starting auto-assignment run",
		zap.String("run_id", run.ID),
		zap.String("dataset_id", datasetID),
		zap.String("work_date", workDate.ISO))

	decide := func(flights []model.Flight, targets []model.CategoryTarget) (*model.AssignmentDecision, error) {
		inScope := filterByDate(flights, workDate)

		targetByCategory := make(map[string]float64, len(targets))
		for _, t := range targets {
			targetByCategory[t.Category] = t.TargetPercent
		}

		result := assign.Partition(inScope, targetByCategory, seed)
		return &model.AssignmentDecision{
			Labels:  result.Labels,
			Summary: result.Summary,
		}, nil
	}

	if err := store.ApplyAssignment(ctx, scope, run, decide); err != nil {
		return nil, fmt.Errorf("failed to apply assignment: %w", err)
	}

	logger.Info("Auto-assignment run complete",
		zap.String("run_id", run.ID),
		zap.Int("updated_flights", run.UpdatedFlightCount))

	result := &RunResult{
		RunID:              run.ID,
		Seed:               run.Seed,
		WorkDate:           run.WorkDate,
		UpdatedFlightCount: run.UpdatedFlightCount,
		Summary:            run.Summary,
	}

	publish(ctx, pub, logger, realtime.Event{
		DatasetID: datasetID,
		Kind:      realtime.RunCompleted,
		Actor:     actor,
		Payload:   result,
	})
	publish(ctx, pub, logger, realtime.Event{
		DatasetID: datasetID,
		Kind:      realtime.FlightsChanged,
		Actor:     actor,
	})

	return result, nil
}

// filterByDate keeps flights whose normalized scheduled date matches the
// work date. Flights with blank or unparseable dates are never in scope.
func filterByDate(flights []model.Flight, workDate dates.Normalized) []model.Flight {
	var inScope []model.Flight
	for _, f := range flights {
		d, err := dates.Normalize(f.ScheduledDate)
		if err != nil || d.IsZero() {
			continue
		}
		if d.Equal(workDate) {
			inScope = append(inScope, f)
		}
	}
	return inScope
}

// newSeed generates the opaque per-run randomness source. The seed is
// persisted with the run so an auditor can recompute the exact ranking.
func newSeed() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is unrecoverable on any supported platform
		panic(fmt.Sprintf("failed to read random seed: %v", err))
	}
	return hex.EncodeToString(buf)
}

// publish sends a change event, logging failures without failing the
// already-committed operation.
func publish(ctx context.Context, pub realtime.Publisher, logger *zap.Logger, event realtime.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish change event",
			zap.String("dataset_id", event.DatasetID),
			zap.String("kind", string(event.Kind)),
			zap.Error(err))
	}
}
