package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/flightguard/pkg/authz"
	"github.com/jakechorley/flightguard/pkg/core/dates"
	"github.com/jakechorley/flightguard/pkg/core/model"
	"github.com/jakechorley/flightguard/pkg/realtime"
)

// ConfigStore is the persistence contract for dataset configuration.
// Configuration writes are last-writer-wins; no conditional update.
type ConfigStore interface {
	GetDataset(ctx context.Context, datasetID string) (*model.Dataset, error)
	UpsertCategoryTargets(ctx context.Context, datasetID string, targets []model.CategoryTarget) error
	GetCategoryTargets(ctx context.Context, datasetID string) ([]model.CategoryTarget, error)
	SaveSettings(ctx context.Context, settings *model.DatasetSettings) error
	GetSettings(ctx context.Context, datasetID string) (*model.DatasetSettings, error)
}

// TargetInput is one category's requested percentage.
type TargetInput struct {
	Category      string  `json:"category"`
	TargetPercent float64 `json:"targetPercent"`
}

// SaveTargets upserts the per-category minimum-service percentages for a
// dataset. Admin-only. Percentages are clamped to [0,100] and rounded to
// two decimals here; this is the single write path for them, which is what
// lets the quota calculator trust its input range.
func SaveTargets(
	ctx context.Context,
	store ConfigStore,
	auth authz.Authorizer,
	pub realtime.Publisher,
	logger *zap.Logger,
	datasetID string, inputs []TargetInput, actor string,
) ([]model.CategoryTarget, error) {
	if !auth.CanAdminister(actor) {
		return nil, fmt.Errorf("actor %q: %w", actor, model.ErrUnauthorized)
	}

	if _, err := store.GetDataset(ctx, datasetID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	targets := make([]model.CategoryTarget, 0, len(inputs))
	for _, input := range inputs {
		if input.Category == "" {
			return nil, fmt.Errorf("target with empty category")
		}
		targets = append(targets, model.CategoryTarget{
			DatasetID:     datasetID,
			Category:      input.Category,
			TargetPercent: clampPercent(input.TargetPercent),
			UpdatedAt:     now,
			UpdatedBy:     actor,
		})
	}

	if err := store.UpsertCategoryTargets(ctx, datasetID, targets); err != nil {
		return nil, fmt.Errorf("failed to save targets: %w", err)
	}

	logger.Info("Category targets saved",
		zap.String("dataset_id", datasetID),
		zap.Int("count", len(targets)),
		zap.String("actor", actor))

	publish(ctx, pub, logger, realtime.Event{
		DatasetID: datasetID,
		Kind:      realtime.TargetsChanged,
		Actor:     actor,
		Payload:   targets,
	})

	return targets, nil
}

// LockParameters stores the work date for a dataset. The raw text is kept
// as entered; it only has to normalize to a valid date. Presence of
// settings plus at least one target signals "parameters locked" to clients.
func LockParameters(
	ctx context.Context,
	store ConfigStore,
	auth authz.Authorizer,
	pub realtime.Publisher,
	logger *zap.Logger,
	datasetID, rawWorkDate, actor string,
) (*model.DatasetSettings, error) {
	if !auth.CanAdminister(actor) {
		return nil, fmt.Errorf("actor %q: %w", actor, model.ErrUnauthorized)
	}

	workDate, err := dates.Normalize(rawWorkDate)
	if err != nil || workDate.IsZero() {
		return nil, fmt.Errorf("work date %q: %w", rawWorkDate, model.ErrInvalidWorkDate)
	}

	if _, err := store.GetDataset(ctx, datasetID); err != nil {
		return nil, err
	}

	settings := &model.DatasetSettings{
		DatasetID: datasetID,
		WorkDate:  rawWorkDate,
		UpdatedAt: time.Now().UTC(),
		UpdatedBy: actor,
	}
	if err := store.SaveSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	logger.Info("Work date locked",
		zap.String("dataset_id", datasetID),
		zap.String("work_date", workDate.ISO),
		zap.String("actor", actor))

	publish(ctx, pub, logger, realtime.Event{
		DatasetID: datasetID,
		Kind:      realtime.SettingsChanged,
		Actor:     actor,
		Payload:   settings,
	})

	return settings, nil
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	// Two-decimal precision, matching the stored column scale.
	return float64(int64(p*100+0.5)) / 100
}
