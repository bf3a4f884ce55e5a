package assign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/flightguard/pkg/core/model"
)

func TestPartition_QuotaScenario(t *testing.T) {
	flights := makeFlights(10, "A")
	targets := map[string]float64{"A": 35}

	result := Partition(flights, targets, "seed-1")

	require.Len(t, result.Summary, 1)
	summary := result.Summary[0]
	assert.Equal(t, "A", summary.Category)
	assert.Equal(t, 10, summary.Total)
	assert.Equal(t, 35.0, summary.TargetPercent)
	assert.Equal(t, 4, summary.RequiredCount)
	assert.Equal(t, 4, summary.AssignedCount)

	atender := 0
	noAtender := 0
	for _, label := range result.Labels {
		switch label.Flag {
		case model.FlagAtender:
			atender++
		case model.FlagNoAtender:
			noAtender++
		}
	}
	assert.Equal(t, 4, atender)
	assert.Equal(t, 6, noAtender)
}

func TestPartition_MissingTargetDefaultsToZero(t *testing.T) {
	flights := makeFlights(5, "5.6")

	result := Partition(flights, map[string]float64{}, "seed-2")

	require.Len(t, result.Summary, 1)
	assert.Equal(t, 0, result.Summary[0].RequiredCount)
	for _, label := range result.Labels {
		assert.Equal(t, model.FlagNoAtender, label.Flag)
	}
}

func TestPartition_SummaryOrderedByCategory(t *testing.T) {
	flights := append(makeFlights(3, "5.5"), makeFlights(2, "5.3")...)
	flights = append(flights, makeFlights(4, "5.4")...)

	result := Partition(flights, map[string]float64{"5.3": 50, "5.4": 50, "5.5": 50}, "seed-3")

	require.Len(t, result.Summary, 3)
	assert.Equal(t, "5.3", result.Summary[0].Category)
	assert.Equal(t, "5.4", result.Summary[1].Category)
	assert.Equal(t, "5.5", result.Summary[2].Category)
}

func TestPartition_ReRunWithDifferentSeedKeepsCounts(t *testing.T) {
	flights := makeFlights(12, "5.3")
	targets := map[string]float64{"5.3": 25}

	first := Partition(flights, targets, "seed-a")
	second := Partition(flights, targets, "seed-b")

	require.Len(t, first.Summary, 1)
	require.Len(t, second.Summary, 1)
	assert.Equal(t, first.Summary[0].RequiredCount, first.Summary[0].AssignedCount)
	assert.Equal(t, second.Summary[0].RequiredCount, second.Summary[0].AssignedCount)
	assert.Equal(t, first.Summary[0].AssignedCount, second.Summary[0].AssignedCount)
}

func TestPartition_EveryFlightLabeled(t *testing.T) {
	flights := append(makeFlights(7, "5.3"), makeFlights(9, "5.4")...)

	result := Partition(flights, map[string]float64{"5.3": 10, "5.4": 90}, "seed-4")

	labeled := make(map[string]model.ServiceFlag)
	for _, label := range result.Labels {
		labeled[label.FlightID] = label.Flag
	}
	assert.Len(t, labeled, len(flights))
	for _, f := range flights {
		_, ok := labeled[f.ID]
		assert.True(t, ok, "flight %s missing a label", f.ID)
	}
}
