package assign

import (
	"sort"

	"github.com/jakechorley/flightguard/pkg/core/model"
)

// Result is the outcome of partitioning one day's flights.
type Result struct {
	// Labels holds one entry per input flight, ATENDER for the first
	// RequiredCount flights of each category in rank order and
	// NO_ATENDER for the remainder.
	Labels []model.FlightLabel

	// Summary holds one entry per category, ordered by category name.
	Summary []model.CategorySummary
}

// Partition groups flights by category and applies the seeded ranking and
// the per-category quota. Categories absent from targets default to a zero
// percent target. The function is generic over arbitrary category labels;
// nothing about the known protection categories is hard-coded.
func Partition(flights []model.Flight, targets map[string]float64, seed string) Result {
	groups := make(map[string][]model.Flight)
	for _, f := range flights {
		groups[f.Category] = append(groups[f.Category], f)
	}

	categories := make([]string, 0, len(groups))
	for category := range groups {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	result := Result{
		Labels:  make([]model.FlightLabel, 0, len(flights)),
		Summary: make([]model.CategorySummary, 0, len(categories)),
	}

	for _, category := range categories {
		group := groups[category]
		targetPercent := targets[category]
		required := RequiredCount(len(group), targetPercent)

		ranked := Rank(group, seed)
		assigned := 0
		for i, f := range ranked {
			flag := model.FlagNoAtender
			if i < required {
				flag = model.FlagAtender
				assigned++
			}
			result.Labels = append(result.Labels, model.FlightLabel{
				FlightID: f.ID,
				Flag:     flag,
			})
		}

		result.Summary = append(result.Summary, model.CategorySummary{
			Category:      category,
			Total:         len(group),
			TargetPercent: targetPercent,
			RequiredCount: required,
			AssignedCount: assigned,
		})
	}

	return result
}
