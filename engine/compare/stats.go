package compare

import (
	"math"
	"sort"
)

// BatchStats summarises a batch of comparisons: totals, per-level counts,
// and the overall variance across the batch (sum of actual vs sum of
// estimate, not an average of per-item ratios).
type BatchStats struct {
	Count              int
	CountByLevel       map[DeviationLevel]int
	Acceptable         int
	Deviating          int
	TotalEstimateHours float64
	// TotalActualHours and TotalMeetingHours are the same figure by
	// construction: a comparison's ActualHours is always the sum of the
	// meeting durations matched to its work item (engine/reconcile's
	// buildComparisons), so there is no separately tracked "actual" total
	// distinct from meeting time in this system. Both names are kept
	// since §4.F names them as separate totals.
	TotalActualHours  float64
	TotalMeetingHours float64
	// TotalExecutionHours sums Comparison.ExecutionHours, which stays
	// zero until an upstream component populates the field (SPEC_FULL.md
	// §9: execution_hours is intentionally unwired).
	TotalExecutionHours float64
	OverallVariancePct  float64
	AverageVariancePct  float64
}

// BuildBatchStats aggregates a slice of comparisons. Infinite variances are
// excluded from the average (they would swamp it) but still counted by
// level.
func BuildBatchStats(comparisons []Comparison) BatchStats {
	stats := BatchStats{CountByLevel: map[DeviationLevel]int{}}
	var sumPct float64
	var finiteCount int

	for _, c := range comparisons {
		stats.Count++
		stats.CountByLevel[c.Deviation]++
		if c.IsAcceptable {
			stats.Acceptable++
		} else {
			stats.Deviating++
		}
		stats.TotalEstimateHours += c.EstimateHours
		stats.TotalActualHours += c.ActualHours
		stats.TotalMeetingHours += c.ActualHours
		stats.TotalExecutionHours += c.ExecutionHours
		if !math.IsInf(c.VariancePercentage, 0) {
			sumPct += c.VariancePercentage
			finiteCount++
		}
	}

	if stats.TotalEstimateHours != 0 {
		stats.OverallVariancePct = (stats.TotalActualHours - stats.TotalEstimateHours) / stats.TotalEstimateHours * 100
	}
	if finiteCount > 0 {
		stats.AverageVariancePct = sumPct / float64(finiteCount)
	}
	return stats
}

// Discrepancy pairs a work item ID with its comparison, used by TopN to
// surface the widest-variance items.
type Discrepancy struct {
	WorkItemID int
	Comparison Comparison
}

// TopN returns up to n discrepancies ordered by |variance_percentage|
// descending. Infinite variances always sort first.
func TopN(items []Discrepancy, n int) []Discrepancy {
	sorted := make([]Discrepancy, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Comparison.VariancePercentage) > math.Abs(sorted[j].Comparison.VariancePercentage)
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// levelRank orders DeviationLevel for ExtractDiscrepancies' descending
// sort: none < light < moderate < high.
var levelRank = map[DeviationLevel]int{
	DeviationNone:     0,
	DeviationLight:    1,
	DeviationModerate: 2,
	DeviationHigh:     3,
}

// ExtractDiscrepancies implements §4.F's discrepancy extraction: filter to
// level >= minLevel, then sort by (level descending, |variance_percentage|
// descending). Distinct from TopN, which truncates the full set by
// variance magnitude alone without any level filter.
func ExtractDiscrepancies(items []Discrepancy, minLevel DeviationLevel) []Discrepancy {
	minRank := levelRank[minLevel]
	out := make([]Discrepancy, 0, len(items))
	for _, d := range items {
		if levelRank[d.Comparison.Deviation] >= minRank {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := levelRank[out[i].Comparison.Deviation], levelRank[out[j].Comparison.Deviation]
		if ri != rj {
			return ri > rj
		}
		return math.Abs(out[i].Comparison.VariancePercentage) > math.Abs(out[j].Comparison.VariancePercentage)
	})
	return out
}
