// Package compare measures meeting effort against a work item's estimate
// and classifies the deviation (component F).
package compare

import "math"

// DeviationLevel buckets |variance_percentage|/100 against configurable
// thresholds (§4.F).
type DeviationLevel string

const (
	DeviationNone     DeviationLevel = "none"
	DeviationLight    DeviationLevel = "light"
	DeviationModerate DeviationLevel = "moderate"
	DeviationHigh     DeviationLevel = "high"
)

// Thresholds holds the variance-fraction cutoffs for each level (inclusive
// upper bounds). Defaults mirror §4.F: 10% / 25% / 50%.
type Thresholds struct {
	Light    float64
	Moderate float64
	High     float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Light: 0.10, Moderate: 0.25, High: 0.50}
}

// Comparison is the result of comparing actual effort to an estimate (§3).
// VariancePercentage is a percentage (10.0 means 10%), matching the wire
// contract in §3/§4.F; VarianceRatio is a plain ratio (actual/estimated).
type Comparison struct {
	ActualHours        float64
	EstimateHours      float64
	VarianceAbsolute   float64
	VariancePercentage float64
	VarianceRatio      float64
	Deviation          DeviationLevel
	IsAcceptable       bool
	// ExecutionHours is left unwired deliberately: no upstream component
	// ever populates it (see SPEC_FULL.md §9), so it stays zero-value.
	ExecutionHours float64
}

// CompareTimes compares actual against estimate and classifies the result.
// A zero estimate makes percentage/ratio meaningless for any nonzero
// actual; per §4.F this reports +Inf rather than a divide-by-zero panic.
// compare_times(0, 0) is the degenerate case: zero variance, no deviation.
func CompareTimes(actual, estimate float64, t Thresholds) Comparison {
	c := Comparison{ActualHours: actual, EstimateHours: estimate}
	c.VarianceAbsolute = actual - estimate

	switch {
	case estimate == 0 && actual == 0:
		c.VariancePercentage = 0
		c.VarianceRatio = 0
	case estimate == 0:
		c.VariancePercentage = math.Inf(1)
		c.VarianceRatio = math.Inf(1)
	default:
		c.VariancePercentage = c.VarianceAbsolute / estimate * 100
		c.VarianceRatio = actual / estimate
	}

	c.Deviation = classify(c.VariancePercentage, t)
	c.IsAcceptable = c.Deviation == DeviationNone
	return c
}

func classify(variancePct float64, t Thresholds) DeviationLevel {
	frac := math.Abs(variancePct) / 100
	switch {
	case math.IsInf(frac, 1):
		return DeviationHigh
	case frac <= t.Light:
		return DeviationNone
	case frac <= t.Moderate:
		return DeviationLight
	case frac <= t.High:
		return DeviationModerate
	default:
		return DeviationHigh
	}
}
