// Package report renders an orchestrator run as JSON (machine-consumable)
// or CSV (human-consumable) output.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/tidwall/pretty"

	"github.com/bvtime/reconciler/engine/compare"
	"github.com/bvtime/reconciler/engine/reconcile"
)

// Filename renders the canonical output name for a run at `when`
// (reconcile-report-{YYYY-MM-DD}.{ext}).
func Filename(when time.Time, ext string) string {
	return fmt.Sprintf("reconcile-report-%s.%s", when.Format("2006-01-02"), ext)
}

// jsonDiscrepancy mirrors compare.Discrepancy with a JSON-safe
// VariancePercentage: encoding/json cannot marshal +Inf, so the sentinel
// is rendered as the string "Infinity" in the compact encoding/json output
// that pretty.Pretty then reformats.
type jsonDiscrepancy struct {
	WorkItemID         int     `json:"work_item_id"`
	ActualHours        float64 `json:"actual_hours"`
	EstimateHours      float64 `json:"estimate_hours"`
	VarianceAbsolute   float64 `json:"variance_absolute"`
	VariancePercentage any     `json:"variance_percentage"`
	VarianceRatio      any     `json:"variance_ratio"`
	Deviation          string  `json:"deviation"`
}

func toJSONDiscrepancy(d compare.Discrepancy) jsonDiscrepancy {
	return jsonDiscrepancy{
		WorkItemID:         d.WorkItemID,
		ActualHours:        d.Comparison.ActualHours,
		EstimateHours:      d.Comparison.EstimateHours,
		VarianceAbsolute:   d.Comparison.VarianceAbsolute,
		VariancePercentage: sentinel(d.Comparison.VariancePercentage),
		VarianceRatio:      sentinel(d.Comparison.VarianceRatio),
		Deviation:          string(d.Comparison.Deviation),
	}
}

func sentinel(v float64) any {
	if math.IsInf(v, 1) {
		return "Infinity"
	}
	if math.IsInf(v, -1) {
		return "-Infinity"
	}
	return v
}

// jsonBatchStats mirrors compare.BatchStats, applying the same +/-Inf
// sentinel to OverallVariancePct/AverageVariancePct that toJSONDiscrepancy
// applies per-item.
type jsonBatchStats struct {
	Count               int            `json:"count"`
	CountByLevel        map[string]int `json:"count_by_level"`
	Acceptable          int            `json:"acceptable"`
	Deviating           int            `json:"deviating"`
	TotalEstimateHours  float64        `json:"total_estimate_hours"`
	TotalActualHours    float64        `json:"total_actual_hours"`
	TotalMeetingHours   float64        `json:"total_meeting_hours"`
	TotalExecutionHours float64        `json:"total_execution_hours"`
	OverallVariancePct  any            `json:"overall_variance_pct"`
	AverageVariancePct  any            `json:"average_variance_pct"`
}

func toJSONBatchStats(s compare.BatchStats) jsonBatchStats {
	byLevel := make(map[string]int, len(s.CountByLevel))
	for level, count := range s.CountByLevel {
		byLevel[string(level)] = count
	}
	return jsonBatchStats{
		Count:               s.Count,
		CountByLevel:        byLevel,
		Acceptable:          s.Acceptable,
		Deviating:           s.Deviating,
		TotalEstimateHours:  s.TotalEstimateHours,
		TotalActualHours:    s.TotalActualHours,
		TotalMeetingHours:   s.TotalMeetingHours,
		TotalExecutionHours: s.TotalExecutionHours,
		OverallVariancePct:  sentinel(s.OverallVariancePct),
		AverageVariancePct:  sentinel(s.AverageVariancePct),
	}
}

func comparisonsOf(discrepancies []compare.Discrepancy) []compare.Comparison {
	out := make([]compare.Comparison, len(discrepancies))
	for i, d := range discrepancies {
		out[i] = d.Comparison
	}
	return out
}

// document is the full run record serialised to JSON.
type document struct {
	GeneratedAt   time.Time         `json:"generated_at"`
	Success       bool              `json:"success"`
	MeetingsTotal int               `json:"meetings_total"`
	Matched       int               `json:"matched"`
	Unmatched     int               `json:"unmatched"`
	Comparisons   []jsonDiscrepancy `json:"comparisons"`
	Stats         jsonBatchStats    `json:"stats"`
	Successful    int               `json:"successful"`
	Failed        int               `json:"failed"`
	Skipped       int               `json:"skipped"`
	ConflictSkips int               `json:"conflict_skips"`
	Errors        []string          `json:"errors"`
}

// WriteJSON renders result as pretty-printed JSON. The comparisons array
// is extracted per §4.F's discrepancy-extraction rule (filtered to
// minLevel and sorted level-then-variance); stats summarise the full,
// unfiltered batch regardless of minLevel.
func WriteJSON(w io.Writer, result reconcile.Result, generatedAt time.Time, minLevel compare.DeviationLevel) error {
	doc := document{
		GeneratedAt:   generatedAt,
		Success:       result.Success,
		MeetingsTotal: len(result.Meetings),
		Matched:       len(result.Matches),
		Unmatched:     len(result.Unmatched),
		Stats:         toJSONBatchStats(compare.BuildBatchStats(comparisonsOf(result.Comparisons))),
		Successful:    result.BatchResult.Successful,
		Failed:        result.BatchResult.Failed,
		Skipped:       result.BatchResult.Skipped,
		ConflictSkips: result.ConflictSkips,
		Errors:        result.Errors,
	}
	for _, d := range compare.ExtractDiscrepancies(result.Comparisons, minLevel) {
		doc.Comparisons = append(doc.Comparisons, toJSONDiscrepancy(d))
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	formatted := pretty.Pretty(raw)
	_, err = w.Write(formatted)
	return err
}

// WriteCSV renders one row per discrepancy at or above minLevel,
// human-readable.
func WriteCSV(w io.Writer, result reconcile.Result, minLevel compare.DeviationLevel) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"work_item_id", "actual_hours", "estimate_hours", "variance_percentage", "deviation"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, d := range compare.ExtractDiscrepancies(result.Comparisons, minLevel) {
		row := []string{
			strconv.Itoa(d.WorkItemID),
			strconv.FormatFloat(d.Comparison.ActualHours, 'f', 2, 64),
			strconv.FormatFloat(d.Comparison.EstimateHours, 'f', 2, 64),
			formatVariance(d.Comparison.VariancePercentage),
			string(d.Comparison.Deviation),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

func formatVariance(v float64) string {
	if math.IsInf(v, 1) {
		return "Infinity"
	}
	if math.IsInf(v, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
