package cli

import (
	"fmt"
	"io"

	"github.com/bvtime/reconciler/engine/reconcile"
)

// maxSummaryErrors caps the error lines printed in the summary per §7
// ("first ≤ 5 error messages").
const maxSummaryErrors = 5

// printSummary renders a run's result as the Spanish-language operator
// summary §7 requires, preserved for continuity with existing operators.
func printSummary(w io.Writer, result reconcile.Result) {
	fmt.Fprintln(w, "Resumen de conciliación")
	fmt.Fprintf(w, "  Reuniones encontradas: %d\n", len(result.Meetings))
	fmt.Fprintf(w, "  Reuniones emparejadas: %d\n", len(result.Matches))
	fmt.Fprintf(w, "  Reuniones sin emparejar: %d\n", len(result.Unmatched))
	fmt.Fprintf(w, "  Comparaciones: %d\n", len(result.Comparisons))
	fmt.Fprintf(w, "  Actualizaciones exitosas: %d\n", result.BatchResult.Successful)
	fmt.Fprintf(w, "  Actualizaciones fallidas: %d\n", result.BatchResult.Failed)
	fmt.Fprintf(w, "  Actualizaciones omitidas: %d\n", result.BatchResult.Skipped)
	fmt.Fprintf(w, "  Conflictos omitidos: %d\n", result.ConflictSkips)
	if result.Success {
		fmt.Fprintln(w, "  Estado: éxito")
	} else {
		fmt.Fprintln(w, "  Estado: fallido")
	}
	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "  Errores:")
		n := len(result.Errors)
		if n > maxSummaryErrors {
			n = maxSummaryErrors
		}
		for _, e := range result.Errors[:n] {
			fmt.Fprintf(w, "    - %s\n", e)
		}
	}
}
