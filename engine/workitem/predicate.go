package workitem

import (
	"fmt"
	"strings"
)

// Predicate is a typed WIQL filter, rendered to the string the work-item
// provider's /wiql endpoint expects. This mirrors the squirrel-style typed
// query builder the teacher uses for SQL (engine/infra/postgres), applied
// here to a WIQL string instead of SQL, since WIQL is not a SQL dialect
// squirrel itself can target.
type Predicate struct {
	ExcludeStates []string
	AssignedTo    string
	Project       string
}

// ExcludeTerminalStates returns the default predicate the Orchestrator's
// stage 3 uses: every open work item, terminal states excluded.
func ExcludeTerminalStates(project string) Predicate {
	return Predicate{
		ExcludeStates: []string{StateRemoved, StateClosed, StateDeleted},
		Project:       project,
	}
}

// Render builds the WIQL query string for this predicate.
func (p Predicate) Render() string {
	var clauses []string
	for _, state := range p.ExcludeStates {
		clauses = append(clauses, fmt.Sprintf("[System.State] <> '%s'", escape(state)))
	}
	if p.AssignedTo != "" {
		clauses = append(clauses, fmt.Sprintf("[System.AssignedTo] = '%s'", escape(p.AssignedTo)))
	}

	where := "1=1"
	if len(clauses) > 0 {
		where = strings.Join(clauses, " AND ")
	}
	return fmt.Sprintf(
		"SELECT [System.Id] FROM WorkItems WHERE %s ORDER BY [System.Id]",
		where,
	)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
