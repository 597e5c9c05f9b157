package conflict

// Strategy is a resolution policy (§3/§4.G).
type Strategy string

const (
	StrategyOverride Strategy = "override"
	StrategyAdd      Strategy = "add"
	StrategySkip     Strategy = "skip"
	StrategyFail     Strategy = "fail"
)

// Resolution is the outcome of applying a strategy to a candidate (§3).
type Resolution struct {
	Strategy    Strategy
	FinalValue  *float64
	Resolved    bool
	ActionTaken string
}

// Resolve applies strategy to the candidate's current/proposed values.
// CanProceed=false on any of c's conflicts forces an unresolved result
// regardless of the requested strategy.
func Resolve(c Candidate, conflicts []Conflict, strategy Strategy) Resolution {
	if !CanProceed(conflicts) {
		return Resolution{Strategy: StrategyFail, Resolved: false, ActionTaken: "blocked"}
	}

	switch strategy {
	case StrategyOverride:
		v := c.ProposedHours
		return Resolution{Strategy: strategy, FinalValue: &v, Resolved: true, ActionTaken: "overridden"}
	case StrategyAdd:
		v := c.CurrentHours + c.ProposedHours
		return Resolution{Strategy: strategy, FinalValue: &v, Resolved: true, ActionTaken: "added"}
	case StrategySkip:
		v := c.CurrentHours
		return Resolution{Strategy: strategy, FinalValue: &v, Resolved: true, ActionTaken: "skipped"}
	case StrategyFail:
		return Resolution{Strategy: strategy, Resolved: false, ActionTaken: "failed"}
	default:
		return Resolution{Strategy: StrategyFail, Resolved: false, ActionTaken: "unknown_strategy"}
	}
}
