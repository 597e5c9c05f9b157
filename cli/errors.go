package cli

import "errors"

// errRunIncomplete is returned when a reconciliation run reports
// Success = false (a fatal stage-1 failure); it maps to exit code 1.
var errRunIncomplete = errors.New("reconciliation run did not complete successfully")
