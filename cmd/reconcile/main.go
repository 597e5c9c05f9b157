// Command reconcile is the CLI entrypoint for the meeting/work-item time
// reconciliation engine.
package main

import (
	"os"

	"github.com/bvtime/reconciler/cli"
)

func main() {
	os.Exit(cli.Execute())
}
