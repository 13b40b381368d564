package cli

import (
	"github.com/spf13/cobra"
)

// runsCmd groups the run history commands; list, get, rm and search
// register themselves on it.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse saved runs",
	Long:  "Runs are recorded by validate, generate and slips when --save is given.",
}

func init() {
	RootCmd.AddCommand(runsCmd)
}
