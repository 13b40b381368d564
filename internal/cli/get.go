package cli

import (
	"github.com/rcliao/codebook/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Retrieve a saved run",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().Bool("slips", false, "Include the recorded slips")
	cmd.Flags().Bool("no-text", false, "Omit the run text")

	runsCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	withSlips, _ := cmd.Flags().GetBool("slips")
	noText, _ := cmd.Flags().GetBool("no-text")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	run, err := s.Get(cmd.Context(), store.GetParams{ID: args[0], Slips: withSlips})
	if err != nil {
		exitErr("get", err)
	}
	if noText {
		run.Text = ""
	}
	printJSON(run)
}
