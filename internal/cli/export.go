package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved runs as JSON",
		Long:  "Export saved runs, with their slips, as a JSON array. Filter by kind with --kind.",
		Run:   runExport,
	}

	cmd.Flags().String("kind", "", "Filter by kind")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ExportAll(cmd.Context(), kind)
	if err != nil {
		exitErr("export", err)
	}
	if runs == nil {
		fmt.Println("[]")
		return
	}
	printJSON(runs)
}
