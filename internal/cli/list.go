package cli

import (
	"fmt"

	"github.com/rcliao/codebook/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		Args:  cobra.NoArgs,
		Run:   runList,
	}

	cmd.Flags().String("kind", "", "Filter by kind: validate, generate or slips")
	cmd.Flags().String("label", "", "Filter by label")
	cmd.Flags().String("fingerprint", "", "Filter by lattice fingerprint prefix")
	cmd.Flags().Int("limit", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output run ids")

	runsCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	label, _ := cmd.Flags().GetString("label")
	fingerprint, _ := cmd.Flags().GetString("fingerprint")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.List(cmd.Context(), store.ListParams{
		Kind:        kind,
		Label:       label,
		Fingerprint: fingerprint,
		Limit:       limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, r := range runs {
			fmt.Println(r.ID)
		}
		return
	}

	// the listing omits run text; use runs get for it
	for i := range runs {
		runs[i].Text = ""
		runs[i].Payload = nil
	}
	if runs == nil {
		fmt.Println("[]")
		return
	}
	printJSON(runs)
}
