package cli

import (
	"fmt"
	"strings"

	"github.com/rcliao/codebook/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [tokens...]",
		Short: "Search saved run text by token",
		Long:  "Find saved runs whose text contains every given token. Dotted sequences such as daiin.ol match as a phrase.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().String("kind", "", "Filter by kind")
	cmd.Flags().Int("limit", 20, "Max results")

	runsCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		Query: query,
		Kind:  kind,
		Limit: limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if len(results) == 0 {
		fmt.Println("[]")
		return
	}

	for i := range results {
		results[i].Text = ""
		results[i].Payload = nil
	}
	printJSON(results)
}
