package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show run history statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	if formatFlag != "text" {
		printJSON(stats)
		return
	}

	fmt.Printf("database: %s (%s)\n", stats.DBPath, humanize.Bytes(uint64(stats.DBSizeBytes)))
	fmt.Printf("runs: %s active, %s total\n", humanize.Comma(int64(stats.ActiveRuns)), humanize.Comma(int64(stats.TotalRuns)))
	fmt.Printf("slips: %s  chunks: %s\n", humanize.Comma(int64(stats.TotalSlips)), humanize.Comma(int64(stats.TotalChunks)))
	for _, k := range stats.Kinds {
		fmt.Printf("  %-9s %6d runs, %d valid\n", k.Kind, k.Count, k.Valid)
	}
	for _, l := range stats.Lattices {
		fp := l.Fingerprint
		if len(fp) > 12 {
			fp = fp[:12]
		}
		fmt.Printf("  lattice %s: %d runs\n", fp, l.Runs)
	}
	if len(stats.TopSlips) > 0 {
		fmt.Println("most frequent slips:")
		for i, t := range stats.TopSlips {
			fmt.Printf("  %s %s (%s, %d times)\n", humanize.Ordinal(i+1), t.Token, t.Adjacency, t.Count)
		}
	}
}
