package cli

import (
	"fmt"

		"github.com/rcliao/codebook/internal/sanitize"
	"github.com/rcliao/codebook/internal/validate"
	"github.com/spf13/cobra"
)

func init() {
	latticeCmd := &cobra.Command{
		Use:   "lattice",
		Short: "Inspect the lattice dataset",
	}

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Summarise the lattice",
		Args:  cobra.NoArgs,
		Run:   runLatticeInfo,
	}
	infoCmd.Flags().Bool("windows", false, "Include per-window correction and vocabulary size")

	lookupCmd := &cobra.Command{
		Use:   "lookup [token]",
		Short: "Show the windows that admit a token and where each leads",
		Long:  "The token is sanitized first. Unknown tokens list the nearest vocabulary entries.",
		Args:  cobra.ExactArgs(1),
		Run:   runLatticeLookup,
	}

	latticeCmd.AddCommand(infoCmd, lookupCmd)
	RootCmd.AddCommand(latticeCmd)
}

type windowInfo struct {
	ID         int `json:"id"`
	Correction int `json:"correction_offset"`
	Vocabulary int `json:"vocabulary"`
}

type latticeInfo struct {
	Fingerprint  string       `json:"fingerprint"`
	WindowCount  int          `json:"window_count"`
	Hub          int          `json:"hub_window"`
	Tokens       int          `json:"distinct_tokens"`
	Entries      int          `json:"vocabulary_entries"`
	EmptyWindows int          `json:"empty_windows"`
	MaxWindow    int          `json:"largest_window"`
	Windows      []windowInfo `json:"windows,omitempty"`
}

func runLatticeInfo(cmd *cobra.Command, args []string) {
	withWindows, _ := cmd.Flags().GetBool("windows")

	m, err := loadLattice()
	if err != nil {
		exitErr("load lattice", err)
	}

	info := latticeInfo{
		Fingerprint: m.Fingerprint(),
		WindowCount: m.WindowCount(),
		Hub:         m.Hub(),
		Tokens:      m.TokenCount(),
	}
	for id := 0; id < m.WindowCount(); id++ {
		n := m.VocabularySize(id)
		info.Entries += n
		if n == 0 {
			info.EmptyWindows++
		}
		info.MaxWindow = max(info.MaxWindow, n)
		if withWindows {
			info.Windows = append(info.Windows, windowInfo{ID: id, Correction: m.CorrectionOf(id), Vocabulary: n})
		}
	}

	if formatFlag == "text" {
		fmt.Printf("fingerprint: %s\n", info.Fingerprint)
		fmt.Printf("windows: %d (hub %d, %d empty)\n", info.WindowCount, info.Hub, info.EmptyWindows)
		fmt.Printf("tokens: %d distinct, %d entries, largest window %d\n", info.Tokens, info.Entries, info.MaxWindow)
		for _, w := range info.Windows {
			fmt.Printf("  %4d  corr %+d  vocab %d\n", w.ID, w.Correction, w.Vocabulary)
		}
		return
	}
	printJSON(info)
}

type candidate struct {
	Window     int `json:"window"`
	Correction int `json:"correction_offset"`
	Next       int `json:"next_window"`
}

type lookupResult struct {
	Token       string      `json:"token"`
	Canonical   string      `json:"canonical"`
	Known       bool        `json:"known"`
	RawNext     *int        `json:"raw_next,omitempty"`
	Candidates  []candidate `json:"candidates"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

func runLatticeLookup(cmd *cobra.Command, args []string) {
	m, err := loadLattice()
	if err != nil {
		exitErr("load lattice", err)
	}

	tok := sanitize.Sanitize(args[0])
	res := lookupResult{Token: args[0], Canonical: tok, Known: m.Known(tok), Candidates: []candidate{}}
	if raw, ok := m.RawNext(tok); ok {
		res.RawNext = &raw
	}
	for _, w := range m.WindowsOf(tok) {
		next, _ := m.Next(w, tok)
		res.Candidates = append(res.Candidates, candidate{Window: w, Correction: m.CorrectionOf(w), Next: next})
	}
	if !res.Known {
		res.Suggestions = m.Suggest(tok, validate.MaxSuggestions)
	}

	if formatFlag == "text" {
		if !res.Known {
			fmt.Printf("%s: unknown", tok)
			if len(res.Suggestions) > 0 {
				fmt.Printf(" (did you mean %v?)", res.Suggestions)
			}
			fmt.Println()
			return
		}
		for _, c := range res.Candidates {
			fmt.Printf("%s: window %d (corr %+d) -> %d\n", tok, c.Window, c.Correction, c.Next)
		}
		return
	}
	printJSON(res)
}
