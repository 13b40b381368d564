package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rcliao/codebook/internal/model"
	"github.com/rcliao/codebook/internal/slip"
	"github.com/rcliao/codebook/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "slips [file]",
		Short: "Find adjacent-window slips in a corpus",
		Long: "Replay the corpus (file or stdin) through the lattice and report every token the expected " +
			"window rejects but an adjacent window admits. The corpus is parsed and sanitized first; " +
			"malformed lines are skipped.",
		Args: cobra.MaximumNArgs(1),
		Run:  runSlips,
	}

	addAdjacencyFlags(cmd)
	cmd.Flags().Int("lines-per-page", 0, "Lines per page; with --reset-at-page the replay returns to the hub each page")
	cmd.Flags().Bool("reset-at-page", false, "Return to the hub window at every page boundary")
	addSaveFlags(cmd)

	RootCmd.AddCommand(cmd)
}

// slipReport is the printed form of a detection pass.
type slipReport struct {
	*slip.Result
	Lines              int     `json:"lines"`
	Rate               float64 `json:"slip_rate"`
	LatticeFingerprint string  `json:"lattice_fingerprint"`
}

func runSlips(cmd *cobra.Command, args []string) {
	m, err := loadLattice()
	if err != nil {
		exitErr("load lattice", err)
	}
	text, err := readInput(args)
	if err != nil {
		exitErr("read input", err)
	}

	opts := slip.Options{
		StartWindow: startWindow(cmd),
		Adjacency:   adjacencyRule(cmd),
		Logger:      logger,
	}
	opts.LinesPerPage, _ = cmd.Flags().GetInt("lines-per-page")
	opts.ResetAtPage, _ = cmd.Flags().GetBool("reset-at-page")

	corpus := slip.CorpusFromText(text, nil)
	res := slip.Detect(m, corpus, opts)
	rep := slipReport{Result: res, Lines: len(corpus), Rate: res.Rate(), LatticeFingerprint: m.Fingerprint()}

	payload, _ := json.Marshal(rep)
	saveRun(cmd, store.PutParams{
		Kind:               model.KindSlips,
		LatticeFingerprint: m.Fingerprint(),
		Tokens:             res.Tokens,
		Text:               text,
		Payload:            payload,
		Slips:              res.Slips,
	})

	if formatFlag == "text" {
		fmt.Printf("lines: %d  tokens: %d  slips: %d  rate: %.4f\n", rep.Lines, res.Tokens, len(res.Slips), rep.Rate)
		fmt.Printf("admissible: %d  desynced: %d  unknown: %d\n", res.Admissible, res.Desynced, res.Unknown)
		for _, s := range res.Slips {
			fmt.Printf("line %d pos %d: %s expected %d, found in %d (%s)\n",
				s.Line, s.Position, s.Token, s.ExpectedWindow, s.MatchedWindow, s.Adjacency)
		}
		return
	}
	printJSON(rep)
}
