package cli

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/rcliao/codebook/internal/generate"
	"github.com/rcliao/codebook/internal/model"
	"github.com/rcliao/codebook/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic lines from the lattice",
		Long: "Generate lines by traversing the lattice from a seed. The same seed, request and lattice " +
			"always produce the same output. With -f json the lines are printed with their windows.",
		Args: cobra.NoArgs,
		Run:  runGenerate,
	}

	def := generate.DefaultRequest()
	cmd.Flags().Int64("seed", def.Seed, "PRNG seed")
	cmd.Flags().IntP("lines", "n", def.LineCount, "Number of lines")
	cmd.Flags().Int("min-words", def.WordsPerLineMin, "Minimum words per line")
	cmd.Flags().Int("max-words", def.WordsPerLineMax, "Maximum words per line")
	cmd.Flags().Int("start-window", -1, "Window the traversal starts in (default: lattice hub)")
	cmd.Flags().StringP("output", "o", string(model.FormatContent), "Line format: content or locus")
	cmd.Flags().String("selection", "", "Token selection: uniform or head (default: generate.selection from config)")
	cmd.Flags().Int("lines-per-page", 0, "Lines per page for locus numbering (0: one page)")
	cmd.Flags().Bool("reset-at-page", false, "Return to the hub window at every page boundary")
	addSaveFlags(cmd)

	RootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	req := generate.Request{StartWindow: startWindow(cmd)}
	req.Seed, _ = cmd.Flags().GetInt64("seed")
	req.LineCount, _ = cmd.Flags().GetInt("lines")
	req.WordsPerLineMin, _ = cmd.Flags().GetInt("min-words")
	req.WordsPerLineMax, _ = cmd.Flags().GetInt("max-words")
	req.LinesPerPage, _ = cmd.Flags().GetInt("lines-per-page")
	req.ResetAtPage, _ = cmd.Flags().GetBool("reset-at-page")
	output, _ := cmd.Flags().GetString("output")
	req.Format = model.OutputFormat(output)
	selection, _ := cmd.Flags().GetString("selection")
	if selection == "" {
		selection = cfg.Generate.Selection
	}
	req.Selection = generate.Selection(selection)

	m, err := loadLattice()
	if err != nil {
		exitErr("load lattice", err)
	}
	g := generate.New(m, logger)
	seq, err := g.Lines(req)
	if err != nil {
		exitErr("generate", err)
	}

	var (
		text   strings.Builder
		lines  []model.LineOutput
		tokens int
	)
	w := bufio.NewWriter(os.Stdout)
	for l := range seq {
		row := l.Text(req.Format)
		text.WriteString(row)
		text.WriteByte('\n')
		tokens += len(l.Tokens)
		if formatFlag == "json" {
			lines = append(lines, l)
			continue
		}
		w.WriteString(row)
		w.WriteByte('\n')
	}
	w.Flush()
	if formatFlag == "json" {
		if lines == nil {
			lines = []model.LineOutput{}
		}
		printJSON(lines)
	}

	payload, _ := json.Marshal(req)
	saveRun(cmd, store.PutParams{
		Kind:               model.KindGenerate,
		LatticeFingerprint: m.Fingerprint(),
		Seed:               &req.Seed,
		Tokens:             tokens,
		Text:               text.String(),
		Payload:            payload,
	})
}
