package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rcliao/codebook/internal/model"
	"github.com/rcliao/codebook/internal/store"
	"github.com/rcliao/codebook/internal/validate"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate transliterated text",
		Long: "Validate text from a file or stdin. Modes: syntax (line grammar and convention), " +
			"sanitized (adds the sanitized token stream), lattice (adds coverage, unknown tokens and admissibility). " +
			"Exits 1 when the report is invalid.",
		Args: cobra.MaximumNArgs(1),
		Run:  runValidate,
	}

	cmd.Flags().StringP("mode", "m", string(model.ModeSyntax), "Validation mode: syntax, sanitized or lattice")
	cmd.Flags().Bool("strict", true, "Treat non-canonical transliteration as an error (default: validate.strict from config)")
	cmd.Flags().Float64("coverage-threshold", 0, "Coverage below which a warning is emitted, 0 disables it (default: validate.coverage_threshold from config)")
	cmd.Flags().Bool("quiet", false, "Omit per-line diagnostics and texts from the report")
	addAdjacencyFlags(cmd)
	addSaveFlags(cmd)

	RootCmd.AddCommand(cmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	mode, _ := cmd.Flags().GetString("mode")
	quiet, _ := cmd.Flags().GetBool("quiet")

	opts := validate.DefaultOptions()
	strict := cfg.Validate.Strict
	if cmd.Flags().Changed("strict") {
		strict, _ = cmd.Flags().GetBool("strict")
	}
	opts.Relaxed = !strict
	threshold := cfg.Validate.CoverageThreshold
	if cmd.Flags().Changed("coverage-threshold") {
		threshold, _ = cmd.Flags().GetFloat64("coverage-threshold")
	}
	opts.CoverageThreshold = &threshold
	opts.StartWindow = startWindow(cmd)
	opts.Adjacency = adjacencyRule(cmd)
	opts.Logger = logger

	if model.Mode(mode) == model.ModeLattice {
		m, err := loadLattice()
		if err != nil {
			exitErr("load lattice", err)
		}
		opts.Lattice = m
	}

	text, err := readInput(args)
	if err != nil {
		exitErr("read input", err)
	}

	r := validate.Validate(text, model.Mode(mode), opts)

	payload, _ := json.Marshal(r)
	saveRun(cmd, store.PutParams{
		Kind:               model.KindValidate,
		LatticeFingerprint: r.LatticeFingerprint,
		Mode:               r.Mode,
		Valid:              &r.Valid,
		Errors:             len(r.Errors),
		Warnings:           len(r.Warnings),
		Tokens:             r.TokenCount,
		Coverage:           r.CoverageRate,
		Text:               text,
		Payload:            payload,
	})

	if quiet {
		r.Diagnostics = nil
		r.NormalizedText = ""
		r.SanitizedText = ""
	}

	if formatFlag == "text" {
		printReportText(r)
	} else {
		printJSON(r)
	}
	if !r.Valid {
		os.Exit(1)
	}
}

func printReportText(r *model.Report) {
	fmt.Printf("mode: %s  valid: %t  tokens: %d  errors: %d  warnings: %d\n",
		r.Mode, r.Valid, r.TokenCount, len(r.Errors), len(r.Warnings))
	if r.CoverageRate != nil {
		fmt.Printf("coverage: %.3f\n", *r.CoverageRate)
	}
	if a := r.Admissibility; a != nil {
		fmt.Printf("admissible: %d  slipped: %d  desynced: %d  unknown: %d\n",
			a.Admissible, a.Slipped, a.Desynced, a.Unknown)
	}
	for _, d := range r.Errors {
		if d.Line > 0 {
			fmt.Printf("line %d: %s\n", d.Line, d.Message)
		} else {
			fmt.Println(d.Message)
		}
	}
	for _, w := range r.Warnings {
		fmt.Println("warning:", w)
	}
}
