// Package cli implements the codebook CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rcliao/codebook/internal/config"
	"github.com/rcliao/codebook/internal/lattice"
	"github.com/rcliao/codebook/internal/logging"
	"github.com/rcliao/codebook/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath      string
	latticePath string
	formatFlag  string
	logLevel    string

	cfg    config.Config
	logger = logging.Discard()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "codebook",
	Short: "Validate, generate and analyse text against a window lattice",
	Long: "Validate transliterated manuscript text, generate synthetic lines from a window lattice, " +
		"and find adjacent-window slips. Runs can be saved to a SQLite history.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		level := cfg.Log.Level
		if logLevel != "" {
			level = logLevel
		}
		logger = logging.New(os.Stderr, level, logging.Format(cfg.Log.Format))
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&latticePath, "lattice", "l", "", "Lattice dataset, .json or .json.xz (default: lattice.path from config)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Run history database (default: $CODEBOOK_STORE_PATH or ~/.codebook/runs.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.Store.Path
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

var errNoLattice = errors.New("no lattice dataset: pass --lattice or set lattice.path")

// loadLattice loads the dataset once per invocation.
func loadLattice() (*lattice.Model, error) {
	path := latticePath
	if path == "" {
		path = cfg.Lattice.Path
	}
	if path == "" {
		return nil, errNoLattice
	}
	m, err := lattice.LoadFile(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("lattice loaded", "path", path, "windows", m.WindowCount(), "tokens", m.TokenCount(), "fingerprint", m.Fingerprint())
	return m, nil
}

// readInput reads the named file, or stdin when no file or "-" is given.
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(args[0])
	return string(b), err
}

// startWindow turns the --start-window flag into an optional window; a
// negative value means the lattice hub.
func startWindow(cmd *cobra.Command) *int {
	w, _ := cmd.Flags().GetInt("start-window")
	if w < 0 {
		return nil
	}
	return &w
}

func adjacencyRule(cmd *cobra.Command) *lattice.AdjacencyRule {
	noNumeric, _ := cmd.Flags().GetBool("no-numeric")
	noVertical, _ := cmd.Flags().GetBool("no-vertical")
	preferVertical, _ := cmd.Flags().GetBool("prefer-vertical")
	return &lattice.AdjacencyRule{Numeric: !noNumeric, Vertical: !noVertical, PreferVertical: preferVertical}
}

func addAdjacencyFlags(cmd *cobra.Command) {
	cmd.Flags().Int("start-window", -1, "Window the replay starts in (default: lattice hub)")
	cmd.Flags().Bool("no-numeric", false, "Do not count numeric neighbours (w±1) as adjacent")
	cmd.Flags().Bool("no-vertical", false, "Do not count the previous line's final window as adjacent")
	cmd.Flags().Bool("prefer-vertical", false, "Prefer the vertical neighbour when both kinds match")
}

func addSaveFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("save", false, "Record the run in the history database")
	cmd.Flags().String("label", "", "Label for a saved run")
}

// saveRun records p when --save is set and prints nothing itself.
func saveRun(cmd *cobra.Command, p store.PutParams) {
	if save, _ := cmd.Flags().GetBool("save"); !save {
		return
	}
	p.Label, _ = cmd.Flags().GetString("label")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	run, err := s.Put(cmd.Context(), p)
	if err != nil {
		exitErr("save run", err)
	}
	logger.Info("run saved", slog.String("id", run.ID), slog.String("kind", run.Kind))
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
