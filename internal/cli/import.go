package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rcliao/codebook/internal/model"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import saved runs from JSON",
		Long:  "Import runs from JSON (file or stdin). Expects the format produced by export; runs whose id already exists are skipped.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := readInput(args)
	if err != nil {
		exitErr("read input", err)
	}

	var runs []model.Run
	if err := json.Unmarshal([]byte(data), &runs); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), runs)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d,"skipped":%d}`+"\n", imported, len(runs)-imported)
}
