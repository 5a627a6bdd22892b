package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find <file> <line>[:<col>]",
	Short: "Print the image reference at a position as JSON",
	Long: `Print the image reference at a 1-based line and column of a file.

Nothing is resolved or fetched. Exits with an error when no reference covers
the position.

Example:
  image-preview find README.md 12:20`,
	Args: cobra.ExactArgs(2),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	pos, err := parsePosition(args[1])
	if err != nil {
		return err
	}
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	source, line, err := sourceAt(args[0], pos)
	if err != nil {
		return err
	}

	ref, ok := a.engine.Find(line, pos.cursor(), source)
	if !ok {
		return fmt.Errorf("no image reference at %s:%d:%d", args[0], pos.Line, pos.Column)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(ref)
}
