package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-preview-mcp/internal/reference"
)

var scanFindOnly bool

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "List every image reference in a file",
	Long: `List every image reference in a file with its position, resolver and
preview summary. References that cannot be resolved or decoded are listed
with the reason.

Use --find-only to skip resolution and fetching.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanFindOnly, "find-only", false, "only list references, do not resolve or fetch them")
	rootCmd.AddCommand(scanCmd)
}

// maxTokenWidth truncates long tokens (data URIs) in scan output.
const maxTokenWidth = 60

func runScan(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	source, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", args[0], err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POSITION\tRESOLVER\tREFERENCE\tRESULT")

	total := 0
	var scanErr error
	err = forEachLine(source, func(n int, line string) bool {
		if scanFindOnly {
			for _, ref := range a.engine.Finder().FindAll(line, source) {
				total++
				fmt.Fprintf(w, "%d:%d\t%s\t%s\t%s\n", n, ref.Span.Start+1, ref.Kind, shorten(ref.Token), ref.Format)
			}
			return true
		}

		results, err := a.engine.LookupAll(cmd.Context(), line, source)
		if err != nil {
			scanErr = err
			return false
		}
		for _, res := range results {
			total++
			outcome := res.Summary()
			if res.Err != nil {
				outcome += ": " + res.Err.Error()
			} else if res.Reference.Kind != reference.KindBase64 {
				outcome += " " + res.Locator
			}
			fmt.Fprintf(w, "%d:%d\t%s\t%s\t%s\n", n, res.Reference.Span.Start+1, res.Reference.Kind, shorten(res.Reference.Token), outcome)
		}
		return true
	})
	if err != nil {
		return err
	}
	if scanErr != nil {
		return scanErr
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d image reference(s)\n", total)
	return nil
}

func shorten(s string) string {
	r := []rune(s)
	if len(r) <= maxTokenWidth {
		return s
	}
	return string(r[:maxTokenWidth-3]) + "..."
}
