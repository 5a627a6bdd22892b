package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-preview-mcp/internal/imaging"
	"github.com/ironsheep/image-preview-mcp/internal/preview"
	"github.com/ironsheep/image-preview-mcp/internal/reference"
)

var previewOutput string

var previewCmd = &cobra.Command{
	Use:   "preview <file> <line>[:<col>]",
	Short: "Resolve and decode the image at a position",
	Long: `Resolve, fetch and decode the image reference at a 1-based line and
column of a file, then print its summary ("WxH (size)") and locator.

With -o the rendered preview (fitted to preview.max_width x max_height, on a
contrasting backdrop when transparent) is written as PNG.

Example:
  image-preview preview docs/index.html 40:17 -o logo.png`,
	Args: cobra.ExactArgs(2),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "write the rendered preview PNG to this path")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
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

	res, err := a.engine.Lookup(cmd.Context(), line, pos.cursor(), source)
	if errors.Is(err, preview.ErrNoMatch) {
		return fmt.Errorf("no image reference at %s:%d:%d", args[0], pos.Line, pos.Column)
	}
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", preview.NotResolvedMessage)
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", res.Summary())
	fmt.Fprintf(out, "  resolver: %s\n", res.Reference.Kind)
	fmt.Fprintf(out, "  format:   %s (%s)\n", res.Reference.Format, res.Image.Info.MimeType)
	if res.Reference.Kind != reference.KindBase64 {
		fmt.Fprintf(out, "  locator:  %s\n", res.Locator)
	}

	if previewOutput == "" {
		return nil
	}
	rendered, err := imaging.RenderPreview(res.Image.Image, a.cfg.Preview.MaxWidth, a.cfg.Preview.MaxHeight)
	if err != nil {
		return err
	}
	data, err := imaging.EncodePNG(rendered.Image)
	if err != nil {
		return err
	}
	if err := os.WriteFile(previewOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	fmt.Fprintf(out, "  preview:  %s (%dx%d)\n", previewOutput, rendered.Width, rendered.Height)
	return nil
}
