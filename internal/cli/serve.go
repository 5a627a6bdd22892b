package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/image-preview-mcp/internal/ocr"
	"github.com/ironsheep/image-preview-mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over stdin/stdout (default)",
	Long: `Serve the image preview tools over the MCP protocol.

Requests are read from stdin and responses written to stdout, one JSON-RPC
message per line. Logs go to stderr. Configure the binary as a stdio server
in your MCP client.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Info("image preview MCP server starting",
		zap.String("version", version),
		zap.String("commit", gitCommit),
		zap.String("log_level", a.cfg.LogLevel))

	srv := server.New(a.engine, server.Options{
		MaxWidth:  a.cfg.Preview.MaxWidth,
		MaxHeight: a.cfg.Preview.MaxHeight,
		OCR: ocr.Options{
			Language:    a.cfg.OCR.Language,
			TessdataDir: a.cfg.OCR.TessdataDir,
		},
		Version: version,
		Logger:  a.log,
	})
	if err := srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
