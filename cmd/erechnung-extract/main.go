package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/erechnung-extract/internal/app"
	"github.com/samvad-hq/erechnung-extract/internal/config"
	"github.com/samvad-hq/erechnung-extract/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "erechnung-extract: %v\n", err)
		os.Exit(app.ExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "erechnung-extract [pdf_path]",
		Short: "Extract embedded e-invoice XML from PDF/A-3 files via the extraction API",
		Long: `erechnung-extract checks the extraction API's health and, when given a PDF,
uploads it to the extract_xml endpoint and saves the returned XML next to the
configured output directory.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	log.DebugObj("erechnung-extract starting", "config", cfg)

	ctx := cmd.Context()
	runner, err := app.NewRunner(ctx, cfg, log, cmd.OutOrStdout())
	if err != nil {
		log.ErrorObj("failed to initialize runner", "error", err)
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			log.ErrorObj("runner close failed", "error", err)
		}
	}()

	inv := app.Invocation{BaseURL: cfg.APIURL, Program: cmd.Root().Name()}
	// Only the first positional argument is used; the rest are ignored.
	if len(args) > 0 {
		inv.PDFPath = args[0]
	}
	return runner.Run(ctx, inv)
}
