// Package main provides the quizreport command line: consolidate quiz exports
// into workbooks or serve the report API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"quizreport/internal/app"
	"quizreport/internal/config"
	"quizreport/internal/infrastructure"
	"quizreport/internal/preview"
	"quizreport/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "quizreport",
		Short:        "Consolidate quiz exports into per-class accuracy reports",
		Version:      app.Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newConsolidateCmd(),
		newServeCmd(),
	)

	return rootCmd
}

type consolidateOptions struct {
	out             string
	scale           float64
	scaledThreshold float64
	accThreshold    float64
	csv             bool
	noPreview       bool
}

func newConsolidateCmd() *cobra.Command {
	var opts consolidateOptions

	cmd := &cobra.Command{
		Use:   "consolidate FILE...",
		Short: "Consolidate .xlsx quiz exports into workbooks",
		Long: `Consolidate one or more quiz exports into a single table with one row per
student, then write dados_consolidados.xlsx and one workbook per class.

Example: quizreport consolidate Quiz1-2024.xlsx Quiz2-2024.xlsx --scale 50 --out reports`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cmd.Flags().Changed("acc-threshold") {
				opts.accThreshold = cfg.Report.AccThreshold
			}
			if opts.out == "" {
				opts.out = cfg.Report.OutputDir
			}

			// Logs go to stderr so the preview owns stdout
			if cfg.Logging.Output == "stdout" {
				cfg.Logging.Output = "stderr"
			}
			logger, err := infrastructure.InitializeLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			return runConsolidate(cmd.Context(), cmd.OutOrStdout(), cfg.Report, logger, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "", "output directory (default: report.output_dir)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "add an \"ACC Total per P%\" column scaled to P (0 disables)")
	cmd.Flags().Float64Var(&opts.scaledThreshold, "scaled-threshold", 0, "pass mark for the scaled column (0 leaves it uncolored)")
	cmd.Flags().Float64Var(&opts.accThreshold, "acc-threshold", config.DefaultAccThreshold, "pass mark for the ACC Total column")
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "also write dados_consolidados.csv")
	cmd.Flags().BoolVar(&opts.noPreview, "no-preview", false, "do not print the table preview")

	return cmd
}

func runConsolidate(ctx context.Context, out io.Writer, cfg config.ReportConfig, logger *slog.Logger, paths []string, opts consolidateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = infrastructure.EnsureTraceID(ctx)

	svc := services.NewConsolidationService(cfg, logger, nil, nil)
	params := services.Params{
		ScalePercent:    opts.scale,
		ScaledThreshold: opts.scaledThreshold,
		AccThreshold:    opts.accThreshold,
	}

	result, err := svc.ConsolidateFiles(ctx, paths, params)
	if err != nil {
		return err
	}

	if !opts.noPreview {
		fmt.Fprintln(out, preview.Render(result.Table, result.Summaries(), params.RenderOptions()))
	}

	written, err := svc.WriteReports(ctx, result, opts.out, opts.csv)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintf(out, "wrote %s\n", path)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the report HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := app.NewApplication()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run(cmd.Context())
		},
	}
}
