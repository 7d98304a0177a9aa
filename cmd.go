package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"coralwatch-cleaner/config"
	"coralwatch-cleaner/services"
	"coralwatch-cleaner/storage"
	"coralwatch-cleaner/utils"
)

func newRootCmd() *cobra.Command {
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "coralwatch",
		Short:         "Clean and aggregate CoralWatch random survey records",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), cfg)
		},
	}

	f := root.Flags()
	f.StringVar(&cfg.SourcePath, "source", cfg.SourcePath, "survey workbook (.xlsx) imported when no snapshot exists")
	f.StringVar(&cfg.SourceSheet, "sheet", cfg.SourceSheet, "worksheet holding the survey records")
	f.StringVar(&cfg.SnapshotPath, "snapshot", cfg.SnapshotPath, "cached snapshot of the raw table")
	f.StringVarP(&cfg.CSVOutputPath, "output", "o", cfg.CSVOutputPath, "cleaned CSV destination")
	f.StringVar(&cfg.ColorStrategy, "strategy", cfg.ColorStrategy, "colour averaging: per-family or global")
	f.StringVar(&cfg.GroupBy, "group-by", cfg.GroupBy, "grouping key: activity or activity-coral")
	f.BoolVar(&cfg.RequireDate, "require-date", cfg.RequireDate, "drop rows without an observation date")
	f.StringVar(&cfg.PhotoFallback, "photo-fallback", cfg.PhotoFallback, "value for rows with no photo: placeholder or absent")
	f.StringVar(&cfg.VaryingFields, "varying", cfg.VaryingFields, "descriptive fields that differ within a group: list or first")
	f.StringVar(&cfg.ColorFormat, "color-format", cfg.ColorFormat, "calculated colour rendering: hex or rgb")
	f.BoolVar(&cfg.PostgresEnabled, "postgres", cfg.PostgresEnabled, "also store samples in PostgreSQL")

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.PalettePath, "palette", cfg.PalettePath, "TOML palette overriding the built-in colour chart")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	root.AddCommand(newTimeCmd(), newPaletteCmd(cfg))
	return root
}

// run executes one load → clean → aggregate → persist pass.
func run(w io.Writer, cfg *config.Config) error {
	logger, err := utils.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn("Unknown log level %q, using info", cfg.LogLevel)
	}
	defer logger.Sync()

	return execute(w, cfg, logger)
}

// executeRoot runs cmd and reports any error, including flag parsing and
// subcommand failures, on the command's error stream. It returns the
// process exit code.
func executeRoot(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func execute(w io.Writer, cfg *config.Config, logger *utils.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := cfg.PipelineOptions()
	if err != nil {
		return err
	}
	pal, err := cfg.Palette()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger.Info("=== CoralWatch survey cleaner starting (run %s) ===", runID)
	logger.Info("Config: strategy: %s | group by: %s | require date: %v | photo fallback: %s",
		opts.Strategy, opts.GroupBy, opts.RequireDate, opts.PhotoFallback)

	loader := storage.NewCachedLoader(
		storage.NewSnapshot(cfg.SnapshotPath),
		storage.NewXLSXReader(cfg.SourcePath, cfg.SourceSheet),
		logger,
	)
	raw, err := loader.Load()
	if err != nil {
		return err
	}

	result, err := services.NewPipeline(logger, pal, opts).Run(raw)
	if err != nil {
		return err
	}
	result.Stats.RunID = runID

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return err
	}
	writers := []storage.SampleWriter{csvWriter}

	var pgWriter *storage.PostgresWriter
	if cfg.PostgresEnabled {
		pgWriter, err = storage.NewPostgresWriter(cfg.DSN(), runID, storage.DefaultRetry(cfg.MaxRetries, logger))
		if err != nil {
			logger.Error("Make sure PostgreSQL is reachable at %s:%s", cfg.PostgresHost, cfg.PostgresPort)
			return err
		}
		writers = append(writers, pgWriter)
	}
	defer func() {
		for _, sw := range writers {
			if err := sw.Close(); err != nil {
				logger.Warn("Closing writer: %v", err)
			}
		}
	}()

	for _, sw := range writers {
		if err := sw.Write(result.Samples); err != nil {
			return err
		}
	}
	logger.Info("Wrote %d samples to %s", len(result.Samples), cfg.CSVOutputPath)
	if pgWriter != nil {
		if err := verifyStored(pgWriter, len(result.Samples), logger); err != nil {
			return err
		}
	}

	reports := services.NewReportService(logger)
	reports.Print(w, reports.Generate(result))
	return nil
}

type sampleCounter interface {
	Count() (int, error)
}

// verifyStored reads the stored sample count back and fails when it does
// not match what was written.
func verifyStored(c sampleCounter, want int, logger *utils.Logger) error {
	n, err := c.Count()
	if err != nil {
		return err
	}
	if n != want {
		return fmt.Errorf("postgres: %d samples stored, expected %d", n, want)
	}
	logger.Info("Samples stored in PostgreSQL: %d (table: coral_samples)", n)
	return nil
}

func newTimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "time TEXT...",
		Short: "Show how survey time strings are normalised",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, a := range args {
				if t, ok := services.NormalizeTime(a); ok {
					fmt.Fprintf(out, "%q → %s\n", a, t)
				} else {
					fmt.Fprintf(out, "%q → (missing)\n", a)
				}
			}
			return nil
		},
	}
}

func newPaletteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "palette",
		Short: "Print the colour chart used for calculated average colours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pal, err := cfg.Palette()
			if err != nil {
				return err
			}
			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Code", "Hex", "RGB"})
			for _, code := range pal.Codes() {
				hex, _ := pal.Hex(code)
				rgb, _ := pal.RGB(code)
				tw.AppendRow(table.Row{code, hex, fmt.Sprintf("%d, %d, %d", rgb[0], rgb[1], rgb[2])})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			return nil
		},
	}
}
