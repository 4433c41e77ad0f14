package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leifengsang/XivInTheShellMarkerGen/internal/adapters/fflogs"
	"github.com/leifengsang/XivInTheShellMarkerGen/internal/adapters/output"
	app "github.com/leifengsang/XivInTheShellMarkerGen/internal/app"
	"github.com/leifengsang/XivInTheShellMarkerGen/internal/config"
	"github.com/leifengsang/XivInTheShellMarkerGen/internal/domain/model"
	"github.com/leifengsang/XivInTheShellMarkerGen/pkg/logger"
	"github.com/leifengsang/XivInTheShellMarkerGen/pkg/metrics"
)

// flags holds command line overrides. Only flags the user set win over config.
type flags struct {
	configPath  string
	reportID    string
	fightID     int
	outputFile  string
	logLevel    string
	metricsFile string
	jsonLogs    bool
}

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "markergen [flags]",
		Short: "Generate marker tracks for one fight of a combat log report",
		Long: `markergen fetches the enemy casts, damage taken and targetability events of
one fight from the report API, removes duplicate entries, packs the markers
onto the fewest non-overlapping tracks and writes a MarkerTracksCombined
document.

Settings come from defaults, then the file named by --config or MARKERGEN_CONFIG,
then MARKERGEN_* environment variables, then flags. A config.txt written for the
earlier script is accepted as is: CAST_NAME_LIST, DAMAGE_NAME_LIST, CONVERT_DIC,
LOGS_ID, FIGHT_ID, API_KEY and FILE_NAME map to cast_names, damage_names,
translations, report_id, fight_id, api_key and output_file.

Examples:
  markergen --report aBcD1234 --fight 3
  markergen --config boss.yaml --output out/boss.txt
  MARKERGEN_API_KEY=... markergen --report aBcD1234 --fight 3 --log-level debug`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "",
		"Config file (YAML or JSON); overrides "+config.EnvConfigPath)
	cmd.Flags().StringVarP(&f.reportID, "report", "r", "",
		"Report code")
	cmd.Flags().IntVarP(&f.fightID, "fight", "f", 0,
		"Fight id inside the report")
	cmd.Flags().StringVarP(&f.outputFile, "output", "o", "",
		"Output file for the marker document")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "",
		"Write Prometheus metrics in text format to this file after the run")
	cmd.Flags().BoolVar(&f.jsonLogs, "json-logs", false,
		"Emit logs as JSON lines")

	return cmd
}

func run(cmd *cobra.Command, f *flags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithJSON(f.jsonLogs)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadFrom(ctx, f.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	metrics.SetGlobal(metrics.NewManager(metrics.WithConstLabels(map[string]string{
		"report": cfg.ReportID,
		"fight":  strconv.Itoa(cfg.FightID),
	})))

	log := logger.Get().With(logger.String("run_id", uuid.NewString()))
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	client := fflogs.NewClient(cfg.BaseURL, cfg.APIKey,
		fflogs.WithTimeout(cfg.RequestTimeout),
		fflogs.WithLogger(log.Named("fflogs")),
	)
	svc := app.New(
		app.WithSource(client),
		app.WithReport(cfg.ReportID, cfg.FightID),
		app.WithCastNames(cfg.CastNames),
		app.WithDamageNames(cfg.DamageNames),
		app.WithTranslations(cfg.Translations),
		app.WithMinGap(cfg.MinGapMS),
		app.WithWindows(cfg.CastIgnoreWindowMS, cfg.EchoWindowMS, cfg.SplashWindowMS),
		app.WithUntargetableLabels(cfg.NotTargetableLabel, cfg.TargetableLabel),
		app.WithLogger(log.Named("pipeline")),
	)

	began := time.Now()
	doc, runErr := svc.Run(ctx)
	if runErr == nil {
		runErr = output.WriteFile(ctx, cfg.OutputFile, doc)
	}
	if runErr != nil {
		metrics.RecordError("run", errorType(runErr))
		log.Error(ctx, "run failed", logger.Error(runErr))
	} else {
		log.Info(ctx, "document written",
			logger.String("output", cfg.OutputFile),
			logger.Int("tracks", len(doc.Tracks)),
			logger.Int("markers", doc.MarkerCount()),
			logger.Duration("elapsed", time.Since(began)))
	}

	// Metrics are exported for failed runs too.
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn(ctx, "metrics export failed", logger.String("path", cfg.MetricsFile), logger.Error(err))
		}
	}
	return runErr
}

// applyFlags copies the flags the user actually set over the loaded config.
func applyFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("report") {
		cfg.ReportID = f.reportID
	}
	if set("fight") {
		cfg.FightID = f.fightID
	}
	if set("output") {
		cfg.OutputFile = f.outputFile
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, model.ErrFightNotFound):
		return "fight_not_found"
	case errors.Is(err, app.ErrFetch):
		return "fetch"
	case errors.Is(err, output.ErrWrite):
		return "write"
	default:
		return "other"
	}
}
