package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/devstats-lab/devstats/internal/aggregation"
	corecfg "github.com/devstats-lab/devstats/internal/core/config"
	"github.com/devstats-lab/devstats/internal/export"
	"github.com/devstats-lab/devstats/internal/ingestion"
	"github.com/devstats-lab/devstats/internal/logging"
	"github.com/devstats-lab/devstats/internal/server"
)

const usage = `Usage: devstats [-config file] <command> [args]

Commands:
  serve                                      Run the HTTP service (default)
  warm                                       Regenerate every cache entry once
  sweep                                      Apply the retention policy once
  rebuild-state                              Replay events into device states
  export <start> <end> <file> [-format json|parquet] [-echo N]
                                             Write pseudonymized events in [start, end)
`

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()

	// 0. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 1. Initialize Logger
	if err := logging.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		slog.Error("Failed to initialize logging", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 2. Initialize Storage
	a, err := newApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	cmd, args := "serve", flag.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	err = run(ctx, a, cmd, args)
	if closeErr := a.close(); closeErr != nil {
		slog.Error("Failed to release resources", "error", closeErr)
	}
	if err != nil {
		slog.Error("Command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app, cmd string, args []string) error {
	switch cmd {
	case "serve":
		return serve(ctx, a)
	case "warm":
		return warm(ctx, a)
	case "sweep":
		_, err := a.sweeper().Sweep(ctx)
		return err
	case "rebuild-state":
		_, err := aggregation.RebuildDeviceStates(ctx, a.events, a.devices, aggregation.RebuildOptions{})
		return err
	case "export":
		return exportEvents(ctx, a, args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func serve(ctx context.Context, a *app) error {
	cfg := a.cfg
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 3. Initialize Projection (cache-fronted queries and pages)
	projectionSvc, err := a.projection()
	if err != nil {
		return err
	}
	warmer := a.warmer(projectionSvc)

	// 4. Initialize Ingestion
	denylist := ingestion.NewDenylist(cfg.Denylist.Versions, cfg.Denylist.Models)
	recorder := ingestion.NewRecorder(a.events, a.devices, ingestion.RecorderOptions{
		Denylist:     denylist,
		MaxClockSkew: cfg.Ingestion.MaxClockSkew,
	})
	ingestionSvc := ingestion.NewService(recorder, cfg.Server.MaxBodySizeKB)
	slog.Info("[App] Ingestion initialized", "denylist_entries", denylist.Len())

	// 5. Initialize Server
	srv := server.New(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port), server.Options{
		Mode:        cfg.Server.Mode,
		ReadTimeout: cfg.Server.RequestTimeout,
		Health:      a.health,
	})
	ingestionSvc.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)
	srv.RegisterAdmin(cfg.Server.AdminToken, warmer)

	// 6. Background jobs
	var jobs []aggregation.Job
	if cfg.Aggregation.WarmEnabled {
		jobs = append(jobs, aggregation.Job{
			Name:       "cache-warm",
			Spec:       cfg.Aggregation.WarmSchedule,
			RunOnStart: cfg.Aggregation.WarmOnStart,
			Run:        func(ctx context.Context) { warmer.WarmAll(ctx) },
		})
	} else {
		slog.Info("[App] Cache warm job disabled by config")
	}
	if cfg.Retention.Enabled {
		sweeper := a.sweeper()
		jobs = append(jobs, aggregation.Job{
			Name: "retention-sweep",
			Spec: cfg.Retention.Schedule,
			Run: func(ctx context.Context) {
				if _, err := sweeper.Sweep(ctx); err != nil {
					slog.Error("[App] Retention sweep failed", "error", err)
				}
			},
		})
	} else {
		slog.Info("[App] Retention sweep disabled by config")
	}

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		if err := aggregation.NewScheduler(jobs...).Start(ctx); err != nil {
			slog.Error("[App] Scheduler stopped with error", "error", err)
		}
	}()

	// HTTP server blocks until ctx is cancelled.
	err = srv.Run(ctx)
	if err != nil {
		slog.Error("[App] Server stopped with error", "error", err)
	}

	cancel()
	<-schedulerDone
	slog.Info("[App] Shutdown complete")
	return err
}

func warm(ctx context.Context, a *app) error {
	svc, err := a.projection()
	if err != nil {
		return err
	}
	report := a.warmer(svc).WarmAll(ctx)
	if report.Failed > 0 {
		return fmt.Errorf("%d cache entries failed to warm", report.Failed)
	}
	return nil
}

func exportEvents(ctx context.Context, a *app, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("export needs <start> <end> <file>")
	}
	start, err := export.ParseDate(args[0])
	if err != nil {
		return err
	}
	end, err := export.ParseDate(args[1])
	if err != nil {
		return err
	}
	path := args[2]

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	formatFlag := fs.String("format", string(export.FormatJSON), "Output format: json or parquet")
	echo := fs.Int("echo", 10000, "Print progress every N rows (0 disables)")
	if err := fs.Parse(args[3:]); err != nil {
		return err
	}
	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		return err
	}

	report, err := export.NewExporter(a.events).ExportFile(ctx, path, export.Options{
		Start:     start,
		End:       end,
		Format:    format,
		Progress:  os.Stderr,
		EchoEvery: *echo,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "exported %d events to %s (run %s)\n", report.Rows, path, report.RunID)
	return nil
}
