package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/tomek7667/nasdash/internal/backend"
	"github.com/tomek7667/nasdash/internal/config"
	"github.com/tomek7667/nasdash/internal/http"
	"github.com/tomek7667/nasdash/internal/logging"
	"github.com/tomek7667/nasdash/internal/metrics"
	"github.com/tomek7667/nasdash/internal/nas"
	"github.com/tomek7667/nasdash/internal/navigator"
	"github.com/tomek7667/nasdash/internal/service"
	"github.com/tomek7667/nasdash/internal/stats"
	"github.com/tomek7667/nasdash/internal/ui"
)

func main() {
	flags := append(append([]cli.Flag{config.ConfigFlag()}, config.LoggingFlags()...), config.DashboardFlags()...)
	app := &cli.App{
		Name:        "nasdash",
		Description: "web dashboard for a small NAS: browse and preview the share, watch system load and restart Samba",
		Usage:       "serve the dashboard (default) or the NAS backend API (use subcommands)",
		Version:     appVersion(),
		Flags:       flags,
		Before:      config.LoadFromFile(flags),
		Commands: []*cli.Command{
			cmdBackend(),
		},
		CommandNotFound: func(c *cli.Context, command string) {
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
			cli.ShowAppHelpAndExit(c, 1)
		},
		Action:       runDashboard,
		BashComplete: cli.ShowCompletions,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runDashboard(c *cli.Context) error {
	lc := config.LoadLogging(c)
	logger, err := logging.New(lc.Level, lc.Pretty)
	if err != nil {
		return err
	}
	cfg, err := config.LoadDashboard(c)
	if err != nil {
		return err
	}

	m := metrics.New()
	client, err := backend.New(cfg.BackendURL.String(),
		backend.WithTimeout(cfg.RequestTimeout),
		backend.WithRetryMax(cfg.RetryMax),
		backend.WithLogger(logger.With().Str("component", "backend").Logger()),
		backend.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	notifier := ui.NewNotifier(ui.WithTTL(cfg.NotificationTTL))
	dash := &http.Dashboard{
		Lister: client,
		Navigator: navigator.New(client, notifier,
			navigator.WithRoot(cfg.NASRoot),
			navigator.WithLogger(logger.With().Str("component", "navigator").Logger()),
			navigator.WithMetrics(m),
		),
		Poller: stats.New(client,
			stats.WithInterval(cfg.StatsInterval),
			stats.WithLogger(logger.With().Str("component", "stats").Logger()),
		),
		Restarter:       service.New(client, notifier, service.WithLogger(logger.With().Str("component", "service").Logger())),
		Notifier:        notifier,
		StateRefresh:    cfg.StatsInterval,
		NotificationTTL: cfg.NotificationTTL,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go dash.Poller.Run(ctx)

	server := http.New(cfg.Port, logger, m)
	server.AddDashboardRoutes(dash)
	server.AddProxyRoutes(cfg.BackendURL)
	logger.Info().Str("backend", cfg.BackendURL.String()).Msg("dashboard starting")
	return server.Serve(ctx)
}

func cmdBackend() *cli.Command {
	flags := config.BackendFlags()
	return &cli.Command{
		Name:   "backend",
		Usage:  "serve the NAS backend API over a share directory",
		Flags:  flags,
		Before: config.LoadFromFile(flags),
		Action: func(c *cli.Context) error {
			lc := config.LoadLogging(c)
			logger, err := logging.New(lc.Level, lc.Pretty)
			if err != nil {
				return err
			}
			cfg, err := config.LoadBackend(c)
			if err != nil {
				return err
			}

			share, err := nas.NewShare(cfg.ShareRoot)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			monitor := nas.NewMonitor(share.Root(), logger.With().Str("component", "monitor").Logger())
			monitor.Start(ctx.Done(), cfg.SampleInterval)

			m := metrics.New()
			opts := []nas.Option{
				nas.WithLogger(logger.With().Str("component", "nas").Logger()),
				nas.WithMetrics(m),
			}
			if cfg.WebDAV {
				opts = append(opts, nas.WithWebDAV())
			}
			handler := nas.NewHandler(share, monitor, nas.NewServiceRestarter(cfg.SambaUnit, cfg.Sudo), opts...)

			server := http.New(cfg.Port, logger, m)
			server.AddNASRoutes(handler)
			logger.Info().Str("share", share.Root()).Bool("webdav", cfg.WebDAV).Msg("nas backend starting")
			return server.Serve(ctx)
		},
	}
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return "unknown"
	}

	version := bi.Main.Version
	var rev string
	var modified bool
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}

	if version != "" && version != "(devel)" {
		return version
	}
	if rev != "" {
		if modified {
			return rev + " (modified)"
		}
		return rev
	}
	if version != "" {
		return version
	}
	return "unknown"
}
