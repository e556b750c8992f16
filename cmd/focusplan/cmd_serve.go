package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"focusplan/internal/app"
	"focusplan/internal/config"
	appLog "focusplan/internal/log"
	"focusplan/internal/web"
)

var (
	serveListen   string
	serveCacheDir string
	serveNoWatch  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and refresh subscriptions on schedule",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Override the listen address from the config")
	serveCmd.Flags().StringVar(&serveCacheDir, "cache-dir", "", "Directory for cached ICS feeds (default: system temp)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Do not reload the config file on change")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Listen = serveListen
	}

	appLog.Info("focusplan starting",
		"version", version,
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"week_start", cfg.WeekStart,
		"refresh", cfg.RefreshCron,
		"subscriptions", len(cfg.Subscriptions),
	)

	a := newApp(cfg, serveCacheDir)
	sched, err := app.NewScheduler(a, cfg.RefreshCron)
	if err != nil {
		return err
	}
	srv := web.NewServer(cfg, a)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error { return sched.Run(gctx) })
	if !serveNoWatch {
		g.Go(func() error {
			return config.Watch(gctx, configPath, func(next *config.Config) {
				a.ApplyConfig(next)
				if err := sched.Reschedule(next.RefreshCron); err != nil {
					appLog.Error("refresh schedule not changed", err)
				}
			})
		})
	}

	err = g.Wait()
	appLog.Info("focusplan exiting")
	return err
}
