package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"planboard/internal/api"
	"planboard/internal/config"
	appLog "planboard/internal/log"
	"planboard/internal/store"
	"planboard/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	appLog.Info("planboard starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("effective config",
		"backend_url", conf.BackendURL,
		"timeout_seconds", conf.TimeoutSeconds,
		"user_id", conf.UserID,
		"listen", conf.Listen,
		"refresh", conf.RefreshCron,
		"once", flags.once,
	)

	client := api.NewClient(conf.BackendURL, time.Duration(conf.TimeoutSeconds)*time.Second)
	schedules := store.NewScheduleStore(client, conf.UserID)
	news := store.NewNewsStore(client)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	refresh := func() { refreshToday(ctx, schedules, news) }

	if flags.once {
		refresh()
		appLog.Info("single refresh cycle done, exiting")
		return
	}

	// Initial load, then periodic refresh on the configured cron spec.
	refresh()

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, refresh); err != nil {
		appLog.Error("invalid refresh cron spec", err, "spec", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	if err := web.Start(ctx, conf, schedules, news); err != nil {
		appLog.Error("HTTP server stopped", err)
		os.Exit(1)
	}

	appLog.Info("planboard exiting")
}

// refreshToday re-selects today, refetches its schedules and news and
// reloads the current month. The month cache is cleared first so the cron
// pass always picks up backend-side changes, loaded-month marker or not.
func refreshToday(ctx context.Context, schedules *store.ScheduleStore, news *store.NewsStore) {
	now := time.Now()
	year, month, day := now.Year(), int(now.Month()), now.Day()

	schedules.SetSelectedDate(year, month, day)
	schedules.FetchSchedules(ctx)
	schedules.ClearMonthlyCache()
	schedules.FetchMonthSchedules(ctx, year, month)
	news.FetchNews(ctx, year, month, day)

	appLog.Info("refresh cycle complete",
		"date", now.Format("2006-01-02"),
		"schedules", len(schedules.Schedules()),
		"news", len(news.News()),
	)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/planboard/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one refresh cycle and exit")

	flag.Parse()

	return cfg
}
