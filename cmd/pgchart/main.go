package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pgchart/internal/alert"
	"pgchart/internal/collector"
	"pgchart/internal/config"
	"pgchart/internal/metrics"
	"pgchart/internal/model"
	"pgchart/internal/notifier"
	"pgchart/internal/scheduler"
	"pgchart/internal/series"
	"pgchart/internal/store"
	"pgchart/internal/view"
)

const usage = `usage: pgchart [command] [flags]

commands:
  run      start the collector, scheduler and Telegram bot (default)
  export   write stored ticks to a binary archive
  import   load ticks from a binary archive`

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setLogLevel(cfg.LogLevel)

	command, args := "run", os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		command, args = args[0], args[1:]
	}

	switch command {
	case "run":
		err = run(cfg)
	case "export":
		err = runExport(cfg, args)
	case "import":
		err = runImport(cfg, args)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("pgchart failed")
	}
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func run(cfg *config.Config) error {
	log.Info().Msg("pgchart starting")
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Init store
	var st store.Store
	sqlite, err := store.NewSQLiteStore(cfg.Database.SQLitePath, loc)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite store failed, using memory")
		st = store.NewMemoryStore(loc)
	} else {
		st = sqlite
	}
	defer st.Close()

	// Init upstream source
	var upstream collector.Source
	if cfg.DataSource.BaseURL != "" {
		upstream = collector.NewRESTSource(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
		log.Info().Str("source", upstream.Name()).Str("url", cfg.DataSource.BaseURL).Msg("upstream source configured")
	} else {
		log.Info().Str("store", st.Name()).Msg("no upstream source, serving stored ticks only")
	}

	guard, err := alert.NewGuard(cfg.Alert.StateFile, cfg.Alert.Cooldown)
	if err != nil {
		return fmt.Errorf("init alert guard: %w", err)
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := series.ChartOptions{
		Density:   cfg.Chart.Density,
		BandWidth: cfg.Chart.BandWidth,
		Ratio:     cfg.Chart.Ratio,
	}
	ctrl := view.NewController(st, opts, loc)

	sched := scheduler.NewScheduler(ctx, ctrl, st, upstream, guard, tn,
		scheduler.SwingConfig{Window: cfg.Alert.Window, Threshold: cfg.Alert.Threshold}, loc)
	if err := sched.RegisterAll(cfg.Schedule.SyncCron, cfg.Schedule.SwingCron, cfg.Schedule.ReportCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	if n, err := sched.SyncNow(); err != nil {
		log.Warn().Err(err).Msg("initial sync failed")
	} else if n > 0 {
		log.Info().Int("inserted", n).Msg("initial sync")
	}
	sched.Start()
	defer sched.Stop()

	if cfg.DataSource.FeedURL != "" {
		feed := collector.NewFeed(cfg.DataSource.FeedURL)
		feed.AddHandler(func(tick model.PriceSample) {
			if _, err := st.SaveTicks(ctx, []model.PriceSample{tick}); err != nil {
				log.Error().Err(err).Msg("save feed tick")
			}
		})
		go feed.Run(ctx)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error().Err(err).Msg("metrics server")
			}
		}()
	}

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, sending report now")
		go sched.RunReportNow()
	}

	log.Info().Msg("pgchart is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("pgchart stopped")
	return nil
}
