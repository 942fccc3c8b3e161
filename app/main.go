package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trendwatch/trendwatch/app/analyze"
	"github.com/trendwatch/trendwatch/app/api"
	"github.com/trendwatch/trendwatch/app/canonical"
	"github.com/trendwatch/trendwatch/app/cfg"
	"github.com/trendwatch/trendwatch/app/config"
	"github.com/trendwatch/trendwatch/app/enrich"
	"github.com/trendwatch/trendwatch/app/match"
	"github.com/trendwatch/trendwatch/app/notify"
	"github.com/trendwatch/trendwatch/app/source"
	"github.com/trendwatch/trendwatch/app/store"
	"github.com/trendwatch/trendwatch/app/tasks"
	"github.com/trendwatch/trendwatch/app/trend"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting TrendWatch", "version", appCfg.Version, "mode", appCfg.Mode)

	mode, err := trend.ParseMode(appCfg.Mode)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	fileConfig, err := config.NewLoader(appCfg.ConfigDir).Load()
	if err != nil {
		slog.Error("Failed to load configuration files", "error", err)
		os.Exit(1)
	}

	snapshots, err := newSnapshotStore(appCfg)
	if err != nil {
		slog.Error("Failed to initialize snapshot store", "error", err)
		os.Exit(1)
	}
	defer snapshots.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}

	fetcher, err := source.NewFetcher(fileConfig.Sources, httpClient, appCfg.UserAgent, appCfg.FetchRate)
	if err != nil {
		slog.Error("Failed to initialize sources", "error", err)
		os.Exit(1)
	}
	slog.Info("Sources initialized", "count", fetcher.SourceCount())

	var extractor *enrich.Extractor
	if appCfg.EnrichEnabled {
		extractor = enrich.NewExtractor(httpClient, appCfg.UserAgent, appCfg.EnrichItems,
			appCfg.ExcerptLength, 15*time.Second)
	}

	var analyzer *analyze.Analyzer
	if appCfg.LLMBaseURL != "" && appCfg.LLMAPIKey != "" {
		// Completions can take well over the default client timeout.
		llmClient := &http.Client{Timeout: 2 * time.Minute}
		analyzer = analyze.NewAnalyzer(
			analyze.NewClient(llmClient, appCfg.LLMBaseURL, appCfg.LLMAPIKey, appCfg.LLMModel),
			appCfg.LLMMaxItems)
		slog.Info("Report briefings enabled", "model", appCfg.LLMModel)
	}

	channels, invalid := notify.BuildChannels(fileConfig.Channels, httpClient)
	engine := notify.NewEngine(channels, invalid, appCfg.DispatchMaxInFlight,
		appCfg.DispatchMaxRetries, time.Duration(appCfg.DispatchRetryDelay)*time.Second)

	runner := tasks.NewRunner(
		fetcher,
		canonical.NewCanonicalizer(canonical.DefaultPunctuation),
		match.NewMatcher(fileConfig.Groups, appCfg.MatchAll),
		trend.NewController(snapshots, mode, appCfg.Location()),
		trend.NewTracker(appCfg.HistoryLimit, appCfg.PersistentRuns, appCfg.RankTolerance),
		extractor,
		analyzer,
		engine,
		snapshots,
	)

	if appCfg.Once {
		result := runner.Run(context.Background())
		if result.Status == notify.RunAllFailed {
			os.Exit(1)
		}
		return
	}

	scheduler, err := tasks.NewScheduler(runner, appCfg.Schedule, appCfg.Location())
	if err != nil {
		slog.Error("Failed to initialize scheduler", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(runner, fileConfig)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer and waits for an in-flight run
	slog.Info("Shutdown complete")
}

func newSnapshotStore(appCfg *cfg.Cfg) (store.SnapshotStore, error) {
	switch appCfg.StoreBackend {
	case "redis":
		retention := time.Duration(appCfg.RetentionDays) * 24 * time.Hour
		return store.NewRedisStore(appCfg.RedisAddr, appCfg.RedisPassword, appCfg.RedisDB, retention)
	case "sqlite":
		return store.NewSQLiteStore(appCfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend '%s' (expected redis or sqlite)", appCfg.StoreBackend)
	}
}
