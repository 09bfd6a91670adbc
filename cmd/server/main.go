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

	"github.com/lysyi3m/menofeed/app/ai"
	"github.com/lysyi3m/menofeed/app/api"
	"github.com/lysyi3m/menofeed/app/cfg"
	"github.com/lysyi3m/menofeed/app/database"
	"github.com/lysyi3m/menofeed/app/feed"
	"github.com/lysyi3m/menofeed/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	if err := run(appCfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting Menofeed server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	configCache := feed.NewConfigCache(appCfg.FeedsDir, appCfg.FeedTimeout)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load feed configurations: %w", err)
	}
	slog.Info("Feed configurations loaded", "dir", appCfg.FeedsDir, "count", configCache.GetConfigCount())

	feedRepo := database.NewFeedRepository(db)
	articleRepo := database.NewArticleRepository(db)
	suggestionRepo := database.NewSuggestionRepository(db)
	metaRepo := database.NewMetaRepository(db)

	httpClient := &http.Client{}
	normalizer := feed.NewNormalizer()
	fetcher := feed.NewFetcher(httpClient, feed.NewParser(), appCfg.UserAgent)
	pipeline := feed.NewPipeline(
		fetcher,
		feed.NewFilterer(),
		normalizer,
		feed.NewRelevance(appCfg.TopicKeywords, appCfg.TopicMarkers),
		feed.NewImageResolver(),
		appCfg.MinReadTime,
	)

	var completer ai.Completer
	if appCfg.AIAPIKey != "" {
		completer = ai.NewOpenAICompleter(appCfg.AIBaseURL, appCfg.AIAPIKey, appCfg.AIModel)
		slog.Info("Suggestion endpoint configured", "model", appCfg.AIModel)
	} else {
		slog.Info("Suggestion endpoint disabled (AI_API_KEY not set), using canned suggestions")
	}
	assistant := ai.NewAssistant(completer, time.Duration(appCfg.AITimeout)*time.Second, appCfg.AIMaxBytes)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount)
	scheduler := tasks.NewScheduler(configCache, pipeline, fetcher, feed.NewContentExtractor(), normalizer,
		feedRepo, articleRepo, metaRepo)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(configCache, feedRepo, articleRepo, suggestionRepo, assistant, scheduler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
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
		return err
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", "error", err)
	}

	slog.Info("Menofeed server shutdown complete")
	return nil
}
