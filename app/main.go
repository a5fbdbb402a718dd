package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/news-comb/app/analyzer"
	"github.com/lysyi3m/news-comb/app/api"
	"github.com/lysyi3m/news-comb/app/cache"
	"github.com/lysyi3m/news-comb/app/cfg"
	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/feed"
	"github.com/lysyi3m/news-comb/app/personalize"
	"github.com/lysyi3m/news-comb/app/related"
	"github.com/lysyi3m/news-comb/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting News Comb server", "version", appCfg.Version)

	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	catalog := feed.NewTopicCatalog(appCfg.TopicsDir)
	if err := catalog.Run(); err != nil {
		slog.Error("Failed to load topic configurations", "dir", appCfg.TopicsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Topics loaded", "count", catalog.GetTopicCount())

	topicRepo := database.NewTopicStore(db)
	articleRepo := database.NewArticleStore(db)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	feedParser := feed.NewParser()

	analyzerClient := analyzer.NewClient(appCfg.AnalyzerURL, appCfg.AnalyzerAPIKey, appCfg.AnalyzerModel, nil)
	if !analyzerClient.Enabled() {
		slog.Warn("Article analysis disabled (ANALYZER_API_KEY not set)")
	}

	searcher := feed.NewSearcher(appCfg.SearchURL, httpClient, feedParser, appCfg.UserAgent)

	deps := api.Dependencies{
		Registry:     personalize.NewRegistry(database.NewKVStore(db), nil),
		Ranker:       personalize.NewRanker(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())), nil),
		Matcher:      related.NewMatcher(appCfg.RelatedLimit, nil),
		Analyzer:     analyzerClient,
		Searcher:     searcher,
		Generator:    feed.NewGenerator(appCfg.BaseUrl, appCfg.Version),
		ArticleRepo:  articleRepo,
		TopicRepo:    topicRepo,
		Catalog:      catalog,
		FeedPoolSize: appCfg.FeedPoolSize,
		Version:      appCfg.Version,
	}

	if appCfg.RedisAddr != "" {
		redisCache, err := cache.NewCache(appCfg.RedisAddr)
		if err != nil {
			slog.Warn("Redis unavailable, continuing without cache", "addr", appCfg.RedisAddr, "error", err)
		} else {
			defer redisCache.Close()
			ttl := time.Duration(appCfg.AnalysisCacheTTL) * time.Second
			deps.Analyzer = analyzer.NewCachedAnalyzer(analyzerClient, redisCache, ttl)
			deps.Searcher = feed.NewCachedSearcher(searcher, redisCache)
			deps.Cache = redisCache
		}
	}

	scheduler := tasks.NewScheduler(catalog, topicRepo, articleRepo, httpClient, feedParser,
		feed.NewFilterer(), feed.NewContentExtractor(), analyzerClient)
	deps.Scheduler = scheduler

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(deps)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "base_url", appCfg.BaseUrl)
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

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("News Comb server shutdown complete")
}
