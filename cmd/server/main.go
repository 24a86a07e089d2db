package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"brother-yield/internal/agents"
	"brother-yield/internal/config"
	"brother-yield/internal/history"
	"brother-yield/internal/insights"
	"brother-yield/internal/llm"
	"brother-yield/internal/logger"
	"brother-yield/internal/market"
	"brother-yield/internal/portfolio"
	"brother-yield/internal/scheduler"
	"brother-yield/internal/server"
	"brother-yield/internal/starknet"
	"brother-yield/internal/storage"
	"brother-yield/internal/yields"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.New()

	if err := logger.Init(cfg.LogLevel, cfg.AppEnv); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	factory := llm.NewFactory(cfg)
	navigatorClient, err := factory.CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
	if err != nil {
		logger.L().Fatalw("failed to create navigator client", "err", err)
	}
	specialistClient, err := factory.CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
	if err != nil {
		logger.L().Fatalw("failed to create specialist client", "err", err)
	}

	store := history.NewManager(cfg.MessageLimit)
	defer store.Close()

	reader := starknet.NewRPCClient(cfg.StarknetRPCURL)

	fetcher := portfolio.NewFetcher(reader)
	snapshot := portfolio.NewSnapshot()
	portfolioUC := portfolio.NewUseCase(fetcher, store, snapshot, starknet.VerifiedTokenGroups())

	marketClient := market.NewClient(cfg.CoingeckoAPIKey, reader)
	analyzer := yields.NewAnalyzer(marketClient)
	cache := yields.NewCache()

	refresh := func(ctx context.Context) error {
		data, err := analyzer.GetYieldsData(ctx)
		if err != nil {
			return err
		}
		cache.Set(data)
		return nil
	}

	// Warm the cache before serving; the scheduler keeps it fresh after.
	warmCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if err := refresh(warmCtx); err != nil {
		logger.L().Warnw("initial yields refresh failed, cache stays empty until next tick", "err", err)
	}
	cancel()

	sched := scheduler.New(cfg.YieldsRefreshSpec)
	sched.SetRefreshFunc(refresh)
	if err := sched.Start(); err != nil {
		logger.L().Fatalw("failed to start scheduler", "err", err)
	}
	defer sched.Stop()

	contextDocs := loadInsightsContext(cfg.InsightsDSN)

	var recorder storage.Recorder
	if fileRecorder, err := storage.NewFileRecorder(cfg.TurnLogPath); err != nil {
		logger.L().Warnw("turn recording disabled", "path", cfg.TurnLogPath, "err", err)
	} else {
		recorder = fileRecorder
	}

	pipeline := agents.NewPipeline(
		agents.NewNavigator(navigatorClient),
		agents.NewSpecialist(specialistClient, contextDocs...),
		store,
		recorder,
	)

	srv := server.New(cfg.ListenAddr, pipeline, portfolioUC, store, cache)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.L().Infow("shutting down", "signal", sig.String())
	case err := <-errCh:
		logger.L().Errorw("server failed", "err", err)
	}

	if err := srv.Stop(); err != nil {
		logger.L().Errorw("server shutdown failed", "err", err)
	}
}

// loadInsightsContext pulls the Twitter insights knowledge document when a
// DSN is configured. The backend runs fine without it.
func loadInsightsContext(dsn string) []string {
	if dsn == "" {
		return nil
	}

	svc, err := insights.Connect(dsn)
	if err != nil {
		logger.L().Warnw("insights database unavailable, specialist runs without insights context", "err", err)
		return nil
	}
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	list, err := svc.Load(ctx)
	if err != nil {
		logger.L().Warnw("failed to load insights", "err", err)
		return nil
	}
	return []string{insights.FormatInsights(list)}
}
