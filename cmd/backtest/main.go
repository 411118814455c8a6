package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hamedasgari20/covered-call-strategy/internal/analysis"
	"github.com/hamedasgari20/covered-call-strategy/internal/backtest"
	"github.com/hamedasgari20/covered-call-strategy/internal/config"
	"github.com/hamedasgari20/covered-call-strategy/internal/dashboard"
	"github.com/hamedasgari20/covered-call-strategy/internal/marketdata"
	"github.com/hamedasgari20/covered-call-strategy/internal/storage"
)

const (
	demoSteps   = 504 // two years of trading days
	demoInitial = 100.0
	demoDrift   = 0.07
	demoVol     = 0.20
	demoSeed    = 42
)

func main() {
	var (
		configPath string
		csvPath    string
		demo       bool
		outPath    string
		serve      bool
	)
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&csvPath, "csv", "", "Price CSV path (overrides data.csv_path)")
	flag.BoolVar(&demo, "demo", false, "Run against a synthetic price series")
	flag.StringVar(&outPath, "out", "", "Write the full result JSON store to this path (overrides storage.path)")
	flag.BoolVar(&serve, "serve", false, "Serve stored runs over HTTP after the backtest")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := log.New(os.Stdout, "[BACKTEST] ", log.LstdFlags)

	series, err := loadSeries(cfg, csvPath, demo, logger)
	if err != nil {
		logger.Fatalf("Failed to load price data: %v", err)
	}
	logger.Printf("Loaded %d price points (%s to %s)",
		series.Len(),
		series.First().Date.Format("2006-01-02"),
		series.Last().Date.Format("2006-01-02"))

	engine, err := backtest.NewEngine(cfg.Params())
	if err != nil {
		logger.Fatalf("Invalid backtest parameters: %v", err)
	}

	result, err := engine.Run(series)
	if err != nil {
		logger.Fatalf("Backtest failed: %v", err)
	}
	logger.Printf("Run %s complete: %d steps, %d contracts written",
		result.RunID, result.Summary.Steps, len(result.Contracts))

	if err := analysis.Render(os.Stdout, result.Summary); err != nil {
		logger.Fatalf("Failed to render report: %v", err)
	}

	storePath := cfg.Storage.Path
	if outPath != "" {
		storePath = outPath
	}
	store, err := storage.NewStorage(storePath)
	if err != nil {
		logger.Fatalf("Failed to open storage: %v", err)
	}
	if err := store.SaveRun(result); err != nil {
		logger.Fatalf("Failed to save run: %v", err)
	}
	logger.Printf("Saved run %s to %s", result.RunID, storePath)

	if serve {
		if err := serveDashboard(cfg, store, logger); err != nil {
			logger.Fatalf("Dashboard error: %v", err)
		}
	}
}

// loadSeries resolves the price source: explicit CSV flag, demo walk, a
// configured remote endpoint, or the configured CSV path, in that order.
func loadSeries(cfg *config.Config, csvPath string, demo bool, logger *log.Logger) (*marketdata.PriceSeries, error) {
	switch {
	case csvPath != "":
		return marketdata.LoadCSV(csvPath)
	case demo:
		logger.Println("Using synthetic demo series")
		start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		return marketdata.SyntheticWalk(start, demoSteps, demoInitial, demoDrift, demoVol, demoSeed), nil
	case cfg.Data.Remote.BaseURL != "":
		start, end, err := cfg.RemoteRange()
		if err != nil {
			return nil, fmt.Errorf("invalid remote date range: %w", err)
		}
		logger.Printf("Fetching %s from %s", cfg.Data.Remote.Symbol, cfg.Data.Remote.BaseURL)
		client := marketdata.NewRemoteClient(cfg.Data.Remote.BaseURL, cfg.RemoteTimeout())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		return client.FetchDaily(ctx, cfg.Data.Remote.Symbol, start, end)
	case cfg.Data.CSVPath != "":
		return marketdata.LoadCSV(cfg.Data.CSVPath)
	default:
		return nil, fmt.Errorf("no price source configured: set -csv, -demo, data.csv_path, or data.remote")
	}
}

func serveDashboard(cfg *config.Config, store storage.Interface, logger *log.Logger) error {
	webLogger := logrus.New()
	webLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	srv := dashboard.NewServer(dashboard.Config{
		Port:      cfg.Dashboard.Port,
		AuthToken: cfg.Dashboard.AuthToken,
	}, store, webLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Println("Shutdown signal received, stopping dashboard...")
		cancel()
	}()

	logger.Printf("Dashboard listening on :%d", cfg.Dashboard.Port)
	return srv.Start(ctx)
}
