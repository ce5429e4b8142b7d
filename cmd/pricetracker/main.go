package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-price-tracker/collector"
	"github.com/aluiziolira/go-price-tracker/config"
	"github.com/aluiziolira/go-price-tracker/convert"
	"github.com/aluiziolira/go-price-tracker/models"
	"github.com/aluiziolira/go-price-tracker/rates"
	"github.com/aluiziolira/go-price-tracker/sink"
)

func main() {
	cfg, err := config.Load(os.Getenv("PRICETRACKER_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	count := flag.Int("count", cfg.TargetCount, "Number of products to collect")
	currency := flag.String("currency", cfg.TargetCurrency, "Target currency code")
	chart := flag.Bool("chart", cfg.Chart, "Render a comparison chart")
	outputFile := flag.String("output", cfg.OutputFile, "Output CSV path")
	chartFile := flag.String("chart-file", cfg.ChartFile, "Chart HTML path")
	baseURL := flag.String("base-url", cfg.BaseURL, "Catalogue base URL")
	rateURL := flag.String("rate-url", cfg.RateAPIURL, "Exchange-rate API URL")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	interactive := flag.Bool("interactive", false, "Prompt for count, currency, and chart opt-in")
	verbose := flag.Bool("v", cfg.Verbose, "Enable verbose logging")

	flag.Parse()

	cfg.TargetCount = *count
	cfg.TargetCurrency = *currency
	cfg.Chart = *chart
	cfg.OutputFile = *outputFile
	cfg.ChartFile = *chartFile
	cfg.BaseURL = *baseURL
	cfg.RateAPIURL = *rateURL
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if *interactive {
		promptConfig(os.Stdin, os.Stdout, cfg)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	col, err := collector.New(cfg)
	if err != nil {
		slog.Error("initialising collector", slog.Any("error", err))
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(col.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	runID := uuid.NewString()
	slog.Info("starting price collection",
		slog.String("run_id", runID),
		slog.String("base_url", cfg.BaseURL),
		slog.Int("count", cfg.TargetCount),
		slog.String("currency", cfg.TargetCurrency),
	)

	startTime := time.Now()
	products, err := col.Collect(ctx, cfg.TargetCount)
	if err != nil {
		slog.Error("collection failed", slog.Any("error", err))
		os.Exit(1)
	}

	if len(products) == 0 {
		slog.Warn("no products collected")
		shutdownMetrics(metricsServer)
		return
	}

	resolver, err := rates.NewResolver(cfg)
	if err != nil {
		slog.Error("initialising rate resolver", slog.Any("error", err))
		os.Exit(1)
	}
	res := resolver.Resolve(ctx, cfg.TargetCurrency)
	slog.Info("exchange rate resolved",
		slog.String("base", cfg.BaseCurrency),
		slog.String("currency", res.Currency),
		slog.String("rate", res.Rate.String()),
		slog.Bool("fallback", res.Fallback),
	)

	batch := convert.Convert(products, res.Rate, time.Now())

	if err := sink.Emit(batch, res, cfg); err != nil {
		slog.Error("sink failed", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownMetrics(metricsServer)

	result := &models.RunResult{
		RunID:        runID,
		StartTime:    startTime,
		EndTime:      time.Now(),
		ItemCount:    len(batch),
		PageCount:    col.PageCount(),
		ErrorCount:   col.ErrorCount(),
		ErrorsByType: col.ErrorsByType(),
		DegradedRate: res.Fallback,
		OutputFile:   cfg.OutputFile,
	}
	printSummary(result, cfg.BaseCurrency, res)
}

func shutdownMetrics(server *http.Server) {
	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", slog.Any("error", err))
	}
}

func printSummary(result *models.RunResult, baseCurrency string, res rates.Resolution) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Run complete")
	fmt.Printf("  Run ID:        %s\n", result.RunID)
	fmt.Printf("  Products:      %d\n", result.ItemCount)
	fmt.Printf("  Pages:         %d\n", result.PageCount)
	fmt.Printf("  Fetch errors:  %d\n", result.ErrorCount)
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Rate:          %s -> %s @ %s\n", baseCurrency, res.Currency, res.Rate)
	if res.Fallback {
		fmt.Printf("  Rate source:   FALLBACK (%s)\n", res.Reason)
	}
	fmt.Printf("  Duration:      %v\n", result.EndTime.Sub(result.StartTime))
	fmt.Printf("  Output file:   %s\n", result.OutputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
