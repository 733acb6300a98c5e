package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucabrevi/nba-totals/internal/app"
	"github.com/lucabrevi/nba-totals/internal/config"
	"github.com/lucabrevi/nba-totals/internal/observability"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
	"github.com/lucabrevi/nba-totals/internal/usecase"
)

func main() {
	os.Exit(run())
}

func run() int {
	dateFlag := flag.String("date", "", "target date as YYYY-MM-DD (default: today)")
	fullFlag := flag.Bool("full", false, "backfill the scoreboard from SEASON_START")
	skipTrainFlag := flag.Bool("skip-train", false, "skip the prediction stage and score the predictions already on file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		return 1
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	var target time.Time
	if *dateFlag != "" {
		target, err = time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			logger.Error("parse --date", "error", err)
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("shutdown uptrace", "error", err)
		}
	}()

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		return 1
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Error("stop pyroscope", "error", err)
		}
	}()

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		return 1
	}
	defer func() {
		if err := observability.StopPprofServer(pprofSrv, logger, 5*time.Second); err != nil {
			logger.Error("stop pprof server", "error", err)
		}
	}()

	pipeline, err := app.BuildPipeline(cfg, logger)
	if err != nil {
		logger.Error("build pipeline", "error", err)
		return 1
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Error("close pipeline", "error", err)
		}
	}()

	result, err := pipeline.Service.Run(ctx, usecase.PipelineInput{
		TargetDate: target,
		Full:       *fullFlag,
		SkipTrain:  *skipTrainFlag,
	})
	if err != nil {
		logger.Error("pipeline failed", "error", err, "stages", len(result.Stages))
		return 1
	}

	logger.Info("pipeline finished", "stages", len(result.Stages))
	return 0
}
