package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"

	"aqi-query/internal/airnow"
	"aqi-query/internal/config"
	"aqi-query/internal/repository"
	"aqi-query/internal/router"
	"aqi-query/internal/scheduler"
	"aqi-query/internal/util"
)

const logFileName = "aqi-query.log"

func LoggerInitialize(cfg config.Config) (*util.Logger, error) {
	logger := &util.Logger{}

	if err := logger.Init(cfg.LogDir, logFileName, cfg.EffectiveLogLevel(), false); err != nil {
		return nil, err
	}

	logger.LogEvent(util.LOG_LEVEL_INFO, "aqi-query started at", time.Now().Format(time.RFC3339), "for zip code", cfg.ZipCode)
	return logger, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns the process exit status. Tables are written to stdout.
func run(args []string, stdout io.Writer) int {
	cfg, err := config.Load("aqi-query", args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, "Configuration error:", err)
		return 1
	}

	logger, err := LoggerInitialize(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		return 1
	}
	defer logger.DeInit()

	requestURL, err := cfg.RequestURL()
	if err != nil {
		logger.LogEvent(util.LOG_LEVEL_ERROR, "Invalid AirNow URL:", err)
		return 1
	}
	client := airnow.New(requestURL)

	if !cfg.Metrics.Enabled() {
		sched := scheduler.New(client, nil, stdout, logger, cfg.CollectInterval)
		if err := sched.RunOnce(context.Background()); err != nil {
			logger.LogEvent(util.LOG_LEVEL_ERROR, "Request error:", err)
			return 1
		}
		return 0
	}

	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		logger.LogEvent(util.LOG_LEVEL_ERROR, "Failed to register go collector:", err)
		return 1
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		logger.LogEvent(util.LOG_LEVEL_ERROR, "Failed to register process collector:", err)
		return 1
	}
	store, err := repository.NewGaugeStore(reg)
	if err != nil {
		logger.LogEvent(util.LOG_LEVEL_ERROR, "Failed to register AQI gauges:", err)
		return 1
	}

	sched := scheduler.New(client, store, stdout, logger, cfg.CollectInterval)
	sched.Start()
	defer sched.Stop()

	if err := router.Run(cfg.MetricsAddr, reg, store, logger); err != nil {
		logger.LogEvent(util.LOG_LEVEL_ERROR, err)
		return 1
	}
	return 0
}
