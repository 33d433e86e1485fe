package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nikmy/shifter/internal/api"
	"github.com/nikmy/shifter/internal/auth"
	"github.com/nikmy/shifter/internal/metrics"
	"github.com/nikmy/shifter/internal/repo"
	"github.com/nikmy/shifter/internal/shifts"
	"github.com/nikmy/shifter/pkg/environment"
	"github.com/nikmy/shifter/pkg/errors"
	"github.com/nikmy/shifter/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dotenv := flag.String("dotenv", ".env", "file with environment variables")
	env := flag.String("env", "", "environment (dev, prod), overrides config")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *dotenv)
	if err != nil {
		stdlog.Panic(errors.WrapFail(err, "load config"))
	}

	if *env != "" {
		cfg.Environment = environment.FromString(*env)
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		stdlog.Panic(errors.WrapFail(err, "init logger"))
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGABRT)
	defer cancel()

	err = run(ctx, cfg, log)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config, log logger.Logger) error {
	loc := time.UTC
	if cfg.Shifts.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Shifts.Timezone)
		if err != nil {
			return errors.WrapFailf(err, "load timezone %q", cfg.Shifts.Timezone)
		}
	}

	authn, err := auth.New(cfg.Auth)
	if err != nil {
		return errors.WrapFail(err, "init authenticator")
	}

	store, err := repo.New(ctx, cfg.Storage, log)
	if err != nil {
		return errors.WrapFail(err, "init storage")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	svc := shifts.NewService(store, log, shifts.WithLocation(loc), shifts.WithRecorder(collector))
	server := api.NewServer(cfg.HTTP, log, svc, authn, api.WithMetrics(collector, metrics.Handler(reg)))

	return serve(ctx, server, store, log)
}

// serve runs the store upkeep and the http server until ctx is done or the
// server fails, then stops both. The store is closed only after Run returns.
func serve(ctx context.Context, server api.Server, store repo.Repo, log logger.Logger) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	storeDone := make(chan error, 1)
	go func() { storeDone <- store.Run(ctx) }()

	serveErr := errors.WrapFail(server.Serve(ctx), "serve http")

	log.Infof("graceful shutdown...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := server.Shutdown(shutdownCtx)

	runErr := <-storeDone
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	closeErr := store.Close(shutdownCtx)

	log.Infof("shutdown complete")
	return errors.Collapse(
		serveErr,
		shutdownErr,
		errors.WrapFail(runErr, "run storage"),
		errors.WrapFail(closeErr, "close storage"),
	)
}
