package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"deploywatch/internal/config"
	"deploywatch/internal/deploy"
	"deploywatch/internal/httpapi"
	"deploywatch/internal/httpapi/middleware"
	"deploywatch/internal/logging"
	"deploywatch/internal/monitor"
	"deploywatch/internal/notify"
	"deploywatch/internal/probe"
	"deploywatch/internal/session"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if cfg.HealthURL == "" {
		logger.Fatal("config_missing", zap.String("key", "HEALTH_URL"))
	}

	// Push env vars and trigger the deploy first; the health monitor then
	// watches the result. Both are optional: with no hosting API configured
	// this is a plain health monitor.
	var deployer *deploy.Client
	if cfg.DeployAPIBase != "" {
		deployer = deploy.NewClient(
			cfg.DeployAPIBase, cfg.DeployApp, cfg.DeployToken,
			cfg.RetryAttempts, cfg.RetryBackoff, logger,
		)
		ctx := context.Background()
		if err := deployer.SetEnv(ctx, cfg.EnvVars); err != nil {
			logger.Fatal("env_push_failed", zap.Error(err))
		}
		d, err := deployer.Trigger(ctx)
		if err != nil {
			logger.Fatal("deploy_trigger_failed", zap.Error(err))
		}
		logger.Info("deploy_triggered",
			zap.String("deployment_id", d.ID),
			zap.String("status", d.Status),
		)
	}

	prober := probe.New(cfg.ExpectedStatus, cfg.Timeout)
	sessions := session.NewStore()
	notifier := notify.Multi{
		notify.NewConsole(nil),
		&notify.ZapNotifier{Logger: logger},
	}

	mon := monitor.New(logger, prober, notifier, sessions, cfg.LogDir, cfg.CheckInterval)
	cancel, err := mon.Start(cfg.HealthURL)
	if err != nil {
		logger.Fatal("monitor_start_failed", zap.Error(err))
	}
	defer cancel()

	var dep httpapi.Deployer
	if deployer != nil {
		dep = deployer
	}
	keys := middleware.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	api := httpapi.NewServer(
		logger, sessions, dep, prober, cfg.HealthURL,
		keys, cfg.PublicRPM, cfg.PublicBurst,
	)
	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := http.ListenAndServe(cfg.Addr, api.Router()); err != nil {
			logger.Fatal("api_serve_failed", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	cancel()
	logger.Info("shutdown")
}
