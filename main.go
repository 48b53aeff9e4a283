package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/MountainGod2/stripalerts/alerts"
	"github.com/MountainGod2/stripalerts/config"
	"github.com/MountainGod2/stripalerts/events"
	"github.com/MountainGod2/stripalerts/ledcontrol"
)

func main() {
	// .env is optional; deployments usually set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if level, lerr := logrus.ParseLevel(cfg.LogLevel); lerr == nil {
		logrus.SetLevel(level)
	}
	logrus.Info("StripAlerts started")

	// ---------- LED strip ----------
	engine, err := ledcontrol.NewEngine(cfg.LED.Pin, cfg.LED.Count, cfg.LED.Brightness)
	if err != nil {
		logrus.Fatalf("led engine: %v", err)
	}
	controller, err := ledcontrol.NewController(engine, ledcontrol.Options{
		AlertDuration: cfg.AlertDuration,
		ColorHold:     cfg.ColorHold,
	})
	if err != nil {
		logrus.Fatalf("led controller: %v", err)
	}
	defer controller.Close()

	// ---------- event feed ----------
	poller := events.NewPoller(cfg.API.FeedURL(), cfg.API.Timeout)
	dispatcher := alerts.New(controller, cfg.ColorAlertTokens)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.MetricsAddr != "" {
		go func() {
			logrus.Infof("metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, promhttp.Handler()); err != nil {
				logrus.WithError(err).Warn("metrics listener stopped")
			}
		}()
	}

	// ---------- animation + dispatch loops ----------
	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := controller.Run(ctx); err != nil {
			errCh <- err
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := dispatcher.Run(ctx, poller); err != nil && ctx.Err() == nil {
			errCh <- err
			cancel()
		}
	}()

	wg.Wait()
	controller.Close()

	select {
	case err := <-errCh:
		logrus.Fatalf("stopped on error: %v", err)
	default:
		logrus.Info("StripAlerts stopped")
	}
}
