package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/weegigs/wee-contracts-go/connectors/wehttp"
	"github.com/weegigs/wee-contracts-go/counter"
	"github.com/weegigs/wee-contracts-go/support"
)

func host(ctx context.Context, cfg support.Config) (counter.CounterHost, func(), error) {
	switch cfg.Store {
	case support.DynamoStore:
		return dynamoHost(ctx, cfg)
	case support.DynamoLocalStore:
		return dynamoLocalHost(ctx, cfg)
	case support.JetStreamStore:
		return jetstreamHost(cfg)
	case support.ESDBStore:
		return esdbHost(cfg)
	default:
		return memoryHost(cfg)
	}
}

func run(ctx context.Context) error {
	cfg, err := support.LoadConfig()
	if err != nil {
		return err
	}

	shutdownTelemetry, err := installTelemetry(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to configure telemetry")
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.WithError(err).Warn("failed to flush telemetry")
		}
	}()

	contract, cleanup, err := host(ctx, cfg)
	if err != nil {
		return errors.Wrapf(err, "failed to configure %s store", cfg.Store)
	}
	defer cleanup()

	server := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: withLogging(wehttp.NewHandler(contract, wehttp.Logger(support.Logger(cfg)))),
	}

	descriptor := contract.Descriptor()
	failed := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"address":  cfg.ListenAddress,
			"store":    cfg.Store,
			"contract": descriptor.Name,
			"version":  descriptor.Version,
		}).Info("listening")
		failed <- server.ListenAndServe()
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdown)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server failed")
	}
}
