package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"signalboard/src/pricing"
	"signalboard/src/scoring"
	"signalboard/src/server"
	"signalboard/src/session"
	"signalboard/src/store"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	if err := store.Init(); err != nil {
		logger.WithError(err).Fatal("Failed to open snapshot store")
	}

	cfg := session.GetConfig()
	prices := pricing.NewFromConfig(pricing.GetConfig())
	strategy := scoring.NewConfluenceStrategy(0)
	snapshots := store.NewSnapshotStore(store.NewKVRepository())

	sess := session.New(cfg, prices, strategy, snapshots, logger.WithField("component", "session"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sess.Restore(ctx); err != nil {
		logger.WithError(err).Warn("Failed to restore previous session, starting fresh")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sess.Run(gctx)
	})
	g.Go(func() error {
		return server.Run(gctx, server.GetConfig().Port, server.NewRouter(sess))
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("Shutdown with error")
	}
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
