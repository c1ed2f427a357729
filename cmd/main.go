package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"signalboard/src/pricing"
	"signalboard/src/scoring"
	"signalboard/src/server"
	"signalboard/src/session"
	"signalboard/src/store"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Signalboard CMD"
	app.Usage = "The Signalboard command line interface"

	app.Commands = []cli.Command{
		runCMD,
		resetCMD,
		historyCMD,
		simulateCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	runCMD = cli.Command{
		Name:        "run",
		Usage:       "run the signal session and HTTP server",
		Action:      runAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the signal session with the live price feed and serve the board API`,
	}
	resetCMD = cli.Command{
		Name:        "reset",
		Usage:       "wipe the persisted session snapshot",
		Action:      resetAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Remove the persisted trade, history, events and batch blobs`,
	}
	historyCMD = cli.Command{
		Name:        "history",
		Usage:       "print closed trades from the snapshot",
		Action:      historyAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Print the persisted closed-trade history, newest first`,
	}
	simulateCMD = cli.Command{
		Name:      "simulate",
		Usage:     "run N ticks against the static price source",
		Action:    simulateAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.IntFlag{Name: "ticks", Value: 200, Usage: "number of ticks to simulate"},
			cli.Int64Flag{Name: "seed", Value: 1, Usage: "random seed for prices and scoring"},
		},
		Description: `Drive the session offline with simulated prices and print the outcome`,
	}
)

func runAction(_ *cli.Context) error {
	logrus.Info("Starting session CMD")

	if err := store.Init(); err != nil {
		logrus.WithError(err).Error("Failed to open snapshot store")
		return err
	}

	sess := session.New(
		session.GetConfig(),
		pricing.NewFromConfig(pricing.GetConfig()),
		scoring.NewConfluenceStrategy(0),
		store.NewSnapshotStore(store.NewKVRepository()),
		logrus.WithField("cmd", "run"),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sess.Restore(ctx); err != nil {
		logrus.WithError(err).Warn("Failed to restore previous session, starting fresh")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sess.Run(gctx)
	})
	g.Go(func() error {
		return server.Run(gctx, server.GetConfig().Port, server.NewRouter(sess))
	})
	return g.Wait()
}

func resetAction(_ *cli.Context) error {
	logrus.Info("Starting reset CMD")

	if err := store.Init(); err != nil {
		logrus.WithError(err).Error("Failed to open snapshot store")
		return err
	}

	snapshots := store.NewSnapshotStore(store.NewKVRepository())
	if err := snapshots.Reset(context.Background()); err != nil {
		logrus.WithError(err).Error("Failed to reset snapshot")
		return err
	}

	logrus.Info("Snapshot cleared")
	return nil
}

func historyAction(_ *cli.Context) error {
	if err := store.Init(); err != nil {
		logrus.WithError(err).Error("Failed to open snapshot store")
		return err
	}

	snapshots := store.NewSnapshotStore(store.NewKVRepository())
	snap, err := snapshots.Load(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Failed to load snapshot")
		return err
	}

	if len(snap.History) == 0 {
		fmt.Println("no closed trades")
		return nil
	}
	for _, t := range snap.History {
		exit := "-"
		if t.ExitPrice != nil {
			exit = t.ExitPrice.String()
		}
		fmt.Printf("%s  %-4s %-8s entry %-12s exit %-12s %-11s %s%%\n",
			t.CreatedAt.Format(time.RFC3339), t.Direction, t.Symbol,
			t.Entry.String(), exit, t.CloseReason, t.ResultPct.String())
	}
	return nil
}

// simulateAction drives the tick loop with a fake clock, one tick interval per
// step, against the deterministic static price source. Nothing is persisted.
func simulateAction(c *cli.Context) error {
	ticks := c.Int("ticks")
	seed := c.Int64("seed")

	cfg := session.GetConfig()
	sess := session.New(
		cfg,
		pricing.NewStaticSource(seed),
		scoring.NewConfluenceStrategy(seed),
		nil,
		logrus.WithField("cmd", "simulate"),
	)

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sess.SetClock(func() time.Time { return clock })

	ctx := context.Background()
	for i := 0; i < ticks; i++ {
		sess.Tick(ctx)
		clock = clock.Add(cfg.TickInterval)
	}

	view := sess.Snapshot()
	history := sess.History()

	fmt.Printf("simulated %d ticks over %s\n", ticks, time.Duration(ticks)*cfg.TickInterval)
	fmt.Printf("batches: %d, closed trades: %d\n", view.Batch.BatchCount, len(history))
	for _, t := range history {
		fmt.Printf("  %-4s %-8s %-11s result %s%%\n", t.Direction, t.Symbol, t.CloseReason, t.ResultPct.String())
	}
	if view.ActiveTrade != nil {
		fmt.Printf("still active: %s %s entry %s\n",
			view.ActiveTrade.Direction, view.ActiveTrade.Symbol, view.ActiveTrade.Entry.String())
	}
	return nil
}
