package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxtech-lab/watt-broker/internal/broker/clearing"
	"github.com/rxtech-lab/watt-broker/internal/broker/demand"
	"github.com/rxtech-lab/watt-broker/internal/broker/engine/engine_v1"
	"github.com/rxtech-lab/watt-broker/internal/broker/positions"
	"github.com/rxtech-lab/watt-broker/internal/broker/pricer"
	"github.com/rxtech-lab/watt-broker/internal/config"
	"github.com/rxtech-lab/watt-broker/internal/forecast"
	"github.com/rxtech-lab/watt-broker/internal/logger"
	"github.com/rxtech-lab/watt-broker/internal/reports"
	"github.com/rxtech-lab/watt-broker/internal/storage"
	"github.com/rxtech-lab/watt-broker/internal/transport"
	"github.com/rxtech-lab/watt-broker/internal/weather"
	"github.com/rxtech-lab/watt-broker/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// runAction wires the broker together and trades until the session ends
// or the process is interrupted.
func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	appLog, err := logger.NewLoggerWithLevel(logger.ParseLevel(cfg.Log.Level))
	if err != nil {
		return err
	}
	defer appLog.Sync()

	seed := cfg.Broker.Seed.TakeOr(time.Now().UnixNano())

	history := clearing.NewHistoryStore(cfg.Broker.BootstrapWindow, appLog)
	tracker := positions.NewTracker(appLog)
	aggregator := clearing.NewAggregator(history)
	weatherRepo := weather.NewRepo()
	reporter := reports.NewReporter()
	source := demand.NewProfileSource(nil)

	limitPricer := pricer.NewPricer(pricer.Bounds{
		BuyCeiling:  cfg.Broker.BuyPriceCeiling,
		BuyFloor:    cfg.Broker.BuyPriceFloor,
		SellCeiling: cfg.Broker.SellPriceCeiling,
		SellFloor:   cfg.Broker.SellPriceFloor,
		Factor:      cfg.Broker.EscalationFactor,
	}, seed, appLog)

	snapshots, err := storage.NewSnapshotStore(cfg.Storage.DSN, appLog)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	forecaster := forecast.NewHTTPForecaster(cfg.Forecast, appLog)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := transport.Dial(ctx, cfg.Market, appLog)
	if err != nil {
		return err
	}
	defer client.Close()

	broker := engine_v1.NewMarketBroker(cfg.Broker, engine_v1.Dependencies{
		Tracker:    tracker,
		History:    history,
		Aggregator: aggregator,
		Pricer:     limitPricer,
		Demand:     source,
		Weather:    weatherRepo,
		Reporter:   reporter,
		Submitter:  client,
		Snapshots:  snapshots,
		Forecaster: forecaster,
		Logger:     appLog,
	})

	runErr := client.Run(ctx, broker)
	broker.Wait()

	if cfg.Report.OutputDir != "" {
		if runDir, err := reporter.WriteCSV(cfg.Report.OutputDir); err != nil {
			appLog.Error("failed to write session report", zap.Error(err))
		} else {
			appLog.Info("session report written", zap.String("dir", runDir))
		}
	}

	reporter.PrintSummary(os.Stdout)

	// A cancelled session is a clean shutdown, not a failure.
	if errors.HasCode(runErr, errors.ErrCodeTransportClosed) && ctx.Err() != nil {
		appLog.Info("session closed")
		return nil
	}

	return runErr
}

func main() {
	cmd := &cli.Command{
		Name:  "watt-broker",
		Usage: "Wholesale electricity market trading agent",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the broker configuration file",
				Value:   "config.yaml",
			},
		},
		Action: runAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("broker exited with error: %v", err)
	}
}
