// The v1 broker serializes every state transition behind one mutex: all
// event handling and the full activation pass run inside the critical
// section, while blocking I/O (order submission, snapshot writes,
// forecast calls) runs outside it on data snapshotted while locked.
package engine_v1

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/watt-broker/internal/broker/clearing"
	"github.com/rxtech-lab/watt-broker/internal/broker/demand"
	"github.com/rxtech-lab/watt-broker/internal/broker/engine"
	"github.com/rxtech-lab/watt-broker/internal/broker/pricer"
	"github.com/rxtech-lab/watt-broker/internal/broker/positions"
	"github.com/rxtech-lab/watt-broker/internal/config"
	"github.com/rxtech-lab/watt-broker/internal/forecast"
	"github.com/rxtech-lab/watt-broker/internal/logger"
	"github.com/rxtech-lab/watt-broker/internal/reports"
	"github.com/rxtech-lab/watt-broker/internal/transport"
	"github.com/rxtech-lab/watt-broker/internal/types"
	"github.com/rxtech-lab/watt-broker/internal/weather"
	"github.com/rxtech-lab/watt-broker/pkg/errors"
	"go.uber.org/zap"
)

// Past slots kept around after retirement; the feature vector looks 24
// slots back from the current anchor.
const historyKeep = 25

const submitTimeout = 10 * time.Second

// Dependencies are the collaborators of the v1 broker.
type Dependencies struct {
	Tracker    *positions.Tracker
	History    *clearing.HistoryStore
	Aggregator *clearing.Aggregator
	Pricer     *pricer.Pricer
	Demand     demand.Source
	Weather    *weather.Repo
	Reporter   *reports.Reporter
	Submitter  transport.OrderSubmitter
	Snapshots  engine.SnapshotSink
	Forecaster forecast.Forecaster
	Logger     *logger.Logger
}

// MarketBrokerV1 implements engine.MarketBroker.
type MarketBrokerV1 struct {
	cfg  config.BrokerConfig
	deps Dependencies
	log  *logger.Logger

	mu          sync.Mutex
	currentSlot types.DeliverySlot
	minOrderMWh float64
	prediction  forecast.Prediction

	background sync.WaitGroup
}

// NewMarketBroker creates the v1 broker.
func NewMarketBroker(cfg config.BrokerConfig, deps Dependencies) engine.MarketBroker {
	return &MarketBrokerV1{
		cfg:         cfg,
		deps:        deps,
		log:         deps.Logger,
		currentSlot: 0,
		minOrderMWh: cfg.MinOrderMWh,
		prediction:  forecast.Prediction{},
	}
}

// HandleEvent implements engine.MarketBroker.
func (b *MarketBrokerV1) HandleEvent(event types.MarketEvent) {
	b.mu.Lock()
	orders := b.dispatch(event)
	b.mu.Unlock()

	for _, order := range orders {
		b.submit(order)
	}
}

// LatestPrediction implements engine.MarketBroker.
func (b *MarketBrokerV1) LatestPrediction() forecast.Prediction {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.prediction
}

// Wait implements engine.MarketBroker.
func (b *MarketBrokerV1) Wait() {
	b.background.Wait()
}

// dispatch applies one event to broker state and returns any orders the
// event triggered. Caller holds the lock.
func (b *MarketBrokerV1) dispatch(event types.MarketEvent) []types.Order {
	switch e := event.(type) {
	case types.ClearedTradeEvent:
		b.deps.History.RecordClear(e.Slot, e.MWh, e.Price)

	case types.TradeExecutedEvent:
		b.deps.Tracker.RecordTrade(e.Slot, e.MWh)

	case types.PositionUpdatedEvent:
		b.deps.Tracker.RecordPosition(e.Slot, e.NetMWh)

	case types.OrderbookEvent:
		var asks, bids float64
		for _, entry := range e.Asks {
			asks += entry.MWh
		}

		for _, entry := range e.Bids {
			bids += entry.MWh
		}

		b.deps.Reporter.RecordOrderbook(asks, bids)

	case types.BootstrapDataEvent:
		b.handleBootstrap(e)

	case types.CompetitionEvent:
		if e.MinOrderMWh > b.minOrderMWh {
			b.log.Info("raising minimum order size",
				zap.Float64("from", b.minOrderMWh),
				zap.Float64("to", e.MinOrderMWh),
			)
			b.minOrderMWh = e.MinOrderMWh
		}

		b.deps.Reporter.RecordCompetition(e.Brokers, e.Customers)

	case types.BalanceReportEvent:
		b.deps.Reporter.RecordImbalance(e.NetImbalance)
		b.snapshotAndForecast(e.Slot)

	case types.TimeslotUpdateEvent:
		return b.handleTimeslot(e)

	case types.WeatherReportEvent:
		b.deps.Weather.SaveReport(weather.Observation{
			Slot:        e.Slot,
			Temperature: e.Temperature,
			WindSpeed:   e.WindSpeed,
			CloudCover:  e.CloudCover,
		})

	case types.WeatherForecastEvent:
		b.deps.Weather.SavePredictions(e.Origin, e.Predictions)

	case types.BalancingTransactionEvent:
		b.deps.Reporter.RecordBalancing(e.KWh, e.Charge)

	case types.CashPositionEvent:
		b.deps.Reporter.RecordCash(e.Balance)

	case types.DistributionReportEvent:
		b.deps.Reporter.RecordDistribution(e.Production, e.Consumption)

	default:
		b.log.Warn("dropping event of unknown type", zap.String("kind", string(event.Kind())))
	}

	return nil
}

func (b *MarketBrokerV1) handleBootstrap(e types.BootstrapDataEvent) {
	if err := b.deps.History.RecordBootstrapSeries(e.MWh, e.Price); err != nil {
		b.log.Error("failed to fold bootstrap series", zap.Error(err))
		return
	}

	// Seed the demand profile from the folded usage means when the
	// source supports it. The profile speaks kWh, the series MWh.
	if updater, ok := b.deps.Demand.(demand.ProfileUpdater); ok {
		mwh, _ := b.deps.History.BootstrapProfile()

		kwh := make([]float64, len(mwh))
		for i, v := range mwh {
			kwh[i] = v * 1000.0
		}

		updater.SetProfile(kwh)
	}
}

// snapshotAndForecast projects the forward window and feature vector
// under the lock, then persists and predicts in the background.
func (b *MarketBrokerV1) snapshotAndForecast(anchor types.DeliverySlot) {
	window := b.deps.Aggregator.ForwardWindow(anchor, b.cfg.ForwardWindow)
	features := forecast.BuildFeatures(anchor, b.deps.History, b.deps.Weather, window)

	b.background.Add(1)

	go func() {
		defer b.background.Done()

		if err := b.deps.Snapshots.SaveWindow(window); err != nil {
			b.log.Error("failed to persist forward window",
				zap.Int("anchor", int(anchor)),
				zap.Error(err),
			)
		}

		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		prediction, err := b.deps.Forecaster.Predict(ctx, features)
		if err != nil {
			// Advisory only: degrade to the empty prediction.
			b.log.Warn("forecast unavailable", zap.Int("anchor", int(anchor)), zap.Error(err))
		}

		b.mu.Lock()
		b.prediction = prediction
		b.mu.Unlock()
	}()
}

// handleTimeslot runs the activation pass over every open slot and ages
// out delivered state.
func (b *MarketBrokerV1) handleTimeslot(e types.TimeslotUpdateEvent) []types.Order {
	b.currentSlot = e.Slot

	var orders []types.Order

	for slot := e.FirstEnabled; slot <= e.LastEnabled; slot++ {
		order, err := b.activateSlot(slot)
		if err != nil {
			// One bad slot must not starve the rest of the pass.
			b.log.Error("slot activation failed",
				zap.Int("slot", int(slot)),
				zap.Error(err),
			)

			continue
		}

		if order.IsSome() {
			orders = append(orders, order.Unwrap())
		}
	}

	if retire := e.Slot - historyKeep; retire >= 0 {
		b.deps.History.RetireThrough(retire)
		b.deps.Weather.RetireThrough(retire)
	}

	if e.Slot > 0 {
		b.deps.Tracker.RetireThrough(e.Slot - 1)
	}

	return orders
}

// activateSlot computes the order for one open slot, or None when the
// remaining requirement is below the minimum order size.
func (b *MarketBrokerV1) activateSlot(slot types.DeliverySlot) (optional.Option[types.Order], error) {
	if slot <= b.currentSlot {
		return optional.None[types.Order](), errors.Newf(errors.ErrCodeActivationFailed,
			"slot %d is not ahead of current slot %d", int(slot), int(b.currentSlot))
	}

	requiredKWh := b.deps.Demand.RequiredKWh(slot)
	neededMWh := requiredKWh/1000.0 - b.deps.Tracker.NetPosition(slot)

	if math.Abs(neededMWh) <= b.minOrderMWh {
		return optional.None[types.Order](), nil
	}

	remainingTries := int(slot-b.currentSlot) - b.cfg.DeactivationLead
	limit := b.deps.Pricer.LimitPrice(neededMWh, slot, remainingTries, b.deps.Tracker.LastOrder(slot))

	order := types.NewOrder(slot, neededMWh, limit)
	if err := order.Validate(); err != nil {
		return optional.None[types.Order](), errors.Wrapf(errors.ErrCodeActivationFailed, err,
			"failed to build order for slot %d", int(slot))
	}

	b.deps.Tracker.SetOrder(order)

	return optional.Some(order), nil
}

// submit hands one order to the market, outside the lock.
func (b *MarketBrokerV1) submit(order types.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	if err := b.deps.Submitter.SubmitOrder(ctx, order); err != nil {
		b.log.Error("order submission failed",
			zap.String("order_id", order.ID),
			zap.Int("slot", int(order.Slot)),
			zap.Error(err),
		)

		return
	}

	b.deps.Reporter.CountOrder(order.IsMarketOrder())

	b.log.Info("order submitted",
		zap.String("order_id", order.ID),
		zap.Int("slot", int(order.Slot)),
		zap.Float64("mwh", order.MWh),
		zap.Bool("market_order", order.IsMarketOrder()),
	)
}
