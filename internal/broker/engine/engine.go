// Package engine defines the trading agent's core interface: a single
// consumer of market events that reacts to the per-timeslot tick by
// submitting orders for every open delivery slot.
package engine

import (
	"github.com/rxtech-lab/watt-broker/internal/forecast"
	"github.com/rxtech-lab/watt-broker/internal/types"
)

// MarketBroker consumes market events and trades. Implementations
// serialize all state transitions internally; HandleEvent may be called
// directly from the transport's reader goroutine.
type MarketBroker interface {
	// HandleEvent applies one inbound market event. Protocol anomalies
	// are logged and dropped, never surfaced to the transport.
	HandleEvent(event types.MarketEvent)

	// LatestPrediction returns the most recent demand prediction, empty
	// until the forecaster has answered at least once.
	LatestPrediction() forecast.Prediction

	// Wait blocks until in-flight background work (snapshot writes,
	// forecast calls) has finished. Call before shutdown.
	Wait()
}

// SnapshotSink persists per-timeslot forward windows.
type SnapshotSink interface {
	SaveWindow(window types.ForwardWindow) error
}
