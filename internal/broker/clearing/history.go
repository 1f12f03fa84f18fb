// Package clearing maintains the rolling record of cleared trades per
// delivery slot: incremental volume-weighted means, the folded bootstrap
// profile, and forward-window projections for the forecaster.
package clearing

import (
	"github.com/rxtech-lab/watt-broker/internal/logger"
	"github.com/rxtech-lab/watt-broker/internal/types"
	"github.com/rxtech-lab/watt-broker/pkg/errors"
	"go.uber.org/zap"
)

// HistoryStore records cleared volume and price per delivery slot. Not
// safe for concurrent use; the engine serializes access.
type HistoryStore struct {
	records map[types.DeliverySlot]types.ClearedRecord

	// Folded bootstrap profile, one mean per window offset.
	bootstrapMWh   []float64
	bootstrapPrice []float64
	window         int

	meanMarketPrice float64
	logger          *logger.Logger
}

// NewHistoryStore creates a store folding bootstrap series into a window
// of the given length.
func NewHistoryStore(window int, log *logger.Logger) *HistoryStore {
	return &HistoryStore{
		records:         make(map[types.DeliverySlot]types.ClearedRecord),
		bootstrapMWh:    nil,
		bootstrapPrice:  nil,
		window:          window,
		meanMarketPrice: 0,
		logger:          log,
	}
}

// RecordClear folds one cleared trade into the slot's record. Updates for
// a slot must arrive in the order the market generated them; the session
// transport guarantees that.
func (s *HistoryStore) RecordClear(slot types.DeliverySlot, mwh, price float64) {
	s.records[slot] = s.records[slot].Merge(mwh, price)

	s.logger.Debug("cleared trade recorded",
		zap.Int("slot", int(slot)),
		zap.Float64("mwh", mwh),
		zap.Float64("price", price),
	)
}

// Get returns the slot's cleared record, or the zero sentinel when the
// slot has never cleared.
func (s *HistoryStore) Get(slot types.DeliverySlot) types.ClearedRecord {
	return s.records[slot]
}

// RecordBootstrapSeries folds the bootstrap usage and price series into
// per-offset running means over the window: the first pass copies, each
// later pass p updates mean[i] = (mean[i]*p + series[i+p*W]) / (p+1). It
// also computes the global volume-weighted mean price across the whole
// series, kept for reporting.
func (s *HistoryStore) RecordBootstrapSeries(mwh, price []float64) error {
	if len(mwh) != len(price) {
		return errors.Newf(errors.ErrCodeInvalidSeries,
			"bootstrap series length mismatch: %d mwh vs %d price", len(mwh), len(price))
	}

	s.bootstrapMWh = make([]float64, s.window)
	s.bootstrapPrice = make([]float64, s.window)

	totalUsage := 0.0
	totalValue := 0.0

	for i := range mwh {
		totalUsage += mwh[i]
		totalValue += price[i] * mwh[i]

		if i < s.window {
			// first pass, just copy the data
			s.bootstrapMWh[i] = mwh[i]
			s.bootstrapPrice[i] = price[i]
		} else {
			// subsequent passes, accumulate mean values
			pass := i / s.window
			index := i % s.window
			s.bootstrapMWh[index] = (s.bootstrapMWh[index]*float64(pass) + mwh[i]) / float64(pass+1)
			s.bootstrapPrice[index] = (s.bootstrapPrice[index]*float64(pass) + price[i]) / float64(pass+1)
		}
	}

	if totalUsage != 0 {
		s.meanMarketPrice = totalValue / totalUsage
	}

	s.logger.Info("bootstrap series folded",
		zap.Int("entries", len(mwh)),
		zap.Int("window", s.window),
		zap.Float64("mean_market_price", s.meanMarketPrice),
	)

	return nil
}

// BootstrapProfile returns the folded per-offset usage and price means.
// Both are nil until a bootstrap series arrives.
func (s *HistoryStore) BootstrapProfile() (mwh, price []float64) {
	return s.bootstrapMWh, s.bootstrapPrice
}

// MeanMarketPrice returns the volume-weighted mean price across the whole
// bootstrap series, zero before bootstrap.
func (s *HistoryStore) MeanMarketPrice() float64 {
	return s.meanMarketPrice
}

// RetireThrough drops records for every slot up to and including the
// given one.
func (s *HistoryStore) RetireThrough(slot types.DeliverySlot) {
	for sl := range s.records {
		if sl <= slot {
			delete(s.records, sl)
		}
	}
}
