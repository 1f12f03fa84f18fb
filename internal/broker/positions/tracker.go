// Package positions tracks, per delivery slot, the single outstanding
// order and the net traded position reported by the market.
package positions

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/watt-broker/internal/logger"
	"github.com/rxtech-lab/watt-broker/internal/types"
	"go.uber.org/zap"
)

// Tracker keeps per-slot order and position state. It does no locking of
// its own; callers serialize access (the engine holds one mutex across
// every state transition).
type Tracker struct {
	lastOrder    map[types.DeliverySlot]types.Order
	netPositions map[types.DeliverySlot]float64
	logger       *logger.Logger
}

// NewTracker creates an empty tracker.
func NewTracker(log *logger.Logger) *Tracker {
	return &Tracker{
		lastOrder:    make(map[types.DeliverySlot]types.Order),
		netPositions: make(map[types.DeliverySlot]float64),
		logger:       log,
	}
}

// RecordTrade reconciles an executed trade against the outstanding order
// for the slot. The order is retired only on an exact volume match (full
// clear); a partial clear leaves it installed so escalation continues
// from the same price. A trade with no outstanding order is anomalous but
// harmless: log and leave state unchanged.
func (t *Tracker) RecordTrade(slot types.DeliverySlot, tradedMWh float64) {
	order, ok := t.lastOrder[slot]
	if !ok {
		t.logger.Warn("trade executed for slot with no outstanding order",
			zap.Int("slot", int(slot)),
			zap.Float64("mwh", tradedMWh),
		)

		return
	}

	if order.MWh == tradedMWh {
		delete(t.lastOrder, slot)
		t.logger.Debug("order fully cleared",
			zap.Int("slot", int(slot)),
			zap.String("order_id", order.ID),
		)
	}
}

// RecordPosition overwrites the net traded position for a slot. The value
// is authoritative state pushed by the market; the update is idempotent.
func (t *Tracker) RecordPosition(slot types.DeliverySlot, netMWh float64) {
	t.netPositions[slot] = netMWh
}

// LastOrder returns the outstanding order for a slot, if any.
func (t *Tracker) LastOrder(slot types.DeliverySlot) optional.Option[types.Order] {
	order, ok := t.lastOrder[slot]
	if !ok {
		return optional.None[types.Order]()
	}

	return optional.Some(order)
}

// SetOrder installs an order as the slot's outstanding order, superseding
// any previous one.
func (t *Tracker) SetOrder(order types.Order) {
	t.lastOrder[order.Slot] = order
}

// NetPosition returns the net traded position for a slot, zero when the
// market has reported nothing yet.
func (t *Tracker) NetPosition(slot types.DeliverySlot) float64 {
	return t.netPositions[slot]
}

// RetireThrough drops order and position state for every slot up to and
// including the given one. Delivered slots are never traded again.
func (t *Tracker) RetireThrough(slot types.DeliverySlot) {
	for s := range t.lastOrder {
		if s <= slot {
			delete(t.lastOrder, s)
		}
	}

	for s := range t.netPositions {
		if s <= slot {
			delete(t.netPositions, s)
		}
	}
}
