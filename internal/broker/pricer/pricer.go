// Package pricer computes limit prices that escalate toward a
// guaranteed-to-trade price as a delivery slot's remaining trading
// opportunities run out.
package pricer

import (
	"math"
	"math/rand"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/watt-broker/internal/logger"
	"github.com/rxtech-lab/watt-broker/internal/types"
	"go.uber.org/zap"
)

// Bounds are the four configured price bounds plus the escalation factor.
// Sign conventions: bid prices negative (we pay), ask prices positive.
// Escalation moves from the ceiling toward the floor on both sides.
type Bounds struct {
	BuyCeiling  float64
	BuyFloor    float64
	SellCeiling float64
	SellFloor   float64
	// Factor scales the per-round step; above 1 it overshoots the floor
	// before tries run out, converging faster to a sure-trade price.
	Factor float64
}

// Pricer computes limit prices with a seedable random element.
type Pricer struct {
	bounds Bounds
	rng    *rand.Rand
	logger *logger.Logger
}

// NewPricer creates a pricer seeded for reproducible runs.
func NewPricer(bounds Bounds, seed int64, log *logger.Logger) *Pricer {
	return &Pricer{
		bounds: bounds,
		rng:    rand.New(rand.NewSource(seed)),
		logger: log,
	}
}

// LimitPrice computes the limit price for an order of the given signed
// volume, or None for an unconditional market order once no tries remain.
//
// The start bound is the configured ceiling for the order's side, unless
// the previous order for the slot had the same volume sign and carried a
// limit, in which case escalation continues from that price. A sign flip,
// or a prior market order, resets to the default bound.
func (p *Pricer) LimitPrice(
	amountNeeded float64,
	slot types.DeliverySlot,
	remainingTries int,
	lastOrder optional.Option[types.Order],
) optional.Option[float64] {
	var start, floor float64
	if amountNeeded > 0 {
		// buying
		start = p.bounds.BuyCeiling
		floor = p.bounds.BuyFloor
	} else {
		// selling
		start = p.bounds.SellCeiling
		floor = p.bounds.SellFloor
	}

	// escalation continuity across rounds
	if lastOrder.IsSome() {
		last := lastOrder.Unwrap()
		if math.Signbit(amountNeeded) == math.Signbit(last.MWh) && last.LimitPrice.IsSome() {
			start = last.LimitPrice.Unwrap()
		}
	}

	if remainingTries <= 0 {
		p.logger.Debug("escalation exhausted, submitting market order",
			zap.Int("slot", int(slot)),
			zap.Float64("mwh", amountNeeded),
		)

		return optional.None[float64]()
	}

	step := (floor - start) * p.bounds.Factor / float64(remainingTries)
	candidate := start + p.rng.Float64()*step

	p.logger.Debug("limit price computed",
		zap.Int("slot", int(slot)),
		zap.Int("remaining_tries", remainingTries),
		zap.Float64("start", start),
		zap.Float64("candidate", candidate),
	)

	return optional.Some(math.Max(floor, candidate))
}
