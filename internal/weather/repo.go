// Package weather stores observed weather reports and forecast
// predictions for the forecaster's feature vector.
package weather

import (
	"sync"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/watt-broker/internal/types"
)

// Observation is the recorded weather for one delivery slot.
type Observation struct {
	Slot        types.DeliverySlot
	Temperature float64
	WindSpeed   float64
	CloudCover  float64
}

// forecastKey identifies one prediction: issued at Origin, targeting
// Target.
type forecastKey struct {
	Origin types.DeliverySlot
	Target types.DeliverySlot
}

// Repo holds weather history in memory. Safe for concurrent use: reports
// arrive on the session goroutine while the forecast feature builder
// reads from its own.
type Repo struct {
	mu          sync.RWMutex
	reports     map[types.DeliverySlot]Observation
	predictions map[forecastKey]types.WeatherPrediction
}

// NewRepo creates an empty repo.
func NewRepo() *Repo {
	return &Repo{
		reports:     make(map[types.DeliverySlot]Observation),
		predictions: make(map[forecastKey]types.WeatherPrediction),
	}
}

// SaveReport records the observed weather for a slot.
func (r *Repo) SaveReport(obs Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reports[obs.Slot] = obs
}

// Report returns the observation for a slot, if any.
func (r *Repo) Report(slot types.DeliverySlot) optional.Option[Observation] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	obs, ok := r.reports[slot]
	if !ok {
		return optional.None[Observation]()
	}

	return optional.Some(obs)
}

// SavePredictions records a forecast issued at origin; the i-th
// prediction targets origin+i+1.
func (r *Repo) SavePredictions(origin types.DeliverySlot, predictions []types.WeatherPrediction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range predictions {
		key := forecastKey{Origin: origin, Target: origin + types.DeliverySlot(i) + 1}
		r.predictions[key] = p
	}
}

// Prediction returns the forecast issued at origin for the target slot.
func (r *Repo) Prediction(origin, target types.DeliverySlot) optional.Option[types.WeatherPrediction] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.predictions[forecastKey{Origin: origin, Target: target}]
	if !ok {
		return optional.None[types.WeatherPrediction]()
	}

	return optional.Some(p)
}

// RetireThrough drops reports for slots up to and including the given
// one, and predictions whose target has passed.
func (r *Repo) RetireThrough(slot types.DeliverySlot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for s := range r.reports {
		if s <= slot {
			delete(r.reports, s)
		}
	}

	for key := range r.predictions {
		if key.Target <= slot {
			delete(r.predictions, key)
		}
	}
}
