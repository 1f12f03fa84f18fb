// Package demand is the boundary to the portfolio side of the broker:
// how much energy each delivery slot needs.
package demand

import (
	"github.com/rxtech-lab/watt-broker/internal/types"
)

// Source answers how many kWh a delivery slot requires. Positive values
// mean energy must be bought, negative values sold.
type Source interface {
	RequiredKWh(slot types.DeliverySlot) float64
}

// ProfileUpdater is implemented by sources whose profile can be replaced
// at runtime, e.g. when bootstrap data arrives.
type ProfileUpdater interface {
	SetProfile(profile []float64)
}

// ProfileSource serves requirements from a fixed per-offset usage
// profile, indexed by slot modulo the profile length. Stands in for a
// live portfolio manager, typically seeded from the bootstrap usage
// record.
type ProfileSource struct {
	profile []float64
}

// NewProfileSource creates a source over the given profile. An empty
// profile reports zero demand for every slot.
func NewProfileSource(profile []float64) *ProfileSource {
	return &ProfileSource{profile: profile}
}

// RequiredKWh implements Source.
func (s *ProfileSource) RequiredKWh(slot types.DeliverySlot) float64 {
	if len(s.profile) == 0 {
		return 0
	}

	return s.profile[int(slot)%len(s.profile)]
}

// SetProfile replaces the profile, e.g. once bootstrap data arrives.
func (s *ProfileSource) SetProfile(profile []float64) {
	s.profile = profile
}
