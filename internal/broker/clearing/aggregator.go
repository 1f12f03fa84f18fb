package clearing

import (
	"github.com/rxtech-lab/watt-broker/internal/types"
)

// Aggregator projects forward windows out of the history store: for each
// future slot, the latest known cleared volume and mean price as of now.
// Pure projection, no mutation.
type Aggregator struct {
	store *HistoryStore
}

// NewAggregator creates an aggregator over the given store.
func NewAggregator(store *HistoryStore) *Aggregator {
	return &Aggregator{store: store}
}

// ForwardWindow returns snapshots for slots anchor+1 through
// anchor+length in order. Slots with no recorded trade yield the zero
// sentinel, never an error.
func (a *Aggregator) ForwardWindow(anchor types.DeliverySlot, length int) types.ForwardWindow {
	records := make([]types.ClearedRecord, length)
	for i := 0; i < length; i++ {
		records[i] = a.store.Get(anchor + types.DeliverySlot(i) + 1)
	}

	return types.ForwardWindow{
		Anchor:  anchor,
		Records: records,
	}
}
