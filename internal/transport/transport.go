// Package transport connects the broker to the market session over a
// websocket: inbound messages become typed market events, outbound
// orders are written as JSON envelopes.
package transport

import (
	"context"

	"github.com/rxtech-lab/watt-broker/internal/types"
)

// EventHandler consumes decoded market events. Called from the
// transport's single reader goroutine, so events arrive in wire order.
type EventHandler interface {
	HandleEvent(event types.MarketEvent)
}

// OrderSubmitter hands orders to the market.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order types.Order) error
}
