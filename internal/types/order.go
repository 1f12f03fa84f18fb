package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/watt-broker/pkg/errors"
)

// Shared instance: orders are validated once per open slot per tick.
var validate = validator.New()

// Order is a limit order for a single delivery slot. MWh is signed:
// positive volume buys energy, negative volume sells. A None limit price
// means an unconditional market order, the terminal escalation state that
// is guaranteed to execute.
type Order struct {
	ID   string       `yaml:"id" json:"id" csv:"id" validate:"required,uuid"`
	Slot DeliverySlot `yaml:"slot" json:"slot" csv:"slot" validate:"gte=0"`
	// MWh is the signed order volume. Never zero for a submitted order.
	MWh        float64                  `yaml:"mwh" json:"mwh" csv:"mwh"`
	LimitPrice optional.Option[float64] `yaml:"limit_price" json:"limit_price" csv:"limit_price"`
}

// NewOrder builds an order with a fresh ID.
func NewOrder(slot DeliverySlot, mwh float64, limitPrice optional.Option[float64]) Order {
	return Order{
		ID:         uuid.NewString(),
		Slot:       slot,
		MWh:        mwh,
		LimitPrice: limitPrice,
	}
}

// IsBuy reports whether the order buys energy.
func (o Order) IsBuy() bool {
	return o.MWh > 0
}

// IsMarketOrder reports whether the order executes unconditionally.
func (o Order) IsMarketOrder() bool {
	return o.LimitPrice.IsNone()
}

// Validate validates the Order struct.
func (o *Order) Validate() error {
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	if o.MWh == 0 {
		return errors.New(errors.ErrCodeInvalidOrder, "order volume must be non-zero")
	}

	return nil
}
