package transport

import (
	"encoding/json"

	"github.com/rxtech-lab/watt-broker/internal/types"
	"github.com/rxtech-lab/watt-broker/pkg/errors"
)

// envelope is the wire framing: a kind tag plus the kind-specific
// payload.
type envelope struct {
	Kind    types.EventKind `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// orderEnvelope frames an outbound order with the submitting broker's
// name.
type orderEnvelope struct {
	Kind   string      `json:"kind"`
	Broker string      `json:"broker"`
	Order  types.Order `json:"order"`
}

const orderKind = "ORDER"

// DecodeEvent parses one wire message into a typed market event. Unknown
// kinds return ErrCodeUnknownEventKind; callers log and drop them.
func DecodeEvent(data []byte) (types.MarketEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, "failed to parse event envelope", err)
	}

	switch env.Kind {
	case types.EventKindClearedTrade:
		return decodePayload[types.ClearedTradeEvent](env)
	case types.EventKindTradeExecuted:
		return decodePayload[types.TradeExecutedEvent](env)
	case types.EventKindPositionUpdated:
		return decodePayload[types.PositionUpdatedEvent](env)
	case types.EventKindOrderbook:
		return decodePayload[types.OrderbookEvent](env)
	case types.EventKindBootstrapData:
		return decodePayload[types.BootstrapDataEvent](env)
	case types.EventKindCompetition:
		return decodePayload[types.CompetitionEvent](env)
	case types.EventKindBalanceReport:
		return decodePayload[types.BalanceReportEvent](env)
	case types.EventKindTimeslotUpdate:
		return decodePayload[types.TimeslotUpdateEvent](env)
	case types.EventKindWeatherReport:
		return decodePayload[types.WeatherReportEvent](env)
	case types.EventKindWeatherForecast:
		return decodePayload[types.WeatherForecastEvent](env)
	case types.EventKindBalancingTransaction:
		return decodePayload[types.BalancingTransactionEvent](env)
	case types.EventKindCashPosition:
		return decodePayload[types.CashPositionEvent](env)
	case types.EventKindDistributionReport:
		return decodePayload[types.DistributionReportEvent](env)
	default:
		return nil, errors.Newf(errors.ErrCodeUnknownEventKind, "unknown event kind %q", env.Kind)
	}
}

func decodePayload[T types.MarketEvent](env envelope) (types.MarketEvent, error) {
	var event T
	if err := json.Unmarshal(env.Payload, &event); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDecodeFailed, err, "failed to parse %s payload", env.Kind)
	}

	return event, nil
}

// EncodeOrder frames an order for the wire.
func EncodeOrder(brokerName string, order types.Order) ([]byte, error) {
	data, err := json.Marshal(orderEnvelope{
		Kind:   orderKind,
		Broker: brokerName,
		Order:  order,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, "failed to encode order", err)
	}

	return data, nil
}
