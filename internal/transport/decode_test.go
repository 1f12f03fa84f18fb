package transport

import (
	"encoding/json"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/watt-broker/internal/types"
	"github.com/rxtech-lab/watt-broker/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DecodeTestSuite struct {
	suite.Suite
}

func TestDecodeSuite(t *testing.T) {
	suite.Run(t, new(DecodeTestSuite))
}

func (suite *DecodeTestSuite) TestDecodeClearedTrade() {
	event, err := DecodeEvent([]byte(`{"kind":"CLEARED_TRADE","payload":{"slot":372,"mwh":12.5,"price":-31.2}}`))
	suite.Require().NoError(err)

	cleared, ok := event.(types.ClearedTradeEvent)
	suite.Require().True(ok)
	suite.Equal(types.DeliverySlot(372), cleared.Slot)
	suite.Equal(12.5, cleared.MWh)
	suite.Equal(-31.2, cleared.Price)
}

func (suite *DecodeTestSuite) TestDecodeTimeslotUpdate() {
	event, err := DecodeEvent([]byte(`{"kind":"TIMESLOT_UPDATE","payload":{"slot":360,"first_enabled":361,"last_enabled":384}}`))
	suite.Require().NoError(err)

	update, ok := event.(types.TimeslotUpdateEvent)
	suite.Require().True(ok)
	suite.Equal(types.DeliverySlot(360), update.Slot)
	suite.Equal(types.DeliverySlot(361), update.FirstEnabled)
	suite.Equal(types.DeliverySlot(384), update.LastEnabled)
}

func (suite *DecodeTestSuite) TestDecodeWeatherForecast() {
	event, err := DecodeEvent([]byte(`{"kind":"WEATHER_FORECAST","payload":{"origin":100,"predictions":[{"temperature":21.5,"wind_speed":3.2}]}}`))
	suite.Require().NoError(err)

	forecast, ok := event.(types.WeatherForecastEvent)
	suite.Require().True(ok)
	suite.Equal(types.DeliverySlot(100), forecast.Origin)
	suite.Require().Len(forecast.Predictions, 1)
	suite.Equal(21.5, forecast.Predictions[0].Temperature)
}

func (suite *DecodeTestSuite) TestDecodeEveryKind() {
	payloads := map[types.EventKind]string{
		types.EventKindClearedTrade:         `{"slot":1,"mwh":1,"price":-1}`,
		types.EventKindTradeExecuted:        `{"slot":1,"mwh":1,"price":-1}`,
		types.EventKindPositionUpdated:      `{"slot":1,"net_mwh":2}`,
		types.EventKindOrderbook:            `{"slot":1,"asks":[],"bids":[]}`,
		types.EventKindBootstrapData:        `{"mwh":[1],"price":[-1]}`,
		types.EventKindCompetition:          `{"min_order_mwh":0.01,"brokers":2,"customers":5}`,
		types.EventKindBalanceReport:        `{"slot":1,"net_imbalance":-0.5}`,
		types.EventKindTimeslotUpdate:       `{"slot":1,"first_enabled":2,"last_enabled":25}`,
		types.EventKindWeatherReport:        `{"slot":1,"temperature":20,"wind_speed":3,"cloud_cover":0.4}`,
		types.EventKindWeatherForecast:      `{"origin":1,"predictions":[]}`,
		types.EventKindBalancingTransaction: `{"slot":1,"kwh":-500,"charge":12.5}`,
		types.EventKindCashPosition:         `{"balance":1000}`,
		types.EventKindDistributionReport:   `{"slot":1,"production":100,"consumption":120}`,
	}

	for kind, payload := range payloads {
		event, err := DecodeEvent([]byte(`{"kind":"` + string(kind) + `","payload":` + payload + `}`))
		suite.Require().NoError(err, "kind %s", kind)
		suite.Equal(kind, event.Kind())
	}
}

func (suite *DecodeTestSuite) TestUnknownKindRejected() {
	_, err := DecodeEvent([]byte(`{"kind":"TARIFF_UPDATE","payload":{}}`))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownEventKind))
}

func (suite *DecodeTestSuite) TestMalformedEnvelopeRejected() {
	_, err := DecodeEvent([]byte(`not json`))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDecodeFailed))
}

func (suite *DecodeTestSuite) TestMalformedPayloadRejected() {
	_, err := DecodeEvent([]byte(`{"kind":"CLEARED_TRADE","payload":{"slot":"not a number"}}`))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDecodeFailed))
}

func (suite *DecodeTestSuite) TestEncodeOrder() {
	order := types.NewOrder(372, 5.0, optional.Some(-32.5))

	data, err := EncodeOrder("watt", order)
	suite.Require().NoError(err)

	var env struct {
		Kind   string `json:"kind"`
		Broker string `json:"broker"`
		Order  struct {
			ID         string   `json:"id"`
			Slot       int      `json:"slot"`
			MWh        float64  `json:"mwh"`
			LimitPrice *float64 `json:"limit_price"`
		} `json:"order"`
	}
	suite.Require().NoError(json.Unmarshal(data, &env))

	suite.Equal("ORDER", env.Kind)
	suite.Equal("watt", env.Broker)
	suite.Equal(order.ID, env.Order.ID)
	suite.Equal(372, env.Order.Slot)
	suite.Equal(5.0, env.Order.MWh)
	suite.Require().NotNil(env.Order.LimitPrice)
	suite.Equal(-32.5, *env.Order.LimitPrice)
}

func (suite *DecodeTestSuite) TestEncodeMarketOrderHasNullLimit() {
	order := types.NewOrder(372, -3.0, optional.None[float64]())

	data, err := EncodeOrder("watt", order)
	suite.Require().NoError(err)

	var env map[string]any
	suite.Require().NoError(json.Unmarshal(data, &env))

	orderMap := env["order"].(map[string]any)
	suite.Nil(orderMap["limit_price"])
}
