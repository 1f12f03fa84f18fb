package types

// EventKind tags the variants of the MarketEvent union. The market session
// delivers every inbound message as one of these kinds; the engine
// dispatches on the tag in a single switch.
type EventKind string

const (
	EventKindClearedTrade         EventKind = "CLEARED_TRADE"
	EventKindTradeExecuted        EventKind = "TRADE_EXECUTED"
	EventKindPositionUpdated      EventKind = "POSITION_UPDATED"
	EventKindOrderbook            EventKind = "ORDERBOOK"
	EventKindBootstrapData        EventKind = "BOOTSTRAP_DATA"
	EventKindCompetition          EventKind = "COMPETITION"
	EventKindBalanceReport        EventKind = "BALANCE_REPORT"
	EventKindTimeslotUpdate       EventKind = "TIMESLOT_UPDATE"
	EventKindWeatherReport        EventKind = "WEATHER_REPORT"
	EventKindWeatherForecast      EventKind = "WEATHER_FORECAST"
	EventKindBalancingTransaction EventKind = "BALANCING_TRANSACTION"
	EventKindCashPosition         EventKind = "CASH_POSITION"
	EventKindDistributionReport   EventKind = "DISTRIBUTION_REPORT"
)

// MarketEvent is the tagged union of every inbound market message.
type MarketEvent interface {
	Kind() EventKind
}

// ClearedTradeEvent reports market-wide cleared volume and price for one
// future delivery slot in the round that just closed.
type ClearedTradeEvent struct {
	Slot  DeliverySlot `json:"slot"`
	MWh   float64      `json:"mwh"`
	Price float64      `json:"price"`
}

func (ClearedTradeEvent) Kind() EventKind { return EventKindClearedTrade }

// TradeExecutedEvent reports that some volume of our own order for a slot
// traded. A volume equal to the outstanding order's means a full clear.
type TradeExecutedEvent struct {
	Slot  DeliverySlot `json:"slot"`
	MWh   float64      `json:"mwh"`
	Price float64      `json:"price"`
}

func (TradeExecutedEvent) Kind() EventKind { return EventKindTradeExecuted }

// PositionUpdatedEvent carries the market's authoritative net traded
// position for a slot.
type PositionUpdatedEvent struct {
	Slot   DeliverySlot `json:"slot"`
	NetMWh float64      `json:"net_mwh"`
}

func (PositionUpdatedEvent) Kind() EventKind { return EventKindPositionUpdated }

// OrderbookEntry is one uncleared ask or bid.
type OrderbookEntry struct {
	MWh   float64 `json:"mwh"`
	Price float64 `json:"price"`
}

// OrderbookEvent lists the uncleared asks and bids after a round.
type OrderbookEvent struct {
	Slot DeliverySlot     `json:"slot"`
	Asks []OrderbookEntry `json:"asks"`
	Bids []OrderbookEntry `json:"bids"`
}

func (OrderbookEvent) Kind() EventKind { return EventKindOrderbook }

// BootstrapDataEvent carries the historical usage and price series for the
// bootstrap period preceding the game.
type BootstrapDataEvent struct {
	MWh   []float64 `json:"mwh"`
	Price []float64 `json:"price"`
}

func (BootstrapDataEvent) Kind() EventKind { return EventKindBootstrapData }

// CompetitionEvent arrives once at game start with session parameters.
type CompetitionEvent struct {
	MinOrderMWh float64 `json:"min_order_mwh"`
	Brokers     int     `json:"brokers"`
	Customers   int     `json:"customers"`
}

func (CompetitionEvent) Kind() EventKind { return EventKindCompetition }

// BalanceReportEvent reports the net imbalance for the slot that just
// completed. It triggers the forward-window snapshot.
type BalanceReportEvent struct {
	Slot         DeliverySlot `json:"slot"`
	NetImbalance float64      `json:"net_imbalance"`
}

func (BalanceReportEvent) Kind() EventKind { return EventKindBalanceReport }

// TimeslotUpdateEvent is the per-timeslot tick. FirstEnabled through
// LastEnabled (inclusive) are the slots currently open for trading.
type TimeslotUpdateEvent struct {
	Slot         DeliverySlot `json:"slot"`
	FirstEnabled DeliverySlot `json:"first_enabled"`
	LastEnabled  DeliverySlot `json:"last_enabled"`
}

func (TimeslotUpdateEvent) Kind() EventKind { return EventKindTimeslotUpdate }

// WeatherReportEvent is the observed weather for the current slot.
type WeatherReportEvent struct {
	Slot        DeliverySlot `json:"slot"`
	Temperature float64      `json:"temperature"`
	WindSpeed   float64      `json:"wind_speed"`
	CloudCover  float64      `json:"cloud_cover"`
}

func (WeatherReportEvent) Kind() EventKind { return EventKindWeatherReport }

// WeatherPrediction is one forecast entry; the i-th prediction of a
// forecast issued at origin slot o targets slot o+i+1.
type WeatherPrediction struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"wind_speed"`
}

// WeatherForecastEvent carries the forecast issued at Origin for the
// following slots.
type WeatherForecastEvent struct {
	Origin      DeliverySlot        `json:"origin"`
	Predictions []WeatherPrediction `json:"predictions"`
}

func (WeatherForecastEvent) Kind() EventKind { return EventKindWeatherForecast }

// BalancingTransactionEvent is the charge for the imbalance the market
// settled on our behalf.
type BalancingTransactionEvent struct {
	Slot   DeliverySlot `json:"slot"`
	KWh    float64      `json:"kwh"`
	Charge float64      `json:"charge"`
}

func (BalancingTransactionEvent) Kind() EventKind { return EventKindBalancingTransaction }

// CashPositionEvent updates our bank balance.
type CashPositionEvent struct {
	Balance float64 `json:"balance"`
}

func (CashPositionEvent) Kind() EventKind { return EventKindCashPosition }

// DistributionReportEvent carries total production and consumption across
// all brokers for a slot.
type DistributionReportEvent struct {
	Slot        DeliverySlot `json:"slot"`
	Production  float64      `json:"production"`
	Consumption float64      `json:"consumption"`
}

func (DistributionReportEvent) Kind() EventKind { return EventKindDistributionReport }
