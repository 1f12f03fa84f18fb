package forecast

import (
	"github.com/rxtech-lab/watt-broker/internal/broker/clearing"
	"github.com/rxtech-lab/watt-broker/internal/types"
	"github.com/rxtech-lab/watt-broker/internal/weather"
)

// History depth consumed by the predictor: 24 past slots of cleared and
// weather data, 23 forward pairs. The layout is fixed by the predictor's
// training pipeline; do not reorder.
const (
	historyDepth = 24
	forwardDepth = 23
)

// BuildFeatures assembles the predictor's feature vector for an anchor
// slot: slot-of-day and slot-of-week, then per past slot the cleared
// volume, mean price, temperature and wind speed, the current weather,
// the forward partial-cleared pairs, and the forecast weather for the
// coming slots. Missing history contributes zeros, never an error.
//
// Must be called while the engine's state lock is held; the returned
// slice is an independent snapshot safe to hand to the HTTP client.
func BuildFeatures(
	anchor types.DeliverySlot,
	history *clearing.HistoryStore,
	weatherRepo *weather.Repo,
	window types.ForwardWindow,
) []float64 {
	features := make([]float64, 0, 2+historyDepth*4+2+forwardDepth*4)
	features = append(features, float64(anchor.SlotOfDay()), float64(anchor.SlotOfWeek()))

	for j := historyDepth; j > 0; j-- {
		slot := anchor - types.DeliverySlot(j)
		record := history.Get(slot)
		features = append(features, record.TotalMWh, record.MeanPrice)

		obs := weatherRepo.Report(slot).TakeOr(weather.Observation{})
		features = append(features, obs.Temperature, obs.WindSpeed)
	}

	current := weatherRepo.Report(anchor).TakeOr(weather.Observation{})
	features = append(features, current.Temperature, current.WindSpeed)

	for k := 0; k < forwardDepth && k < len(window.Records); k++ {
		features = append(features, window.Records[k].TotalMWh, window.Records[k].MeanPrice)
	}

	for j := 1; j <= forwardDepth; j++ {
		prediction := weatherRepo.Prediction(anchor, anchor+types.DeliverySlot(j)).
			TakeOr(types.WeatherPrediction{})
		features = append(features, prediction.Temperature, prediction.WindSpeed)
	}

	return features
}
