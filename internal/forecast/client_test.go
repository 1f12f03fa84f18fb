package forecast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rxtech-lab/watt-broker/internal/broker/clearing"
	"github.com/rxtech-lab/watt-broker/internal/config"
	"github.com/rxtech-lab/watt-broker/internal/logger"
	"github.com/rxtech-lab/watt-broker/internal/types"
	"github.com/rxtech-lab/watt-broker/internal/weather"
	"github.com/rxtech-lab/watt-broker/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ForecastTestSuite struct {
	suite.Suite
	logger *logger.Logger
}

func TestForecastSuite(t *testing.T) {
	suite.Run(t, new(ForecastTestSuite))
}

func (suite *ForecastTestSuite) SetupSuite() {
	log, err := logger.NewLogger()
	suite.Require().NoError(err)
	suite.logger = log
}

func (suite *ForecastTestSuite) clientFor(url string) *HTTPForecaster {
	return NewHTTPForecaster(config.ForecastConfig{
		URL:            url,
		TimeoutSeconds: 1,
		RatePerSecond:  100,
	}, suite.logger)
}

func (suite *ForecastTestSuite) TestPredictDecodesResponse() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.Equal(http.MethodPost, r.Method)
		suite.Equal("application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"prediction": [12.5, 13.0]}`))
	}))
	defer server.Close()

	prediction, err := suite.clientFor(server.URL).Predict(context.Background(), []float64{1, 2, 3})
	suite.Require().NoError(err)
	suite.False(prediction.IsEmpty())
	suite.Equal([]float64{12.5, 13.0}, prediction.Values)
}

func (suite *ForecastTestSuite) TestPredictDegradesWhenUnreachable() {
	// A closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	prediction, err := suite.clientFor(url).Predict(context.Background(), []float64{1})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeForecastUnavailable))
	suite.True(prediction.IsEmpty())
}

func (suite *ForecastTestSuite) TestPredictRejectsErrorStatus() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	prediction, err := suite.clientFor(server.URL).Predict(context.Background(), []float64{1})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeForecastUnavailable))
	suite.True(prediction.IsEmpty())
}

func (suite *ForecastTestSuite) TestPredictRejectsMalformedBody() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := suite.clientFor(server.URL).Predict(context.Background(), []float64{1})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeForecastMalformed))
}

func (suite *ForecastTestSuite) TestBuildFeaturesLayout() {
	history := clearing.NewHistoryStore(168, suite.logger)
	weatherRepo := weather.NewRepo()
	aggregator := clearing.NewAggregator(history)

	anchor := types.DeliverySlot(200)

	history.RecordClear(anchor-1, 10.0, -30.0)
	weatherRepo.SaveReport(weather.Observation{Slot: anchor, Temperature: 21.0, WindSpeed: 4.0})
	weatherRepo.SaveReport(weather.Observation{Slot: anchor - 1, Temperature: 19.0, WindSpeed: 3.0})
	weatherRepo.SavePredictions(anchor, []types.WeatherPrediction{{Temperature: 22.0, WindSpeed: 5.0}})

	window := aggregator.ForwardWindow(anchor, 24)
	features := BuildFeatures(anchor, history, weatherRepo, window)

	// 2 calendar + 24*(2 cleared + 2 weather) + 2 current weather +
	// 23 forward pairs + 23 forecast pairs
	suite.Len(features, 2+24*4+2+23*2+23*2)

	suite.Equal(float64(anchor.SlotOfDay()), features[0])
	suite.Equal(float64(anchor.SlotOfWeek()), features[1])

	// Most recent past slot sits at the end of the history block.
	lastPast := 2 + 23*4
	suite.Equal(10.0, features[lastPast])
	suite.Equal(-30.0, features[lastPast+1])
	suite.Equal(19.0, features[lastPast+2])
	suite.Equal(3.0, features[lastPast+3])

	// Current weather follows the history block.
	current := 2 + 24*4
	suite.Equal(21.0, features[current])
	suite.Equal(4.0, features[current+1])

	// First forecast pair follows the forward block.
	forecastStart := current + 2 + 23*2
	suite.Equal(22.0, features[forecastStart])
	suite.Equal(5.0, features[forecastStart+1])
}
