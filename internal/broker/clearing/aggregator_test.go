package clearing

import (
	"testing"

	"github.com/rxtech-lab/watt-broker/internal/logger"
	"github.com/rxtech-lab/watt-broker/internal/types"
	"github.com/stretchr/testify/suite"
)

type AggregatorTestSuite struct {
	suite.Suite
	store      *HistoryStore
	aggregator *Aggregator
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorTestSuite))
}

func (suite *AggregatorTestSuite) SetupTest() {
	log, err := logger.NewLogger()
	suite.Require().NoError(err)
	suite.store = NewHistoryStore(24, log)
	suite.aggregator = NewAggregator(suite.store)
}

func (suite *AggregatorTestSuite) TestEmptyStoreYieldsZeroRecords() {
	window := suite.aggregator.ForwardWindow(100, 24)
	suite.Equal(types.DeliverySlot(100), window.Anchor)
	suite.Require().Len(window.Records, 24)

	for _, record := range window.Records {
		suite.True(record.IsZero())
	}
}

func (suite *AggregatorTestSuite) TestWindowStartsAfterAnchor() {
	suite.store.RecordClear(100, 9.0, 30.0) // the anchor itself, excluded
	suite.store.RecordClear(101, 2.0, 50.0)
	suite.store.RecordClear(124, 4.0, 20.0)
	suite.store.RecordClear(125, 7.0, 10.0) // beyond the window, excluded

	window := suite.aggregator.ForwardWindow(100, 24)
	suite.Require().Len(window.Records, 24)
	suite.Equal(2.0, window.Records[0].TotalMWh)
	suite.Equal(50.0, window.Records[0].MeanPrice)
	suite.Equal(4.0, window.Records[23].TotalMWh)

	for i := 1; i < 23; i++ {
		suite.True(window.Records[i].IsZero())
	}
}

func (suite *AggregatorTestSuite) TestProjectionDoesNotMutate() {
	suite.store.RecordClear(101, 2.0, 50.0)

	window := suite.aggregator.ForwardWindow(100, 24)
	window.Records[0] = types.ClearedRecord{TotalMWh: 99, MeanPrice: 99}

	suite.Equal(2.0, suite.store.Get(101).TotalMWh)
}
