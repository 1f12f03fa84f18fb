package positions

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/watt-broker/internal/logger"
	"github.com/rxtech-lab/watt-broker/internal/types"
	"github.com/stretchr/testify/suite"
)

type TrackerTestSuite struct {
	suite.Suite
	tracker *Tracker
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}

func (suite *TrackerTestSuite) SetupTest() {
	log, err := logger.NewLogger()
	suite.Require().NoError(err)
	suite.tracker = NewTracker(log)
}

func (suite *TrackerTestSuite) TestSetAndGetOrder() {
	order := types.NewOrder(360, 5.0, optional.Some(-12.0))
	suite.tracker.SetOrder(order)

	got := suite.tracker.LastOrder(360)
	suite.Require().True(got.IsSome())
	suite.Equal(order.ID, got.Unwrap().ID)
}

func (suite *TrackerTestSuite) TestLastOrderAbsent() {
	suite.True(suite.tracker.LastOrder(999).IsNone())
}

func (suite *TrackerTestSuite) TestSetOrderSupersedes() {
	first := types.NewOrder(360, 5.0, optional.Some(-12.0))
	second := types.NewOrder(360, 3.0, optional.Some(-20.0))
	suite.tracker.SetOrder(first)
	suite.tracker.SetOrder(second)

	got := suite.tracker.LastOrder(360)
	suite.Require().True(got.IsSome())
	suite.Equal(second.ID, got.Unwrap().ID)
}

func (suite *TrackerTestSuite) TestFullClearRetiresOrder() {
	suite.tracker.SetOrder(types.NewOrder(360, 5.0, optional.Some(-12.0)))
	suite.tracker.RecordTrade(360, 5.0)
	suite.True(suite.tracker.LastOrder(360).IsNone())
}

func (suite *TrackerTestSuite) TestPartialClearLeavesOrderInstalled() {
	order := types.NewOrder(360, 5.0, optional.Some(-12.0))
	suite.tracker.SetOrder(order)
	suite.tracker.RecordTrade(360, 2.0)

	got := suite.tracker.LastOrder(360)
	suite.Require().True(got.IsSome())
	suite.Equal(5.0, got.Unwrap().MWh)
}

func (suite *TrackerTestSuite) TestTradeWithoutOrderIsNoOp() {
	// Should log, not panic, and leave no state behind
	suite.tracker.RecordTrade(360, 5.0)
	suite.True(suite.tracker.LastOrder(360).IsNone())
}

func (suite *TrackerTestSuite) TestRecordPositionOverwrites() {
	suite.tracker.RecordPosition(360, 2.5)
	suite.tracker.RecordPosition(360, -1.0)
	suite.Equal(-1.0, suite.tracker.NetPosition(360))
}

func (suite *TrackerTestSuite) TestNetPositionDefaultsToZero() {
	suite.Equal(0.0, suite.tracker.NetPosition(12345))
}

func (suite *TrackerTestSuite) TestRetireThrough() {
	suite.tracker.SetOrder(types.NewOrder(100, 1.0, optional.None[float64]()))
	suite.tracker.SetOrder(types.NewOrder(101, 1.0, optional.None[float64]()))
	suite.tracker.RecordPosition(100, 1.0)
	suite.tracker.RecordPosition(101, 1.0)

	suite.tracker.RetireThrough(100)

	suite.True(suite.tracker.LastOrder(100).IsNone())
	suite.True(suite.tracker.LastOrder(101).IsSome())
	suite.Equal(0.0, suite.tracker.NetPosition(100))
	suite.Equal(1.0, suite.tracker.NetPosition(101))
}
