package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ClearedRecordTestSuite struct {
	suite.Suite
}

func TestClearedRecordSuite(t *testing.T) {
	suite.Run(t, new(ClearedRecordTestSuite))
}

func (suite *ClearedRecordTestSuite) TestZeroValueIsSentinel() {
	var r ClearedRecord
	suite.True(r.IsZero())
	suite.Equal(0.0, r.TotalMWh)
	suite.Equal(0.0, r.MeanPrice)
}

func (suite *ClearedRecordTestSuite) TestMergeFirstTrade() {
	var r ClearedRecord
	r = r.Merge(2.0, 50.0)
	suite.Equal(2.0, r.TotalMWh)
	suite.Equal(50.0, r.MeanPrice)
}

func (suite *ClearedRecordTestSuite) TestMergeWeightedMean() {
	var r ClearedRecord
	r = r.Merge(2.0, 50.0)
	r = r.Merge(3.0, 40.0)
	suite.Equal(5.0, r.TotalMWh)
	suite.InDelta(44.0, r.MeanPrice, 1e-9)
}

func (suite *ClearedRecordTestSuite) TestMergeZeroTotalStaysSentinel() {
	var r ClearedRecord
	r = r.Merge(0, 0)
	suite.True(r.IsZero())
}

func (suite *ClearedRecordTestSuite) TestSlotArithmetic() {
	s := DeliverySlot(170)
	suite.Equal(2, s.SlotOfDay())
	suite.Equal(2, s.SlotOfWeek())
}
