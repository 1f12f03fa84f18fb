package weather

import (
	"testing"

	"github.com/rxtech-lab/watt-broker/internal/types"
	"github.com/stretchr/testify/suite"
)

type RepoTestSuite struct {
	suite.Suite
	repo *Repo
}

func TestRepoSuite(t *testing.T) {
	suite.Run(t, new(RepoTestSuite))
}

func (suite *RepoTestSuite) SetupTest() {
	suite.repo = NewRepo()
}

func (suite *RepoTestSuite) TestSaveAndReadReport() {
	obs := Observation{Slot: 100, Temperature: 21.5, WindSpeed: 4.2, CloudCover: 0.3}
	suite.repo.SaveReport(obs)

	stored := suite.repo.Report(100)
	suite.Require().True(stored.IsSome())
	suite.Equal(obs, stored.Unwrap())

	suite.True(suite.repo.Report(101).IsNone())
}

func (suite *RepoTestSuite) TestPredictionsKeyedByOriginAndTarget() {
	suite.repo.SavePredictions(100, []types.WeatherPrediction{
		{Temperature: 20.0, WindSpeed: 3.0},
		{Temperature: 19.5, WindSpeed: 3.5},
	})

	first := suite.repo.Prediction(100, 101)
	suite.Require().True(first.IsSome())
	suite.Equal(20.0, first.Unwrap().Temperature)

	second := suite.repo.Prediction(100, 102)
	suite.Require().True(second.IsSome())
	suite.Equal(19.5, second.Unwrap().Temperature)

	// A forecast from a different origin does not answer for this one.
	suite.True(suite.repo.Prediction(99, 101).IsNone())
}

func (suite *RepoTestSuite) TestRetireThrough() {
	suite.repo.SaveReport(Observation{Slot: 10})
	suite.repo.SaveReport(Observation{Slot: 20})
	suite.repo.SavePredictions(10, []types.WeatherPrediction{{Temperature: 1}})
	suite.repo.SavePredictions(20, []types.WeatherPrediction{{Temperature: 2}})

	suite.repo.RetireThrough(15)

	suite.True(suite.repo.Report(10).IsNone())
	suite.True(suite.repo.Report(20).IsSome())
	suite.True(suite.repo.Prediction(10, 11).IsNone())
	suite.True(suite.repo.Prediction(20, 21).IsSome())
}
