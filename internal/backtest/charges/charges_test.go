package charges

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ChargesTestSuite struct {
	suite.Suite
}

func TestChargesSuite(t *testing.T) {
	suite.Run(t, new(ChargesTestSuite))
}

func (suite *ChargesTestSuite) TestZeroCharges() {
	model := NewZeroCharges()
	suite.NotNil(model)

	tests := []struct {
		name      string
		buyValue  float64
		sellValue float64
	}{
		{"zero values", 0, 0},
		{"small trade", 1000, 1100},
		{"large trade", 500000, 480000},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(0.0, model.Calculate(tc.buyValue, tc.sellValue))
		})
	}
}

func (suite *ChargesTestSuite) TestIndianEquityDeliveryCharges() {
	model := NewIndianEquityDeliveryCharges()
	suite.NotNil(model)

	tests := []struct {
		name      string
		buyValue  float64
		sellValue float64
		expected  float64
	}{
		// 0.00015*buy + 0.001*(buy+sell) + 14.75
		{"zero values", 0, 0, 14.75},
		{"round numbers", 100000, 110000, 14.75 + 15 + 210},
		{"losing trade", 50000, 45000, 14.75 + 7.5 + 95},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, model.Calculate(tc.buyValue, tc.sellValue), 1e-9)
		})
	}
}

func (suite *ChargesTestSuite) TestGetChargeModel() {
	tests := []struct {
		name      string
		model     Model
		buyValue  float64
		sellValue float64
		expected  float64
	}{
		{"indian equity delivery", ModelIndianEquityDelivery, 100000, 110000, 239.75},
		{"zero", ModelZero, 100000, 110000, 0},
		{"unknown defaults to indian equity delivery", Model("unknown"), 100000, 110000, 239.75},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			handler := GetChargeModel(tc.model)
			suite.NotNil(handler)
			suite.InDelta(tc.expected, handler.Calculate(tc.buyValue, tc.sellValue), 1e-9)
		})
	}
}

func (suite *ChargesTestSuite) TestAllModels() {
	suite.Len(AllModels, 2)
	suite.Contains(AllModels, ModelIndianEquityDelivery)
	suite.Contains(AllModels, ModelZero)
}
