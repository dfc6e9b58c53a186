package backtest

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/swing-trading/internal/backtest/charges"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultConfigIsValid() {
	config := DefaultConfig()
	suite.Require().NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestUnmarshalAppliesDefaults() {
	var config Config

	err := yaml.Unmarshal([]byte("initial_capital: 500000\n"), &config)
	suite.Require().NoError(err)

	suite.Equal(500000.0, config.InitialCapital)
	suite.Equal(4000.0, config.MaxRiskPerTrade)
	suite.Equal(80, config.LookaheadDays)
	suite.Equal(ExitPolicyFirstTarget, config.ExitPolicy)
	suite.Equal(40, config.NoTargetDays)
	suite.Equal(PriceSourceLow, config.NoTargetExitPrice)
	suite.Equal(charges.ModelIndianEquityDelivery, config.ChargeModel)
}

func (suite *ConfigTestSuite) TestUnmarshalOverridesDefaults() {
	input := `
initial_capital: 1000000
exit_policy: TRAILING_TARGET
no_target_exit_price: open
charge_model: zero
`

	var config Config

	err := yaml.Unmarshal([]byte(input), &config)
	suite.Require().NoError(err)

	suite.Equal(ExitPolicyTrailingTarget, config.ExitPolicy)
	suite.Equal(PriceSourceOpen, config.NoTargetExitPrice)
	suite.Equal(charges.ModelZero, config.ChargeModel)
	suite.Require().NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestValidation() {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults pass",
			modify:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "zero capital",
			modify:  func(c *Config) { c.InitialCapital = 0 },
			wantErr: true,
		},
		{
			name:    "negative risk",
			modify:  func(c *Config) { c.MaxRiskPerTrade = -1 },
			wantErr: true,
		},
		{
			name:    "unknown exit policy",
			modify:  func(c *Config) { c.ExitPolicy = "HOLD_FOREVER" },
			wantErr: true,
		},
		{
			name:    "close is not a no-target price",
			modify:  func(c *Config) { c.NoTargetExitPrice = PriceSourceClose },
			wantErr: true,
		},
		{
			name:    "low is not a forced exit price",
			modify:  func(c *Config) { c.ForcedExitPrice = PriceSourceLow },
			wantErr: true,
		},
		{
			name:    "unknown charge model",
			modify:  func(c *Config) { c.ChargeModel = "free_lunch" },
			wantErr: true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := DefaultConfig()
			tc.modify(&config)

			err := config.Validate()
			if tc.wantErr {
				suite.Error(err)
			} else {
				suite.NoError(err)
			}
		})
	}
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	config := DefaultConfig()

	schema, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)
	suite.Contains(schema, "initial_capital")
	suite.Contains(schema, "exit_policy")
}
