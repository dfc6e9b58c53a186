package backtest

import (
	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/swing-trading/internal/backtest/charges"
	"github.com/rxtech-lab/swing-trading/pkg/errors"
	"github.com/rxtech-lab/swing-trading/pkg/utils"
)

// ExitPolicy selects how a position's target interacts with its exit rules.
type ExitPolicy string

const (
	// ExitPolicyFirstTarget exits on the first target touch, with a
	// separate no-target time exit for positions that never reach it.
	ExitPolicyFirstTarget ExitPolicy = "FIRST_TARGET_EXIT"
	// ExitPolicyTrailingTarget ratchets the stop and target upward on each
	// target touch instead of exiting; the trade ends on the trailed stop.
	ExitPolicyTrailingTarget ExitPolicy = "TRAILING_TARGET"
	// ExitPolicyMaxHoldForced exits unconditionally at the holding cap,
	// with no separate no-target rule.
	ExitPolicyMaxHoldForced ExitPolicy = "MAX_HOLD_FORCED"
)

var AllExitPolicies = []any{
	ExitPolicyFirstTarget,
	ExitPolicyTrailingTarget,
	ExitPolicyMaxHoldForced,
}

// PriceSource names which bar price settles an exit whose rule does not
// imply a price of its own.
type PriceSource string

const (
	PriceSourceOpen  PriceSource = "open"
	PriceSourceLow   PriceSource = "low"
	PriceSourceClose PriceSource = "close"
)

// Config holds every knob of one simulation run. All values are read once
// at the start of the run.
type Config struct {
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,minimum=0" validate:"required,gt=0"`
	// MaxRiskPerTrade caps the loss a stop-loss exit can realize; quantity
	// is sized as floor(MaxRiskPerTrade / risk per share).
	MaxRiskPerTrade float64 `yaml:"max_risk_per_trade" json:"max_risk_per_trade" jsonschema:"minimum=0" validate:"required,gt=0"`
	// LookaheadDays extends the calendar past the last entry date so open
	// positions have room to resolve.
	LookaheadDays int        `yaml:"lookahead_days" json:"lookahead_days" jsonschema:"minimum=0" validate:"gte=0"`
	ExitPolicy    ExitPolicy `yaml:"exit_policy" json:"exit_policy" validate:"required,oneof=FIRST_TARGET_EXIT TRAILING_TARGET MAX_HOLD_FORCED"`
	// NoTargetDays is the holding age that forces an exit when the target
	// was never hit (FIRST_TARGET_EXIT and TRAILING_TARGET policies).
	NoTargetDays int `yaml:"no_target_days" json:"no_target_days" jsonschema:"minimum=1" validate:"required,gt=0"`
	// MaxHoldDays is the unconditional holding cap (MAX_HOLD_FORCED policy).
	MaxHoldDays int `yaml:"max_hold_days" json:"max_hold_days" jsonschema:"minimum=1" validate:"required,gt=0"`
	// NoTargetExitPrice settles the no-target exit: the day's low
	// (conservative, default) or its open.
	NoTargetExitPrice PriceSource `yaml:"no_target_exit_price" json:"no_target_exit_price" validate:"required,oneof=open low"`
	// ForcedExitPrice settles the end-of-run forced close: the last bar's
	// open (default) or its close.
	ForcedExitPrice PriceSource   `yaml:"forced_exit_price" json:"forced_exit_price" validate:"required,oneof=open close"`
	ChargeModel     charges.Model `yaml:"charge_model" json:"charge_model" validate:"required,oneof=indian_equity_delivery zero"`
}

// UnmarshalYAML implements custom unmarshaling so omitted fields fall back
// to the defaults instead of zero values.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	plain := DefaultConfig()

	type plainConfig Config
	if err := unmarshal((*plainConfig)(&plain)); err != nil {
		return err
	}

	*c = plain

	return nil
}

// Validate validates the simulation configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid simulation config", err)
	}

	return nil
}

// GenerateSchemaJSON generates a JSON schema string for the simulation config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	return utils.GetSchemaFromConfig(c)
}

// DefaultConfig mirrors the observed production run: 2L capital, 4k risk
// per trade, 80 lookahead days, first-target exits with a 40-day no-target
// rule settled at the low, forced exits at the open.
func DefaultConfig() Config {
	return Config{
		InitialCapital:    200000,
		MaxRiskPerTrade:   4000,
		LookaheadDays:     80,
		ExitPolicy:        ExitPolicyFirstTarget,
		NoTargetDays:      40,
		MaxHoldDays:       42,
		NoTargetExitPrice: PriceSourceLow,
		ForcedExitPrice:   PriceSourceOpen,
		ChargeModel:       charges.ModelIndianEquityDelivery,
	}
}
