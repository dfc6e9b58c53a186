package detector

import (
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/swing-trading/pkg/errors"
	"github.com/rxtech-lab/swing-trading/pkg/utils"
)

// Config controls the swing-trade detector.
//
// The detector runs in one of two variants selected by FastMAPeriod: with it
// unset, a single moving average must rise versus the previous bar; with it
// set, the fast average must sit above the slow one and both must rise
// versus a reference bar TrendLookback sessions back.
type Config struct {
	// MAPeriod is the (slow) moving-average window over closing prices.
	MAPeriod int `yaml:"ma_period" json:"ma_period" jsonschema:"title=MA Period,minimum=1" validate:"required,gt=0"`
	// FastMAPeriod enables the dual moving-average crossover variant.
	FastMAPeriod optional.Option[int] `yaml:"fast_ma_period" json:"fast_ma_period" jsonschema:"title=Fast MA Period"`
	// TrendLookback is how many bars back the rising-trend comparison reaches.
	TrendLookback int `yaml:"trend_lookback" json:"trend_lookback" jsonschema:"minimum=1" validate:"required,gt=0"`
	// SupportTolerance is the relative band around the moving average that
	// counts as a support touch.
	SupportTolerance float64 `yaml:"support_tolerance" json:"support_tolerance" jsonschema:"minimum=0" validate:"gt=0"`
	// TouchWindow is the number of trailing bars scanned for a support touch.
	TouchWindow int `yaml:"touch_window" json:"touch_window" jsonschema:"minimum=1" validate:"required,gt=0"`
	// BreakoutMargin is the fraction above today's high the next bar must
	// trade to confirm the breakout. It is also the entry premium.
	BreakoutMargin float64 `yaml:"breakout_margin" json:"breakout_margin" jsonschema:"minimum=0" validate:"gt=0"`
}

// UnmarshalYAML implements custom unmarshaling for Config.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plainConfig struct {
		MAPeriod         int     `yaml:"ma_period"`
		FastMAPeriod     *int    `yaml:"fast_ma_period"`
		TrendLookback    int     `yaml:"trend_lookback"`
		SupportTolerance float64 `yaml:"support_tolerance"`
		TouchWindow      int     `yaml:"touch_window"`
		BreakoutMargin   float64 `yaml:"breakout_margin"`
	}

	plain := plainConfig{
		MAPeriod:         DefaultConfig().MAPeriod,
		FastMAPeriod:     nil,
		TrendLookback:    DefaultConfig().TrendLookback,
		SupportTolerance: DefaultConfig().SupportTolerance,
		TouchWindow:      DefaultConfig().TouchWindow,
		BreakoutMargin:   DefaultConfig().BreakoutMargin,
	}
	if err := unmarshal(&plain); err != nil {
		return err
	}

	c.MAPeriod = plain.MAPeriod
	c.TrendLookback = plain.TrendLookback
	c.SupportTolerance = plain.SupportTolerance
	c.TouchWindow = plain.TouchWindow
	c.BreakoutMargin = plain.BreakoutMargin

	if plain.FastMAPeriod != nil {
		c.FastMAPeriod = optional.Some(*plain.FastMAPeriod)
	} else {
		c.FastMAPeriod = optional.None[int]()
	}

	return nil
}

// Validate validates the detector configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid detector config", err)
	}

	if c.FastMAPeriod.IsSome() && c.FastMAPeriod.Unwrap() >= c.MAPeriod {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"fast MA period %d must be shorter than slow MA period %d",
			c.FastMAPeriod.Unwrap(), c.MAPeriod)
	}

	return nil
}

// GenerateSchemaJSON generates a JSON schema string for the detector config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	return utils.GetSchemaFromConfig(c)
}

// DefaultConfig returns the single moving-average configuration: a rising
// 44-day average, 0.5% support tolerance over a 7-bar window and a 0.5%
// breakout margin.
func DefaultConfig() Config {
	return Config{
		MAPeriod:         44,
		FastMAPeriod:     optional.None[int](),
		TrendLookback:    1,
		SupportTolerance: 0.005,
		TouchWindow:      7,
		BreakoutMargin:   0.005,
	}
}

// DualMAConfig returns the fast/slow crossover variant: a 20/50 pair that
// must both rise versus a bar six sessions back.
func DualMAConfig() Config {
	return Config{
		MAPeriod:         50,
		FastMAPeriod:     optional.Some(20),
		TrendLookback:    6,
		SupportTolerance: 0.005,
		TouchWindow:      7,
		BreakoutMargin:   0.005,
	}
}
