package charges

// ZeroCharges implements ChargeModel with no transaction costs.
type ZeroCharges struct{}

// NewZeroCharges creates a new zero charge model.
func NewZeroCharges() ChargeModel {
	return &ZeroCharges{}
}

// Calculate returns 0 for any trade.
func (c *ZeroCharges) Calculate(buyValue float64, sellValue float64) float64 {
	return 0.0
}
