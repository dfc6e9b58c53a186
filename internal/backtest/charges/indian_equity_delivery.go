package charges

import "github.com/shopspring/decimal"

// Charge rates for NSE equity delivery trades.
const (
	// stampRate applies to the buy value only.
	stampRate = 0.00015
	// sttRate applies to both legs.
	sttRate = 0.001
	// depositoryFee is a flat fee per round trip.
	depositoryFee = 14.75
)

// IndianEquityDeliveryCharges implements the fixed cost formula
// stamp*buy + stt*(buy+sell) + depository fee.
type IndianEquityDeliveryCharges struct{}

func NewIndianEquityDeliveryCharges() ChargeModel {
	return &IndianEquityDeliveryCharges{}
}

// Calculate returns the round-trip charges. Computed with decimal
// arithmetic; rounding is left to the persistence boundary.
func (c *IndianEquityDeliveryCharges) Calculate(buyValue float64, sellValue float64) float64 {
	buy := decimal.NewFromFloat(buyValue)
	sell := decimal.NewFromFloat(sellValue)

	stamp := buy.Mul(decimal.NewFromFloat(stampRate))
	stt := buy.Add(sell).Mul(decimal.NewFromFloat(sttRate))

	total, _ := stamp.Add(stt).Add(decimal.NewFromFloat(depositoryFee)).Float64()

	return total
}
