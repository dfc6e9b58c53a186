package charges

// ChargeModel computes round-trip transaction charges from the buy and sell
// values of a closed trade. The result is in the account currency.
type ChargeModel interface {
	Calculate(buyValue float64, sellValue float64) float64
}

type Model string

const (
	ModelIndianEquityDelivery Model = "indian_equity_delivery"
	ModelZero                 Model = "zero"
)

var AllModels = []any{
	ModelIndianEquityDelivery,
	ModelZero,
}

func GetChargeModel(model Model) ChargeModel {
	switch model {
	case ModelIndianEquityDelivery:
		return NewIndianEquityDeliveryCharges()
	case ModelZero:
		return NewZeroCharges()
	default:
		return NewIndianEquityDeliveryCharges()
	}
}
