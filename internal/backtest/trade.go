package backtest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/swing-trading/internal/backtest/charges"
	"github.com/rxtech-lab/swing-trading/internal/types"
	"github.com/rxtech-lab/swing-trading/pkg/utils"
)

// settleTrade converts a closed position into its ledger record and returns
// the net sale proceeds (sell value minus charges) credited back to the
// capital account. Charges and pnl are rounded to two decimal places only
// on the persisted record.
func settleTrade(position types.Position, exitPrice float64, exitDate time.Time, reason types.ExitReason, model charges.ChargeModel) (types.TradeRecord, float64) {
	quantity := decimal.NewFromInt(int64(position.Quantity))
	buyValue := decimal.NewFromFloat(position.EntryPrice).Mul(quantity)
	sellValue := decimal.NewFromFloat(exitPrice).Mul(quantity)

	buyValueF, _ := buyValue.Float64()
	sellValueF, _ := sellValue.Float64()
	chargesValue := model.Calculate(buyValueF, sellValueF)

	pnl, _ := sellValue.Sub(buyValue).Sub(decimal.NewFromFloat(chargesValue)).Float64()
	netProceeds, _ := sellValue.Sub(decimal.NewFromFloat(chargesValue)).Float64()

	record := types.TradeRecord{
		ID:          uuid.New().String(),
		Symbol:      position.Symbol,
		EntryDate:   position.EntryDate,
		ExitDate:    exitDate,
		EntryPrice:  position.EntryPrice,
		ExitPrice:   exitPrice,
		Quantity:    position.Quantity,
		ExitReason:  reason,
		Charges:     utils.RoundTo2(chargesValue),
		PnL:         utils.RoundTo2(pnl),
		HoldingDays: position.DaysHeld(exitDate),
	}

	return record, netProceeds
}
