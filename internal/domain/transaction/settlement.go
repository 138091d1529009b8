package transaction

import "github.com/shopspring/decimal"

// Fee is the flat transaction fee, denominated in Rupees. For flows settling
// in Naira the fee is converted into Naira at the transaction's rate before
// being deducted.
var Fee = decimal.NewFromInt(50)

// SettlementAmount computes the destination-currency amount credited to the
// receiver after the fee is deducted:
//
//	naira-to-rupees: amountSent * rate - Fee
//	rupees-to-naira: amountSent * rate - Fee/rate
//
// The result is computed exactly once at creation time and never recomputed,
// even if the rate table changes afterwards. Returns ErrNegativeSettlement
// when the fee would consume the whole converted amount.
func SettlementAmount(amountSent, rate decimal.Decimal, direction Direction) (decimal.Decimal, error) {
	if !direction.Valid() {
		return decimal.Zero, ErrInvalidDirection
	}
	if rate.Sign() <= 0 {
		return decimal.Zero, ErrInvalidDirection
	}

	converted := amountSent.Mul(rate)

	fee := Fee
	if direction == DirectionRupeesToNaira {
		fee = Fee.Div(rate)
	}

	settled := converted.Sub(fee)
	if settled.Sign() <= 0 {
		return decimal.Zero, ErrNegativeSettlement
	}

	return settled, nil
}
