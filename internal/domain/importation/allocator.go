package importation

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places kept on monetary amounts
const MoneyScale int32 = 4

// ShareScale is the number of decimal places kept on allocation shares
const ShareScale int32 = 8

var hundred = decimal.NewFromInt(100)

// AllocationInput carries the shipment-level figures needed for costing.
// Rates are percentages; OtherTaxes is already in local currency.
type AllocationInput struct {
	SubtotalForeign decimal.Decimal
	FreightForeign  decimal.Decimal
	ExchangeRate    decimal.Decimal
	ImportTaxRate   decimal.Decimal
	IcmsRate        decimal.Decimal
	OtherTaxes      decimal.Decimal
}

// AllocationLine is the per-item input of the allocator
type AllocationLine struct {
	Quantity         int64
	UnitPriceForeign decimal.Decimal
}

// LineAllocation is the cost assigned to one line
type LineAllocation struct {
	ItemTotalForeign decimal.Decimal
	Share            decimal.Decimal
	FreightLocal     decimal.Decimal
	ImportTax        decimal.Decimal
	Icms             decimal.Decimal
	OtherTaxes       decimal.Decimal
	TotalCostLocal   decimal.Decimal
	UnitCostLocal    decimal.Decimal
	UnitCostForeign  decimal.Decimal
}

// AllocationResult holds the shipment totals and one allocation per input line
type AllocationResult struct {
	TotalForeign        decimal.Decimal
	SubtotalLocal       decimal.Decimal
	FreightLocal        decimal.Decimal
	TotalBeforeTaxLocal decimal.Decimal
	ImportTaxLocal      decimal.Decimal
	IcmsLocal           decimal.Decimal
	OtherTaxesLocal     decimal.Decimal
	TotalLocalCost      decimal.Decimal
	Lines               []LineAllocation
}

// SubtotalOf sums quantity times unit price over the lines
func SubtotalOf(lines []AllocationLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(lineTotal(l))
	}
	return sum
}

func lineTotal(l AllocationLine) decimal.Decimal {
	return l.UnitPriceForeign.Mul(decimal.NewFromInt(l.Quantity))
}

// Allocate converts the shipment to local currency, applies taxes on the
// converted total including freight, and spreads the landed cost over the
// lines in proportion to each line's share of the foreign subtotal.
//
// Amounts are rounded to MoneyScale. The last line with a non-zero share takes
// the rounding remainder so the line totals add up to TotalLocalCost exactly.
// A zero subtotal never fails: every line gets a zero share and is costed at
// its converted price alone.
func Allocate(in AllocationInput, lines []AllocationLine) AllocationResult {
	rate := in.ExchangeRate
	totalForeign := in.SubtotalForeign.Add(in.FreightForeign)
	beforeTax := totalForeign.Mul(rate)
	importTax := beforeTax.Mul(in.ImportTaxRate).Div(hundred)
	icms := beforeTax.Mul(in.IcmsRate).Div(hundred)
	total := beforeTax.Add(importTax).Add(icms).Add(in.OtherTaxes)

	freightLocal := in.FreightForeign.Mul(rate)

	res := AllocationResult{
		TotalForeign:        totalForeign.Round(MoneyScale),
		SubtotalLocal:       in.SubtotalForeign.Mul(rate).Round(MoneyScale),
		FreightLocal:        freightLocal.Round(MoneyScale),
		TotalBeforeTaxLocal: beforeTax.Round(MoneyScale),
		ImportTaxLocal:      importTax.Round(MoneyScale),
		IcmsLocal:           icms.Round(MoneyScale),
		OtherTaxesLocal:     in.OtherTaxes.Round(MoneyScale),
		TotalLocalCost:      total.Round(MoneyScale),
		Lines:               make([]LineAllocation, len(lines)),
	}

	subtotal := in.SubtotalForeign
	last := -1
	allocated := decimal.Zero

	for i, l := range lines {
		itemTotal := lineTotal(l)
		a := LineAllocation{
			ItemTotalForeign: itemTotal.Round(MoneyScale),
			Share:            decimal.Zero,
			FreightLocal:     decimal.Zero,
			ImportTax:        decimal.Zero,
			Icms:             decimal.Zero,
			OtherTaxes:       decimal.Zero,
		}

		if subtotal.IsZero() {
			a.TotalCostLocal = itemTotal.Mul(rate).Round(MoneyScale)
		} else {
			a.Share = itemTotal.DivRound(subtotal, ShareScale)
			a.FreightLocal = proportion(freightLocal, itemTotal, subtotal)
			a.ImportTax = proportion(importTax, itemTotal, subtotal)
			a.Icms = proportion(icms, itemTotal, subtotal)
			a.OtherTaxes = proportion(in.OtherTaxes, itemTotal, subtotal)
			a.TotalCostLocal = proportion(total, itemTotal, subtotal)
			allocated = allocated.Add(a.TotalCostLocal)
			if !itemTotal.IsZero() {
				last = i
			}
		}
		res.Lines[i] = a
	}

	if last >= 0 && SubtotalOf(lines).Equal(subtotal) {
		residual := res.TotalLocalCost.Sub(allocated)
		res.Lines[last].TotalCostLocal = res.Lines[last].TotalCostLocal.Add(residual)
	}

	for i, l := range lines {
		a := &res.Lines[i]
		if l.Quantity <= 0 {
			a.UnitCostLocal = decimal.Zero
			a.UnitCostForeign = decimal.Zero
			continue
		}
		qty := decimal.NewFromInt(l.Quantity)
		a.UnitCostLocal = a.TotalCostLocal.DivRound(qty, MoneyScale)
		if rate.IsZero() {
			a.UnitCostForeign = decimal.Zero
		} else {
			a.UnitCostForeign = a.TotalCostLocal.Div(rate).DivRound(qty, MoneyScale)
		}
	}

	return res
}

// proportion returns amount * part / whole rounded to MoneyScale
func proportion(amount, part, whole decimal.Decimal) decimal.Decimal {
	return amount.Mul(part).Div(whole).Round(MoneyScale)
}
