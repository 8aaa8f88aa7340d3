package billing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Subtotal sums the item amounts.
func Subtotal(items []*Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Amount)
	}
	return sum
}

// DiscountAmount is subtotal × percent / 100, unrounded.
func DiscountAmount(subtotal, percent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percent).Div(hundred)
}

func TotalAfterDiscount(subtotal, discount decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(discount)
}

// Payable is the amount collected for a bill: total less discount, rounded
// to whole paise.
func Payable(total, discount decimal.Decimal) decimal.Decimal {
	return Round(TotalAfterDiscount(total, discount))
}

// BalanceDue may be negative; overpayment is refused by RecordPayment, not
// masked here.
func BalanceDue(total, discount, paid decimal.Decimal) decimal.Decimal {
	return Payable(total, discount).Sub(paid)
}

// DeriveStatus is the only source of a bill's status.
func DeriveStatus(total, discount, paid decimal.Decimal) Status {
	payable := Payable(total, discount)
	switch {
	case paid.GreaterThanOrEqual(payable):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusPending
	}
}

// Round rounds half away from zero to paise.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// wholePaise reports whether v has no fraction below one paisa.
func wholePaise(v decimal.Decimal) bool {
	return v.Equal(v.Round(2))
}

// Summary holds the derived figures shown under a bill.
type Summary struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	Paid            decimal.Decimal `json:"paid"`
	Balance         decimal.Decimal `json:"balance"`
	Status          Status          `json:"status"`
}

// Summarize recomputes every figure from the items and the stored discount
// percent rather than trusting stored totals.
func Summarize(b *Bill, items []*Item) Summary {
	subtotal := Subtotal(items)
	discount := DiscountAmount(subtotal, b.DiscountPercent)
	return Summary{
		Subtotal:        subtotal,
		DiscountPercent: b.DiscountPercent,
		Discount:        discount,
		Total:           TotalAfterDiscount(subtotal, discount),
		Paid:            b.PaidAmount,
		Balance:         BalanceDue(subtotal, discount, b.PaidAmount),
		Status:          DeriveStatus(subtotal, discount, b.PaidAmount),
	}
}

// recompute refreshes the stored totals and status after items or payments
// change.
func recompute(b *Bill, items []*Item) {
	b.TotalAmount = Subtotal(items)
	b.Discount = DiscountAmount(b.TotalAmount, b.DiscountPercent)
	b.Status = DeriveStatus(b.TotalAmount, b.Discount, b.PaidAmount)
}
