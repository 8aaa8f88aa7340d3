package billing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func itemsOf(amounts ...string) []*Item {
	items := make([]*Item, 0, len(amounts))
	for _, a := range amounts {
		items = append(items, &Item{Quantity: 1, Rate: d(a), Amount: d(a)})
	}
	return items
}

func TestSubtotal(t *testing.T) {
	if got := Subtotal(itemsOf("3000", "1500", "1800", "1000")); !got.Equal(d("7300")) {
		t.Errorf("expected 7300, got %s", got)
	}
	if got := Subtotal(nil); !got.IsZero() {
		t.Errorf("expected 0 for no items, got %s", got)
	}
}

func TestDiscountAndTotal(t *testing.T) {
	discount := DiscountAmount(d("10000"), d("10"))
	if !discount.Equal(d("1000")) {
		t.Errorf("expected discount 1000, got %s", discount)
	}
	if total := TotalAfterDiscount(d("10000"), discount); !total.Equal(d("9000")) {
		t.Errorf("expected total 9000, got %s", total)
	}
}

func TestDiscountAmount_Unrounded(t *testing.T) {
	got := DiscountAmount(d("333.33"), d("7.5"))
	if !got.Equal(d("24.99975")) {
		t.Errorf("expected unrounded 24.99975, got %s", got)
	}
	if !Round(got).Equal(d("25")) {
		t.Errorf("expected display value 25.00, got %s", Round(got))
	}
}

func TestDiscountAmount_Bounds(t *testing.T) {
	for _, p := range []string{"0", "12.5", "50", "100"} {
		subtotal := d("26600")
		total := TotalAfterDiscount(subtotal, DiscountAmount(subtotal, d(p)))
		if total.IsNegative() {
			t.Errorf("discount %s%%: total went negative (%s)", p, total)
		}
	}
}

func TestBalanceDue(t *testing.T) {
	if got := BalanceDue(d("10000"), d("1000"), d("2500")); !got.Equal(d("6500")) {
		t.Errorf("expected 6500, got %s", got)
	}
	if got := BalanceDue(d("100"), d("0"), d("150")); !got.Equal(d("-50")) {
		t.Errorf("expected negative balance to be reported, got %s", got)
	}
}

func TestPayable_WholePaise(t *testing.T) {
	if got := Payable(d("7300"), d("901.185")); !got.Equal(d("6398.82")) {
		t.Errorf("expected 6398.82, got %s", got)
	}
	if got := BalanceDue(d("7300"), d("901.185"), d("6398.81")); !got.Equal(d("0.01")) {
		t.Errorf("expected one paisa due, got %s", got)
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name                  string
		total, discount, paid string
		want                  Status
	}{
		{"fresh bill", "7300", "0", "0", StatusPending},
		{"partially paid", "7300", "0", "1000", StatusPartial},
		{"fully paid", "9000", "0", "9000", StatusPaid},
		{"paid after discount", "10000", "1000", "9000", StatusPaid},
		{"short by discount", "10000", "1000", "8999.99", StatusPartial},
		{"overpaid", "100", "0", "120", StatusPaid},
		{"half paisa rounds up", "7300", "901.185", "6398.82", StatusPaid},
		{"one paisa short", "7300", "901.185", "6398.81", StatusPartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(d(tt.total), d(tt.discount), d(tt.paid)); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSummarize_RecomputesFromItems(t *testing.T) {
	b := &Bill{
		TotalAmount:     d("1"),
		DiscountPercent: d("10"),
		PaidAmount:      d("2000"),
	}
	s := Summarize(b, itemsOf("6000", "4000"))
	if !s.Subtotal.Equal(d("10000")) || !s.Discount.Equal(d("1000")) || !s.Total.Equal(d("9000")) {
		t.Errorf("unexpected summary %+v", s)
	}
	if !s.Balance.Equal(d("7000")) {
		t.Errorf("expected balance 7000, got %s", s.Balance)
	}
	if s.Status != StatusPartial {
		t.Errorf("expected partial, got %s", s.Status)
	}
}

func TestRound(t *testing.T) {
	tests := map[string]string{
		"1.005":  "1.01",
		"-1.005": "-1.01",
		"2.344":  "2.34",
		"7300":   "7300",
	}
	for in, want := range tests {
		if got := Round(d(in)); !got.Equal(d(want)) {
			t.Errorf("Round(%s) = %s, want %s", in, got, want)
		}
	}
}
