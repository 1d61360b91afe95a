package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceBook is the catalog surface the engine needs.
type PriceBook interface {
	PriceOf(id string) (int64, error)
}

type Quote struct {
	CourseIDs              []string        `json:"course_ids"`
	Funding                Funding         `json:"funding"`
	Subtotal               decimal.Decimal `json:"subtotal"`
	VolumeDiscountPercent  int             `json:"volume_discount_percent"`
	VolumeDiscountAmount   decimal.Decimal `json:"volume_discount_amount"`
	PaymentDiscountPercent int             `json:"payment_discount_percent"`
	PaymentDiscountAmount  decimal.Decimal `json:"payment_discount_amount"`
	FinalTotal             decimal.Decimal `json:"final_total"`
}

// Empty reports a quote for no courses; callers reset rather than display it.
func (q Quote) Empty() bool { return len(q.CourseIDs) == 0 }

func (q Quote) CourseCount() int { return len(q.CourseIDs) }

func (q Quote) TotalDiscount() decimal.Decimal {
	return q.VolumeDiscountAmount.Add(q.PaymentDiscountAmount)
}

// Engine prices selections against a price book and tier table.
type Engine struct {
	book  PriceBook
	tiers Tiers
}

func NewEngine(book PriceBook, tiers Tiers) *Engine {
	if len(tiers) == 0 {
		tiers = DefaultTiers
	}
	return &Engine{book: book, tiers: tiers}
}

// ComputeQuote prices sel with the default tier table.
func ComputeQuote(book PriceBook, sel Selection, f Funding) (Quote, error) {
	return NewEngine(book, DefaultTiers).Quote(sel, f)
}

// Quote applies the volume and payment discounts side by side to the same
// subtotal; neither is taken off the other's discounted total.
func (e *Engine) Quote(sel Selection, f Funding) (Quote, error) {
	f = f.OrDefault()
	q := Quote{
		CourseIDs:             sel.IDs(),
		Funding:               f,
		Subtotal:              decimal.Zero,
		VolumeDiscountAmount:  decimal.Zero,
		PaymentDiscountAmount: decimal.Zero,
		FinalTotal:            decimal.Zero,
	}
	if sel.Empty() {
		return q, nil
	}

	subtotal := int64(0)
	for _, id := range q.CourseIDs {
		price, err := e.book.PriceOf(id)
		if err != nil {
			return Quote{}, fmt.Errorf("price %s: %w", id, err)
		}
		subtotal += price
	}

	q.Subtotal = decimal.NewFromInt(subtotal)
	q.VolumeDiscountPercent = e.tiers.Percent(sel.Len())
	q.VolumeDiscountAmount = percentOf(q.Subtotal, q.VolumeDiscountPercent)
	q.PaymentDiscountPercent = PaymentDiscountPercent(f)
	q.PaymentDiscountAmount = percentOf(q.Subtotal, q.PaymentDiscountPercent)
	q.FinalTotal = q.Subtotal.Sub(q.VolumeDiscountAmount).Sub(q.PaymentDiscountAmount)
	return q, nil
}
