package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	PaymentPlanInstallments = 3
	PaymentPlanAdminFee     = 100
)

var installmentLabels = [PaymentPlanInstallments]string{
	"Deposit (Today)",
	"2nd Installment (30 days)",
	"Final Installment (60 days)",
}

type Installment struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

type PaymentBreakdown struct {
	Funding       Funding         `json:"funding"`
	PaymentMethod string          `json:"payment_method"`
	Installments  []Installment   `json:"installments,omitempty"`
	AdminFee      decimal.Decimal `json:"admin_fee"`
	TotalWithFee  decimal.Decimal `json:"total_with_fee"`
}

func (b PaymentBreakdown) IsPlan() bool { return len(b.Installments) > 0 }

// Breakdown splits a payment-plan total into equal installments plus the admin
// fee; every other funding option pays the final total through a single method.
func Breakdown(q Quote, f Funding) PaymentBreakdown {
	f = f.OrDefault()
	if f != FundingPaymentPlan {
		return PaymentBreakdown{
			Funding:       f,
			PaymentMethod: f.PaymentMethod(),
			AdminFee:      decimal.Zero,
			TotalWithFee:  q.FinalTotal,
		}
	}
	each := q.FinalTotal.Div(decimal.NewFromInt(PaymentPlanInstallments)).Round(2)
	installments := make([]Installment, 0, PaymentPlanInstallments)
	for _, label := range installmentLabels {
		installments = append(installments, Installment{Label: label, Amount: each})
	}
	fee := decimal.NewFromInt(PaymentPlanAdminFee)
	return PaymentBreakdown{
		Funding:       f,
		PaymentMethod: "Payment Plan (3 months)",
		Installments:  installments,
		AdminFee:      fee,
		TotalWithFee:  q.FinalTotal.Add(fee),
	}
}

// FormatRand renders an amount as R1,234.50.
func FormatRand(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac := fixed, ""
	if dot := strings.IndexByte(fixed, '.'); dot >= 0 {
		whole, frac = fixed[:dot], fixed[dot:]
	}
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "R" + b.String() + frac
}

// FormatDiscount renders a deduction as -R150.00.
func FormatDiscount(amount decimal.Decimal) string {
	return "-" + FormatRand(amount.Abs())
}
