package pricing

import (
	"fmt"
	"strings"
)

type Funding string

const (
	FundingNone        Funding = ""
	FundingFullPayment Funding = "full-payment"
	FundingPaymentPlan Funding = "payment-plan"
	FundingEmployer    Funding = "employer"
	FundingBursary     Funding = "bursary"
)

// DefaultFunding applies wherever no explicit choice has been made yet.
const DefaultFunding = FundingFullPayment

var fundingTitles = map[Funding]string{
	FundingFullPayment: "Full Payment",
	FundingPaymentPlan: "Payment Plan",
	FundingEmployer:    "Employer Sponsored",
	FundingBursary:     "Bursary",
}

var paymentMethods = map[Funding]string{
	FundingFullPayment: "Once-off Payment",
	FundingEmployer:    "Employer Invoice",
	FundingBursary:     "Bursary Application",
}

func Fundings() []Funding {
	return []Funding{FundingFullPayment, FundingPaymentPlan, FundingEmployer, FundingBursary}
}

func ParseFunding(raw string) (Funding, error) {
	f := Funding(strings.TrimSpace(strings.ToLower(raw)))
	if !f.Valid() {
		return FundingNone, fmt.Errorf("unknown funding option %q", raw)
	}
	return f, nil
}

func (f Funding) Valid() bool {
	_, ok := fundingTitles[f]
	return ok
}

func (f Funding) Title() string {
	if t, ok := fundingTitles[f]; ok {
		return t
	}
	return "-"
}

// OrDefault maps the unchosen value to DefaultFunding.
func (f Funding) OrDefault() Funding {
	if f == FundingNone {
		return DefaultFunding
	}
	return f
}

func (f Funding) PaymentMethod() string {
	if m, ok := paymentMethods[f]; ok {
		return m
	}
	return "Standard Payment"
}
