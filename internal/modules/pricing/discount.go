package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yungbote/enrollment-backend/internal/modules/catalog"
)

const FullPaymentDiscountPercent = 5

// DefaultTiers is the volume tier table: 1 course 0%, 2 courses 5%, 3 courses 10%, 4+ 15%.
var DefaultTiers = Tiers{
	{MinCourses: 1, Percent: 0},
	{MinCourses: 2, Percent: 5},
	{MinCourses: 3, Percent: 10},
	{MinCourses: 4, Percent: 15},
}

type Tiers []catalog.Tier

// NewTiers sorts a copy of the table by MinCourses; an empty table falls back to DefaultTiers.
func NewTiers(in []catalog.Tier) Tiers {
	if len(in) == 0 {
		return DefaultTiers
	}
	out := append(Tiers(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinCourses < out[j].MinCourses })
	return out
}

// Percent returns the percent of the highest tier whose threshold count reaches.
func (t Tiers) Percent(count int) int {
	pct := 0
	for _, tier := range t {
		if count >= tier.MinCourses {
			pct = tier.Percent
		}
	}
	return pct
}

func VolumeDiscountPercent(count int) int {
	return DefaultTiers.Percent(count)
}

func PaymentDiscountPercent(f Funding) int {
	if f == FundingFullPayment {
		return FullPaymentDiscountPercent
	}
	return 0
}

// percentOf returns amount*pct/100 rounded to cents.
func percentOf(amount decimal.Decimal, pct int) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)).Round(2)
}
