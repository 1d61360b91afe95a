package review

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yungbote/enrollment-backend/internal/modules/catalog"
	"github.com/yungbote/enrollment-backend/internal/modules/pricing"
	"github.com/yungbote/enrollment-backend/internal/modules/wizard"
)

const missing = "-"

// Catalog is what the projector needs to turn ids into display names.
type Catalog interface {
	NameOf(id string) (string, error)
	Schedule(id string) (catalog.Schedule, bool)
}

// Summary is the read-only review panel shown on the last wizard step.
type Summary struct {
	FullName string `json:"full_name"`
	IDNumber string `json:"id_number"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`

	Courses     string `json:"courses"`
	CourseCount int    `json:"course_count"`
	Schedule    string `json:"schedule"`
	Funding     string `json:"funding"`

	Subtotal               string `json:"subtotal"`
	VolumeDiscountPercent  string `json:"volume_discount_percent"`
	VolumeDiscountAmount   string `json:"volume_discount_amount"`
	PaymentDiscountPercent string `json:"payment_discount_percent"`
	PaymentDiscountAmount  string `json:"payment_discount_amount"`
	TotalDiscount          string `json:"total_discount"`
	FinalTotal             string `json:"final_total"`

	Breakdown pricing.PaymentBreakdown `json:"breakdown"`
}

// Project renders a snapshot for display. It reads nothing but its inputs and
// is recomputed on every call.
func Project(snap wizard.Snapshot, cat Catalog) (Summary, error) {
	p := snap.Form.Personal
	names := make([]string, 0, len(snap.CourseIDs))
	for _, id := range snap.CourseIDs {
		name, err := cat.NameOf(id)
		if err != nil {
			return Summary{}, fmt.Errorf("review course %s: %w", id, err)
		}
		names = append(names, name)
	}

	q := snap.Quote
	s := Summary{
		FullName:               orMissing(p.FirstName) + " " + orMissing(p.LastName),
		IDNumber:               orMissing(p.IDNumber),
		Phone:                  orMissing(p.Phone),
		Email:                  orMissing(p.Email),
		Courses:                orMissing(strings.Join(names, ", ")),
		CourseCount:            len(names),
		Schedule:               scheduleTitle(cat, snap.Form.Schedule),
		Funding:                snap.Form.Funding.Title(),
		Subtotal:               pricing.FormatRand(q.Subtotal),
		VolumeDiscountPercent:  Percent(q.VolumeDiscountPercent),
		VolumeDiscountAmount:   pricing.FormatDiscount(q.VolumeDiscountAmount),
		PaymentDiscountPercent: Percent(q.PaymentDiscountPercent),
		PaymentDiscountAmount:  pricing.FormatDiscount(q.PaymentDiscountAmount),
		TotalDiscount:          pricing.FormatDiscount(q.TotalDiscount()),
		FinalTotal:             pricing.FormatRand(q.FinalTotal),
		Breakdown:              pricing.Breakdown(q, snap.Form.Funding),
	}
	return s, nil
}

// Percent renders 5 as "5%".
func Percent(pct int) string { return strconv.Itoa(pct) + "%" }

func orMissing(v string) string {
	if strings.TrimSpace(v) == "" {
		return missing
	}
	return v
}

func scheduleTitle(cat Catalog, s wizard.Schedule) string {
	if s == wizard.ScheduleNone {
		return missing
	}
	if sched, ok := cat.Schedule(string(s)); ok && sched.Title != "" {
		return sched.Title
	}
	return string(s)
}
