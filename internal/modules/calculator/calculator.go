package calculator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/yungbote/enrollment-backend/internal/modules/notify"
	"github.com/yungbote/enrollment-backend/internal/modules/preferences"
	"github.com/yungbote/enrollment-backend/internal/modules/pricing"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

var ErrNoQuote = errors.New("calculator: no quote to save")

const zeroAmount = "R0.00"

// Names resolves course ids for saved quote labels.
type Names interface {
	NameOf(id string) (string, error)
}

// QuoteSaver persists saved quotes.
type QuoteSaver interface {
	AppendQuote(ctx context.Context, q preferences.SavedQuote) ([]preferences.SavedQuote, error)
}

type View struct {
	CourseIDs       []string                  `json:"course_ids"`
	Funding         pricing.Funding           `json:"funding"`
	HasQuote        bool                      `json:"has_quote"`
	CourseFee       string                    `json:"course_fee"`
	VolumeDiscount  string                    `json:"volume_discount"`
	PaymentDiscount string                    `json:"payment_discount"`
	Total           string                    `json:"total"`
	Quote           *pricing.Quote            `json:"quote,omitempty"`
	Breakdown       *pricing.PaymentBreakdown `json:"breakdown,omitempty"`
}

// Calculator is the standalone pricing widget: a selection, a funding choice
// and the quote last rendered for them.
type Calculator struct {
	mu       sync.Mutex
	engine   *pricing.Engine
	names    Names
	saver    QuoteSaver
	notifier notify.Notifier
	log      *logger.Logger

	sel     pricing.Selection
	funding pricing.Funding
	quote   *pricing.Quote
}

func New(engine *pricing.Engine, names Names, saver QuoteSaver, n notify.Notifier, baseLog *logger.Logger) *Calculator {
	if n == nil {
		n = notify.Discard
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Calculator{
		engine:   engine,
		names:    names,
		saver:    saver,
		notifier: n,
		log:      baseLog.With("service", "PricingCalculator"),
		funding:  pricing.DefaultFunding,
	}
}

// Update reprices on a change event. An empty selection resets the display
// without a notification.
func (c *Calculator) Update(sel pricing.Selection, f pricing.Funding) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(sel, f)
}

// Calculate is Update triggered by the button; an empty selection warns.
func (c *Calculator) Calculate(sel pricing.Selection, f pricing.Funding) (View, error) {
	c.mu.Lock()
	v, err := c.applyLocked(sel, f)
	c.mu.Unlock()
	if err == nil && sel.Empty() {
		c.notifier.Notify("Please select a course", "Choose a course to calculate pricing", notify.SeverityWarning)
	}
	return v, err
}

func (c *Calculator) applyLocked(sel pricing.Selection, f pricing.Funding) (View, error) {
	f = f.OrDefault()
	if sel.Empty() {
		c.sel, c.funding, c.quote = pricing.NewSelection(), f, nil
		return c.viewLocked(), nil
	}
	q, err := c.engine.Quote(sel, f)
	if err != nil {
		c.log.Error("calculator reprice failed", "error", err)
		return c.viewLocked(), err
	}
	c.sel, c.funding, c.quote = sel, f, &q
	return c.viewLocked(), nil
}

// Reset clears the selection and puts funding back to full payment.
func (c *Calculator) Reset() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel, c.funding, c.quote = pricing.NewSelection(), pricing.DefaultFunding, nil
	return c.viewLocked()
}

func (c *Calculator) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Calculator) viewLocked() View {
	v := View{
		CourseIDs:       c.sel.IDs(),
		Funding:         c.funding,
		CourseFee:       zeroAmount,
		VolumeDiscount:  zeroAmount,
		PaymentDiscount: zeroAmount,
		Total:           zeroAmount,
	}
	if c.quote == nil {
		return v
	}
	q := *c.quote
	q.CourseIDs = append([]string(nil), c.quote.CourseIDs...)
	b := pricing.Breakdown(q, c.funding)
	v.HasQuote = true
	v.CourseFee = pricing.FormatRand(q.Subtotal)
	v.VolumeDiscount = discountLine(q.VolumeDiscountAmount, q.VolumeDiscountPercent)
	v.PaymentDiscount = discountLine(q.PaymentDiscountAmount, q.PaymentDiscountPercent)
	v.Total = pricing.FormatRand(q.FinalTotal)
	v.Quote = &q
	v.Breakdown = &b
	return v
}

// discountLine renders "-R150.00 (5%)".
func discountLine(amount decimal.Decimal, pct int) string {
	return fmt.Sprintf("%s (%d%%)", pricing.FormatDiscount(amount), pct)
}

// SaveQuote appends the current quote to the client's saved list.
func (c *Calculator) SaveQuote(ctx context.Context) (preferences.SavedQuote, error) {
	c.mu.Lock()
	if c.quote == nil {
		c.mu.Unlock()
		c.notifier.Notify("Please calculate a quote first", "Select a course and calculate pricing before saving", notify.SeverityWarning)
		return preferences.SavedQuote{}, ErrNoQuote
	}
	ids := c.sel.IDs()
	total := pricing.FormatRand(c.quote.FinalTotal)
	c.mu.Unlock()

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name, err := c.names.NameOf(id)
		if err != nil {
			return preferences.SavedQuote{}, fmt.Errorf("saved quote course %s: %w", id, err)
		}
		names = append(names, name)
	}
	entry := preferences.SavedQuote{
		Course:    strings.Join(names, ", "),
		CourseIDs: ids,
		Total:     total,
	}
	if c.saver == nil {
		return preferences.SavedQuote{}, fmt.Errorf("calculator: quote storage unavailable")
	}
	list, err := c.saver.AppendQuote(ctx, entry)
	if err != nil {
		return preferences.SavedQuote{}, err
	}
	saved := list[len(list)-1]
	c.log.Info("quote saved", "courses", len(ids), "total", total)
	c.notifier.Notify("Quote Saved", "Your pricing quote has been saved for future reference", notify.SeveritySuccess)
	return saved, nil
}
