package wizard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/enrollment-backend/internal/modules/notify"
	"github.com/yungbote/enrollment-backend/internal/modules/pricing"
	"github.com/yungbote/enrollment-backend/internal/modules/validation"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
	"github.com/yungbote/enrollment-backend/internal/platform/scheduler"
)

var (
	// ErrNotSubmittable is returned by Submit outside step 4 or while a
	// submission is pending or complete.
	ErrNotSubmittable = errors.New("wizard: application cannot be submitted in its current state")
	// ErrLocked rejects form edits and transitions once submission has started.
	ErrLocked       = errors.New("wizard: session is locked until reset")
	ErrLastStep     = errors.New("wizard: already on the last step, submit instead")
	ErrUnknownField = errors.New("wizard: field has no blur validation")
	// ErrUnavailable means the session's timers were stopped, usually because
	// its workspace was evicted.
	ErrUnavailable = errors.New("wizard: session is no longer scheduling work")
)

const (
	DefaultSubmitDelay = 2 * time.Second
	submitKey          = "wizard.submit"
)

const (
	invalidTitle   = "Please check your form"
	invalidMessage = "Some required fields are missing or invalid"
	successTitle   = "Application Submitted"
	successMessage = "Thank you for your application! We will contact you within 2 business days."
)

// Observer hears about transitions. Calls happen outside the session lock.
type Observer interface {
	StepChanged(s Snapshot)
	Submitted(s Snapshot)
}

type Config struct {
	Engine      *pricing.Engine
	Notifier    notify.Notifier
	Tasks       scheduler.Tasks
	Observer    Observer
	SubmitDelay time.Duration
	Log         *logger.Logger
}

// Receipt is what remains of a submitted application after the form clears.
type Receipt struct {
	Reference   string        `json:"reference"`
	CourseIDs   []string      `json:"course_ids"`
	Quote       pricing.Quote `json:"quote"`
	SubmittedAt time.Time     `json:"submitted_at"`
}

// Session is one applicant's pass through the wizard. All mutations hold mu,
// including the submission timer callback.
type Session struct {
	mu sync.Mutex

	id          string
	engine      *pricing.Engine
	notifier    notify.Notifier
	tasks       scheduler.Tasks
	observer    Observer
	submitDelay time.Duration
	log         *logger.Logger

	step      Step
	status    Status
	form      Form
	errors    validation.Errors
	quote     pricing.Quote
	receipt   *Receipt
	createdAt time.Time
	updatedAt time.Time
}

func NewSession(cfg Config) (*Session, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("wizard: pricing engine is required")
	}
	if cfg.Tasks == nil {
		return nil, fmt.Errorf("wizard: scheduler is required")
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Discard
	}
	if cfg.SubmitDelay < 0 {
		cfg.SubmitDelay = 0
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	id := uuid.New().String()
	now := time.Now().UTC()
	s := &Session{
		id:          id,
		engine:      cfg.Engine,
		notifier:    cfg.Notifier,
		tasks:       cfg.Tasks,
		observer:    cfg.Observer,
		submitDelay: cfg.SubmitDelay,
		log:         cfg.Log.With("service", "WizardSession", "session_id", id),
		createdAt:   now,
	}
	s.clearLocked(now)
	return s, nil
}

func (s *Session) ID() string { return s.id }

// clearLocked puts the session back to an empty step 1.
func (s *Session) clearLocked(now time.Time) {
	s.step = StepPersonal
	s.status = StatusActive
	s.form = Form{}
	s.errors = validation.Errors{}
	s.quote = s.emptyQuote()
	s.updatedAt = now
}

func (s *Session) emptyQuote() pricing.Quote {
	q, _ := s.engine.Quote(pricing.NewSelection(), pricing.FundingNone)
	return q
}

func (s *Session) editableLocked() error {
	if s.status != StatusActive {
		return ErrLocked
	}
	return nil
}

func (s *Session) touchLocked() { s.updatedAt = time.Now().UTC() }

// revalidateLocked refreshes annotations that are already shown so a corrected
// field clears without waiting for the next advance.
func (s *Session) revalidateLocked(step Step) {
	current := validateStep(step, s.form)
	for _, f := range stepFields[step] {
		if !s.errors.Has(f) {
			continue
		}
		if msg, bad := current[f]; bad {
			s.errors[f] = msg
		} else {
			delete(s.errors, f)
		}
	}
}

func (s *Session) SetPersonal(info validation.PersonalInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.form.Personal = info
	s.revalidateLocked(StepPersonal)
	s.touchLocked()
	return nil
}

// SetSelection replaces the chosen courses and reprices. On a pricing error the
// previous selection and quote are kept.
func (s *Session) SetSelection(sel pricing.Selection) (pricing.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return pricing.Quote{}, err
	}
	q, err := s.engine.Quote(sel, s.form.Funding)
	if err != nil {
		s.log.Error("reprice on selection change failed", "error", err)
		return s.quote, err
	}
	s.form.Selection = sel
	s.quote = q
	s.revalidateLocked(StepCourses)
	s.touchLocked()
	return q, nil
}

func (s *Session) SetSchedule(sched Schedule) error {
	if !sched.Valid() {
		return fmt.Errorf("wizard: unknown schedule %q", sched)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.form.Schedule = sched
	s.revalidateLocked(StepCourses)
	s.touchLocked()
	return nil
}

func (s *Session) SetFunding(f pricing.Funding) (pricing.Quote, error) {
	if f != pricing.FundingNone && !f.Valid() {
		return pricing.Quote{}, fmt.Errorf("wizard: unknown funding %q", f)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return pricing.Quote{}, err
	}
	q, err := s.engine.Quote(s.form.Selection, f)
	if err != nil {
		s.log.Error("reprice on funding change failed", "error", err)
		return s.quote, err
	}
	s.form.Funding = f
	s.quote = q
	s.revalidateLocked(StepFunding)
	s.touchLocked()
	return q, nil
}

func (s *Session) SetConsent(c Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	s.form.Consent = c
	s.revalidateLocked(StepReview)
	s.touchLocked()
	return nil
}

// ValidateField checks one personal-info field against its stored value and
// records the outcome, as happens when the field loses focus.
func (s *Session) ValidateField(field validation.Field) (validation.Result, error) {
	if !validation.IsPersonalField(field) {
		return validation.Result{}, ErrUnknownField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return validation.Result{}, err
	}
	value, _ := s.form.Personal.Value(field)
	return s.recordFieldLocked(field, value), nil
}

// SetPersonalField stores one personal-info value and validates it in the
// same critical section, so concurrent blurs on different fields both land.
func (s *Session) SetPersonalField(field validation.Field, value string) (validation.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return validation.Result{}, err
	}
	info, ok := s.form.Personal.With(field, value)
	if !ok {
		return validation.Result{}, ErrUnknownField
	}
	s.form.Personal = info
	s.touchLocked()
	return s.recordFieldLocked(field, value), nil
}

func (s *Session) recordFieldLocked(field validation.Field, value string) validation.Result {
	r := validation.ValidateField(field, value)
	if r.OK {
		delete(s.errors, field)
	} else {
		s.errors[field] = r.Message
	}
	return r
}

type Snapshot struct {
	ID        string            `json:"id"`
	Step      Step              `json:"step"`
	StepTitle string            `json:"step_title"`
	Status    Status            `json:"status"`
	Progress  int               `json:"progress"`
	Form      Form              `json:"form"`
	CourseIDs []string          `json:"course_ids"`
	Errors    validation.Errors `json:"errors"`
	Quote     pricing.Quote     `json:"quote"`
	Receipt   *Receipt          `json:"receipt,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:        s.id,
		Step:      s.step,
		StepTitle: s.step.Title(),
		Status:    s.status,
		Progress:  s.progressLocked(),
		Form:      s.form,
		CourseIDs: s.form.Selection.IDs(),
		Errors:    s.errors.Clone(),
		Quote:     s.quote,
		UpdatedAt: s.updatedAt,
	}
	snap.Quote.CourseIDs = append([]string(nil), s.quote.CourseIDs...)
	if s.receipt != nil {
		r := *s.receipt
		r.CourseIDs = append([]string(nil), r.CourseIDs...)
		snap.Receipt = &r
	}
	return snap
}

func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

func (s *Session) progressLocked() int {
	if s.status != StatusActive {
		return 100
	}
	return s.step.Percent()
}

// IdleSince reports when the session last changed.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}
