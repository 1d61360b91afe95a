package wizard

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/enrollment-backend/internal/modules/catalog"
	"github.com/yungbote/enrollment-backend/internal/modules/notify"
	"github.com/yungbote/enrollment-backend/internal/modules/pricing"
	"github.com/yungbote/enrollment-backend/internal/modules/validation"
	"github.com/yungbote/enrollment-backend/internal/platform/scheduler"
)

type shown struct {
	title    string
	severity notify.Severity
}

type notes struct {
	mu  sync.Mutex
	all []shown
}

func (n *notes) Notify(title, _ string, severity notify.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.all = append(n.all, shown{title: title, severity: severity})
}

func (n *notes) list() []shown {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]shown(nil), n.all...)
}

type stepRecorder struct {
	mu        sync.Mutex
	steps     []Step
	submitted int
}

func (r *stepRecorder) StepChanged(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, s.Step)
}

func (r *stepRecorder) Submitted(Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted++
}

func newSession(t *testing.T, delay time.Duration) (*Session, *notes, *stepRecorder) {
	t.Helper()
	sched := scheduler.New()
	t.Cleanup(sched.Stop)
	n := &notes{}
	obs := &stepRecorder{}
	book := catalog.MustDefault()
	s, err := NewSession(Config{
		Engine:      pricing.NewEngine(book, pricing.NewTiers(book.VolumeTiers())),
		Notifier:    n,
		Tasks:       sched,
		Observer:    obs,
		SubmitDelay: delay,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s, n, obs
}

func validPersonal() validation.PersonalInfo {
	return validation.PersonalInfo{
		FirstName: "Thandi",
		LastName:  "Mokoena",
		IDNumber:  "9202204720082",
		Phone:     "082 123 4567",
		Email:     "thandi@example.co.za",
	}
}

// fillToReview walks a session through steps 1-3 with valid answers.
func fillToReview(t *testing.T, s *Session) {
	t.Helper()
	if err := s.SetPersonal(validPersonal()); err != nil {
		t.Fatalf("SetPersonal: %v", err)
	}
	mustAdvance(t, s, StepCourses)
	if _, err := s.SetSelection(pricing.NewSelection("first-aid", "sewing")); err != nil {
		t.Fatalf("SetSelection: %v", err)
	}
	if err := s.SetSchedule(ScheduleWeekend); err != nil {
		t.Fatalf("SetSchedule: %v", err)
	}
	mustAdvance(t, s, StepFunding)
	if _, err := s.SetFunding(pricing.FundingFullPayment); err != nil {
		t.Fatalf("SetFunding: %v", err)
	}
	mustAdvance(t, s, StepReview)
}

func mustAdvance(t *testing.T, s *Session, want Step) {
	t.Helper()
	out, err := s.Advance()
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !out.OK || out.Step != want {
		t.Fatalf("Advance: got=%+v want step %d", out, want)
	}
}

func waitStatus(t *testing.T, s *Session, want Status) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if snap := s.Snapshot(); snap.Status == want {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session never reached status %s", want)
	return Snapshot{}
}

func TestAdvanceBlocksOnInvalidPersonalInfo(t *testing.T) {
	t.Parallel()
	s, n, obs := newSession(t, 0)
	_ = s.SetPersonal(validation.PersonalInfo{FirstName: "Thandi", Email: "thandi@"})

	out, err := s.Advance()
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if out.OK || out.Step != StepPersonal {
		t.Fatalf("expected to stay on step 1, got=%+v", out)
	}
	want := validation.Errors{
		validation.FieldLastName: validation.MsgRequired,
		validation.FieldIDNumber: validation.MsgRequired,
		validation.FieldPhone:    validation.MsgRequired,
		validation.FieldEmail:    validation.MsgEmail,
	}
	snap := s.Snapshot()
	if len(snap.Errors) != len(want) {
		t.Fatalf("errors: got=%v want=%v", snap.Errors, want)
	}
	for f, msg := range want {
		if snap.Errors[f] != msg {
			t.Fatalf("field %s: got=%q want=%q", f, snap.Errors[f], msg)
		}
	}
	got := n.list()
	if len(got) != 1 || got[0].title != invalidTitle || got[0].severity != notify.SeverityError {
		t.Fatalf("expected one aggregate error notification, got=%v", got)
	}
	if len(obs.steps) != 0 {
		t.Fatalf("blocked advance should not report a step change")
	}
}

func TestAdvanceFromCoursesFlagsSelectionAndScheduleIndependently(t *testing.T) {
	t.Parallel()
	s, _, _ := newSession(t, 0)
	_ = s.SetPersonal(validPersonal())
	mustAdvance(t, s, StepCourses)

	out, err := s.Advance()
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if out.OK || out.Step != StepCourses {
		t.Fatalf("expected to stay on step 2, got=%+v", out)
	}
	if out.Errors[validation.FieldCourses] != validation.MsgCourses || out.Errors[validation.FieldSchedule] != validation.MsgSchedule {
		t.Fatalf("both flags expected, got=%v", out.Errors)
	}

	// choosing a schedule alone clears only its flag
	_ = s.SetSchedule(ScheduleWeekdayEvening)
	snap := s.Snapshot()
	if snap.Errors.Has(validation.FieldSchedule) || !snap.Errors.Has(validation.FieldCourses) {
		t.Fatalf("unexpected errors after schedule pick: %v", snap.Errors)
	}
	if out, _ := s.Advance(); out.OK {
		t.Fatalf("advance without courses should still fail")
	}
}

func TestRetreatNeverValidates(t *testing.T) {
	t.Parallel()
	s, n, _ := newSession(t, 0)
	fillToReview(t, s)

	// wipe answers so every earlier step would now fail validation
	_ = s.SetPersonal(validation.PersonalInfo{})
	_, _ = s.SetSelection(pricing.NewSelection())

	for want := StepFunding; want >= StepPersonal; want-- {
		out, err := s.Retreat()
		if err != nil || !out.OK || out.Step != want {
			t.Fatalf("Retreat: got=%+v err=%v want step %d", out, err, want)
		}
	}
	out, _ := s.Retreat()
	if out.Step != StepPersonal {
		t.Fatalf("retreat on step 1 should be a no-op, got=%+v", out)
	}
	if len(n.list()) != 0 {
		t.Fatalf("retreat raised notifications: %v", n.list())
	}
}

func TestSelectionAndFundingChangesReprice(t *testing.T) {
	t.Parallel()
	s, _, _ := newSession(t, 0)

	q, err := s.SetSelection(pricing.NewSelection("first-aid", "sewing"))
	if err != nil {
		t.Fatalf("SetSelection: %v", err)
	}
	// unchosen funding prices as full payment
	if got := q.FinalTotal.StringFixed(2); got != "2700.00" {
		t.Fatalf("final total: got=%s want=2700.00", got)
	}
	q, err = s.SetFunding(pricing.FundingPaymentPlan)
	if err != nil {
		t.Fatalf("SetFunding: %v", err)
	}
	if got := q.FinalTotal.StringFixed(2); got != "2850.00" {
		t.Fatalf("final total: got=%s want=2850.00", got)
	}
	if got := s.Snapshot().Quote.FinalTotal.StringFixed(2); got != "2850.00" {
		t.Fatalf("snapshot quote: got=%s", got)
	}
}

func TestUnknownCourseKeepsPreviousSelection(t *testing.T) {
	t.Parallel()
	s, _, _ := newSession(t, 0)
	_, _ = s.SetSelection(pricing.NewSelection("cooking"))

	_, err := s.SetSelection(pricing.NewSelection("cooking", "ghost"))
	if !errors.Is(err, catalog.ErrUnknownCourse) {
		t.Fatalf("expected ErrUnknownCourse, got %v", err)
	}
	snap := s.Snapshot()
	if len(snap.CourseIDs) != 1 || snap.CourseIDs[0] != "cooking" {
		t.Fatalf("selection changed on error: %v", snap.CourseIDs)
	}
}

func TestFundingStepRequiresChoice(t *testing.T) {
	t.Parallel()
	s, _, _ := newSession(t, 0)
	_ = s.SetPersonal(validPersonal())
	mustAdvance(t, s, StepCourses)
	_, _ = s.SetSelection(pricing.NewSelection("cooking"))
	_ = s.SetSchedule(ScheduleWeekdayMorning)
	mustAdvance(t, s, StepFunding)

	out, _ := s.Advance()
	if out.OK || out.Errors[validation.FieldFunding] != validation.MsgFunding {
		t.Fatalf("expected funding flag, got=%+v", out)
	}
}

func TestSubmitRequiresBothConsents(t *testing.T) {
	t.Parallel()
	s, n, _ := newSession(t, 0)
	fillToReview(t, s)
	_ = s.SetConsent(Consent{Terms: true})

	out, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.OK || out.Errors[validation.FieldPrivacy] != validation.MsgPrivacy || out.Errors.Has(validation.FieldTerms) {
		t.Fatalf("expected privacy flag only, got=%+v", out)
	}
	if s.Snapshot().Status != StatusActive {
		t.Fatalf("failed submit must not start submission")
	}
	if got := n.list(); len(got) != 1 || got[0].title != invalidTitle {
		t.Fatalf("notifications: %v", got)
	}
}

func TestSubmitOnlyFromReviewStep(t *testing.T) {
	t.Parallel()
	s, _, _ := newSession(t, 0)
	if _, err := s.Submit(); !errors.Is(err, ErrNotSubmittable) {
		t.Fatalf("expected ErrNotSubmittable, got %v", err)
	}
	if _, err := s.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
}

func TestSubmitCompletesAfterDelayAndClearsForm(t *testing.T) {
	t.Parallel()
	s, n, obs := newSession(t, 30*time.Millisecond)
	fillToReview(t, s)
	_ = s.SetConsent(Consent{Terms: true, Privacy: true})

	out, err := s.Submit()
	if err != nil || !out.OK || out.Status != StatusSubmitting {
		t.Fatalf("Submit: got=%+v err=%v", out, err)
	}
	if _, err := s.Submit(); !errors.Is(err, ErrNotSubmittable) {
		t.Fatalf("second submit: expected ErrNotSubmittable, got %v", err)
	}
	if err := s.SetConsent(Consent{}); !errors.Is(err, ErrLocked) {
		t.Fatalf("edits during submission: expected ErrLocked, got %v", err)
	}

	snap := waitStatus(t, s, StatusSubmitted)
	if snap.Receipt == nil || len(snap.Receipt.CourseIDs) != 2 {
		t.Fatalf("expected receipt for two courses, got=%+v", snap.Receipt)
	}
	if got := snap.Receipt.Quote.FinalTotal.StringFixed(2); got != "2700.00" {
		t.Fatalf("receipt total: got=%s", got)
	}
	if snap.Form.Personal.FirstName != "" || len(snap.CourseIDs) != 0 || !snap.Quote.Empty() {
		t.Fatalf("form not cleared: %+v", snap)
	}
	if snap.Progress != 100 {
		t.Fatalf("progress: got=%d want=100", snap.Progress)
	}
	last := n.list()[len(n.list())-1]
	if last.title != successTitle || last.severity != notify.SeveritySuccess {
		t.Fatalf("expected success notification, got=%v", last)
	}
	if _, err := s.Submit(); !errors.Is(err, ErrNotSubmittable) {
		t.Fatalf("submit after completion: expected ErrNotSubmittable, got %v", err)
	}
	obs.mu.Lock()
	submitted := obs.submitted
	obs.mu.Unlock()
	if submitted != 1 {
		t.Fatalf("observer submitted calls: got=%d want=1", submitted)
	}

	reset := s.Reset()
	if reset.Status != StatusActive || reset.Step != StepPersonal || reset.Receipt != nil {
		t.Fatalf("reset: got=%+v", reset)
	}
}

func TestResetCancelsPendingSubmission(t *testing.T) {
	t.Parallel()
	s, n, _ := newSession(t, 40*time.Millisecond)
	fillToReview(t, s)
	_ = s.SetConsent(Consent{Terms: true, Privacy: true})
	if out, err := s.Submit(); err != nil || !out.OK {
		t.Fatalf("Submit: got=%+v err=%v", out, err)
	}
	s.Reset()
	time.Sleep(80 * time.Millisecond)

	snap := s.Snapshot()
	if snap.Status != StatusActive || snap.Step != StepPersonal {
		t.Fatalf("reset session changed after timer: %+v", snap)
	}
	for _, note := range n.list() {
		if note.title == successTitle {
			t.Fatalf("cancelled submission still notified")
		}
	}
}

func TestValidateFieldUpdatesSingleAnnotation(t *testing.T) {
	t.Parallel()
	s, _, _ := newSession(t, 0)
	_ = s.SetPersonal(validation.PersonalInfo{Email: "nope", Phone: "082 123 4567"})

	r, err := s.ValidateField(validation.FieldEmail)
	if err != nil || r.OK || r.Message != validation.MsgEmail {
		t.Fatalf("email: got=%+v err=%v", r, err)
	}
	if r, _ := s.ValidateField(validation.FieldPhone); !r.OK {
		t.Fatalf("phone should pass, got=%+v", r)
	}
	snap := s.Snapshot()
	if len(snap.Errors) != 1 || snap.Errors[validation.FieldEmail] != validation.MsgEmail {
		t.Fatalf("errors: got=%v", snap.Errors)
	}

	info := validPersonal()
	_ = s.SetPersonal(info)
	if s.Snapshot().Errors.Has(validation.FieldEmail) {
		t.Fatalf("corrected email should clear its annotation")
	}
	if _, err := s.ValidateField(validation.FieldCourses); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestBlurValidationRefusedOnceSubmitted(t *testing.T) {
	t.Parallel()
	s, _, _ := newSession(t, 0)
	fillToReview(t, s)
	_ = s.SetConsent(Consent{Terms: true, Privacy: true})
	if out, err := s.Submit(); err != nil || !out.OK {
		t.Fatalf("Submit: got=%+v err=%v", out, err)
	}
	waitStatus(t, s, StatusSubmitted)

	if _, err := s.ValidateField(validation.FieldEmail); !errors.Is(err, ErrLocked) {
		t.Fatalf("ValidateField after submit: got=%v want ErrLocked", err)
	}
	if _, err := s.SetPersonalField(validation.FieldEmail, "x@y.co"); !errors.Is(err, ErrLocked) {
		t.Fatalf("SetPersonalField after submit: got=%v want ErrLocked", err)
	}
	if errs := s.Snapshot().Errors; !errs.Empty() {
		t.Fatalf("submitted session gained annotations: %v", errs)
	}
}

func TestSetPersonalFieldStoresAndValidates(t *testing.T) {
	t.Parallel()
	s, _, _ := newSession(t, 0)
	r, err := s.SetPersonalField(validation.FieldIDNumber, "123")
	if err != nil || r.OK || r.Message != validation.MsgIDNumber {
		t.Fatalf("bad id: got=%+v err=%v", r, err)
	}
	r, err = s.SetPersonalField(validation.FieldIDNumber, "9202204720082")
	if err != nil || !r.OK {
		t.Fatalf("good id: got=%+v err=%v", r, err)
	}
	snap := s.Snapshot()
	if snap.Form.Personal.IDNumber != "9202204720082" || snap.Errors.Has(validation.FieldIDNumber) {
		t.Fatalf("got=%+v", snap)
	}
	if _, err := s.SetPersonalField(validation.FieldSchedule, "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("non-personal field: got=%v want ErrUnknownField", err)
	}
}

func TestConcurrentFieldBlursKeepEveryValue(t *testing.T) {
	t.Parallel()
	s, _, _ := newSession(t, 0)
	want := validPersonal()
	values := map[validation.Field]string{
		validation.FieldFirstName: want.FirstName,
		validation.FieldLastName:  want.LastName,
		validation.FieldIDNumber:  want.IDNumber,
		validation.FieldPhone:     want.Phone,
		validation.FieldEmail:     want.Email,
	}
	for round := 0; round < 20; round++ {
		s.Reset()
		var wg sync.WaitGroup
		for field, value := range values {
			wg.Add(1)
			go func(f validation.Field, v string) {
				defer wg.Done()
				if _, err := s.SetPersonalField(f, v); err != nil {
					t.Errorf("SetPersonalField(%s): %v", f, err)
				}
			}(field, value)
		}
		wg.Wait()
		if got := s.Snapshot().Form.Personal; got != want {
			t.Fatalf("round %d: got=%+v want=%+v", round, got, want)
		}
	}
}

func TestSubmitRollsBackWhenSchedulerStopped(t *testing.T) {
	t.Parallel()
	sched := scheduler.New()
	book := catalog.MustDefault()
	s, err := NewSession(Config{
		Engine:      pricing.NewEngine(book, pricing.NewTiers(book.VolumeTiers())),
		Tasks:       sched,
		SubmitDelay: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	fillToReview(t, s)
	_ = s.SetConsent(Consent{Terms: true, Privacy: true})
	sched.Stop()

	if _, err := s.Submit(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Submit on stopped scheduler: got=%v want ErrUnavailable", err)
	}
	snap := s.Snapshot()
	if snap.Status != StatusActive || snap.Step != StepReview {
		t.Fatalf("session should stay editable at review, got status=%s step=%d", snap.Status, snap.Step)
	}
}

func TestProgressFollowsStep(t *testing.T) {
	t.Parallel()
	s, _, obs := newSession(t, 0)
	if s.Progress() != 25 {
		t.Fatalf("progress at step 1: got=%d", s.Progress())
	}
	fillToReview(t, s)
	if s.Progress() != 100 {
		t.Fatalf("progress at step 4: got=%d", s.Progress())
	}
	if _, err := s.Advance(); !errors.Is(err, ErrLastStep) {
		t.Fatalf("advance past review: expected ErrLastStep, got %v", err)
	}
	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.steps) != 3 || obs.steps[2] != StepReview {
		t.Fatalf("observer steps: %v", obs.steps)
	}
}

func TestParseSchedule(t *testing.T) {
	t.Parallel()
	if s, err := ParseSchedule(" Weekend "); err != nil || s != ScheduleWeekend {
		t.Fatalf("ParseSchedule: got=%q err=%v", s, err)
	}
	if _, err := ParseSchedule("night-owl"); err == nil {
		t.Fatalf("expected error for unknown schedule")
	}
	if StepFunding.Title() != "Funding" || StepCourses.Percent() != 50 {
		t.Fatalf("unexpected step metadata")
	}
}
