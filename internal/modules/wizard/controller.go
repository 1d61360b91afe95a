package wizard

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/enrollment-backend/internal/modules/notify"
	"github.com/yungbote/enrollment-backend/internal/modules/validation"
)

// Outcome reports the result of a transition attempt.
type Outcome struct {
	OK     bool              `json:"ok"`
	From   Step              `json:"from"`
	Step   Step              `json:"step"`
	Status Status            `json:"status"`
	Errors validation.Errors `json:"errors,omitempty"`
}

// passLocked rebuilds the annotations owned by step and reports whether the
// step is complete.
func (s *Session) passLocked(step Step) validation.Errors {
	failures := validateStep(step, s.form)
	for _, f := range stepFields[step] {
		delete(s.errors, f)
	}
	s.errors.Merge(failures)
	return failures
}

// Advance moves to the next step when every validator bound to the current
// step passes. Otherwise the step is unchanged, each failing field is
// annotated and a single notification is raised.
func (s *Session) Advance() (Outcome, error) {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return Outcome{}, err
	}
	from := s.step
	if from >= LastStep {
		s.mu.Unlock()
		return Outcome{}, ErrLastStep
	}
	failures := s.passLocked(from)
	if !failures.Empty() {
		out := Outcome{OK: false, From: from, Step: from, Status: s.status, Errors: failures.Clone()}
		s.mu.Unlock()
		s.log.Debug("advance blocked", "step", from, "failed_fields", len(failures))
		s.notifier.Notify(invalidTitle, invalidMessage, notify.SeverityError)
		return out, nil
	}

	s.step = from + 1
	if s.step == StepReview {
		// pricing is re-read on entering review in case the catalog view changed
		if q, err := s.engine.Quote(s.form.Selection, s.form.Funding); err == nil {
			s.quote = q
		} else {
			s.log.Error("reprice on review entry failed", "error", err)
		}
	}
	s.touchLocked()
	out := Outcome{OK: true, From: from, Step: s.step, Status: s.status}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.StepChanged(snap)
	}
	return out, nil
}

// Retreat goes back one step without validating. It is a no-op on step 1.
func (s *Session) Retreat() (Outcome, error) {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return Outcome{}, err
	}
	from := s.step
	if from <= FirstStep {
		out := Outcome{OK: true, From: from, Step: from, Status: s.status}
		s.mu.Unlock()
		return out, nil
	}
	s.step = from - 1
	s.touchLocked()
	out := Outcome{OK: true, From: from, Step: s.step, Status: s.status}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.StepChanged(snap)
	}
	return out, nil
}

// Submit starts the simulated submission from step 4. The session stays in
// Submitting until the delay elapses; a second call in the meantime fails.
func (s *Session) Submit() (Outcome, error) {
	s.mu.Lock()
	if s.status != StatusActive || s.step != StepReview {
		s.mu.Unlock()
		return Outcome{}, ErrNotSubmittable
	}
	failures := s.passLocked(StepReview)
	if !failures.Empty() {
		out := Outcome{OK: false, From: s.step, Step: s.step, Status: s.status, Errors: failures.Clone()}
		s.mu.Unlock()
		s.notifier.Notify(invalidTitle, invalidMessage, notify.SeverityError)
		return out, nil
	}
	s.status = StatusSubmitting
	if !s.tasks.After(submitKey, s.submitDelay, s.completeSubmission) {
		s.status = StatusActive
		s.mu.Unlock()
		s.log.Warn("submission refused: scheduler stopped")
		return Outcome{}, ErrUnavailable
	}
	s.touchLocked()
	out := Outcome{OK: true, From: s.step, Step: s.step, Status: s.status}
	courses := s.form.Selection.Len()
	s.mu.Unlock()

	s.log.Info("application submission started", "courses", courses, "delay", s.submitDelay.String())
	return out, nil
}

func (s *Session) completeSubmission() {
	s.mu.Lock()
	if s.status != StatusSubmitting {
		s.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	receipt := &Receipt{
		Reference:   uuid.New().String(),
		CourseIDs:   s.form.Selection.IDs(),
		Quote:       s.quote,
		SubmittedAt: now,
	}
	s.clearLocked(now)
	s.status = StatusSubmitted
	s.receipt = receipt
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info("application submitted", "reference", receipt.Reference, "courses", len(receipt.CourseIDs))
	s.notifier.Notify(successTitle, successMessage, notify.SeveritySuccess)
	if s.observer != nil {
		s.observer.Submitted(snap)
	}
}

// Reset returns to an empty step 1 from any state and drops a pending
// submission.
func (s *Session) Reset() Snapshot {
	s.tasks.Cancel(submitKey)
	s.mu.Lock()
	s.clearLocked(time.Now().UTC())
	s.receipt = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.StepChanged(snap)
	}
	return snap
}

// Close stops the session's pending timers.
func (s *Session) Close() {
	s.tasks.Cancel(submitKey)
}
