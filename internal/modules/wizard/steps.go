package wizard

import (
	"fmt"
	"strings"

	"github.com/yungbote/enrollment-backend/internal/modules/pricing"
	"github.com/yungbote/enrollment-backend/internal/modules/validation"
)

type Step int

const (
	StepPersonal Step = 1
	StepCourses  Step = 2
	StepFunding  Step = 3
	StepReview   Step = 4

	FirstStep = StepPersonal
	LastStep  = StepReview
)

var stepTitles = map[Step]string{
	StepPersonal: "Personal Info",
	StepCourses:  "Course & Schedule",
	StepFunding:  "Funding",
	StepReview:   "Review & Consent",
}

func (s Step) Title() string { return stepTitles[s] }

func (s Step) Valid() bool { return s >= FirstStep && s <= LastStep }

// Percent drives the progress bar.
func (s Step) Percent() int {
	if !s.Valid() {
		return 0
	}
	return int(s) * 100 / int(LastStep)
}

type Status string

const (
	StatusActive     Status = "active"
	StatusSubmitting Status = "submitting"
	StatusSubmitted  Status = "submitted"
)

type Schedule string

const (
	ScheduleNone           Schedule = ""
	ScheduleWeekdayMorning Schedule = "weekday-morning"
	ScheduleWeekdayEvening Schedule = "weekday-evening"
	ScheduleWeekend        Schedule = "weekend"
)

func Schedules() []Schedule {
	return []Schedule{ScheduleWeekdayMorning, ScheduleWeekdayEvening, ScheduleWeekend}
}

func (s Schedule) Valid() bool {
	switch s {
	case ScheduleWeekdayMorning, ScheduleWeekdayEvening, ScheduleWeekend:
		return true
	}
	return false
}

func ParseSchedule(raw string) (Schedule, error) {
	s := Schedule(strings.TrimSpace(strings.ToLower(raw)))
	if !s.Valid() {
		return ScheduleNone, fmt.Errorf("unknown schedule %q", raw)
	}
	return s, nil
}

type Consent struct {
	Terms   bool `json:"terms"`
	Privacy bool `json:"privacy"`
}

// Form holds every answer given so far. Each part is replaced wholesale.
type Form struct {
	Personal  validation.PersonalInfo `json:"personal"`
	Selection pricing.Selection       `json:"-"`
	Schedule  Schedule                `json:"schedule"`
	Funding   pricing.Funding         `json:"funding"`
	Consent   Consent                 `json:"consent"`
}

// CourseIDs exposes the selection for serialization.
func (f Form) CourseIDs() []string { return f.Selection.IDs() }

// stepFields lists the fields whose annotations a validation pass over the step owns.
var stepFields = map[Step][]validation.Field{
	StepPersonal: {validation.FieldFirstName, validation.FieldLastName, validation.FieldIDNumber, validation.FieldPhone, validation.FieldEmail},
	StepCourses:  {validation.FieldCourses, validation.FieldSchedule},
	StepFunding:  {validation.FieldFunding},
	StepReview:   {validation.FieldTerms, validation.FieldPrivacy},
}

// validateStep runs every validator bound to step and returns all failures.
func validateStep(step Step, f Form) validation.Errors {
	errs := validation.Errors{}
	switch step {
	case StepPersonal:
		errs.Merge(validation.ValidatePersonal(f.Personal))
	case StepCourses:
		if f.Selection.Empty() {
			errs[validation.FieldCourses] = validation.MsgCourses
		}
		if !f.Schedule.Valid() {
			errs[validation.FieldSchedule] = validation.MsgSchedule
		}
	case StepFunding:
		if !f.Funding.Valid() {
			errs[validation.FieldFunding] = validation.MsgFunding
		}
	case StepReview:
		if !f.Consent.Terms {
			errs[validation.FieldTerms] = validation.MsgTerms
		}
		if !f.Consent.Privacy {
			errs[validation.FieldPrivacy] = validation.MsgPrivacy
		}
	}
	return errs
}
