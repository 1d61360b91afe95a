package validation

import (
	"regexp"
	"strings"
	"unicode"
)

type Field string

const (
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldIDNumber  Field = "id_number"
	FieldPhone     Field = "phone"
	FieldEmail     Field = "email"
	FieldCourses   Field = "courses"
	FieldSchedule  Field = "schedule"
	FieldFunding   Field = "funding"
	FieldTerms     Field = "terms"
	FieldPrivacy   Field = "privacy"
)

const (
	MsgRequired   = "This field is required"
	MsgEmail      = "Please enter a valid email address"
	MsgPhone      = "Please enter a valid phone number"
	MsgIDNumber   = "Please enter a valid 13-digit ID number"
	MsgCourses    = "Please select at least one course"
	MsgSchedule   = "Please select a schedule"
	MsgFunding    = "Please select a funding option"
	MsgTerms      = "You must accept the terms and conditions"
	MsgPrivacy    = "You must accept the privacy policy"
	MsgUnknownOpt = "Please choose one of the listed options"
)

type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func Pass() Result { return Result{OK: true} }

func Fail(msg string) Result { return Result{OK: false, Message: msg} }

var (
	// local@domain.tld, one dot level only
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^(0|\+27)[678][0-9]{8}$`)
	idPattern    = regexp.MustCompile(`^[0-9]{13}$`)
)

func Required(value string) Result {
	if strings.TrimSpace(value) == "" {
		return Fail(MsgRequired)
	}
	return Pass()
}

func Email(value string) Result {
	if !emailPattern.MatchString(value) {
		return Fail(MsgEmail)
	}
	return Pass()
}

// Phone accepts 0XXXXXXXXX or +27XXXXXXXXX mobile numbers (second digit 6, 7 or 8)
// once whitespace has been removed.
func Phone(value string) Result {
	if !phonePattern.MatchString(stripSpaces(value)) {
		return Fail(MsgPhone)
	}
	return Pass()
}

// NationalID checks shape only: 13 decimal digits. No checksum or date check.
func NationalID(value string) Result {
	if !idPattern.MatchString(value) {
		return Fail(MsgIDNumber)
	}
	return Pass()
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ValidateField runs the checks bound to a single personal-info field: required
// first, then the format check for non-empty values. Fields without text
// validators always pass.
func ValidateField(field Field, value string) Result {
	formats, ok := fieldFormats[field]
	if !ok {
		return Pass()
	}
	if r := Required(value); !r.OK {
		return r
	}
	for _, check := range formats {
		if r := check(value); !r.OK {
			return r
		}
	}
	return Pass()
}

var fieldFormats = map[Field][]func(string) Result{
	FieldFirstName: nil,
	FieldLastName:  nil,
	FieldIDNumber:  {NationalID},
	FieldPhone:     {Phone},
	FieldEmail:     {Email},
}

func IsPersonalField(field Field) bool {
	_, ok := fieldFormats[field]
	return ok
}
