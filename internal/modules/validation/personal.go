package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// PersonalInfo is step one of the enrollment form.
type PersonalInfo struct {
	FirstName string `json:"first_name" validate:"required_trim"`
	LastName  string `json:"last_name" validate:"required_trim"`
	IDNumber  string `json:"id_number" validate:"required_trim,za_id"`
	Phone     string `json:"phone" validate:"required_trim,za_phone"`
	Email     string `json:"email" validate:"required_trim,za_email"`
}

// Errors maps a field to the message shown next to it.
type Errors map[Field]string

func (e Errors) Has(field Field) bool {
	_, ok := e[field]
	return ok
}

func (e Errors) Empty() bool { return len(e) == 0 }

func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Merge copies other into e, overwriting messages for the same field.
func (e Errors) Merge(other Errors) {
	for k, v := range other {
		e[k] = v
	}
}

var tagMessages = map[string]string{
	"required_trim": MsgRequired,
	"za_id":         MsgIDNumber,
	"za_phone":      MsgPhone,
	"za_email":      MsgEmail,
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func personalValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "required_trim", Required)
		mustRegister(v, "za_id", NationalID)
		mustRegister(v, "za_phone", Phone)
		mustRegister(v, "za_email", Email)
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, check func(string) Result) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return check(fl.Field().String()).OK
	})
	if err != nil {
		panic(err)
	}
}

// ValidatePersonal reports every failing field independently.
func ValidatePersonal(info PersonalInfo) Errors {
	out := Errors{}
	err := personalValidator().Struct(info)
	if err == nil {
		return out
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// invalid input to the validator itself; fall back to the plain predicates
		for field, value := range info.values() {
			if r := ValidateField(field, value); !r.OK {
				out[field] = r.Message
			}
		}
		return out
	}
	for _, fe := range fieldErrs {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = MsgRequired
		}
		out[Field(fe.Field())] = msg
	}
	return out
}

func (p PersonalInfo) values() map[Field]string {
	return map[Field]string{
		FieldFirstName: p.FirstName,
		FieldLastName:  p.LastName,
		FieldIDNumber:  p.IDNumber,
		FieldPhone:     p.Phone,
		FieldEmail:     p.Email,
	}
}

// Value returns the raw value for a personal field.
func (p PersonalInfo) Value(field Field) (string, bool) {
	v, ok := p.values()[field]
	return v, ok
}

// With returns a copy of p with one personal field replaced.
func (p PersonalInfo) With(field Field, value string) (PersonalInfo, bool) {
	switch field {
	case FieldFirstName:
		p.FirstName = value
	case FieldLastName:
		p.LastName = value
	case FieldIDNumber:
		p.IDNumber = value
	case FieldPhone:
		p.Phone = value
	case FieldEmail:
		p.Email = value
	default:
		return p, false
	}
	return p, true
}
