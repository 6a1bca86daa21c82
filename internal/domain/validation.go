package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	isinRegex   = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)
	cusipRegex  = regexp.MustCompile(`^[A-Z0-9]{9}$`)
	tickerRegex = regexp.MustCompile(`^[A-Z]{1,5}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "notblank", validateNotBlank)
	mustRegister(v, "instrument_type", validateInstrumentType)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateInstrumentType(fl validator.FieldLevel) bool {
	return InstrumentType(fl.Field().String()).IsValid()
}

// requiredFieldsMessage is the message for any missing required field.
const requiredFieldsMessage = "Missing required fields: type, code, name"

// Validate checks the required fields of the form. Blank type, code or name
// yield a single "missing required fields" error; an unknown type is
// reported separately.
func (f InstrumentForm) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewError(ErrValidation, err.Error())
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "notblank" {
			return NewError(ErrValidation, requiredFieldsMessage)
		}
	}
	return NewError(ErrValidation, fmt.Sprintf("Invalid instrument type: %s", f.Type))
}

// ValidateCodeFormat checks that an already-uppercased code has the shape
// expected for its type. ISIN codes also have their check digit verified.
func ValidateCodeFormat(t InstrumentType, code string) error {
	switch t {
	case InstrumentTypeISIN:
		if !isinRegex.MatchString(code) {
			return NewError(ErrValidation, "Invalid ISIN: must be 2 letters, 9 alphanumeric characters and 1 digit")
		}
		if err := checkISINDigit(code); err != nil {
			return NewError(ErrValidation, fmt.Sprintf("Invalid ISIN: %s", err))
		}
	case InstrumentTypeCUSIP:
		if !cusipRegex.MatchString(code) {
			return NewError(ErrValidation, "Invalid CUSIP: must be 9 alphanumeric characters")
		}
	case InstrumentTypeTicker:
		if !tickerRegex.MatchString(code) {
			return NewError(ErrValidation, "Invalid ticker: must be 1 to 5 letters")
		}
	default:
		return NewError(ErrValidation, fmt.Sprintf("Invalid instrument type: %s", t))
	}
	return nil
}

// checkISINDigit applies the Luhn variant of ISO 6166 to the expanded digits.
func checkISINDigit(isin string) error {
	var digits strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			digits.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			digits.WriteRune(char)
		}
	}

	sum := 0
	double := true
	s := digits.String()
	for i := len(s) - 1; i >= 0; i-- {
		d := int(s[i] - '0')
		if double {
			d *= 2
		}
		sum += d/10 + d%10
		double = !double
	}

	expected := (10 - sum%10) % 10
	actual := int(isin[11] - '0')
	if expected != actual {
		return fmt.Errorf("check digit should be %d, got %d", expected, actual)
	}
	return nil
}
