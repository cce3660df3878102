package checklist

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/fastygo/dispatch/domain"
)

const (
	msgRequired  = "שדה חובה"
	msgMinLength = "מינימום %d תווים"
	msgMaxLength = "מקסימום %d תווים"
	msgPattern   = "פורמט לא תקין"
	msgMin       = "ערך מינימלי %s"
	msgMax       = "ערך מקסימלי %s"
	msgNumber    = "יש להזין מספר"
	msgOption    = "ערך לא חוקי"
)

// Validate checks values against schema. Hidden fields are skipped.
// It returns nil when every visible field is valid.
func Validate(schema Schema, values Values) error {
	problems := make(map[string]string)
	for _, f := range schema {
		if !Visible(f, values) {
			continue
		}
		if msg := validateField(f, values[f.ID]); msg != "" {
			problems[f.ID] = msg
		}
	}
	if verr := domain.NewValidationError("checklist validation failed", problems); verr != nil {
		return verr
	}
	return nil
}

func validateField(f Field, v interface{}) string {
	if isEmpty(f, v) {
		if f.Required {
			return msgRequired
		}
		return ""
	}

	c := f.Constraints
	switch f.Type {
	case FieldNumber:
		n, ok := toNumber(v)
		if !ok {
			return msgNumber
		}
		if c != nil && c.Min != nil && n < *c.Min {
			return fmt.Sprintf(msgMin, formatNumber(*c.Min))
		}
		if c != nil && c.Max != nil && n > *c.Max {
			return fmt.Sprintf(msgMax, formatNumber(*c.Max))
		}
		return ""
	case FieldSelect, FieldRadio:
		if len(f.Options) > 0 && !hasOption(f.Options, v) {
			return msgOption
		}
		return ""
	case FieldCheckbox, FieldBoolean:
		return ""
	}

	s := fmt.Sprint(v)
	if c == nil {
		return ""
	}
	length := utf8.RuneCountInString(s)
	if c.MinLength != nil && length < *c.MinLength {
		return fmt.Sprintf(msgMinLength, *c.MinLength)
	}
	if c.MaxLength != nil && length > *c.MaxLength {
		return fmt.Sprintf(msgMaxLength, *c.MaxLength)
	}
	if c.Pattern != "" {
		re, err := regexp.Compile(c.Pattern)
		if err != nil || !re.MatchString(s) {
			return msgPattern
		}
	}
	return ""
}

func hasOption(options []Option, v interface{}) bool {
	for _, o := range options {
		if looselyEqual(o.Value, v) {
			return true
		}
	}
	return false
}

func formatNumber(f float64) string {
	return fmt.Sprintf("%g", f)
}

// Normalize returns the submission payload: visible fields only, with
// booleans, numbers and strings coerced to their field types. Missing
// optional answers become nil.
func Normalize(schema Schema, values Values) map[string]interface{} {
	out := make(map[string]interface{}, len(schema))
	for _, f := range schema {
		if !Visible(f, values) {
			continue
		}
		v, ok := values[f.ID]
		if !ok || v == nil {
			v = f.DefaultValue
		}
		out[f.ID] = coerce(f, v)
	}
	return out
}

func coerce(f Field, v interface{}) interface{} {
	if v == nil {
		if f.isBoolean() {
			return false
		}
		return nil
	}
	switch {
	case f.isBoolean():
		b, _ := toBool(v)
		return b
	case f.Type == FieldNumber:
		if n, ok := toNumber(v); ok {
			return n
		}
		return nil
	case f.Type == FieldSelect || f.Type == FieldRadio:
		return v
	}
	return fmt.Sprint(v)
}
