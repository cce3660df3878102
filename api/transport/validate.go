package transport

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/dispatch/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Decode unmarshals body into dst and validates it.
func Decode(body []byte, dst interface{}) error {
	if len(body) == 0 {
		return domain.NewValidationError("invalid payload", map[string]string{"body": "required"})
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.NewValidationError("invalid payload", map[string]string{"body": "malformed JSON"})
	}
	return Validate(dst)
}

// Validate checks v's struct tags and reports problems keyed by JSON field path.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
	}
	problems := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems[fieldPath(fe.Namespace())] = message(fe)
	}
	return domain.NewValidationError("invalid payload", problems)
}

// fieldPath drops the struct name from a namespace such as "PushSubscribeRequest.keys.auth".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid":
		return "must be a UUID"
	case "url":
		return "must be a URL"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "at most " + fe.Param() + " items"
		}
		return "at most " + fe.Param() + " characters"
	}
	return "invalid value"
}
