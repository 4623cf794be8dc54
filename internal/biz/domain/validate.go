package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError converts validator output into a ValidationError
func validationError(entity string, err error, describe func(validator.FieldError) string) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Entity: entity, Problems: []string{err.Error()}}
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := ""
		if describe != nil {
			msg = describe(fe)
		}
		if msg == "" {
			msg = describeField(fe)
		}
		problems = append(problems, msg)
	}
	return &ValidationError{Entity: entity, Problems: problems}
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "url", "http_url":
		return fe.Field() + " must be a valid URL"
	case "min", "max":
		return fmt.Sprintf("%s must be %s %s", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
