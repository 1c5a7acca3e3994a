// Package validation checks request bodies and form state against their
// `validate` struct tags and reports the first failure as a ValidationError.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/signature-studio/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names, which is what the browser sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates s. The returned error is a *errors.ValidationError.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &errors.ValidationError{Message: "invalid request", Err: err}
	}
	fe := fieldErrs[0]
	return &errors.ValidationError{
		Field:   fieldPath(fe.Namespace()),
		Message: message(fe),
		Err:     err,
	}
}

// fieldPath drops the leading struct type name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of " + fe.Param()
	case "iso3166_1_alpha2":
		return "must be a two-letter country code"
	case "datauri":
		return "must be a data URL"
	default:
		return "is invalid"
	}
}
