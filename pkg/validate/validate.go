// Package validate checks REST request bodies against their struct tags.
package validate

import (
	"regexp"
	"time"

	"github.com/go-playground/validator"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type RequestValidator struct {
	validator *validator.Validate
}

func New() *RequestValidator {
	v := validator.New()
	if err := v.RegisterValidation("slug", slugValidator); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("isodate", isoDateValidator); err != nil {
		panic(err)
	}
	return &RequestValidator{v}
}

// Validate returns validator.ValidationErrors when i breaks one of its
// rules.
func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		if _, ok := err.(validator.ValidationErrors); !ok {
			return nil
		}
		return err
	}
	return nil
}

func slugValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return len(value) <= 100 && slugRegex.MatchString(value)
}

func isoDateValidator(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}
