package services

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	"go-market-backend/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return isHTTPURL(fl.Field().String())
	})
	return v
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// messages maps a validator tag, or "field.tag", to a client message.
type messages map[string]string

// check validates in and turns the first failure into a validation error.
// A missing required field wins over any format problem.
func check(in interface{}, msgs messages, fallback string) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(apperr.KindValidation, fallback, err)
	}

	first := verrs[0]
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			first = fe
			break
		}
	}
	if msg, ok := msgs[first.Field()+"."+first.Tag()]; ok {
		return apperr.Validation(msg)
	}
	if msg, ok := msgs[first.Tag()]; ok {
		return apperr.Validation(msg)
	}
	return apperr.Validation(fallback)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
