package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/strcase"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError is a field-to-message map returned when validation fails.
//
// Keys are the snake_case path of the field below the validated struct, for
// example "issuer" or "accounts[1].digits".
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	v10CustomValidation(validate, enTrans)

	return &V10Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	if err := v.validate.Struct(data); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return err
		}

		errV10 := make(V10ValidationError)
		for _, fe := range validateErrs {
			errV10[fieldKey(fe)] = fe.Translate(v.translator)
		}

		return errV10
	}

	return nil
}

func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}

	parts := strings.Split(ns, ".")
	for i := range parts {
		parts[i] = strcase.ToLowerSnake(parts[i])
	}

	return strings.Join(parts, ".")
}

//nolint:errcheck,gosec,forcetypeassert // make linter silent
func v10CustomValidation(validate *validator.Validate, enTrans ut.Translator) {
	rules := []struct {
		tag string
		msg string
		fn  func(s string) bool
	}{
		{tag: "otpbase32", msg: "{0} must be upper-case base32 (A-Z, 2-7) without spaces", fn: otp.StoredSecret},
		{tag: "otpsecret", msg: "{0} must be at least 16 base32 characters (A-Z, 2-7)", fn: otp.ValidSecret},
		{tag: "otpalgorithm", msg: "{0} must be one of SHA1, SHA256, SHA512", fn: func(s string) bool {
			return otp.Algorithm(s).Valid()
		}},
	}

	for _, rule := range rules {
		validate.RegisterValidation(rule.tag, func(fl validator.FieldLevel) bool {
			return rule.fn(fl.Field().String())
		})

		validate.RegisterTranslation(rule.tag, enTrans,
			func(ut ut.Translator) error {
				return ut.Add(rule.tag, rule.msg, false)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, err := ut.T(fe.Tag(), fe.Field())
				if err != nil {
					slog.Warn("warning: error translating", "FieldError", fe, "error", err)
					return fe.(error).Error()
				}

				return t
			},
		)
	}
}
