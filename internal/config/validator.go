package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"golang.org/x/text/language"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("langcode", isLanguageCode); err != nil {
		return nil, nil, fmt.Errorf("failed to register langcode validation: %w", err)
	}
	if err := validate.RegisterTranslation("langcode", trans, func(ut ut.Translator) error {
		return ut.Add("langcode", "{0} must be a two or three letter language code", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("langcode", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register langcode translation: %w", err)
	}

	return validate, trans, nil
}

// isLanguageCode accepts bare ISO 639 base codes such as "en" or "ko".
// Region or script subtags are rejected because translation payloads are keyed by base code.
func isLanguageCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) < 2 || len(code) > 3 {
		return false
	}
	base, err := language.ParseBase(code)
	if err != nil {
		return false
	}
	return base.String() == code
}
