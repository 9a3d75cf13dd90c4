package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"cadi-backend/internal/domain/model"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	"github.com/oapi-codegen/runtime/types"
)

// requestValidator checks request DTOs and renders failures in Spanish.
type requestValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_es := es.New()
	uni := ut.New(_es, _es)
	trans, _ := uni.GetTranslator("es")
	_ = es_translations.RegisterDefaultTranslations(v, trans)

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("hhmm", hhmmValidation)
	registerCustomTranslation(v, trans, "hhmm", "{0} debe tener el formato HH:MM")

	return &requestValidator{validate: v, trans: trans}
}

func registerCustomTranslation(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(
		tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func hhmmValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	for _, c := range []byte{s[0], s[1], s[3], s[4]} {
		if c < '0' || c > '9' {
			return false
		}
	}
	return h < 24 && m < 60
}

func (v *requestValidator) Struct(i any) error { return v.validate.Struct(i) }

func (v *requestValidator) translate(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field()] = e.Translate(v.trans)
	}
	return out
}

const maxBodyBytes = 1 << 20

// decode reads a JSON body into dst and validates it. An empty body decodes
// to the zero value so optional-body endpoints work.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, types.ErrValidationEmail) {
			return model.NewValidationError("email", "validation.email")
		}
		return model.NewValidationError("non_field_errors", "validation.invalid_json")
	}
	return s.v.Struct(dst)
}
