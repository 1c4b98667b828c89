package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const MaxURLLength = 2083

// FieldError describes one invalid input value. Loc is the location of the
// value, e.g. ["body", "url"] or ["path", "summary_id"].
type FieldError struct {
	Loc  []string       `json:"loc"`
	Msg  string         `json:"msg"`
	Type string         `json:"type"`
	Ctx  map[string]any `json:"ctx,omitempty"`
}

// Errors is a list of field errors returned together.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = strings.Join(fe.Loc, ".") + ": " + fe.Msg
	}
	return strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
	schemes  map[string]bool
}

// New returns a validator that accepts URLs with the given schemes.
func New(allowedSchemes []string) *Validator {
	v := &Validator{
		validate: validator.New(),
		schemes:  map[string]bool{},
	}
	for _, s := range allowedSchemes {
		v.schemes[strings.ToLower(s)] = true
	}
	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.validate.RegisterValidation("urlscheme", v.validScheme)
	_ = v.validate.RegisterValidation("urlhost", validHost)
	return v
}

func (v *Validator) validScheme(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil || u.Scheme == "" {
		return false
	}
	return v.schemes[strings.ToLower(u.Scheme)]
}

func validHost(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	return err == nil && u.Hostname() != ""
}

// DecodeJSON decodes a request body into dst and validates it.
func (v *Validator) DecodeJSON(body io.Reader, dst any) error {
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return decodeError(err)
	}
	return v.Struct(dst)
}

// Struct validates dst and converts failures to Errors.
func (v *Validator) Struct(dst any) error {
	err := v.validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, bodyFieldError(fe))
	}
	return out
}

func bodyFieldError(fe validator.FieldError) FieldError {
	loc := []string{"body", fe.Field()}
	switch fe.Tag() {
	case "required":
		return FieldError{Loc: loc, Msg: "field required", Type: "value_error.missing"}
	case "max":
		limit, _ := strconv.Atoi(fe.Param())
		return FieldError{
			Loc:  loc,
			Msg:  fmt.Sprintf("ensure this value has at most %d characters", limit),
			Type: "value_error.any_str.max_length",
			Ctx:  map[string]any{"limit_value": limit},
		}
	case "urlscheme":
		if u, err := url.Parse(fieldString(fe.Value())); err == nil && u.Scheme != "" {
			return FieldError{Loc: loc, Msg: "URL scheme not permitted", Type: "value_error.url.scheme"}
		}
		return FieldError{Loc: loc, Msg: "invalid or missing URL scheme", Type: "value_error.url.scheme"}
	case "urlhost":
		return FieldError{Loc: loc, Msg: "URL host invalid", Type: "value_error.url.host"}
	default:
		return FieldError{Loc: loc, Msg: fe.Error(), Type: "value_error." + fe.Tag()}
	}
}

func fieldString(v any) string {
	if p, ok := v.(*string); ok {
		if p == nil {
			return ""
		}
		return *p
	}
	return fmt.Sprint(v)
}

func decodeError(err error) error {
	if errors.Is(err, io.EOF) {
		return Errors{{Loc: []string{"body"}, Msg: "field required", Type: "value_error.missing"}}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fe := FieldError{Loc: []string{"body", typeErr.Field}, Msg: typeErr.Type.Kind().String() + " type expected", Type: "type_error"}
		if typeErr.Type.Kind() == reflect.String || typeErr.Type.Kind() == reflect.Ptr && typeErr.Type.Elem().Kind() == reflect.String {
			fe.Msg, fe.Type = "str type expected", "type_error.str"
		}
		return Errors{fe}
	}
	return Errors{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error.jsondecode"}}
}

// PositiveID parses a path parameter that must be an integer greater than 0.
func PositiveID(name, raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, Errors{{Loc: []string{"path", name}, Msg: "value is not a valid integer", Type: "type_error.integer"}}
	}
	if id <= 0 {
		return 0, Errors{{
			Loc:  []string{"path", name},
			Msg:  "ensure this value is greater than 0",
			Type: "value_error.number.not_gt",
			Ctx:  map[string]any{"limit_value": 0},
		}}
	}
	return id, nil
}
