// Package validation checks decoded request bodies against per-endpoint schemas.
//
// Schemas are plain structs with validate tags. Field names in messages come
// from the json tag so they match what the client sent. Every violation in a
// request is reported, in field order.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// MsgInvalidBody is reported when the request body is not valid JSON.
const MsgInvalidBody = "invalid request body"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Errors is the ordered list of violations found in one request.
type Errors struct {
	Messages []string
}

func (e *Errors) Error() string {
	if len(e.Messages) == 0 {
		return "validation failed"
	}
	return strings.Join(e.Messages, "; ")
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		if err := validate.RegisterValidation("notblank", notBlank); err != nil {
			panic(fmt.Sprintf("register notblank: %v", err))
		}
		if err := validate.RegisterValidation("finite", finite); err != nil {
			panic(fmt.Sprintf("register finite: %v", err))
		}
	})
	return validate
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return !field.IsZero()
	}
	return strings.TrimSpace(field.String()) != ""
}

// finite accepts strings that parse to a float64 which is neither infinite
// nor NaN.
func finite(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(field.String()), 64)
	return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Struct validates s and returns *Errors when any rule fails.
// A non-struct argument is a programming error and panics.
func Struct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		panic(fmt.Sprintf("validation: %v", err))
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Errors{Messages: []string{err.Error()}}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, translateError(fe))
	}
	return &Errors{Messages: messages}
}

// Bind decodes a JSON body into dst and validates it. An empty body is
// treated as an empty object so that missing fields are reported individually.
func Bind(body io.Reader, dst any) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return &Errors{Messages: []string{MsgInvalidBody}}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &Errors{Messages: []string{MsgInvalidBody}}
	}
	return Struct(dst)
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"notblank": "%s is required",
	"eqfield":  "%s not match",
	"oneof":    "%s invalid",
	"numeric":  "%s must be a number",
	"finite":   "%s must be a number",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, field)
	}
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s minimum %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s maximum %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
