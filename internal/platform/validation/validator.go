// Package validation binds request bodies into declarative gin/validator
// shapes and reports every violated field at once.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"internship_backend/internal/api"
)

// ContextPayload is the gin context key of the bound request payload.
const ContextPayload = "payload"

var setupOnce sync.Once

// Engine returns gin's validator configured with JSON/form field names and
// the custom rules below. Safe for concurrent use.
func Engine() *validator.Validate {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		panic("validation: gin validator engine is not go-playground/validator")
	}
	setupOnce.Do(func() {
		v.RegisterTagNameFunc(fieldName)
		if err := v.RegisterValidation("notblank", notBlank); err != nil {
			panic(err)
		}
	})
	return v
}

// fieldName reports json name, then form name, then the Go name.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func notBlank(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(fl.Field().String()) != ""
}

var messages = map[string]string{
	"required":    "%s is required",
	"required_if": "%s is required",
	"email":       "%s must be a valid email address",
	"notblank":    "%s must not be blank",
	"url":         "%s must be a valid URL",
	"numeric":     "%s must be numeric",
	"hexadecimal": "%s must be hexadecimal",
	"datetime":    "%s must be a valid date",
}

var messagesWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
	"len":   "%s must be exactly %s characters",
}

func translate(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if tmpl, ok := messages[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := messagesWithParam[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	isString := fe.Kind() == reflect.String
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

// FieldErrors converts validator errors into response entries in declaration order.
func FieldErrors(errs validator.ValidationErrors) []api.FieldError {
	out := make([]api.FieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, api.FieldError{Field: fe.Field(), Message: translate(fe)})
	}
	return out
}

// Respond writes the response for a binding error and aborts the chain.
func Respond(c *gin.Context, err error) {
	var (
		verrs   validator.ValidationErrors
		invalid *validator.InvalidValidationError
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &verrs):
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ValidationErrorResponse{Error: FieldErrors(verrs)})
	case errors.As(err, &invalid):
		slog.Error("validator misuse", "error", err, "path", c.FullPath())
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	case errors.As(err, &typeErr) && typeErr.Field != "":
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ValidationErrorResponse{Error: []api.FieldError{
			typeError(typeErr.Field, typeErr.Type),
		}})
	case errors.Is(err, io.EOF):
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: "request body is required"})
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: "malformed request body"})
	}
}

func typeError(field string, t reflect.Type) api.FieldError {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return api.FieldError{Field: field, Message: fmt.Sprintf("%s must be of type %s", field, t)}
}

// conversionErrors reports the fields whose raw value could not be converted
// to the target type. req is left bound with every other field so the
// remaining rules can still run. nil means err is not a conversion error.
func conversionErrors[T any](c *gin.Context, b binding.Binding, req *T, err error) []api.FieldError {
	var (
		verrs   validator.ValidationErrors
		invalid *validator.InvalidValidationError
		typeErr *json.UnmarshalTypeError
	)
	if errors.As(err, &verrs) || errors.As(err, &invalid) {
		return nil
	}
	if errors.As(err, &typeErr) {
		// encoding/json は型エラーの後もデコードを続けるので req は埋まっている
		if typeErr.Field == "" {
			return nil
		}
		return []api.FieldError{typeError(typeErr.Field, typeErr.Type)}
	}

	var values map[string][]string
	switch b.Name() {
	case binding.Form.Name(), binding.FormMultipart.Name():
		values = c.Request.Form
	case binding.Query.Name():
		values = c.Request.URL.Query()
	default:
		return nil
	}
	if len(values) == 0 {
		return nil
	}

	// フィールド単位で変換を試し、失敗したキーを外して再バインドする
	var (
		out  []api.FieldError
		rest = make(map[string][]string, len(values))
	)
	for k, v := range values {
		rest[k] = v
	}
	for _, f := range formFields(reflect.TypeOf(req).Elem()) {
		vals, ok := values[f.name]
		if !ok {
			continue
		}
		if binding.MapFormWithTag(new(T), map[string][]string{f.name: vals}, "form") != nil {
			out = append(out, typeError(f.name, f.typ))
			delete(rest, f.name)
		}
	}
	if len(out) == 0 {
		return nil
	}
	*req = *new(T)
	if binding.MapFormWithTag(req, rest, "form") != nil {
		return nil
	}
	return out
}

type formField struct {
	name string
	typ  reflect.Type
}

func formFields(t reflect.Type) []formField {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var out []formField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		switch {
		case name == "-" || !f.IsExported():
		case f.Anonymous && name == "":
			out = append(out, formFields(f.Type)...)
		case name == "":
			out = append(out, formField{name: f.Name, typ: f.Type})
		default:
			out = append(out, formField{name: name, typ: f.Type})
		}
	}
	return out
}

// remaining validates the partly bound req, skipping fields that already
// failed conversion.
func remaining(req any, failed []api.FieldError) []api.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(Engine().Struct(req), &verrs) {
		return nil
	}
	skip := make(map[string]bool, len(failed))
	for _, f := range failed {
		skip[f.Field] = true
	}
	out := make([]api.FieldError, 0, len(verrs))
	for _, fe := range FieldErrors(verrs) {
		if !skip[fe.Field] {
			out = append(out, fe)
		}
	}
	return out
}

// JSON validates the JSON body against T and stores *T on the context.
func JSON[T any]() gin.HandlerFunc {
	Engine()
	return bind[T](binding.JSON)
}

// Form validates multipart / urlencoded form fields against T.
// File parts are ignored; the upload gate handles those.
func Form[T any]() gin.HandlerFunc {
	Engine()
	return func(c *gin.Context) {
		b := binding.Form
		if strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm) {
			b = binding.FormMultipart
		}
		bind[T](b)(c)
	}
}

// Query validates URL query parameters against T.
func Query[T any]() gin.HandlerFunc {
	Engine()
	return bind[T](binding.Query)
}

func bind[T any](b binding.Binding) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := new(T)
		if err := c.ShouldBindWith(req, b); err != nil {
			if fields := conversionErrors(c, b, req, err); len(fields) > 0 {
				fields = append(fields, remaining(req, fields)...)
				c.AbortWithStatusJSON(http.StatusBadRequest, api.ValidationErrorResponse{Error: fields})
				return
			}
			Respond(c, err)
			return
		}
		c.Set(ContextPayload, req)
		c.Next()
	}
}

// Payload returns the payload stored by JSON, Form or Query.
func Payload[T any](c *gin.Context) (*T, bool) {
	v, ok := c.Get(ContextPayload)
	if !ok {
		return nil, false
	}
	p, ok := v.(*T)
	return p, ok
}
