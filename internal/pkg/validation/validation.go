// Package validation turns gin binding failures into per-field messages
// that forms and JSON responses can show.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NonFieldKey collects errors that belong to no single field.
const NonFieldKey = "__all__"

// Errors maps a form field name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Any() bool { return len(e) > 0 }

// First returns the first message for field, for inline display.
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

var setupOnce sync.Once

// Setup makes validator report fields by their form tag names. It is safe
// to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}

// FromBinding converts err from c.ShouldBind into field errors. Errors that
// are not validation failures land under NonFieldKey.
func FromBinding(err error) Errors {
	out := Errors{}
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add(NonFieldKey, "Invalid form submission.")
		return out
	}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

// maxMemory bounds the multipart parts kept in memory; larger files spill
// to temp files.
const maxMemory = 32 << 20

// BindForm maps the request's form values onto obj, trims every string
// field and then validates, so whitespace-only input fails "required".
func BindForm(c *gin.Context, obj any) Errors {
	Setup()
	req := c.Request
	if err := req.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return FromBinding(err)
	}
	if err := binding.MapFormWithTag(obj, req.Form, "form"); err != nil {
		return FromBinding(err)
	}
	trimStrings(reflect.ValueOf(obj))
	return FromBinding(binding.Validator.ValidateStruct(obj))
}

func trimStrings(v reflect.Value) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "url":
		return "Enter a valid URL."
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	}
	return "Enter a valid value."
}
