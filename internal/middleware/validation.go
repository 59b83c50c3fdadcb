package middleware

import (
	"reflect"
	"strings"
	"sync"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators configures gin's validator: field errors are reported
// under their json/form names and the "semester" tag accepts sem1..sem8.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(tagName)
		_ = v.RegisterValidation("semester", func(fl validator.FieldLevel) bool {
			return models.IsSemesterLabel(fl.Field().String())
		})
	})
}

func tagName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
