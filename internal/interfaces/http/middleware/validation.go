package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/omishoninjp-sys/helpshipping/internal/domain/member"
)

// SetupValidator configures gin's validator with the custom member code
// rule and JSON-tag field names in error messages
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	// gcode: "G" plus a positive number, prefix and case tolerant
	v.RegisterValidation("gcode", func(fl validator.FieldLevel) bool {
		_, err := member.ParseCode(fl.Field().String())
		return err == nil
	})
}
