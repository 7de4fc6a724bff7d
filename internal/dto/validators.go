package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// currencyCodeRx matches ISO 4217 alphabetic codes.
var currencyCodeRx = regexp.MustCompile(`^[A-Z]{3}$`)

// The custom binding rules live next to the request types that use them, so
// any binary that binds these DTOs gets them registered.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			return currencyCodeRx.MatchString(fl.Field().String())
		})
	}
}
