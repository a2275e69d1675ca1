package handlers

import (
	"sync"

	"nexusboard/internal/service"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by the request
// schemas: notblank and isodate.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			return service.IsISODate(fl.Field().String())
		})
	})
}
