package utils

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the `cedula` and `dophone` binding tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("cedula", func(fl validator.FieldLevel) bool {
		return ValidateCedula(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("dophone", func(fl validator.FieldLevel) bool {
		_, ok := NormalizePhone(fl.Field().String())
		return ok
	})
}
