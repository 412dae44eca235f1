package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"therapy-match/internal/domain"
)

// registerValidators agrega el tag `trait` al validator que usa gin y reporta
// los campos por su nombre JSON.
func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v.RegisterValidation("trait", func(fl validator.FieldLevel) bool {
		return domain.TraitCategory(fl.Field().String()).Valid()
	})
}
