package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// schoolYearPattern matches labels like "2024-25".
var schoolYearPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("school_year", func(fl validator.FieldLevel) bool {
			return schoolYearPattern.MatchString(fl.Field().String())
		})
	}
}
