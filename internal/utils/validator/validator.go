package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// usernameRegexp allows lowercase letters, digits, dots and underscores,
// starting with a letter. Uppercase is rejected rather than folded so the
// stored username is exactly what the user typed.
var usernameRegexp = regexp.MustCompile(`^[a-z][a-z0-9._]{2,29}$`)

// RegisterCustomValidators installs the custom binding rules into gin's
// validator engine and makes validation errors report json field names.
// Called once from the composition root.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v.RegisterValidation("username", validUsername)
}

func validUsername(fl validator.FieldLevel) bool {
	return usernameRegexp.MatchString(fl.Field().String())
}

// Describe renders one validation failure as a human-readable message keyed
// to its rule.
func Describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters long"
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	case "uuid":
		return "must be a valid UUID"
	case "jwt":
		return "must be a valid token"
	case "username":
		return "must start with a letter and contain only lowercase letters, digits, dots and underscores"
	default:
		return "failed validation on rule '" + fe.Tag() + "'"
	}
}
