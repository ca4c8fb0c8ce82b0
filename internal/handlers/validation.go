package handlers

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerOnce sync.Once

// RegisterValidators installs the custom rules on gin's validator engine.
// It is safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		// decimal.Decimal is a struct, so gt=0 cannot be used on it.
		err = v.RegisterValidation("dgt0", func(fl validator.FieldLevel) bool {
			d, ok := fl.Field().Interface().(decimal.Decimal)
			return ok && d.IsPositive()
		})
	})
	return err
}

func jsonFieldName(f reflect.StructField) string {
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

var validationMessages = map[string]string{
	"required": "is required",
	"dgt0":     "must be a positive amount",
	"gt":       "must be greater than %s",
	"gte":      "must be at least %s",
	"lte":      "must be at most %s",
	"max":      "must be at most %s characters",
	"oneof":    "must be one of [%s]",
	"iso4217":  "must be an ISO 4217 currency code",
	"datetime": "must be a date formatted as %s",
	"nefield":  "must differ from %s",
	"hexcolor": "must be a hex color",
}

func validationMessage(errs validator.ValidationErrors) string {
	fe := errs[0]
	msg, ok := validationMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed %q check", fe.Field(), fe.Tag())
	}
	if strings.Contains(msg, "%s") {
		msg = fmt.Sprintf(msg, fe.Param())
	}
	return fe.Field() + " " + msg
}
