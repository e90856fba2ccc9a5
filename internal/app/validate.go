package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hyperifyio/carrierscope/internal/schedule"
)

// FieldError names one invalid setting.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// ConfigErrors lists every invalid setting found by ValidateConfig.
type ConfigErrors []FieldError

func (e ConfigErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Error())
	}
	return "config: " + strings.Join(msgs, "; ")
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		return schedule.ParseSpec(fl.Field().String()) == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateConfig checks cfg against its struct tags and reports every
// invalid field.
func ValidateConfig(cfg Config) error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ConfigErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "cronspec":
		return fmt.Sprintf("%q is not a valid cron expression", fe.Value())
	}
	return "failed " + fe.Tag() + " check"
}
