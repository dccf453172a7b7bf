package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"mailflow/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("steptype", func(fl validator.FieldLevel) bool {
		return models.StepType(fl.Field().String()).IsValid()
	})
	return v
}

// ValidateStruct checks s against its validate tags and returns one error
// listing every failed field.
func ValidateStruct(s interface{}) error {
	return formatValidationError(validate.Struct(s), "")
}

// ValidateVar checks a single value against tag. name is used in the
// message.
func ValidateVar(value interface{}, tag, name string) error {
	return formatValidationError(validate.Var(value, tag), name)
}

func formatValidationError(err error, name string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		if field == "" {
			field = name
		}
		param := e.Param()

		switch e.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "min", "gte":
			messages = append(messages, field+" must be at least "+param)
		case "max", "lte":
			messages = append(messages, field+" must be at most "+param)
		case "email":
			messages = append(messages, field+" must be a valid email")
		case "url":
			messages = append(messages, field+" must be a valid URL")
		case "oneof":
			messages = append(messages, field+" must be one of "+param)
		case "steptype":
			messages = append(messages, field+" is not a known step type")
		case "len":
			messages = append(messages, field+" must be exactly "+param+" characters")
		default:
			messages = append(messages, field+" is invalid")
		}
	}
	return fmt.Errorf("%s", strings.Join(messages, ", "))
}
