package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// ReadAndValidateRequest binds the request body, applies struct defaults, and
// validates. Returns nil on success or a []ValidationError payload.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) interface{} {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, describeFieldError(fe))
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprintf("%v", he.Message)
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: msg}}
}

// describeFieldError builds a human-readable message and machine-readable
// params for a single failed validation rule.
func describeFieldError(fe validator.FieldError) ValidationError {
	field := fe.Field()
	ve := ValidationError{
		Code:   "ERR_" + strings.ToUpper(fe.Tag()),
		Field:  field,
		Params: map[string]interface{}{},
	}

	isString := fe.Type().Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		ve.Message = fmt.Sprintf("%s is required", field)
	case "min":
		ve.Params["min"] = fe.Param()
		if isString {
			ve.Message = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		} else {
			ve.Message = fmt.Sprintf("%s must be at least %s", field, fe.Param())
		}
	case "max":
		ve.Params["max"] = fe.Param()
		if isString {
			ve.Message = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		} else {
			ve.Message = fmt.Sprintf("%s must be at most %s", field, fe.Param())
		}
	case "gte":
		ve.Params["min"] = fe.Param()
		ve.Message = fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		ve.Params["max"] = fe.Param()
		ve.Message = fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		ve.Params["value"] = fe.Param()
		ve.Message = fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lt":
		ve.Params["value"] = fe.Param()
		ve.Message = fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "oneof":
		ve.Params["options"] = strings.Split(fe.Param(), " ")
		ve.Message = fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		ve.Message = fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}

	return ve
}
