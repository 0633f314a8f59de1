package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON binds and validates the body. Malformed JSON is a 400; a body
// that parses but fails the binding tags is a 422 with per-field details.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err == nil {
		return true
	}

	var validatorErrs validator.ValidationErrors

	if errors.As(err, &validatorErrs) {
		fields := make([]FieldError, 0, len(validatorErrs))

		for _, fe := range validatorErrs {
			rule := fe.Tag()
			param := fe.Param()

			fields = append(fields, FieldError{
				Field:   jsonFieldName(fe.Field()),
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}

		RespondUnprocessable(ctx, "Validation failed", gin.H{"fields": fields})
		return false
	}

	var typeErr *json.UnmarshalTypeError

	if errors.As(err, &typeErr) {
		RespondBadRequest(ctx, "Invalid request body", gin.H{
			"json":  "invalid_json_type",
			"field": typeErr.Field,
		})
		return false
	}

	RespondBadRequest(ctx, "Invalid request body", gin.H{"json": "invalid_json_syntax"})
	return false
}

// the struct field names line up with their json tags except for casing
func jsonFieldName(structField string) string {
	if structField == "" {
		return structField
	}

	return strings.ToLower(structField[:1]) + structField[1:]
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
