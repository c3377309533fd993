package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON decodes the request body into out and answers the request itself
// on failure, turning bind and validator errors into one readable message.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		RespondBadRequest(ctx, bindErrorMessage(err))
		return false
	}

	return true
}

func bindErrorMessage(err error) string {
	var (
		validatorErrs validator.ValidationErrors
		syntaxErr     *json.SyntaxError
		typeErr       *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &validatorErrs) && len(validatorErrs) > 0:
		// the first failed rule makes the message; one problem at a time
		fe := validatorErrs[0]
		return strings.ToLower(fe.Field()) + " " + ruleMessage(fe.Tag(), fe.Param())

	case errors.As(err, &syntaxErr):
		return "request body is not valid JSON"

	case errors.As(err, &typeErr):
		if field := strings.TrimSpace(typeErr.Field); field != "" {
			return fmt.Sprintf("%s must be of type %s", field, typeErr.Type.String())
		}
		return "request body has a field of the wrong type"
	}

	return "invalid request body"
}

var ruleMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
	"len":      "must be exactly %s",
	"oneof":    "must be one of %s",
}

func ruleMessage(rule, param string) string {
	tmpl, ok := ruleMessages[rule]

	if !ok {
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}

	if rule == "oneof" {
		param = strings.ReplaceAll(param, " ", ", ")
	}

	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, param)
	}

	return tmpl
}
