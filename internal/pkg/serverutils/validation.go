package serverutils

import (
	"fmt"
	"strings"

	"doc-intelligence-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks the struct tags on a request DTO and converts
// violations into a validation error the error handler maps to 400.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Validation("%s", err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, fmt.Sprintf("field %s failed on %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return apperror.Validation("%s", strings.Join(messages, "; "))
}
