package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "meeting-transcriber/internal/api/errors"
)

// ValidateQuery binds query parameters into req and validates its struct tags.
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		fields := make(map[string]string)

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, fieldError := range validationErrs {
				field := toSnakeCase(fieldError.Field())
				switch fieldError.Tag() {
				case "required":
					fields[field] = "is required"
				case "min", "gte":
					fields[field] = "must be at least " + fieldError.Param()
				case "max", "lte":
					fields[field] = "must be at most " + fieldError.Param()
				default:
					fields[field] = "is invalid"
				}
			}
			return apierrors.NewValidationError("Invalid query parameters", fields)
		}

		fields["query"] = err.Error()
		return apierrors.NewValidationError("Invalid query parameters", fields)
	}
	return nil
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
