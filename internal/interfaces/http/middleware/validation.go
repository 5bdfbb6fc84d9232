package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/lastmile/backend/internal/interfaces/http/dto"
)

// RequestIDKey is the gin context key the request ID middleware writes to.
const RequestIDKey = "X-Request-ID"

// SetupValidator makes validation errors report the wire-level field name
// (the json or form tag) instead of the Go struct field name.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
}

// FormatValidationErrors converts a binding error into the standard error
// payload. Validator errors become one detail per failed field; anything
// else (malformed JSON, type mismatches) is reported as a single message.
func FormatValidationErrors(err error, requestID string) dto.Response {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return dto.NewValidationErrorResponse(err.Error(), requestID, nil)
	}

	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: messageForTag(e),
		})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 with the formatted validation payload.
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestIDFrom(c)))
}

func requestIDFrom(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// tagMessages maps validator tags to message templates. %s is the tag
// parameter, where the tag takes one.
var tagMessages = map[string]string{
	"required": "This field is required",
	"min":      "Must be at least %s",
	"max":      "Must be at most %s",
	"len":      "Must be exactly %s characters",
	"oneof":    "Must be one of: %s",
	"gte":      "Must be greater than or equal to %s",
	"lte":      "Must be less than or equal to %s",
	"gt":       "Must be greater than %s",
	"lt":       "Must be less than %s",
	"uuid":     "Must be a valid UUID",
	"email":    "Must be a valid email address",
	"numeric":  "Must be a number",
	"alphanum": "Must contain only letters and numbers",
}

func messageForTag(e validator.FieldError) string {
	tmpl, ok := tagMessages[e.Tag()]
	if !ok {
		return fmt.Sprintf("Failed validation: %s", e.Tag())
	}
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, e.Param())
	}
	return tmpl
}
