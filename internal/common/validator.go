package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GenericEchoValidator runs struct tag validation for echo handlers.
type GenericEchoValidator struct {
	validator *validator.Validate
}

func NewEchoValidator() *GenericEchoValidator {
	return &GenericEchoValidator{validator: validator.New()}
}

func (gv *GenericEchoValidator) Validate(i interface{}) error {
	if err := gv.validator.Struct(i); err != nil {
		fields := InvalidFields(err)
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("received invalid request body: %s", strings.Join(fields, ", "))).SetInternal(err)
	}
	return nil
}

// InvalidFields lists the failing fields as "Field (tag)".
// Errors that are not validation errors yield nil.
func InvalidFields(err error) []string {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Internal != nil {
		err = httpErr.Internal
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	fields := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
	}
	return fields
}
