package controllers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/amaumene/zoetrope/internal/models"
)

var (
	// ErrNotFound is returned when the requested item does not exist
	ErrNotFound = models.ErrNotFound

	// ErrInvalidInput wraps every validation failure
	ErrInvalidInput = errors.New("invalid input")

	// ErrSearchUnavailable is returned when TMDB is not configured or not reachable
	ErrSearchUnavailable = errors.New("search unavailable")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// validateStruct runs the struct's validate tags and folds failures into ErrInvalidInput
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return invalidf("%s", strings.Join(msgs, "; "))
}
