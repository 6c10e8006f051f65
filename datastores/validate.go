package datastores

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidate() //nolint: gochecknoglobals // validator caches struct metadata

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	err := v.RegisterValidation("notblank", validators.NotBlank)
	if err != nil {
		panic(err)
	}
	return v
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	default:
		return "failed on " + e.Tag()
	}
}

// validateContact returns an error wrapping [ErrInvalidObject] that names
// every offending field.
func validateContact(c *Contact) error {
	if c == nil {
		return fmt.Errorf("%w: no contact given", ErrInvalidObject)
	}

	err := validate.Struct(c)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, e.Field()+": "+validationMessage(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalidObject, strings.Join(msgs, ", "))
}

// validateUpdate also requires the ID to be set.
func validateUpdate(c *Contact) error {
	err := validateContact(c)
	if err != nil {
		return err
	}
	if c.ID <= 0 {
		return fmt.Errorf("%w: id: field is required", ErrInvalidObject)
	}
	return nil
}
