// Package forms turns submitted request values into validated field sets.
//
// A form is bound by echo, cleaned with Clean, and either yields model
// values or an Errors map that templates render next to each field.
package forms

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// NonField is the Errors key for errors that belong to no single field.
const NonField = "__all__"

// Validator is satisfied by echo.Validator and validators.CustomValidator.
type Validator interface {
	Validate(i interface{}) error
}

// Errors maps a form field name to its messages.
type Errors map[string][]string

// Add appends a message for field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Get returns the messages for field.
func (e Errors) Get(field string) []string {
	return e[field]
}

// Has reports whether field has any message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Any reports whether the form failed.
func (e Errors) Any() bool {
	return len(e) > 0
}

// collect runs v over form and converts validation failures to messages.
func collect(v Validator, form interface{}) Errors {
	errs := Errors{}
	err := v.Validate(form)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(NonField, err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "numeric":
		return "Select a valid choice."
	}
	return "Enter a valid value."
}
