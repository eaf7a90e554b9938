// Package validation wraps go-playground/validator with the field-level
// error reporting the API contract promises: every invalid field maps to a
// {path, message} pair in the 400 response body.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError is one field-level validation failure.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// SignUpInput carries the multipart sign-up fields. Username and email are
// expected to be lowercased by the caller before validation.
type SignUpInput struct {
	Name     string `validate:"required,max=50"`
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=50"`
}

// SignInInput carries the sign-in JSON body.
type SignInInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=50"`
}

// UpdateUserInput carries the profile-edit JSON body.
type UpdateUserInput struct {
	Name     string `validate:"required,max=50"`
	Username string `validate:"required,min=3,max=50"`
}

// CategoryInput carries the category create/update fields.
type CategoryInput struct {
	Name        string `validate:"required,max=50"`
	LabelText   string `validate:"required,max=50"`
	Description string `validate:"max=500"`
}

// ColorInput carries the color create/update JSON body.
type ColorInput struct {
	Name       string `validate:"required,max=50"`
	Hex        string `validate:"required,hexcolor"`
	CategoryID string `validate:"required"`
}

// SizeInput carries the size create/update JSON body.
type SizeInput struct {
	Name       string `validate:"required,max=50"`
	Value      string `validate:"required,max=50"`
	CategoryID string `validate:"required"`
}

// Check validates a struct and returns its field errors, nil when valid.
func Check(v any) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Path: "", Message: "Invalid request body"}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Path:    jsonPath(fe.Field()),
			Message: messageFor(fe),
		})
	}
	return out
}

// messageFor keeps the exact copy the dashboard shows next to each field.
func messageFor(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please enter a valid email address"
	case "hexcolor":
		return "Please enter a valid hex code"
	case "min":
		return field + " must be at least " + fe.Param() + " characters long"
	case "max":
		return field + " must be at most " + fe.Param() + " characters long"
	}
	return field + " is invalid"
}

// jsonPath converts a Go field name into the JSON key clients sent
// (CategoryID -> categoryId, LabelText -> labelText).
func jsonPath(field string) string {
	s := strings.ReplaceAll(field, "ID", "Id")
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
