package api

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var contactEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// requestValidate checks decoded request bodies. contact_email applies the
// same address grammar the client enforces, so anything the client accepts is
// accepted here.
var requestValidate = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return contactEmailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// contactRequest is the body of POST /contacts and PUT /contacts/{id}.
type contactRequest struct {
	Name     string `json:"name" validate:"notblank,max=200"`
	Email    string `json:"email" validate:"contact_email,max=320"`
	Phone    string `json:"phone" validate:"max=50"`
	Company  string `json:"company" validate:"max=200"`
	Favorite bool   `json:"favorite"`
}

// patchRequest is the body of PATCH /contacts/{id}.
type patchRequest struct {
	Name     *string `json:"name" validate:"omitnil,notblank,max=200"`
	Email    *string `json:"email" validate:"omitnil,contact_email,max=320"`
	Phone    *string `json:"phone" validate:"omitnil,max=50"`
	Company  *string `json:"company" validate:"omitnil,max=200"`
	Favorite *bool   `json:"favorite"`
}

// activityRequest is the body of POST /activityLogs.
type activityRequest struct {
	Action      string `json:"action" validate:"oneof=CREATE UPDATE DELETE FAVORITE UNFAVORITE"`
	ContactName string `json:"contactName" validate:"notblank,max=200"`
}

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return fe.Field() + " is required"
	case "contact_email":
		return fe.Field() + " format is invalid"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
