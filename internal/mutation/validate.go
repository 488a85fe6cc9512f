package mutation

import (
	"regexp"
	"strings"

	"github.com/marcus/rolo/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks a draft against the existing collection. currentID is the
// contact being edited ("" for a create) and is exempt from the uniqueness
// checks. All rules run; every violation is reported in one ValidationError.
func Validate(draft models.ContactDraft, existing []models.Contact, currentID string) error {
	d := draft.Trimmed()
	var fields []FieldError

	if d.Name == "" {
		fields = append(fields, FieldError{Field: "name", Message: "name is required"})
	}

	switch {
	case d.Email == "":
		fields = append(fields, FieldError{Field: "email", Message: "email is required"})
	case !emailPattern.MatchString(d.Email):
		fields = append(fields, FieldError{Field: "email", Message: "email format is invalid"})
	default:
		for _, c := range existing {
			if c.ID != currentID && strings.EqualFold(c.Email, d.Email) {
				fields = append(fields, FieldError{Field: "email", Message: "email already exists"})
				break
			}
		}
	}

	if d.Phone != "" {
		for _, c := range existing {
			if c.ID != currentID && c.Phone == d.Phone {
				fields = append(fields, FieldError{Field: "phone", Message: "phone is already in use"})
				break
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
