package monitor

import (
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/marcus/rolo/internal/models"
	"github.com/marcus/rolo/internal/mutation"
)

// FormMode represents the mode of the form
type FormMode string

const (
	FormModeCreate FormMode = "create"
	FormModeEdit   FormMode = "edit"
)

// FormState holds a contact form and the values it edits
type FormState struct {
	Mode      FormMode
	Form      *huh.Form
	ContactID string // edit mode only

	// Bound form values
	Name    string
	Email   string
	Phone   string
	Company string

	// Err is the last rejection from the store, shown above the form.
	Err string
}

// NewFormState returns a form for creating a contact, or for editing c when
// mode is FormModeEdit.
func NewFormState(mode FormMode, c *models.Contact) *FormState {
	fs := &FormState{Mode: mode}
	if c != nil {
		fs.ContactID = c.ID
		fs.Name = c.Name
		fs.Email = c.Email
		fs.Phone = c.Phone
		fs.Company = c.Company
	}
	fs.buildForm()
	return fs
}

// buildForm constructs the huh.Form over the bound values. Calling it again
// resets the form state but keeps the values.
func (fs *FormState) buildForm() {
	title := "New Contact"
	if fs.Mode == FormModeEdit {
		title = "Edit Contact: " + fs.ContactID
	}

	fs.Form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fs.Name).
				Placeholder("Full name").
				Validate(fs.fieldValidator("name")),
			huh.NewInput().
				Title("Email").
				Value(&fs.Email).
				Placeholder("name@example.com").
				Validate(fs.fieldValidator("email")),
			huh.NewInput().
				Title("Phone").
				Value(&fs.Phone).
				Placeholder("Optional"),
			huh.NewInput().
				Title("Company").
				Value(&fs.Company).
				Placeholder("Optional"),
		).Title(title),
	).WithShowHelp(false)

	fs.Form.WithTheme(huh.ThemeDracula())
}

// fieldValidator checks one field in isolation. Uniqueness needs the whole
// collection and is left to the submit.
func (fs *FormState) fieldValidator(field string) func(string) error {
	return func(s string) error {
		d := fs.Draft()
		switch field {
		case "name":
			d.Name = s
		case "email":
			d.Email = s
		}
		err := mutation.Validate(d, nil, fs.ContactID)
		var ve *mutation.ValidationError
		if errors.As(err, &ve) {
			if fe, ok := ve.Field(field); ok {
				return errors.New(fe.Message)
			}
		}
		return nil
	}
}

// Reopen resets a submitted form so it can be edited again, showing err.
func (fs *FormState) Reopen(err error) {
	fs.Err = err.Error()
	fs.buildForm()
}

// Draft returns the trimmed form values.
func (fs *FormState) Draft() models.ContactDraft {
	return models.ContactDraft{
		Name:    fs.Name,
		Email:   fs.Email,
		Phone:   fs.Phone,
		Company: fs.Company,
	}.Trimmed()
}
