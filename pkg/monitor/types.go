package monitor

import (
	"time"

	"github.com/marcus/rolo/internal/models"
)

// Minimum dimensions for the full layout
const (
	MinWidth  = 50
	MinHeight = 15
)

// statusTTL is how long a status message stays in the footer.
const statusTTL = 4 * time.Second

// TickMsg triggers a periodic refresh
type TickMsg time.Time

// RefreshedMsg reports the end of a refresh
type RefreshedMsg struct {
	Err error
	At  time.Time
}

// MutationKind names the user action a MutationDoneMsg reports on
type MutationKind string

const (
	MutationCreate   MutationKind = "create"
	MutationUpdate   MutationKind = "update"
	MutationDelete   MutationKind = "delete"
	MutationBulk     MutationKind = "bulk-delete"
	MutationFavorite MutationKind = "favorite"
)

// MutationDoneMsg carries the outcome of a mutation run off the UI loop
type MutationDoneMsg struct {
	Kind    MutationKind
	Contact models.Contact // create, update, favorite
	Deleted []string       // delete, bulk-delete
	Err     error

	// Form is the submitted form, reopened when the store rejects it.
	Form *FormState
}

// DetailRenderedMsg carries pre-rendered markdown for the detail modal
type DetailRenderedMsg struct {
	ContactID string
	Content   string
}

// ClearStatusMsg clears the status message it was scheduled for
type ClearStatusMsg struct {
	Seq int
}
