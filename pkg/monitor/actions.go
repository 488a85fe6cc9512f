package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/rolo/internal/models"
	"github.com/marcus/rolo/internal/mutation"
	"github.com/marcus/rolo/internal/output"
)

// The commands below run store I/O off the UI loop. The controller applies
// optimistic state itself, so the view already reflects a mutation while its
// command is in flight.

// refresh reloads contacts and activity.
func (m Model) refresh() tea.Cmd {
	ctrl := m.Ctrl
	return func() tea.Msg {
		err := ctrl.Refresh(context.Background())
		return RefreshedMsg{Err: err, At: time.Now()}
	}
}

func (m Model) createContact(fs *FormState) tea.Cmd {
	ctrl := m.Ctrl
	draft := fs.Draft()
	return func() tea.Msg {
		c, err := ctrl.Create(context.Background(), draft)
		return MutationDoneMsg{Kind: MutationCreate, Contact: c, Err: err, Form: fs}
	}
}

func (m Model) updateContact(fs *FormState) tea.Cmd {
	ctrl := m.Ctrl
	id, draft := fs.ContactID, fs.Draft()
	return func() tea.Msg {
		c, err := ctrl.Update(context.Background(), id, draft)
		return MutationDoneMsg{Kind: MutationUpdate, Contact: c, Err: err, Form: fs}
	}
}

func (m Model) deleteContact(id string) tea.Cmd {
	ctrl := m.Ctrl
	return func() tea.Msg {
		err := ctrl.Delete(context.Background(), id)
		msg := MutationDoneMsg{Kind: MutationDelete, Err: err}
		if err == nil {
			msg.Deleted = []string{id}
		}
		return msg
	}
}

func (m Model) deleteSelected() tea.Cmd {
	ctrl := m.Ctrl
	return func() tea.Msg {
		deleted, err := ctrl.DeleteSelected(context.Background())
		return MutationDoneMsg{Kind: MutationBulk, Deleted: deleted, Err: err}
	}
}

func (m Model) toggleFavorite(id string) tea.Cmd {
	ctrl := m.Ctrl
	return func() tea.Msg {
		c, err := ctrl.ToggleFavorite(context.Background(), id)
		return MutationDoneMsg{Kind: MutationFavorite, Contact: c, Err: err}
	}
}

// renderDetail renders the detail markdown for id with glamour.
func (m Model) renderDetail(id string) tea.Cmd {
	ctrl := m.Ctrl
	width := m.detailWidth() - 4
	return func() tea.Msg {
		d, err := ctrl.Detail(id)
		if err != nil {
			return nil
		}
		md := output.ContactMarkdown(d.Contact, d.Recent)
		rendered, err := output.RenderMarkdownWithWidth(md, width)
		if err != nil {
			rendered = md
		}
		return DetailRenderedMsg{ContactID: id, Content: strings.TrimSpace(rendered)}
	}
}

// describeError turns a mutation or refresh error into a footer message.
func describeError(err error) string {
	var ve *mutation.ValidationError
	var pf *mutation.PartialBulkFailure
	switch {
	case errors.As(err, &ve):
		msgs := make([]string, len(ve.Fields))
		for i, f := range ve.Fields {
			msgs[i] = f.Message
		}
		return strings.Join(msgs, "; ")
	case errors.As(err, &pf):
		return fmt.Sprintf("Deleted %d, failed %d: %s",
			len(pf.Succeeded), len(pf.Failed), strings.Join(pf.FailedIDs(), ", "))
	case errors.Is(err, mutation.ErrMutationInFlight):
		return "Busy: that contact is still being saved"
	default:
		return err.Error()
	}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func sortLabel(k models.SortKey) string {
	switch k {
	case models.SortNameAsc:
		return "name A→Z"
	case models.SortNameDesc:
		return "name Z→A"
	case models.SortCompany:
		return "company"
	default:
		return "insertion order"
	}
}
