// Package monitor is the interactive address book: a bubbletea model over the
// contact controller with a contact list, a stats header and an activity feed.
package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/marcus/rolo/internal/controller"
	"github.com/marcus/rolo/internal/models"
	"github.com/marcus/rolo/pkg/monitor/keymap"
)

// Model is the monitor's bubbletea model. The controller is shared between
// copies of the model and is safe for concurrent use by the commands it runs.
type Model struct {
	Ctrl            *controller.Controller
	Keymap          *keymap.Registry
	RefreshInterval time.Duration
	Version         string

	// Layout
	Width, Height int
	Cursor        int
	ScrollOffset  int

	// Search mode
	SearchMode   bool
	SearchInput  textinput.Model
	searchBefore string // keyword restored when the search is cancelled

	// Delete confirmation
	ConfirmOpen  bool
	ConfirmBulk  bool   // delete the whole selection rather than ConfirmID
	ConfirmID    string
	ConfirmTitle string

	// Add/edit form
	FormOpen  bool
	FormState *FormState

	// Detail modal
	DetailID     string
	DetailRender string // glamour output for DetailID, empty until rendered

	HelpOpen bool

	// Footer status
	StatusMessage string
	StatusIsError bool
	statusSeq     int

	Refreshing  bool
	LastRefresh time.Time
	Err         error // last refresh failure
}

// NewModel returns a monitor over ctrl. The first refresh is issued by Init.
func NewModel(ctrl *controller.Controller, keys *keymap.Registry, interval time.Duration, ver string) Model {
	ti := textinput.New()
	ti.Placeholder = "name, email or company"
	ti.Prompt = "/ "
	ti.CharLimit = 100

	return Model{
		Ctrl:            ctrl,
		Keymap:          keys,
		RefreshInterval: interval,
		Version:         ver,
		SearchInput:     ti,
		Refreshing:      true,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.scheduleTick())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Ticks are handled before the form intercepts messages so the refresh
	// chain survives an open form.
	if _, ok := msg.(TickMsg); ok {
		cmds := []tea.Cmd{m.scheduleTick()}
		if !m.Refreshing {
			m.Refreshing = true
			cmds = append(cmds, m.refresh())
		}
		return m, tea.Batch(cmds...)
	}

	switch msg := msg.(type) {
	case RefreshedMsg:
		m.Refreshing = false
		m.Err = msg.Err
		if msg.Err == nil {
			m.LastRefresh = msg.At
		}
		m.clampCursor()
		if m.DetailID != "" {
			if _, ok := m.Ctrl.Contact(m.DetailID); !ok {
				m.closeDetail()
			}
		}
		return m, nil

	case MutationDoneMsg:
		return m.handleMutationDone(msg)

	case DetailRenderedMsg:
		if msg.ContactID == m.DetailID {
			m.DetailRender = msg.Content
		}
		return m, nil

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMessage = ""
			m.StatusIsError = false
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.clampCursor()
		if !m.FormOpen {
			if m.DetailID != "" {
				return m, m.renderDetail(m.DetailID)
			}
			return m, nil
		}
	}

	if m.FormOpen && m.FormState != nil && m.FormState.Form != nil {
		return m.handleFormUpdate(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(keyMsg)
	}

	if m.SearchMode {
		var cmd tea.Cmd
		m.SearchInput, cmd = m.SearchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	return m.renderView()
}

// handleFormUpdate forwards messages to the huh form, intercepting the
// submit and cancel bindings.
func (m Model) handleFormUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if cmd, found := m.Keymap.Lookup(keyMsg, keymap.ContextForm); found {
			switch cmd {
			case keymap.CmdFormSubmit, keymap.CmdFormCancel:
				return m.executeCommand(cmd)
			case keymap.CmdQuit:
				if keyMsg.Type == tea.KeyCtrlC {
					return m, tea.Quit
				}
			}
		}
	}

	form, cmd := m.FormState.Form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.FormState.Form = f
	}

	switch m.FormState.Form.State {
	case huh.StateCompleted:
		return m.executeCommand(keymap.CmdFormSubmit)
	case huh.StateAborted:
		return m.executeCommand(keymap.CmdFormCancel)
	}
	return m, cmd
}

// handleMutationDone reports a mutation result. A rejected form is reopened
// with its values so the user can correct them.
func (m Model) handleMutationDone(msg MutationDoneMsg) (tea.Model, tea.Cmd) {
	m.clampCursor()
	if msg.Err != nil {
		if msg.Form != nil && !m.FormOpen {
			msg.Form.Reopen(msg.Err)
			m.FormState = msg.Form
			m.FormOpen = true
			return m, tea.Batch(m.FormState.Form.Init(), m.setStatus(describeError(msg.Err), true))
		}
		return m, m.setStatus(describeError(msg.Err), true)
	}

	var text string
	switch msg.Kind {
	case MutationCreate:
		text = "Added " + msg.Contact.Name
	case MutationUpdate:
		text = "Saved " + msg.Contact.Name
	case MutationFavorite:
		if msg.Contact.Favorite {
			text = "Favorited " + msg.Contact.Name
		} else {
			text = "Unfavorited " + msg.Contact.Name
		}
	case MutationDelete, MutationBulk:
		text = pluralize(len(msg.Deleted), "contact") + " deleted"
	}
	if m.DetailID != "" {
		if _, ok := m.Ctrl.Contact(m.DetailID); !ok {
			m.closeDetail()
		} else {
			return m, tea.Batch(m.setStatus(text, false), m.renderDetail(m.DetailID))
		}
	}
	return m, m.setStatus(text, false)
}

// setStatus shows text in the footer and schedules its removal.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.StatusMessage = text
	m.StatusIsError = isErr
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

// scheduleTick returns a command that sends a TickMsg after the refresh interval
func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.RefreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// currentContact returns the contact under the cursor.
func (m Model) currentContact() (models.Contact, bool) {
	rows := m.Ctrl.Projection()
	if m.Cursor < 0 || m.Cursor >= len(rows) {
		return models.Contact{}, false
	}
	return rows[m.Cursor], true
}

// targetContact is the contact an action applies to: the open detail, else
// the cursor row.
func (m Model) targetContact() (models.Contact, bool) {
	if m.DetailID != "" {
		return m.Ctrl.Contact(m.DetailID)
	}
	return m.currentContact()
}

func (m *Model) closeDetail() {
	m.DetailID = ""
	m.DetailRender = ""
}

// clampCursor keeps the cursor on a visible row after the projection changes.
func (m *Model) clampCursor() {
	n := len(m.Ctrl.Projection())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.ensureCursorVisible()
}

func (m *Model) moveCursor(delta int) {
	m.Cursor += delta
	m.clampCursor()
}

func (m *Model) ensureCursorVisible() {
	h := m.listHeight()
	if h <= 0 {
		return
	}
	if m.Cursor < m.ScrollOffset {
		m.ScrollOffset = m.Cursor
	}
	if m.Cursor >= m.ScrollOffset+h {
		m.ScrollOffset = m.Cursor - h + 1
	}
	if m.ScrollOffset < 0 {
		m.ScrollOffset = 0
	}
}
