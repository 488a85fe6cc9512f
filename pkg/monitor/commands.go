package monitor

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/rolo/pkg/monitor/keymap"
)

// currentContext returns the keymap context based on current UI state
func (m Model) currentContext() keymap.Context {
	switch {
	case m.HelpOpen:
		return keymap.ContextHelp
	case m.ConfirmOpen:
		return keymap.ContextConfirm
	case m.FormOpen:
		return keymap.ContextForm
	case m.DetailID != "":
		return keymap.ContextDetail
	case m.SearchMode:
		return keymap.ContextSearch
	default:
		return keymap.ContextMain
	}
}

// handleKey processes key input using the keymap registry
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := m.currentContext()

	// Search mode: only search bindings and ctrl+c are commands, every other
	// key edits the input.
	if ctx == keymap.ContextSearch {
		if cmd, found := m.Keymap.Lookup(msg, ctx); found {
			switch cmd {
			case keymap.CmdSearchConfirm, keymap.CmdSearchCancel, keymap.CmdSearchClear:
				return m.executeCommand(cmd)
			case keymap.CmdQuit:
				if msg.Type == tea.KeyCtrlC {
					return m, tea.Quit
				}
			}
		}

		var inputCmd tea.Cmd
		m.SearchInput, inputCmd = m.SearchInput.Update(msg)
		if kw := m.SearchInput.Value(); kw != m.Ctrl.View().Keyword {
			m.Ctrl.SetKeyword(kw)
			m.Cursor = 0
			m.ScrollOffset = 0
		}
		return m, inputCmd
	}

	cmd, found := m.Keymap.Lookup(msg, ctx)
	if !found {
		return m, nil
	}
	return m.executeCommand(cmd)
}

// executeCommand executes a keymap command and returns the updated model and any tea.Cmd
func (m Model) executeCommand(cmd keymap.Command) (tea.Model, tea.Cmd) {
	switch cmd {
	case keymap.CmdQuit:
		return m, tea.Quit

	case keymap.CmdToggleHelp:
		m.HelpOpen = !m.HelpOpen
		return m, nil

	case keymap.CmdRefresh:
		if m.Refreshing {
			return m, nil
		}
		m.Refreshing = true
		return m, m.refresh()

	// Navigation
	case keymap.CmdCursorDown:
		m.moveCursor(1)
	case keymap.CmdCursorUp:
		m.moveCursor(-1)
	case keymap.CmdCursorTop:
		m.Cursor = 0
		m.clampCursor()
	case keymap.CmdCursorBottom:
		m.Cursor = len(m.Ctrl.Projection()) - 1
		m.clampCursor()
	case keymap.CmdHalfPageDown:
		m.moveCursor(max(1, m.listHeight()/2))
	case keymap.CmdHalfPageUp:
		m.moveCursor(-max(1, m.listHeight()/2))
	case keymap.CmdClose:
		m.closeDetail()

	// Search
	case keymap.CmdSearch:
		m.SearchMode = true
		m.searchBefore = m.Ctrl.View().Keyword
		m.SearchInput.SetValue(m.searchBefore)
		m.SearchInput.CursorEnd()
		return m, m.SearchInput.Focus()
	case keymap.CmdSearchConfirm:
		m.SearchMode = false
		m.SearchInput.Blur()
	case keymap.CmdSearchCancel:
		m.SearchMode = false
		m.SearchInput.Blur()
		m.SearchInput.SetValue(m.searchBefore)
		m.Ctrl.SetKeyword(m.searchBefore)
		m.clampCursor()
	case keymap.CmdSearchClear:
		m.SearchInput.SetValue("")
		if m.Ctrl.View().Keyword != "" {
			m.Ctrl.SetKeyword("")
			m.clampCursor()
		}

	// View
	case keymap.CmdCycleSort:
		key := m.Ctrl.CycleSortKey()
		m.clampCursor()
		return m, m.setStatus("Sort: "+sortLabel(key), false)
	case keymap.CmdToggleFavoritesOnly:
		on := m.Ctrl.ToggleFavoritesOnly()
		m.Cursor = 0
		m.clampCursor()
		if on {
			return m, m.setStatus("Showing favorites only", false)
		}
		return m, m.setStatus("Showing all contacts", false)
	case keymap.CmdOpenDetails:
		c, ok := m.currentContact()
		if !ok {
			return m, nil
		}
		m.DetailID = c.ID
		m.DetailRender = ""
		return m, m.renderDetail(c.ID)

	// Selection
	case keymap.CmdToggleSelect:
		if c, ok := m.currentContact(); ok {
			m.Ctrl.ToggleSelect(c.ID)
			m.moveCursor(1)
		}
	case keymap.CmdToggleAllVisible:
		m.Ctrl.ToggleAllVisible()
	case keymap.CmdClearSelection:
		m.Ctrl.ClearSelection()

	// Mutations
	case keymap.CmdNewContact:
		m.FormState = NewFormState(FormModeCreate, nil)
		m.FormOpen = true
		return m, m.FormState.Form.Init()
	case keymap.CmdEditContact:
		c, ok := m.targetContact()
		if !ok {
			return m, nil
		}
		m.FormState = NewFormState(FormModeEdit, &c)
		m.FormOpen = true
		return m, m.FormState.Form.Init()
	case keymap.CmdToggleFavorite:
		c, ok := m.targetContact()
		if !ok {
			return m, nil
		}
		return m, m.toggleFavorite(c.ID)
	case keymap.CmdDelete:
		c, ok := m.currentContact()
		if !ok {
			return m, nil
		}
		m.ConfirmOpen = true
		m.ConfirmBulk = false
		m.ConfirmID = c.ID
		m.ConfirmTitle = fmt.Sprintf("Delete %s?", c.Name)
	case keymap.CmdDeleteSelected:
		n := m.Ctrl.SelectionState().Count
		if n == 0 {
			return m, m.setStatus("No contacts selected", true)
		}
		m.ConfirmOpen = true
		m.ConfirmBulk = true
		m.ConfirmID = ""
		m.ConfirmTitle = fmt.Sprintf("Delete %s?", pluralize(n, "selected contact"))

	// Confirmation
	case keymap.CmdConfirm:
		bulk, id := m.ConfirmBulk, m.ConfirmID
		m.closeConfirm()
		if bulk {
			return m, m.deleteSelected()
		}
		return m, m.deleteContact(id)
	case keymap.CmdCancel:
		m.closeConfirm()

	// Form
	case keymap.CmdFormSubmit:
		fs := m.FormState
		m.FormOpen = false
		m.FormState = nil
		if fs == nil {
			return m, nil
		}
		if fs.Mode == FormModeEdit {
			return m, m.updateContact(fs)
		}
		return m, m.createContact(fs)
	case keymap.CmdFormCancel:
		m.FormOpen = false
		m.FormState = nil
	}

	return m, nil
}

func (m *Model) closeConfirm() {
	m.ConfirmOpen = false
	m.ConfirmBulk = false
	m.ConfirmID = ""
	m.ConfirmTitle = ""
}
