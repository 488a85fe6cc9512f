package keymap

// DefaultBindings returns the default key bindings for the monitor.
func DefaultBindings() []Binding {
	return []Binding{
		// Global
		{Key: "q", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},
		{Key: "ctrl+c", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},
		{Key: "?", Command: CmdToggleHelp, Context: ContextGlobal, Description: "Toggle help"},

		// Main list: cursor movement
		{Key: "j", Command: CmdCursorDown, Context: ContextMain, Description: "Move down"},
		{Key: "down", Command: CmdCursorDown, Context: ContextMain, Description: "Move down"},
		{Key: "k", Command: CmdCursorUp, Context: ContextMain, Description: "Move up"},
		{Key: "up", Command: CmdCursorUp, Context: ContextMain, Description: "Move up"},
		{Key: "ctrl+d", Command: CmdHalfPageDown, Context: ContextMain, Description: "Half page down"},
		{Key: "ctrl+u", Command: CmdHalfPageUp, Context: ContextMain, Description: "Half page up"},
		{Key: "G", Command: CmdCursorBottom, Context: ContextMain, Description: "Go to bottom"},
		{Key: "g g", Command: CmdCursorTop, Context: ContextMain, Description: "Go to top"},
		{Key: "home", Command: CmdCursorTop, Context: ContextMain, Description: "Go to top"},
		{Key: "end", Command: CmdCursorBottom, Context: ContextMain, Description: "Go to bottom"},

		// Main list: view
		{Key: "/", Command: CmdSearch, Context: ContextMain, Description: "Search"},
		{Key: "esc", Command: CmdSearchClear, Context: ContextMain, Description: "Clear search"},
		{Key: "s", Command: CmdCycleSort, Context: ContextMain, Description: "Cycle sort order"},
		{Key: "f", Command: CmdToggleFavoritesOnly, Context: ContextMain, Description: "Toggle favorites only"},
		{Key: "enter", Command: CmdOpenDetails, Context: ContextMain, Description: "Contact details"},
		{Key: "r", Command: CmdRefresh, Context: ContextMain, Description: "Refresh"},

		// Main list: selection
		{Key: "space", Command: CmdToggleSelect, Context: ContextMain, Description: "Select contact"},
		{Key: "a", Command: CmdToggleAllVisible, Context: ContextMain, Description: "Select/clear all visible"},
		{Key: "A", Command: CmdClearSelection, Context: ContextMain, Description: "Clear whole selection"},

		// Main list: mutations
		{Key: "n", Command: CmdNewContact, Context: ContextMain, Description: "New contact"},
		{Key: "e", Command: CmdEditContact, Context: ContextMain, Description: "Edit contact"},
		{Key: "d", Command: CmdDelete, Context: ContextMain, Description: "Delete contact"},
		{Key: "D", Command: CmdDeleteSelected, Context: ContextMain, Description: "Delete selected"},
		{Key: "*", Command: CmdToggleFavorite, Context: ContextMain, Description: "Toggle favorite"},

		// Search input. Other keys go to the text input.
		{Key: "enter", Command: CmdSearchConfirm, Context: ContextSearch, Description: "Apply search"},
		{Key: "esc", Command: CmdSearchCancel, Context: ContextSearch, Description: "Cancel search"},
		{Key: "ctrl+u", Command: CmdSearchClear, Context: ContextSearch, Description: "Clear search"},

		// Delete confirmation
		{Key: "y", Command: CmdConfirm, Context: ContextConfirm, Description: "Confirm"},
		{Key: "enter", Command: CmdConfirm, Context: ContextConfirm, Description: "Confirm"},
		{Key: "n", Command: CmdCancel, Context: ContextConfirm, Description: "Cancel"},
		{Key: "esc", Command: CmdCancel, Context: ContextConfirm, Description: "Cancel"},

		// Form. Other keys go to the huh form.
		{Key: "ctrl+s", Command: CmdFormSubmit, Context: ContextForm, Description: "Save"},
		{Key: "esc", Command: CmdFormCancel, Context: ContextForm, Description: "Cancel"},

		// Detail modal
		{Key: "esc", Command: CmdClose, Context: ContextDetail, Description: "Close"},
		{Key: "enter", Command: CmdClose, Context: ContextDetail, Description: "Close"},
		{Key: "e", Command: CmdEditContact, Context: ContextDetail, Description: "Edit contact"},
		{Key: "*", Command: CmdToggleFavorite, Context: ContextDetail, Description: "Toggle favorite"},

		// Help
		{Key: "esc", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},
	}
}

// RegisterDefaults registers all default bindings with the registry.
func RegisterDefaults(r *Registry) {
	r.RegisterBindings(DefaultBindings())
}
