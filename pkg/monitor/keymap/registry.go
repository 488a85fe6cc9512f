package keymap

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const sequenceTimeout = 500 * time.Millisecond

// Context names the UI state a binding applies in.
type Context string

const (
	ContextGlobal  Context = "global"
	ContextMain    Context = "main"    // contact list focused, no overlay
	ContextSearch  Context = "search"  // search input focused
	ContextConfirm Context = "confirm" // delete confirmation open
	ContextForm    Context = "form"    // add/edit form open
	ContextDetail  Context = "detail"  // contact detail modal open
	ContextHelp    Context = "help"
)

// Command is a named action a key can trigger.
type Command string

const (
	// Global
	CmdQuit       Command = "quit"
	CmdToggleHelp Command = "toggle-help"
	CmdRefresh    Command = "refresh"

	// Navigation
	CmdCursorDown   Command = "cursor-down"
	CmdCursorUp     Command = "cursor-up"
	CmdCursorTop    Command = "cursor-top"
	CmdCursorBottom Command = "cursor-bottom"
	CmdHalfPageDown Command = "half-page-down"
	CmdHalfPageUp   Command = "half-page-up"
	CmdClose        Command = "close"

	// View
	CmdSearch              Command = "search"
	CmdSearchConfirm       Command = "search-confirm"
	CmdSearchCancel        Command = "search-cancel"
	CmdSearchClear         Command = "search-clear"
	CmdCycleSort           Command = "cycle-sort"
	CmdToggleFavoritesOnly Command = "toggle-favorites-only"
	CmdOpenDetails         Command = "open-details"

	// Selection
	CmdToggleSelect     Command = "toggle-select"
	CmdToggleAllVisible Command = "toggle-all-visible"
	CmdClearSelection   Command = "clear-selection"

	// Mutations
	CmdNewContact     Command = "new-contact"
	CmdEditContact    Command = "edit-contact"
	CmdDelete         Command = "delete"
	CmdDeleteSelected Command = "delete-selected"
	CmdToggleFavorite Command = "toggle-favorite"

	// Confirmation and form
	CmdConfirm    Command = "confirm"
	CmdCancel     Command = "cancel"
	CmdFormSubmit Command = "form-submit"
	CmdFormCancel Command = "form-cancel"
)

// Binding maps a key or key sequence to a command in a context.
type Binding struct {
	Key         string // e.g. "j", "ctrl+d", "g g"
	Command     Command
	Context     Context
	Description string
}

// Registry holds bindings and resolves keys to commands.
type Registry struct {
	bindings      map[Context][]Binding
	userOverrides map[string]Command // "context:key" -> command
	pendingKey    string
	pendingTime   time.Time
	mu            sync.RWMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings:      make(map[Context][]Binding),
		userOverrides: make(map[string]Command),
	}
}

// RegisterBinding adds a key binding.
func (r *Registry) RegisterBinding(b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[b.Context] = append(r.bindings[b.Context], b)
}

// RegisterBindings adds multiple key bindings.
func (r *Registry) RegisterBindings(bindings []Binding) {
	for _, b := range bindings {
		r.RegisterBinding(b)
	}
}

// SetUserOverride binds key to cmd in context ahead of the defaults.
func (r *Registry) SetUserOverride(context Context, key string, cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userOverrides[string(context)+":"+key] = cmd
}

// Lookup resolves key in activeContext. Precedence is user overrides, then
// context bindings, then global bindings. The first key of a multi-key
// sequence returns false and is remembered for sequenceTimeout.
func (r *Registry) Lookup(key tea.KeyMsg, activeContext Context) (Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keyStr := KeyToString(key)

	if r.pendingKey != "" {
		if time.Since(r.pendingTime) < sequenceTimeout {
			seq := r.pendingKey + " " + keyStr
			r.pendingKey = ""
			if cmd, found := r.findCommand(seq, activeContext); found {
				return cmd, true
			}
		} else {
			r.pendingKey = ""
		}
	}

	if r.isSequenceStart(keyStr, activeContext) {
		r.pendingKey = keyStr
		r.pendingTime = time.Now()
		return "", false
	}

	return r.findCommand(keyStr, activeContext)
}

func (r *Registry) findCommand(key string, activeContext Context) (Command, bool) {
	if activeContext != "" && activeContext != ContextGlobal {
		if cmd, ok := r.userOverrides[string(activeContext)+":"+key]; ok {
			return cmd, true
		}
	}
	if cmd, ok := r.userOverrides[string(ContextGlobal)+":"+key]; ok {
		return cmd, true
	}

	if activeContext != "" && activeContext != ContextGlobal {
		if cmd, found := r.findInContext(key, activeContext); found {
			return cmd, true
		}
	}
	return r.findInContext(key, ContextGlobal)
}

func (r *Registry) findInContext(key string, context Context) (Command, bool) {
	for _, b := range r.bindings[context] {
		if b.Key == key {
			return b.Command, true
		}
	}
	return "", false
}

func (r *Registry) isSequenceStart(key string, activeContext Context) bool {
	prefix := key + " "

	contexts := []Context{ContextGlobal}
	if activeContext != "" && activeContext != ContextGlobal {
		contexts = append(contexts, activeContext)
	}
	for _, ctx := range contexts {
		for _, b := range r.bindings[ctx] {
			if strings.HasPrefix(b.Key, prefix) {
				return true
			}
		}
	}

	for k := range r.userOverrides {
		_, bound, ok := strings.Cut(k, ":")
		if ok && strings.HasPrefix(bound, prefix) {
			return true
		}
	}
	return false
}

// ResetPending clears any pending key sequence.
func (r *Registry) ResetPending() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingKey = ""
}

// PendingKey returns the first key of an unfinished sequence, or "".
func (r *Registry) PendingKey() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pendingKey != "" && time.Since(r.pendingTime) < sequenceTimeout {
		return r.pendingKey
	}
	return ""
}

// BindingsForContext returns the bindings of context followed by the global ones.
func (r *Registry) BindingsForContext(context Context) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Binding
	result = append(result, r.bindings[context]...)
	if context != ContextGlobal {
		result = append(result, r.bindings[ContextGlobal]...)
	}
	return result
}

// KeyToString converts a key event to the notation bindings use.
func KeyToString(key tea.KeyMsg) string {
	switch key.Type {
	case tea.KeyRunes:
		if len(key.Runes) == 1 && key.Runes[0] == ' ' {
			return "space"
		}
		return string(key.Runes)
	case tea.KeySpace:
		return "space"
	case tea.KeyEsc:
		return "esc"
	case tea.KeyEnter:
		return "enter"
	case tea.KeyTab:
		return "tab"
	case tea.KeyShiftTab:
		return "shift+tab"
	case tea.KeyBackspace:
		return "backspace"
	case tea.KeyDelete:
		return "delete"
	case tea.KeyUp:
		return "up"
	case tea.KeyDown:
		return "down"
	case tea.KeyLeft:
		return "left"
	case tea.KeyRight:
		return "right"
	case tea.KeyHome:
		return "home"
	case tea.KeyEnd:
		return "end"
	case tea.KeyPgUp:
		return "pgup"
	case tea.KeyPgDown:
		return "pgdown"
	default:
		// ctrl+c, ctrl+d, ... already render in binding notation.
		return key.String()
	}
}
