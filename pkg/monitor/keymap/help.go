package keymap

import (
	"fmt"
	"strings"
)

// helpSections lists the contexts shown in the help overlay, in order.
var helpSections = []struct {
	title   string
	context Context
}{
	{"CONTACTS", ContextMain},
	{"SEARCH", ContextSearch},
	{"DETAILS", ContextDetail},
	{"FORM", ContextForm},
	{"CONFIRM", ContextConfirm},
	{"GLOBAL", ContextGlobal},
}

// GenerateHelp renders the bindings registered for each context, merging keys
// that trigger the same command onto one line.
func (r *Registry) GenerateHelp() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("ROLO MONITOR - Key Bindings\n")
	for _, sec := range helpSections {
		bindings := r.bindings[sec.context]
		if len(bindings) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s:\n", sec.title)

		var order []Command
		keys := make(map[Command][]string)
		desc := make(map[Command]string)
		for _, b := range bindings {
			if _, seen := keys[b.Command]; !seen {
				order = append(order, b.Command)
				desc[b.Command] = b.Description
			}
			keys[b.Command] = append(keys[b.Command], formatKey(b.Key))
		}
		for _, cmd := range order {
			fmt.Fprintf(&sb, "  %-18s %s\n", strings.Join(keys[cmd], " / "), desc[cmd])
		}
	}
	sb.WriteString("\nPress ? or esc to close help\n")
	return sb.String()
}

// FooterHelp is the one-line hint shown under the contact list.
func (r *Registry) FooterHelp() string {
	return "q:quit /:search s:sort f:favs space:select a:all D:del-selected n:new e:edit *:fav ?:help"
}

var keyLabels = strings.NewReplacer(
	"shift+tab", "Shift+Tab",
	"ctrl+", "Ctrl+",
	"up", "↑",
	"down", "↓",
	"enter", "Enter",
	"esc", "Esc",
	"space", "Space",
	"backspace", "Backspace",
	"pgup", "PgUp",
	"pgdown", "PgDn",
	"home", "Home",
	"end", "End",
)

// formatKey formats a binding key for display.
func formatKey(key string) string {
	return keyLabels.Replace(key)
}
