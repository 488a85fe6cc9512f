package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/marcus/rolo/internal/models"
)

const (
	defaultMarkdownWidth = 80
	minMarkdownWidth     = 20
)

// TerminalWidth returns the current terminal width or a fallback when unavailable.
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = defaultMarkdownWidth
	}

	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if parsed, err := strconv.Atoi(cols); err == nil && parsed > 0 {
			return parsed
		}
	}

	return fallback
}

// RenderMarkdown renders markdown using Glamour with terminal-aware wrapping.
func RenderMarkdown(text string) (string, error) {
	return RenderMarkdownWithWidth(text, TerminalWidth(defaultMarkdownWidth))
}

// RenderMarkdownWithWidth renders markdown using Glamour with explicit wrapping.
func RenderMarkdownWithWidth(text string, width int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if width < minMarkdownWidth {
		width = minMarkdownWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	rendered, err := renderer.Render(text)
	if err != nil {
		return "", err
	}

	return strings.TrimRight(rendered, "\n"), nil
}

// ContactMarkdown builds the markdown document for a contact and its recent
// history.
func ContactMarkdown(c models.Contact, recent []models.ActivityLogEntry) string {
	var sb strings.Builder

	title := escapeMarkdown(c.Name)
	if c.Favorite {
		title += " ★"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	sb.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Email | %s |\n", escapeMarkdown(c.Email))
	fmt.Fprintf(&sb, "| Phone | %s |\n", orDash(c.Phone))
	fmt.Fprintf(&sb, "| Company | %s |\n", orDash(c.Company))
	fmt.Fprintf(&sb, "| Added | %s |\n", c.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "| ID | `%s` |\n", c.ID)

	sb.WriteString("\n## Recent activity\n\n")
	if len(recent) == 0 {
		sb.WriteString("_No activity recorded_\n")
		return sb.String()
	}
	for _, e := range recent {
		fmt.Fprintf(&sb, "- **%s** %s\n", e.Action, e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	}
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return escapeMarkdown(s)
}

var markdownEscaper = strings.NewReplacer(`|`, `\|`, `*`, `\*`, `_`, `\_`, "`", "\\`", `#`, `\#`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
