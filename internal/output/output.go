// Package output provides styled terminal output helpers (success, error,
// warning, contact and activity formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/rolo/internal/models"
)

var (
	// Styles
	titleStyle    = lipgloss.NewStyle().Bold(true)
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	favoriteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	actionStyles  = map[models.ActionType]lipgloss.Style{
		models.ActionCreate:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.ActionUpdate:     lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		models.ActionDelete:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		models.ActionFavorite:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		models.ActionUnfavorite: lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// Error codes for structured JSON output
const (
	ErrCodeNotFound         = "not_found"
	ErrCodeInvalidInput     = "invalid_input"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeStoreUnavailable = "store_unavailable"
	ErrCodePartialFailure   = "partial_failure"
	ErrCodeBusy             = "busy"
	ErrCodeConfigError      = "config_error"
	ErrCodeInternal         = "internal_error"
)

// JSONError outputs an error as JSON
func JSONError(code, message string) {
	JSONErrorWithDetails(code, message, nil)
}

// JSONErrorWithDetails outputs an error as JSON with additional context
func JSONErrorWithDetails(code, message string, details map[string]interface{}) {
	fmt.Println(jsonErrorString(code, message, details))
}

func jsonErrorString(code, message string, details map[string]interface{}) string {
	errObj := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if len(details) > 0 {
		errObj["details"] = details
	}
	data, _ := json.MarshalIndent(map[string]interface{}{"error": errObj}, "", "  ")
	return string(data)
}

// FavoriteMark returns a star for favorites and a blank of the same width
// otherwise.
func FavoriteMark(fav bool) string {
	if fav {
		return favoriteStyle.Render("★")
	}
	return " "
}

// ActionBadge formats an activity action with color
func ActionBadge(a models.ActionType) string {
	style, ok := actionStyles[a]
	if !ok {
		return string(a)
	}
	return style.Render(fmt.Sprintf("%-10s", a))
}

// ContactOneLiner returns a concise single-line contact representation
// Format: `Alice <alice@example.com> (id)`
func ContactOneLiner(c models.Contact) string {
	return fmt.Sprintf("%s <%s> (%s)", c.Name, c.Email, c.ID)
}

// pad pads s with spaces to the given display width, truncating with an
// ellipsis when it is wider. Widths are measured in terminal cells.
func pad(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", width-ansi.StringWidth(s))
}

// ContactTable renders contacts as aligned columns: favorite mark, name,
// email, phone, company and id. maxWidth bounds each text column; 0 means
// no bound.
func ContactTable(contacts []models.Contact, maxWidth int) string {
	if len(contacts) == 0 {
		return subtleStyle.Render("No contacts")
	}

	cols := [4]int{len("NAME"), len("EMAIL"), len("PHONE"), len("COMPANY")}
	for _, c := range contacts {
		for i, v := range [4]string{c.Name, c.Email, c.Phone, c.Company} {
			cols[i] = max(cols[i], ansi.StringWidth(v))
		}
	}
	if maxWidth > 0 {
		for i := range cols {
			cols[i] = min(cols[i], maxWidth)
		}
	}

	var sb strings.Builder
	header := fmt.Sprintf("  %s  %s  %s  %s  %s",
		pad("NAME", cols[0]), pad("EMAIL", cols[1]), pad("PHONE", cols[2]), pad("COMPANY", cols[3]), "ID")
	sb.WriteString(subtleStyle.Render(header))
	for _, c := range contacts {
		sb.WriteString("\n")
		sb.WriteString(FavoriteMark(c.Favorite))
		sb.WriteString(" ")
		sb.WriteString(titleStyle.Render(pad(c.Name, cols[0])))
		sb.WriteString("  ")
		sb.WriteString(pad(c.Email, cols[1]))
		sb.WriteString("  ")
		sb.WriteString(pad(c.Phone, cols[2]))
		sb.WriteString("  ")
		sb.WriteString(pad(c.Company, cols[3]))
		sb.WriteString("  ")
		sb.WriteString(subtleStyle.Render(c.ID))
	}
	return sb.String()
}

// FormatActivity formats one activity entry as `ACTION  name  when`
func FormatActivity(e models.ActivityLogEntry) string {
	return fmt.Sprintf("%s %s  %s", ActionBadge(e.Action), e.ContactName, subtleStyle.Render(FormatTimeAgo(e.Timestamp)))
}

// ActivityList renders entries one per line, newest first as given.
func ActivityList(entries []models.ActivityLogEntry) string {
	if len(entries) == 0 {
		return subtleStyle.Render("No activity")
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = FormatActivity(e)
	}
	return strings.Join(lines, "\n")
}

// FormatStats renders the headline numbers followed by a bar list of the
// company breakdown. barWidth is the length of the longest bar.
func FormatStats(s models.Stats, barWidth int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %d   %s %d   %s %d\n",
		titleStyle.Render("Total:"), s.Total,
		titleStyle.Render("Companies:"), s.UniqueCompanies,
		titleStyle.Render("Favorites:"), s.FavoriteCount))

	if len(s.Companies) == 0 {
		return strings.TrimRight(sb.String(), "\n")
	}

	sb.WriteString(SectionHeader("companies"))
	sb.WriteString(CompanyBars(s.Companies, barWidth))
	return sb.String()
}

// CompanyBars renders one line per company with a bar scaled to the largest
// count. Every company with a nonzero count gets at least one cell.
func CompanyBars(companies []models.CompanyCount, barWidth int) string {
	if barWidth <= 0 {
		barWidth = 30
	}
	nameWidth, top := 0, 0
	for _, c := range companies {
		nameWidth = max(nameWidth, ansi.StringWidth(c.Company))
		top = max(top, c.Count)
	}
	nameWidth = min(nameWidth, 24)

	lines := make([]string, 0, len(companies))
	for _, c := range companies {
		n := 0
		if top > 0 {
			n = max(1, c.Count*barWidth/top)
		}
		lines = append(lines, fmt.Sprintf("  %s %s %d",
			pad(c.Company, nameWidth), barStyle.Render(strings.Repeat("█", n)), c.Count))
	}
	return strings.Join(lines, "\n")
}

// FormatTimeAgo formats a time as a human-readable "ago" string
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nCOMPANIES:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}
