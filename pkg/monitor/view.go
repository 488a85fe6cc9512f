package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/rolo/internal/output"
)

const (
	headerHeight = 2
	footerHeight = 1
	panelChrome  = 3 // border and title
)

func (m Model) renderView() string {
	if m.Width == 0 || m.Height == 0 {
		return "Loading..."
	}
	if m.Width < MinWidth || m.Height < MinHeight {
		return m.renderCompact()
	}
	if m.Err != nil && !m.Ctrl.Loaded() {
		return m.renderError()
	}
	if m.HelpOpen {
		return m.overlay(helpStyle.Render(m.Keymap.GenerateHelp()))
	}
	if m.ConfirmOpen {
		return m.overlay(m.renderConfirmation())
	}
	if m.FormOpen && m.FormState != nil {
		return m.overlay(m.renderForm())
	}
	if m.DetailID != "" {
		return m.overlay(m.renderDetailModal())
	}

	listH, activityH := m.panelHeights()
	parts := []string{m.renderHeader()}
	if bar := m.renderSearchBar(); bar != "" {
		parts = append(parts, bar)
	}
	parts = append(parts,
		m.renderContactPanel(listH),
		m.renderLowerPanels(activityH),
		m.renderFooter(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) overlay(content string) string {
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("0")))
}

func (m Model) showSearchBar() bool {
	return m.SearchMode || m.Ctrl.View().Keyword != ""
}

// panelHeights splits the space between header and footer into the contact
// panel and the activity panel.
func (m Model) panelHeights() (list, activity int) {
	avail := m.Height - headerHeight - footerHeight
	if m.showSearchBar() {
		avail -= 2
	}
	activity = max(panelChrome+2, avail/3)
	return avail - activity, activity
}

// listHeight is the number of contact rows that fit in the contact panel.
func (m Model) listHeight() int {
	if m.Height == 0 {
		return 0
	}
	list, _ := m.panelHeights()
	return max(1, list-panelChrome-1) // column header
}

func (m Model) contentWidth() int {
	return m.Width - 4
}

func (m Model) detailWidth() int {
	return max(30, min(m.Width-4, 80))
}

// renderCompact renders a minimal view for small terminals
func (m Model) renderCompact() string {
	st := m.Ctrl.Stats()
	return fmt.Sprintf("rolo: %d contacts, %d favorites\n%s",
		st.Total, st.FavoriteCount,
		subtleStyle.Render(fmt.Sprintf("Terminal too small (need %dx%d)", MinWidth, MinHeight)))
}

func (m Model) renderError() string {
	msg := fmt.Sprintf("Cannot reach the contact store.\n\n%s\n\nRetrying every %s. Press r to retry or q to quit.",
		m.Err, m.RefreshInterval)
	return m.overlay(confirmStyle.Width(min(m.Width-4, 70)).Render(msg))
}

func (m Model) renderHeader() string {
	st := m.Ctrl.Stats()
	sel := m.Ctrl.SelectionState()

	stats := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		titleStyle.Render("Contacts"), statsValueStyle.Render(fmt.Sprint(st.Total)),
		titleStyle.Render("Companies"), statsValueStyle.Render(fmt.Sprint(st.UniqueCompanies)),
		titleStyle.Render("Favorites"), statsValueStyle.Render(fmt.Sprint(st.FavoriteCount)),
		titleStyle.Render("Selected"), statsValueStyle.Render(fmt.Sprint(sel.Count)),
	)
	brand := panelTitleStyle.Render("rolo " + m.Version)
	gap := max(1, m.Width-lipgloss.Width(stats)-lipgloss.Width(brand)-1)
	line1 := " " + stats + strings.Repeat(" ", gap) + brand

	v := m.Ctrl.View()
	view := "sort: " + sortLabel(v.SortKey)
	if v.FavoritesOnly {
		view += "  ·  favorites only"
	}
	if m.Refreshing {
		view += "  ·  refreshing…"
	}
	return line1 + "\n " + subtleStyle.Render(view)
}

func (m Model) renderSearchBar() string {
	if !m.showSearchBar() {
		return ""
	}
	var line string
	if m.SearchMode {
		line = m.SearchInput.View()
	} else {
		line = subtleStyle.Render("/ ") + m.Ctrl.View().Keyword + subtleStyle.Render("  (/ to edit, esc to clear)")
	}
	return searchBarStyle.Width(m.Width).Render(ansi.Truncate(line, m.Width, "…"))
}

func (m Model) renderContactPanel(height int) string {
	rows := m.Ctrl.Projection()
	total := len(m.Ctrl.Contacts())
	title := fmt.Sprintf("CONTACTS (%d of %d)", len(rows), total)

	width := m.contentWidth()
	var lines []string
	lines = append(lines, subtleStyle.Render(m.formatRow("", "  ", "NAME", "EMAIL", "PHONE", "COMPANY", width)))

	if len(rows) == 0 {
		empty := "No contacts"
		if total > 0 {
			empty = "No contacts match the current view"
		}
		lines = append(lines, subtleStyle.Render(empty))
	}

	end := min(len(rows), m.ScrollOffset+m.listHeight())
	for i := m.ScrollOffset; i < end; i++ {
		c := rows[i]
		mark := " "
		if m.Ctrl.IsSelected(c.ID) {
			mark = selectMark
		}
		cursor := " "
		if i == m.Cursor {
			cursor = ">"
		}
		line := m.formatRow(cursor, mark+output.FavoriteMark(c.Favorite), c.Name, c.Email, c.Phone, c.Company, width)
		if m.Ctrl.Pending(c.ID) {
			line = pendingStyle.Render(ansi.Strip(line))
		}
		if i == m.Cursor {
			line = selectedRowStyle.Render(ansi.Strip(line))
		}
		lines = append(lines, line)
	}
	return m.wrapPanel(title, strings.Join(lines, "\n"), height, m.Width, true)
}

// formatRow lays out one contact row in fixed columns measured in cells.
func (m Model) formatRow(cursor, marks, name, email, phone, company string, width int) string {
	cw := max(1, width-4)
	nameW := cw * 3 / 10
	emailW := cw * 3 / 10
	phoneW := cw * 15 / 100
	companyW := max(1, cw-nameW-emailW-phoneW-3)
	return fmt.Sprintf("%-1s%s %s %s %s %s",
		cursor, marks, cell(name, nameW), cell(email, emailW), cell(phone, phoneW), cell(company, companyW))
}

// cell pads or truncates s to exactly w cells.
func cell(s string, w int) string {
	if ansi.StringWidth(s) > w {
		s = ansi.Truncate(s, w, "…")
	}
	return s + strings.Repeat(" ", max(0, w-ansi.StringWidth(s)))
}

// renderLowerPanels shows the activity feed, with the company breakdown
// beside it on wide terminals.
func (m Model) renderLowerPanels(height int) string {
	if m.Width < 100 {
		return m.wrapPanel("ACTIVITY", m.renderActivity(height-panelChrome), height, m.Width, false)
	}
	left := m.Width * 3 / 5
	right := m.Width - left
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.wrapPanel("ACTIVITY", m.renderActivity(height-panelChrome), height, left, false),
		m.wrapPanel("COMPANIES", m.renderCompanies(height-panelChrome, right-4), height, right, false),
	)
}

func (m Model) renderActivity(rows int) string {
	feed := m.Ctrl.ActivityFeed()
	if len(feed) == 0 {
		return subtleStyle.Render("No activity yet")
	}
	lines := make([]string, 0, min(rows, len(feed)))
	for _, e := range feed[:min(rows, len(feed))] {
		lines = append(lines, output.FormatActivity(e))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCompanies(rows, width int) string {
	companies := m.Ctrl.Stats().Companies
	if len(companies) == 0 {
		return subtleStyle.Render("No companies")
	}
	companies = companies[:min(rows, len(companies))]
	return output.CompanyBars(companies, max(5, width/3))
}

func (m Model) wrapPanel(title, content string, height, width int, active bool) string {
	style := panelStyle
	if active {
		style = activePanelStyle
	}

	contentWidth := width - 4
	contentHeight := height - panelChrome

	lines := strings.Split(content, "\n")
	for len(lines) < contentHeight {
		lines = append(lines, "")
	}
	if len(lines) > contentHeight {
		lines = lines[:max(0, contentHeight)]
	}
	for i, line := range lines {
		if lipgloss.Width(line) > contentWidth {
			lines[i] = ansi.Truncate(line, contentWidth, "…")
		}
	}

	inner := lipgloss.JoinVertical(lipgloss.Left, panelTitleStyle.Render(title), strings.Join(lines, "\n"))
	return style.Width(width - 2).Render(inner)
}

func (m Model) renderFooter() string {
	var left string
	switch {
	case m.StatusMessage != "" && m.StatusIsError:
		left = statusErrStyle.Render(m.StatusMessage)
	case m.StatusMessage != "":
		left = statusOKStyle.Render(m.StatusMessage)
	case m.Err != nil:
		left = statusErrStyle.Render("offline: " + m.Err.Error())
	default:
		left = helpStyle.Render(m.Keymap.FooterHelp())
	}

	right := ""
	if pk := m.Keymap.PendingKey(); pk != "" {
		right = pk + "… "
	}
	if !m.LastRefresh.IsZero() {
		right += timestampStyle.Render("Last: " + m.LastRefresh.Format("15:04:05"))
	}

	room := m.Width - lipgloss.Width(right) - 2
	if lipgloss.Width(left) > room {
		left = ansi.Truncate(left, max(0, room), "…")
	}
	gap := max(1, m.Width-lipgloss.Width(left)-lipgloss.Width(right)-1)
	return " " + left + strings.Repeat(" ", gap) + right
}

func (m Model) renderConfirmation() string {
	width := min(max(40, lipgloss.Width(m.ConfirmTitle)+8), max(40, m.Width-4))

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.ConfirmTitle))
	sb.WriteString("\n")
	if !m.ConfirmBulk {
		if c, ok := m.Ctrl.Contact(m.ConfirmID); ok {
			sb.WriteString(subtleStyle.Render(ansi.Truncate(output.ContactOneLiner(c), width-6, "…")))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n[Y]es  [N]o")
	return confirmStyle.Width(width).Render(sb.String())
}

func (m Model) renderForm() string {
	var sb strings.Builder
	if m.FormState.Err != "" {
		sb.WriteString(statusErrStyle.Render(ansi.Truncate(m.FormState.Err, m.detailWidth()-6, "…")))
		sb.WriteString("\n\n")
	}
	sb.WriteString(m.FormState.Form.View())
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("ctrl+s save  ·  esc cancel  ·  tab next field"))
	return modalStyle.Width(m.detailWidth()).Render(sb.String())
}

func (m Model) renderDetailModal() string {
	body := m.DetailRender
	if body == "" {
		d, err := m.Ctrl.Detail(m.DetailID)
		if err != nil {
			return modalStyle.Render(subtleStyle.Render("Contact no longer exists"))
		}
		body = output.ContactMarkdown(d.Contact, d.Recent)
	}

	maxLines := max(3, m.Height-8)
	lines := strings.Split(body, "\n")
	if len(lines) > maxLines {
		lines = append(lines[:maxLines-1], subtleStyle.Render("…"))
	}
	hint := helpStyle.Render("e edit  ·  * favorite  ·  esc close")
	return modalStyle.Width(m.detailWidth()).Render(strings.Join(lines, "\n") + "\n" + hint)
}
