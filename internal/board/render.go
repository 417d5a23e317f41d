// Package board renders paginated board and history views from a
// project's ticket set. Rendering is pure: no storage or platform calls.
package board

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ticketboard/bot/internal/tracker"
)

// PageSize is the number of tickets per rendered page.
const PageSize = 6

// Notice severities and view hues, as embed color values.
const (
	ColorInfo    = 0x5865F2
	ColorSuccess = 0x57F287
	ColorWarning = 0xFEE75C
	ColorError   = 0xED4245
	ColorBoard   = 0x3BA55D
	ColorHistory = 0x9B59B6
)

// Button is one pagination control. ID is the opaque custom identifier
// the platform echoes back on click.
type Button struct {
	ID       string
	Label    string
	Disabled bool
}

// View is a rendered page: platform-neutral content plus its controls.
type View struct {
	Title       string
	Description string
	Color       int
	Footer      string
	Page        int
	TotalPages  int
	Pager       []Button
}

// Board renders the open-work view: every ticket that is neither
// completed nor cancelled, in ticket-number order. The requested page is
// clamped into the valid range before rendering.
func Board(state tracker.ProjectState, page int) View {
	var open []*tracker.Ticket
	for _, t := range state.Tickets {
		if t.Status != tracker.StatusCompleted && t.Status != tracker.StatusCancelled {
			open = append(open, t)
		}
	}

	page, totalPages := clampPage(page, len(open))
	lines := make([]string, 0, PageSize)
	for _, t := range pageSlice(open, page) {
		lines = append(lines, ticketLines(state.Project, t, false))
	}

	return View{
		Title:       "Ticket Board - " + projectLabel(state.Project),
		Description: joinOrEmpty(lines),
		Color:       ColorBoard,
		Footer:      pageFooter(page, totalPages),
		Page:        page,
		TotalPages:  totalPages,
		Pager:       pager("board", state.Project.ID, page, totalPages),
	}
}

// History renders the completed-tickets view.
func History(state tracker.ProjectState, page int) View {
	var completed []*tracker.Ticket
	for _, t := range state.Tickets {
		if t.Status == tracker.StatusCompleted {
			completed = append(completed, t)
		}
	}

	page, totalPages := clampPage(page, len(completed))
	lines := make([]string, 0, PageSize)
	for _, t := range pageSlice(completed, page) {
		lines = append(lines, ticketLines(state.Project, t, true))
	}

	return View{
		Title:       "Ticket History - " + projectLabel(state.Project),
		Description: joinOrEmpty(lines),
		Color:       ColorHistory,
		Footer:      pageFooter(page, totalPages),
		Page:        page,
		TotalPages:  totalPages,
		Pager:       pager("history", state.Project.ID, page, totalPages),
	}
}

func clampPage(page, count int) (int, int) {
	totalPages := (count + PageSize - 1) / PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}
	return page, totalPages
}

func pageSlice(tickets []*tracker.Ticket, page int) []*tracker.Ticket {
	start := page * PageSize
	if start >= len(tickets) {
		return nil
	}
	end := start + PageSize
	if end > len(tickets) {
		end = len(tickets)
	}
	return tickets[start:end]
}

func pager(kind, projectID string, page, totalPages int) []Button {
	return []Button{
		{
			ID:       kind + "|" + projectID + "|" + strconv.Itoa(page-1),
			Label:    "Prev",
			Disabled: page <= 0,
		},
		{
			ID:       kind + "|" + projectID + "|" + strconv.Itoa(page+1),
			Label:    "Next",
			Disabled: page >= totalPages-1,
		},
		{
			ID:    kind + "-close|" + projectID,
			Label: "Close",
		},
	}
}

func projectLabel(p *tracker.Project) string {
	return p.Name + " (" + p.Tag + ")"
}

func pageFooter(page, totalPages int) string {
	return fmt.Sprintf("Page %d/%d", page+1, totalPages)
}

func joinOrEmpty(lines []string) string {
	if len(lines) == 0 {
		return "No tickets."
	}
	return strings.Join(lines, "\n")
}

func ticketLines(project *tracker.Project, t *tracker.Ticket, history bool) string {
	title := t.Title
	if runes := []rune(title); len(runes) > 60 {
		title = string(runes[:57]) + "..."
	}
	lines := []string{
		"**" + tracker.DisplayID(project, t.TicketNumber) + ": " + title + "**",
		statusLine(t, history),
		"Assignees: " + formatAssignees(t.Assignees),
	}
	if history {
		lines = append(lines, "Time spent: "+FormatHours(t.TimeSpentHours))
	}
	return strings.Join(lines, "\n")
}

func statusLine(t *tracker.Ticket, history bool) string {
	if history {
		return "*" + statusWord(t.Status) +
			" | Started: " + FormatTimestamp(t.StartedAt) +
			" | Completed: " + FormatTimestamp(t.CompletedAt) + "*"
	}
	line := "*" + statusWord(t.Status) + "*"
	if t.TargetDate != "" {
		line += " | " + t.TargetDate
	}
	return line
}

func statusWord(s tracker.Status) string {
	switch s {
	case tracker.StatusCompleted:
		return "Completed"
	case tracker.StatusCancelled:
		return "Cancelled"
	case tracker.StatusInProgress:
		return "In Progress"
	case tracker.StatusBacklog:
		return "Backlog"
	default:
		return "Open"
	}
}

func formatAssignees(assignees []string) string {
	if len(assignees) == 0 {
		return "Unassigned"
	}
	mentions := make([]string, len(assignees))
	for i, id := range assignees {
		mentions[i] = "<@" + id + ">"
	}
	return strings.Join(mentions, ", ")
}

// FormatTimestamp renders a nullable timestamp as "YYYY-MM-DD HH:MM" UTC,
// or "-" when absent.
func FormatTimestamp(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return ts.UTC().Format("2006-01-02 15:04")
}

// FormatHours renders an hours figure with up to two decimals, trailing
// zeros trimmed, or "-" when no time was ever reported.
func FormatHours(hours *float64) string {
	if hours == nil {
		return "-"
	}
	text := strconv.FormatFloat(*hours, 'f', 2, 64)
	text = strings.TrimRight(text, "0")
	text = strings.TrimSuffix(text, ".")
	return text + "h"
}
