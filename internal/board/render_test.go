package board

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ticketboard/bot/internal/tracker"
)

func testState(n int) tracker.ProjectState {
	project := &tracker.Project{ID: "guild-1:INF", Name: "Infra", Tag: "INF"}
	tickets := make([]*tracker.Ticket, 0, n)
	for i := 1; i <= n; i++ {
		tickets = append(tickets, &tracker.Ticket{
			ID:           tracker.TicketID(project.ID, i),
			ProjectID:    project.ID,
			TicketNumber: i,
			Title:        "ticket " + strconv.Itoa(i),
			Status:       tracker.StatusOpen,
		})
	}
	return tracker.ProjectState{GuildID: "guild-1", Project: project, Tickets: tickets}
}

func TestBoard_Pagination(t *testing.T) {
	state := testState(13)

	view := Board(state, 0)
	if view.TotalPages != 3 {
		t.Fatalf("13 tickets: expected 3 pages, got %d", view.TotalPages)
	}
	if got := strings.Count(view.Description, "**INF-"); got != PageSize {
		t.Fatalf("first page: expected %d tickets, got %d", PageSize, got)
	}
	if view.Footer != "Page 1/3" {
		t.Fatalf("unexpected footer %q", view.Footer)
	}

	// Last page holds the remainder.
	view = Board(state, 2)
	if got := strings.Count(view.Description, "**INF-"); got != 1 {
		t.Fatalf("last page: expected 1 ticket, got %d", got)
	}
	if !strings.Contains(view.Description, "**INF-13:") {
		t.Fatalf("last page missing final ticket: %q", view.Description)
	}
}

func TestBoard_ClampsPage(t *testing.T) {
	state := testState(13)

	view := Board(state, 99)
	if view.Page != 2 {
		t.Fatalf("over-range page: got %d, want 2", view.Page)
	}
	view = Board(state, -5)
	if view.Page != 0 {
		t.Fatalf("negative page: got %d, want 0", view.Page)
	}
}

func TestBoard_EmptyProject(t *testing.T) {
	view := Board(testState(0), 0)
	if view.TotalPages != 1 || view.Page != 0 {
		t.Fatalf("empty project: got page %d/%d", view.Page+1, view.TotalPages)
	}
	if view.Description != "No tickets." {
		t.Fatalf("unexpected description %q", view.Description)
	}
	for _, b := range view.Pager[:2] {
		if !b.Disabled {
			t.Fatalf("pager button %q must be disabled on a single page", b.Label)
		}
	}
}

func TestBoard_FiltersFinishedTickets(t *testing.T) {
	state := testState(4)
	state.Tickets[1].Status = tracker.StatusCompleted
	state.Tickets[2].Status = tracker.StatusCancelled

	view := Board(state, 0)
	if strings.Contains(view.Description, "INF-2") || strings.Contains(view.Description, "INF-3") {
		t.Fatalf("finished tickets leaked into board: %q", view.Description)
	}
	if !strings.Contains(view.Description, "INF-1") || !strings.Contains(view.Description, "INF-4") {
		t.Fatalf("open tickets missing: %q", view.Description)
	}
}

func TestHistory_OnlyCompleted(t *testing.T) {
	started := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	completed := time.Date(2026, 3, 12, 17, 45, 0, 0, time.UTC)
	spent := 3.5

	state := testState(3)
	state.Tickets[1].Status = tracker.StatusCompleted
	state.Tickets[1].StartedAt = &started
	state.Tickets[1].CompletedAt = &completed
	state.Tickets[1].TimeSpentHours = &spent
	state.Tickets[2].Status = tracker.StatusCancelled

	view := History(state, 0)
	if strings.Contains(view.Description, "INF-1") || strings.Contains(view.Description, "INF-3") {
		t.Fatalf("history must only show completed tickets: %q", view.Description)
	}
	if !strings.Contains(view.Description, "Started: 2026-03-10 08:00") {
		t.Fatalf("missing start stamp: %q", view.Description)
	}
	if !strings.Contains(view.Description, "Completed: 2026-03-12 17:45") {
		t.Fatalf("missing completion stamp: %q", view.Description)
	}
	if !strings.Contains(view.Description, "Time spent: 3.5h") {
		t.Fatalf("missing time spent: %q", view.Description)
	}
	if view.Color != ColorHistory {
		t.Fatalf("unexpected color %#x", view.Color)
	}
}

func TestTicketLine_Content(t *testing.T) {
	state := testState(1)
	state.Tickets[0].Assignees = []string{"user-1", "user-2"}
	state.Tickets[0].TargetDate = "next friday"
	state.Tickets[0].Status = tracker.StatusInProgress

	view := Board(state, 0)
	if !strings.Contains(view.Description, "**INF-1: ticket 1**") {
		t.Fatalf("missing title line: %q", view.Description)
	}
	if !strings.Contains(view.Description, "*In Progress* | next friday") {
		t.Fatalf("missing status line: %q", view.Description)
	}
	if !strings.Contains(view.Description, "Assignees: <@user-1>, <@user-2>") {
		t.Fatalf("missing assignees line: %q", view.Description)
	}
}

func TestTicketLine_TruncatesLongTitles(t *testing.T) {
	state := testState(1)
	state.Tickets[0].Title = strings.Repeat("x", 61)

	view := Board(state, 0)
	want := "**INF-1: " + strings.Repeat("x", 57) + "...**"
	if !strings.Contains(view.Description, want) {
		t.Fatalf("title not truncated: %q", view.Description)
	}

	// A 60 character title passes through untouched.
	state.Tickets[0].Title = strings.Repeat("y", 60)
	view = Board(state, 0)
	if !strings.Contains(view.Description, strings.Repeat("y", 60)+"**") {
		t.Fatalf("60 char title must not truncate: %q", view.Description)
	}
}

func TestPagerButtons(t *testing.T) {
	state := testState(13)

	view := Board(state, 1)
	prev, next, closeBtn := view.Pager[0], view.Pager[1], view.Pager[2]
	if prev.ID != "board|guild-1:INF|0" || prev.Disabled {
		t.Fatalf("unexpected prev button %+v", prev)
	}
	if next.ID != "board|guild-1:INF|2" || next.Disabled {
		t.Fatalf("unexpected next button %+v", next)
	}
	if closeBtn.ID != "board-close|guild-1:INF" || closeBtn.Disabled {
		t.Fatalf("unexpected close button %+v", closeBtn)
	}

	view = Board(state, 0)
	if !view.Pager[0].Disabled {
		t.Fatal("prev must be disabled on first page")
	}
	view = Board(state, 2)
	if !view.Pager[1].Disabled {
		t.Fatal("next must be disabled on last page")
	}

	view = History(state, 0)
	if !strings.HasPrefix(view.Pager[0].ID, "history|") || view.Pager[2].ID != "history-close|guild-1:INF" {
		t.Fatalf("history pager must carry history IDs: %+v", view.Pager)
	}
}

func TestFormatHours(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{2, "2h"},
		{1.5, "1.5h"},
		{1.25, "1.25h"},
		{0, "0h"},
		{10.1, "10.1h"},
	}
	for _, tc := range cases {
		v := tc.in
		if got := FormatHours(&v); got != tc.want {
			t.Fatalf("FormatHours(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := FormatHours(nil); got != "-" {
		t.Fatalf("FormatHours(nil) = %q, want -", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.FixedZone("CET", 3600))
	if got := FormatTimestamp(&ts); got != "2026-01-02 14:04" {
		t.Fatalf("FormatTimestamp = %q, want UTC rendering", got)
	}
	if got := FormatTimestamp(nil); got != "-" {
		t.Fatalf("FormatTimestamp(nil) = %q, want -", got)
	}
}
