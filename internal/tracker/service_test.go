package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeRepo struct {
	store   *Store
	saves   int
	saveErr error
}

func (f *fakeRepo) Load(_ context.Context) (*Store, error) {
	if f.store == nil {
		f.store = NewStore()
	}
	return f.store, nil
}

func (f *fakeRepo) Save(_ context.Context, store *Store) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.store = store
	return nil
}

func newTestService(repo *fakeRepo) *Service {
	svc := NewService(repo)
	svc.Now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestSetupProject_CreateAndRename(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := newTestService(repo)

	result, err := svc.SetupProject(ctx, "guild-1", "Infrastructure", " inf ")
	if err != nil {
		t.Fatalf("SetupProject returned error: %v", err)
	}
	if !result.Created {
		t.Fatal("expected Created on first setup")
	}
	if result.State.Project.Tag != "INF" || result.State.Project.ID != "guild-1:INF" {
		t.Fatalf("unexpected project: %+v", result.State.Project)
	}
	if result.State.Project.NextTicketNumber != 1 {
		t.Fatalf("expected counter seeded to 1, got %d", result.State.Project.NextTicketNumber)
	}

	result, err = svc.SetupProject(ctx, "guild-1", "Infra Renamed", "INF")
	if err != nil {
		t.Fatalf("rename returned error: %v", err)
	}
	if result.Created {
		t.Fatal("rename must not report Created")
	}
	if result.State.Project.Name != "Infra Renamed" {
		t.Fatalf("rename did not apply: %+v", result.State.Project)
	}
	if len(repo.store.Guild("guild-1").Projects) != 1 {
		t.Fatalf("rename must not add a project, have %d", len(repo.store.Guild("guild-1").Projects))
	}
}

func TestSetupProject_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeRepo{})

	if _, err := svc.SetupProject(ctx, "guild-1", "Infra", "has space"); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag, got %v", err)
	}
	if _, err := svc.SetupProject(ctx, "guild-1", "Infra", "inf-ra"); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag for punctuation, got %v", err)
	}
	if _, err := svc.SetupProject(ctx, "guild-1", "   ", "INF"); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestSetupProject_TagHeldByLegacyProject(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{store: NewStore()}
	guild := repo.store.Guild("guild-1")
	// A snapshot written before identifiers were derived from the tag.
	guild.Projects["legacy-id"] = &Project{ID: "legacy-id", Name: "Old", Tag: "INF", NextTicketNumber: 5}

	svc := newTestService(repo)
	if _, err := svc.SetupProject(ctx, "guild-1", "Infra", "INF"); !errors.Is(err, ErrTagInUse) {
		t.Fatalf("expected ErrTagInUse, got %v", err)
	}
}

func TestDeleteProject_CascadeAndConfirmation(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := newTestService(repo)

	mustSetup(t, svc, "guild-1", "Infra", "INF")
	mustSetup(t, svc, "guild-1", "Website", "WEB")
	mustCreate(t, svc, "guild-1", "INF", "first")
	mustCreate(t, svc, "guild-1", "INF", "second")
	mustCreate(t, svc, "guild-1", "WEB", "keep me")

	if _, err := svc.DeleteProject(ctx, "guild-1", "INF", "delete"); !errors.Is(err, ErrConfirmationMismatch) {
		t.Fatalf("expected ErrConfirmationMismatch, got %v", err)
	}
	if len(repo.store.Guild("guild-1").Tickets) != 3 {
		t.Fatal("mismatched confirmation must not delete anything")
	}

	project, err := svc.DeleteProject(ctx, "guild-1", "INF", "DELETE")
	if err != nil {
		t.Fatalf("DeleteProject returned error: %v", err)
	}
	if project.Tag != "INF" {
		t.Fatalf("unexpected deleted project: %+v", project)
	}

	guild := repo.store.Guild("guild-1")
	if len(guild.Projects) != 1 {
		t.Fatalf("expected 1 project left, got %d", len(guild.Projects))
	}
	if len(guild.Tickets) != 1 {
		t.Fatalf("cascade must remove the project's tickets, %d left", len(guild.Tickets))
	}
	for _, ticket := range guild.Tickets {
		if ticket.Title != "keep me" {
			t.Fatalf("wrong ticket survived: %+v", ticket)
		}
	}
}

func TestBoardState_EmptyGuild(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeRepo{})

	// Before any project exists the guild-wide condition wins, even over
	// a tag that would not normalize.
	if _, err := svc.BoardState(ctx, "guild-1", "INF"); !errors.Is(err, ErrNoProjects) {
		t.Fatalf("expected ErrNoProjects, got %v", err)
	}
	if _, err := svc.BoardState(ctx, "guild-1", "not a tag"); !errors.Is(err, ErrNoProjects) {
		t.Fatalf("expected ErrNoProjects for bad tag too, got %v", err)
	}

	mustSetup(t, svc, "guild-1", "Infra", "INF")
	if _, err := svc.BoardState(ctx, "guild-1", "OPS"); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound with projects present, got %v", err)
	}
}

func TestSetProjectBoard(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := newTestService(repo)
	mustSetup(t, svc, "guild-1", "Infra", "INF")

	ref := &BoardRef{ChannelID: "chan-1", MessageID: "msg-1"}
	if err := svc.SetProjectBoard(ctx, "guild-1", "guild-1:INF", ref); err != nil {
		t.Fatalf("SetProjectBoard returned error: %v", err)
	}
	got := repo.store.Guild("guild-1").Projects["guild-1:INF"].Board
	if diff := cmp.Diff(ref, got); diff != "" {
		t.Fatalf("board ref mismatch (-want +got):\n%s", diff)
	}

	if err := svc.SetProjectBoard(ctx, "guild-1", "guild-1:INF", nil); err != nil {
		t.Fatalf("clearing board returned error: %v", err)
	}
	if repo.store.Guild("guild-1").Projects["guild-1:INF"].Board != nil {
		t.Fatal("board ref not cleared")
	}

	if err := svc.SetProjectBoard(ctx, "guild-1", "guild-1:NOPE", ref); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestCreateTicket_Numbering(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := newTestService(repo)
	mustSetup(t, svc, "guild-1", "Infra", "INF")

	first := mustCreate(t, svc, "guild-1", "INF", "one")
	second := mustCreate(t, svc, "guild-1", "INF", "two")
	if first.Ticket.TicketNumber != 1 || second.Ticket.TicketNumber != 2 {
		t.Fatalf("expected numbers 1 and 2, got %d and %d", first.Ticket.TicketNumber, second.Ticket.TicketNumber)
	}
	if second.Ticket.ID != "guild-1:INF:2" {
		t.Fatalf("unexpected ticket ID %q", second.Ticket.ID)
	}
	if second.Ticket.Status != StatusOpen {
		t.Fatalf("new tickets must open as %q, got %q", StatusOpen, second.Ticket.Status)
	}

	// Numbers keep climbing after a delete; they are never reused.
	if _, err := svc.UpdateTicket(ctx, "guild-1", "INF", 2, UpdateTicketRequest{Status: "deleted"}); err != nil {
		t.Fatalf("delete via update returned error: %v", err)
	}
	third := mustCreate(t, svc, "guild-1", "INF", "three")
	if third.Ticket.TicketNumber != 3 {
		t.Fatalf("expected number 3 after delete, got %d", third.Ticket.TicketNumber)
	}
}

func TestCreateTicket_RepairsMissingCounter(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{store: NewStore()}
	guild := repo.store.Guild("guild-1")
	guild.Projects["guild-1:INF"] = &Project{ID: "guild-1:INF", Name: "Infra", Tag: "INF"}
	guild.Tickets["guild-1:INF:7"] = &Ticket{
		ID: "guild-1:INF:7", ProjectID: "guild-1:INF", TicketNumber: 7, Title: "old", Status: StatusOpen,
	}

	svc := newTestService(repo)
	result, err := svc.CreateTicket(ctx, "guild-1", "INF", "new one", "")
	if err != nil {
		t.Fatalf("CreateTicket returned error: %v", err)
	}
	if result.Ticket.TicketNumber != 8 {
		t.Fatalf("expected repaired number 8, got %d", result.Ticket.TicketNumber)
	}
	if result.Project.NextTicketNumber != 9 {
		t.Fatalf("expected counter advanced to 9, got %d", result.Project.NextTicketNumber)
	}
}

func TestCreateTicket_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeRepo{})
	mustSetup(t, svc, "guild-1", "Infra", "INF")

	if _, err := svc.CreateTicket(ctx, "guild-1", "INF", "   ", ""); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if _, err := svc.CreateTicket(ctx, "guild-1", "NOPE", "title", ""); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestUpdateTicket_FieldEdits(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := newTestService(repo)
	mustSetup(t, svc, "guild-1", "Infra", "INF")
	mustCreate(t, svc, "guild-1", "INF", "original title")

	result, err := svc.UpdateTicket(ctx, "guild-1", "INF", 1, UpdateTicketRequest{
		TimeSpentHours: 1.5,
		Title:          "new title",
		TargetDate:     "next friday",
	})
	if err != nil {
		t.Fatalf("UpdateTicket returned error: %v", err)
	}
	ticket := result.Ticket
	if ticket.Title != "new title" || ticket.TargetDate != "next friday" {
		t.Fatalf("edits not applied: %+v", ticket)
	}
	if ticket.TimeSpentHours == nil || *ticket.TimeSpentHours != 1.5 {
		t.Fatalf("time spent not recorded: %+v", ticket.TimeSpentHours)
	}
	if ticket.Status != StatusOpen {
		t.Fatalf("status must not change without a status field, got %q", ticket.Status)
	}

	// Blank optional fields leave previous values alone.
	result, err = svc.UpdateTicket(ctx, "guild-1", "INF", 1, UpdateTicketRequest{TimeSpentHours: 2})
	if err != nil {
		t.Fatalf("second update returned error: %v", err)
	}
	if result.Ticket.Title != "new title" || result.Ticket.TargetDate != "next friday" {
		t.Fatalf("blank fields must not overwrite: %+v", result.Ticket)
	}
	if *result.Ticket.TimeSpentHours != 2 {
		t.Fatalf("time spent must overwrite, got %v", *result.Ticket.TimeSpentHours)
	}
}

func TestUpdateTicket_ResolvesBeforeValidating(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeRepo{})
	mustSetup(t, svc, "guild-1", "Infra", "INF")
	mustCreate(t, svc, "guild-1", "INF", "ticket")

	// A request that is both unresolvable and malformed reports the
	// resolution failure, not the field error.
	bad := UpdateTicketRequest{TimeSpentHours: 1.2345, Status: "paused"}
	if _, err := svc.UpdateTicket(ctx, "guild-1", "INF", 99, bad); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound for unknown ticket, got %v", err)
	}
	if _, err := svc.UpdateTicket(ctx, "guild-1", "OPS", 1, bad); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound for unknown project, got %v", err)
	}
	if _, err := svc.UpdateTicket(ctx, "guild-1", "INF", 1, bad); !errors.Is(err, ErrInvalidTimeSpent) {
		t.Fatalf("expected ErrInvalidTimeSpent once resolved, got %v", err)
	}
}

func TestUpdateTicket_TimeSpentValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeRepo{})
	mustSetup(t, svc, "guild-1", "Infra", "INF")
	mustCreate(t, svc, "guild-1", "INF", "ticket")

	for _, bad := range []float64{-1, 0.001, 1.2345} {
		if _, err := svc.UpdateTicket(ctx, "guild-1", "INF", 1, UpdateTicketRequest{TimeSpentHours: bad}); !errors.Is(err, ErrInvalidTimeSpent) {
			t.Fatalf("expected ErrInvalidTimeSpent for %v, got %v", bad, err)
		}
	}
	for _, good := range []float64{0, 2, 1.5, 0.25, 99.75} {
		if _, err := svc.UpdateTicket(ctx, "guild-1", "INF", 1, UpdateTicketRequest{TimeSpentHours: good}); err != nil {
			t.Fatalf("expected %v accepted, got %v", good, err)
		}
	}
}

func TestUpdateTicket_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := newTestService(repo)
	now := svc.Now()
	created := now.Add(-48 * time.Hour)
	mustSetup(t, svc, "guild-1", "Infra", "INF")
	mustCreate(t, svc, "guild-1", "INF", "ticket")
	repo.store.Guild("guild-1").Tickets["guild-1:INF:1"].CreatedAt = created

	result, err := svc.UpdateTicket(ctx, "guild-1", "INF", 1, UpdateTicketRequest{Status: "in_progress"})
	if err != nil {
		t.Fatalf("UpdateTicket returned error: %v", err)
	}
	if result.Ticket.StartedAt == nil || !result.Ticket.StartedAt.Equal(now) {
		t.Fatalf("first in_progress must stamp start, got %v", result.Ticket.StartedAt)
	}

	// A later in_progress keeps the original start.
	svc.Now = func() time.Time { return now.Add(time.Hour) }
	result, err = svc.UpdateTicket(ctx, "guild-1", "INF", 1, UpdateTicketRequest{Status: "in_progress"})
	if err != nil {
		t.Fatalf("UpdateTicket returned error: %v", err)
	}
	if !result.Ticket.StartedAt.Equal(now) {
		t.Fatalf("start timestamp must not move, got %v", result.Ticket.StartedAt)
	}

	result, err = svc.UpdateTicket(ctx, "guild-1", "INF", 1, UpdateTicketRequest{Status: "completed"})
	if err != nil {
		t.Fatalf("complete returned error: %v", err)
	}
	if result.Ticket.CompletedAt == nil || !result.Ticket.CompletedAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("completion must be stamped, got %v", result.Ticket.CompletedAt)
	}

	// Completing again keeps the first completion.
	svc.Now = func() time.Time { return now.Add(9 * time.Hour) }
	result, err = svc.UpdateTicket(ctx, "guild-1", "INF", 1, UpdateTicketRequest{Status: "completed"})
	if err != nil {
		t.Fatalf("second complete returned error: %v", err)
	}
	if !result.Ticket.CompletedAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("completion timestamp must not move, got %v", result.Ticket.CompletedAt)
	}
}

func TestUpdateTicket_CompleteBackfillsStart(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := newTestService(repo)
	created := svc.Now().Add(-72 * time.Hour)
	mustSetup(t, svc, "guild-1", "Infra", "INF")
	mustCreate(t, svc, "guild-1", "INF", "never started")
	repo.store.Guild("guild-1").Tickets["guild-1:INF:1"].CreatedAt = created

	result, err := svc.UpdateTicket(ctx, "guild-1", "INF", 1, UpdateTicketRequest{Status: "completed"})
	if err != nil {
		t.Fatalf("UpdateTicket returned error: %v", err)
	}
	if result.Ticket.StartedAt == nil || !result.Ticket.StartedAt.Equal(created) {
		t.Fatalf("completing an unstarted ticket must backfill start from creation, got %v", result.Ticket.StartedAt)
	}
}

func TestUpdateTicket_DeleteDiscardsBundledEdits(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := newTestService(repo)
	mustSetup(t, svc, "guild-1", "Infra", "INF")
	mustCreate(t, svc, "guild-1", "INF", "doomed")

	result, err := svc.UpdateTicket(ctx, "guild-1", "INF", 1, UpdateTicketRequest{
		TimeSpentHours: 3,
		Title:          "this edit goes nowhere",
		Status:         "deleted",
	})
	if err != nil {
		t.Fatalf("UpdateTicket returned error: %v", err)
	}
	if !result.Deleted || result.Ticket != nil {
		t.Fatalf("expected deleted result, got %+v", result)
	}
	if len(repo.store.Guild("guild-1").Tickets) != 0 {
		t.Fatal("ticket not removed")
	}
}

func TestAssignTicket(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := newTestService(repo)
	now := svc.Now()
	mustSetup(t, svc, "guild-1", "Infra", "INF")
	mustCreate(t, svc, "guild-1", "INF", "ticket")

	result, err := svc.AssignTicket(ctx, "guild-1", "INF", 1, "user-1")
	if err != nil {
		t.Fatalf("AssignTicket returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"user-1"}, result.Ticket.Assignees); diff != "" {
		t.Fatalf("assignees mismatch (-want +got):\n%s", diff)
	}
	if result.Ticket.Status != StatusInProgress {
		t.Fatalf("assignment must force in_progress, got %q", result.Ticket.Status)
	}
	if result.Ticket.StartedAt == nil || !result.Ticket.StartedAt.Equal(now) {
		t.Fatalf("assignment must stamp first start, got %v", result.Ticket.StartedAt)
	}

	// Assigning the same user twice is a no-op on the set.
	result, err = svc.AssignTicket(ctx, "guild-1", "INF", 1, "user-1")
	if err != nil {
		t.Fatalf("repeat assign returned error: %v", err)
	}
	if len(result.Ticket.Assignees) != 1 {
		t.Fatalf("duplicate assignee added: %v", result.Ticket.Assignees)
	}

	if _, err := svc.AssignTicket(ctx, "guild-1", "INF", 1, "  "); !errors.Is(err, ErrAssigneeRequired) {
		t.Fatalf("expected ErrAssigneeRequired, got %v", err)
	}
	if _, err := svc.AssignTicket(ctx, "guild-1", "INF", 99, "user-1"); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestAssignTicket_CompletedStaysCompleted(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := newTestService(repo)
	mustSetup(t, svc, "guild-1", "Infra", "INF")
	mustCreate(t, svc, "guild-1", "INF", "done already")
	if _, err := svc.UpdateTicket(ctx, "guild-1", "INF", 1, UpdateTicketRequest{Status: "completed"}); err != nil {
		t.Fatalf("complete returned error: %v", err)
	}

	result, err := svc.AssignTicket(ctx, "guild-1", "INF", 1, "user-1")
	if err != nil {
		t.Fatalf("AssignTicket returned error: %v", err)
	}
	if result.Ticket.Status != StatusCompleted {
		t.Fatalf("assignment must not reopen a completed ticket, got %q", result.Ticket.Status)
	}
}

func TestAssignExternal(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeRepo{})
	mustSetup(t, svc, "guild-1", "Infra", "INF")
	mustCreate(t, svc, "guild-1", "INF", "ticket")

	result, err := svc.AssignExternal(ctx, "guild-1", "INF", 1, " Contractor Bob ")
	if err != nil {
		t.Fatalf("AssignExternal returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"Contractor Bob"}, result.Ticket.ExternalAssignees); diff != "" {
		t.Fatalf("external assignees mismatch (-want +got):\n%s", diff)
	}
	if result.Ticket.Status != StatusInProgress {
		t.Fatalf("external assignment must force in_progress, got %q", result.Ticket.Status)
	}
}

func TestUnassignTicket(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeRepo{})
	mustSetup(t, svc, "guild-1", "Infra", "INF")
	mustCreate(t, svc, "guild-1", "INF", "ticket")
	if _, err := svc.AssignTicket(ctx, "guild-1", "INF", 1, "user-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AssignTicket(ctx, "guild-1", "INF", 1, "user-2"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AssignExternal(ctx, "guild-1", "INF", 1, "Bob"); err != nil {
		t.Fatal(err)
	}

	result, err := svc.UnassignTicket(ctx, "guild-1", "INF", 1, "user-1")
	if err != nil {
		t.Fatalf("UnassignTicket returned error: %v", err)
	}
	if result.Cleared {
		t.Fatal("single unassign must not report Cleared")
	}
	if diff := cmp.Diff([]string{"user-2"}, result.Ticket.Assignees); diff != "" {
		t.Fatalf("assignees mismatch (-want +got):\n%s", diff)
	}
	if len(result.Ticket.ExternalAssignees) != 1 {
		t.Fatal("single unassign must not touch external assignees")
	}

	result, err = svc.UnassignTicket(ctx, "guild-1", "INF", 1, "")
	if err != nil {
		t.Fatalf("clear returned error: %v", err)
	}
	if !result.Cleared {
		t.Fatal("empty user must clear all assignees")
	}
	if len(result.Ticket.Assignees) != 0 || len(result.Ticket.ExternalAssignees) != 0 {
		t.Fatalf("both sets must be emptied: %+v", result.Ticket)
	}
}

func TestProjectTags(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeRepo{})
	mustSetup(t, svc, "guild-1", "Infra", "INF")
	mustSetup(t, svc, "guild-1", "Internal", "INT")
	mustSetup(t, svc, "guild-1", "Website", "WEB")
	mustSetup(t, svc, "guild-2", "Other Guild", "INF2")

	choices, err := svc.ProjectTags(ctx, "guild-1", "in", 25)
	if err != nil {
		t.Fatalf("ProjectTags returned error: %v", err)
	}
	want := []TagChoice{{Tag: "INF", Name: "Infra"}, {Tag: "INT", Name: "Internal"}}
	if diff := cmp.Diff(want, choices); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}

	choices, err = svc.ProjectTags(ctx, "guild-1", "", 2)
	if err != nil {
		t.Fatalf("ProjectTags returned error: %v", err)
	}
	if len(choices) != 2 {
		t.Fatalf("limit not applied, got %d choices", len(choices))
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{ErrProjectNotFound, KindNotFound},
		{ErrTicketNotFound, KindNotFound},
		{ErrInvalidTag, KindValidation},
		{ErrInvalidTimeSpent, KindValidation},
		{ErrConfirmationMismatch, KindValidation},
		{ErrTagInUse, KindConflict},
		{errors.New("disk on fire"), KindInternal},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Fatalf("Classify(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func mustSetup(t *testing.T, svc *Service, guildID, name, tag string) SetupProjectResult {
	t.Helper()
	result, err := svc.SetupProject(context.Background(), guildID, name, tag)
	if err != nil {
		t.Fatalf("SetupProject(%s) returned error: %v", tag, err)
	}
	return result
}

func mustCreate(t *testing.T, svc *Service, guildID, tag, title string) TicketResult {
	t.Helper()
	result, err := svc.CreateTicket(context.Background(), guildID, tag, title, "")
	if err != nil {
		t.Fatalf("CreateTicket(%s) returned error: %v", title, err)
	}
	return result
}
