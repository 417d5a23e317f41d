package tracker

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"
)

// Repository is the persistence gateway contract: the whole store is
// loaded at the start of an operation and saved wholesale at the end.
type Repository interface {
	Load(ctx context.Context) (*Store, error)
	Save(ctx context.Context, store *Store) error
}

// Service runs the ticket and project lifecycle. Every operation follows
// the same cycle: load, resolve, validate, mutate, save. Validation
// failures return before any mutation reaches the repository.
type Service struct {
	Repo Repository
	Now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		Repo: repo,
		Now:  func() time.Time { return time.Now().UTC() },
	}
}

// ProjectState is a read snapshot of one project and its tickets, ordered
// by ticket number.
type ProjectState struct {
	GuildID string
	Project *Project
	Tickets []*Ticket
}

type SetupProjectResult struct {
	State   ProjectState
	Created bool
}

// SetupProject creates a project under a new tag, or renames the project
// already registered under that tag. A tag held by a project stored under
// a different identifier (legacy snapshots) is a conflict.
func (s *Service) SetupProject(ctx context.Context, guildID, name, rawTag string) (SetupProjectResult, error) {
	tag, err := NormalizeTag(rawTag)
	if err != nil {
		return SetupProjectResult{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return SetupProjectResult{}, ErrNameRequired
	}

	store, err := s.Repo.Load(ctx)
	if err != nil {
		return SetupProjectResult{}, err
	}
	guild := store.Guild(guildID)

	projectID := ProjectID(guildID, tag)
	project := guild.Projects[projectID]
	created := false
	if project == nil {
		if guild.FindProjectByTag(tag) != nil {
			return SetupProjectResult{}, ErrTagInUse
		}
		project = &Project{
			ID:               projectID,
			Name:             name,
			Tag:              tag,
			NextTicketNumber: guild.NextTicketNumber(projectID),
		}
		guild.Projects[projectID] = project
		created = true
	} else {
		project.Name = name
	}

	if err := s.Repo.Save(ctx, store); err != nil {
		return SetupProjectResult{}, err
	}
	return SetupProjectResult{
		State:   ProjectState{GuildID: guildID, Project: project, Tickets: guild.ProjectTickets(projectID)},
		Created: created,
	}, nil
}

// DeleteConfirmation is the phrase a user must type to confirm a cascade
// delete.
const DeleteConfirmation = "DELETE"

// DeleteProject removes the project and every ticket referencing it. The
// returned project still carries its board reference so the caller can
// delete the live board message.
func (s *Service) DeleteProject(ctx context.Context, guildID, rawTag, confirmation string) (*Project, error) {
	tag, err := NormalizeTag(rawTag)
	if err != nil {
		return nil, err
	}

	store, err := s.Repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	guild := store.Guild(guildID)
	project := guild.FindProjectByTag(tag)
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if strings.TrimSpace(confirmation) != DeleteConfirmation {
		return nil, ErrConfirmationMismatch
	}

	delete(guild.Projects, project.ID)
	for id, t := range guild.Tickets {
		if t.ProjectID == project.ID {
			delete(guild.Tickets, id)
		}
	}

	if err := s.Repo.Save(ctx, store); err != nil {
		return nil, err
	}
	return project, nil
}

// SetProjectBoard records or clears the live board message reference.
func (s *Service) SetProjectBoard(ctx context.Context, guildID, projectID string, ref *BoardRef) error {
	store, err := s.Repo.Load(ctx)
	if err != nil {
		return err
	}
	guild := store.Guild(guildID)
	project := guild.Projects[projectID]
	if project == nil {
		return ErrProjectNotFound
	}
	project.Board = ref
	return s.Repo.Save(ctx, store)
}

// BoardState resolves a project by tag for rendering. A guild with no
// projects at all reports ErrNoProjects before the tag is examined.
func (s *Service) BoardState(ctx context.Context, guildID, rawTag string) (ProjectState, error) {
	store, err := s.Repo.Load(ctx)
	if err != nil {
		return ProjectState{}, err
	}
	guild := store.Guild(guildID)
	if len(guild.Projects) == 0 {
		return ProjectState{}, ErrNoProjects
	}
	tag, err := NormalizeTag(rawTag)
	if err != nil {
		return ProjectState{}, err
	}
	project := guild.FindProjectByTag(tag)
	if project == nil {
		return ProjectState{}, ErrProjectNotFound
	}
	return ProjectState{GuildID: guildID, Project: project, Tickets: guild.ProjectTickets(project.ID)}, nil
}

// BoardStateByID resolves a project by its identifier, used by pagination
// controls that carry the project ID rather than the tag.
func (s *Service) BoardStateByID(ctx context.Context, guildID, projectID string) (ProjectState, error) {
	store, err := s.Repo.Load(ctx)
	if err != nil {
		return ProjectState{}, err
	}
	guild := store.Guild(guildID)
	project := guild.Projects[projectID]
	if project == nil {
		return ProjectState{}, ErrProjectNotFound
	}
	return ProjectState{GuildID: guildID, Project: project, Tickets: guild.ProjectTickets(project.ID)}, nil
}

type TicketResult struct {
	Project *Project
	Ticket  *Ticket
}

// CreateTicket allocates the next ticket number and opens a ticket. The
// counter is advanced before save, so a failed save can skip a number but
// never hand it out twice.
func (s *Service) CreateTicket(ctx context.Context, guildID, rawTag, title, targetDate string) (TicketResult, error) {
	tag, err := NormalizeTag(rawTag)
	if err != nil {
		return TicketResult{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return TicketResult{}, ErrTitleRequired
	}

	store, err := s.Repo.Load(ctx)
	if err != nil {
		return TicketResult{}, err
	}
	guild := store.Guild(guildID)
	project := guild.FindProjectByTag(tag)
	if project == nil {
		return TicketResult{}, ErrProjectNotFound
	}

	number := guild.NextTicketNumber(project.ID)
	project.NextTicketNumber = number + 1

	now := s.Now()
	ticket := &Ticket{
		ID:           TicketID(project.ID, number),
		ProjectID:    project.ID,
		TicketNumber: number,
		Title:        title,
		TargetDate:   strings.TrimSpace(targetDate),
		Status:       StatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	guild.Tickets[ticket.ID] = ticket

	if err := s.Repo.Save(ctx, store); err != nil {
		return TicketResult{}, err
	}
	return TicketResult{Project: project, Ticket: ticket}, nil
}

// UpdateTicketRequest carries the fields of a ticket update action.
// TimeSpentHours is mandatory and overwrites the previous report; the
// optional fields are applied only when non-empty.
type UpdateTicketRequest struct {
	TimeSpentHours float64
	Title          string
	TargetDate     string
	Status         string
}

type UpdateTicketResult struct {
	Project *Project
	Ticket  *Ticket // nil when the update deleted the ticket
	Deleted bool
}

// UpdateTicket applies field edits and the status transition rules. A
// status of "deleted" hard-deletes the ticket; any edits bundled in the
// same request are discarded. The ticket is resolved before the request
// fields are validated, so an unresolvable ticket reports not-found even
// when the request is also malformed.
func (s *Service) UpdateTicket(ctx context.Context, guildID, rawTag string, number int, req UpdateTicketRequest) (UpdateTicketResult, error) {
	tag, err := NormalizeTag(rawTag)
	if err != nil {
		return UpdateTicketResult{}, err
	}

	store, err := s.Repo.Load(ctx)
	if err != nil {
		return UpdateTicketResult{}, err
	}
	guild := store.Guild(guildID)
	project := guild.FindProjectByTag(tag)
	if project == nil {
		return UpdateTicketResult{}, ErrProjectNotFound
	}
	ticket := guild.FindTicketByNumber(project.ID, number)
	if ticket == nil {
		return UpdateTicketResult{}, ErrTicketNotFound
	}

	if !validTimeSpent(req.TimeSpentHours) {
		return UpdateTicketResult{}, ErrInvalidTimeSpent
	}
	var status Status
	if strings.TrimSpace(req.Status) != "" {
		status, err = ParseStatus(req.Status)
		if err != nil {
			return UpdateTicketResult{}, err
		}
	}

	if status == StatusDeleted {
		delete(guild.Tickets, ticket.ID)
		if err := s.Repo.Save(ctx, store); err != nil {
			return UpdateTicketResult{}, err
		}
		return UpdateTicketResult{Project: project, Deleted: true}, nil
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		ticket.Title = title
	}
	if target := strings.TrimSpace(req.TargetDate); target != "" {
		ticket.TargetDate = target
	}
	spent := req.TimeSpentHours
	ticket.TimeSpentHours = &spent

	now := s.Now()
	if status != "" {
		ticket.Status = status
		switch status {
		case StatusInProgress:
			if ticket.StartedAt == nil {
				started := now
				ticket.StartedAt = &started
			}
		case StatusCompleted:
			if ticket.StartedAt == nil {
				started := ticket.CreatedAt
				ticket.StartedAt = &started
			}
			if ticket.CompletedAt == nil {
				completed := now
				ticket.CompletedAt = &completed
			}
		}
	}
	ticket.UpdatedAt = now

	if err := s.Repo.Save(ctx, store); err != nil {
		return UpdateTicketResult{}, err
	}
	return UpdateTicketResult{Project: project, Ticket: ticket}, nil
}

// AssignTicket adds an internal assignee. Unless the ticket is already
// completed or cancelled, assignment forces it into in_progress and stamps
// the first start time.
func (s *Service) AssignTicket(ctx context.Context, guildID, rawTag string, number int, userID string) (TicketResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return TicketResult{}, ErrAssigneeRequired
	}
	return s.assign(ctx, guildID, rawTag, number, func(t *Ticket) {
		t.Assignees = appendUnique(t.Assignees, userID)
	})
}

// AssignExternal adds a free-text assignee for someone outside the guild.
// External names are arbitrary labels: no case folding, no validation
// beyond non-emptiness.
func (s *Service) AssignExternal(ctx context.Context, guildID, rawTag string, number int, name string) (TicketResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return TicketResult{}, ErrAssigneeRequired
	}
	return s.assign(ctx, guildID, rawTag, number, func(t *Ticket) {
		t.ExternalAssignees = appendUnique(t.ExternalAssignees, name)
	})
}

func (s *Service) assign(ctx context.Context, guildID, rawTag string, number int, add func(*Ticket)) (TicketResult, error) {
	tag, err := NormalizeTag(rawTag)
	if err != nil {
		return TicketResult{}, err
	}
	store, err := s.Repo.Load(ctx)
	if err != nil {
		return TicketResult{}, err
	}
	guild := store.Guild(guildID)
	project := guild.FindProjectByTag(tag)
	if project == nil {
		return TicketResult{}, ErrProjectNotFound
	}
	ticket := guild.FindTicketByNumber(project.ID, number)
	if ticket == nil {
		return TicketResult{}, ErrTicketNotFound
	}

	add(ticket)
	now := s.Now()
	if ticket.Status != StatusCompleted && ticket.Status != StatusCancelled {
		ticket.Status = StatusInProgress
		if ticket.StartedAt == nil {
			started := now
			ticket.StartedAt = &started
		}
	}
	ticket.UpdatedAt = now

	if err := s.Repo.Save(ctx, store); err != nil {
		return TicketResult{}, err
	}
	return TicketResult{Project: project, Ticket: ticket}, nil
}

type UnassignResult struct {
	Project *Project
	Ticket  *Ticket
	Cleared bool // true when both assignee sets were emptied
}

// UnassignTicket removes one internal assignee, or clears both assignee
// sets when userID is empty.
func (s *Service) UnassignTicket(ctx context.Context, guildID, rawTag string, number int, userID string) (UnassignResult, error) {
	tag, err := NormalizeTag(rawTag)
	if err != nil {
		return UnassignResult{}, err
	}
	store, err := s.Repo.Load(ctx)
	if err != nil {
		return UnassignResult{}, err
	}
	guild := store.Guild(guildID)
	project := guild.FindProjectByTag(tag)
	if project == nil {
		return UnassignResult{}, ErrProjectNotFound
	}
	ticket := guild.FindTicketByNumber(project.ID, number)
	if ticket == nil {
		return UnassignResult{}, ErrTicketNotFound
	}

	userID = strings.TrimSpace(userID)
	cleared := false
	if userID == "" {
		ticket.Assignees = nil
		ticket.ExternalAssignees = nil
		cleared = true
	} else {
		ticket.Assignees = remove(ticket.Assignees, userID)
	}
	ticket.UpdatedAt = s.Now()

	if err := s.Repo.Save(ctx, store); err != nil {
		return UnassignResult{}, err
	}
	return UnassignResult{Project: project, Ticket: ticket, Cleared: cleared}, nil
}

// TagChoice is an autocomplete candidate.
type TagChoice struct {
	Tag  string
	Name string
}

// ProjectTags lists project tags matching a prefix, capped at limit. The
// prefix compare is case-insensitive; results are tag-sorted.
func (s *Service) ProjectTags(ctx context.Context, guildID, prefix string, limit int) ([]TagChoice, error) {
	store, err := s.Repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	guild := store.Guild(guildID)

	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	choices := make([]TagChoice, 0, len(guild.Projects))
	for _, p := range guild.Projects {
		if strings.HasPrefix(p.Tag, prefix) {
			choices = append(choices, TagChoice{Tag: p.Tag, Name: p.Name})
		}
	}
	sortChoices(choices)
	if limit > 0 && len(choices) > limit {
		choices = choices[:limit]
	}
	return choices, nil
}

func validTimeSpent(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return false
	}
	scaled := v * 100
	return scaled == math.Round(scaled)
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func remove(list []string, value string) []string {
	out := list[:0]
	for _, existing := range list {
		if existing != value {
			out = append(out, existing)
		}
	}
	return out
}

func sortChoices(choices []TagChoice) {
	sort.Slice(choices, func(i, j int) bool { return choices[i].Tag < choices[j].Tag })
}
