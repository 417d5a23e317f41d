package tracker

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Status is the lifecycle state of a ticket.
type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"

	// StatusDeleted is accepted as an update target but never stored:
	// it hard-deletes the ticket instead.
	StatusDeleted Status = "deleted"
)

// ParseStatus validates a raw status value from an update request.
// StatusDeleted is a valid target even though it is never persisted.
func ParseStatus(raw string) (Status, error) {
	switch Status(strings.TrimSpace(strings.ToLower(raw))) {
	case StatusBacklog:
		return StatusBacklog, nil
	case StatusOpen:
		return StatusOpen, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusDeleted:
		return StatusDeleted, nil
	default:
		return "", ErrInvalidStatus
	}
}

// BoardRef points at the live board message kept in sync for a project.
type BoardRef struct {
	ChannelID string
	MessageID string
}

// Project groups tickets under a short uppercase tag, unique per guild.
type Project struct {
	ID               string
	Name             string
	Tag              string
	NextTicketNumber int
	Board            *BoardRef
}

// Ticket is a single work item. TicketNumber is unique within the project
// and never reused, even after deletion.
type Ticket struct {
	ID                string
	ProjectID         string
	TicketNumber      int
	Title             string
	Assignees         []string
	ExternalAssignees []string
	TargetDate        string
	TimeSpentHours    *float64
	Status            Status
	StartedAt         *time.Time
	CompletedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// GuildData holds one guild's projects and tickets, keyed by entity ID.
type GuildData struct {
	Projects map[string]*Project
	Tickets  map[string]*Ticket
}

// Store is the root aggregate: every guild's data, loaded and saved as a
// unit by the persistence layer.
type Store struct {
	Guilds map[string]*GuildData
}

func NewStore() *Store {
	return &Store{Guilds: map[string]*GuildData{}}
}

// Guild returns the guild's container, creating an empty one on first use.
func (s *Store) Guild(guildID string) *GuildData {
	if s.Guilds == nil {
		s.Guilds = map[string]*GuildData{}
	}
	g, ok := s.Guilds[guildID]
	if !ok {
		g = &GuildData{
			Projects: map[string]*Project{},
			Tickets:  map[string]*Ticket{},
		}
		s.Guilds[guildID] = g
	}
	return g
}

var tagPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// NormalizeTag canonicalizes a project tag: trimmed, uppercased, and
// restricted to A-Z and 0-9.
func NormalizeTag(raw string) (string, error) {
	tag := strings.ToUpper(strings.TrimSpace(raw))
	if tag == "" || !tagPattern.MatchString(tag) {
		return "", ErrInvalidTag
	}
	return tag, nil
}

// ProjectID derives the stable project identifier from guild and tag.
func ProjectID(guildID, tag string) string {
	return guildID + ":" + tag
}

// TicketID derives the stable ticket identifier.
func TicketID(projectID string, number int) string {
	return projectID + ":" + strconv.Itoa(number)
}

// DisplayID is the human-facing ticket identifier, e.g. "INF-3". It is
// recomputed on every render and never persisted.
func DisplayID(project *Project, number int) string {
	return project.Tag + "-" + strconv.Itoa(number)
}

// FindProjectByTag resolves a normalized tag to its project, or nil.
func (g *GuildData) FindProjectByTag(tag string) *Project {
	for _, p := range g.Projects {
		if p.Tag == tag {
			return p
		}
	}
	return nil
}

// FindTicketByNumber resolves a ticket number within a project, or nil.
func (g *GuildData) FindTicketByNumber(projectID string, number int) *Ticket {
	for _, t := range g.Tickets {
		if t.ProjectID == projectID && t.TicketNumber == number {
			return t
		}
	}
	return nil
}

// ProjectTickets returns the project's tickets ordered by ticket number,
// which is creation order since numbers are issued monotonically.
func (g *GuildData) ProjectTickets(projectID string) []*Ticket {
	var tickets []*Ticket
	for _, t := range g.Tickets {
		if t.ProjectID == projectID {
			tickets = append(tickets, t)
		}
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].TicketNumber < tickets[j].TicketNumber
	})
	return tickets
}

// NextTicketNumber reads the project counter, falling back to
// max(existing)+1 when a legacy snapshot carries no counter.
func (g *GuildData) NextTicketNumber(projectID string) int {
	if p := g.Projects[projectID]; p != nil && p.NextTicketNumber > 0 {
		return p.NextTicketNumber
	}
	max := 0
	for _, t := range g.Tickets {
		if t.ProjectID != projectID {
			continue
		}
		if t.TicketNumber > max {
			max = t.TicketNumber
		}
	}
	return max + 1
}
