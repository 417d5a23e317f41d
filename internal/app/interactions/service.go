// Package interactions translates chat-platform interaction payloads into
// tracker operations and interaction responses. All option extraction
// lands in typed request structs before any core call.
package interactions

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nuid"
	"github.com/ticketboard/bot/internal/board"
	"github.com/ticketboard/bot/internal/contracts"
	"github.com/ticketboard/bot/internal/discord"
	"github.com/ticketboard/bot/internal/sharding"
	"github.com/ticketboard/bot/internal/tracker"
)

var ErrUnsupportedInteraction = errors.New("unsupported interaction")
var ErrGuildOnly = errors.New("interaction outside a guild")

const autocompleteLimit = 25

type Messenger interface {
	CreateMessage(ctx context.Context, channelID string, payload discord.MessagePayload) (discord.Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

type PublishFunc func(subject string, payload []byte) error

type Service struct {
	Tracker   *tracker.Service
	Messenger Messenger
	Publish   PublishFunc
	Now       func() time.Time
	NewID     func() string
}

func NewService(trk *tracker.Service, messenger Messenger, publish PublishFunc) *Service {
	return &Service{
		Tracker:   trk,
		Messenger: messenger,
		Publish:   publish,
		Now:       func() time.Time { return time.Now().UTC() },
		NewID:     nuid.Next,
	}
}

// Handle dispatches one interaction. Domain failures become ephemeral
// notice responses; an error return means the payload itself was not
// actionable.
func (s *Service) Handle(ctx context.Context, in *discord.Interaction) (discord.InteractionResponse, error) {
	if in.Type == discord.InteractionPing {
		return discord.InteractionResponse{Type: discord.ResponsePong}, nil
	}
	if in.GuildID == "" {
		return notice("Server Only", "This bot only works in servers.", board.ColorWarning), nil
	}

	switch in.Type {
	case discord.InteractionCommand:
		return s.handleCommand(ctx, in)
	case discord.InteractionAutocomplete:
		return s.handleAutocomplete(ctx, in)
	case discord.InteractionComponent:
		return s.handleComponent(ctx, in)
	case discord.InteractionModalSubmit:
		return s.handleModal(ctx, in)
	default:
		return discord.InteractionResponse{}, ErrUnsupportedInteraction
	}
}

func (s *Service) handleCommand(ctx context.Context, in *discord.Interaction) (discord.InteractionResponse, error) {
	if in.Data == nil || len(in.Data.Options) == 0 {
		return discord.InteractionResponse{}, ErrUnsupportedInteraction
	}
	sub := in.Data.Options[0]
	opts := options(sub.Options)

	switch in.Data.Name + " " + sub.Name {
	case "project setup":
		return projectSetupModal(), nil
	case "project show":
		return s.projectShow(ctx, in, opts.str("project"))
	case "project history":
		return s.projectHistory(ctx, in.GuildID, opts.str("project"))
	case "project delete":
		tag := strings.ToUpper(strings.TrimSpace(opts.str("project")))
		return projectDeleteModal(tag), nil
	case "ticket create":
		return s.ticketCreate(ctx, in.GuildID, ticketCreateRequest{
			Tag:     opts.str("project"),
			Title:   opts.str("title"),
			DueDate: opts.str("due_date"),
		})
	case "ticket update":
		req := ticketUpdateRequest{
			Tag:     opts.str("project"),
			Number:  opts.str("ticket"),
			Title:   opts.str("title"),
			DueDate: opts.str("due_date"),
			Status:  opts.str("status"),
		}
		req.TimeSpent, req.TimeSpentSet = opts.num("time_spent")
		return s.ticketUpdate(ctx, in.GuildID, req)
	case "ticket assign":
		userID := opts.str("assignee")
		if userID == "" {
			if invoker := in.Invoker(); invoker != nil {
				userID = invoker.ID
			}
		}
		return s.ticketAssign(ctx, in.GuildID, opts.str("project"), opts.str("ticket"), userID)
	case "ticket assign-external":
		return s.ticketAssignExternal(ctx, in.GuildID, opts.str("project"), opts.str("ticket"), opts.str("assignee"))
	case "ticket unassign":
		return s.ticketUnassign(ctx, in.GuildID, opts.str("project"), opts.str("ticket"), opts.str("assignee"))
	default:
		return discord.InteractionResponse{}, ErrUnsupportedInteraction
	}
}

type ticketCreateRequest struct {
	Tag     string
	Title   string
	DueDate string
}

type ticketUpdateRequest struct {
	Tag          string
	Number       string
	TimeSpent    float64
	TimeSpentSet bool
	Title        string
	DueDate      string
	Status       string
}

func (s *Service) projectShow(ctx context.Context, in *discord.Interaction, rawTag string) (discord.InteractionResponse, error) {
	state, err := s.Tracker.BoardState(ctx, in.GuildID, rawTag)
	if err != nil {
		return noticeForError(err), nil
	}

	view := board.Board(state, 0)
	msg, err := s.Messenger.CreateMessage(ctx, in.ChannelID, discord.ViewMessage(view))
	if err != nil {
		log.Printf("posting board for %s failed: %v", state.Project.ID, err)
		return notice("Board Failed", "Could not post the board message here.", board.ColorError), nil
	}

	ref := &tracker.BoardRef{ChannelID: msg.ChannelID, MessageID: msg.ID}
	if err := s.Tracker.SetProjectBoard(ctx, in.GuildID, state.Project.ID, ref); err != nil {
		return noticeForError(err), nil
	}
	return notice("Board Posted", "Live board for "+state.Project.Tag+" is now in this channel.", board.ColorSuccess), nil
}

func (s *Service) projectHistory(ctx context.Context, guildID, rawTag string) (discord.InteractionResponse, error) {
	state, err := s.Tracker.BoardState(ctx, guildID, rawTag)
	if err != nil {
		// History has no first-project onboarding; an empty guild reads
		// as an unknown project here.
		if errors.Is(err, tracker.ErrNoProjects) {
			err = tracker.ErrProjectNotFound
		}
		return noticeForError(err), nil
	}
	view := board.History(state, 0)
	return discord.InteractionResponse{
		Type: discord.ResponseChannelMessage,
		Data: &discord.ResponseData{
			Embeds:     []discord.Embed{discord.ViewEmbed(view)},
			Components: discord.ViewComponents(view),
			Flags:      discord.FlagEphemeral,
		},
	}, nil
}

func (s *Service) ticketCreate(ctx context.Context, guildID string, req ticketCreateRequest) (discord.InteractionResponse, error) {
	result, err := s.Tracker.CreateTicket(ctx, guildID, req.Tag, req.Title, req.DueDate)
	if err != nil {
		return noticeForError(err), nil
	}
	s.publishRefresh(guildID, result.Project.ID)
	display := tracker.DisplayID(result.Project, result.Ticket.TicketNumber)
	return notice("Ticket Created", "#"+display+" is ready.", board.ColorSuccess), nil
}

func (s *Service) ticketUpdate(ctx context.Context, guildID string, req ticketUpdateRequest) (discord.InteractionResponse, error) {
	number, ok := parseTicketNumber(req.Number)
	if !ok {
		return noticeForError(tracker.ErrTicketNotFound), nil
	}
	if !req.TimeSpentSet {
		return noticeForError(tracker.ErrInvalidTimeSpent), nil
	}
	result, err := s.Tracker.UpdateTicket(ctx, guildID, req.Tag, number, tracker.UpdateTicketRequest{
		TimeSpentHours: req.TimeSpent,
		Title:          req.Title,
		TargetDate:     req.DueDate,
		Status:         req.Status,
	})
	if err != nil {
		return noticeForError(err), nil
	}
	s.publishRefresh(guildID, result.Project.ID)

	if result.Deleted {
		display := tracker.DisplayID(result.Project, number)
		return notice("Ticket Deleted", "#"+display+" deleted.", board.ColorWarning), nil
	}
	display := tracker.DisplayID(result.Project, result.Ticket.TicketNumber)
	return notice("Ticket Updated", "#"+display+" saved.", board.ColorInfo), nil
}

func (s *Service) ticketAssign(ctx context.Context, guildID, rawTag, rawNumber, userID string) (discord.InteractionResponse, error) {
	number, ok := parseTicketNumber(rawNumber)
	if !ok {
		return noticeForError(tracker.ErrTicketNotFound), nil
	}
	result, err := s.Tracker.AssignTicket(ctx, guildID, rawTag, number, userID)
	if err != nil {
		return noticeForError(err), nil
	}
	s.publishRefresh(guildID, result.Project.ID)
	display := tracker.DisplayID(result.Project, result.Ticket.TicketNumber)
	return notice("Assigned", "#"+display+" assigned to <@"+userID+">.", board.ColorSuccess), nil
}

func (s *Service) ticketAssignExternal(ctx context.Context, guildID, rawTag, rawNumber, name string) (discord.InteractionResponse, error) {
	number, ok := parseTicketNumber(rawNumber)
	if !ok {
		return noticeForError(tracker.ErrTicketNotFound), nil
	}
	result, err := s.Tracker.AssignExternal(ctx, guildID, rawTag, number, name)
	if err != nil {
		return noticeForError(err), nil
	}
	s.publishRefresh(guildID, result.Project.ID)
	display := tracker.DisplayID(result.Project, result.Ticket.TicketNumber)
	return notice("Assigned", "#"+display+" assigned to "+strings.TrimSpace(name)+".", board.ColorSuccess), nil
}

func (s *Service) ticketUnassign(ctx context.Context, guildID, rawTag, rawNumber, userID string) (discord.InteractionResponse, error) {
	number, ok := parseTicketNumber(rawNumber)
	if !ok {
		return noticeForError(tracker.ErrTicketNotFound), nil
	}
	result, err := s.Tracker.UnassignTicket(ctx, guildID, rawTag, number, userID)
	if err != nil {
		return noticeForError(err), nil
	}
	s.publishRefresh(guildID, result.Project.ID)

	display := tracker.DisplayID(result.Project, result.Ticket.TicketNumber)
	if result.Cleared {
		return notice("Unassigned", "Cleared assignees for #"+display+".", board.ColorInfo), nil
	}
	return notice("Unassigned", "Removed <@"+userID+"> from #"+display+".", board.ColorInfo), nil
}

func (s *Service) handleAutocomplete(ctx context.Context, in *discord.Interaction) (discord.InteractionResponse, error) {
	empty := discord.InteractionResponse{
		Type: discord.ResponseAutocompleteResult,
		Data: &discord.ResponseData{Choices: []discord.Choice{}},
	}
	if in.Data == nil || len(in.Data.Options) == 0 {
		return empty, nil
	}
	focused := findFocused(in.Data.Options)
	if focused == nil || focused.Name != "project" {
		return empty, nil
	}

	choices, err := s.Tracker.ProjectTags(ctx, in.GuildID, focused.StringValue(), autocompleteLimit)
	if err != nil {
		return empty, nil
	}
	out := make([]discord.Choice, 0, len(choices))
	for _, c := range choices {
		out = append(out, discord.Choice{Name: c.Tag + " - " + c.Name, Value: c.Tag})
	}
	return discord.InteractionResponse{
		Type: discord.ResponseAutocompleteResult,
		Data: &discord.ResponseData{Choices: out},
	}, nil
}

func (s *Service) handleComponent(ctx context.Context, in *discord.Interaction) (discord.InteractionResponse, error) {
	if in.Data == nil {
		return discord.InteractionResponse{}, ErrUnsupportedInteraction
	}
	parts := strings.Split(in.Data.CustomID, "|")

	switch {
	case parts[0] == "board" && len(parts) == 3:
		return s.pageTurn(ctx, in.GuildID, parts[1], parts[2], board.Board)
	case parts[0] == "history" && len(parts) == 3:
		return s.pageTurn(ctx, in.GuildID, parts[1], parts[2], board.History)
	case parts[0] == "board-close" && len(parts) == 2:
		if in.Message != nil {
			if err := s.Messenger.DeleteMessage(ctx, in.ChannelID, in.Message.ID); err != nil {
				log.Printf("closing board message failed: %v", err)
			}
		}
		return discord.InteractionResponse{Type: discord.ResponseDeferredUpdate}, nil
	case parts[0] == "history-close" && len(parts) == 2:
		return discord.InteractionResponse{
			Type: discord.ResponseUpdateMessage,
			Data: &discord.ResponseData{
				Embeds:     []discord.Embed{{Title: "History Closed", Color: board.ColorInfo}},
				Components: []discord.Component{},
			},
		}, nil
	default:
		return discord.InteractionResponse{}, ErrUnsupportedInteraction
	}
}

func (s *Service) pageTurn(ctx context.Context, guildID, projectID, rawPage string, render func(tracker.ProjectState, int) board.View) (discord.InteractionResponse, error) {
	page, err := strconv.Atoi(rawPage)
	if err != nil {
		return discord.InteractionResponse{}, ErrUnsupportedInteraction
	}
	state, err := s.Tracker.BoardStateByID(ctx, guildID, projectID)
	if err != nil {
		// Project vanished between render and click: just ack.
		return discord.InteractionResponse{Type: discord.ResponseDeferredUpdate}, nil
	}
	view := render(state, page)
	return discord.InteractionResponse{
		Type: discord.ResponseUpdateMessage,
		Data: &discord.ResponseData{
			Embeds:     []discord.Embed{discord.ViewEmbed(view)},
			Components: discord.ViewComponents(view),
		},
	}, nil
}

func (s *Service) handleModal(ctx context.Context, in *discord.Interaction) (discord.InteractionResponse, error) {
	if in.Data == nil {
		return discord.InteractionResponse{}, ErrUnsupportedInteraction
	}
	fields := modalFields(in.Data.Components)

	switch {
	case in.Data.CustomID == "modal:project-setup":
		return s.projectSetup(ctx, in, fields["name"], fields["tag"])
	case strings.HasPrefix(in.Data.CustomID, "modal:project-delete:"):
		tag := strings.TrimPrefix(in.Data.CustomID, "modal:project-delete:")
		return s.projectDelete(ctx, in.GuildID, tag, fields["confirm"])
	default:
		return discord.InteractionResponse{}, ErrUnsupportedInteraction
	}
}

func (s *Service) projectSetup(ctx context.Context, in *discord.Interaction, name, rawTag string) (discord.InteractionResponse, error) {
	result, err := s.Tracker.SetupProject(ctx, in.GuildID, name, rawTag)
	if err != nil {
		return noticeForError(err), nil
	}
	project := result.State.Project

	if project.Board != nil {
		// A live board exists; the syncer will bring it up to date, or
		// heal the reference if the message is gone.
		s.publishRefresh(in.GuildID, project.ID)
	} else {
		view := board.Board(result.State, 0)
		msg, err := s.Messenger.CreateMessage(ctx, in.ChannelID, discord.ViewMessage(view))
		if err != nil {
			log.Printf("posting board for %s failed: %v", project.ID, err)
			return notice("Project Saved", "Project "+project.Tag+" saved, but the board could not be posted.", board.ColorWarning), nil
		}
		ref := &tracker.BoardRef{ChannelID: msg.ChannelID, MessageID: msg.ID}
		if err := s.Tracker.SetProjectBoard(ctx, in.GuildID, project.ID, ref); err != nil {
			return noticeForError(err), nil
		}
	}

	if result.Created {
		return notice("Project Created", "Project "+project.Tag+" is ready.", board.ColorSuccess), nil
	}
	return notice("Project Updated", "Project "+project.Tag+" renamed.", board.ColorInfo), nil
}

func (s *Service) projectDelete(ctx context.Context, guildID, rawTag, confirmation string) (discord.InteractionResponse, error) {
	project, err := s.Tracker.DeleteProject(ctx, guildID, rawTag, confirmation)
	if err != nil {
		if errors.Is(err, tracker.ErrConfirmationMismatch) {
			return notice("Cancelled", "Project delete cancelled.", board.ColorWarning), nil
		}
		return noticeForError(err), nil
	}

	if project.Board != nil {
		if err := s.Messenger.DeleteMessage(ctx, project.Board.ChannelID, project.Board.MessageID); err != nil {
			log.Printf("deleting board message for %s failed: %v", project.ID, err)
		}
	}
	return notice("Project Deleted", "Project "+project.Tag+" deleted and all tickets cleared.", board.ColorSuccess), nil
}

func (s *Service) publishRefresh(guildID, projectID string) {
	cmd := contracts.BoardRefresh{
		CommandID:   s.NewID(),
		GuildID:     guildID,
		ProjectID:   projectID,
		RequestedAt: s.Now(),
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		log.Printf("encoding board refresh failed: %v", err)
		return
	}
	if err := s.Publish(sharding.RefreshSubject(guildID), payload); err != nil {
		log.Printf("publishing board refresh for %s failed: %v", projectID, err)
	}
}

func projectSetupModal() discord.InteractionResponse {
	return discord.InteractionResponse{
		Type: discord.ResponseModal,
		Data: &discord.ResponseData{
			CustomID: "modal:project-setup",
			Title:    "Project Setup",
			Components: []discord.Component{
				discord.ActionRow(discord.Component{
					Type:     discord.ComponentTextInput,
					Style:    discord.TextInputShort,
					CustomID: "name",
					Label:    "Project name",
					Required: true,
				}),
				discord.ActionRow(discord.Component{
					Type:     discord.ComponentTextInput,
					Style:    discord.TextInputShort,
					CustomID: "tag",
					Label:    "Project tag (A-Z/0-9, no spaces)",
					Required: true,
				}),
			},
		},
	}
}

func projectDeleteModal(tag string) discord.InteractionResponse {
	return discord.InteractionResponse{
		Type: discord.ResponseModal,
		Data: &discord.ResponseData{
			CustomID: "modal:project-delete:" + tag,
			Title:    "Delete Project",
			Components: []discord.Component{
				discord.ActionRow(discord.Component{
					Type:     discord.ComponentTextInput,
					Style:    discord.TextInputShort,
					CustomID: "confirm",
					Label:    "Type DELETE to confirm",
					Required: true,
				}),
			},
		},
	}
}

func notice(title, message string, color int) discord.InteractionResponse {
	return discord.InteractionResponse{
		Type: discord.ResponseChannelMessage,
		Data: &discord.ResponseData{
			Embeds: []discord.Embed{{Title: title, Description: message, Color: color}},
			Flags:  discord.FlagEphemeral,
		},
	}
}

// noticeForError renders a tracker failure as an ephemeral notice; the
// severity color follows the error taxonomy.
func noticeForError(err error) discord.InteractionResponse {
	switch {
	case errors.Is(err, tracker.ErrNoProjects):
		return notice("No Projects", "Use /project setup to create a project.", board.ColorInfo)
	case errors.Is(err, tracker.ErrProjectNotFound):
		return notice("Unknown Project", "Unknown project tag.", board.ColorError)
	case errors.Is(err, tracker.ErrTicketNotFound):
		return notice("Not Found", "Ticket not found.", board.ColorError)
	case errors.Is(err, tracker.ErrInvalidTag):
		return notice("Invalid Tag", "Project tag must be A-Z/0-9 with no spaces.", board.ColorWarning)
	case errors.Is(err, tracker.ErrInvalidTimeSpent):
		return notice("Invalid Time", "Time spent must be hours like 2 or 1.5 (up to 2 decimals).", board.ColorWarning)
	case errors.Is(err, tracker.ErrTagInUse):
		return notice("Tag In Use", "That tag is already in use.", board.ColorWarning)
	case tracker.Classify(err) == tracker.KindValidation:
		return notice("Invalid Input", err.Error(), board.ColorWarning)
	default:
		return notice("Something Broke", "The action could not be completed.", board.ColorError)
	}
}

type optionMap map[string]discord.CommandOption

func options(opts []discord.CommandOption) optionMap {
	m := make(optionMap, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (m optionMap) str(name string) string {
	o, ok := m[name]
	if !ok {
		return ""
	}
	return o.StringValue()
}

func (m optionMap) num(name string) (float64, bool) {
	o, ok := m[name]
	if !ok {
		return 0, false
	}
	return o.NumberValue()
}

func findFocused(opts []discord.CommandOption) *discord.CommandOption {
	for i := range opts {
		if opts[i].Focused {
			return &opts[i]
		}
		if found := findFocused(opts[i].Options); found != nil {
			return found
		}
	}
	return nil
}

func modalFields(rows []discord.ModalRow) map[string]string {
	fields := map[string]string{}
	for _, row := range rows {
		for _, c := range row.Components {
			fields[c.CustomID] = c.Value
		}
	}
	return fields
}

func parseTicketNumber(raw string) (int, bool) {
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || number <= 0 {
		return 0, false
	}
	return number, true
}
