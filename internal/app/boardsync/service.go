// Package boardsync keeps live board messages in step with the store.
// Synchronization is a best-effort side channel: an unreachable board
// message heals the state (the reference is dropped) instead of failing.
package boardsync

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/ticketboard/bot/internal/board"
	"github.com/ticketboard/bot/internal/contracts"
	"github.com/ticketboard/bot/internal/discord"
	"github.com/ticketboard/bot/internal/platform/metrics"
	"github.com/ticketboard/bot/internal/tracker"
)

var ErrInvalidRefreshPayload = errors.New("invalid refresh payload")

var boardRefreshes = metrics.NewCounterVec(metrics.Opts{
	Name: "board_refreshes_total",
	Help: "Board refresh commands processed, by outcome.",
}, []string{"outcome"})

func init() {
	metrics.Default.MustRegister(boardRefreshes)
}

// MessageEditor performs the in-place edit of a live board message.
type MessageEditor interface {
	EditMessage(ctx context.Context, channelID, messageID string, payload discord.MessagePayload) error
}

type Service struct {
	Repo   tracker.Repository
	Editor MessageEditor
}

func NewService(repo tracker.Repository, editor MessageEditor) *Service {
	return &Service{Repo: repo, Editor: editor}
}

// Handle processes one refresh command from the stream.
func (s *Service) Handle(ctx context.Context, payload []byte) error {
	var cmd contracts.BoardRefresh
	if err := json.Unmarshal(payload, &cmd); err != nil {
		boardRefreshes.WithLabelValues("invalid").Inc()
		return ErrInvalidRefreshPayload
	}
	if cmd.GuildID == "" || cmd.ProjectID == "" {
		boardRefreshes.WithLabelValues("invalid").Inc()
		return ErrInvalidRefreshPayload
	}
	return s.Refresh(ctx, cmd.GuildID, cmd.ProjectID)
}

// Refresh reloads the authoritative store, renders page 0 of the board
// and edits the recorded message. When the edit fails the board reference
// is cleared and persisted; the failure itself is never surfaced.
func (s *Service) Refresh(ctx context.Context, guildID, projectID string) error {
	store, err := s.Repo.Load(ctx)
	if err != nil {
		boardRefreshes.WithLabelValues("error").Inc()
		return err
	}
	guild := store.Guild(guildID)
	project := guild.Projects[projectID]
	if project == nil || project.Board == nil {
		boardRefreshes.WithLabelValues("skipped").Inc()
		return nil
	}

	state := tracker.ProjectState{
		GuildID: guildID,
		Project: project,
		Tickets: guild.ProjectTickets(projectID),
	}
	view := board.Board(state, 0)

	ref := *project.Board
	if err := s.Editor.EditMessage(ctx, ref.ChannelID, ref.MessageID, discord.ViewMessage(view)); err != nil {
		log.Printf("board message %s/%s unreachable, dropping board reference: %v", ref.ChannelID, ref.MessageID, err)
		project.Board = nil
		if err := s.Repo.Save(ctx, store); err != nil {
			boardRefreshes.WithLabelValues("error").Inc()
			return err
		}
		boardRefreshes.WithLabelValues("healed").Inc()
		return nil
	}
	boardRefreshes.WithLabelValues("ok").Inc()
	return nil
}
