package contracts

import "time"

// BoardRefresh is the command published by interactions-api after a
// mutation and consumed by board-syncer to re-render the live board
// message of the affected project.
type BoardRefresh struct {
	CommandID   string    `json:"command_id"`
	GuildID     string    `json:"guild_id"`
	ProjectID   string    `json:"project_id"`
	RequestedAt time.Time `json:"requested_at"`
}
