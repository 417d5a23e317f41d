// Package store persists the whole tracker store in Postgres. Load and
// Save operate on the entire data graph: Save replaces every row inside
// one transaction, so a failed save leaves the previous snapshot intact.
package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ticketboard/bot/internal/tracker"
)

const createGuildsTableSQL = `
CREATE TABLE IF NOT EXISTS guilds (
  guild_id text PRIMARY KEY
)`

const createProjectsTableSQL = `
CREATE TABLE IF NOT EXISTS projects (
  id text PRIMARY KEY,
  guild_id text NOT NULL,
  name text NOT NULL,
  tag text NOT NULL,
  next_ticket_number integer NOT NULL,
  board_channel_id text,
  board_message_id text,
  UNIQUE (guild_id, tag)
)`

const createTicketsTableSQL = `
CREATE TABLE IF NOT EXISTS tickets (
  id text PRIMARY KEY,
  project_id text NOT NULL,
  ticket_number integer NOT NULL,
  title text NOT NULL,
  status text NOT NULL,
  target_date text,
  time_spent double precision,
  assignees text NOT NULL,
  external_assignees text NOT NULL DEFAULT '[]',
  started_at timestamptz,
  completed_at timestamptz,
  created_at timestamptz NOT NULL,
  updated_at timestamptz NOT NULL,
  UNIQUE (project_id, ticket_number)
)`

// Columns added after the first release; older snapshots may lack them.
const alterTicketsTimeSpentSQL = `
ALTER TABLE tickets
ADD COLUMN IF NOT EXISTS time_spent double precision`

const alterTicketsStartedAtSQL = `
ALTER TABLE tickets
ADD COLUMN IF NOT EXISTS started_at timestamptz`

const alterTicketsCompletedAtSQL = `
ALTER TABLE tickets
ADD COLUMN IF NOT EXISTS completed_at timestamptz`

const alterTicketsExternalAssigneesSQL = `
ALTER TABLE tickets
ADD COLUMN IF NOT EXISTS external_assignees text NOT NULL DEFAULT '[]'`

const insertGuildSQL = `
INSERT INTO guilds (guild_id) VALUES ($1)`

const insertProjectSQL = `
INSERT INTO projects (
  id, guild_id, name, tag, next_ticket_number, board_channel_id, board_message_id
)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const insertTicketSQL = `
INSERT INTO tickets (
  id, project_id, ticket_number, title, status, target_date, time_spent,
  assignees, external_assignees, started_at, completed_at, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const selectGuildsSQL = `
SELECT guild_id FROM guilds`

const selectProjectsSQL = `
SELECT id, guild_id, name, tag, next_ticket_number, board_channel_id, board_message_id
FROM projects`

const selectTicketsSQL = `
SELECT id, project_id, ticket_number, title, status, target_date, time_spent,
       assignees, external_assignees, started_at, completed_at, created_at, updated_at
FROM tickets`

// Repository is the persistence gateway over a pgx pool. It satisfies
// tracker.Repository.
type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		createGuildsTableSQL,
		createProjectsTableSQL,
		createTicketsTableSQL,
		alterTicketsTimeSpentSQL,
		alterTicketsStartedAtSQL,
		alterTicketsCompletedAtSQL,
		alterTicketsExternalAssigneesSQL,
	}
	for _, stmt := range statements {
		if _, err := r.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the full store and reconstructs the nested guild maps.
// Tickets are attached to the guild derived from their project ID prefix,
// so orphaned tickets survive a missing project row.
func (r *Repository) Load(ctx context.Context) (*tracker.Store, error) {
	store := tracker.NewStore()

	guildRows, err := r.Pool.Query(ctx, selectGuildsSQL)
	if err != nil {
		return nil, err
	}
	defer guildRows.Close()
	for guildRows.Next() {
		var guildID string
		if err := guildRows.Scan(&guildID); err != nil {
			return nil, err
		}
		store.Guild(guildID)
	}
	if err := guildRows.Err(); err != nil {
		return nil, err
	}

	projectRows, err := r.Pool.Query(ctx, selectProjectsSQL)
	if err != nil {
		return nil, err
	}
	defer projectRows.Close()
	for projectRows.Next() {
		var (
			p         tracker.Project
			guildID   string
			channelID *string
			messageID *string
		)
		if err := projectRows.Scan(&p.ID, &guildID, &p.Name, &p.Tag, &p.NextTicketNumber, &channelID, &messageID); err != nil {
			return nil, err
		}
		if channelID != nil && *channelID != "" {
			ref := tracker.BoardRef{ChannelID: *channelID}
			if messageID != nil {
				ref.MessageID = *messageID
			}
			p.Board = &ref
		}
		store.Guild(guildID).Projects[p.ID] = &p
	}
	if err := projectRows.Err(); err != nil {
		return nil, err
	}

	ticketRows, err := r.Pool.Query(ctx, selectTicketsSQL)
	if err != nil {
		return nil, err
	}
	defer ticketRows.Close()
	for ticketRows.Next() {
		var (
			t           tracker.Ticket
			targetDate  *string
			assignees   string
			external    *string
			startedAt   *time.Time
			completedAt *time.Time
		)
		if err := ticketRows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.TicketNumber,
			&t.Title,
			&t.Status,
			&targetDate,
			&t.TimeSpentHours,
			&assignees,
			&external,
			&startedAt,
			&completedAt,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if targetDate != nil {
			t.TargetDate = *targetDate
		}
		t.Assignees, err = decodeNames(assignees)
		if err != nil {
			return nil, err
		}
		if external != nil {
			t.ExternalAssignees, err = decodeNames(*external)
			if err != nil {
				return nil, err
			}
		}
		t.StartedAt = startedAt
		t.CompletedAt = completedAt

		guildID := guildIDFromProjectID(t.ProjectID)
		store.Guild(guildID).Tickets[t.ID] = &t
	}
	if err := ticketRows.Err(); err != nil {
		return nil, err
	}

	return store, nil
}

// Save replaces the persisted snapshot with the in-memory one: all rows
// are deleted and reinserted inside a single transaction.
func (r *Repository) Save(ctx context.Context, store *tracker.Store) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"tickets", "projects", "guilds"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	for guildID, guild := range store.Guilds {
		if _, err := tx.Exec(ctx, insertGuildSQL, guildID); err != nil {
			return err
		}

		for _, p := range guild.Projects {
			var channelID, messageID *string
			if p.Board != nil {
				channelID = &p.Board.ChannelID
				messageID = &p.Board.MessageID
			}
			if _, err := tx.Exec(ctx, insertProjectSQL,
				p.ID, guildID, p.Name, p.Tag, p.NextTicketNumber, channelID, messageID,
			); err != nil {
				return err
			}
		}

		for _, t := range guild.Tickets {
			assignees, err := encodeNames(t.Assignees)
			if err != nil {
				return err
			}
			external, err := encodeNames(t.ExternalAssignees)
			if err != nil {
				return err
			}
			var targetDate *string
			if t.TargetDate != "" {
				targetDate = &t.TargetDate
			}
			if _, err := tx.Exec(ctx, insertTicketSQL,
				t.ID, t.ProjectID, t.TicketNumber, t.Title, string(t.Status), targetDate,
				t.TimeSpentHours, assignees, external, t.StartedAt, t.CompletedAt,
				t.CreatedAt, t.UpdatedAt,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func guildIDFromProjectID(projectID string) string {
	if idx := strings.IndexByte(projectID, ':'); idx >= 0 {
		return projectID[:idx]
	}
	return projectID
}

func encodeNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeNames(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	return names, nil
}
