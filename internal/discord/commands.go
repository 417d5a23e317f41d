package discord

// CommandOptionDef describes one option in a command definition. It
// shares field names with CommandOption on the wire, but registration
// needs descriptions, choices and flags that inbound options never carry.
type CommandOptionDef struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Type         int                `json:"type"`
	Required     bool               `json:"required,omitempty"`
	Autocomplete bool               `json:"autocomplete,omitempty"`
	Choices      []Choice           `json:"choices,omitempty"`
	Options      []CommandOptionDef `json:"options,omitempty"`
}

// CommandDef is the registration payload for one application command.
type CommandDef struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Options     []CommandOptionDef `json:"options,omitempty"`
}

func projectOption() CommandOptionDef {
	return CommandOptionDef{
		Name:         "project",
		Description:  "Project tag",
		Type:         OptionString,
		Required:     true,
		Autocomplete: true,
	}
}

func ticketOption() CommandOptionDef {
	return CommandOptionDef{
		Name:        "ticket",
		Description: "Ticket number",
		Type:        OptionString,
		Required:    true,
	}
}

// Commands returns the full slash-command set the bot registers at
// startup.
func Commands() []CommandDef {
	return []CommandDef{
		{
			Name:        "project",
			Description: "Project commands",
			Options: []CommandOptionDef{
				{
					Name:        "show",
					Description: "Show the project board in this channel",
					Type:        OptionSubcommand,
					Options:     []CommandOptionDef{projectOption()},
				},
				{
					Name:        "setup",
					Description: "Create or update a project",
					Type:        OptionSubcommand,
				},
				{
					Name:        "history",
					Description: "View completed tickets",
					Type:        OptionSubcommand,
					Options:     []CommandOptionDef{projectOption()},
				},
				{
					Name:        "delete",
					Description: "Delete the project and all tickets",
					Type:        OptionSubcommand,
					Options:     []CommandOptionDef{projectOption()},
				},
			},
		},
		{
			Name:        "ticket",
			Description: "Ticket commands",
			Options: []CommandOptionDef{
				{
					Name:        "create",
					Description: "Create a ticket",
					Type:        OptionSubcommand,
					Options: []CommandOptionDef{
						projectOption(),
						{Name: "title", Description: "Ticket title", Type: OptionString, Required: true},
						{Name: "due_date", Description: "Due date (free-form text)", Type: OptionString},
					},
				},
				{
					Name:        "update",
					Description: "Update a ticket",
					Type:        OptionSubcommand,
					Options: []CommandOptionDef{
						projectOption(),
						ticketOption(),
						{Name: "time_spent", Description: "Hours since last update (e.g. 2 or 1.5)", Type: OptionNumber, Required: true},
						{Name: "title", Description: "Update ticket title", Type: OptionString},
						{Name: "due_date", Description: "Update due date (free-form text)", Type: OptionString},
						{
							Name:        "status",
							Description: "Update status",
							Type:        OptionString,
							Choices: []Choice{
								{Name: "Backlog", Value: "backlog"},
								{Name: "Open", Value: "open"},
								{Name: "In Progress", Value: "in_progress"},
								{Name: "Completed", Value: "completed"},
								{Name: "Cancelled", Value: "cancelled"},
								{Name: "Deleted", Value: "deleted"},
							},
						},
					},
				},
				{
					Name:        "assign",
					Description: "Assign a ticket",
					Type:        OptionSubcommand,
					Options: []CommandOptionDef{
						projectOption(),
						ticketOption(),
						{Name: "assignee", Description: "Assignee (defaults to you)", Type: OptionUser},
					},
				},
				{
					Name:        "assign-external",
					Description: "Assign a non-guild assignee",
					Type:        OptionSubcommand,
					Options: []CommandOptionDef{
						projectOption(),
						ticketOption(),
						{Name: "assignee", Description: "External assignee name", Type: OptionString, Required: true},
					},
				},
				{
					Name:        "unassign",
					Description: "Unassign users from a ticket",
					Type:        OptionSubcommand,
					Options: []CommandOptionDef{
						projectOption(),
						ticketOption(),
						{Name: "assignee", Description: "Assignee to remove (omit to clear all)", Type: OptionUser},
					},
				},
			},
		},
	}
}
