// Package discord holds the wire types and REST client for the chat
// platform: interaction payloads in, response payloads and message
// operations out. It carries no tracker logic.
package discord

import "encoding/json"

// Interaction types.
const (
	InteractionPing         = 1
	InteractionCommand      = 2
	InteractionComponent    = 3
	InteractionAutocomplete = 4
	InteractionModalSubmit  = 5
)

// Interaction response types.
const (
	ResponsePong               = 1
	ResponseChannelMessage     = 4
	ResponseDeferredUpdate     = 6
	ResponseUpdateMessage      = 7
	ResponseAutocompleteResult = 8
	ResponseModal              = 9
)

// Message flag marking a response visible only to the invoking user.
const FlagEphemeral = 64

// Component types.
const (
	ComponentActionRow = 1
	ComponentButton    = 2
	ComponentTextInput = 4
)

// Button styles.
const (
	ButtonSecondary = 2
)

// Text input styles.
const (
	TextInputShort = 1
)

// Command option types.
const (
	OptionSubcommand = 1
	OptionString     = 3
	OptionUser       = 6
	OptionNumber     = 10
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Member struct {
	User *User `json:"user"`
}

// CommandOption is a decoded slash-command option. Value is a string,
// bool, or float64 depending on the option type.
type CommandOption struct {
	Name    string          `json:"name"`
	Type    int             `json:"type"`
	Value   json.RawMessage `json:"value,omitempty"`
	Options []CommandOption `json:"options,omitempty"`
	Focused bool            `json:"focused,omitempty"`
}

// StringValue decodes the option value as a string, or "".
func (o CommandOption) StringValue() string {
	var s string
	if err := json.Unmarshal(o.Value, &s); err != nil {
		return ""
	}
	return s
}

// NumberValue decodes the option value as a float64.
func (o CommandOption) NumberValue() (float64, bool) {
	var f float64
	if err := json.Unmarshal(o.Value, &f); err != nil {
		return 0, false
	}
	return f, true
}

// ModalRow is one action row of a modal submission.
type ModalRow struct {
	Type       int              `json:"type"`
	Components []ModalComponent `json:"components"`
}

type ModalComponent struct {
	Type     int    `json:"type"`
	CustomID string `json:"custom_id"`
	Value    string `json:"value"`
}

type InteractionData struct {
	Name          string          `json:"name,omitempty"`
	CustomID      string          `json:"custom_id,omitempty"`
	ComponentType int             `json:"component_type,omitempty"`
	Options       []CommandOption `json:"options,omitempty"`
	Components    []ModalRow      `json:"components,omitempty"`
}

// Interaction is the inbound webhook payload, decoded to the fields this
// bot consumes.
type Interaction struct {
	ID        string           `json:"id"`
	Type      int              `json:"type"`
	Token     string           `json:"token"`
	GuildID   string           `json:"guild_id,omitempty"`
	ChannelID string           `json:"channel_id,omitempty"`
	Member    *Member          `json:"member,omitempty"`
	User      *User            `json:"user,omitempty"`
	Data      *InteractionData `json:"data,omitempty"`
	Message   *Message         `json:"message,omitempty"`
}

// Invoker returns the acting user, regardless of guild or DM context.
func (i *Interaction) Invoker() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// Component is a button or text input, or an action row wrapping them.
type Component struct {
	Type       int         `json:"type"`
	Style      int         `json:"style,omitempty"`
	Label      string      `json:"label,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Disabled   bool        `json:"disabled,omitempty"`
	Required   bool        `json:"required,omitempty"`
	Components []Component `json:"components,omitempty"`
}

func ActionRow(components ...Component) Component {
	return Component{Type: ComponentActionRow, Components: components}
}

type Choice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ResponseData struct {
	Content    string      `json:"content,omitempty"`
	Embeds     []Embed     `json:"embeds,omitempty"`
	Components []Component `json:"components,omitempty"`
	Flags      int         `json:"flags,omitempty"`
	Choices    []Choice    `json:"choices,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Title      string      `json:"title,omitempty"`
}

// InteractionResponse is the payload written back to the platform in the
// webhook HTTP response.
type InteractionResponse struct {
	Type int           `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// Message is a channel message, as created or referenced by the REST API.
type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

// MessagePayload is the body for message create and edit calls.
type MessagePayload struct {
	Embeds     []Embed     `json:"embeds"`
	Components []Component `json:"components"`
}
