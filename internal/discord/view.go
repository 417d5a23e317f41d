package discord

import "github.com/ticketboard/bot/internal/board"

// ViewEmbed converts a rendered board/history view into an embed.
func ViewEmbed(v board.View) Embed {
	return Embed{
		Title:       v.Title,
		Description: v.Description,
		Color:       v.Color,
		Footer:      &EmbedFooter{Text: v.Footer},
	}
}

// ViewComponents converts the view's pager into one row of buttons.
func ViewComponents(v board.View) []Component {
	buttons := make([]Component, 0, len(v.Pager))
	for _, b := range v.Pager {
		buttons = append(buttons, Component{
			Type:     ComponentButton,
			Style:    ButtonSecondary,
			Label:    b.Label,
			CustomID: b.ID,
			Disabled: b.Disabled,
		})
	}
	return []Component{ActionRow(buttons...)}
}

// ViewMessage assembles the full message payload for a view, used both
// when posting a board and when editing it in place.
func ViewMessage(v board.View) MessagePayload {
	return MessagePayload{
		Embeds:     []Embed{ViewEmbed(v)},
		Components: ViewComponents(v),
	}
}
