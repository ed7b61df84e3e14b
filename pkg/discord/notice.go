package discord

import "github.com/bwmarrin/discordgo"

const (
	// NoticeColor is used for every denial and failure notice
	NoticeColor = 0xFF0000

	BlacklistedNotice = "❌ You are blacklisted from using commands."
	FailureNotice     = "There was an error while executing this command!"
)

// NoticeEmbed builds the red embed used for self-deleting notices
func NoticeEmbed(description, footer string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: description,
		Color:       NoticeColor,
	}
	if footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}
	return embed
}
