// Package embeds builds the embeds shared by several commands.
package embeds

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
)

const (
	ColorInfo    = 0x5865F2
	ColorSuccess = 0x57F287
	ColorError   = discord.NoticeColor
)

func withFooter(embed *discordgo.MessageEmbed, footer string) *discordgo.MessageEmbed {
	if footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}
	return embed
}

// Success builds a green confirmation embed
func Success(description, footer string) *discordgo.MessageEmbed {
	return withFooter(&discordgo.MessageEmbed{Description: "✅ " + description, Color: ColorSuccess}, footer)
}

// Error builds a red embed for user mistakes
func Error(description, footer string) *discordgo.MessageEmbed {
	return withFooter(&discordgo.MessageEmbed{Description: "❌ " + description, Color: ColorError}, footer)
}

type helpLine struct {
	category string
	text     string
}

// Help lists every registered command grouped by category
func Help(client *discord.ExtendedClient, prefix, footer string) *discordgo.MessageEmbed {
	var lines []helpLine
	for _, cmd := range client.Commands.Sorted() {
		lines = append(lines, helpLine{cmd.Category, fmt.Sprintf("`/%s` %s", cmd.Name, cmd.Description)})
	}
	for _, cmd := range client.PrefixCommands.Sorted() {
		usage := cmd.Name
		if cmd.Usage != "" {
			usage += " " + cmd.Usage
		}
		lines = append(lines, helpLine{cmd.Category, fmt.Sprintf("`%s%s` %s", prefix, usage, cmd.Description)})
	}

	groups := lo.GroupBy(lines, func(l helpLine) string { return l.category })
	categories := lo.Keys(groups)
	sort.Strings(categories)

	embed := &discordgo.MessageEmbed{
		Title:       "📖 Ayuda de PancyCompanion",
		Description: fmt.Sprintf("Prefijo: `%s`", prefix),
		Color:       ColorInfo,
	}
	for _, category := range categories {
		texts := lo.Map(groups[category], func(l helpLine, _ int) string { return l.text })
		name := category
		if name == "" {
			name = "general"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  strings.ToUpper(name[:1]) + name[1:],
			Value: strings.Join(texts, "\n"),
		})
	}

	return withFooter(embed, footer)
}
