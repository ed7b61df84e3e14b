package utility

import (
	"github.com/PancyStudios/PancyCompanionGo/internal/commands/embeds"
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
)

func helpCommand(prefix, footer string) *discord.Command {
	return discord.NewCommand(
		"help",
		"Muestra los comandos disponibles",
		category,
		func(ctx *discord.CommandContext) error {
			return ctx.ReplyEphemeralEmbed(embeds.Help(ctx.Client, prefix, footer))
		},
	)
}
