package utility

import (
	"strings"

	"github.com/PancyStudios/PancyCompanionGo/internal/commands/embeds"
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
)

func helpCommand(footer string) *discord.PrefixCommand {
	return discord.NewPrefixCommand(
		"help",
		"Muestra los comandos disponibles",
		category,
		func(ctx *discord.MessageContext) error {
			if len(ctx.Args) > 0 {
				return describe(ctx, strings.ToLower(ctx.Args[0]), footer)
			}
			return ctx.ReplyEmbed(embeds.Help(ctx.Client, ctx.Prefix, footer))
		},
	).WithUsage("[comando]")
}

// describe answers "help <name>" for a single command of either kind
func describe(ctx *discord.MessageContext, name, footer string) error {
	if cmd, ok := ctx.Client.PrefixCommands.Get(name); ok {
		usage := ctx.Prefix + cmd.Name
		if cmd.Usage != "" {
			usage += " " + cmd.Usage
		}
		return ctx.Reply("`" + usage + "` " + cmd.Description)
	}
	if cmd, ok := ctx.Client.Commands.Get(strings.TrimPrefix(name, "/")); ok {
		return ctx.Reply("`/" + cmd.Name + "` " + cmd.Description)
	}
	return ctx.ReplyEmbed(embeds.Error("No existe el comando `"+name+"`.", footer))
}
