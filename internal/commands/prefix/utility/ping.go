package utility

import (
	"fmt"

	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
)

func pingCommand() *discord.PrefixCommand {
	return discord.NewPrefixCommand(
		"ping",
		"Comprueba la latencia del bot",
		category,
		func(ctx *discord.MessageContext) error {
			return ctx.Reply(fmt.Sprintf("🏓 Pong! Latencia: %dms", ctx.Client.Latency().Milliseconds()))
		},
	)
}
