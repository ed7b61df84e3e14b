package utility

import (
	"fmt"

	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
)

func pingCommand() *discord.Command {
	return discord.NewCommand(
		"ping",
		"Comprueba la latencia del bot",
		category,
		pingHandler,
	)
}

func pingHandler(ctx *discord.CommandContext) error {
	return ctx.Reply(fmt.Sprintf("🏓 Pong! Latencia: %dms", ctx.Client.Latency().Milliseconds()))
}
