// Package utility holds the general purpose slash commands.
package utility

import "github.com/PancyStudios/PancyCompanionGo/pkg/discord"

const category = "utility"

// Register hands the utility slash commands to the registry
func Register(h *discord.CommandHandler, prefix, footer string) int {
	return h.RegisterCommands(
		pingCommand(),
		helpCommand(prefix, footer),
	)
}
