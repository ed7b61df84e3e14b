// Package utility holds the general purpose prefix commands.
package utility

import "github.com/PancyStudios/PancyCompanionGo/pkg/discord"

const category = "utility"

// Register hands the utility prefix commands to the registry
func Register(h *discord.CommandHandler, footer string) int {
	return h.RegisterPrefixCommands(
		pingCommand(),
		helpCommand(footer),
	)
}
