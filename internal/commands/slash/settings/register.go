// Package settings holds the slash commands that edit per-guild greetings.
package settings

import (
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
)

const category = "settings"

// Register hands /welcome and /goodbye to the registry
func Register(h *discord.CommandHandler, store GreetingStore, footer string) int {
	return h.RegisterCommands(
		greetingCommand(models.GreetingWelcome, store, footer),
		greetingCommand(models.GreetingGoodbye, store, footer),
	)
}
