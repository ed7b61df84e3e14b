// Package moderation holds the administrative slash commands.
package moderation

import "github.com/PancyStudios/PancyCompanionGo/pkg/discord"

const category = "moderation"

// Register hands /blacklist to the registry
func Register(h *discord.CommandHandler, store BlacklistStore, footer string) int {
	return h.RegisterCommands(blacklistCommand(store, footer))
}
