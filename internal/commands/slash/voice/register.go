// Package voice holds the 24/7 voice slash command.
package voice

import "github.com/PancyStudios/PancyCompanionGo/pkg/discord"

const category = "voice"

// Register hands /247 to the registry. A nil connector uses the client's session.
func Register(h *discord.CommandHandler, store StayStore, connector ConnectorFunc, footer string) int {
	if connector == nil {
		connector = SessionConnector
	}
	return h.RegisterCommands(stayCommand(store, connector, footer))
}
