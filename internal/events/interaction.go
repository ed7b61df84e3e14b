package events

import (
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/PancyStudios/PancyCompanionGo/pkg/mqtt"
	"github.com/bwmarrin/discordgo"
)

// RegisterInteractionEvents routes application commands to the dispatcher
func RegisterInteractionEvents(client *discord.ExtendedClient, deps Deps) {
	deps.Dispatcher.OnCommand = func(e discord.CommandEvent) {
		deps.publish(mqtt.EventCommand, e.GuildID, e.UserID, commandPayload(e))
	}

	client.EventHandler.OnInteractionCreate(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		deps.Dispatcher.HandleInteraction(s, i)
	})
}

func commandPayload(e discord.CommandEvent) map[string]interface{} {
	payload := map[string]interface{}{
		"kind":       string(e.Kind),
		"name":       e.Name,
		"durationMs": e.Duration.Milliseconds(),
		"ok":         e.Err == nil,
	}
	if e.Err != nil {
		payload["error"] = e.Err.Error()
	}
	return payload
}
