package events

import (
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// RegisterMessageEvents routes prefixed messages to the dispatcher
func RegisterMessageEvents(client *discord.ExtendedClient, deps Deps) {
	client.EventHandler.OnMessageCreate(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		deps.Dispatcher.HandleMessage(s, m)
	})
}
