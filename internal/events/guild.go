package events

import (
	"fmt"

	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// RegisterGuildEvents registers the guild availability handler
func RegisterGuildEvents(client *discord.ExtendedClient, deps Deps) {
	client.EventHandler.OnGuildCreate(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		onGuildCreate(deps, g.Guild)
	})
}

// onGuildCreate runs after the state has stored the guild, so queued 24/7 stays can be checked
func onGuildCreate(deps Deps, g *discordgo.Guild) {
	if deps.Rejoin == nil || g == nil || g.Unavailable {
		return
	}

	res := deps.Rejoin.GuildAvailable(g.ID)
	if len(res.Joined)+len(res.Skipped) > 0 {
		logger.Info(fmt.Sprintf("Servidor %s disponible: %d canales 24/7 reconectados, %d omitidos", g.ID, len(res.Joined), len(res.Skipped)), "Guild")
	}
}
