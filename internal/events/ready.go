package events

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/PancyStudios/PancyCompanionGo/pkg/mqtt"
	"github.com/bwmarrin/discordgo"
)

// RegisterReadyEvent registers the ready event handler
func RegisterReadyEvent(client *discord.ExtendedClient, deps Deps) {
	client.EventHandler.OnReady(func(s *discordgo.Session, r *discordgo.Ready) {
		onReady(client, deps, r)
	})
}

// onReady runs on every ready event; the startup sequence only runs on the first one
func onReady(client *discord.ExtendedClient, deps Deps, r *discordgo.Ready) {
	client.SetReady(true)
	logger.Info(fmt.Sprintf("📊 Conectado a %d servidores", len(r.Guilds)), "Ready")

	if deps.Startup != nil && !deps.Startup.Run(context.Background()) {
		logger.Debug("Sesión reanudada, la secuencia de arranque ya se ejecutó", "Ready")
	}

	deps.publish(mqtt.EventReady, "", "", map[string]interface{}{
		"guilds": len(r.Guilds),
		"user":   r.User.Username,
	})
}
