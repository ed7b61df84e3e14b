// Package events attaches the bot's gateway event handlers.
// Each file covers one topic (ready, interaction, message, member, guild).
package events

import (
	"github.com/PancyStudios/PancyCompanionGo/internal/startup"
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	boterrors "github.com/PancyStudios/PancyCompanionGo/pkg/errors"
	"github.com/PancyStudios/PancyCompanionGo/pkg/greeting"
	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/PancyStudios/PancyCompanionGo/pkg/voice"
)

// EventPublisher forwards bot events to external consumers. *mqtt.Communicator satisfies it, nil included.
type EventPublisher interface {
	PublishEvent(kind, guildID, userID string, data interface{}) error
}

// Deps are shared by the handlers
type Deps struct {
	Dispatcher *discord.Dispatcher
	Announcer  *greeting.Announcer
	Reporter   boterrors.Reporter
	Events     EventPublisher
	Startup    *startup.Sequencer
	Rejoin     *voice.Rejoiner
}

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, deps Deps) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	RegisterReadyEvent(client, deps)
	RegisterInteractionEvents(client, deps)
	RegisterMessageEvents(client, deps)
	RegisterMemberEvents(client, deps)
	RegisterGuildEvents(client, deps)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}

func (d Deps) publish(kind, guildID, userID string, data interface{}) {
	if d.Events == nil {
		return
	}
	if err := d.Events.PublishEvent(kind, guildID, userID, data); err != nil {
		logger.Warn("No se pudo publicar el evento "+kind+": "+err.Error(), "Events")
	}
}
