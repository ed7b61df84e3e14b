package voice

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyCompanionGo/internal/commands/embeds"
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
	botvoice "github.com/PancyStudios/PancyCompanionGo/pkg/voice"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

const storeTimeout = 5 * time.Second

// StayStore persists 24/7 channels
type StayStore interface {
	Set(ctx context.Context, stay models.VoiceStay) error
	Delete(ctx context.Context, guildID string) (bool, error)
}

// Connector joins and leaves voice channels
type Connector interface {
	botvoice.Gateway
	Leave(guildID string) error
}

// ConnectorFunc returns the connector for the running client
type ConnectorFunc func(client *discord.ExtendedClient) Connector

// SessionConnector uses the client's live session
func SessionConnector(client *discord.ExtendedClient) Connector {
	return botvoice.SessionGateway{Session: client.Session}
}

var checkMessages = map[error]string{
	botvoice.ErrUnknownGuild:      "No encuentro este servidor.",
	botvoice.ErrUnknownChannel:    "No encuentro ese canal en este servidor.",
	botvoice.ErrNotVoiceChannel:   "El canal debe ser de voz.",
	botvoice.ErrMissingPermission: "Necesito los permisos Conectar y Hablar en ese canal.",
}

func stayCommand(store StayStore, connector ConnectorFunc, footer string) *discord.Command {
	h := &stayHandler{store: store, connector: connector, footer: footer}

	return discord.NewCommand("247", "Mantiene al bot en un canal de voz 24/7", category, h.run).
		WithOptions(
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "enable",
				Description: "Une al bot a un canal de voz y lo mantiene ahí",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "canal",
						Description: "Canal de voz",
						ChannelTypes: []discordgo.ChannelType{
							discordgo.ChannelTypeGuildVoice,
							discordgo.ChannelTypeGuildStageVoice,
						},
						Required: true,
					},
				},
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "disable",
				Description: "Saca al bot del canal 24/7",
			},
		).
		WithUserPermissions(discordgo.PermissionManageGuild).
		InGuildOnly()
}

type stayHandler struct {
	store     StayStore
	connector ConnectorFunc
	footer    string
}

func (h *stayHandler) run(ctx *discord.CommandContext) error {
	if ctx.Interaction.GuildID == "" {
		return ctx.ReplyEphemeralEmbed(embeds.Error("Este comando solo funciona en servidores.", h.footer))
	}

	switch ctx.SubcommandName() {
	case "enable":
		return h.enable(ctx)
	case "disable":
		return h.disable(ctx)
	default:
		return errors.Errorf("unknown 247 subcommand %q", ctx.SubcommandName())
	}
}

func (h *stayHandler) enable(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID
	channel := ctx.GetChannelOption("canal")
	if channel == nil {
		return ctx.ReplyEphemeralEmbed(embeds.Error("Debes indicar un canal de voz.", h.footer))
	}

	conn := h.connector(ctx.Client)
	if err := botvoice.Check(conn, guildID, channel.ID); err != nil {
		if msg, ok := checkMessages[err]; ok {
			return ctx.ReplyEphemeralEmbed(embeds.Error(msg, h.footer))
		}
		return err
	}

	// joining waits for the voice handshake
	if err := ctx.Defer(); err != nil {
		return err
	}
	if err := conn.Join(guildID, channel.ID); err != nil {
		return errors.Wrap(err, "join voice channel")
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := h.store.Set(dbCtx, models.VoiceStay{GuildID: guildID, ChannelID: channel.ID}); err != nil {
		return errors.Wrap(err, "save voice stay")
	}

	return ctx.EditReplyEmbed(embeds.Success(fmt.Sprintf("Me quedaré 24/7 en <#%s>.", channel.ID), h.footer))
}

func (h *stayHandler) disable(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID

	dbCtx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	removed, err := h.store.Delete(dbCtx, guildID)
	if err != nil {
		return errors.Wrap(err, "delete voice stay")
	}
	if !removed {
		return ctx.ReplyEphemeralEmbed(embeds.Error("El modo 24/7 no estaba activo.", h.footer))
	}

	if err := h.connector(ctx.Client).Leave(guildID); err != nil {
		return errors.Wrap(err, "leave voice channel")
	}
	return ctx.ReplyEphemeralEmbed(embeds.Success("Modo 24/7 desactivado.", h.footer))
}
