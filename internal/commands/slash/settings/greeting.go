package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyCompanionGo/internal/commands/embeds"
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/PancyStudios/PancyCompanionGo/pkg/greeting"
	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// DefaultColor is used when /welcome set or /goodbye set is given no color
const DefaultColor = models.EmbedColor(embeds.ColorInfo)

const storeTimeout = 5 * time.Second

// GreetingStore reads and writes greeting templates
type GreetingStore interface {
	Set(ctx context.Context, kind models.GreetingKind, cfg models.GreetingConfig) error
	Delete(ctx context.Context, kind models.GreetingKind, guildID string) (bool, error)
}

var textChannelTypes = []discordgo.ChannelType{
	discordgo.ChannelTypeGuildText,
	discordgo.ChannelTypeGuildNews,
}

type greetingText struct {
	description string
	set         string
	disable     string
	channel     string
}

var greetingTexts = map[models.GreetingKind]greetingText{
	models.GreetingWelcome: {
		description: "Configura el mensaje de bienvenida",
		set:         "Define el canal y el mensaje de bienvenida",
		disable:     "Desactiva el mensaje de bienvenida",
		channel:     "Canal donde se darán las bienvenidas",
	},
	models.GreetingGoodbye: {
		description: "Configura el mensaje de despedida",
		set:         "Define el canal y el mensaje de despedida",
		disable:     "Desactiva el mensaje de despedida",
		channel:     "Canal donde se darán las despedidas",
	},
}

// greetingCommand builds /welcome or /goodbye with the set and disable subcommands
func greetingCommand(kind models.GreetingKind, store GreetingStore, footer string) *discord.Command {
	text := greetingTexts[kind]
	h := &greetingHandler{kind: kind, store: store, footer: footer}

	return discord.NewCommand(string(kind), text.description, category, h.run).
		WithOptions(
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: text.set,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:         discordgo.ApplicationCommandOptionChannel,
						Name:         "canal",
						Description:  text.channel,
						ChannelTypes: textChannelTypes,
						Required:     true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "titulo",
						Description: "Título del embed. Admite {user} y {server}",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "descripcion",
						Description: "Descripción del embed. Admite {user} y {server}",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "color",
						Description: "Color en hexadecimal, por ejemplo #5865F2",
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "imagen",
						Description: "URL de una imagen para el embed",
					},
				},
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "disable",
				Description: text.disable,
			},
		).
		WithUserPermissions(discordgo.PermissionManageGuild).
		InGuildOnly()
}

type greetingHandler struct {
	kind   models.GreetingKind
	store  GreetingStore
	footer string
}

func (h *greetingHandler) run(ctx *discord.CommandContext) error {
	if ctx.Interaction.GuildID == "" {
		return ctx.ReplyEphemeralEmbed(embeds.Error("Este comando solo funciona en servidores.", h.footer))
	}

	switch ctx.SubcommandName() {
	case "set":
		return h.set(ctx)
	case "disable":
		return h.disable(ctx)
	default:
		return errors.Errorf("unknown %s subcommand %q", h.kind, ctx.SubcommandName())
	}
}

func (h *greetingHandler) set(ctx *discord.CommandContext) error {
	guildID := ctx.Interaction.GuildID

	channel := ctx.GetChannelOption("canal")
	if channel == nil {
		return ctx.ReplyEphemeralEmbed(embeds.Error("Debes indicar un canal.", h.footer))
	}
	if channel.Type != discordgo.ChannelTypeGuildText && channel.Type != discordgo.ChannelTypeGuildNews {
		return ctx.ReplyEphemeralEmbed(embeds.Error("El canal debe ser de texto.", h.footer))
	}

	color := DefaultColor
	if raw := ctx.GetStringOption("color"); raw != "" {
		parsed, err := models.ParseEmbedColor(raw)
		if err != nil {
			return ctx.ReplyEphemeralEmbed(embeds.Error(fmt.Sprintf("Color inválido: `%s`", raw), h.footer))
		}
		color = parsed
	}

	cfg := models.GreetingConfig{
		GuildID:     guildID,
		ChannelID:   channel.ID,
		EmbedColor:  color,
		Title:       ctx.GetStringOption("titulo"),
		Description: ctx.GetStringOption("descripcion"),
		Image:       ctx.GetStringOption("imagen"),
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := h.store.Set(dbCtx, h.kind, cfg); err != nil {
		return errors.Wrapf(err, "save %s config", h.kind)
	}

	serverName := ""
	if guild := ctx.Guild(); guild != nil {
		serverName = guild.Name
	}
	preview := greeting.BuildEmbed(&cfg, ctx.User(), serverName, time.Now())

	return ctx.ReplyEphemeralEmbeds(
		embeds.Success(fmt.Sprintf("Mensaje de %s configurado en <#%s>. Vista previa:", h.kind, channel.ID), h.footer),
		preview,
	)
}

func (h *greetingHandler) disable(ctx *discord.CommandContext) error {
	dbCtx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	removed, err := h.store.Delete(dbCtx, h.kind, ctx.Interaction.GuildID)
	if err != nil {
		return errors.Wrapf(err, "delete %s config", h.kind)
	}
	if !removed {
		return ctx.ReplyEphemeralEmbed(embeds.Error(fmt.Sprintf("No había mensaje de %s configurado.", h.kind), h.footer))
	}
	return ctx.ReplyEphemeralEmbed(embeds.Success(fmt.Sprintf("Mensaje de %s desactivado.", h.kind), h.footer))
}
