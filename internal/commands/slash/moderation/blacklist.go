package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyCompanionGo/internal/commands/embeds"
	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	storeTimeout = 5 * time.Second
	listLimit    = 25
)

// BlacklistStore edits the per-guild blacklist
type BlacklistStore interface {
	Add(ctx context.Context, entry models.BlacklistEntry) error
	Remove(ctx context.Context, guildID, userID string) (bool, error)
	List(ctx context.Context, guildID string) ([]*models.BlacklistEntry, error)
}

func blacklistCommand(store BlacklistStore, footer string) *discord.Command {
	h := &blacklistHandler{store: store, footer: footer, now: time.Now}

	userOption := func(description string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: description,
			Required:    true,
		}
	}

	return discord.NewCommand("blacklist", "Gestiona quién no puede usar los comandos del bot", category, h.run).
		WithOptions(
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Impide a un usuario usar los comandos",
				Options: []*discordgo.ApplicationCommandOption{
					userOption("Usuario a bloquear"),
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "razon",
						Description: "Razón del bloqueo",
					},
				},
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Permite de nuevo a un usuario usar los comandos",
				Options:     []*discordgo.ApplicationCommandOption{userOption("Usuario a desbloquear")},
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "Muestra los usuarios bloqueados",
			},
		).
		WithUserPermissions(discordgo.PermissionAdministrator).
		InGuildOnly()
}

type blacklistHandler struct {
	store  BlacklistStore
	footer string
	now    func() time.Time
}

func (h *blacklistHandler) run(ctx *discord.CommandContext) error {
	if ctx.Interaction.GuildID == "" {
		return ctx.ReplyEphemeralEmbed(embeds.Error("Este comando solo funciona en servidores.", h.footer))
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	switch ctx.SubcommandName() {
	case "add":
		return h.add(dbCtx, ctx)
	case "remove":
		return h.remove(dbCtx, ctx)
	case "list":
		return h.list(dbCtx, ctx)
	default:
		return errors.Errorf("unknown blacklist subcommand %q", ctx.SubcommandName())
	}
}

func (h *blacklistHandler) add(dbCtx context.Context, ctx *discord.CommandContext) error {
	target := ctx.GetUserOption("usuario")
	if target == nil || target.ID == "" {
		return ctx.ReplyEphemeralEmbed(embeds.Error("Debes indicar un usuario.", h.footer))
	}
	if target.Bot {
		return ctx.ReplyEphemeralEmbed(embeds.Error("Los bots no usan comandos.", h.footer))
	}

	moderator := ctx.User()
	if moderator != nil && moderator.ID == target.ID {
		return ctx.ReplyEphemeralEmbed(embeds.Error("No puedes bloquearte a ti mismo.", h.footer))
	}

	entry := models.BlacklistEntry{
		GuildID:   ctx.Interaction.GuildID,
		UserID:    target.ID,
		Reason:    ctx.GetStringOption("razon"),
		CreatedAt: h.now().UTC(),
	}
	if moderator != nil {
		entry.CreatedBy = moderator.ID
	}

	if err := h.store.Add(dbCtx, entry); err != nil {
		return errors.Wrap(err, "add blacklist entry")
	}
	return ctx.ReplyEphemeralEmbed(embeds.Success(fmt.Sprintf("<@%s> ya no puede usar los comandos.", target.ID), h.footer))
}

func (h *blacklistHandler) remove(dbCtx context.Context, ctx *discord.CommandContext) error {
	target := ctx.GetUserOption("usuario")
	if target == nil || target.ID == "" {
		return ctx.ReplyEphemeralEmbed(embeds.Error("Debes indicar un usuario.", h.footer))
	}

	removed, err := h.store.Remove(dbCtx, ctx.Interaction.GuildID, target.ID)
	if err != nil {
		return errors.Wrap(err, "remove blacklist entry")
	}
	if !removed {
		return ctx.ReplyEphemeralEmbed(embeds.Error(fmt.Sprintf("<@%s> no estaba en la blacklist.", target.ID), h.footer))
	}
	return ctx.ReplyEphemeralEmbed(embeds.Success(fmt.Sprintf("<@%s> puede volver a usar los comandos.", target.ID), h.footer))
}

func (h *blacklistHandler) list(dbCtx context.Context, ctx *discord.CommandContext) error {
	entries, err := h.store.List(dbCtx, ctx.Interaction.GuildID)
	if err != nil {
		return errors.Wrap(err, "list blacklist")
	}

	embed := &discordgo.MessageEmbed{
		Title: "🚫 Blacklist",
		Color: embeds.ColorInfo,
	}
	if len(entries) == 0 {
		embed.Description = "No hay usuarios bloqueados."
	} else {
		lines := lo.Map(lo.Slice(entries, 0, listLimit), func(e *models.BlacklistEntry, _ int) string {
			if e.Reason == "" {
				return fmt.Sprintf("• <@%s>", e.UserID)
			}
			return fmt.Sprintf("• <@%s> %s", e.UserID, e.Reason)
		})
		if extra := len(entries) - listLimit; extra > 0 {
			lines = append(lines, fmt.Sprintf("… y %d más", extra))
		}
		embed.Description = strings.Join(lines, "\n")
	}
	if h.footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: h.footer}
	}

	return ctx.ReplyEphemeralEmbed(embed)
}
