// Package greeting renders and sends the per-guild welcome and goodbye embeds.
package greeting

import (
	"context"
	"strings"
	"time"

	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

const (
	UserPlaceholder   = "{user}"
	ServerPlaceholder = "{server}"
)

// ConfigStore reads greeting templates
type ConfigStore interface {
	Get(ctx context.Context, kind models.GreetingKind, guildID string) (*models.GreetingConfig, error)
}

// GuildState resolves guilds and channels from the gateway cache. *discordgo.State satisfies it.
type GuildState interface {
	Guild(guildID string) (*discordgo.Guild, error)
	Channel(channelID string) (*discordgo.Channel, error)
}

// ChannelSender posts embeds. *discordgo.Session satisfies it.
type ChannelSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Render replaces every {user} with the mention and every {server} with the guild name
func Render(template, userMention, serverName string) string {
	return strings.NewReplacer(
		UserPlaceholder, userMention,
		ServerPlaceholder, serverName,
	).Replace(template)
}

// BuildEmbed renders cfg for one member. The image is optional.
func BuildEmbed(cfg *models.GreetingConfig, user *discordgo.User, serverName string, now time.Time) *discordgo.MessageEmbed {
	mention := "<@" + user.ID + ">"

	embed := &discordgo.MessageEmbed{
		Title:       Render(cfg.Title, mention, serverName),
		Description: Render(cfg.Description, mention, serverName),
		Color:       int(cfg.EmbedColor),
		Timestamp:   now.Format(time.RFC3339),
	}
	if cfg.Image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: cfg.Image}
	}
	return embed
}

// Announcer sends the greeting of a guild when members join or leave
type Announcer struct {
	Store ConfigStore
	now   func() time.Time
}

// NewAnnouncer creates an Announcer
func NewAnnouncer(store ConfigStore) *Announcer {
	return &Announcer{Store: store, now: time.Now}
}

// Announce sends the kind greeting for user. A guild without config, or whose
// channel is not in the gateway cache, is skipped without error.
func (a *Announcer) Announce(ctx context.Context, kind models.GreetingKind, state GuildState, sender ChannelSender, guildID string, user *discordgo.User) (bool, error) {
	if user == nil {
		return false, nil
	}

	cfg, err := a.Store.Get(ctx, kind, guildID)
	if err != nil {
		return false, errors.Wrapf(err, "load %s config for guild %s", kind, guildID)
	}
	if cfg == nil {
		return false, nil
	}

	channel, err := state.Channel(cfg.ChannelID)
	if err != nil || channel == nil || channel.GuildID != guildID {
		logger.Debug("Canal de "+string(kind)+" no encontrado en "+guildID, "Greeting")
		return false, nil
	}

	guild, err := state.Guild(guildID)
	if err != nil || guild == nil {
		return false, nil
	}

	embed := BuildEmbed(cfg, user, guild.Name, a.now())
	if _, err := sender.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		return false, errors.Wrapf(err, "send %s message to channel %s", kind, channel.ID)
	}
	return true, nil
}
