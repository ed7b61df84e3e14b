// Package voice keeps the bot connected to the 24/7 voice channels.
package voice

import (
	"fmt"
	"sync"

	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

var (
	ErrUnknownGuild      = errors.New("guild not found")
	ErrUnknownChannel    = errors.New("channel not found")
	ErrNotVoiceChannel   = errors.New("channel is not a voice channel")
	ErrMissingPermission = errors.New("missing Connect or Speak permission")
)

// RequiredPermissions must all be granted in the target channel
const RequiredPermissions = discordgo.PermissionVoiceConnect | discordgo.PermissionVoiceSpeak

// Gateway is what rejoining needs from the Discord connection
type Gateway interface {
	Guild(guildID string) (*discordgo.Guild, error)
	Channel(channelID string) (*discordgo.Channel, error)
	BotPermissions(channelID string) (int64, error)
	Join(guildID, channelID string) error
}

// SessionGateway implements Gateway on a live session and its state cache
type SessionGateway struct {
	Session *discordgo.Session
}

// Guild looks the guild up in the state cache
func (g SessionGateway) Guild(guildID string) (*discordgo.Guild, error) {
	return g.Session.State.Guild(guildID)
}

// Channel looks the channel up in the state cache
func (g SessionGateway) Channel(channelID string) (*discordgo.Channel, error) {
	return g.Session.State.Channel(channelID)
}

// BotPermissions computes the bot's permissions in the channel
func (g SessionGateway) BotPermissions(channelID string) (int64, error) {
	if g.Session.State.User == nil {
		return 0, errors.New("bot user unknown before ready")
	}
	return g.Session.State.UserChannelPermissions(g.Session.State.User.ID, channelID)
}

// Join connects deafened and unmuted
func (g SessionGateway) Join(guildID, channelID string) error {
	_, err := g.Session.ChannelVoiceJoin(guildID, channelID, false, true)
	return err
}

// Leave disconnects from the guild's voice channel, if connected
func (g SessionGateway) Leave(guildID string) error {
	g.Session.RLock()
	vc, ok := g.Session.VoiceConnections[guildID]
	g.Session.RUnlock()

	if !ok {
		return nil
	}
	return vc.Disconnect()
}

func isVoice(channel *discordgo.Channel) bool {
	return channel.Type == discordgo.ChannelTypeGuildVoice || channel.Type == discordgo.ChannelTypeGuildStageVoice
}

// Check verifies that the bot can stay in channelID of guildID
func Check(gw Gateway, guildID, channelID string) error {
	if guild, err := gw.Guild(guildID); err != nil || guild == nil {
		return ErrUnknownGuild
	}

	channel, err := gw.Channel(channelID)
	if err != nil || channel == nil || channel.GuildID != guildID {
		return ErrUnknownChannel
	}
	if !isVoice(channel) {
		return ErrNotVoiceChannel
	}

	perms, err := gw.BotPermissions(channelID)
	if err != nil {
		return errors.Wrap(err, "compute permissions")
	}
	if perms&RequiredPermissions != RequiredPermissions {
		return ErrMissingPermission
	}
	return nil
}

// Skip records a record that could not be rejoined
type Skip struct {
	GuildID   string
	ChannelID string
	Err       error
}

// Result summarizes a rejoin pass
type Result struct {
	Joined  []*models.VoiceStay
	Skipped []Skip
	// Queued stays wait for their guild to become available
	Queued []*models.VoiceStay
}

// Rejoin connects to every stay. A record that fails a check or whose join fails is skipped and logged;
// the remaining records are still processed.
func Rejoin(gw Gateway, stays []*models.VoiceStay) Result {
	var res Result

	for _, stay := range stays {
		if stay == nil {
			continue
		}

		err := Check(gw, stay.GuildID, stay.ChannelID)
		if err == nil {
			err = errors.Wrap(gw.Join(stay.GuildID, stay.ChannelID), "join voice channel")
		}

		if err != nil {
			logger.Warn(fmt.Sprintf("No se pudo reconectar 24/7 en %s/%s: %v", stay.GuildID, stay.ChannelID, err), "Voice")
			res.Skipped = append(res.Skipped, Skip{GuildID: stay.GuildID, ChannelID: stay.ChannelID, Err: err})
			continue
		}

		logger.Success(fmt.Sprintf("Reconectado al canal 24/7 %s en %s", stay.ChannelID, stay.GuildID), "Voice")
		res.Joined = append(res.Joined, stay)
	}

	return res
}

// Rejoiner holds stays whose guild is still unavailable after READY and
// rejoins them once the guild's GUILD_CREATE has been applied to the state.
type Rejoiner struct {
	gw Gateway

	mu      sync.Mutex
	pending map[string][]*models.VoiceStay
}

// NewRejoiner creates a Rejoiner on top of gw
func NewRejoiner(gw Gateway) *Rejoiner {
	return &Rejoiner{gw: gw, pending: make(map[string][]*models.VoiceStay)}
}

// Load rejoins the stays whose guild is already available and queues the rest.
// A guild the state does not know at all is skipped as unknown.
func (r *Rejoiner) Load(stays []*models.VoiceStay) Result {
	var now []*models.VoiceStay
	var queued []*models.VoiceStay

	// the state lookup and the enqueue happen under one lock so a concurrent
	// GuildAvailable either sees the queued stay or the stay sees the guild
	r.mu.Lock()
	for _, stay := range stays {
		if stay == nil {
			continue
		}
		guild, err := r.gw.Guild(stay.GuildID)
		if err == nil && guild != nil && guild.Unavailable {
			r.pending[stay.GuildID] = append(r.pending[stay.GuildID], stay)
			queued = append(queued, stay)
			continue
		}
		now = append(now, stay)
	}
	r.mu.Unlock()

	for _, stay := range queued {
		logger.Info(fmt.Sprintf("Canal 24/7 %s en espera del servidor %s", stay.ChannelID, stay.GuildID), "Voice")
	}

	res := Rejoin(r.gw, now)
	res.Queued = queued
	return res
}

// GuildAvailable rejoins the stays queued for guildID
func (r *Rejoiner) GuildAvailable(guildID string) Result {
	r.mu.Lock()
	stays := r.pending[guildID]
	delete(r.pending, guildID)
	r.mu.Unlock()

	if len(stays) == 0 {
		return Result{}
	}
	return Rejoin(r.gw, stays)
}

// Pending returns how many stays are still waiting for their guild
func (r *Rejoiner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, stays := range r.pending {
		n += len(stays)
	}
	return n
}
