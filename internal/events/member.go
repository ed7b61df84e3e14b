package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyCompanionGo/pkg/discord"
	"github.com/PancyStudios/PancyCompanionGo/pkg/greeting"
	"github.com/PancyStudios/PancyCompanionGo/pkg/logger"
	"github.com/PancyStudios/PancyCompanionGo/pkg/models"
	"github.com/PancyStudios/PancyCompanionGo/pkg/mqtt"
	"github.com/bwmarrin/discordgo"
)

const greetingTimeout = 10 * time.Second

// RegisterMemberEvents registers the join and leave handlers
func RegisterMemberEvents(client *discord.ExtendedClient, deps Deps) {
	client.EventHandler.OnGuildMemberAdd(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		onMember(deps, models.GreetingWelcome, s.State, s, m.GuildID, m.User)
	})
	client.EventHandler.OnGuildMemberRemove(func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		onMember(deps, models.GreetingGoodbye, s.State, s, m.GuildID, m.User)
	})
}

var memberEvents = map[models.GreetingKind]struct {
	name string
	kind string
}{
	models.GreetingWelcome: {"guildMemberAdd", mqtt.EventMemberJoin},
	models.GreetingGoodbye: {"guildMemberRemove", mqtt.EventMemberLeave},
}

// onMember sends the guild's greeting and forwards the event. Failures are reported, never fatal.
func onMember(deps Deps, kind models.GreetingKind, state greeting.GuildState, sender greeting.ChannelSender, guildID string, user *discordgo.User) {
	event := memberEvents[kind]
	if user == nil {
		return
	}
	logger.Info(fmt.Sprintf("👤 %s: %s en %s", event.name, user.Username, guildID), "Member")

	deps.publish(event.kind, guildID, user.ID, map[string]interface{}{
		"username": user.Username,
		"bot":      user.Bot,
	})

	if deps.Announcer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), greetingTimeout)
	defer cancel()

	if _, err := deps.Announcer.Announce(ctx, kind, state, sender, guildID, user); err != nil {
		if deps.Reporter != nil {
			deps.Reporter.ReportError("Error in "+event.name, err)
		} else {
			logger.Error(fmt.Sprintf("Error in %s: %v", event.name, err), "Member")
		}
	}
}
